package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"mostralo-api/middleware"
	"mostralo-api/models"

	"github.com/gin-gonic/gin"
)

// ServeFeed subscribes the caller to notification topics:
// available-orders:{storeId} (drivers linked to the store) and
// driver:{driverId} (only one's own). The token travels as a query
// parameter because browsers cannot set headers on websocket dials.
func ServeFeed(c *gin.Context) {
	claims, err := middleware.ParseToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	requested := strings.Split(c.Query("topics"), ",")
	var topics []string
	for _, t := range requested {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !authorizeTopic(claims, t) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to subscribe to " + t})
			return
		}
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No topics requested"})
		return
	}

	hub.ServeWS(c.Writer, c.Request, claims.UserID, topics)
}

func authorizeTopic(claims *middleware.Claims, topic string) bool {
	if claims.Role == models.RoleAdmin {
		return true
	}

	var id uint
	if n, _ := fmt.Sscanf(topic, "available-orders:%d", &id); n == 1 {
		if claims.Role != models.RoleDriver {
			return false
		}
		linked, err := linkGuard.IsLinked(claims.UserID, id)
		return err == nil && linked
	}
	if n, _ := fmt.Sscanf(topic, "driver:%d", &id); n == 1 {
		return claims.Role == models.RoleDriver && claims.UserID == id
	}
	return false
}
