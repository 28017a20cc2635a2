package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mostralo-api/config"
	"mostralo-api/core"
	"mostralo-api/dispatch"
	"mostralo-api/earnings"
	"mostralo-api/middleware"
	"mostralo-api/models"
	"mostralo-api/notify"
	"mostralo-api/settlement"

	"github.com/gin-gonic/gin"
)

// Service singletons wired at startup by Init.
var (
	coordinator *dispatch.Coordinator
	lifecycle   *dispatch.Lifecycle
	linkGuard   *dispatch.LinkGuard
	ledger      *earnings.Ledger
	configs     *earnings.ConfigService
	workflow    *settlement.Workflow
	hub         *notify.Hub
)

// Deps carries the core services the handlers delegate to.
type Deps struct {
	Coordinator *dispatch.Coordinator
	Lifecycle   *dispatch.Lifecycle
	LinkGuard   *dispatch.LinkGuard
	Ledger      *earnings.Ledger
	Configs     *earnings.ConfigService
	Workflow    *settlement.Workflow
	Hub         *notify.Hub
}

// Init wires the handler package to its services.
func Init(d Deps) {
	coordinator = d.Coordinator
	lifecycle = d.Lifecycle
	linkGuard = d.LinkGuard
	ledger = d.Ledger
	configs = d.Configs
	workflow = d.Workflow
	hub = d.Hub
}

// respondError maps the core error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var active *core.ActiveDeliveriesError
	switch {
	case errors.As(err, &active):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "Driver has active deliveries",
			"active_deliveries": active.Count,
		})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, core.ErrOrderUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "Order is no longer available"})
	case errors.Is(err, core.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid state transition"})
	case errors.Is(err, core.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	case errors.Is(err, core.ErrInvalidEarningsReference):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid earnings reference"})
	case errors.Is(err, core.ErrUploadFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Receipt upload failed"})
	case errors.Is(err, core.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func parseUintQuery(v string) (uint, error) {
	id, err := strconv.ParseUint(v, 10, 64)
	return uint(id), err
}

// storeForOwner loads the caller's store.
func storeForOwner(c *gin.Context) (*models.Store, bool) {
	ownerID := middleware.GetUserID(c)
	var store models.Store
	if err := config.DB.Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No store found for your account"})
		return nil, false
	}
	return &store, true
}

// storePrincipal builds a store-admin principal scoped to the caller's
// store.
func storePrincipal(c *gin.Context) (core.Principal, *models.Store, bool) {
	store, ok := storeForOwner(c)
	if !ok {
		return core.Principal{}, nil, false
	}
	p := middleware.GetPrincipal(c)
	p.StoreID = store.ID
	return p, store, true
}
