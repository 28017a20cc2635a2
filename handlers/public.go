package handlers

import (
	"net/http"

	"mostralo-api/config"
	"mostralo-api/models"
	"mostralo-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListStores returns all open stores
func ListStores(c *gin.Context) {
	var stores []models.Store
	query := config.DB.Where("is_open = ?", true)
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}
	query.Find(&stores)
	c.JSON(http.StatusOK, gin.H{"count": len(stores), "stores": stores})
}

// GetStore returns a single store
func GetStore(c *gin.Context) {
	var store models.Store
	if err := config.DB.First(&store, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": store})
}

// GetCatalog returns a store's available products
func GetCatalog(c *gin.Context) {
	var store models.Store
	if err := config.DB.First(&store, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	var products []models.Product
	config.DB.Where("store_id = ? AND is_available = ?", store.ID, true).Find(&products)
	c.JSON(http.StatusOK, gin.H{
		"store":    store.Name,
		"count":    len(products),
		"products": products,
	})
}

// GetStateMachineInfo documents both state machines
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"order_transitions":      statemachine.GetAllTransitions(),
		"assignment_transitions": statemachine.GetAllAssignmentTransitions(),
	})
}
