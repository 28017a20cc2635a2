package handlers

import (
	"net/http"

	"mostralo-api/config"
	"mostralo-api/models"

	"github.com/gin-gonic/gin"
)

// AdminGetAllOrders returns all orders with full detail (admin only)
func AdminGetAllOrders(c *gin.Context) {
	var orders []models.Order
	query := config.DB.Preload("Items.Product").
		Preload("Customer").Preload("Store").Preload("AssignedDriver").Preload("StatusHistory")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if storeID := c.Query("store_id"); storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}

	query.Order("created_at desc").Find(&orders)

	// Admin dashboard summary by status
	summary := map[string]int{}
	var totalRevenueCents int64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusCompleted {
			totalRevenueCents += o.TotalCents
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary":       summary,
		"total_revenue_cents": totalRevenueCents,
		"count":               len(orders),
		"orders":              orders,
	})
}

// AdminGetAllUsers returns all users (admin only)
func AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := config.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminGetAllStores returns all stores (admin only)
func AdminGetAllStores(c *gin.Context) {
	var stores []models.Store
	config.DB.Preload("Owner").Preload("Products").Find(&stores)
	c.JSON(http.StatusOK, gin.H{"count": len(stores), "stores": stores})
}

// AdminGetAllEarnings returns every ledger entry (admin only)
func AdminGetAllEarnings(c *gin.Context) {
	var rows []models.DriverEarning
	query := config.DB
	if status := c.Query("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}
	query.Order("created_at desc").Find(&rows)
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "earnings": rows})
}
