package handlers

import (
	"net/http"

	"mostralo-api/config"
	"mostralo-api/models"
	"mostralo-api/notify"
	"mostralo-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStoreOrders returns all orders for the store owner
func GetStoreOrders(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}

	var orders []models.Order
	query := config.DB.Preload("Items.Product").Preload("Customer").Preload("AssignedDriver").
		Where("store_id = ?", store.ID)

	// Filter by status
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	query.Order("created_at desc").Find(&orders)

	// Group counts by status for the dashboard summary
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"store":         store.Name,
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus handles the store's order state transitions
func UpdateOrderStatus(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}
	ownerID := store.OwnerID

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.StoreID != store.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to your store"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status, "store"); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	// Cancelling a claimed order would strand the driver mid-delivery;
	// the assignment must be cancelled first, which releases the order
	if req.Status == models.StatusCancelled && order.AssignedDriverID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cancel the active delivery assignment before cancelling the order"})
		return
	}

	// Conditional on the observed status so concurrent updates cannot
	// both apply; a cancel also requires that no driver claimed the
	// order in the meantime
	query := config.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status)
	if req.Status == models.StatusCancelled {
		query = query.Where("assigned_driver_id IS NULL")
	}
	res := query.Update("status", req.Status)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Order changed state, try again"})
		return
	}

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   req.Status,
		ChangedBy:  ownerID,
		Note:       req.Note,
	}
	config.DB.Create(&history)

	// Entering em_preparo puts a delivery order into the claimable pool
	if req.Status == models.StatusPreparing && order.DeliveryType == models.DeliveryTypeDelivery {
		hub.Publish(notify.TopicAvailableOrders(store.ID), notify.Event{
			Type:    "order_available",
			Payload: map[string]interface{}{"order_id": order.ID},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": string(order.Status),
		"current_status":  string(req.Status),
	})
}
