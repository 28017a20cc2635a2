package handlers

import (
	"net/http"

	"mostralo-api/config"
	"mostralo-api/middleware"
	"mostralo-api/models"
	"mostralo-api/notify"
	"mostralo-api/statemachine"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	StoreID         uint                `json:"store_id" binding:"required"`
	DeliveryType    models.DeliveryType `json:"delivery_type"`
	DeliveryAddress string              `json:"delivery_address"`
	Notes           string              `json:"notes"`
	Items           []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates a new order (customer only)
func PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DeliveryType == "" {
		req.DeliveryType = models.DeliveryTypeDelivery
	}
	if req.DeliveryType == models.DeliveryTypeDelivery && req.DeliveryAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address is required for delivery orders"})
		return
	}

	// Validate store exists and is open
	var store models.Store
	if err := config.DB.First(&store, req.StoreID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	if !store.IsOpen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Store is currently closed"})
		return
	}

	// Build order items and calculate subtotal
	var orderItems []models.OrderItem
	var subtotal int64

	for _, reqItem := range req.Items {
		var product models.Product
		if err := config.DB.First(&product, reqItem.ProductID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
			return
		}
		if product.StoreID != req.StoreID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not belong to this store"})
			return
		}
		if !product.IsAvailable {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product '" + product.Name + "' is not available"})
			return
		}
		subtotal += product.PriceCents * int64(reqItem.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:  product.ID,
			Quantity:   reqItem.Quantity,
			PriceCents: product.PriceCents,
			Name:       product.Name,
		})
	}

	deliveryFee := int64(0)
	if req.DeliveryType == models.DeliveryTypeDelivery {
		deliveryFee = store.DeliveryFeeCents
	}

	order := models.Order{
		CustomerID:       customerID,
		StoreID:          req.StoreID,
		Status:           models.StatusReceived,
		DeliveryType:     req.DeliveryType,
		DeliveryAddress:  req.DeliveryAddress,
		DeliveryFeeCents: deliveryFee,
		SubtotalCents:    subtotal,
		TotalCents:       subtotal + deliveryFee,
		Notes:            req.Notes,
		Items:            orderItems,
	}

	if err := config.DB.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	// Record initial status history
	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		ToStatus:  models.StatusReceived,
		ChangedBy: customerID,
		Note:      "Order placed by customer",
	}
	config.DB.Create(&history)

	config.DB.Preload("Items.Product").Preload("Store").First(&order, order.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var orders []models.Order
	config.DB.Preload("Items.Product").Preload("Store").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func GetOrderDetail(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := config.DB.
		Preload("Items.Product").
		Preload("Store").
		Preload("StatusHistory").
		Preload("AssignedDriver").
		First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels an order before it reaches the courier
func CancelOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := config.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, "customer"); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Cannot cancel order",
			"reason":        err.Error(),
			"current_state": order.Status,
		})
		return
	}
	if order.AssignedDriverID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A driver already claimed this order, ask the store to cancel the delivery"})
		return
	}

	// Conditional on the observed status and on no driver holding the
	// order, so the cancel loses cleanly when the order moved on or was
	// claimed concurrently
	res := config.DB.Model(&models.Order{}).
		Where("id = ? AND status = ? AND assigned_driver_id IS NULL", order.ID, order.Status).
		Update("status", models.StatusCancelled)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Order changed state, try again"})
		return
	}

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   models.StatusCancelled,
		ChangedBy:  customerID,
		Note:       "Order cancelled by customer",
	}
	config.DB.Create(&history)

	hub.Publish(notify.TopicAvailableOrders(order.StoreID), notify.Event{
		Type:    "order_cancelled",
		Payload: map[string]interface{}{"order_id": order.ID},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}
