package handlers

import (
	"net/http"

	"mostralo-api/middleware"
	"mostralo-api/models"

	"github.com/gin-gonic/gin"
)

// GetAvailableOrders shows the claimable pool of a store the driver
// works for. The list may be momentarily stale; Claim is the
// authoritative check.
func GetAvailableOrders(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	storeID, ok := paramID(c, "storeId")
	if !ok {
		return
	}

	if linked, err := linkGuard.IsLinked(caller.UserID, storeID); err != nil || !linked {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not linked to this store"})
		return
	}

	orders, err := coordinator.ListAvailable(storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// ClaimOrder makes the driver the exclusive assignee of an order.
// Exactly one of N racing drivers succeeds; the rest get 409.
func ClaimOrder(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	assignment, err := coordinator.Claim(caller, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Order claimed successfully",
		"assignment": assignment,
	})
}

// GetMyDeliveries returns all assignments of the logged-in driver
func GetMyDeliveries(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	rows, err := coordinator.ListDeliveries(caller, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "deliveries": rows})
}

// PickupOrder transitions the driver's assignment accepted -> picked_up
func PickupOrder(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	assignment, err := lifecycle.MarkPickedUp(caller, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Order picked up successfully",
		"assignment": assignment,
	})
}

// DeliverOrder transitions picked_up -> delivered and records the earning
func DeliverOrder(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	assignment, err := lifecycle.MarkDelivered(caller, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Order delivered successfully",
		"assignment": assignment,
	})
}

type CancelAssignmentRequest struct {
	Note string `json:"note"`
}

// CancelAssignment releases the order back to the pool
func CancelAssignment(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CancelAssignmentRequest
	_ = c.ShouldBindJSON(&req)
	if req.Note == "" {
		req.Note = "Delivery cancelled by driver"
	}

	assignment, err := lifecycle.Cancel(caller, assignmentID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Delivery cancelled, order returned to the pool",
		"assignment": assignment,
	})
}

// GetMyEarnings lists the driver's earnings, optionally by status
func GetMyEarnings(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	rows, err := ledger.ListForDriver(caller.UserID, models.PaymentStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	var pending, paid int64
	for _, e := range rows {
		if e.PaymentStatus == models.PaymentPaid {
			paid += e.EarningsCents
		} else {
			pending += e.EarningsCents
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":         len(rows),
		"pending_cents": pending,
		"paid_cents":    paid,
		"earnings":      rows,
	})
}

type CreatePaymentRequestRequest struct {
	EarningIDs []uint `json:"earning_ids" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

// CreatePaymentRequest batches pending earnings for store review
func CreatePaymentRequest(c *gin.Context) {
	caller := middleware.GetPrincipal(c)

	var req CreatePaymentRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := workflow.CreateRequest(caller, req.EarningIDs, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment request created",
		"request": request,
	})
}

// GetMyPaymentRequests lists the driver's payment requests
func GetMyPaymentRequests(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	rows, err := workflow.ListForDriver(caller, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "requests": rows})
}

// GetMyStores lists the stores the driver is linked to
func GetMyStores(c *gin.Context) {
	caller := middleware.GetPrincipal(c)
	rows, err := linkGuard.ListStores(caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "links": rows})
}
