package handlers

import (
	"encoding/base64"
	"net/http"

	"mostralo-api/earnings"
	"mostralo-api/models"

	"github.com/gin-gonic/gin"
)

type EarningsConfigRequest struct {
	DriverID             uint               `json:"driver_id" binding:"required"`
	PaymentType          models.PaymentType `json:"payment_type" binding:"required"`
	FixedAmountCents     int64              `json:"fixed_amount_cents"`
	CommissionPercentage float64            `json:"commission_percentage"`
}

// SetEarningsConfig creates or replaces the driver's payout rule
func SetEarningsConfig(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}

	var req EarningsConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := configs.Set(caller, earnings.ConfigInput{
		DriverID:             req.DriverID,
		StoreID:              store.ID,
		PaymentType:          req.PaymentType,
		FixedAmountCents:     req.FixedAmountCents,
		CommissionPercentage: req.CommissionPercentage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Earnings config saved", "config": cfg})
}

// DeactivateEarningsConfig turns the active rule off; the driver falls
// back to the full delivery fee
func DeactivateEarningsConfig(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}
	driverID, ok := paramID(c, "driverId")
	if !ok {
		return
	}

	if err := configs.Deactivate(caller, driverID, store.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Earnings config deactivated"})
}

// GetEarningsConfigHistory lists every rule ever set for the driver
func GetEarningsConfigHistory(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}
	driverID, ok := paramID(c, "driverId")
	if !ok {
		return
	}

	rows, err := configs.History(caller, driverID, store.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "configs": rows})
}

// GetStoreEarnings lists earnings owed by the store
func GetStoreEarnings(c *gin.Context) {
	_, store, ok := storePrincipal(c)
	if !ok {
		return
	}

	var driverID uint
	if v := c.Query("driver_id"); v != "" {
		if id, err := parseUintQuery(v); err == nil {
			driverID = id
		}
	}

	rows, err := ledger.ListForStore(store.ID, driverID, models.PaymentStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	var pending int64
	for _, e := range rows {
		if e.PaymentStatus == models.PaymentPending {
			pending += e.EarningsCents
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":         len(rows),
		"pending_cents": pending,
		"earnings":      rows,
	})
}

// GetPaymentRequests lists the store's payment requests
func GetPaymentRequests(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}

	rows, err := workflow.ListForStore(caller, store.ID, models.RequestStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "requests": rows})
}

// receiptPayload is the optional proof-of-payment attachment. Upload
// failure never blocks the settlement itself.
type receiptPayload struct {
	ReceiptBase64      string `json:"receipt_base64"`
	ReceiptContentType string `json:"receipt_content_type"`
}

func (r receiptPayload) decode(c *gin.Context) ([]byte, string, bool) {
	if r.ReceiptBase64 == "" {
		return nil, "", true
	}
	data, err := base64.StdEncoding.DecodeString(r.ReceiptBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receipt encoding"})
		return nil, "", false
	}
	return data, r.ReceiptContentType, true
}

type ApproveRequestRequest struct {
	Reference string `json:"reference" binding:"required"`
	receiptPayload
}

// ApprovePaymentRequest settles every earning in a pending request
func ApprovePaymentRequest(c *gin.Context) {
	caller, _, ok := storePrincipal(c)
	if !ok {
		return
	}
	requestID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ApproveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	receipt, receiptType, ok := req.decode(c)
	if !ok {
		return
	}

	request, warning, err := workflow.Approve(caller, requestID, req.Reference, receipt, receiptType)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"message": "Payment request approved", "request": request}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

type RejectRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectPaymentRequest releases the request's earnings for a new request
func RejectPaymentRequest(c *gin.Context) {
	caller, _, ok := storePrincipal(c)
	if !ok {
		return
	}
	requestID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req RejectRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := workflow.Reject(caller, requestID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment request rejected", "request": request})
}

type DirectPayRequest struct {
	DriverID   uint   `json:"driver_id" binding:"required"`
	EarningIDs []uint `json:"earning_ids" binding:"required,min=1"`
	Reference  string `json:"reference" binding:"required"`
	receiptPayload
}

// DirectPay settles pending earnings without a driver request
func DirectPay(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}

	var req DirectPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	receipt, receiptType, ok := req.decode(c)
	if !ok {
		return
	}

	warning, err := workflow.DirectPay(caller, req.DriverID, store.ID, req.EarningIDs, req.Reference, receipt, receiptType)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"message": "Earnings settled"}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// LinkDriver attaches a driver to the store
func LinkDriver(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}
	driverID, ok := paramID(c, "driverId")
	if !ok {
		return
	}

	link, err := linkGuard.Link(caller, driverID, store.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Driver linked", "link": link})
}

// UnlinkDriver removes the driver unless deliveries are in flight
func UnlinkDriver(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}
	driverID, ok := paramID(c, "driverId")
	if !ok {
		return
	}

	if err := linkGuard.Unlink(caller, driverID, store.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver unlinked"})
}

// GetStoreDrivers lists the store's linked drivers
func GetStoreDrivers(c *gin.Context) {
	caller, store, ok := storePrincipal(c)
	if !ok {
		return
	}

	rows, err := linkGuard.ListDrivers(caller, store.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "drivers": rows})
}
