package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"mostralo-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func seedCancelOrder(t *testing.T, db *gorm.DB, customerID uint, driverID *uint) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerID:       customerID,
		StoreID:          1,
		AssignedDriverID: driverID,
		Status:           models.StatusPreparing,
		DeliveryType:     models.DeliveryTypeDelivery,
		DeliveryAddress:  "Rua das Flores 123",
		DeliveryFeeCents: 1200,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestCancelOrderBeforeClaim(t *testing.T) {
	db := setupHandlerTest(t)
	order := seedCancelOrder(t, db, 5, nil)

	c, w := testContext(jsonRequest(http.MethodPut, ""), 5, models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(order.ID))}}
	CancelOrder(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.StatusCancelled {
		t.Errorf("order status = %q, want cancelado", got.Status)
	}
}

// Once a driver holds the order the customer cancel must lose: the
// delivery in flight is resolved through the assignment, not by
// flipping the order out from under the driver.
func TestCancelOrderRejectedAfterClaim(t *testing.T) {
	db := setupHandlerTest(t)
	driverID := uint(9)
	order := seedCancelOrder(t, db, 5, &driverID)

	c, w := testContext(jsonRequest(http.MethodPut, ""), 5, models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(order.ID))}}
	CancelOrder(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", w.Code, w.Body.String())
	}
	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.StatusPreparing {
		t.Errorf("order status = %q, want em_preparo", got.Status)
	}
	if got.AssignedDriverID == nil || *got.AssignedDriverID != driverID {
		t.Errorf("AssignedDriverID = %v, want %d", got.AssignedDriverID, driverID)
	}
}

func TestCancelOrderOwnershipCheck(t *testing.T) {
	db := setupHandlerTest(t)
	order := seedCancelOrder(t, db, 5, nil)

	c, w := testContext(jsonRequest(http.MethodPut, ""), 6, models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(order.ID))}}
	CancelOrder(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body: %s)", w.Code, w.Body.String())
	}
}
