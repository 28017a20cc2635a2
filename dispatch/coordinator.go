package dispatch

import (
	"errors"
	"time"

	"mostralo-api/core"
	"mostralo-api/models"
	"mostralo-api/notify"

	"gorm.io/gorm"
)

// Coordinator exposes the available-order pool and performs the
// race-free claim. Availability is a predicate, not a flag: an order is
// claimable iff it is a delivery order in em_preparo with no driver.
type Coordinator struct {
	db  *gorm.DB
	pub notify.Publisher
}

func NewCoordinator(db *gorm.DB, pub notify.Publisher) *Coordinator {
	return &Coordinator{db: db, pub: pub}
}

// ListAvailable returns the store's claimable orders, oldest first so
// waiting orders are taken fairly.
func (c *Coordinator) ListAvailable(storeID uint) ([]models.Order, error) {
	var orders []models.Order
	err := c.db.
		Where("store_id = ? AND status = ? AND delivery_type = ? AND assigned_driver_id IS NULL",
			storeID, models.StatusPreparing, models.DeliveryTypeDelivery).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// Claim makes the caller the exclusive assignee of the order. The
// decision is a single conditional UPDATE, never read-then-write, so
// of N racing drivers exactly one sees RowsAffected == 1; the rest get
// OrderUnavailable and no mutation.
func (c *Coordinator) Claim(caller core.Principal, orderID uint) (*models.DeliveryAssignment, error) {
	if caller.Role != core.RoleDriver {
		return nil, core.ErrUnauthorized
	}

	var assignment models.DeliveryAssignment
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "store_id").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrNotFound
			}
			return err
		}

		// Only drivers linked to the store may work its orders
		var linked int64
		if err := tx.Model(&models.StoreDriver{}).
			Where("store_id = ? AND driver_id = ?", order.StoreID, caller.UserID).
			Count(&linked).Error; err != nil {
			return err
		}
		if linked == 0 {
			return core.ErrUnauthorized
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND delivery_type = ? AND assigned_driver_id IS NULL",
				orderID, models.StatusPreparing, models.DeliveryTypeDelivery).
			Update("assigned_driver_id", caller.UserID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race or the order left the pool; expected, not an error
			return core.ErrOrderUnavailable
		}

		assignment = models.DeliveryAssignment{
			OrderID:    orderID,
			DriverID:   caller.UserID,
			StoreID:    order.StoreID,
			Status:     models.AssignmentAccepted,
			AcceptedAt: time.Now().UTC(),
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}

	c.publishPoolChanged(assignment.StoreID, orderID, "order_claimed")
	c.pub.Publish(notify.TopicDriver(caller.UserID), notify.Event{
		Type:    "assignment_accepted",
		Payload: map[string]interface{}{"assignment_id": assignment.ID, "order_id": orderID},
	})
	return &assignment, nil
}

// ListDeliveries returns the driver's assignments, newest first.
func (c *Coordinator) ListDeliveries(caller core.Principal, driverID uint) ([]models.DeliveryAssignment, error) {
	if !caller.IsDriver(driverID) && caller.Role != core.RoleAdmin {
		return nil, core.ErrUnauthorized
	}
	var rows []models.DeliveryAssignment
	err := c.db.Preload("Order").
		Where("driver_id = ?", driverID).
		Order("created_at desc").
		Find(&rows).Error
	return rows, err
}

func (c *Coordinator) publishPoolChanged(storeID, orderID uint, eventType string) {
	c.pub.Publish(notify.TopicAvailableOrders(storeID), notify.Event{
		Type:    eventType,
		Payload: map[string]interface{}{"order_id": orderID},
	})
}
