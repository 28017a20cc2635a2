package dispatch

import (
	"errors"
	"time"

	"mostralo-api/core"
	"mostralo-api/earnings"
	"mostralo-api/models"
	"mostralo-api/notify"
	"mostralo-api/statemachine"

	"gorm.io/gorm"
)

// Lifecycle drives a claimed order from acceptance to delivery or
// cancellation. Every transition is a conditional UPDATE keyed on the
// observed status, so two concurrent calls cannot both win.
type Lifecycle struct {
	db      *gorm.DB
	ledger  *earnings.Ledger
	configs *earnings.ConfigService
	pub     notify.Publisher
}

func NewLifecycle(db *gorm.DB, ledger *earnings.Ledger, configs *earnings.ConfigService, pub notify.Publisher) *Lifecycle {
	return &Lifecycle{db: db, ledger: ledger, configs: configs, pub: pub}
}

// MarkPickedUp transitions accepted -> picked_up and moves the order in
// transit. Only the assigned driver may call it.
func (l *Lifecycle) MarkPickedUp(caller core.Principal, assignmentID uint) (*models.DeliveryAssignment, error) {
	a, err := l.load(assignmentID)
	if err != nil {
		return nil, err
	}
	if !caller.IsDriver(a.DriverID) {
		return nil, core.ErrUnauthorized
	}
	if err := statemachine.CanTransitionAssignment(a.Status, models.AssignmentPickedUp, "driver"); err != nil {
		return nil, core.ErrInvalidTransition
	}

	now := time.Now().UTC()
	err = l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DeliveryAssignment{}).
			Where("id = ? AND status = ?", a.ID, models.AssignmentAccepted).
			Updates(map[string]interface{}{"status": models.AssignmentPickedUp, "picked_up_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrInvalidTransition
		}
		return l.moveOrder(tx, a.OrderID, models.StatusInTransit, caller.UserID, "Driver picked up the order")
	})
	if err != nil {
		return nil, err
	}

	a.Status = models.AssignmentPickedUp
	a.PickedUpAt = &now
	l.pub.Publish(notify.TopicDriver(a.DriverID), notify.Event{
		Type:    "assignment_picked_up",
		Payload: map[string]interface{}{"assignment_id": a.ID, "order_id": a.OrderID},
	})
	return a, nil
}

// MarkDelivered transitions picked_up -> delivered, completes the order
// and synchronously records the earning. The earning insert is
// idempotent on order_id, so a duplicate delivery event creates
// nothing and fails nothing.
func (l *Lifecycle) MarkDelivered(caller core.Principal, assignmentID uint) (*models.DeliveryAssignment, error) {
	a, err := l.load(assignmentID)
	if err != nil {
		return nil, err
	}
	if !caller.IsDriver(a.DriverID) {
		return nil, core.ErrUnauthorized
	}
	if err := statemachine.CanTransitionAssignment(a.Status, models.AssignmentDelivered, "driver"); err != nil {
		return nil, core.ErrInvalidTransition
	}

	cfg, err := l.configs.Active(a.DriverID, a.StoreID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DeliveryAssignment{}).
			Where("id = ? AND status = ?", a.ID, models.AssignmentPickedUp).
			Updates(map[string]interface{}{"status": models.AssignmentDelivered, "delivered_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrInvalidTransition
		}

		var order models.Order
		if err := tx.First(&order, a.OrderID).Error; err != nil {
			return err
		}
		if err := l.moveOrder(tx, a.OrderID, models.StatusCompleted, caller.UserID, "Order delivered to customer"); err != nil {
			return err
		}

		_, err := l.ledger.WithTx(tx).RecordEarning(&order, a.DriverID, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.Status = models.AssignmentDelivered
	a.DeliveredAt = &now
	l.pub.Publish(notify.TopicDriver(a.DriverID), notify.Event{
		Type:    "assignment_delivered",
		Payload: map[string]interface{}{"assignment_id": a.ID, "order_id": a.OrderID},
	})
	return a, nil
}

// Cancel terminates the assignment and returns the order to the pool:
// driver cleared, status back to em_preparo, history kept. The caller
// is either the assigned driver or a store admin for the store.
func (l *Lifecycle) Cancel(caller core.Principal, assignmentID uint, note string) (*models.DeliveryAssignment, error) {
	a, err := l.load(assignmentID)
	if err != nil {
		return nil, err
	}

	actor := ""
	switch {
	case caller.IsDriver(a.DriverID):
		actor = "driver"
	case caller.IsStoreAdmin(a.StoreID):
		actor = "store"
	default:
		return nil, core.ErrUnauthorized
	}
	if err := statemachine.CanTransitionAssignment(a.Status, models.AssignmentCancelled, actor); err != nil {
		return nil, core.ErrInvalidTransition
	}

	now := time.Now().UTC()
	err = l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DeliveryAssignment{}).
			Where("id = ? AND status = ?", a.ID, a.Status).
			Updates(map[string]interface{}{
				"status":       models.AssignmentCancelled,
				"cancelled_at": now,
				"cancelled_by": caller.UserID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrInvalidTransition
		}

		if err := l.moveOrder(tx, a.OrderID, models.StatusPreparing, caller.UserID, note); err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", a.OrderID).
			Update("assigned_driver_id", nil).Error
	})
	if err != nil {
		return nil, err
	}

	a.Status = models.AssignmentCancelled
	a.CancelledAt = &now
	l.pub.Publish(notify.TopicAvailableOrders(a.StoreID), notify.Event{
		Type:    "order_available",
		Payload: map[string]interface{}{"order_id": a.OrderID},
	})
	l.pub.Publish(notify.TopicDriver(a.DriverID), notify.Event{
		Type:    "assignment_cancelled",
		Payload: map[string]interface{}{"assignment_id": a.ID, "order_id": a.OrderID},
	})
	return a, nil
}

// Get returns one assignment, visible to its driver and store admins.
func (l *Lifecycle) Get(caller core.Principal, assignmentID uint) (*models.DeliveryAssignment, error) {
	a, err := l.load(assignmentID)
	if err != nil {
		return nil, err
	}
	if !caller.IsDriver(a.DriverID) && !caller.IsStoreAdmin(a.StoreID) {
		return nil, core.ErrUnauthorized
	}
	return a, nil
}

func (l *Lifecycle) load(id uint) (*models.DeliveryAssignment, error) {
	var a models.DeliveryAssignment
	if err := l.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// moveOrder flips the order status and appends the audit row. The
// from-status is whatever the order currently holds; assignment-driven
// moves are recorded under the "system" actor transitions. The move is
// validated against the order state machine, so an order that left the
// delivery flow (a terminal cancelado, for one) rolls the whole
// assignment transition back.
func (l *Lifecycle) moveOrder(tx *gorm.DB, orderID uint, to models.OrderStatus, changedBy uint, note string) error {
	var order models.Order
	if err := tx.Select("id", "status").First(&order, orderID).Error; err != nil {
		return err
	}
	if order.Status == to {
		return nil
	}
	if err := statemachine.CanTransition(order.Status, to, "system"); err != nil {
		return core.ErrInvalidTransition
	}
	if err := tx.Model(&models.Order{}).Where("id = ? AND status = ?", orderID, order.Status).
		Update("status", to).Error; err != nil {
		return err
	}
	return tx.Create(&models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: order.Status,
		ToStatus:   to,
		ChangedBy:  changedBy,
		Note:       note,
	}).Error
}
