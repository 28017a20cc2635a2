package earnings

import (
	"errors"
	"time"

	"mostralo-api/core"
	"mostralo-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns DriverEarning rows and is the only mutator of their
// payment status.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a Ledger bound to an open transaction, so settlement
// can run inside a caller-owned atomic unit.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// RecordEarning creates the earning for a delivered order. Keyed by the
// unique order_id index: a duplicate trigger is a no-op, not an error,
// so at-least-once delivery events stay safe. Returns whether a row was
// actually created.
func (l *Ledger) RecordEarning(order *models.Order, driverID uint, cfg *models.EarningsConfig) (bool, error) {
	earning := models.DriverEarning{
		OrderID:          order.ID,
		DriverID:         driverID,
		StoreID:          order.StoreID,
		DeliveryFeeCents: order.DeliveryFeeCents,
		EarningsCents:    Payout(order.DeliveryFeeCents, cfg),
		PaymentType:      PayoutType(cfg),
		PaymentStatus:    models.PaymentPending,
	}
	res := l.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(&earning)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Settle marks every referenced earning paid, all-or-nothing. The
// conditional batch update only touches rows that are still pending and
// owned by the driver/store pair; any mismatch rolls the whole batch
// back with InvalidEarningsReference.
func (l *Ledger) Settle(driverID, storeID uint, earningIDs []uint, reference, receiptURL string) error {
	ids := dedupe(earningIDs)
	if len(ids) == 0 {
		return core.ErrValidation
	}
	if reference == "" {
		return core.ErrValidation
	}
	return l.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.DriverEarning{}).
			Where("id IN ? AND driver_id = ? AND store_id = ? AND payment_status = ?",
				ids, driverID, storeID, models.PaymentPending).
			Updates(map[string]interface{}{
				"payment_status":       models.PaymentPaid,
				"paid_at":              now,
				"payment_reference":    reference,
				"payment_receipt_url":  receiptURL,
				"payment_requested_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return core.ErrInvalidEarningsReference
		}
		return nil
	})
}

// MarkRequested flags pending, unrequested earnings of the driver as
// part of an open payment request. Fails if any id is not owned, not
// pending, or already flagged.
func (l *Ledger) MarkRequested(driverID uint, earningIDs []uint) error {
	return l.flipRequested(driverID, earningIDs, true)
}

// ClearRequested releases the flag so the earnings become requestable
// again after a rejection.
func (l *Ledger) ClearRequested(driverID uint, earningIDs []uint) error {
	return l.flipRequested(driverID, earningIDs, false)
}

func (l *Ledger) flipRequested(driverID uint, earningIDs []uint, requested bool) error {
	ids := dedupe(earningIDs)
	if len(ids) == 0 {
		return core.ErrValidation
	}
	return l.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.DriverEarning{}).
			Where("id IN ? AND driver_id = ? AND payment_status = ?", ids, driverID, models.PaymentPending)
		var value interface{}
		if requested {
			q = q.Where("payment_requested_at IS NULL")
			value = time.Now().UTC()
		} else {
			q = q.Where("payment_requested_at IS NOT NULL")
			value = nil
		}
		res := q.Update("payment_requested_at", value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return core.ErrInvalidEarningsReference
		}
		return nil
	})
}

// FindOwned loads the referenced earnings and verifies all of them are
// owned by the driver and pending. Used to compute request totals from
// a fresh read before any mutation.
func (l *Ledger) FindOwned(driverID uint, earningIDs []uint) ([]models.DriverEarning, error) {
	ids := dedupe(earningIDs)
	if len(ids) == 0 {
		return nil, core.ErrValidation
	}
	var rows []models.DriverEarning
	if err := l.db.Where("id IN ? AND driver_id = ? AND payment_status = ?",
		ids, driverID, models.PaymentPending).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, core.ErrInvalidEarningsReference
	}
	return rows, nil
}

// ListForDriver returns the driver's earnings, newest first, optionally
// filtered by payment status.
func (l *Ledger) ListForDriver(driverID uint, status models.PaymentStatus) ([]models.DriverEarning, error) {
	q := l.db.Where("driver_id = ?", driverID)
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	var rows []models.DriverEarning
	err := q.Order("created_at desc").Find(&rows).Error
	return rows, err
}

// ListForStore returns a store's earnings, newest first, optionally
// filtered by driver and payment status.
func (l *Ledger) ListForStore(storeID uint, driverID uint, status models.PaymentStatus) ([]models.DriverEarning, error) {
	q := l.db.Where("store_id = ?", storeID)
	if driverID != 0 {
		q = q.Where("driver_id = ?", driverID)
	}
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	var rows []models.DriverEarning
	err := q.Order("created_at desc").Find(&rows).Error
	return rows, err
}

// Get returns one earning by id.
func (l *Ledger) Get(id uint) (*models.DriverEarning, error) {
	var e models.DriverEarning
	if err := l.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
