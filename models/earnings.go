package models

import "time"

// PaymentType selects how a driver is paid per delivery
type PaymentType string

const (
	PaymentTypeFixed      PaymentType = "fixed"
	PaymentTypeCommission PaymentType = "commission"
)

// PaymentStatus of a DriverEarning
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// EarningsConfig is the payout rule a store sets for a driver. Configs
// are never deleted; superseded rows are deactivated so historical
// earnings keep their attribution. At most one active config exists
// per (driver, store).
type EarningsConfig struct {
	ID                   uint        `json:"id" gorm:"primaryKey"`
	DriverID             uint        `json:"driver_id" gorm:"not null;index:idx_earnings_config"`
	StoreID              uint        `json:"store_id" gorm:"not null;index:idx_earnings_config"`
	PaymentType          PaymentType `json:"payment_type" gorm:"not null"`
	FixedAmountCents     int64       `json:"fixed_amount_cents"`     // required iff fixed
	CommissionPercentage float64     `json:"commission_percentage"`  // 0–100, required iff commission
	IsActive             bool        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// DriverEarning is created exactly once, when an assignment reaches
// delivered. Immutable except for the payment transition fields.
type DriverEarning struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	OrderID            uint          `json:"order_id" gorm:"not null;uniqueIndex"`
	DriverID           uint          `json:"driver_id" gorm:"not null;index"`
	StoreID            uint          `json:"store_id" gorm:"not null;index"`
	DeliveryFeeCents   int64         `json:"delivery_fee_cents" gorm:"not null"`
	EarningsCents      int64         `json:"earnings_cents" gorm:"not null"`
	PaymentType        PaymentType   `json:"payment_type" gorm:"not null"` // snapshot at creation
	PaymentStatus      PaymentStatus `json:"payment_status" gorm:"not null;default:'pending';index"`
	PaymentRequestedAt *time.Time    `json:"payment_requested_at"`
	PaidAt             *time.Time    `json:"paid_at"`
	PaymentReference   string        `json:"payment_reference"`
	PaymentReceiptURL  string        `json:"payment_receipt_url"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
