package models

import "time"

// RequestStatus of a PaymentRequest
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// PaymentRequest is a driver-initiated batch of pending earnings
// submitted for store-admin review. TotalCents is the sum of the
// referenced earnings at creation time.
type PaymentRequest struct {
	ID          uint                 `json:"id" gorm:"primaryKey"`
	DriverID    uint                 `json:"driver_id" gorm:"not null;index"`
	Driver      User                 `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	StoreID     uint                 `json:"store_id" gorm:"not null;index"`
	TotalCents  int64                `json:"total_cents" gorm:"not null"`
	Status      RequestStatus        `json:"status" gorm:"not null;default:'pending';index"`
	Notes       string               `json:"notes"`
	RequestedAt time.Time            `json:"requested_at"`
	ReviewedAt  *time.Time           `json:"reviewed_at"`
	Items       []PaymentRequestItem `json:"items,omitempty" gorm:"foreignKey:RequestID"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// PaymentRequestItem links a request to one earning. An earning may be
// referenced by at most one pending or approved request; the workflow
// enforces that through the earning's payment_requested_at flag.
type PaymentRequestItem struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	RequestID uint          `json:"request_id" gorm:"not null;index"`
	EarningID uint          `json:"earning_id" gorm:"not null;index"`
	Earning   DriverEarning `json:"earning,omitempty" gorm:"foreignKey:EarningID"`
}
