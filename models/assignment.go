package models

import "time"

// AssignmentStatus represents the delivery assignment lifecycle
type AssignmentStatus string

const (
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentPickedUp  AssignmentStatus = "picked_up"
	AssignmentDelivered AssignmentStatus = "delivered"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentDelivered || s == AssignmentCancelled
}

// DeliveryAssignment is an append-only record of a driver taking an
// order. At most one non-terminal assignment exists per order; the
// authoritative "active" pointer is orders.assigned_driver_id, so
// cancelled assignments stay behind as history.
type DeliveryAssignment struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	OrderID     uint             `json:"order_id" gorm:"not null;index"`
	Order       Order            `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	DriverID    uint             `json:"driver_id" gorm:"not null;index"`
	Driver      User             `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	StoreID     uint             `json:"store_id" gorm:"not null;index"`
	Status      AssignmentStatus `json:"status" gorm:"not null;default:'accepted'"`
	AcceptedAt  time.Time        `json:"accepted_at"`
	PickedUpAt  *time.Time       `json:"picked_up_at"`
	DeliveredAt *time.Time       `json:"delivered_at"`
	CancelledAt *time.Time       `json:"cancelled_at"`
	CancelledBy *uint            `json:"cancelled_by"` // user ID of driver or store admin
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
