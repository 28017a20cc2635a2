package models

import "time"

// OrderStatus represents all possible states of a storefront order
type OrderStatus string

const (
	StatusReceived   OrderStatus = "entrada"
	StatusPreparing  OrderStatus = "em_preparo"
	StatusReady      OrderStatus = "pronto"
	StatusDispatched OrderStatus = "saiu_entrega"
	StatusInTransit  OrderStatus = "em_transito"
	StatusCompleted  OrderStatus = "concluido"
	StatusCancelled  OrderStatus = "cancelado"
)

// DeliveryType distinguishes courier deliveries from counter pickup
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Order money fields are integer centavos.
type Order struct {
	ID               uint                 `json:"id" gorm:"primaryKey"`
	CustomerID       uint                 `json:"customer_id" gorm:"not null"`
	Customer         User                 `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	StoreID          uint                 `json:"store_id" gorm:"not null;index"`
	Store            Store                `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	AssignedDriverID *uint                `json:"assigned_driver_id" gorm:"index"`
	AssignedDriver   *User                `json:"assigned_driver,omitempty" gorm:"foreignKey:AssignedDriverID"`
	Status           OrderStatus          `json:"status" gorm:"not null;default:'entrada'"`
	DeliveryType     DeliveryType         `json:"delivery_type" gorm:"not null;default:'delivery'"`
	DeliveryAddress  string               `json:"delivery_address"`
	DeliveryFeeCents int64                `json:"delivery_fee_cents"`
	SubtotalCents    int64                `json:"subtotal_cents"`
	TotalCents       int64                `json:"total_cents"`
	Notes            string               `json:"notes"`
	Items            []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory    []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	OrderID    uint    `json:"order_id" gorm:"not null"`
	ProductID  uint    `json:"product_id" gorm:"not null"`
	Product    Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	PriceCents int64   `json:"price_cents" gorm:"not null"` // snapshot price at time of order
	Name       string  `json:"name"`                        // snapshot name
}

// OrderStatusHistory tracks every status change for auditing
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
