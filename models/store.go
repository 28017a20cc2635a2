package models

import "time"

type Store struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OwnerID     uint   `json:"owner_id" gorm:"not null"`
	Owner       User   `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Address     string `json:"address"`
	Description string `json:"description"`
	IsOpen      bool   `json:"is_open" gorm:"default:true"`
	// DeliveryFeeCents is charged per delivery order and seeds the
	// driver payout calculation.
	DeliveryFeeCents int64     `json:"delivery_fee_cents"`
	Products         []Product `json:"products,omitempty" gorm:"foreignKey:StoreID"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StoreID     uint      `json:"store_id" gorm:"not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents" gorm:"not null"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
