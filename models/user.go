package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStore    UserRole = "store"
	RoleDriver   UserRole = "driver"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'customer'"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoreDriver links a driver to a store. The row is store-scoped:
// removing it never touches the driver's links to other stores nor any
// historical assignments or earnings.
type StoreDriver struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"not null;uniqueIndex:idx_store_driver"`
	DriverID  uint      `json:"driver_id" gorm:"not null;uniqueIndex:idx_store_driver"`
	Driver    *User     `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	CreatedAt time.Time `json:"created_at"`
}
