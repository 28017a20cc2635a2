package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrOrderUnavailable is returned when a claim loses the race or the order left the pool
	ErrOrderUnavailable = errors.New("order is no longer available")

	// ErrInvalidTransition is returned when a lifecycle guard rejects the move
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnauthorized is returned when the caller is not allowed to act on the entity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidEarningsReference is returned when a settlement references
	// earnings that are not owned, not pending, or already requested
	ErrInvalidEarningsReference = errors.New("invalid earnings reference")

	// ErrUploadFailure is returned when receipt storage fails
	ErrUploadFailure = errors.New("upload failed")

	// ErrValidation is returned on missing or malformed input fields
	ErrValidation = errors.New("validation error")
)

// ActiveDeliveriesError blocks unlinking a driver while deliveries are in flight.
// Count carries the number of non-terminal assignments for the pair.
type ActiveDeliveriesError struct {
	Count int64
}

func (e *ActiveDeliveriesError) Error() string {
	return fmt.Sprintf("driver has %d active deliveries", e.Count)
}
