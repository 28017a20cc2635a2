package earnings

import (
	"math"

	"mostralo-api/models"
)

// Payout computes the driver payout in centavos for a delivery.
//
// With no config the driver receives the full delivery fee; the store
// has not negotiated a rule, so the fee passes through untouched.
// Fixed configs pay the configured amount regardless of the fee.
// Commission configs pay a percentage of the fee, rounded half to even
// on the centavo so the bias washes out across many deliveries.
func Payout(deliveryFeeCents int64, cfg *models.EarningsConfig) int64 {
	if cfg == nil {
		return deliveryFeeCents
	}
	switch cfg.PaymentType {
	case models.PaymentTypeFixed:
		return cfg.FixedAmountCents
	case models.PaymentTypeCommission:
		return int64(math.RoundToEven(float64(deliveryFeeCents) * cfg.CommissionPercentage / 100))
	default:
		return deliveryFeeCents
	}
}

// PayoutType returns the payment type snapshotted onto the earning. A
// missing config behaves like a 100% commission, so it is recorded as
// commission.
func PayoutType(cfg *models.EarningsConfig) models.PaymentType {
	if cfg == nil {
		return models.PaymentTypeCommission
	}
	return cfg.PaymentType
}
