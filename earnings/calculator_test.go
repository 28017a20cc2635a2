package earnings

import (
	"testing"

	"mostralo-api/models"
)

func TestPayout(t *testing.T) {
	fixed := func(cents int64) *models.EarningsConfig {
		return &models.EarningsConfig{PaymentType: models.PaymentTypeFixed, FixedAmountCents: cents}
	}
	commission := func(pct float64) *models.EarningsConfig {
		return &models.EarningsConfig{PaymentType: models.PaymentTypeCommission, CommissionPercentage: pct}
	}

	tests := []struct {
		name     string
		feeCents int64
		cfg      *models.EarningsConfig
		want     int64
	}{
		{"no config passes fee through", 1200, nil, 1200},
		{"no config with zero fee", 0, nil, 0},
		{"fixed ignores the fee", 1200, fixed(500), 500},
		{"fixed with zero fee", 0, fixed(500), 500},
		{"commission 75% of 12.00", 1200, commission(75), 900},
		{"commission 75% of 10.00", 1000, commission(75), 750},
		{"commission 100%", 1200, commission(100), 1200},
		{"commission 0%", 1200, commission(0), 0},
		{"half centavo rounds to even down", 100, commission(0.5), 0},
		{"half centavo rounds to even up", 100, commission(1.5), 2},
		{"commission of zero fee", 0, commission(75), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Payout(tt.feeCents, tt.cfg); got != tt.want {
				t.Errorf("Payout(%d, %+v) = %d, want %d", tt.feeCents, tt.cfg, got, tt.want)
			}
		})
	}
}

func TestPayoutIsPure(t *testing.T) {
	cfg := &models.EarningsConfig{PaymentType: models.PaymentTypeCommission, CommissionPercentage: 75}
	first := Payout(1200, cfg)
	for i := 0; i < 100; i++ {
		if got := Payout(1200, cfg); got != first {
			t.Fatalf("Payout not deterministic: got %d then %d", first, got)
		}
	}
}

func TestPayoutType(t *testing.T) {
	if got := PayoutType(nil); got != models.PaymentTypeCommission {
		t.Errorf("PayoutType(nil) = %q, want commission", got)
	}
	cfg := &models.EarningsConfig{PaymentType: models.PaymentTypeFixed}
	if got := PayoutType(cfg); got != models.PaymentTypeFixed {
		t.Errorf("PayoutType(fixed) = %q, want fixed", got)
	}
}
