package earnings

import (
	"errors"

	"mostralo-api/core"
	"mostralo-api/models"

	"gorm.io/gorm"
)

// ConfigService manages payout rules. Configs are deactivated, never
// deleted, so earnings recorded under an old rule keep their
// attribution.
type ConfigService struct {
	db *gorm.DB
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{db: db}
}

// ConfigInput is the store admin's payout rule for one driver.
type ConfigInput struct {
	DriverID             uint
	StoreID              uint
	PaymentType          models.PaymentType
	FixedAmountCents     int64
	CommissionPercentage float64
}

func (in ConfigInput) validate() error {
	switch in.PaymentType {
	case models.PaymentTypeFixed:
		if in.FixedAmountCents <= 0 {
			return core.ErrValidation
		}
	case models.PaymentTypeCommission:
		if in.CommissionPercentage < 0 || in.CommissionPercentage > 100 {
			return core.ErrValidation
		}
	default:
		return core.ErrValidation
	}
	return nil
}

// Set replaces the active config for (driver, store): the previous
// active row is deactivated and a fresh row inserted, in one
// transaction, keeping at most one active config per pair.
func (s *ConfigService) Set(caller core.Principal, in ConfigInput) (*models.EarningsConfig, error) {
	if !caller.IsStoreAdmin(in.StoreID) {
		return nil, core.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	cfg := models.EarningsConfig{
		DriverID:             in.DriverID,
		StoreID:              in.StoreID,
		PaymentType:          in.PaymentType,
		FixedAmountCents:     in.FixedAmountCents,
		CommissionPercentage: in.CommissionPercentage,
		IsActive:             true,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EarningsConfig{}).
			Where("driver_id = ? AND store_id = ? AND is_active = ?", in.DriverID, in.StoreID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Deactivate turns off the active config without a replacement; the
// driver falls back to receiving the full delivery fee.
func (s *ConfigService) Deactivate(caller core.Principal, driverID, storeID uint) error {
	if !caller.IsStoreAdmin(storeID) {
		return core.ErrUnauthorized
	}
	res := s.db.Model(&models.EarningsConfig{}).
		Where("driver_id = ? AND store_id = ? AND is_active = ?", driverID, storeID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Active returns the active config for (driver, store), or nil when the
// store has not configured one.
func (s *ConfigService) Active(driverID, storeID uint) (*models.EarningsConfig, error) {
	var cfg models.EarningsConfig
	err := s.db.Where("driver_id = ? AND store_id = ? AND is_active = ?", driverID, storeID, true).
		Order("created_at desc").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// History lists every config ever created for the pair, newest first.
func (s *ConfigService) History(caller core.Principal, driverID, storeID uint) ([]models.EarningsConfig, error) {
	if !caller.IsStoreAdmin(storeID) {
		return nil, core.ErrUnauthorized
	}
	var rows []models.EarningsConfig
	err := s.db.Where("driver_id = ? AND store_id = ?", driverID, storeID).
		Order("created_at desc").Find(&rows).Error
	return rows, err
}
