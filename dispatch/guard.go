package dispatch

import (
	"errors"

	"mostralo-api/core"
	"mostralo-api/models"

	"gorm.io/gorm"
)

// LinkGuard manages the store-driver link and blocks removal while
// deliveries are in flight. History is never touched: unlinking removes
// only the store-scoped link row.
type LinkGuard struct {
	db *gorm.DB
}

func NewLinkGuard(db *gorm.DB) *LinkGuard {
	return &LinkGuard{db: db}
}

// Link attaches a driver to a store. Idempotent: linking twice keeps
// the single row.
func (g *LinkGuard) Link(caller core.Principal, driverID, storeID uint) (*models.StoreDriver, error) {
	if !caller.IsStoreAdmin(storeID) {
		return nil, core.ErrUnauthorized
	}

	var driver models.User
	if err := g.db.First(&driver, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if driver.Role != models.RoleDriver {
		return nil, core.ErrValidation
	}

	link := models.StoreDriver{StoreID: storeID, DriverID: driverID}
	err := g.db.Where("store_id = ? AND driver_id = ?", storeID, driverID).
		FirstOrCreate(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Unlink removes the driver from the store unless non-terminal
// assignments exist. The count check and the delete run in one
// transaction so a claim racing the unlink is observed.
func (g *LinkGuard) Unlink(caller core.Principal, driverID, storeID uint) error {
	if !caller.IsStoreAdmin(storeID) {
		return core.ErrUnauthorized
	}

	return g.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.DeliveryAssignment{}).
			Where("driver_id = ? AND store_id = ? AND status IN ?",
				driverID, storeID,
				[]models.AssignmentStatus{models.AssignmentAccepted, models.AssignmentPickedUp}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return &core.ActiveDeliveriesError{Count: active}
		}

		res := tx.Where("store_id = ? AND driver_id = ?", storeID, driverID).
			Delete(&models.StoreDriver{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

// IsLinked reports whether the driver works for the store.
func (g *LinkGuard) IsLinked(driverID, storeID uint) (bool, error) {
	var n int64
	err := g.db.Model(&models.StoreDriver{}).
		Where("store_id = ? AND driver_id = ?", storeID, driverID).
		Count(&n).Error
	return n > 0, err
}

// ListDrivers returns the store's linked drivers.
func (g *LinkGuard) ListDrivers(caller core.Principal, storeID uint) ([]models.StoreDriver, error) {
	if !caller.IsStoreAdmin(storeID) {
		return nil, core.ErrUnauthorized
	}
	var rows []models.StoreDriver
	err := g.db.Preload("Driver").Where("store_id = ?", storeID).Find(&rows).Error
	return rows, err
}

// ListStores returns the stores a driver is linked to.
func (g *LinkGuard) ListStores(driverID uint) ([]models.StoreDriver, error) {
	var rows []models.StoreDriver
	err := g.db.Where("driver_id = ?", driverID).Find(&rows).Error
	return rows, err
}
