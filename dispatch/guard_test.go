package dispatch

import (
	"errors"
	"testing"

	"mostralo-api/core"
	"mostralo-api/earnings"
	"mostralo-api/models"
)

func TestLinkIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 0)
	guard := NewLinkGuard(db)
	admin := core.Principal{UserID: f.store.OwnerID, Role: core.RoleStore, StoreID: f.store.ID}

	driver := models.User{Name: "Zé", Email: "ze@example.com", PasswordHash: "x", Role: models.RoleDriver}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("seed driver: %v", err)
	}

	if _, err := guard.Link(admin, driver.ID, f.store.ID); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if _, err := guard.Link(admin, driver.ID, f.store.ID); err != nil {
		t.Fatalf("second Link: %v", err)
	}

	var n int64
	db.Model(&models.StoreDriver{}).
		Where("store_id = ? AND driver_id = ?", f.store.ID, driver.ID).Count(&n)
	if n != 1 {
		t.Fatalf("%d link rows, want 1", n)
	}

	linked, err := guard.IsLinked(driver.ID, f.store.ID)
	if err != nil || !linked {
		t.Fatalf("IsLinked = %v, %v; want true", linked, err)
	}
}

func TestLinkRejectsNonDrivers(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 0)
	guard := NewLinkGuard(db)
	admin := core.Principal{UserID: f.store.OwnerID, Role: core.RoleStore, StoreID: f.store.ID}

	customer := models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	if _, err := guard.Link(admin, customer.ID, f.store.ID); !errors.Is(err, core.ErrValidation) {
		t.Errorf("link a customer: err = %v, want Validation", err)
	}
	if _, err := guard.Link(admin, 9999, f.store.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("link missing user: err = %v, want NotFound", err)
	}

	other := core.Principal{UserID: 50, Role: core.RoleStore, StoreID: 99}
	if _, err := guard.Link(other, customer.ID, f.store.ID); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("link from foreign store: err = %v, want Unauthorized", err)
	}
}

func TestUnlinkBlockedByActiveDeliveries(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 1)
	guard := NewLinkGuard(db)
	coord := NewCoordinator(db, nopPublisher{})
	life := NewLifecycle(db, earnings.NewLedger(db), earnings.NewConfigService(db), nopPublisher{})
	admin := core.Principal{UserID: f.store.OwnerID, Role: core.RoleStore, StoreID: f.store.ID}
	caller := driverPrincipal(f.driver)

	a := claimOrder(t, f, coord)
	if _, err := life.MarkPickedUp(caller, a.ID); err != nil {
		t.Fatalf("MarkPickedUp: %v", err)
	}

	err := guard.Unlink(admin, f.driver.ID, f.store.ID)
	var active *core.ActiveDeliveriesError
	if !errors.As(err, &active) {
		t.Fatalf("unlink with delivery in flight: err = %v, want ActiveDeliveriesError", err)
	}
	if active.Count != 1 {
		t.Errorf("ActiveDeliveriesError.Count = %d, want 1", active.Count)
	}

	// finishing the delivery unblocks the unlink
	if _, err := life.MarkDelivered(caller, a.ID); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if err := guard.Unlink(admin, f.driver.ID, f.store.ID); err != nil {
		t.Fatalf("unlink after delivery: %v", err)
	}

	// history survives the unlink
	var assignments, earned int64
	db.Model(&models.DeliveryAssignment{}).Where("driver_id = ?", f.driver.ID).Count(&assignments)
	db.Model(&models.DriverEarning{}).Where("driver_id = ?", f.driver.ID).Count(&earned)
	if assignments != 1 || earned != 1 {
		t.Errorf("history after unlink: %d assignments, %d earnings; want 1 and 1", assignments, earned)
	}
}

func TestUnlinkMissingLink(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 0)
	guard := NewLinkGuard(db)
	admin := core.Principal{UserID: f.store.OwnerID, Role: core.RoleStore, StoreID: f.store.ID}

	if err := guard.Unlink(admin, 9999, f.store.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unlink unknown driver: err = %v, want NotFound", err)
	}
}

func TestUnlinkedDriverCannotClaim(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 1)
	guard := NewLinkGuard(db)
	coord := NewCoordinator(db, nopPublisher{})
	admin := core.Principal{UserID: f.store.OwnerID, Role: core.RoleStore, StoreID: f.store.ID}

	if err := guard.Unlink(admin, f.driver.ID, f.store.ID); err != nil {
		t.Fatalf("Unlink: %v", err)
	}

	order := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)
	if _, err := coord.Claim(driverPrincipal(f.driver), order.ID); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("claim after unlink: err = %v, want Unauthorized", err)
	}
}
