package dispatch

import (
	"errors"
	"sync"
	"testing"

	"mostralo-api/core"
	"mostralo-api/models"
)

func TestListAvailableFiltersThePool(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 1)
	coord := NewCoordinator(db, nopPublisher{})

	claimable := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)
	f.newOrder(t, models.StatusReceived, models.DeliveryTypeDelivery)
	f.newOrder(t, models.StatusPreparing, models.DeliveryTypePickup)

	taken := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)
	db.Model(taken).Update("assigned_driver_id", f.driver.ID)

	orders, err := coord.ListAvailable(f.store.ID)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("pool has %d orders, want 1", len(orders))
	}
	if orders[0].ID != claimable.ID {
		t.Errorf("pool contains order %d, want %d", orders[0].ID, claimable.ID)
	}
}

func TestClaimAssignsTheOrder(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 1)
	coord := NewCoordinator(db, nopPublisher{})
	order := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)

	a, err := coord.Claim(driverPrincipal(f.driver), order.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if a.Status != models.AssignmentAccepted {
		t.Errorf("assignment status = %q, want accepted", a.Status)
	}
	if a.AcceptedAt.IsZero() {
		t.Error("AcceptedAt not set")
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.AssignedDriverID == nil || *got.AssignedDriverID != f.driver.ID {
		t.Errorf("order.AssignedDriverID = %v, want %d", got.AssignedDriverID, f.driver.ID)
	}
	// claiming does not advance the order status
	if got.Status != models.StatusPreparing {
		t.Errorf("order status = %q after claim, want em_preparo", got.Status)
	}
}

func TestClaimRejectsUnlinkedDriver(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 1)
	coord := NewCoordinator(db, nopPublisher{})
	order := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)

	stranger := models.User{Name: "Stranger", Email: "stranger@example.com", PasswordHash: "x", Role: models.RoleDriver}
	if err := db.Create(&stranger).Error; err != nil {
		t.Fatalf("seed stranger: %v", err)
	}

	if _, err := coord.Claim(driverPrincipal(stranger), order.ID); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("unlinked claim: err = %v, want Unauthorized", err)
	}
	if _, err := coord.Claim(core.Principal{UserID: 1, Role: core.RoleCustomer}, order.ID); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("customer claim: err = %v, want Unauthorized", err)
	}
}

func TestClaimRejectsUnavailableOrders(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 1)
	coord := NewCoordinator(db, nopPublisher{})
	caller := driverPrincipal(f.driver)

	pickup := f.newOrder(t, models.StatusPreparing, models.DeliveryTypePickup)
	if _, err := coord.Claim(caller, pickup.ID); !errors.Is(err, core.ErrOrderUnavailable) {
		t.Errorf("claim pickup order: err = %v, want OrderUnavailable", err)
	}

	early := f.newOrder(t, models.StatusReceived, models.DeliveryTypeDelivery)
	if _, err := coord.Claim(caller, early.ID); !errors.Is(err, core.ErrOrderUnavailable) {
		t.Errorf("claim entrada order: err = %v, want OrderUnavailable", err)
	}

	if _, err := coord.Claim(caller, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("claim missing order: err = %v, want NotFound", err)
	}
}

// Ten drivers race for one order: exactly one claim succeeds, the rest
// observe OrderUnavailable, and a single assignment row exists.
func TestClaimRaceHasOneWinner(t *testing.T) {
	db := openTestDB(t)
	const drivers = 10
	f := newFixture(t, db, drivers)
	coord := NewCoordinator(db, nopPublisher{})
	order := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	start := make(chan struct{})
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = coord.Claim(driverPrincipal(f.drivers[i]), order.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var wins, losses int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, core.ErrOrderUnavailable):
			losses++
		default:
			t.Errorf("driver %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d claims succeeded, want exactly 1", wins)
	}
	if losses != drivers-1 {
		t.Fatalf("%d claims lost, want %d", losses, drivers-1)
	}

	var assignments int64
	db.Model(&models.DeliveryAssignment{}).Where("order_id = ?", order.ID).Count(&assignments)
	if assignments != 1 {
		t.Fatalf("%d assignment rows, want exactly 1", assignments)
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.AssignedDriverID == nil {
		t.Fatal("order has no assigned driver after the race")
	}
}

func TestClaimTwiceFails(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db, 2)
	coord := NewCoordinator(db, nopPublisher{})
	order := f.newOrder(t, models.StatusPreparing, models.DeliveryTypeDelivery)

	if _, err := coord.Claim(driverPrincipal(f.drivers[0]), order.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := coord.Claim(driverPrincipal(f.drivers[1]), order.ID); !errors.Is(err, core.ErrOrderUnavailable) {
		t.Errorf("second claim: err = %v, want OrderUnavailable", err)
	}
}
