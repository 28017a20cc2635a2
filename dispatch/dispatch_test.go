package dispatch

import (
	"fmt"
	"testing"

	"mostralo-api/config"
	"mostralo-api/core"
	"mostralo-api/models"
	"mostralo-api/notify"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// one connection: every handle sees the same in-memory schema and
	// concurrent writers serialize instead of returning busy errors
	sqlDB.SetMaxOpenConns(1)
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// nopPublisher satisfies notify.Publisher for tests that do not care
// about events.
type nopPublisher struct{}

func (nopPublisher) Publish(topic string, event notify.Event) {}

type fixture struct {
	db      *gorm.DB
	store   models.Store
	driver  models.User
	drivers []models.User
}

func newFixture(t *testing.T, db *gorm.DB, driverCount int) *fixture {
	t.Helper()
	f := &fixture{db: db}

	owner := models.User{Name: "Dona Rosa", Email: "rosa@example.com", PasswordHash: "x", Role: models.RoleStore}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	f.store = models.Store{OwnerID: owner.ID, Name: "Padaria Central", Slug: "padaria-central", DeliveryFeeCents: 1200}
	if err := db.Create(&f.store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}

	for i := 0; i < driverCount; i++ {
		d := models.User{
			Name:         fmt.Sprintf("Driver %d", i+1),
			Email:        fmt.Sprintf("driver%d@example.com", i+1),
			PasswordHash: "x",
			Role:         models.RoleDriver,
		}
		if err := db.Create(&d).Error; err != nil {
			t.Fatalf("seed driver: %v", err)
		}
		link := models.StoreDriver{StoreID: f.store.ID, DriverID: d.ID}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("seed link: %v", err)
		}
		f.drivers = append(f.drivers, d)
	}
	if driverCount > 0 {
		f.driver = f.drivers[0]
	}
	return f
}

func (f *fixture) newOrder(t *testing.T, status models.OrderStatus, deliveryType models.DeliveryType) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerID:       1,
		StoreID:          f.store.ID,
		Status:           status,
		DeliveryType:     deliveryType,
		DeliveryAddress:  "Rua das Flores 123",
		DeliveryFeeCents: f.store.DeliveryFeeCents,
		SubtotalCents:    5000,
		TotalCents:       5000 + f.store.DeliveryFeeCents,
	}
	if err := f.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func driverPrincipal(d models.User) core.Principal {
	return core.Principal{UserID: d.ID, Role: core.RoleDriver}
}
