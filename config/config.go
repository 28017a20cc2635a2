package config

import (
	"log"
	"os"
	"time"

	"mostralo-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens, read from env with a dev fallback
var JWTSecret []byte

// Load reads .env (optional) and initializes package state.
func Load() {
	_ = godotenv.Load()
	JWTSecret = []byte(getEnv("JWT_SECRET", "mostralo_super_secret_2024"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ReceiptDir is where uploaded payment receipts land on disk.
func ReceiptDir() string {
	return getEnv("RECEIPT_DIR", "./data/receipts")
}

// ReceiptBaseURL is the public prefix receipts are served under.
func ReceiptBaseURL() string {
	return getEnv("RECEIPT_BASE_URL", "/receipts")
}

// ReconcileInterval is how often the assignment reconciler runs.
func ReconcileInterval() time.Duration {
	d, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "30s"))
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LogFile enables file logging with rotation when set.
func LogFile() string {
	return os.Getenv("LOG_FILE")
}

// InitDB connects to Postgres when DATABASE_URL is set, otherwise to a
// local sqlite file for development, and migrates all models.
func InitDB() {
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		DB, err = gorm.Open(sqlite.Open(getEnv("SQLITE_PATH", "mostralo.db")), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}

// Migrate runs AutoMigrate for every model. Exposed so tests can build
// an in-memory schema the same way the server does.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreDriver{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.DeliveryAssignment{},
		&models.EarningsConfig{},
		&models.DriverEarning{},
		&models.PaymentRequest{},
		&models.PaymentRequestItem{},
	)
}
