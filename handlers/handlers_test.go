package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mostralo-api/config"
	"mostralo-api/dispatch"
	"mostralo-api/earnings"
	"mostralo-api/filestore"
	"mostralo-api/models"
	"mostralo-api/notify"
	"mostralo-api/settlement"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupHandlerTest points the handler package at an in-memory database
// and freshly wired services.
func setupHandlerTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	sqlDB.SetMaxOpenConns(1)
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	config.DB = db
	config.JWTSecret = []byte("test-secret")

	files, err := filestore.NewLocal(t.TempDir(), "/receipts")
	if err != nil {
		t.Fatalf("receipt store: %v", err)
	}
	h := notify.NewHub()
	led := earnings.NewLedger(db)
	cfgSvc := earnings.NewConfigService(db)
	Init(Deps{
		Coordinator: dispatch.NewCoordinator(db, h),
		Lifecycle:   dispatch.NewLifecycle(db, led, cfgSvc, h),
		LinkGuard:   dispatch.NewLinkGuard(db),
		Ledger:      led,
		Configs:     cfgSvc,
		Workflow:    settlement.NewWorkflow(db, led, files),
		Hub:         h,
	})
	return db
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// testContext builds a gin context the way AuthRequired would have.
func testContext(req *http.Request, userID uint, role models.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set("userID", userID)
		c.Set("role", string(role))
	}
	return c, w
}
