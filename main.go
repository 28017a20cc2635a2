package main

import (
	"net/http"
	"os"

	"mostralo-api/config"
	"mostralo-api/dispatch"
	"mostralo-api/earnings"
	"mostralo-api/filestore"
	"mostralo-api/handlers"
	"mostralo-api/logger"
	"mostralo-api/notify"
	"mostralo-api/routes"
	"mostralo-api/settlement"
	"mostralo-api/tasks"

	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	// Load .env and structured logging before anything touches the DB
	config.Load()
	logger.Init(config.LogFile())
	defer logger.Sync()

	// Initialize database
	config.InitDB()

	// Receipt storage (local disk, served under /receipts)
	files, err := filestore.NewLocal(config.ReceiptDir(), config.ReceiptBaseURL())
	if err != nil {
		logger.Error("receipt store init: %v", err)
		os.Exit(1)
	}

	// Wire services
	hub := notify.NewHub()
	ledger := earnings.NewLedger(config.DB)
	configs := earnings.NewConfigService(config.DB)
	handlers.Init(handlers.Deps{
		Coordinator: dispatch.NewCoordinator(config.DB, hub),
		Lifecycle:   dispatch.NewLifecycle(config.DB, ledger, configs, hub),
		LinkGuard:   dispatch.NewLinkGuard(config.DB),
		Ledger:      ledger,
		Configs:     configs,
		Workflow:    settlement.NewWorkflow(config.DB, ledger, files),
		Hub:         hub,
	})

	// Background reconciliation
	manager, err := tasks.NewManager(config.DB, hub)
	if err != nil {
		logger.Error("task manager init: %v", err)
		os.Exit(1)
	}
	if err := manager.Start(config.ReconcileInterval()); err != nil {
		logger.Error("task manager start: %v", err)
		os.Exit(1)
	}
	defer manager.Stop()

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Mostralo Fulfillment API",
			"version": "1.0.0",
		})
	})

	// Uploaded payment receipts
	r.Static("/receipts", files.Dir())

	// Register all routes
	routes.SetupRoutes(r)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Error("failed to start server: %v", err)
		os.Exit(1)
	}
}
