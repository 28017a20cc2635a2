package routes

import (
	"mostralo-api/handlers"
	"mostralo-api/middleware"
	"mostralo-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Stores & catalogs (no auth needed)
		public.GET("/stores", handlers.ListStores)
		public.GET("/stores/:id", handlers.GetStore)
		public.GET("/stores/:id/catalog", handlers.GetCatalog)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Realtime feed (token via query param) ──────────────────────
	r.GET("/ws", handlers.ServeFeed)

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", handlers.PlaceOrder)
		customer.GET("/orders", handlers.GetMyOrders)
		customer.GET("/orders/:id", handlers.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", handlers.CancelOrder)
	}

	// ── Store owner routes ─────────────────────────────────────────
	store := r.Group("/api/store")
	store.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleStore, models.RoleAdmin))
	{
		// Store management
		store.POST("/", handlers.CreateStore)
		store.GET("/", handlers.GetMyStore)
		store.PUT("/", handlers.UpdateStore)

		// Catalog management
		store.POST("/products", handlers.AddProduct)
		store.PUT("/products/:productId", handlers.UpdateProduct)
		store.DELETE("/products/:productId", handlers.RemoveProduct)

		// Order management
		store.GET("/orders", handlers.GetStoreOrders)
		store.PUT("/orders/:id/status", handlers.UpdateOrderStatus)

		// Driver roster
		store.GET("/drivers", handlers.GetStoreDrivers)
		store.POST("/drivers/:driverId", handlers.LinkDriver)
		store.DELETE("/drivers/:driverId", handlers.UnlinkDriver)

		// Earnings rules
		store.POST("/earnings-config", handlers.SetEarningsConfig)
		store.DELETE("/earnings-config/:driverId", handlers.DeactivateEarningsConfig)
		store.GET("/earnings-config/:driverId/history", handlers.GetEarningsConfigHistory)

		// Settlement
		store.GET("/earnings", handlers.GetStoreEarnings)
		store.GET("/payment-requests", handlers.GetPaymentRequests)
		store.PUT("/payment-requests/:id/approve", handlers.ApprovePaymentRequest)
		store.PUT("/payment-requests/:id/reject", handlers.RejectPaymentRequest)
		store.POST("/payments/direct", handlers.DirectPay)
	}

	// ── Driver routes ──────────────────────────────────────────────
	driver := r.Group("/api/driver")
	driver.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleDriver))
	{
		driver.GET("/stores", handlers.GetMyStores)
		driver.GET("/stores/:storeId/orders/available", handlers.GetAvailableOrders)
		driver.POST("/orders/:id/claim", handlers.ClaimOrder)
		driver.GET("/deliveries", handlers.GetMyDeliveries)
		driver.PUT("/deliveries/:id/pickup", handlers.PickupOrder)
		driver.PUT("/deliveries/:id/deliver", handlers.DeliverOrder)
		driver.PUT("/deliveries/:id/cancel", handlers.CancelAssignment)
		driver.GET("/earnings", handlers.GetMyEarnings)
		driver.POST("/payment-requests", handlers.CreatePaymentRequest)
		driver.GET("/payment-requests", handlers.GetMyPaymentRequests)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", handlers.AdminGetAllOrders)
		admin.GET("/users", handlers.AdminGetAllUsers)
		admin.GET("/stores", handlers.AdminGetAllStores)
		admin.GET("/earnings", handlers.AdminGetAllEarnings)
	}
}
