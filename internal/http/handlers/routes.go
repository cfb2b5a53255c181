package handlers

import (
	"vaulted/internal/app"
	"vaulted/internal/http/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Auth routes (no authentication required)
	authHandler := NewAuthHandler(services.AuthService)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(services.AuthService))

	userHandler := NewUserHandler(services.UserRepo)
	protected.GET("/profile", userHandler.GetProfile)
	protected.PUT("/profile", userHandler.UpdateProfile)

	inventoryHandler := NewInventoryHandler(services.InventoryRepo, services.StorageService)
	items := protected.Group("/items")
	items.GET("", inventoryHandler.List)
	items.POST("", inventoryHandler.Create)
	items.GET("/:id", inventoryHandler.GetByID)
	items.PUT("/:id", inventoryHandler.Update)
	items.DELETE("/:id", inventoryHandler.Delete)

	analyzeHandler := NewAnalyzeHandler(services.VisionService, services.StorageService, services.InventoryWriter, services.UserRepo)
	items.POST("/analyze", analyzeHandler.Analyze)

	barcodeHandler := NewBarcodeHandler(services.BarcodeService)
	items.POST("/barcode", barcodeHandler.Lookup)

	exportHandler := NewExportHandler(services.ExportService, services.InventoryRepo, services.UserRepo)
	items.POST("/export", exportHandler.Export)

	imageHandler := NewImageHandler(services.StorageService)
	protected.POST("/images/upload", imageHandler.Upload)
}

// currentUserID reads the authenticated user's ID set by the JWT middleware
func currentUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get("user_id").(uuid.UUID)
	return id, ok
}
