package routes

import (
	"gcub-intake/internal/adapters/http/handlers"
	"gcub-intake/internal/adapters/http/middleware"
	"gcub-intake/internal/adapters/persistence/repositories"
	"gcub-intake/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB) *services.StatisticsService {
	// Initialize repositories
	appRepo := repositories.NewApplicationRepository(db)
	seqRepo := repositories.NewSequenceRepository(db)
	logRepo := repositories.NewStatusLogRepository(db)
	branchRepo := repositories.NewBranchRepository(db)
	productRepo := repositories.NewProductRepository(db)

	// Initialize services
	appService := services.NewApplicationService(db, appRepo, seqRepo, logRepo, branchRepo, productRepo)
	statsService := services.NewStatisticsService(appRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	appHandler := handlers.NewApplicationHandler(appService)
	catalogHandler := handlers.NewCatalogHandler(branchRepo, productRepo)
	dashboardHandler := handlers.NewDashboardHandler(statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Application routes
	appRoutes := apiV1.Group("/applications")
	setupApplicationRoutes(appRoutes, appHandler, dashboardHandler)

	// Catalog routes
	setupCatalogRoutes(apiV1, catalogHandler)

	// Dashboard routes
	apiV1.Get("/dashboard", middleware.NoCacheHeaders(), dashboardHandler.GetDashboard)

	return statsService
}

// setupApplicationRoutes configures intake and lifecycle routes
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler, dashboard *handlers.DashboardHandler) {
	router.Use(middleware.NoCacheHeaders())

	router.Post("/", middleware.IntakeRateLimiter(), handler.Create)
	router.Get("/", handler.List)

	// Register /stats before /:id so it is not captured as an ID
	router.Get("/stats", dashboard.GetStatistics)

	router.Get("/:id", handler.GetByID)
	router.Get("/:id/history", handler.GetHistory)
	router.Put("/:id/status", handler.UpdateStatus)
}

// setupCatalogRoutes configures branch and product routes
func setupCatalogRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	branches := router.Group("/branches")
	branches.Get("/", middleware.CatalogCache(), handler.ListBranches)
	branches.Get("/:id", middleware.CatalogCache(), handler.GetBranch)
	branches.Post("/", handler.CreateBranch)
	branches.Put("/:id", handler.UpdateBranch)
	branches.Delete("/:id", handler.DeleteBranch)

	products := router.Group("/products")
	products.Get("/", middleware.CatalogCache(), handler.ListProducts)
	products.Get("/:id", middleware.CatalogCache(), handler.GetProduct)
	products.Post("/", handler.CreateProduct)
	products.Put("/:id", handler.UpdateProduct)
	products.Delete("/:id", handler.DeleteProduct)
}
