package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gcub-intake/internal/adapters/http/middleware"
	"gcub-intake/internal/adapters/http/routes"
	"gcub-intake/internal/adapters/persistence/models"
	"gcub-intake/internal/config"
	"gcub-intake/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "gcub-intake/docs" // Swagger docs
)

// @title GCUB Intake API
// @version 1.0
// @description Application intake & lifecycle API for GCUB deposit/loan products.

// @contact.name API Support
// @contact.email support@gcub.example

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.intake.gcub.example
// @BasePath /api/v1
// @schemes https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed branch directory and product catalog
	if err := config.SeedCatalogData(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed catalog data: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "GCUB Intake API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db for dependency injection)
	statsService := routes.Setup(app, db)

	// Start cron service for the daily intake summary
	if cfg.CronEnabled {
		cronService := services.NewCronService(statsService)
		cronService.Start()
		defer cronService.Stop()
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
