package main

import (
	"log"
	"skillforge/backend/config"
	"skillforge/backend/middleware"
	"skillforge/backend/routes"
	"skillforge/backend/storage"
	"skillforge/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Media object store
	store, err := storage.NewDiskStore(cfg.StorageDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("Error initializing media storage: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 110 * 1024 * 1024, // headroom over the 100MB video cap
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Serve uploaded media
	app.Static(cfg.MediaBaseURL, cfg.StorageDir)

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger, store)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
