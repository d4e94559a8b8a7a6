package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/delitruck/delitruck-backend/database"
	"github.com/delitruck/delitruck-backend/internal/auth"
	"github.com/delitruck/delitruck-backend/internal/jobs"
	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/routes"
	"github.com/delitruck/delitruck-backend/internal/services"
	"github.com/delitruck/delitruck-backend/internal/storage"
	"github.com/delitruck/delitruck-backend/internal/ws"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - using environment variables")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "delitruck-secret-key-change-in-production"
		log.Println("⚠️  SESSION_SECRET not set - using insecure default")
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.Truck{},
			&models.Route{},
			&models.Trip{},
			&models.Message{},
			&models.Session{},
			&models.CrateDailyBalance{},
			&models.CrateAdjustment{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}

	// Auth: session cookies for the web app, bearer tokens for driver
	// mobile clients
	sessions := auth.NewSessionResolver(store)
	tokens := auth.NewTokenResolver(sessionSecret)

	// Realtime hub and the services publishing through it
	hub := ws.NewHub()
	chatService := services.NewChatService(store, hub)
	locationService := services.NewLocationService(store, hub)
	tripService := services.NewTripService(store)
	crateService := services.NewCrateService(store)
	socketHandler := ws.NewHandler(hub, chatService, locationService, sessions, tokens)

	// Start the message retention sweeper
	retentionJob := jobs.NewRetentionJob(store)
	retentionJob.Start(context.Background())

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "DeliTruck Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		// Credentialed CORS cannot use a wildcard origin
		corsOrigin = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status":      status,
			"connections": hub.Count(),
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, sessions, tokens, tripService, crateService, socketHandler)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping retention job...")
		retentionJob.Stop()
		log.Println("⏹️  Closing websocket connections...")
		hub.CloseAll()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 DeliTruck Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
