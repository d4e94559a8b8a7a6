package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/auth"
	"github.com/delitruck/delitruck-backend/internal/handlers"
	"github.com/delitruck/delitruck-backend/internal/middleware"
	"github.com/delitruck/delitruck-backend/internal/services"
	"github.com/delitruck/delitruck-backend/internal/storage"
	"github.com/delitruck/delitruck-backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, sessions auth.Resolver, tokens *auth.TokenResolver, trips *services.TripService, crates *services.CrateService, socket *ws.Handler) {
	requireAuth := middleware.RequireAuth(sessions, tokens)
	requireAdmin := middleware.RequireAdmin(sessions, tokens, store)

	authHandler := handlers.NewAuthHandler(store, tokens)
	userHandler := handlers.NewUserHandler(store)
	truckHandler := handlers.NewTruckHandler(store)
	routeHandler := handlers.NewRouteHandler(store)
	tripHandler := handlers.NewTripHandler(store, trips)
	crateHandler := handlers.NewCrateHandler(crates)
	messageHandler := handlers.NewMessageHandler(store)

	// WebSocket endpoint; handshake auth happens in the upgrade
	// middleware, rejection closes the socket after upgrade
	app.Use("/ws", socket.Upgrade)
	app.Get("/ws", socket.Serve())

	api := app.Group("/api")

	// Authentication
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Users and drivers
	users := api.Group("/users")
	users.Get("/", requireAuth, userHandler.GetAllUsers)
	users.Get("/drivers", requireAuth, userHandler.GetDrivers)
	users.Get("/:id", requireAuth, userHandler.GetUser)
	users.Patch("/:id", requireAdmin, userHandler.UpdateUser)
	users.Patch("/:id/password", requireAuth, userHandler.UpdatePassword)
	users.Delete("/:id", requireAdmin, userHandler.DeleteUser)

	// Trucks
	trucks := api.Group("/trucks")
	trucks.Get("/", requireAuth, truckHandler.GetAllTrucks)
	trucks.Get("/available", requireAuth, truckHandler.GetAvailableTrucks)
	trucks.Get("/:id", requireAuth, truckHandler.GetTruck)
	trucks.Post("/", requireAdmin, truckHandler.CreateTruck)
	trucks.Patch("/:id", requireAdmin, truckHandler.UpdateTruck)
	trucks.Delete("/:id", requireAdmin, truckHandler.DeleteTruck)

	// Routes
	routeGroup := api.Group("/routes")
	routeGroup.Get("/", requireAuth, routeHandler.GetAllRoutes)
	routeGroup.Get("/:id", requireAuth, routeHandler.GetRoute)
	routeGroup.Post("/", requireAdmin, routeHandler.CreateRoute)
	routeGroup.Patch("/:id", requireAdmin, routeHandler.UpdateRoute)
	routeGroup.Delete("/:id", requireAdmin, routeHandler.DeleteRoute)

	// Trips (lifecycle machine)
	tripGroup := api.Group("/trips")
	tripGroup.Get("/", requireAuth, tripHandler.GetAllTrips)
	tripGroup.Get("/ongoing", requireAuth, tripHandler.GetOngoingTrips)
	tripGroup.Get("/driver/:driverId", requireAuth, tripHandler.GetTripsByDriver)
	tripGroup.Get("/:id", requireAuth, tripHandler.GetTrip)
	tripGroup.Post("/", requireAuth, tripHandler.CreateTrip)
	tripGroup.Patch("/:id", requireAuth, tripHandler.UpdateTrip)
	tripGroup.Delete("/:id", requireAuth, tripHandler.DeleteTrip)

	// Crate ledger
	crateGroup := api.Group("/crates")
	crateGroup.Post("/adjust", requireAuth, crateHandler.Adjust)
	crateGroup.Post("/set", requireAuth, crateHandler.Set)
	crateGroup.Get("/daily", requireAuth, crateHandler.GetDailyBalances)
	crateGroup.Get("/:balanceId/adjustments", requireAuth, crateHandler.GetAdjustments)

	// Chat history
	messages := api.Group("/messages")
	messages.Get("/", requireAuth, messageHandler.GetAllMessages)
	messages.Post("/", requireAuth, messageHandler.CreateMessage)
	messages.Delete("/:id", requireAdmin, messageHandler.DeleteMessage)
}
