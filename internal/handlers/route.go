package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// RouteHandler handles delivery route requests
type RouteHandler struct {
	store storage.Store
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(store storage.Store) *RouteHandler {
	return &RouteHandler{store: store}
}

// GetAllRoutes lists every route
func (h *RouteHandler) GetAllRoutes(c *fiber.Ctx) error {
	routes, err := h.store.GetAllRoutes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch routes",
		})
	}
	return c.JSON(routes)
}

// GetRoute retrieves one route by ID
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	route, err := h.store.GetRoute(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	}
	return c.JSON(route)
}

// CreateRoute registers a new route
func (h *RouteHandler) CreateRoute(c *fiber.Ctx) error {
	var route models.Route
	if err := c.BodyParser(&route); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if route.Origin == "" || route.Destination == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Origin and destination are required",
		})
	}

	created, err := h.store.CreateRoute(&route)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create route",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateRoute patches route fields
func (h *RouteHandler) UpdateRoute(c *fiber.Ctx) error {
	var req struct {
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		RouteName   string `json:"routeName"`
		Notes       string `json:"notes"`
		CrateCount  int    `json:"crateCount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	route, err := h.store.GetRoute(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	}

	if req.Origin != "" {
		route.Origin = req.Origin
	}
	if req.Destination != "" {
		route.Destination = req.Destination
	}
	if req.RouteName != "" {
		route.RouteName = req.RouteName
	}
	if req.Notes != "" {
		route.Notes = req.Notes
	}
	if req.CrateCount > 0 {
		route.CrateCount = req.CrateCount
	}

	if err := h.store.UpdateRoute(route); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update route",
		})
	}
	return c.JSON(route)
}

// DeleteRoute removes a route
func (h *RouteHandler) DeleteRoute(c *fiber.Ctx) error {
	if err := h.store.DeleteRoute(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Route deleted successfully",
	})
}
