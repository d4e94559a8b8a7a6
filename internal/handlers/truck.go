package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// TruckHandler handles truck fleet requests
type TruckHandler struct {
	store storage.Store
}

// NewTruckHandler creates a new truck handler
func NewTruckHandler(store storage.Store) *TruckHandler {
	return &TruckHandler{store: store}
}

// GetAllTrucks lists every truck
func (h *TruckHandler) GetAllTrucks(c *fiber.Ctx) error {
	trucks, err := h.store.GetAllTrucks()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch trucks",
		})
	}
	return c.JSON(trucks)
}

// GetAvailableTrucks lists trucks eligible for assignment
func (h *TruckHandler) GetAvailableTrucks(c *fiber.Ctx) error {
	trucks, err := h.store.GetAvailableTrucks()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch available trucks",
		})
	}
	return c.JSON(trucks)
}

// GetTruck retrieves one truck by ID
func (h *TruckHandler) GetTruck(c *fiber.Ctx) error {
	truck, err := h.store.GetTruck(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Truck not found",
		})
	}
	return c.JSON(truck)
}

// CreateTruck registers a new truck
func (h *TruckHandler) CreateTruck(c *fiber.Ctx) error {
	var truck models.Truck
	if err := c.BodyParser(&truck); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if truck.TruckNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Truck number is required",
		})
	}

	created, err := h.store.CreateTruck(&truck)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create truck",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

var validTruckStatuses = map[string]bool{
	models.TruckStatusAvailable:     true,
	models.TruckStatusOnTrip:        true,
	models.TruckStatusOnMaintenance: true,
}

// UpdateTruck patches truck fields
func (h *TruckHandler) UpdateTruck(c *fiber.Ctx) error {
	var req struct {
		TruckNumber string `json:"truckNumber"`
		Capacity    int    `json:"capacity"`
		Status      string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Status != "" && !validTruckStatuses[req.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	truck, err := h.store.GetTruck(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Truck not found",
		})
	}

	if req.TruckNumber != "" {
		truck.TruckNumber = req.TruckNumber
	}
	if req.Capacity > 0 {
		truck.Capacity = req.Capacity
	}
	if req.Status != "" {
		truck.Status = req.Status
	}

	if err := h.store.UpdateTruck(truck); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update truck",
		})
	}
	return c.JSON(truck)
}

// DeleteTruck removes a truck
func (h *TruckHandler) DeleteTruck(c *fiber.Ctx) error {
	if err := h.store.DeleteTruck(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Truck not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Truck deleted successfully",
	})
}
