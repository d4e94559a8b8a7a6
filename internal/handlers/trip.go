package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/services"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// TripHandler handles trip requests through the lifecycle machine
type TripHandler struct {
	store storage.Store
	trips *services.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(store storage.Store, trips *services.TripService) *TripHandler {
	return &TripHandler{store: store, trips: trips}
}

// GetAllTrips lists every trip
func (h *TripHandler) GetAllTrips(c *fiber.Ctx) error {
	trips, err := h.store.GetAllTrips()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch trips",
		})
	}
	return c.JSON(trips)
}

// GetOngoingTrips lists trips currently underway
func (h *TripHandler) GetOngoingTrips(c *fiber.Ctx) error {
	trips, err := h.store.GetOngoingTrips()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch ongoing trips",
		})
	}
	return c.JSON(trips)
}

// GetTripsByDriver lists trips assigned to one driver
func (h *TripHandler) GetTripsByDriver(c *fiber.Ctx) error {
	trips, err := h.store.GetTripsByDriver(c.Params("driverId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch driver trips",
		})
	}
	return c.JSON(trips)
}

// GetTrip retrieves one trip by ID
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	trip, err := h.store.GetTrip(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Trip not found",
		})
	}
	return c.JSON(trip)
}

// CreateTrip schedules a new trip after availability checks
func (h *TripHandler) CreateTrip(c *fiber.Ctx) error {
	var req services.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.DriverID == "" || req.TruckID == "" || req.RouteID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Driver ID, truck ID and route ID are required",
		})
	}

	trip, err := h.trips.Schedule(req)
	if err != nil {
		var unavailable *services.ResourceUnavailableError
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Driver, truck, or route not found",
			})
		case errors.As(err, &unavailable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": unavailable.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create trip",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(trip)
}

// UpdateTrip patches a trip. A status field goes through the lifecycle
// machine; other fields are plain metric/payload updates.
func (h *TripHandler) UpdateTrip(c *fiber.Ctx) error {
	var req struct {
		Status            string   `json:"status"`
		Salary            *float64 `json:"salary"`
		DistanceTravelled *float64 `json:"distanceTravelled"`
		AvgSpeed          *float64 `json:"avgSpeed"`
		CurrentLocation   *string  `json:"currentLocation"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	trip, err := h.store.GetTrip(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Trip not found",
		})
	}

	// A rejected transition must leave the trip untouched, so check it
	// before persisting any of the other fields.
	if req.Status != "" && !trip.Status.CanTransitionTo(models.TripStatus(req.Status)) {
		invalid := &services.InvalidTransitionError{From: trip.Status, To: models.TripStatus(req.Status)}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": invalid.Error(),
		})
	}

	if req.Salary != nil {
		trip.Salary = *req.Salary
	}
	if req.DistanceTravelled != nil {
		trip.DistanceTravelled = *req.DistanceTravelled
	}
	if req.AvgSpeed != nil {
		trip.AvgSpeed = *req.AvgSpeed
	}
	if req.CurrentLocation != nil {
		trip.CurrentLocation = *req.CurrentLocation
	}
	if err := h.store.UpdateTrip(trip); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update trip",
		})
	}

	if req.Status != "" {
		trip, err = h.trips.Advance(trip.ID, models.TripStatus(req.Status))
		if err != nil {
			var invalid *services.InvalidTransitionError
			if errors.As(err, &invalid) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": invalid.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update trip",
			})
		}
	}
	return c.JSON(trip)
}

// DeleteTrip removes a trip, releasing its driver and truck when it
// never completed
func (h *TripHandler) DeleteTrip(c *fiber.Ctx) error {
	if err := h.trips.Delete(c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Trip not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete trip",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Trip deleted successfully",
	})
}
