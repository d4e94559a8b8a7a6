package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/middleware"
	"github.com/delitruck/delitruck-backend/internal/services"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

const dateLayout = "2006-01-02"

// CrateHandler exposes the crate ledger
type CrateHandler struct {
	crates *services.CrateService
}

// NewCrateHandler creates a new crate handler
func NewCrateHandler(crates *services.CrateService) *CrateHandler {
	return &CrateHandler{crates: crates}
}

type crateMutationRequest struct {
	RouteID string `json:"routeId"`
	Date    string `json:"date"`
	Delta   *int   `json:"delta"`
	Count   *int   `json:"count"`
	Remarks string `json:"remarks"`
}

func (r *crateMutationRequest) parseDate() (time.Time, error) {
	if r.Date == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(dateLayout, r.Date)
}

// Adjust applies a signed delta to a route's daily balance
func (h *CrateHandler) Adjust(c *fiber.Ctx) error {
	var req crateMutationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RouteID == "" || req.Delta == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Route ID and delta are required",
		})
	}
	date, err := req.parseDate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	actorID, _ := c.Locals(middleware.UserIDKey).(string)
	balance, err := h.crates.Adjust(req.RouteID, date, *req.Delta, actorID, req.Remarks)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Route not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to adjust crate count",
		})
	}
	return c.JSON(balance)
}

// Set moves a route's daily balance to an absolute count
func (h *CrateHandler) Set(c *fiber.Ctx) error {
	var req crateMutationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RouteID == "" || req.Count == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Route ID and count are required",
		})
	}
	date, err := req.parseDate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	actorID, _ := c.Locals(middleware.UserIDKey).(string)
	balance, err := h.crates.Set(req.RouteID, date, *req.Count, actorID, req.Remarks)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Route not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set crate count",
		})
	}
	return c.JSON(balance)
}

// GetDailyBalances returns recorded balances for routes over a date
// range. Days without a row are not synthesized; the caller back-fills
// from the route's default count.
func (h *CrateHandler) GetDailyBalances(c *fiber.Ctx) error {
	routeIDs := splitIDs(c.Query("routeIds"))
	if len(routeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "routeIds query parameter is required",
		})
	}

	start, err := time.Parse(dateLayout, c.Query("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid startDate, expected YYYY-MM-DD",
		})
	}
	end, err := time.Parse(dateLayout, c.Query("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid endDate, expected YYYY-MM-DD",
		})
	}

	balances, err := h.crates.DailyBalances(routeIDs, start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch daily balances",
		})
	}
	return c.JSON(balances)
}

// GetAdjustments returns the audit trail for one balance row
func (h *CrateHandler) GetAdjustments(c *fiber.Ctx) error {
	adjustments, err := h.crates.Adjustments(c.Params("balanceId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch adjustments",
		})
	}
	return c.JSON(adjustments)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
