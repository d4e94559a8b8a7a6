package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// UserHandler handles user and driver management requests
type UserHandler struct {
	store storage.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(store storage.Store) *UserHandler {
	return &UserHandler{store: store}
}

// GetAllUsers lists every account
func (h *UserHandler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.store.GetAllUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}
	return c.JSON(users)
}

// GetDrivers lists accounts with the driver role
func (h *UserHandler) GetDrivers(c *fiber.Ctx) error {
	drivers, err := h.store.GetDrivers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch drivers",
		})
	}
	return c.JSON(drivers)
}

// GetUser retrieves one user by ID
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.store.GetUser(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	return c.JSON(user)
}

var validUserStatuses = map[string]bool{
	models.UserStatusAvailable: true,
	models.UserStatusOnTrip:    true,
	models.UserStatusOnLeave:   true,
}

// UpdateUser patches name/email/role/status. Password changes go
// through UpdatePassword so they are always hashed.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Role != "" && req.Role != models.RoleAdmin && req.Role != models.RoleDriver {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role value",
		})
	}
	if req.Status != "" && !validUserStatuses[req.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	user, err := h.store.GetUser(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}

	if err := h.store.UpdateUser(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}
	return c.JSON(user)
}

// UpdatePassword hashes and stores a new password
func (h *UserHandler) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.NewPassword) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password must be at least 6 characters",
		})
	}

	user, err := h.store.GetUser(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}
	user.Password = string(hashed)

	if err := h.store.UpdateUser(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}

// DeleteUser removes a user account
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.store.DeleteUser(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
