package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/delitruck/delitruck-backend/internal/auth"
	"github.com/delitruck/delitruck-backend/internal/middleware"
	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// AuthHandler handles registration, login and session teardown
type AuthHandler struct {
	store  storage.Store
	tokens *auth.TokenResolver
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, tokens *auth.TokenResolver) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// Register creates a new user account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, email and a password of at least 6 characters are required",
		})
	}

	if _, err := h.store.GetUserByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User already exists",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	user, err := h.store.CreateUser(&models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login verifies credentials, creates a session and issues a bearer
// token for cookie-less clients
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	session, err := h.store.CreateSession(&models.Session{UserID: user.ID})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.ID,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Logout destroys the session and clears the cookie
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(auth.SessionCookieName); sessionID != "" {
		_ = h.store.DeleteSession(sessionID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	user, err := h.store.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	return c.JSON(user)
}
