package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/auth"
	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// UserIDKey is the locals key carrying the authenticated user ID.
const UserIDKey = "userID"

// RequireAuth rejects requests without a resolvable session. The
// session cookie is tried first, then a bearer token for API clients.
func RequireAuth(sessions auth.Resolver, tokens *auth.TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := resolve(c, sessions, tokens)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// RequireAdmin additionally checks that the authenticated user has the
// admin role.
func RequireAdmin(sessions auth.Resolver, tokens *auth.TokenResolver, store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := resolve(c, sessions, tokens)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		user, err := store.GetUser(userID)
		if err != nil || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

func resolve(c *fiber.Ctx, sessions auth.Resolver, tokens *auth.TokenResolver) (string, error) {
	if userID, err := sessions.Resolve(c.Get(fiber.HeaderCookie)); err == nil {
		return userID, nil
	}
	if tokens != nil {
		if token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			return tokens.Verify(token)
		}
	}
	return "", auth.ErrUnauthenticated
}
