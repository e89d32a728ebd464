package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/realtycore/auth-service/internal/auth/domain"
)

const localsAccountKey = "account"

// Protect verifies the bearer token and stores the current account in the
// request locals. Expired and malformed tokens both answer 401 here; only
// the refresh endpoint exposes the finer distinction.
func (h *AuthHandler) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		account, err := h.userService.VerifySession(c.Context(), token)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(localsAccountKey, account)
		return c.Next()
	}
}

// RequireRole is the explicit capability check run after Protect. The role
// comes from the store via VerifySession, not from token claims, so a role
// change takes effect immediately.
func (h *AuthHandler) RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		account, ok := c.Locals(localsAccountKey).(*domain.Account)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		if _, ok := allowed[account.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
