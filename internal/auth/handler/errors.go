package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	autherror "github.com/realtycore/auth-service/internal/errors"
)

// respondError maps the service taxonomy onto HTTP responses. Anything
// outside the taxonomy is an infrastructure fault and becomes a generic 503,
// so clients never mistake a broken store for a wrong password.
func respondError(c *fiber.Ctx, err error) error {
	var throttled *autherror.ThrottledError
	if errors.As(err, &throttled) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(throttled.RetryAfter.Seconds())+1))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	}

	switch {
	case errors.Is(err, autherror.ErrDuplicateIdentity),
		errors.Is(err, autherror.ErrResetTokenInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrTwoFactorRequired),
		errors.Is(err, autherror.ErrInvalidTwoFactorCode),
		errors.Is(err, autherror.ErrTokenExpired),
		errors.Is(err, autherror.ErrTokenMalformed),
		errors.Is(err, autherror.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})

	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
}
