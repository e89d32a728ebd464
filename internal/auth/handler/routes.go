package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/realtycore/auth-service/pkg/constant"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	api := app.Group("/api/v1")

	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Post("/refresh", h.Refresh)
	api.Post("/password/forgot", h.ForgotPassword)
	api.Post("/password/reset", h.ResetPassword)

	me := api.Group("/me", h.Protect())
	me.Get("/", h.GetProfile)
	me.Patch("/", h.UpdateProfile)
	me.Post("/2fa/setup", h.TwoFactorSetup)
	me.Post("/2fa/confirm", h.TwoFactorConfirm)

	admin := api.Group("/admin", h.Protect(), h.RequireRole(constant.RoleAdmin))
	admin.Patch("/users/:id/role", h.UpdateUserRole)
}
