package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/realtycore/auth-service/internal/auth/domain"
	"github.com/realtycore/auth-service/internal/auth/dto"
	"github.com/realtycore/auth-service/internal/auth/service"
)

type AuthHandler struct {
	userService      *service.UserService
	resetService     *service.ResetService
	twoFactorService *service.TwoFactorService
}

func NewAuthHandler(userService *service.UserService, resetService *service.ResetService,
	twoFactorService *service.TwoFactorService) *AuthHandler {
	return &AuthHandler{
		userService:      userService,
		resetService:     resetService,
		twoFactorService: twoFactorService,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	input.IPAddress = c.IP()

	account, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewUserOutput(account))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	input.IPAddress = c.IP()

	pair, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(pair)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	pair, err := h.userService.Refresh(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(pair)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.resetService.RequestReset(c.Context(), input.Email); err != nil {
		return respondError(c, err)
	}

	// Identical response whether or not the account exists.
	return c.JSON(fiber.Map{"message": "if the account exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	account, err := h.resetService.RedeemReset(c.Context(), input.Token, input.NewPassword)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewUserOutput(account))
}

func (h *AuthHandler) TwoFactorSetup(c *fiber.Ctx) error {
	account := accountFromCtx(c)

	secret, uri, err := h.twoFactorService.Enroll(c.Context(), account.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.TwoFactorSetupOutput{Secret: secret, ProvisionURI: uri})
}

func (h *AuthHandler) TwoFactorConfirm(c *fiber.Ctx) error {
	var input dto.TwoFactorConfirmInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	account := accountFromCtx(c)
	if err := h.twoFactorService.ConfirmEnrollment(c.Context(), account.ID, input.Code); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "two-factor authentication enabled"})
}

func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	account := accountFromCtx(c)

	current, err := h.userService.GetProfile(c.Context(), account.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewUserOutput(current))
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var input dto.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	account := accountFromCtx(c)
	updated, err := h.userService.UpdateProfile(c.Context(), account.ID, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewUserOutput(updated))
}

// UpdateUserRole promotes or demotes an account. The new role reaches
// existing sessions on their next refresh or protected request.
func (h *AuthHandler) UpdateUserRole(c *fiber.Ctx) error {
	var input dto.UpdateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := input.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.userService.UpdateRole(c.Context(), c.Params("id"), input.Role)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.NewUserOutput(updated))
}

func accountFromCtx(c *fiber.Ctx) *domain.Account {
	return c.Locals(localsAccountKey).(*domain.Account)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
