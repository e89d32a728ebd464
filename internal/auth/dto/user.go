package dto

import (
	"errors"
	"time"

	"github.com/realtycore/auth-service/internal/auth/domain"
	"github.com/realtycore/auth-service/pkg/constant"
)

// UserOutput is the account summary exposed to clients. It deliberately
// carries no password hash, two-factor secret, or reset token material.
type UserOutput struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewUserOutput(a *domain.Account) *UserOutput {
	return &UserOutput{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Phone:            a.Phone,
		Role:             a.Role,
		TwoFactorEnabled: a.TwoFactorEnabled,
		CreatedAt:        a.CreatedAt,
	}
}

type UpdateProfileInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (in *UpdateProfileInput) Validate() error {
	if in.Name != "" && len(in.Name) > constant.MaxNameLength {
		return errors.New("name must be at most 50 characters")
	}
	if in.Email != "" {
		in.Email = NormalizeEmail(in.Email)
		if !emailPattern.MatchString(in.Email) {
			return errors.New("invalid email address")
		}
	}
	if in.Password != "" && len(in.Password) < constant.MinPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		return errors.New("invalid mobile number")
	}
	return nil
}
