package dto

import (
	"errors"

	"github.com/realtycore/auth-service/pkg/constant"
)

type ForgotPasswordInput struct {
	Email string `json:"email"`

	IPAddress string `json:"-"`
}

func (in *ForgotPasswordInput) Validate() error {
	in.Email = NormalizeEmail(in.Email)
	if !emailPattern.MatchString(in.Email) {
		return errors.New("invalid email address")
	}
	return nil
}

type ResetPasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (in *ResetPasswordInput) Validate() error {
	switch {
	case in.Token == "":
		return errors.New("token is required")
	case len(in.NewPassword) < constant.MinPasswordLength:
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
