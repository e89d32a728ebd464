package dto

import "errors"

type LoginInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"two_factor_code"`

	IPAddress string `json:"-"`
}

func (in *LoginInput) Validate() error {
	in.Email = NormalizeEmail(in.Email)
	if in.Email == "" || in.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
