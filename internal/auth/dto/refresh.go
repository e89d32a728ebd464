package dto

import "errors"

type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

func (in *RefreshInput) Validate() error {
	if in.RefreshToken == "" {
		return errors.New("refresh_token is required")
	}
	return nil
}
