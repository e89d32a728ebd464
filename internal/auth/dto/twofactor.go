package dto

import "errors"

type TwoFactorSetupOutput struct {
	Secret       string `json:"secret"`
	ProvisionURI string `json:"provision_uri"`
}

type TwoFactorConfirmInput struct {
	Code string `json:"code"`
}

func (in *TwoFactorConfirmInput) Validate() error {
	if in.Code == "" {
		return errors.New("code is required")
	}
	return nil
}
