package dto

import (
	"errors"

	"github.com/realtycore/auth-service/pkg/constant"
)

type UpdateRoleInput struct {
	Role string `json:"role"`
}

func (in *UpdateRoleInput) Validate() error {
	switch in.Role {
	case constant.RoleUser, constant.RoleAgent, constant.RoleAdmin:
		return nil
	}
	return errors.New("role must be one of user, agent, admin")
}
