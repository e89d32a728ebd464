package dto

import (
	"errors"
	"regexp"
	"strings"

	"github.com/realtycore/auth-service/pkg/constant"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)
	// Taiwan mobile numbers: 09 followed by eight digits.
	phonePattern = regexp.MustCompile(`^09\d{8}$`)
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`

	IPAddress string `json:"-"`
}

func (in *RegisterInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)

	switch {
	case in.Name == "":
		return errors.New("name is required")
	case len(in.Name) > constant.MaxNameLength:
		return errors.New("name must be at most 50 characters")
	case !emailPattern.MatchString(in.Email):
		return errors.New("invalid email address")
	case len(in.Password) < constant.MinPasswordLength:
		return errors.New("password must be at least 6 characters")
	case in.Phone != "" && !phonePattern.MatchString(in.Phone):
		return errors.New("invalid mobile number")
	}
	return nil
}

// NormalizeEmail lowercases and trims an address so uniqueness checks and
// lookups agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
