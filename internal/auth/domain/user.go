package domain

import "time"

// Account is the identity record owned by the credential store. PasswordHash
// and the two-factor/reset fields never leave this package boundary through
// API responses.
type Account struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	Role             string
	TwoFactorSecret  string
	TwoFactorEnabled bool
	ResetTokenHash   string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UpdateFields is a partial update applied through the store's update
// contract. Nil pointers leave the column untouched. ClearResetToken nulls
// both reset columns in the same statement as any password change, which is
// what makes reset redemption single-use.
type UpdateFields struct {
	Name             *string
	Email            *string
	Phone            *string
	PasswordHash     *string
	Role             *string
	TwoFactorSecret  *string
	TwoFactorEnabled *bool
	ResetTokenHash   *string
	ResetTokenExpiry *time.Time
	ClearResetToken  bool
}
