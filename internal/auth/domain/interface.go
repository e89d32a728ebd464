package domain

import "context"

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/realtycore/auth-service/internal/auth/domain UserRepository

// UserRepository is the credential store contract. Lookups return (nil, nil)
// when no account matches; Create fails with errors.ErrDuplicateIdentity on
// a unique-email violation.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, id string, fields UpdateFields) (*Account, error)
	// GetByResetTokenHash only matches rows whose reset token has not expired;
	// an expired hash is indistinguishable from an absent one.
	GetByResetTokenHash(ctx context.Context, hash string) (*Account, error)
}
