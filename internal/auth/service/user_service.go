package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/realtycore/auth-service/internal/auth/domain"
	"github.com/realtycore/auth-service/internal/auth/dto"
	autherror "github.com/realtycore/auth-service/internal/errors"
	"github.com/realtycore/auth-service/internal/guard"
	"github.com/realtycore/auth-service/internal/mailer"
	"github.com/realtycore/auth-service/internal/password"
	"github.com/realtycore/auth-service/pkg/constant"
)

// codeVerifier is the slice of the two-factor manager the login flow needs.
type codeVerifier interface {
	VerifyCode(secret, code string) bool
}

// UserService orchestrates registration, login, refresh, session
// verification, and profile maintenance. It is the only component the HTTP
// layer talks to, and every error it returns belongs to the taxonomy in
// internal/errors.
type UserService struct {
	repo      domain.UserRepository
	tokens    TokenGenerator
	hasher    *password.Hasher
	guard     guard.Guard
	twoFactor codeVerifier
	mail      mailer.Mailer
	log       *zap.Logger
}

func NewUserService(repo domain.UserRepository, tokens TokenGenerator, hasher *password.Hasher,
	g guard.Guard, twoFactor codeVerifier, mail mailer.Mailer, log *zap.Logger) *UserService {
	return &UserService{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		guard:     g,
		twoFactor: twoFactor,
		mail:      mail,
		log:       log,
	}
}

// Register creates an account with the default role. Every call counts
// against the register attempt budget for the originating address, success
// or not.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.Account, error) {
	if err := s.guard.Check(ctx, guard.KindRegister, input.IPAddress); err != nil {
		return nil, err
	}
	s.guard.Record(ctx, guard.KindRegister, input.IPAddress)

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, autherror.ErrDuplicateIdentity
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: passwordHash,
		Role:         constant.DefaultUserRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, autherror.ErrDuplicateIdentity) {
			// Lost the race against a concurrent register for the same email.
			return nil, autherror.ErrDuplicateIdentity
		}
		return nil, storeErr(err)
	}

	if err := s.mail.Send(ctx, account.Email, mailer.TemplateWelcome, map[string]string{
		"name": account.Name,
	}); err != nil {
		s.log.Warn("welcome mail trigger failed", zap.String("user_id", account.ID), zap.Error(err))
	}

	s.log.Info("account registered", zap.String("user_id", account.ID))
	return account, nil
}

// Login checks credentials and, when enrolled, the two-factor code.
// A missing account and a wrong password produce the same
// ErrInvalidCredentials so responses never reveal account existence. A
// missing code on an enrolled account is ErrTwoFactorRequired, which tells
// the client to prompt rather than retry the password.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	if err := s.guard.Check(ctx, guard.KindLogin, input.IPAddress); err != nil {
		return nil, err
	}
	s.guard.Record(ctx, guard.KindLogin, input.IPAddress)

	account, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil || !s.hasher.Verify(input.Password, account.PasswordHash) {
		return nil, autherror.ErrInvalidCredentials
	}

	if account.TwoFactorEnabled {
		if input.TwoFactorCode == "" {
			return nil, autherror.ErrTwoFactorRequired
		}
		if !s.twoFactor.VerifyCode(account.TwoFactorSecret, input.TwoFactorCode) {
			return nil, autherror.ErrInvalidTwoFactorCode
		}
	}

	access, refresh, err := s.tokens.Generate(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.log.Info("session issued", zap.String("user_id", account.ID))
	return &dto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the token pair. The expired/malformed distinction is
// surfaced here and only here, because expiry is the one case clients react
// to differently. The account is re-read so a role change since issuance
// lands in the fresh access token.
//
// The previous refresh token is not revoked on rotation; it stays valid
// until natural expiry. The repository's update contract is the extension
// point for a token-id keyed revocation set.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	claims, err := s.tokens.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, autherror.ErrTokenMalformed
	}

	access, refresh, err := s.tokens.Generate(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	return &dto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifySession validates an access token and attaches the current account.
// All verification failures collapse into ErrUnauthorized at this boundary.
func (s *UserService) VerifySession(ctx context.Context, accessToken string) (*domain.Account, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, autherror.ErrUnauthorized
	}

	account, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, autherror.ErrUnauthorized
	}

	return account, nil
}

// GetProfile returns the account for an authenticated user id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, autherror.ErrUnauthorized
	}
	return account, nil
}

// UpdateProfile applies a partial profile update. An email change re-checks
// uniqueness; a password change goes through the hasher here, at the
// orchestration boundary, never as a store-side hook.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input dto.UpdateProfileInput) (*domain.Account, error) {
	fields := domain.UpdateFields{}

	if input.Name != "" {
		fields.Name = &input.Name
	}
	if input.Phone != "" {
		fields.Phone = &input.Phone
	}
	if input.Email != "" {
		existing, err := s.repo.GetByEmail(ctx, input.Email)
		if err != nil {
			return nil, storeErr(err)
		}
		if existing != nil && existing.ID != userID {
			return nil, autherror.ErrDuplicateIdentity
		}
		fields.Email = &input.Email
	}
	if input.Password != "" {
		passwordHash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields.PasswordHash = &passwordHash
	}

	updated, err := s.repo.Update(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, autherror.ErrDuplicateIdentity) {
			return nil, autherror.ErrDuplicateIdentity
		}
		return nil, storeErr(err)
	}
	return updated, nil
}

// UpdateRole changes an account's role. Outstanding access tokens keep the
// old role until expiry; refresh and VerifySession both re-read the store,
// so the change propagates on the next rotation or protected request.
func (s *UserService) UpdateRole(ctx context.Context, userID, role string) (*domain.Account, error) {
	updated, err := s.repo.Update(ctx, userID, domain.UpdateFields{Role: &role})
	if err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("role updated", zap.String("user_id", userID), zap.String("role", role))
	return updated, nil
}

// storeErr wraps any unclassified credential store failure so infrastructure
// faults stay distinguishable from credential errors.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", autherror.ErrStoreUnavailable, err)
}
