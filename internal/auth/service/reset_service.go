package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/realtycore/auth-service/internal/auth/domain"
	"github.com/realtycore/auth-service/internal/auth/dto"
	autherror "github.com/realtycore/auth-service/internal/errors"
	"github.com/realtycore/auth-service/internal/mailer"
	"github.com/realtycore/auth-service/internal/password"
)

const resetTokenBytes = 32

// ResetService issues and redeems single-use, time-boxed password reset
// tokens. Only the sha256 of a token is ever persisted; the plaintext is
// disclosed exactly once through the mail trigger.
type ResetService struct {
	repo        domain.UserRepository
	hasher      *password.Hasher
	mail        mailer.Mailer
	ttl         time.Duration
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

func NewResetService(repo domain.UserRepository, hasher *password.Hasher, mail mailer.Mailer,
	ttl time.Duration, frontendURL string, log *zap.Logger) *ResetService {
	return &ResetService{
		repo:        repo,
		hasher:      hasher,
		mail:        mail,
		ttl:         ttl,
		frontendURL: frontendURL,
		log:         log,
		now:         time.Now,
	}
}

// RequestReset reports success whether or not the email exists, so the
// response shape never leaks account existence. Repeated calls overwrite the
// stored hash and expiry, invalidating any previously issued token.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	account, err := s.repo.GetByEmail(ctx, dto.NormalizeEmail(email))
	if err != nil {
		return storeErr(err)
	}
	if account == nil {
		return nil
	}

	token, tokenHash, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiry := s.now().Add(s.ttl)
	if _, err := s.repo.Update(ctx, account.ID, domain.UpdateFields{
		ResetTokenHash:   &tokenHash,
		ResetTokenExpiry: &expiry,
	}); err != nil {
		return storeErr(err)
	}

	// Fire-and-forget: a failed send is logged, never surfaced to the caller.
	if err := s.mail.Send(ctx, account.Email, mailer.TemplatePasswordReset, map[string]string{
		"name":      account.Name,
		"reset_url": s.frontendURL + "/reset-password/" + token,
	}); err != nil {
		s.log.Warn("password reset mail trigger failed",
			zap.String("user_id", account.ID), zap.Error(err))
	}

	return nil
}

// RedeemReset exchanges a valid token for a password change. The stored hash
// and expiry are cleared in the same write as the new password hash, so a
// redeemed token can never be redeemed twice.
func (s *ResetService) RedeemReset(ctx context.Context, token, newPassword string) (*domain.Account, error) {
	account, err := s.repo.GetByResetTokenHash(ctx, hashResetToken(token))
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, autherror.ErrResetTokenInvalid
	}
	if account.ResetTokenExpiry == nil || !s.now().Before(*account.ResetTokenExpiry) {
		return nil, autherror.ErrResetTokenInvalid
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	updated, err := s.repo.Update(ctx, account.ID, domain.UpdateFields{
		PasswordHash:    &passwordHash,
		ClearResetToken: true,
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.log.Info("password reset redeemed", zap.String("user_id", account.ID))
	return updated, nil
}

func newResetToken() (token, tokenHash string, err error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(raw)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
