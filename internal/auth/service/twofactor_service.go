package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/realtycore/auth-service/internal/auth/domain"
	autherror "github.com/realtycore/auth-service/internal/errors"
	"github.com/realtycore/auth-service/internal/totp"
)

// totpSkew accepts one time step of clock drift on either side.
const totpSkew = 1

// TwoFactorService manages TOTP enrollment. A generated secret stays pending
// (two_factor_enabled = false) until the first code is confirmed, so a user
// who abandons setup is not locked out.
type TwoFactorService struct {
	repo   domain.UserRepository
	issuer string
	log    *zap.Logger
	now    func() time.Time
}

func NewTwoFactorService(repo domain.UserRepository, issuer string, log *zap.Logger) *TwoFactorService {
	return &TwoFactorService{
		repo:   repo,
		issuer: issuer,
		log:    log,
		now:    time.Now,
	}
}

// Enroll generates and stores a pending secret and returns it together with
// the otpauth:// provisioning URI for QR rendering.
func (s *TwoFactorService) Enroll(ctx context.Context, userID string) (string, string, error) {
	account, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", storeErr(err)
	}
	if account == nil {
		return "", "", autherror.ErrUnauthorized
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return "", "", fmt.Errorf("generate totp secret: %w", err)
	}

	enabled := false
	if _, err := s.repo.Update(ctx, userID, domain.UpdateFields{
		TwoFactorSecret:  &secret,
		TwoFactorEnabled: &enabled,
	}); err != nil {
		return "", "", storeErr(err)
	}

	return secret, totp.ProvisionURI(s.issuer, account.Email, secret), nil
}

// ConfirmEnrollment verifies the first code against the pending secret and
// activates two-factor on success. On failure the pending secret stays in
// place and the caller may retry.
func (s *TwoFactorService) ConfirmEnrollment(ctx context.Context, userID, code string) error {
	account, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return storeErr(err)
	}
	if account == nil || account.TwoFactorSecret == "" {
		return autherror.ErrInvalidTwoFactorCode
	}

	if !s.VerifyCode(account.TwoFactorSecret, code) {
		return autherror.ErrInvalidTwoFactorCode
	}

	enabled := true
	if _, err := s.repo.Update(ctx, userID, domain.UpdateFields{TwoFactorEnabled: &enabled}); err != nil {
		return storeErr(err)
	}

	s.log.Info("two-factor enabled", zap.String("user_id", userID))
	return nil
}

// VerifyCode checks a login code against a stored secret. The result never
// reveals whether the secret or the code was at fault.
func (s *TwoFactorService) VerifyCode(secret, code string) bool {
	return totp.Verify(secret, code, s.now(), totpSkew)
}
