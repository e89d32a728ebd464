package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/realtycore/auth-service/internal/auth/domain"
	"github.com/realtycore/auth-service/internal/auth/service"
	autherror "github.com/realtycore/auth-service/internal/errors"
	"github.com/realtycore/auth-service/internal/mocks"
	"github.com/realtycore/auth-service/internal/totp"
)

func newTwoFactorFixture(t *testing.T) (*service.TwoFactorService, *mocks.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockUserRepository(ctrl)
	return service.NewTwoFactorService(repo, "RealtyCore", zap.NewNop()), repo
}

func TestTwoFactorService_Enroll(t *testing.T) {
	svc, repo := newTwoFactorFixture(t)

	account := &domain.Account{ID: "user-123", Email: "a@x.com"}

	repo.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
	repo.EXPECT().Update(gomock.Any(), account.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fields domain.UpdateFields) (*domain.Account, error) {
			require.NotNil(t, fields.TwoFactorSecret)
			require.NotNil(t, fields.TwoFactorEnabled)
			assert.False(t, *fields.TwoFactorEnabled, "enrollment must stay pending until confirmed")
			return account, nil
		})

	secret, uri, err := svc.Enroll(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "secret="+secret)
	assert.Contains(t, uri, "issuer=RealtyCore")
}

func TestTwoFactorService_ConfirmEnrollment(t *testing.T) {
	svc, repo := newTwoFactorFixture(t)
	ctx := context.Background()

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	account := &domain.Account{ID: "user-123", Email: "a@x.com", TwoFactorSecret: secret}

	// Wrong code: enrollment stays pending, no update issued.
	repo.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
	err = svc.ConfirmEnrollment(ctx, account.ID, "000000")
	assert.ErrorIs(t, err, autherror.ErrInvalidTwoFactorCode)

	// Correct first code flips the enabled flag.
	code, err := totp.Code(secret, time.Now())
	require.NoError(t, err)

	repo.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
	repo.EXPECT().Update(gomock.Any(), account.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fields domain.UpdateFields) (*domain.Account, error) {
			require.NotNil(t, fields.TwoFactorEnabled)
			assert.True(t, *fields.TwoFactorEnabled)
			return account, nil
		})

	assert.NoError(t, svc.ConfirmEnrollment(ctx, account.ID, code))
}

func TestTwoFactorService_ConfirmWithoutPendingSecret(t *testing.T) {
	svc, repo := newTwoFactorFixture(t)

	repo.EXPECT().GetByID(gomock.Any(), "user-123").
		Return(&domain.Account{ID: "user-123", Email: "a@x.com"}, nil)

	// The error never says whether the secret or the code was at fault.
	err := svc.ConfirmEnrollment(context.Background(), "user-123", "123456")
	assert.ErrorIs(t, err, autherror.ErrInvalidTwoFactorCode)
}

func TestTwoFactorService_VerifyCode(t *testing.T) {
	svc, _ := newTwoFactorFixture(t)

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	code, err := totp.Code(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, svc.VerifyCode(secret, code))
	assert.False(t, svc.VerifyCode(secret, "000000"))
	assert.False(t, svc.VerifyCode("", code))
}
