package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/realtycore/auth-service/internal/auth/domain"
	"github.com/realtycore/auth-service/internal/auth/dto"
	"github.com/realtycore/auth-service/internal/auth/handler"
	"github.com/realtycore/auth-service/internal/auth/service"
	autherror "github.com/realtycore/auth-service/internal/errors"
	"github.com/realtycore/auth-service/internal/guard"
	"github.com/realtycore/auth-service/internal/mocks"
	"github.com/realtycore/auth-service/internal/password"
)

type handlerFixture struct {
	app    *fiber.App
	repo   *mocks.MockUserRepository
	tokens *service.TokenService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockUserRepository(ctrl)
	mail := mocks.NewMockMailer(ctrl)
	mail.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	tokens := service.NewTokenService("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	hasher := password.NewHasher(bcrypt.MinCost)
	g := guard.NewMemoryGuard(guard.DefaultLimits())
	log := zap.NewNop()

	twoFactor := service.NewTwoFactorService(repo, "RealtyCore", log)
	userService := service.NewUserService(repo, tokens, hasher, g, twoFactor, mail, log)
	resetService := service.NewResetService(repo, hasher, mail, 10*time.Minute, "https://app.example.com", log)

	app := fiber.New()
	handler.RegisterRoutes(app, handler.NewAuthHandler(userService, resetService, twoFactor))

	return &handlerFixture{app: app, repo: repo, tokens: tokens}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode
	_, err = rec.Body.ReadFrom(resp.Body)
	require.NoError(t, err)
	for k, vs := range resp.Header {
		for _, v := range vs {
			rec.Header().Add(k, v)
		}
	}
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("created", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		rec := postJSON(t, f.app, "/api/v1/register", dto.RegisterInput{
			Name: "Alice", Email: "a@x.com", Password: "P@ssw0rd1", Phone: "0912345678",
		}, nil)

		assert.Equal(t, fiber.StatusCreated, rec.Code)

		var out dto.UserOutput
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "a@x.com", out.Email)
		assert.NotContains(t, rec.Body.String(), "password", "response must not leak the hash")
	})

	t.Run("duplicate email", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "a@x.com").
			Return(&domain.Account{ID: "existing", Email: "a@x.com"}, nil)

		rec := postJSON(t, f.app, "/api/v1/register", dto.RegisterInput{
			Name: "Alice", Email: "a@x.com", Password: "P@ssw0rd1",
		}, nil)

		assert.Equal(t, fiber.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := postJSON(t, f.app, "/api/v1/register", dto.RegisterInput{
			Name: "Alice", Email: "not-an-email", Password: "P@ssw0rd1",
		}, nil)

		assert.Equal(t, fiber.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	digest, err := bcrypt.GenerateFromPassword([]byte("P@ssw0rd1"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &domain.Account{ID: "user-123", Email: "a@x.com", PasswordHash: string(digest), Role: "user"}

	t.Run("success returns token pair", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)

		rec := postJSON(t, f.app, "/api/v1/login", dto.LoginInput{Email: account.Email, Password: "P@ssw0rd1"}, nil)
		require.Equal(t, fiber.StatusOK, rec.Code)

		var pair dto.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)

		rec := postJSON(t, f.app, "/api/v1/login", dto.LoginInput{Email: account.Email, Password: "wrong"}, nil)
		assert.Equal(t, fiber.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email has the same status and message", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)
		rec1 := postJSON(t, f.app, "/api/v1/login", dto.LoginInput{Email: account.Email, Password: "wrong"}, nil)

		f.repo.EXPECT().GetByEmail(gomock.Any(), "ghost@x.com").Return(nil, nil)
		rec2 := postJSON(t, f.app, "/api/v1/login", dto.LoginInput{Email: "ghost@x.com", Password: "wrong"}, nil)

		assert.Equal(t, rec1.Code, rec2.Code)
		assert.Equal(t, rec1.Body.String(), rec2.Body.String())
	})
}

func TestRefreshEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	account := &domain.Account{ID: "user-123", Email: "a@x.com", Role: "user"}

	t.Run("rotates the pair", func(t *testing.T) {
		_, refresh, err := f.tokens.Generate(account.ID, account.Email, account.Role)
		require.NoError(t, err)

		f.repo.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)

		rec := postJSON(t, f.app, "/api/v1/refresh", dto.RefreshInput{RefreshToken: refresh}, nil)
		require.Equal(t, fiber.StatusOK, rec.Code)

		var pair dto.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, refresh, pair.RefreshToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		expiredTokens := service.NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)
		_, refresh, err := expiredTokens.Generate(account.ID, account.Email, account.Role)
		require.NoError(t, err)

		rec := postJSON(t, f.app, "/api/v1/refresh", dto.RefreshInput{RefreshToken: refresh}, nil)
		assert.Equal(t, fiber.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), autherror.ErrTokenExpired.Error())
	})

	t.Run("malformed refresh token", func(t *testing.T) {
		rec := postJSON(t, f.app, "/api/v1/refresh", dto.RefreshInput{RefreshToken: "garbage"}, nil)
		assert.Equal(t, fiber.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), autherror.ErrTokenMalformed.Error())
	})
}

func TestForgotPasswordEndpoint_NoExistenceLeak(t *testing.T) {
	f := newHandlerFixture(t)

	known := &domain.Account{ID: "user-123", Name: "Alice", Email: "a@x.com"}

	f.repo.EXPECT().GetByEmail(gomock.Any(), known.Email).Return(known, nil)
	f.repo.EXPECT().Update(gomock.Any(), known.ID, gomock.Any()).Return(known, nil)
	rec1 := postJSON(t, f.app, "/api/v1/password/forgot", dto.ForgotPasswordInput{Email: known.Email}, nil)

	f.repo.EXPECT().GetByEmail(gomock.Any(), "ghost@x.com").Return(nil, nil)
	rec2 := postJSON(t, f.app, "/api/v1/password/forgot", dto.ForgotPasswordInput{Email: "ghost@x.com"}, nil)

	assert.Equal(t, rec1.Code, rec2.Code)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
}

func TestThrottledResponseCarriesRetryAfter(t *testing.T) {
	f := newHandlerFixture(t)

	var rec *httptest.ResponseRecorder
	f.repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	for i := 0; i <= guard.DefaultLoginCap; i++ {
		rec = postJSON(t, f.app, "/api/v1/login", dto.LoginInput{Email: "a@x.com", Password: "wrong"}, nil)
	}

	assert.Equal(t, fiber.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
