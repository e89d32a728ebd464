package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/realtycore/auth-service/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherror "github.com/realtycore/auth-service/internal/errors"
)

// TokenGenerator mints and verifies the access/refresh token pair.
type TokenGenerator interface {
	Generate(userID, email, role string) (access, refresh string, err error)
	VerifyAccessToken(token string) (*Claims, error)
	VerifyRefreshToken(token string) (*Claims, error)
}

// Claims is the signed payload shared by both token classes. Subject carries
// the account id; Role is only embedded in access tokens, refresh re-reads it
// from the store so role changes propagate on rotation.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// TokenService signs HS256 tokens. Access and refresh tokens use distinct
// secrets so compromise of one key cannot forge the other token class.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (ts *TokenService) Generate(userID, email, role string) (string, string, error) {
	now := time.Now()

	access, err := ts.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		Email: email,
		Role:  role,
	}, ts.accessSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := ts.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTTL)),
		},
		Email: email,
	}, ts.refreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}

	return access, refresh, nil
}

func (ts *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return ts.verify(token, ts.accessSecret)
}

func (ts *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return ts.verify(token, ts.refreshSecret)
}

func (ts *TokenService) sign(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// verify classifies every failure as either ErrTokenExpired or
// ErrTokenMalformed. Expiry is the only condition that triggers a
// client-side refresh-and-retry, so it must stay distinguishable.
func (ts *TokenService) verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, autherror.ErrTokenMalformed
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, autherror.ErrTokenMalformed
	}

	return claims, nil
}

var _ TokenGenerator = (*TokenService)(nil)
