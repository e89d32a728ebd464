package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateIdentity    = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenMalformed       = errors.New("token malformed")
	ErrResetTokenInvalid    = errors.New("reset token invalid or expired")
	ErrThrottled            = errors.New("too many attempts")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrStoreUnavailable     = errors.New("credential store unavailable")
)

// ThrottledError carries the retry-after hint mandated for throttled
// responses. It unwraps to ErrThrottled so callers can match with errors.Is.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error {
	return ErrThrottled
}
