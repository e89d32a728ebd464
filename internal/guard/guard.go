// Package guard throttles repeated authentication attempts per originating
// address. It is a defense-in-depth measure: counters are ephemeral and loss
// on restart is acceptable.
package guard

import (
	"context"
	"time"
)

// Kind names the guarded operation. Register is capped lower than login:
// registration abuse is enumeration/spam, login abuse is credential stuffing.
type Kind string

const (
	KindRegister Kind = "register"
	KindLogin    Kind = "login"
)

const (
	DefaultWindow      = 15 * time.Minute
	DefaultRegisterCap = 5
	DefaultLoginCap    = 10
)

// Limits holds the per-kind attempt caps and the shared fixed window.
type Limits struct {
	Window      time.Duration
	RegisterCap int
	LoginCap    int
}

func DefaultLimits() Limits {
	return Limits{
		Window:      DefaultWindow,
		RegisterCap: DefaultRegisterCap,
		LoginCap:    DefaultLoginCap,
	}
}

func (l Limits) capFor(kind Kind) int {
	if kind == KindRegister {
		return l.RegisterCap
	}
	return l.LoginCap
}

// Guard tracks attempt counts per (kind, address).
//
// Check returns nil when another attempt is allowed, or a
// *errors.ThrottledError once the window's cap is reached. Record counts an
// attempt regardless of its outcome; failed-only counting would let a probing
// caller attempt forever.
type Guard interface {
	Check(ctx context.Context, kind Kind, addr string) error
	Record(ctx context.Context, kind Kind, addr string)
}

func key(kind Kind, addr string) string {
	return string(kind) + ":" + addr
}
