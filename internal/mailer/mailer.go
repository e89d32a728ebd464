// Package mailer defines the outbound mail trigger contract. Delivery is
// fire-and-forget from the core's perspective: a failed send is logged by the
// implementation and never fails the calling operation.
package mailer

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=mocks github.com/realtycore/auth-service/internal/mailer Mailer

import (
	"context"

	"go.uber.org/zap"
)

type TemplateKind string

const (
	TemplateWelcome       TemplateKind = "welcome"
	TemplatePasswordReset TemplateKind = "password_reset"
)

type Mailer interface {
	Send(ctx context.Context, to string, kind TemplateKind, data map[string]string) error
}

// LogMailer writes the trigger to the structured log instead of delivering
// anything. It stands in until a real delivery backend is wired up and keeps
// development environments mail-free.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to string, kind TemplateKind, data map[string]string) error {
	fields := []zap.Field{
		zap.String("to", to),
		zap.String("template", string(kind)),
	}
	for k, v := range data {
		fields = append(fields, zap.String("data."+k, v))
	}
	m.log.Info("mail trigger", fields...)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
