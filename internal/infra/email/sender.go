// Package email delivers the transactional auth emails through a configurable provider.
package email

import (
	"context"
	"log/slog"

	"sentinel/internal/domain/service"
)

// transport hands a rendered message to a delivery backend.
type transport interface {
	Deliver(ctx context.Context, msg *Message) error
}

// sender renders auth emails and passes them to a transport.
type sender struct {
	transport transport
	logger    *slog.Logger
}

func newSender(t transport, logger *slog.Logger) service.EmailSender {
	return &sender{transport: t, logger: logger}
}

func (s *sender) SendVerificationEmail(ctx context.Context, to, username, verifyURL string) error {
	return s.send(ctx, "verification", to, "Confirm your email address", templateData{Username: username, URL: verifyURL})
}

func (s *sender) SendPasswordResetEmail(ctx context.Context, to, username, resetURL string) error {
	return s.send(ctx, "password_reset", to, "Reset your password", templateData{Username: username, URL: resetURL})
}

func (s *sender) SendWelcomeEmail(ctx context.Context, to, username string) error {
	return s.send(ctx, "welcome", to, "Welcome", templateData{Username: username})
}

func (s *sender) SendPasswordChangeNotification(ctx context.Context, to, username string) error {
	return s.send(ctx, "password_change", to, "Your password was changed", templateData{Username: username})
}

func (s *sender) SendEmailChangeNotification(ctx context.Context, to, username, newEmail string) error {
	return s.send(ctx, "email_change", to, "Your email address was changed", templateData{Username: username, NewEmail: newEmail})
}

func (s *sender) send(ctx context.Context, kind, to, subject string, data templateData) error {
	msg, err := render(kind, to, subject, data)
	if err != nil {
		return err
	}

	return s.transport.Deliver(ctx, msg)
}
