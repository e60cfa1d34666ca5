package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"sentinel/config"
)

const (
	resetPasswordPath = "/reset-password"
	verifyEmailPath   = "/verify-email"
)

// mailLinks builds the frontend links embedded in auth emails.
type mailLinks struct {
	baseURL string
}

func newMailLinks(cfg *config.Config) mailLinks {
	if cfg == nil {
		return mailLinks{}
	}

	return mailLinks{baseURL: strings.TrimRight(cfg.App.FrontendURL, "/")}
}

func (l mailLinks) resetPassword(token string) string {
	return l.withToken(resetPasswordPath, token)
}

func (l mailLinks) verifyEmail(token string) string {
	return l.withToken(verifyEmailPath, token)
}

func (l mailLinks) withToken(path, token string) string {
	return l.baseURL + path + "?" + url.Values{"token": {token}}.Encode()
}

// sendBestEffort runs one email delivery. Failures are logged and never returned,
// so a mail outage cannot undo the state change that triggered it.
// The request's cancellation is detached so a client hanging up does not abort delivery.
func sendBestEffort(ctx context.Context, logger *slog.Logger, kind string, send func(ctx context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("Failed to send email", slog.String("kind", kind), slog.Any("error", err))

		return
	}

	logger.Debug("Email sent", slog.String("kind", kind))
}
