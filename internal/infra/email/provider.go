package email

import (
	"log/slog"
	"net/mail"
	"time"

	"sentinel/config"
	"sentinel/internal/domain/service"
	"sentinel/internal/errors"

	"go.uber.org/fx"
)

// Provider names accepted in email.provider.
const (
	ProviderNoop   = "noop"
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)

const defaultSendTimeout = 10 * time.Second

// SenderParams holds dependencies for EmailSender, injected by Fx
type SenderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewEmailSender creates an EmailSender based on configuration
func NewEmailSender(params SenderParams) (service.EmailSender, error) {
	cfg := params.Config.Email
	logger := params.Logger

	// If email is not configured, return a sender that only logs
	if cfg == nil || cfg.Provider == "" || cfg.Provider == ProviderNoop {
		logger.Info("Email provider not configured, using no-op sender")

		return newSender(&noopTransport{logger: logger}, logger), nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	if cfg.FromEmail == "" {
		return nil, errors.New("email.fromEmail is required when an email provider is set")
	}
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromEmail}

	var t transport

	switch cfg.Provider {
	case ProviderSMTP:
		if cfg.SMTP.Host == "" || cfg.SMTP.Port == 0 {
			return nil, errors.New("smtp host and port are required for smtp provider")
		}
		logger.Info("Using SMTP email sender",
			slog.String("host", cfg.SMTP.Host),
			slog.Int("port", cfg.SMTP.Port),
		)

		t = newSMTPTransport(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, from, timeout, logger)

	case ProviderResend:
		if cfg.Resend.APIKey == "" {
			return nil, errors.New("api key is required for resend provider")
		}
		logger.Info("Using Resend email sender")

		t = newResendTransport(cfg.Resend.BaseURL, cfg.Resend.APIKey, from.String(), timeout, logger)

	default:
		return nil, errors.Errorf("unknown email provider: %s", cfg.Provider)
	}

	return newSender(t, logger), nil
}
