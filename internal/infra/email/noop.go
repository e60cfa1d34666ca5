package email

import (
	"context"
	"log/slog"
)

// noopTransport drops messages. Bodies carry one-time links and are never logged.
type noopTransport struct {
	logger *slog.Logger
}

func (t *noopTransport) Deliver(_ context.Context, msg *Message) error {
	t.logger.Debug("[NoopEmail] Email delivery disabled, skipping",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}
