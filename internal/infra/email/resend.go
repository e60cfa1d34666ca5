package email

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sentinel/internal/errors"
)

const defaultResendBaseURL = "https://api.resend.com"

// resendTransport sends messages through the Resend HTTPS API.
type resendTransport struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *slog.Logger
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func newResendTransport(baseURL, apiKey, from string, timeout time.Duration, logger *slog.Logger) *resendTransport {
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}

	return &resendTransport{
		endpoint: strings.TrimRight(baseURL, "/") + "/emails",
		apiKey:   apiKey,
		from:     from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (t *resendTransport) Deliver(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(resendRequest{
		From:    t.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return errors.Errorf("resend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return errors.Wrap(err, "decode resend response")
	}

	t.logger.Info("[Resend] Email accepted",
		slog.String("email_id", decoded.ID),
		slog.String("subject", msg.Subject),
	)

	return nil
}
