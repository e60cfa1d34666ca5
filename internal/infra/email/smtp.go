package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"sentinel/internal/errors"
)

// smtpTransport delivers messages to an SMTP relay, upgrading with STARTTLS when offered.
type smtpTransport struct {
	host     string
	addr     string
	username string
	password string
	from     mail.Address
	timeout  time.Duration
	logger   *slog.Logger
}

func newSMTPTransport(host string, port int, username, password string, from mail.Address, timeout time.Duration, logger *slog.Logger) *smtpTransport {
	return &smtpTransport{
		host:     host,
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
		logger:   logger,
	}
}

func (t *smtpTransport) Deliver(ctx context.Context, msg *Message) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return errors.Wrap(err, "dial smtp server")
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()

			return errors.WithStack(err)
		}
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()

		return errors.Wrap(err, "open smtp session")
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}); err != nil {
			return errors.Wrap(err, "smtp starttls")
		}
	}

	if t.username != "" {
		if err := client.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}

	if err := client.Mail(t.from.Address); err != nil {
		return errors.Wrap(err, "smtp MAIL FROM")
	}
	if err := client.Rcpt(msg.To); err != nil {
		return errors.Wrap(err, "smtp RCPT TO")
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp DATA")
	}
	if _, err := w.Write(t.compose(msg)); err != nil {
		w.Close()

		return errors.Wrap(err, "write smtp body")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finish smtp body")
	}

	if err := client.Quit(); err != nil {
		return errors.Wrap(err, "smtp QUIT")
	}

	t.logger.Info("[SMTP] Email sent", slog.String("subject", msg.Subject))

	return nil
}

func (t *smtpTransport) compose(msg *Message) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", t.from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Text)

	return buf.Bytes()
}
