package email

import (
	"bytes"
	"text/template"

	"sentinel/internal/errors"
)

// Message is one outgoing plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

//nolint:gochecknoglobals
var templates = template.Must(template.New("email").Parse(`
{{define "verification"}}Hi {{.Username}},

Please confirm your email address by opening the link below:

{{.URL}}

If you did not create an account, ignore this email.
{{end}}
{{define "password_reset"}}Hi {{.Username}},

We received a request to reset your password. Open the link below to choose a new one:

{{.URL}}

The link can be used once. If you did not ask for a reset, ignore this email; your password stays unchanged.
{{end}}
{{define "welcome"}}Hi {{.Username}},

Your email address is confirmed. Welcome aboard!
{{end}}
{{define "password_change"}}Hi {{.Username}},

The password of your account was just changed and every device was signed out.
If this was not you, reset your password immediately.
{{end}}
{{define "email_change"}}Hi {{.Username}},

The email address of your account was changed to {{.NewEmail}}.
If this was not you, contact support immediately.
{{end}}`))

type templateData struct {
	Username string
	URL      string
	NewEmail string
}

func render(name, to, subject string, data templateData) (*Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "render %s email", name)
	}

	return &Message{To: to, Subject: subject, Text: buf.String()}, nil
}
