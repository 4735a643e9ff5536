/*
Package alert turns accepted breakdown records into email notifications.

PURPOSE:
  Delivery is best-effort and independent of the log append: a committed
  record is never rolled back because mail could not go out. Transports
  are an ordered list tried in sequence - typically STARTTLS submission
  first, implicit-TLS as the fallback - replacing the old nested
  try/except control flow with an explicit success/failure walk.

SEE ALSO:
  - dispatcher.go: trigger rules and the fallback walk
*/
package alert

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wneessen/go-mail"
)

// Message is one notification to deliver.
type Message struct {
	Subject     string
	Body        string
	Attachments []string // file paths; missing files are skipped, not errors
}

// Sender delivers a message over one transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, from string, to []string, msg Message) error
}

// =============================================================================
// SMTP TRANSPORT
// =============================================================================

// TLSMode selects how the SMTP session is secured.
type TLSMode string

const (
	TLSStartTLS TLSMode = "starttls" // explicit upgrade on the submission port
	TLSImplicit TLSMode = "ssl"      // TLS from the first byte (465-style)
)

// SMTPTransport is one configured SMTP endpoint.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	Mode     TLSMode
	Timeout  time.Duration
}

func (t SMTPTransport) Name() string {
	return fmt.Sprintf("smtp %s:%d (%s)", t.Host, t.Port, t.Mode)
}

// Send builds and delivers the message over this transport.
func (t SMTPTransport) Send(ctx context.Context, from string, to []string, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to...); err != nil {
		return fmt.Errorf("to addresses: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, path := range msg.Attachments {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue // attachment optional; absent at dispatch time is fine
		}
		m.AttachFile(path)
	}

	timeout := t.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	opts := []mail.Option{
		mail.WithPort(t.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.Username),
		mail.WithPassword(t.Password),
		mail.WithTimeout(timeout),
	}
	if t.Mode == TLSImplicit {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(t.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}
