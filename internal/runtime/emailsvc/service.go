package emailsvc

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huitzo/packkit/pkg/huitzo"
)

// SMTP sends HTML email through a plain SMTP relay.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTP{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
		send: smtp.SendMail,
	}
}

var _ huitzo.EmailService = (*SMTP)(nil)

func (s *SMTP) Send(ctx context.Context, msg huitzo.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("email: empty recipient")
	}

	payload := buildMessage(s.from, msg)
	if err := s.send(s.addr, s.auth, s.from, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("email: send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg huitzo.Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// Outbox writes email to a local directory instead of sending it. It is the
// default when no SMTP relay is configured, so handlers that send mail can be
// exercised offline.
type Outbox struct {
	dir string
	now func() time.Time
}

func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir, now: time.Now}
}

var _ huitzo.EmailService = (*Outbox)(nil)

func (o *Outbox) Send(ctx context.Context, msg huitzo.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("email: empty recipient")
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("email: outbox dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s.eml", o.now().UnixNano(), sanitize(msg.To))
	path := filepath.Join(o.dir, name)
	if err := os.WriteFile(path, buildMessage("dev-outbox@localhost", msg), 0o644); err != nil {
		return fmt.Errorf("email: write outbox message: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
