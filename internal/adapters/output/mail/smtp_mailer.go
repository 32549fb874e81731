package mail

import (
	"fmt"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/output"

	"gopkg.in/gomail.v2"
)

// Compile-time check to ensure SMTPMailer implements Mailer interface
var _ output.Mailer = (*SMTPMailer)(nil)

// SMTPMailer struct - Output adapter delivering notification emails over
// SMTP with STARTTLS. Delivery is best-effort; callers log and drop
// failures.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer func - Creates new SMTP mailer adapter
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one plain-text email.
func (m *SMTPMailer) Send(mail domain.Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", mail.To, err)
	}
	return nil
}
