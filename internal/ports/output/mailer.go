package output

import "spotify-line-bot/internal/domain"

// Mailer interface - Output port
// Out-of-band notification channel. Delivery is best-effort: the caller
// logs failures and never retries.
type Mailer interface {
	// Send delivers one plain-text email.
	Send(mail domain.Email) error
}
