package application

import (
	"fmt"
	"sync"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// NotificationDispatcher struct - Delivers session lifecycle
// notifications over two independent channels: a LINE push message and,
// when an address is on file, an email. Either channel failing is logged
// and swallowed; nothing propagates back into the command path. The
// email leg runs in its own goroutine so slow SMTP never delays the
// user's command.
type NotificationDispatcher struct {
	lineClient output.LineClient
	mailer     output.Mailer // nil when SMTP is not configured

	wg sync.WaitGroup
}

// NewNotificationDispatcher func - Creates new notification dispatcher.
// mailer may be nil, which disables the email channel entirely.
func NewNotificationDispatcher(lineClient output.LineClient, mailer output.Mailer) *NotificationDispatcher {
	return &NotificationDispatcher{
		lineClient: lineClient,
		mailer:     mailer,
	}
}

// Dispatch delivers one notification, best-effort on both channels.
func (d *NotificationDispatcher) Dispatch(n domain.Notification) {
	d.pushChat(n)

	if d.mailer == nil || n.Email == "" {
		return
	}

	mail := buildNotificationEmail(n)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.mailer.Send(mail); err != nil {
			logrus.Errorf("Failed to send %s notification email to %s: %v", n.Kind, n.Email, err)
		}
	}()
}

// Flush waits for in-flight email deliveries. Called on shutdown and by
// tests.
func (d *NotificationDispatcher) Flush() {
	d.wg.Wait()
}

// pushChat sends the in-chat leg of the notification.
func (d *NotificationDispatcher) pushChat(n domain.Notification) {
	req := domain.LinePushMessageRequest{
		To: n.UserID,
		Messages: []domain.LineOutgoingMessage{
			{
				Type: domain.LineMessageTypeText,
				Text: chatNotificationText(n),
			},
		},
	}

	if _, err := d.lineClient.PushMessage(req); err != nil {
		logrus.Errorf("Failed to push %s notification to user %s: %v", n.Kind, n.UserID, err)
	}
}

// chatNotificationText renders the in-chat message for a notification.
func chatNotificationText(n domain.Notification) string {
	switch n.Kind {
	case domain.NotificationRefreshed:
		text := "🔄 Your Spotify session was refreshed automatically!\n\n" +
			"You can keep using the bot as usual."
		if n.Email != "" {
			text += "\nA confirmation email has been sent to your address."
		}
		return text

	case domain.NotificationExpiringSoon:
		return fmt.Sprintf("⏳ Your Spotify session expires in about %d minutes.\n\n"+
			"The bot will refresh it automatically when needed.", n.MinutesLeft)

	case domain.NotificationLoginRequired:
		return "⚠️ Your Spotify session has expired and could not be refreshed.\n\n" +
			"To keep using the bot, re-link your account:\n" + n.AuthURL

	default:
		return ""
	}
}

// buildNotificationEmail renders the email leg of a notification.
func buildNotificationEmail(n domain.Notification) domain.Email {
	name := n.DisplayName
	if name == "" {
		name = "there"
	}

	switch n.Kind {
	case domain.NotificationRefreshed:
		return domain.Email{
			To:      n.Email,
			Subject: "Spotify Bot - Session refreshed",
			Body: fmt.Sprintf("Hi %s,\n\n"+
				"Your Spotify session was refreshed automatically.\n"+
				"You can keep using the bot without any further action.\n\n"+
				"If this wasn't you, log out with /logout and link your account again.\n\n"+
				"Spotify Bot", name),
		}

	case domain.NotificationExpiringSoon:
		return domain.Email{
			To:      n.Email,
			Subject: "Spotify Bot - Session expiring soon",
			Body: fmt.Sprintf("Hi %s,\n\n"+
				"Your Spotify session expires in about %d minutes.\n"+
				"The bot will refresh it automatically when needed.\n\n"+
				"If you run into trouble, log out with /logout and link your account again.\n\n"+
				"Spotify Bot", name, n.MinutesLeft),
		}

	case domain.NotificationLoginRequired:
		return domain.Email{
			To:      n.Email,
			Subject: "Spotify Bot - Session expired",
			Body: fmt.Sprintf("Hi %s,\n\n"+
				"Your Spotify session has expired and could not be refreshed.\n"+
				"Please re-link your account:\n\n%s\n\n"+
				"Use /help in the bot if you need assistance.\n\n"+
				"Spotify Bot", name, n.AuthURL),
		}

	default:
		return domain.Email{To: n.Email}
	}
}
