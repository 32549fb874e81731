package input

import (
	"context"

	"spotify-line-bot/internal/domain"
)

// BotService interface - Input port
// Defines the webhook use case exposed to the HTTP adapter: route LINE
// events to commands, gate Spotify commands behind the session
// lifecycle, and reply.
type BotService interface {
	// HandleWebhook processes a batch of LINE webhook events.
	HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error
}

// SessionLifecycle interface - Input port
// The lifecycle coordinator surface consumed by the command gate and the
// OAuth callback. Lifecycle outcomes are dispositions, never errors.
type SessionLifecycle interface {
	// Evaluate validates the user's session, refreshing an expired token
	// in place when possible, and emits any due notifications.
	Evaluate(ctx context.Context, userID string) domain.Disposition

	// BeginLogin issues a single-use login state for the user and
	// returns the authorization URL to open.
	BeginLogin(userID string) string

	// CompleteLogin consumes the state returned by the auth provider,
	// exchanges the code, installs the credential and captures the
	// user's profile contact. Returns the updated session snapshot.
	CompleteLogin(ctx context.Context, state, code string) (*domain.UserSession, error)
}
