package output

import (
	"time"

	"spotify-line-bot/internal/domain"
)

// SessionStore interface - Output port
// Single source of truth for per-user session records. Implementations
// must be safe for concurrent use across user keys and must apply each
// mutation atomically for a single key, so no caller ever observes an
// access token with a stale or missing expiry.
type SessionStore interface {
	// GetOrCreate returns a snapshot of the session for the user,
	// inserting a default unauthenticated record on first sight.
	// Never fails.
	GetOrCreate(userID string) *domain.UserSession

	// SetCredentials installs a new token pair with expiry now+ttl and
	// clears the expiry-warning flag, atomically.
	SetCredentials(userID, accessToken, refreshToken string, ttl time.Duration)

	// SetContact records the email address and display name captured
	// from the Spotify profile at login.
	SetContact(userID, email, displayName string)

	// ClearCredentials unauthenticates the session (logout). The result
	// limit and contact details survive.
	ClearCredentials(userID string)

	// SetResultLimit overwrites the display size. Returns
	// domain.ErrLimitOutOfRange, without mutating state, for values
	// outside [1, domain.MaxResultLimit].
	SetResultLimit(userID string, n int) error

	// MarkExpiryWarningSent atomically sets the expiry-warning flag and
	// reports whether this call flipped it. At most one caller per
	// credential lifetime sees true, which is what keeps the
	// expiring-soon notification idempotent.
	MarkExpiryWarningSent(userID string) bool
}
