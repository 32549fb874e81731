package domain

import "time"

const (
	// DefaultResultLimit is the number of items shown per listing command
	// until the user configures another value.
	DefaultResultLimit = 5
	// MaxResultLimit caps the configurable result limit to keep replies
	// within chat message size limits.
	MaxResultLimit = 50

	// ExpiryWarningWindow is how long before credential expiry the
	// "expiring soon" notification fires.
	ExpiryWarningWindow = 5 * time.Minute
)

// SessionState is the derived lifecycle state of a user session at a
// given point in time. It is never stored, only computed from the
// credential expiry.
type SessionState int

const (
	// SessionStateUnauthenticated - no access token on record
	SessionStateUnauthenticated SessionState = iota
	// SessionStateValid - token present, well before expiry
	SessionStateValid
	// SessionStateExpiringSoon - token present, inside the warning window
	SessionStateExpiringSoon
	// SessionStateExpired - token present but past its expiry
	SessionStateExpired
)

// String returns a human-readable state name for logging
func (s SessionState) String() string {
	switch s {
	case SessionStateUnauthenticated:
		return "unauthenticated"
	case SessionStateValid:
		return "valid"
	case SessionStateExpiringSoon:
		return "expiring_soon"
	case SessionStateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// UserSession represents the per-user Spotify link state kept by the bot.
// A session is either fully unauthenticated (empty AccessToken, zero
// ExpiresAt) or holds both a token and its expiry; the store keeps that
// pair atomic.
type UserSession struct {
	UserID       string    // LINE user identifier
	AccessToken  string    // Spotify bearer token, empty when logged out
	RefreshToken string    // Token used to mint a new access token
	ExpiresAt    time.Time // Absolute expiry of AccessToken, zero when logged out

	// ExpiryWarningSent is set once the "expiring soon" notification for
	// the current token has gone out. Cleared on every (re)issuance.
	ExpiryWarningSent bool

	// ResultLimit is the user-configured display size, always in
	// [1, MaxResultLimit]. Survives logout.
	ResultLimit int

	// Contact details captured from the Spotify profile at login.
	// Email may be empty, in which case email notifications are skipped.
	Email       string
	DisplayName string
}

// NewUserSession creates an unauthenticated session with defaults for a
// user seen for the first time.
func NewUserSession(userID string) *UserSession {
	return &UserSession{
		UserID:      userID,
		ResultLimit: DefaultResultLimit,
	}
}

// Authenticated reports whether the session holds an access token.
func (s *UserSession) Authenticated() bool {
	return s.AccessToken != ""
}

// StateAt computes the lifecycle state of the session at the given time.
func (s *UserSession) StateAt(now time.Time) SessionState {
	if !s.Authenticated() {
		return SessionStateUnauthenticated
	}
	if !now.Before(s.ExpiresAt) {
		return SessionStateExpired
	}
	if !now.Before(s.ExpiresAt.Add(-ExpiryWarningWindow)) {
		return SessionStateExpiringSoon
	}
	return SessionStateValid
}

// MinutesUntilExpiry returns the whole minutes left before the access
// token expires, never negative.
func (s *UserSession) MinutesUntilExpiry(now time.Time) int {
	left := s.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return int(left.Minutes())
}
