package domain

// Disposition is the outcome of a session lifecycle evaluation. The
// command gate proceeds to the Spotify data path only on Proceed or
// RefreshedProceed; the other two short-circuit the command.
type Disposition int

const (
	// DispositionProceed - session valid, run the command
	DispositionProceed Disposition = iota
	// DispositionRefreshedProceed - token was expired but refreshed in
	// place, run the command
	DispositionRefreshedProceed
	// DispositionNeedsLogin - no session on record, user must link first
	DispositionNeedsLogin
	// DispositionLoginRequired - refresh failed, user must re-authenticate
	DispositionLoginRequired
)

// Allows reports whether the command gate may execute the command.
func (d Disposition) Allows() bool {
	return d == DispositionProceed || d == DispositionRefreshedProceed
}

// String returns a disposition name for logging
func (d Disposition) String() string {
	switch d {
	case DispositionProceed:
		return "proceed"
	case DispositionRefreshedProceed:
		return "refreshed_proceed"
	case DispositionNeedsLogin:
		return "needs_login"
	case DispositionLoginRequired:
		return "login_required"
	default:
		return "unknown"
	}
}

// NotificationKind identifies which lifecycle event a notification
// reports to the user.
type NotificationKind string

const (
	// NotificationRefreshed - session was refreshed automatically
	NotificationRefreshed NotificationKind = "refreshed"
	// NotificationExpiringSoon - session expires within the warning window
	NotificationExpiringSoon NotificationKind = "expiring_soon"
	// NotificationLoginRequired - session expired and could not be refreshed
	NotificationLoginRequired NotificationKind = "login_required"
)

// Notification is a lifecycle event to be delivered to the user over
// chat and, when an address is on file, email. The dispatcher treats
// both channels as best-effort.
type Notification struct {
	Kind        NotificationKind
	UserID      string
	Email       string // empty = skip the email channel
	DisplayName string
	MinutesLeft int    // set for ExpiringSoon
	AuthURL     string // set for LoginRequired
}
