package memory

import (
	"sync"
	"time"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/output"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session storage.
// Sessions are process-lifetime only; a restart resets every user to
// unauthenticated. A single mutex guards the map and every mutation runs
// start-to-finish under it, so the token/expiry pair is always updated as
// one unit and GetOrCreate snapshots are always consistent.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.UserSession

	now func() time.Time // injectable clock for tests
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.UserSession),
		now:      time.Now,
	}
}

// GetOrCreate retrieves the session for a user, inserting a default
// unauthenticated record the first time the user is seen. Returns a copy
// so callers never race against later mutations.
func (m *MemorySessionStore) GetOrCreate(userID string) *domain.UserSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(userID)
	snapshot := *session
	return &snapshot
}

// SetCredentials installs a new token pair and its expiry atomically and
// clears the expiry-warning flag for the new credential lifetime.
func (m *MemorySessionStore) SetCredentials(userID, accessToken, refreshToken string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(userID)
	session.AccessToken = accessToken
	session.RefreshToken = refreshToken
	session.ExpiresAt = m.now().Add(ttl)
	session.ExpiryWarningSent = false
}

// SetContact records the contact details captured from the Spotify
// profile at login.
func (m *MemorySessionStore) SetContact(userID, email, displayName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(userID)
	session.Email = email
	session.DisplayName = displayName
}

// ClearCredentials unauthenticates the session. The configured result
// limit and contact details are kept.
func (m *MemorySessionStore) ClearCredentials(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(userID)
	session.AccessToken = ""
	session.RefreshToken = ""
	session.ExpiresAt = time.Time{}
	session.ExpiryWarningSent = false
}

// SetResultLimit overwrites the display size, rejecting out-of-range
// values without touching state.
func (m *MemorySessionStore) SetResultLimit(userID string, n int) error {
	if n < 1 || n > domain.MaxResultLimit {
		return domain.ErrLimitOutOfRange
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(userID)
	session.ResultLimit = n
	return nil
}

// MarkExpiryWarningSent flips the expiry-warning flag and reports whether
// this call did the flipping. Only one concurrent caller per credential
// lifetime gets true.
func (m *MemorySessionStore) MarkExpiryWarningSent(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.locked(userID)
	if !session.Authenticated() || session.ExpiryWarningSent {
		return false
	}
	session.ExpiryWarningSent = true
	return true
}

// locked returns the live record for a user, creating it if absent.
// Callers must hold m.mu.
func (m *MemorySessionStore) locked(userID string) *domain.UserSession {
	session, exists := m.sessions[userID]
	if !exists {
		session = domain.NewUserSession(userID)
		m.sessions[userID] = session
	}
	return session
}
