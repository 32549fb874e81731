package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/input"
	"spotify-line-bot/internal/ports/output"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure SessionLifecycleService implements SessionLifecycle interface
var _ input.SessionLifecycle = (*SessionLifecycleService)(nil)

// loginStateTTL bounds how long an issued login link stays redeemable.
const loginStateTTL = 10 * time.Minute

// SessionLifecycleService struct - Application service implementing the
// session lifecycle state machine. Every command attempt runs through
// Evaluate, which derives the session's temporal state, refreshes an
// expired token in place, and emits at most one notification per expiry
// event. Evaluation for one user is serialized by a per-user lock so a
// refresh never races another evaluation of the same session, while
// other users proceed untouched.
type SessionLifecycleService struct {
	store      output.SessionStore
	auth       output.AuthProvider
	spotify    output.SpotifyClient
	dispatcher *NotificationDispatcher

	userLocks sync.Map // userID -> *sync.Mutex

	pendingLogins sync.Map // state -> pendingLogin

	now func() time.Time // injectable clock for tests
}

// pendingLogin tracks an issued, not yet redeemed login state.
type pendingLogin struct {
	userID   string
	issuedAt time.Time
}

// NewSessionLifecycleService func - Creates new session lifecycle service
func NewSessionLifecycleService(
	store output.SessionStore,
	auth output.AuthProvider,
	spotify output.SpotifyClient,
	dispatcher *NotificationDispatcher,
) *SessionLifecycleService {
	return &SessionLifecycleService{
		store:      store,
		auth:       auth,
		spotify:    spotify,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Evaluate func - Use case: validate the user's session before a command.
// Returns a disposition, never an error; every lifecycle failure resolves
// to a user-facing notification and a log line.
func (s *SessionLifecycleService) Evaluate(ctx context.Context, userID string) domain.Disposition {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session := s.store.GetOrCreate(userID)
	now := s.now()
	state := session.StateAt(now)

	logrus.Infof("Session lifecycle check: userID=%s state=%s", userID, state)

	switch state {
	case domain.SessionStateUnauthenticated:
		return domain.DispositionNeedsLogin

	case domain.SessionStateValid:
		return domain.DispositionProceed

	case domain.SessionStateExpiringSoon:
		// MarkExpiryWarningSent flips the flag at most once per
		// credential lifetime, which is what keeps the warning
		// notification idempotent across repeated commands.
		if s.store.MarkExpiryWarningSent(userID) {
			s.dispatcher.Dispatch(domain.Notification{
				Kind:        domain.NotificationExpiringSoon,
				UserID:      userID,
				Email:       session.Email,
				DisplayName: session.DisplayName,
				MinutesLeft: session.MinutesUntilExpiry(now),
			})
		}
		return domain.DispositionProceed

	case domain.SessionStateExpired:
		return s.refreshExpired(ctx, session)

	default:
		return domain.DispositionNeedsLogin
	}
}

// refreshExpired attempts the refresh protocol for an expired session.
// Failures are not retried here; the next command attempt re-evaluates
// and re-attempts naturally.
func (s *SessionLifecycleService) refreshExpired(ctx context.Context, session *domain.UserSession) domain.Disposition {
	grant, err := s.auth.Refresh(ctx, session.RefreshToken)
	if err != nil {
		logrus.Errorf("Session refresh failed for user %s: %v", session.UserID, err)

		s.dispatcher.Dispatch(domain.Notification{
			Kind:        domain.NotificationLoginRequired,
			UserID:      session.UserID,
			Email:       session.Email,
			DisplayName: session.DisplayName,
			AuthURL:     s.BeginLogin(session.UserID),
		})
		return domain.DispositionLoginRequired
	}

	s.store.SetCredentials(session.UserID, grant.AccessToken, grant.RefreshToken, grant.TTL)
	logrus.Infof("Session refreshed for user %s, valid for %v", session.UserID, grant.TTL)

	s.dispatcher.Dispatch(domain.Notification{
		Kind:        domain.NotificationRefreshed,
		UserID:      session.UserID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
	})
	return domain.DispositionRefreshedProceed
}

// BeginLogin func - Use case: issue a single-use login state and return
// the authorization URL for the user to open.
func (s *SessionLifecycleService) BeginLogin(userID string) string {
	state := uuid.NewString()
	s.pendingLogins.Store(state, pendingLogin{
		userID:   userID,
		issuedAt: s.now(),
	})
	return s.auth.AuthCodeURL(state)
}

// CompleteLogin func - Use case: redeem a login state, exchange the
// authorization code and install the credential. The Spotify profile is
// fetched once here so later notifications know the user's contact
// address without touching the data API.
func (s *SessionLifecycleService) CompleteLogin(ctx context.Context, state, code string) (*domain.UserSession, error) {
	userID, ok := s.redeemLoginState(state)
	if !ok {
		return nil, errors.New("unknown or expired login state")
	}

	grant, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.store.SetCredentials(userID, grant.AccessToken, grant.RefreshToken, grant.TTL)

	profile, err := s.spotify.Profile(ctx, grant.AccessToken)
	if err != nil {
		// Contact capture is best-effort; the session itself is live.
		logrus.Warnf("Failed to fetch profile for user %s after login: %v", userID, err)
	} else {
		s.store.SetContact(userID, profile.Email, profile.DisplayName)
	}

	return s.store.GetOrCreate(userID), nil
}

// redeemLoginState consumes a pending login state, expiring stale ones
// lazily.
func (s *SessionLifecycleService) redeemLoginState(state string) (string, bool) {
	value, loaded := s.pendingLogins.LoadAndDelete(state)
	if !loaded {
		return "", false
	}

	pending := value.(pendingLogin)
	if s.now().Sub(pending.issuedAt) > loginStateTTL {
		return "", false
	}
	return pending.userID, true
}

// userLock returns the mutex serializing lifecycle work for one user.
func (s *SessionLifecycleService) userLock(userID string) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
