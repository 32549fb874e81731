package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spotify-line-bot/internal/adapters/output/memory"
	"spotify-line-bot/internal/domain"
)

// newLifecycleFixture wires a lifecycle service against the real
// in-memory store and mock collaborators.
func newLifecycleFixture() (*SessionLifecycleService, *memory.MemorySessionStore, *MockAuthProvider, *MockLineClient, *MockMailer) {
	store := memory.NewMemorySessionStore()
	auth := &MockAuthProvider{}
	lineClient := &MockLineClient{}
	mailer := &MockMailer{}
	spotify := &MockSpotifyClient{}
	dispatcher := NewNotificationDispatcher(lineClient, mailer)
	service := NewSessionLifecycleService(store, auth, spotify, dispatcher)
	return service, store, auth, lineClient, mailer
}

// TestEvaluateReturnsNeedsLoginForUnknownUser tests that an
// unauthenticated session short-circuits with no side effects
func TestEvaluateReturnsNeedsLoginForUnknownUser(t *testing.T) {
	service, store, auth, lineClient, _ := newLifecycleFixture()

	disposition := service.Evaluate(context.Background(), "U1")

	if disposition != domain.DispositionNeedsLogin {
		t.Errorf("expected needs_login, got %s", disposition)
	}
	if disposition.Allows() {
		t.Error("expected needs_login to block the command")
	}
	if auth.RefreshCount() != 0 {
		t.Error("expected no refresh attempt")
	}
	if lineClient.PushCount() != 0 {
		t.Error("expected no notification")
	}
	if session := store.GetOrCreate("U1"); session.Authenticated() {
		t.Error("expected session to remain unauthenticated")
	}
}

// TestEvaluateReturnsProceedForValidSession tests the happy path
func TestEvaluateReturnsProceedForValidSession(t *testing.T) {
	service, store, _, lineClient, _ := newLifecycleFixture()
	store.SetCredentials("U1", "access", "refresh", time.Hour)

	disposition := service.Evaluate(context.Background(), "U1")

	if disposition != domain.DispositionProceed {
		t.Errorf("expected proceed, got %s", disposition)
	}
	if lineClient.PushCount() != 0 {
		t.Error("expected no notification for a valid session")
	}
	if session := store.GetOrCreate("U1"); session.ExpiryWarningSent {
		t.Error("expected warning flag untouched")
	}
}

// TestEvaluateWarnsExactlyOnceInsideWarningWindow tests the
// once-per-credential-lifetime expiring-soon notification
func TestEvaluateWarnsExactlyOnceInsideWarningWindow(t *testing.T) {
	service, store, _, lineClient, _ := newLifecycleFixture()
	store.SetCredentials("U1", "access", "refresh", 4*time.Minute)

	first := service.Evaluate(context.Background(), "U1")
	if first != domain.DispositionProceed {
		t.Errorf("expected proceed inside warning window, got %s", first)
	}
	if lineClient.PushCount() != 1 {
		t.Fatalf("expected exactly one warning push, got %d", lineClient.PushCount())
	}

	push := lineClient.LastPush()
	if push.To != "U1" {
		t.Errorf("expected push to U1, got %s", push.To)
	}
	if !strings.Contains(push.Messages[0].Text, "expires in about") {
		t.Errorf("expected expiring-soon wording, got %q", push.Messages[0].Text)
	}

	// Repeated evaluations before expiry stay silent
	for i := 0; i < 3; i++ {
		if d := service.Evaluate(context.Background(), "U1"); d != domain.DispositionProceed {
			t.Errorf("expected proceed, got %s", d)
		}
	}
	if lineClient.PushCount() != 1 {
		t.Errorf("expected no further warnings, got %d pushes", lineClient.PushCount())
	}

	if session := store.GetOrCreate("U1"); !session.ExpiryWarningSent {
		t.Error("expected warning flag set after first evaluation")
	}
}

// TestEvaluateRefreshesExpiredSessionAndProceeds tests the successful
// refresh protocol
func TestEvaluateRefreshesExpiredSessionAndProceeds(t *testing.T) {
	service, store, auth, lineClient, mailer := newLifecycleFixture()
	store.SetCredentials("U1", "stale", "refresh", -time.Minute)
	store.SetContact("U1", "user@example.com", "Alex")

	auth.RefreshFunc = func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
		if refreshToken != "refresh" {
			t.Errorf("expected stored refresh token, got %q", refreshToken)
		}
		return &domain.TokenGrant{AccessToken: "fresh", RefreshToken: "refresh2", TTL: time.Hour}, nil
	}

	disposition := service.Evaluate(context.Background(), "U1")

	if disposition != domain.DispositionRefreshedProceed {
		t.Errorf("expected refreshed_proceed, got %s", disposition)
	}
	if !disposition.Allows() {
		t.Error("expected refreshed_proceed to allow the command")
	}

	session := store.GetOrCreate("U1")
	if session.AccessToken != "fresh" || session.RefreshToken != "refresh2" {
		t.Errorf("expected new token pair, got %q/%q", session.AccessToken, session.RefreshToken)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("expected new expiry in the future")
	}
	if session.ExpiryWarningSent {
		t.Error("expected warning flag reset by refresh")
	}

	if lineClient.PushCount() != 1 {
		t.Fatalf("expected exactly one refreshed push, got %d", lineClient.PushCount())
	}
	if !strings.Contains(lineClient.LastPush().Messages[0].Text, "refreshed") {
		t.Errorf("expected refreshed wording, got %q", lineClient.LastPush().Messages[0].Text)
	}

	service.dispatcher.Flush()
	if mailer.SentCount() != 1 {
		t.Fatalf("expected one refreshed email, got %d", mailer.SentCount())
	}
	if mailer.Sent[0].To != "user@example.com" {
		t.Errorf("expected email to stored contact, got %s", mailer.Sent[0].To)
	}
}

// TestEvaluateLeavesSessionUntouchedWhenRefreshRejected tests the
// failed refresh path
func TestEvaluateLeavesSessionUntouchedWhenRefreshRejected(t *testing.T) {
	service, store, auth, lineClient, _ := newLifecycleFixture()
	store.SetCredentials("U1", "stale", "badrefresh", -time.Minute)
	staleExpiry := store.GetOrCreate("U1").ExpiresAt

	auth.RefreshFunc = func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
		return nil, domain.ErrRefreshFailed
	}

	disposition := service.Evaluate(context.Background(), "U1")

	if disposition != domain.DispositionLoginRequired {
		t.Errorf("expected login_required, got %s", disposition)
	}
	if disposition.Allows() {
		t.Error("expected login_required to block the command")
	}

	session := store.GetOrCreate("U1")
	if session.AccessToken != "stale" || !session.ExpiresAt.Equal(staleExpiry) {
		t.Error("expected credential and expiry untouched after failed refresh")
	}

	if lineClient.PushCount() != 1 {
		t.Fatalf("expected exactly one login-required push, got %d", lineClient.PushCount())
	}
	text := lineClient.LastPush().Messages[0].Text
	if !strings.Contains(text, "https://accounts.example.com/authorize?state=") {
		t.Errorf("expected a fresh re-authentication link, got %q", text)
	}
}

// TestEvaluateRequiresLoginWhenRefreshTokenAbsent tests refresh with no
// refresh credential on record
func TestEvaluateRequiresLoginWhenRefreshTokenAbsent(t *testing.T) {
	service, store, _, lineClient, _ := newLifecycleFixture()
	store.SetCredentials("U1", "stale", "", -time.Minute)

	disposition := service.Evaluate(context.Background(), "U1")

	if disposition != domain.DispositionLoginRequired {
		t.Errorf("expected login_required, got %s", disposition)
	}
	if lineClient.PushCount() != 1 {
		t.Errorf("expected one login-required push, got %d", lineClient.PushCount())
	}
}

// TestEvaluateTimelineAroundExpiry walks one credential lifetime:
// warning fires once inside the window, then expiry triggers a refresh
func TestEvaluateTimelineAroundExpiry(t *testing.T) {
	service, store, auth, lineClient, _ := newLifecycleFixture()

	base := time.Now()
	store.SetCredentials("U1", "access", "refresh", 3600*time.Second)

	auth.RefreshFunc = func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
		return &domain.TokenGrant{AccessToken: "fresh", RefreshToken: "refresh", TTL: time.Hour}, nil
	}

	// 5s inside the warning window: warn once
	service.now = func() time.Time { return base.Add(3560 * time.Second) }
	if d := service.Evaluate(context.Background(), "U1"); d != domain.DispositionProceed {
		t.Errorf("expected proceed at T0+3560s, got %s", d)
	}
	if lineClient.PushCount() != 1 {
		t.Fatalf("expected one warning at T0+3560s, got %d pushes", lineClient.PushCount())
	}

	// Still before expiry: silent
	service.now = func() time.Time { return base.Add(3599 * time.Second) }
	if d := service.Evaluate(context.Background(), "U1"); d != domain.DispositionProceed {
		t.Errorf("expected proceed at T0+3599s, got %s", d)
	}
	if lineClient.PushCount() != 1 {
		t.Errorf("expected no second warning at T0+3599s, got %d pushes", lineClient.PushCount())
	}
	if auth.RefreshCount() != 0 {
		t.Error("expected no refresh before expiry")
	}

	// Past expiry: refresh kicks in
	service.now = func() time.Time { return base.Add(3602 * time.Second) }
	if d := service.Evaluate(context.Background(), "U1"); d != domain.DispositionRefreshedProceed {
		t.Errorf("expected refreshed_proceed at T0+3602s, got %s", d)
	}
	if auth.RefreshCount() != 1 {
		t.Errorf("expected exactly one refresh attempt, got %d", auth.RefreshCount())
	}
}

// TestEvaluateForOneUserDoesNotBlockAnother tests that a slow refresh
// for one user leaves other users' evaluations unblocked
func TestEvaluateForOneUserDoesNotBlockAnother(t *testing.T) {
	service, store, auth, _, _ := newLifecycleFixture()
	store.SetCredentials("slow-user", "stale", "refresh", -time.Minute)
	store.SetCredentials("fast-user", "access", "refresh", time.Hour)

	release := make(chan struct{})
	auth.RefreshFunc = func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
		<-release
		return &domain.TokenGrant{AccessToken: "fresh", RefreshToken: "refresh", TTL: time.Hour}, nil
	}

	slowDone := make(chan domain.Disposition, 1)
	go func() {
		slowDone <- service.Evaluate(context.Background(), "slow-user")
	}()

	// The other user's evaluation must complete while the refresh hangs.
	fastDone := make(chan domain.Disposition, 1)
	go func() {
		fastDone <- service.Evaluate(context.Background(), "fast-user")
	}()

	select {
	case d := <-fastDone:
		if d != domain.DispositionProceed {
			t.Errorf("expected proceed for unblocked user, got %s", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation for an unrelated user was blocked by a slow refresh")
	}

	close(release)
	if d := <-slowDone; d != domain.DispositionRefreshedProceed {
		t.Errorf("expected refreshed_proceed for slow user, got %s", d)
	}
}

// TestBeginLoginIssuesSingleUseState tests the login state round trip
func TestBeginLoginIssuesSingleUseState(t *testing.T) {
	service, store, auth, _, _ := newLifecycleFixture()

	auth.ExchangeFunc = func(ctx context.Context, code string) (*domain.TokenGrant, error) {
		if code != "authcode" {
			t.Errorf("expected code 'authcode', got %q", code)
		}
		return &domain.TokenGrant{AccessToken: "access", RefreshToken: "refresh", TTL: time.Hour}, nil
	}

	url := service.BeginLogin("U1")
	if !strings.Contains(url, "state=") {
		t.Fatalf("expected auth URL to carry a state, got %q", url)
	}
	state := auth.LastState

	session, err := service.CompleteLogin(context.Background(), state, "authcode")
	if err != nil {
		t.Fatalf("expected login to complete, got %v", err)
	}
	if session.UserID != "U1" || session.AccessToken != "access" {
		t.Errorf("expected installed credential for U1, got %+v", session)
	}
	if stored := store.GetOrCreate("U1"); !stored.Authenticated() {
		t.Error("expected store to hold the new credential")
	}

	// A state cannot be redeemed twice
	if _, err := service.CompleteLogin(context.Background(), state, "authcode"); err == nil {
		t.Error("expected second redemption of the same state to fail")
	}
}

// TestCompleteLoginCapturesProfileContact tests contact capture at login
func TestCompleteLoginCapturesProfileContact(t *testing.T) {
	store := memory.NewMemorySessionStore()
	auth := &MockAuthProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*domain.TokenGrant, error) {
			return &domain.TokenGrant{AccessToken: "access", RefreshToken: "refresh", TTL: time.Hour}, nil
		},
	}
	spotify := &MockSpotifyClient{
		ProfileFunc: func(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
			return &domain.UserProfile{DisplayName: "Alex", Email: "alex@example.com"}, nil
		},
	}
	dispatcher := NewNotificationDispatcher(&MockLineClient{}, &MockMailer{})
	service := NewSessionLifecycleService(store, auth, spotify, dispatcher)

	service.BeginLogin("U1")
	session, err := service.CompleteLogin(context.Background(), auth.LastState, "code")
	if err != nil {
		t.Fatalf("expected login to complete, got %v", err)
	}
	if session.Email != "alex@example.com" || session.DisplayName != "Alex" {
		t.Errorf("expected contact captured from profile, got %q / %q", session.Email, session.DisplayName)
	}
}

// TestCompleteLoginRejectsUnknownState tests the invalid callback path
func TestCompleteLoginRejectsUnknownState(t *testing.T) {
	service, store, _, _, _ := newLifecycleFixture()

	if _, err := service.CompleteLogin(context.Background(), "bogus-state", "code"); err == nil {
		t.Error("expected unknown state to be rejected")
	}
	if session := store.GetOrCreate("U1"); session.Authenticated() {
		t.Error("expected no credential installed")
	}
}

// TestCompleteLoginRejectsExpiredState tests lazy expiry of stale states
func TestCompleteLoginRejectsExpiredState(t *testing.T) {
	service, _, auth, _, _ := newLifecycleFixture()

	service.BeginLogin("U1")
	state := auth.LastState

	service.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	if _, err := service.CompleteLogin(context.Background(), state, "code"); err == nil {
		t.Error("expected stale state to be rejected")
	}
}

// TestCompleteLoginSurvivesProfileFailure tests that contact capture is
// best-effort
func TestCompleteLoginSurvivesProfileFailure(t *testing.T) {
	store := memory.NewMemorySessionStore()
	auth := &MockAuthProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*domain.TokenGrant, error) {
			return &domain.TokenGrant{AccessToken: "access", RefreshToken: "refresh", TTL: time.Hour}, nil
		},
	}
	spotify := &MockSpotifyClient{
		ProfileFunc: func(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
			return nil, errors.New("profile endpoint down")
		},
	}
	dispatcher := NewNotificationDispatcher(&MockLineClient{}, nil)
	service := NewSessionLifecycleService(store, auth, spotify, dispatcher)

	service.BeginLogin("U1")
	session, err := service.CompleteLogin(context.Background(), auth.LastState, "code")
	if err != nil {
		t.Fatalf("expected login to complete despite profile failure, got %v", err)
	}
	if !session.Authenticated() {
		t.Error("expected credential installed")
	}
	if session.Email != "" {
		t.Errorf("expected no contact captured, got %q", session.Email)
	}
}
