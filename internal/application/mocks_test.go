package application

import (
	"context"
	"sync"

	"spotify-line-bot/internal/domain"
)

// Hand-written mocks implementing the output ports for testing

// MockLineClient implements output.LineClient for testing
type MockLineClient struct {
	ReplyMessageFunc func(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error)
	PushMessageFunc  func(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error)

	mu sync.Mutex
	// Captured values for assertions
	ReplyRequests []domain.LineReplyMessageRequest
	PushRequests  []domain.LinePushMessageRequest
}

func (m *MockLineClient) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	m.mu.Lock()
	m.ReplyRequests = append(m.ReplyRequests, request)
	m.mu.Unlock()
	if m.ReplyMessageFunc != nil {
		return m.ReplyMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	m.mu.Lock()
	m.PushRequests = append(m.PushRequests, request)
	m.mu.Unlock()
	if m.PushMessageFunc != nil {
		return m.PushMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) PushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PushRequests)
}

func (m *MockLineClient) LastPush() *domain.LinePushMessageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.PushRequests) == 0 {
		return nil
	}
	request := m.PushRequests[len(m.PushRequests)-1]
	return &request
}

func (m *MockLineClient) LastReply() *domain.LineReplyMessageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ReplyRequests) == 0 {
		return nil
	}
	request := m.ReplyRequests[len(m.ReplyRequests)-1]
	return &request
}

// MockMailer implements output.Mailer for testing
type MockMailer struct {
	SendFunc func(mail domain.Email) error

	mu   sync.Mutex
	Sent []domain.Email
}

func (m *MockMailer) Send(mail domain.Email) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, mail)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(mail)
	}
	return nil
}

func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MockAuthProvider implements output.AuthProvider for testing
type MockAuthProvider struct {
	AuthCodeURLFunc func(state string) string
	ExchangeFunc    func(ctx context.Context, code string) (*domain.TokenGrant, error)
	RefreshFunc     func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)

	mu           sync.Mutex
	RefreshCalls int
	LastState    string
}

func (m *MockAuthProvider) AuthCodeURL(state string) string {
	m.mu.Lock()
	m.LastState = state
	m.mu.Unlock()
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockAuthProvider) Exchange(ctx context.Context, code string) (*domain.TokenGrant, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return nil, domain.ErrRefreshFailed
}

func (m *MockAuthProvider) Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	m.RefreshCalls++
	m.mu.Unlock()
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, domain.ErrRefreshFailed
}

func (m *MockAuthProvider) RefreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefreshCalls
}

// MockSpotifyClient implements output.SpotifyClient for testing
type MockSpotifyClient struct {
	CurrentlyPlayingFunc    func(ctx context.Context, accessToken string) (*domain.NowPlaying, error)
	TopTracksFunc           func(ctx context.Context, accessToken string, limit int) ([]domain.Track, error)
	TopArtistsFunc          func(ctx context.Context, accessToken string, limit int) ([]domain.Artist, error)
	PlaylistsFunc           func(ctx context.Context, accessToken string, limit int) (*domain.PlaylistPage, error)
	SavedTracksFunc         func(ctx context.Context, accessToken string, limit int) (*domain.SavedTrackPage, error)
	RecentlyPlayedFunc      func(ctx context.Context, accessToken string, limit int) ([]domain.PlayHistoryItem, error)
	ProfileFunc             func(ctx context.Context, accessToken string) (*domain.UserProfile, error)
	FollowedArtistTotalFunc func(ctx context.Context, accessToken string) (int, error)

	mu        sync.Mutex
	DataCalls int
}

func (m *MockSpotifyClient) called() {
	m.mu.Lock()
	m.DataCalls++
	m.mu.Unlock()
}

func (m *MockSpotifyClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.DataCalls
}

func (m *MockSpotifyClient) CurrentlyPlaying(ctx context.Context, accessToken string) (*domain.NowPlaying, error) {
	m.called()
	if m.CurrentlyPlayingFunc != nil {
		return m.CurrentlyPlayingFunc(ctx, accessToken)
	}
	return nil, nil
}

func (m *MockSpotifyClient) TopTracks(ctx context.Context, accessToken string, limit int) ([]domain.Track, error) {
	m.called()
	if m.TopTracksFunc != nil {
		return m.TopTracksFunc(ctx, accessToken, limit)
	}
	return nil, nil
}

func (m *MockSpotifyClient) TopArtists(ctx context.Context, accessToken string, limit int) ([]domain.Artist, error) {
	m.called()
	if m.TopArtistsFunc != nil {
		return m.TopArtistsFunc(ctx, accessToken, limit)
	}
	return nil, nil
}

func (m *MockSpotifyClient) Playlists(ctx context.Context, accessToken string, limit int) (*domain.PlaylistPage, error) {
	m.called()
	if m.PlaylistsFunc != nil {
		return m.PlaylistsFunc(ctx, accessToken, limit)
	}
	return &domain.PlaylistPage{}, nil
}

func (m *MockSpotifyClient) SavedTracks(ctx context.Context, accessToken string, limit int) (*domain.SavedTrackPage, error) {
	m.called()
	if m.SavedTracksFunc != nil {
		return m.SavedTracksFunc(ctx, accessToken, limit)
	}
	return &domain.SavedTrackPage{}, nil
}

func (m *MockSpotifyClient) RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.PlayHistoryItem, error) {
	m.called()
	if m.RecentlyPlayedFunc != nil {
		return m.RecentlyPlayedFunc(ctx, accessToken, limit)
	}
	return nil, nil
}

func (m *MockSpotifyClient) Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	m.called()
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, accessToken)
	}
	return &domain.UserProfile{}, nil
}

func (m *MockSpotifyClient) FollowedArtistTotal(ctx context.Context, accessToken string) (int, error) {
	m.called()
	if m.FollowedArtistTotalFunc != nil {
		return m.FollowedArtistTotalFunc(ctx, accessToken)
	}
	return 0, nil
}
