package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure ClientAdapter implements SpotifyClient interface
var _ output.SpotifyClient = (*ClientAdapter)(nil)

const defaultBaseURL = "https://api.spotify.com"

// Listing endpoints use the short term so replies reflect the user's
// recent listening, matching the bot's "top ... lately" wording.
const topTimeRange = "short_term"

// ClientAdapter struct - Output adapter for the Spotify Web API. Holds
// no per-user state; every call carries the caller's access token.
type ClientAdapter struct {
	httpClient *http.Client
	baseURL    string
}

// NewClientAdapter func - Creates new Spotify Web API client adapter.
// baseURL is overridable for tests; empty selects the real API.
func NewClientAdapter(baseURL string, timeout time.Duration) *ClientAdapter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &ClientAdapter{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Wire types mirroring the Spotify Web API JSON payloads

type trackJSON struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name        string `json:"name"`
		AlbumType   string `json:"album_type"`
		ReleaseDate string `json:"release_date"`
		TotalTracks int    `json:"total_tracks"`
	} `json:"album"`
	TrackNumber  int `json:"track_number"`
	Popularity   int `json:"popularity"`
	DurationMS   int `json:"duration_ms"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	PreviewURL string `json:"preview_url"`
}

func (t trackJSON) toDomain() domain.Track {
	track := domain.Track{
		Name:        t.Name,
		Album:       t.Album.Name,
		AlbumType:   t.Album.AlbumType,
		ReleaseDate: t.Album.ReleaseDate,
		TrackNumber: t.TrackNumber,
		TotalTracks: t.Album.TotalTracks,
		Popularity:  t.Popularity,
		DurationMS:  t.DurationMS,
		SpotifyURL:  t.ExternalURLs.Spotify,
		PreviewURL:  t.PreviewURL,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

// CurrentlyPlaying returns the user's current playback, or nil when
// nothing is playing (Spotify answers 204 in that case).
func (a *ClientAdapter) CurrentlyPlaying(ctx context.Context, accessToken string) (*domain.NowPlaying, error) {
	var payload struct {
		IsPlaying  bool       `json:"is_playing"`
		ProgressMS int        `json:"progress_ms"`
		Item       *trackJSON `json:"item"`
	}

	found, err := a.get(ctx, accessToken, "/v1/me/player/currently-playing", nil, &payload)
	if err != nil {
		return nil, err
	}
	if !found || payload.Item == nil {
		return nil, nil
	}

	return &domain.NowPlaying{
		Track:      payload.Item.toDomain(),
		ProgressMS: payload.ProgressMS,
		IsPlaying:  payload.IsPlaying,
	}, nil
}

// TopTracks returns the user's most played tracks over the recent term.
func (a *ClientAdapter) TopTracks(ctx context.Context, accessToken string, limit int) ([]domain.Track, error) {
	var payload struct {
		Items []trackJSON `json:"items"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}, "time_range": {topTimeRange}}
	if _, err := a.get(ctx, accessToken, "/v1/me/top/tracks", query, &payload); err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(payload.Items))
	for _, item := range payload.Items {
		tracks = append(tracks, item.toDomain())
	}
	return tracks, nil
}

// TopArtists returns the user's most played artists over the recent term.
func (a *ClientAdapter) TopArtists(ctx context.Context, accessToken string, limit int) ([]domain.Artist, error) {
	var payload struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}, "time_range": {topTimeRange}}
	if _, err := a.get(ctx, accessToken, "/v1/me/top/artists", query, &payload); err != nil {
		return nil, err
	}

	artists := make([]domain.Artist, 0, len(payload.Items))
	for _, item := range payload.Items {
		artists = append(artists, domain.Artist{Name: item.Name})
	}
	return artists, nil
}

// Playlists returns a page of the user's playlists and the total count.
func (a *ClientAdapter) Playlists(ctx context.Context, accessToken string, limit int) (*domain.PlaylistPage, error) {
	var payload struct {
		Items []struct {
			Name   string `json:"name"`
			Tracks struct {
				Total int `json:"total"`
			} `json:"tracks"`
		} `json:"items"`
		Total int `json:"total"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if _, err := a.get(ctx, accessToken, "/v1/me/playlists", query, &payload); err != nil {
		return nil, err
	}

	page := &domain.PlaylistPage{Total: payload.Total}
	for _, item := range payload.Items {
		page.Items = append(page.Items, domain.Playlist{
			Name:       item.Name,
			TrackCount: item.Tracks.Total,
		})
	}
	return page, nil
}

// SavedTracks returns a page of the user's liked songs and the total count.
func (a *ClientAdapter) SavedTracks(ctx context.Context, accessToken string, limit int) (*domain.SavedTrackPage, error) {
	var payload struct {
		Items []struct {
			Track trackJSON `json:"track"`
		} `json:"items"`
		Total int `json:"total"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if _, err := a.get(ctx, accessToken, "/v1/me/tracks", query, &payload); err != nil {
		return nil, err
	}

	page := &domain.SavedTrackPage{Total: payload.Total}
	for _, item := range payload.Items {
		page.Items = append(page.Items, item.Track.toDomain())
	}
	return page, nil
}

// RecentlyPlayed returns the user's latest listening history entries.
func (a *ClientAdapter) RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.PlayHistoryItem, error) {
	var payload struct {
		Items []struct {
			Track    trackJSON `json:"track"`
			PlayedAt string    `json:"played_at"`
		} `json:"items"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if _, err := a.get(ctx, accessToken, "/v1/me/player/recently-played", query, &payload); err != nil {
		return nil, err
	}

	history := make([]domain.PlayHistoryItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		playedAt, err := time.Parse(time.RFC3339, item.PlayedAt)
		if err != nil {
			logrus.Warnf("Skipping history entry with unparseable played_at %q: %v", item.PlayedAt, err)
			continue
		}
		history = append(history, domain.PlayHistoryItem{
			Track:    item.Track.toDomain(),
			PlayedAt: playedAt,
		})
	}
	return history, nil
}

// Profile returns the account profile of the token's owner.
func (a *ClientAdapter) Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	var payload struct {
		DisplayName  string `json:"display_name"`
		Email        string `json:"email"`
		Country      string `json:"country"`
		Product      string `json:"product"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}

	if _, err := a.get(ctx, accessToken, "/v1/me", nil, &payload); err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		DisplayName: payload.DisplayName,
		Email:       payload.Email,
		Country:     payload.Country,
		Product:     payload.Product,
		SpotifyURL:  payload.ExternalURLs.Spotify,
	}, nil
}

// FollowedArtistTotal returns how many artists the user follows.
func (a *ClientAdapter) FollowedArtistTotal(ctx context.Context, accessToken string) (int, error) {
	var payload struct {
		Artists struct {
			Total int `json:"total"`
		} `json:"artists"`
	}

	query := url.Values{"type": {"artist"}}
	if _, err := a.get(ctx, accessToken, "/v1/me/following", query, &payload); err != nil {
		return 0, err
	}
	return payload.Artists.Total, nil
}

// get performs one authenticated GET against the Web API and decodes the
// JSON body into out. The second return value is false for an empty 204
// response. Failures are wrapped in domain.ErrUpstreamUnavailable so the
// command gate can degrade them to a generic user message.
func (a *ClientAdapter) get(ctx context.Context, accessToken, path string, query url.Values, out interface{}) (bool, error) {
	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build spotify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode spotify response for %s: %w", path, err)
		}
		return true, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logrus.Errorf("Spotify API %s returned status %d: %s", path, resp.StatusCode, string(body))
		return false, fmt.Errorf("%w: spotify %s status %d", domain.ErrUpstreamUnavailable, path, resp.StatusCode)
	}
}
