package output

import (
	"context"

	"spotify-line-bot/internal/domain"
)

// SpotifyClient interface - Output port
// Defines what the application needs from the Spotify Web API. Every
// call takes the user's access token; the client holds no per-user
// state. Only invoked after the lifecycle gate allows the command.
type SpotifyClient interface {
	// CurrentlyPlaying returns the user's current playback, or nil when
	// nothing is playing.
	CurrentlyPlaying(ctx context.Context, accessToken string) (*domain.NowPlaying, error)

	// TopTracks returns the user's most played tracks over the recent term.
	TopTracks(ctx context.Context, accessToken string, limit int) ([]domain.Track, error)

	// TopArtists returns the user's most played artists over the recent term.
	TopArtists(ctx context.Context, accessToken string, limit int) ([]domain.Artist, error)

	// Playlists returns a page of the user's playlists and the total count.
	Playlists(ctx context.Context, accessToken string, limit int) (*domain.PlaylistPage, error)

	// SavedTracks returns a page of the user's liked songs and the total count.
	SavedTracks(ctx context.Context, accessToken string, limit int) (*domain.SavedTrackPage, error)

	// RecentlyPlayed returns the user's latest listening history entries.
	RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.PlayHistoryItem, error)

	// Profile returns the account profile of the token's owner.
	Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error)

	// FollowedArtistTotal returns how many artists the user follows.
	FollowedArtistTotal(ctx context.Context, accessToken string) (int, error)
}
