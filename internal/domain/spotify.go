package domain

import "time"

// Spotify domain entities, mapped from the Web API by the output adapter.

// TokenGrant is a credential issued by the Spotify auth provider, either
// from the authorization-code exchange or from a refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TTL          time.Duration
}

// Artist represents a Spotify artist
type Artist struct {
	Name string
}

// Track represents a Spotify track
type Track struct {
	Name        string
	Artist      string
	Album       string
	AlbumType   string
	ReleaseDate string
	TrackNumber int
	TotalTracks int
	Popularity  int // 0-100
	DurationMS  int
	SpotifyURL  string
	PreviewURL  string
}

// NowPlaying represents the user's currently playing track, including
// playback progress. A nil NowPlaying means nothing is playing.
type NowPlaying struct {
	Track      Track
	ProgressMS int
	IsPlaying  bool
}

// Playlist represents a Spotify playlist
type Playlist struct {
	Name       string
	TrackCount int
}

// PlaylistPage is a page of playlists plus the account-wide total
type PlaylistPage struct {
	Items []Playlist
	Total int
}

// SavedTrackPage is a page of the user's liked songs plus the total
type SavedTrackPage struct {
	Items []Track
	Total int
}

// PlayHistoryItem is one entry of the user's recent listening history
type PlayHistoryItem struct {
	Track    Track
	PlayedAt time.Time
}

// UserProfile represents the Spotify account profile
type UserProfile struct {
	DisplayName string
	Email       string
	Country     string
	Product     string // free / premium
	SpotifyURL  string
}

// ListeningStats aggregates account statistics across several endpoints,
// assembled by the bot service for the /stats command.
type ListeningStats struct {
	Profile        UserProfile
	PlaylistTotal  int
	SavedTotal     int
	FollowingTotal int
	TopArtists     []Artist
	LastPlayed     *PlayHistoryItem
}
