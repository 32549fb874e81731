package application

import (
	"fmt"
	"strings"
	"time"

	"spotify-line-bot/internal/domain"
)

// Reply rendering for the bot's data commands. Plain text only; LINE
// does not render markdown.

const progressBarCells = 20

// formatProgressBar renders playback progress as a filled/empty bar.
func formatProgressBar(progress, total int) string {
	if total <= 0 {
		return strings.Repeat("░", progressBarCells)
	}

	ratio := float64(progress) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(progressBarCells * ratio)

	return strings.Repeat("▓", filled) + strings.Repeat("░", progressBarCells-filled)
}

// formatStars converts a 0-100 popularity score to a 1-5 star rating.
func formatStars(popularity int) string {
	stars := (popularity + 19) / 20
	if stars < 1 {
		stars = 1
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("⭐", stars)
}

// formatDuration renders milliseconds as m:ss.
func formatDuration(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// formatRelativeTime renders how long ago a moment was, coarsely.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff >= 24*time.Hour:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d %s ago", days, pluralize("day", days))
	case diff >= time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%d %s ago", hours, pluralize("hour", hours))
	default:
		minutes := int(diff.Minutes())
		return fmt.Sprintf("%d %s ago", minutes, pluralize("minute", minutes))
	}
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// formatNowPlaying renders the /current reply.
func formatNowPlaying(np *domain.NowPlaying) string {
	if np == nil || !np.IsPlaying {
		return "🔇 Nothing is playing right now"
	}

	track := np.Track
	progress := np.ProgressMS / 1000
	duration := track.DurationMS / 1000

	percent := 0
	if duration > 0 {
		percent = progress * 100 / duration
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎵 Now playing: %s\n", track.Name)
	fmt.Fprintf(&b, "👤 Artist: %s\n", track.Artist)
	fmt.Fprintf(&b, "💿 Album: %s\n", track.Album)
	if track.AlbumType != "" {
		fmt.Fprintf(&b, "📀 Album type: %s\n", capitalize(track.AlbumType))
	}
	if track.ReleaseDate != "" {
		fmt.Fprintf(&b, "📅 Released: %s\n", track.ReleaseDate)
	}
	if track.TotalTracks > 0 {
		fmt.Fprintf(&b, "🔢 Track: %d/%d\n", track.TrackNumber, track.TotalTracks)
	}
	fmt.Fprintf(&b, "🌟 Popularity: %d/100\n\n", track.Popularity)
	fmt.Fprintf(&b, "⏳ Time: %s/%s\n", formatDuration(np.ProgressMS), formatDuration(track.DurationMS))
	fmt.Fprintf(&b, "%s %d%%", formatProgressBar(np.ProgressMS, track.DurationMS), percent)

	if track.PreviewURL != "" {
		fmt.Fprintf(&b, "\n\n🎧 30s preview: %s", track.PreviewURL)
	}
	if track.SpotifyURL != "" {
		fmt.Fprintf(&b, "\n🔗 Open on Spotify: %s", track.SpotifyURL)
	}
	return b.String()
}

// formatTopTracks renders the /top reply.
func formatTopTracks(tracks []domain.Track, limit int) string {
	if len(tracks) == 0 {
		return "❗ No top track data yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Your top %d tracks lately:\n", limit)
	for i, track := range tracks {
		fmt.Fprintf(&b, "\n%d. %s - %s %s", i+1, track.Name, track.Artist, formatStars(track.Popularity))
	}
	return b.String()
}

// formatPlaylists renders the /playlists reply.
func formatPlaylists(page *domain.PlaylistPage, limit int) string {
	if page == nil || len(page.Items) == 0 {
		return "❗ You don't have any playlists yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Your %d most recent playlists:\n", limit)
	for i, playlist := range page.Items {
		fmt.Fprintf(&b, "\n%d. %s (%d %s)", i+1, playlist.Name,
			playlist.TrackCount, pluralize("track", playlist.TrackCount))
	}
	return b.String()
}

// formatLikedSongs renders the /liked reply.
func formatLikedSongs(page *domain.SavedTrackPage, limit int) string {
	if page == nil || len(page.Items) == 0 {
		return "❗ You don't have any liked songs yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "❤️ Your %d most recently liked songs:\n", limit)
	for i, track := range page.Items {
		fmt.Fprintf(&b, "\n%d. %s - %s %s", i+1, track.Name, track.Artist, formatStars(track.Popularity))
	}
	return b.String()
}

// formatRecentActivity renders the /recent reply.
func formatRecentActivity(items []domain.PlayHistoryItem, limit int, now time.Time) string {
	if len(items) == 0 {
		return "❗ No recent listening activity."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔄 Your last %d plays:\n", limit)
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s - %s (%s)", i+1, item.Track.Name, item.Track.Artist,
			formatRelativeTime(item.PlayedAt, now))
	}
	return b.String()
}

// formatStats renders the /stats reply.
func formatStats(stats *domain.ListeningStats) string {
	var b strings.Builder
	b.WriteString("📊 Your Spotify account stats:\n")

	profile := stats.Profile
	fmt.Fprintf(&b, "\n👤 Name: %s", orNA(profile.DisplayName))
	fmt.Fprintf(&b, "\n🌍 Country: %s", orNA(profile.Country))
	fmt.Fprintf(&b, "\n📧 Email: %s", orNA(profile.Email))
	fmt.Fprintf(&b, "\n🎵 Plan: %s", capitalize(orNA(profile.Product)))
	fmt.Fprintf(&b, "\n👥 Following: %d %s", stats.FollowingTotal, pluralize("artist", stats.FollowingTotal))
	fmt.Fprintf(&b, "\n📋 Playlists: %d", stats.PlaylistTotal)
	fmt.Fprintf(&b, "\n❤️ Saved songs: %d", stats.SavedTotal)

	if len(stats.TopArtists) > 0 {
		b.WriteString("\n\n🌟 Top artists lately:")
		for i, artist := range stats.TopArtists {
			fmt.Fprintf(&b, "\n%d. %s", i+1, artist.Name)
		}
	}

	if stats.LastPlayed != nil {
		fmt.Fprintf(&b, "\n\n🎵 Last played:\n%s - %s",
			stats.LastPlayed.Track.Name, stats.LastPlayed.Track.Artist)
	}

	if profile.SpotifyURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 View profile: %s", profile.SpotifyURL)
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
