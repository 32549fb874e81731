package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/input"
	"spotify-line-bot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure BotService implements BotService interface
var _ input.BotService = (*BotService)(nil)

// BotService struct - Application service implementing the command gate.
// One service handles every deployment profile; the capability set
// decides which commands are live, so there is a single command path
// instead of parallel bot variants.
type BotService struct {
	lineClient output.LineClient
	store      output.SessionStore
	spotify    output.SpotifyClient
	lifecycle  input.SessionLifecycle

	// capabilities holds the enabled commands. Empty means everything
	// is enabled.
	capabilities map[domain.Command]bool
}

// NewBotService func - Creates new bot service. enabledCommands narrows
// the command set for reduced deployments; nil or empty enables all.
func NewBotService(
	lineClient output.LineClient,
	store output.SessionStore,
	spotify output.SpotifyClient,
	lifecycle input.SessionLifecycle,
	enabledCommands []string,
) *BotService {
	capabilities := make(map[domain.Command]bool, len(enabledCommands))
	for _, name := range enabledCommands {
		capabilities[domain.Command(strings.ToLower(name))] = true
	}

	return &BotService{
		lineClient:   lineClient,
		store:        store,
		spotify:      spotify,
		lifecycle:    lifecycle,
		capabilities: capabilities,
	}
}

// HandleWebhook func - Use case: handle incoming webhook events from LINE
func (s *BotService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	for _, event := range request.Events {
		logrus.Infof("Received LINE event: type=%s, source=%s, userID=%s",
			event.Type, event.Source.Type, event.Source.UserID)

		switch event.Type {
		case domain.LineEventTypeMessage:
			if err := s.handleMessageEvent(ctx, event); err != nil {
				logrus.Errorf("Failed to handle message event: %v", err)
				return err
			}

		case domain.LineEventTypeFollow:
			if err := s.handleFollowEvent(event); err != nil {
				logrus.Errorf("Failed to handle follow event: %v", err)
				return err
			}

		case domain.LineEventTypeUnfollow:
			logrus.Infof("User unfollowed: userID=%s", event.Source.UserID)

		default:
			logrus.Infof("Unhandled event type: %s", event.Type)
		}
	}

	return nil
}

// handleMessageEvent - Business logic for message events
func (s *BotService) handleMessageEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	if event.Message == nil || event.Message.Type != domain.LineMessageTypeText {
		return nil
	}

	userID := event.Source.UserID
	command, args, ok := domain.ParseCommand(event.Message.Text)
	if !ok || !s.enabled(command) {
		return s.reply(event.ReplyToken, domain.LineOutgoingMessage{
			Type: domain.LineMessageTypeText,
			Text: "❌ Unknown command. Use the menu buttons or /help for the command list.",
		})
	}

	reply := s.runCommand(ctx, userID, command, args)
	if reply == nil {
		return nil
	}
	return s.reply(event.ReplyToken, *reply)
}

// runCommand routes one command to its handler. A nil return means no
// reply is due (the lifecycle dispatcher already messaged the user).
func (s *BotService) runCommand(ctx context.Context, userID string, command domain.Command, args []string) *domain.LineOutgoingMessage {
	switch command {
	case domain.CommandStart:
		return s.startMessage(userID)
	case domain.CommandMenu:
		return s.menuMessage(userID)
	case domain.CommandHelp:
		return s.helpMessage(userID)
	case domain.CommandSettings:
		return s.settingsMessage(userID)
	case domain.CommandContact:
		return textMessage(contactText)
	case domain.CommandLogout:
		return s.logout(userID)
	case domain.CommandLimit:
		return s.setLimit(userID, args)
	}

	// Everything else hits the Spotify data API and must pass the
	// session lifecycle gate first.
	disposition := s.lifecycle.Evaluate(ctx, userID)
	if !disposition.Allows() {
		if disposition == domain.DispositionNeedsLogin {
			return s.startMessage(userID)
		}
		// LoginRequired: the dispatcher already pushed re-auth guidance.
		return nil
	}

	session := s.store.GetOrCreate(userID)
	text, err := s.fetchAndFormat(ctx, command, session)
	if err != nil {
		logrus.Errorf("Data command %s failed for user %s: %v", command, userID, err)
		return textMessage("❌ Something went wrong talking to Spotify. Please try again later.")
	}
	return textMessage(text)
}

// fetchAndFormat executes one data command against the Spotify API and
// renders the reply.
func (s *BotService) fetchAndFormat(ctx context.Context, command domain.Command, session *domain.UserSession) (string, error) {
	token := session.AccessToken
	limit := session.ResultLimit

	switch command {
	case domain.CommandCurrent:
		np, err := s.spotify.CurrentlyPlaying(ctx, token)
		if err != nil {
			return "", err
		}
		return formatNowPlaying(np), nil

	case domain.CommandTop:
		tracks, err := s.spotify.TopTracks(ctx, token, limit)
		if err != nil {
			return "", err
		}
		return formatTopTracks(tracks, limit), nil

	case domain.CommandPlaylists:
		page, err := s.spotify.Playlists(ctx, token, limit)
		if err != nil {
			return "", err
		}
		return formatPlaylists(page, limit), nil

	case domain.CommandLiked:
		page, err := s.spotify.SavedTracks(ctx, token, limit)
		if err != nil {
			return "", err
		}
		return formatLikedSongs(page, limit), nil

	case domain.CommandRecent:
		items, err := s.spotify.RecentlyPlayed(ctx, token, limit)
		if err != nil {
			return "", err
		}
		return formatRecentActivity(items, limit, time.Now()), nil

	case domain.CommandStats:
		stats, err := s.collectStats(ctx, token)
		if err != nil {
			return "", err
		}
		return formatStats(stats), nil
	}

	return "", fmt.Errorf("unhandled data command %s", command)
}

// collectStats aggregates account statistics across several endpoints.
func (s *BotService) collectStats(ctx context.Context, token string) (*domain.ListeningStats, error) {
	profile, err := s.spotify.Profile(ctx, token)
	if err != nil {
		return nil, err
	}

	playlists, err := s.spotify.Playlists(ctx, token, 1)
	if err != nil {
		return nil, err
	}

	saved, err := s.spotify.SavedTracks(ctx, token, 1)
	if err != nil {
		return nil, err
	}

	following, err := s.spotify.FollowedArtistTotal(ctx, token)
	if err != nil {
		return nil, err
	}

	topArtists, err := s.spotify.TopArtists(ctx, token, 3)
	if err != nil {
		return nil, err
	}

	stats := &domain.ListeningStats{
		Profile:        *profile,
		PlaylistTotal:  playlists.Total,
		SavedTotal:     saved.Total,
		FollowingTotal: following,
		TopArtists:     topArtists,
	}

	recent, err := s.spotify.RecentlyPlayed(ctx, token, 1)
	if err == nil && len(recent) > 0 {
		stats.LastPlayed = &recent[0]
	}

	return stats, nil
}

// startMessage greets a linked user with the menu, or hands an unlinked
// user a fresh authorization link.
func (s *BotService) startMessage(userID string) *domain.LineOutgoingMessage {
	session := s.store.GetOrCreate(userID)
	if session.Authenticated() {
		return s.menuMessage(userID)
	}

	authURL := s.lifecycle.BeginLogin(userID)
	return textMessage("Welcome to Spotify Bot!\n\n" +
		"To get started, link your Spotify account:\n" +
		"1. Open the link below\n" +
		"2. Sign in and approve access\n" +
		"3. Come back here once the page confirms the link\n\n" +
		"🔑 " + authURL)
}

// menuMessage shows the quick-reply command keyboard.
func (s *BotService) menuMessage(userID string) *domain.LineOutgoingMessage {
	session := s.store.GetOrCreate(userID)
	return &domain.LineOutgoingMessage{
		Type: domain.LineMessageTypeText,
		Text: fmt.Sprintf("🎧 Main menu - pick an option\nCurrent display size: %d items",
			session.ResultLimit),
		QuickReplies: s.enabledButtons(),
	}
}

func (s *BotService) helpMessage(userID string) *domain.LineOutgoingMessage {
	session := s.store.GetOrCreate(userID)
	return textMessage(fmt.Sprintf(`🤖 Spotify Bot guide:

• Use the menu buttons to pick a function
• Current display size: %d items

Basic commands:
• /start - Link your Spotify account
• /menu - Show the main menu
• /logout - Unlink your Spotify account

Settings:
• /limit <n> - Set the display size (1-%d)
• /settings - Show current settings

Other:
• /contact - About this bot

Note: if something misbehaves, try /logout and /start again.`,
		session.ResultLimit, domain.MaxResultLimit))
}

func (s *BotService) settingsMessage(userID string) *domain.LineOutgoingMessage {
	session := s.store.GetOrCreate(userID)

	status := "Not linked"
	if session.Authenticated() {
		status = "Linked"
	}

	return textMessage(fmt.Sprintf(`⚙️ Current settings:

📊 Display size: %d
🔒 Spotify account: %s

Settings commands:
• /limit <n> - Set the display size
• /logout - Unlink
• /start - Link again`,
		session.ResultLimit, status))
}

// logout clears the credential; display size and contact survive.
func (s *BotService) logout(userID string) *domain.LineOutgoingMessage {
	session := s.store.GetOrCreate(userID)
	if !session.Authenticated() {
		return textMessage("❗ You are not linked yet. Use /start to link your Spotify account.")
	}

	s.store.ClearCredentials(userID)
	return textMessage("🚪 You have been logged out. Use /start to link again.")
}

// setLimit handles /limit, rejecting out-of-range values without state change.
func (s *BotService) setLimit(userID string, args []string) *domain.LineOutgoingMessage {
	if len(args) == 0 {
		session := s.store.GetOrCreate(userID)
		return textMessage(fmt.Sprintf("🔢 Current display size: %d\nTo change it: /limit <n> (1-%d)",
			session.ResultLimit, domain.MaxResultLimit))
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return textMessage("❌ Please provide a valid number.")
	}

	if err := s.store.SetResultLimit(userID, n); err != nil {
		if errors.Is(err, domain.ErrLimitOutOfRange) {
			return textMessage(fmt.Sprintf("❌ The display size must be between 1 and %d.", domain.MaxResultLimit))
		}
		return textMessage("❌ Could not update the display size. Please try again.")
	}

	return textMessage(fmt.Sprintf("✅ Display size updated to %d.", n))
}

// handleFollowEvent - Business logic for follow events
func (s *BotService) handleFollowEvent(event domain.LineWebhookEvent) error {
	logrus.Infof("User followed: userID=%s", event.Source.UserID)

	welcomeMsg := domain.LinePushMessageRequest{
		To: event.Source.UserID,
		Messages: []domain.LineOutgoingMessage{
			{
				Type: domain.LineMessageTypeText,
				Text: "Welcome! Thank you for adding me as a friend!\n\nUse /start to link your Spotify account.",
			},
		},
	}

	if _, err := s.lineClient.PushMessage(welcomeMsg); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	return nil
}

// enabled reports whether a command is in the capability set.
func (s *BotService) enabled(command domain.Command) bool {
	if len(s.capabilities) == 0 {
		return true
	}
	return s.capabilities[command]
}

// enabledButtons returns the menu keyboard filtered by capabilities.
func (s *BotService) enabledButtons() []string {
	buttons := make([]string, 0, len(domain.MenuButtonOrder))
	for _, label := range domain.MenuButtonOrder {
		if s.enabled(domain.ButtonLabels[label]) {
			buttons = append(buttons, label)
		}
	}
	return buttons
}

// reply sends one message back through the reply token.
func (s *BotService) reply(replyToken string, msg domain.LineOutgoingMessage) error {
	if replyToken == "" {
		return nil
	}

	req := domain.LineReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []domain.LineOutgoingMessage{msg},
	}
	if _, err := s.lineClient.ReplyMessage(req); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func textMessage(text string) *domain.LineOutgoingMessage {
	return &domain.LineOutgoingMessage{
		Type: domain.LineMessageTypeText,
		Text: text,
	}
}

const contactText = `🤖 About Spotify Bot

Check what you're listening to, your top tracks, playlists, liked songs
and listening stats, right from LINE.

Main features:
• Now playing with progress
• Top tracks and artists
• Playlist overview
• Listening statistics
• Configurable display size

If the bot helps you, share it with your friends!`
