package domain

import "strings"

// Command identifies one bot command. Commands arrive either as slash
// text ("/top") or as the label of a quick-reply button.
type Command string

const (
	CommandStart     Command = "start"
	CommandMenu      Command = "menu"
	CommandHelp      Command = "help"
	CommandSettings  Command = "settings"
	CommandContact   Command = "contact"
	CommandLogout    Command = "logout"
	CommandLimit     Command = "limit"
	CommandCurrent   Command = "current"
	CommandTop       Command = "top"
	CommandPlaylists Command = "playlists"
	CommandLiked     Command = "liked"
	CommandRecent    Command = "recent"
	CommandStats     Command = "stats"
)

// DataCommands are the commands that hit the Spotify data API and must
// pass the session lifecycle gate first.
var DataCommands = map[Command]bool{
	CommandCurrent:   true,
	CommandTop:       true,
	CommandPlaylists: true,
	CommandLiked:     true,
	CommandRecent:    true,
	CommandStats:     true,
}

// ButtonLabels maps each menu button to its command. The labels double
// as the quick-reply keyboard shown by /menu.
var ButtonLabels = map[string]Command{
	"🎵 Now playing":     CommandCurrent,
	"🏆 Top tracks":      CommandTop,
	"📋 Playlists":       CommandPlaylists,
	"❤️ Liked songs":     CommandLiked,
	"📊 Stats":           CommandStats,
	"🔄 Recent activity": CommandRecent,
	"ℹ️ Help":            CommandHelp,
	"⚙️ Settings":        CommandSettings,
}

// MenuButtonOrder fixes the keyboard layout; map iteration order is not
// stable enough for a UI.
var MenuButtonOrder = []string{
	"🎵 Now playing",
	"🏆 Top tracks",
	"📋 Playlists",
	"❤️ Liked songs",
	"📊 Stats",
	"🔄 Recent activity",
	"ℹ️ Help",
	"⚙️ Settings",
}

// ParseCommand resolves inbound message text to a command and its
// arguments. Returns ok=false for free text that matches neither a
// slash command nor a button label.
func ParseCommand(text string) (Command, []string, bool) {
	text = strings.TrimSpace(text)

	if cmd, found := ButtonLabels[text]; found {
		return cmd, nil, true
	}

	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}

	parts := strings.Fields(text)
	cmd := Command(strings.ToLower(strings.TrimPrefix(parts[0], "/")))

	switch cmd {
	case CommandStart, CommandMenu, CommandHelp, CommandSettings,
		CommandContact, CommandLogout, CommandLimit, CommandCurrent,
		CommandTop, CommandPlaylists, CommandLiked, CommandRecent,
		CommandStats:
		return cmd, parts[1:], true
	}

	return "", nil, false
}
