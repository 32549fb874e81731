package http

import (
	"fmt"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/input"
	"spotify-line-bot/internal/ports/output"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthCallbackHandler struct - Primary/Driving adapter for the Spotify
// OAuth redirect. Completes the login through the lifecycle coordinator
// and confirms in chat, so the user never has to paste a token.
type AuthCallbackHandler struct {
	lifecycle  input.SessionLifecycle
	lineClient output.LineClient
}

// NewAuthCallbackHandler func - Creates new auth callback handler
func NewAuthCallbackHandler(lifecycle input.SessionLifecycle, lineClient output.LineClient) *AuthCallbackHandler {
	return &AuthCallbackHandler{
		lifecycle:  lifecycle,
		lineClient: lineClient,
	}
}

// HandleCallback func - Handles the Spotify authorization redirect
func (h *AuthCallbackHandler) HandleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")

	if errParam := c.Query("error"); errParam != "" {
		logrus.Warnf("Spotify authorization denied: %s", errParam)
		return h.renderPage(c, fiber.StatusBadRequest, "Authorization was denied",
			"You can close this page and try /start again in LINE.")
	}

	if state == "" || code == "" {
		return h.renderPage(c, fiber.StatusBadRequest, "Invalid callback",
			"Missing code or state. Please try /start again in LINE.")
	}

	session, err := h.lifecycle.CompleteLogin(c.Context(), state, code)
	if err != nil {
		logrus.Errorf("Failed to complete login: %v", err)
		return h.renderPage(c, fiber.StatusBadRequest, "Link failed",
			"The login could not be completed. Please try /start again in LINE.")
	}

	h.pushLinkedConfirmation(session)

	return h.renderPage(c, fiber.StatusOK, "Spotify account linked",
		"You can close this page and go back to LINE.")
}

// pushLinkedConfirmation tells the user in chat the link succeeded.
// Best-effort: the session is live either way.
func (h *AuthCallbackHandler) pushLinkedConfirmation(session *domain.UserSession) {
	name := session.DisplayName
	if name == "" {
		name = "friend"
	}

	req := domain.LinePushMessageRequest{
		To: session.UserID,
		Messages: []domain.LineOutgoingMessage{
			{
				Type: domain.LineMessageTypeText,
				Text: fmt.Sprintf("✅ Spotify account linked, %s!\n\nUse /menu to see what I can do.", name),
			},
		},
	}

	if _, err := h.lineClient.PushMessage(req); err != nil {
		logrus.Errorf("Failed to push link confirmation to user %s: %v", session.UserID, err)
	}
}

// renderPage answers the browser side of the OAuth flow with a minimal
// HTML page.
func (h *AuthCallbackHandler) renderPage(c *fiber.Ctx, status int, title, detail string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 15%%">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, title, detail)
	return c.Status(status).SendString(page)
}
