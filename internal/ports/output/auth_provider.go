package output

import (
	"context"

	"spotify-line-bot/internal/domain"
)

// AuthProvider interface - Output port
// Defines what the application needs from the Spotify account service:
// the authorization-code flow that first links an account, and the
// refresh grant that extends an expired session.
type AuthProvider interface {
	// AuthCodeURL builds the authorization URL the user opens to link
	// their Spotify account. The state parameter is round-tripped to the
	// callback and carries the LINE user identity.
	AuthCodeURL(state string) string

	// Exchange swaps an authorization code for a token grant.
	Exchange(ctx context.Context, code string) (*domain.TokenGrant, error)

	// Refresh mints a new access token from a refresh token. Spotify may
	// omit the refresh token in the response, in which case the returned
	// grant carries the one passed in.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
}
