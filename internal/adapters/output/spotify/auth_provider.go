package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/output"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Compile-time check to ensure AuthProviderAdapter implements AuthProvider interface
var _ output.AuthProvider = (*AuthProviderAdapter)(nil)

const (
	authorizeURL = "https://accounts.spotify.com/authorize"
	tokenURL     = "https://accounts.spotify.com/api/token"
)

// AuthProviderAdapter struct - Output adapter for the Spotify account
// service, wrapping the authorization-code and refresh-token grants.
type AuthProviderAdapter struct {
	config *oauth2.Config
}

// NewAuthProviderAdapter func - Creates new Spotify auth provider adapter
func NewAuthProviderAdapter(clientID, clientSecret, redirectURL, scopes string) (*AuthProviderAdapter, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("spotify oauth config missing required fields")
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       strings.Fields(scopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:  authorizeURL,
			TokenURL: tokenURL,
		},
	}

	return &AuthProviderAdapter{config: cfg}, nil
}

// AuthCodeURL builds the authorization URL the user opens to link their
// Spotify account. State carries the LINE user identity to the callback.
func (a *AuthProviderAdapter) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange swaps an authorization code for a token grant.
func (a *AuthProviderAdapter) Exchange(ctx context.Context, code string) (*domain.TokenGrant, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return a.toGrant(token, ""), nil
}

// Refresh mints a new access token from a refresh token. Any rejection
// or transport error surfaces as domain.ErrRefreshFailed; the lifecycle
// coordinator turns that into a re-authentication prompt.
func (a *AuthProviderAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshFailed
	}

	source := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		logrus.Errorf("Spotify token refresh failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	return a.toGrant(token, refreshToken), nil
}

// toGrant converts an oauth2 token to the domain grant. Spotify often
// omits the refresh token on refresh responses, so fall back to the one
// we already hold.
func (a *AuthProviderAdapter) toGrant(token *oauth2.Token, previousRefresh string) *domain.TokenGrant {
	refresh := token.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}

	ttl := time.Until(token.Expiry)
	if token.Expiry.IsZero() || ttl <= 0 {
		ttl = time.Hour // Spotify's documented access token lifetime
	}

	return &domain.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: refresh,
		TTL:          ttl,
	}
}
