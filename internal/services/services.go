// package services defines interface Service for interacting with HTTP APIs
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the capability the export pipeline needs from a music
// streaming provider: identity lookup, paginated saved-track retrieval and
// batched audio-feature retrieval.
type Service interface {
	// Authenticate performs OAuth or token-based authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)

	// SavedTracks retrieves one page of the user's saved ("liked") tracks.
	SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error)

	// SavedTracksNext fetches the page referenced by a previous response's
	// next cursor. Returns an error if the previous page has no next cursor.
	SavedTracksNext(ctx context.Context, prev *SpotifyPaginatedTracks) (*SpotifyPaginatedTracks, error)

	// AudioFeatures retrieves audio-analysis attributes for up to 100 track IDs.
	// The returned slice may contain nil entries for tracks the service does
	// not recognize, and its order is not guaranteed to match the input.
	AudioFeatures(ctx context.Context, trackIDs []string) ([]*SpotifyAudioFeatures, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers authenticated via a server-side
// OAuth2 authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for callback handling.
	GetOAuthConfig() *oauth2.Config
}
