// Package services defines the [Service] interface for music streaming providers and implements it for Spotify.
//
// # Service Interface
//
// The export pipeline depends only on the [Service] abstraction: current-user
// lookup, paginated saved-track retrieval (with a "fetch next page given the
// previous response" operation) and batched audio-feature retrieval.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Client] refreshes expired tokens using the refresh token;
// refreshed tokens are surfaced through [SpotifyService.SetTokenRefreshCallback]
// so the CLI can persist them back into config.toml.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers.
// [SpotifyService] implements this for the server-side OAuth flow used by the CLI.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrMissingCredentials] : required credentials absent
//
// Retry and rate-limit backoff are deliberately not implemented here; the
// export pipeline throttles between requests and treats fetch failures
// according to its own failure policy.
package services
