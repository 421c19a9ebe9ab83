// Package services defines the [Service] interface used by the CLI, TUI and tasks, and implements it for the Spotify Web API.
//
// # Authentication
//
// [SpotifyService] does not own credentials. Every request asks its
// [Session] for an access token; when none is available the request fails
// with [shared.ErrNotAuthenticated] before any network call, and the
// session will already have started an authorization if it could.
//
// A 401 from the API invalidates the session so the next call re-enters the
// authorization flow.
//
// # Saving Playlists
//
// [SpotifyService.SavePlaylist] runs three dependent requests: fetch the
// current user, create the playlist, add the tracks in batches of 100.
// Failures are reported as [SaveError] tagged with the failed step. A
// playlist created before a later step failed is left in place; callers
// can tell from [SaveError.Partial].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no access token could be obtained
//   - [shared.ErrTokenRejected] : the API answered 401
//   - [shared.ErrAPIRequest] : any other non-2xx response, see [APIError]
//   - [shared.ErrSaveFailed] : a save step failed, see [SaveError]
//
// # Raw Requests
//
// [APIService] issues authenticated GET and POST requests against arbitrary
// API paths and returns the raw response, for debugging from the CLI.
package services
