package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/jamming/internal/shared"
)

// Save steps, in the order they run.
const (
	StepAuthorize      = "authorize"
	StepCurrentUser    = "current-user"
	StepCreatePlaylist = "create-playlist"
	StepAddTracks      = "add-tracks"
)

// APIError is a non-2xx response from the Spotify Web API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("spotify API error: status %d", e.Status)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// Is matches [shared.ErrTokenRejected] for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == shared.ErrTokenRejected && e.Status == http.StatusUnauthorized
}

// SaveError reports which step of a playlist save failed.
//
// PlaylistID is set when the playlist was created before the failure; it is
// not deleted.
type SaveError struct {
	Step       string
	PlaylistID string
	Err        error
}

func (e *SaveError) Error() string {
	if e.Partial() {
		return fmt.Sprintf("%v at %s: playlist %s was created but is incomplete: %v", shared.ErrSaveFailed, e.Step, e.PlaylistID, e.Err)
	}
	return fmt.Sprintf("%v at %s: %v", shared.ErrSaveFailed, e.Step, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == shared.ErrSaveFailed }

// Partial reports whether a playlist exists on the account despite the failure.
func (e *SaveError) Partial() bool { return e.PlaylistID != "" }

// AsSaveError unwraps err into a [SaveError] when possible.
func AsSaveError(err error) (*SaveError, bool) {
	var se *SaveError
	ok := errors.As(err, &se)
	return se, ok
}
