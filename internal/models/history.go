package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/jamming/internal/shared"
)

// SavedPlaylist records one attempt to save a draft to the provider.
//
// PlaylistID is set once the remote playlist was created. FailedStep names
// the step that failed, or is empty when the save completed.
type SavedPlaylist struct {
	id         string
	playlistID string
	name       string
	trackCount int
	failedStep string
	createdAt  time.Time
}

func NewSavedPlaylist(playlistID, name string, trackCount int, failedStep string) *SavedPlaylist {
	return &SavedPlaylist{
		playlistID: playlistID,
		name:       name,
		trackCount: trackCount,
		failedStep: failedStep,
		createdAt:  time.Now(),
	}
}

// RestoreSavedPlaylist rebuilds a history record loaded from storage.
func RestoreSavedPlaylist(id, playlistID, name string, trackCount int, failedStep string, createdAt time.Time) *SavedPlaylist {
	return &SavedPlaylist{
		id:         id,
		playlistID: playlistID,
		name:       name,
		trackCount: trackCount,
		failedStep: failedStep,
		createdAt:  createdAt,
	}
}

func (s *SavedPlaylist) ID() string           { return s.id }
func (s *SavedPlaylist) PlaylistID() string   { return s.playlistID }
func (s *SavedPlaylist) Name() string         { return s.name }
func (s *SavedPlaylist) TrackCount() int      { return s.trackCount }
func (s *SavedPlaylist) FailedStep() string   { return s.failedStep }
func (s *SavedPlaylist) CreatedAt() time.Time { return s.createdAt }
func (s *SavedPlaylist) UpdatedAt() time.Time { return s.createdAt }

func (s *SavedPlaylist) SetID(id string) { s.id = id }

// Succeeded reports whether every step of the save completed.
func (s *SavedPlaylist) Succeeded() bool {
	return s.failedStep == "" && s.playlistID != ""
}

// Partial reports whether the remote playlist exists even though a later step failed.
func (s *SavedPlaylist) Partial() bool {
	return s.failedStep != "" && s.playlistID != ""
}

func (s *SavedPlaylist) Validate() error {
	if strings.TrimSpace(s.name) == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if s.trackCount < 0 {
		return fmt.Errorf("%w: track count cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}

// Status summarizes the outcome for listings.
func (s *SavedPlaylist) Status() string {
	switch {
	case s.Succeeded():
		return "saved"
	case s.Partial():
		return "partial (" + s.failedStep + ")"
	default:
		return "failed (" + s.failedStep + ")"
	}
}
