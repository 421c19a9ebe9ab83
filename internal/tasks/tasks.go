package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/services"
	"github.com/desertthunder/jamming/internal/shared"
)

// DraftStore persists drafts. Satisfied by repositories.DraftRepository.
type DraftStore interface {
	Update(draft *models.Draft) error
}

// HistoryStore records save attempts. Satisfied by repositories.HistoryRepository.
type HistoryStore interface {
	Create(record *models.SavedPlaylist) error
}

// SaveResult describes one save attempt.
type SaveResult struct {
	PlaylistID string                // Provider playlist id; set on partial failure too
	Name       string                // Name the playlist was saved under
	TrackCount int                   // Number of tracks in the draft
	Record     *models.SavedPlaylist // History entry, nil when history is disabled
}

// PlaylistEngine runs playlist operations against a provider and the local stores.
type PlaylistEngine struct {
	svc     services.Service
	drafts  DraftStore
	history HistoryStore
	logger  *log.Logger
}

// NewPlaylistEngine creates a PlaylistEngine. drafts and history may be nil,
// in which case the draft is not persisted and no history is recorded.
func NewPlaylistEngine(svc services.Service, drafts DraftStore, history HistoryStore, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &PlaylistEngine{svc: svc, drafts: drafts, history: history, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Save writes the draft to the provider as a new playlist.
//
// The attempt is recorded in history whether it succeeds or fails after
// reaching the provider. On success the draft is reset to an empty
// "New Playlist" and persisted. On failure the draft is left untouched so
// the user can retry.
func (e *PlaylistEngine) Save(ctx context.Context, progress chan<- ProgressUpdate, draft *models.Draft) (*SaveResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, validateUpdate(draft))
	if err := draft.ReadyToSave(); err != nil {
		return nil, err
	}

	result := &SaveResult{Name: draft.Name(), TrackCount: draft.Len()}

	e.sendProgress(progress, savingUpdate(draft))
	playlistID, err := e.svc.SavePlaylist(ctx, draft.Name(), draft.URIs())
	result.PlaylistID = playlistID

	failedStep := ""
	if err != nil {
		failedStep = services.StepAuthorize
		if saveErr, ok := services.AsSaveError(err); ok {
			failedStep = saveErr.Step
			if saveErr.PlaylistID != "" {
				result.PlaylistID = saveErr.PlaylistID
			}
		}
		e.logger.Error("save failed", "name", draft.Name(), "step", failedStep, "error", err)
	} else {
		e.sendProgress(progress, savedUpdate(draft.Name(), playlistID))
		e.logger.Info("playlist saved", "name", draft.Name(), "id", playlistID, "tracks", draft.Len())
	}

	if recErr := e.record(progress, result, failedStep); recErr != nil {
		e.logger.Warn("failed to record save history", "error", recErr)
	}

	if err != nil {
		return result, err
	}

	draft.Reset()
	if e.drafts != nil && draft.ID() != "" {
		if err := e.drafts.Update(draft); err != nil {
			return result, fmt.Errorf("playlist saved but failed to reset draft: %w", err)
		}
	}
	e.sendProgress(progress, resetUpdate())
	return result, nil
}

func (e *PlaylistEngine) record(progress chan<- ProgressUpdate, result *SaveResult, failedStep string) error {
	if e.history == nil {
		return nil
	}
	record := models.NewSavedPlaylist(result.PlaylistID, result.Name, result.TrackCount, failedStep)
	if err := e.history.Create(record); err != nil {
		return err
	}
	result.Record = record
	e.sendProgress(progress, recordUpdate(record))
	return nil
}

// IsPartial reports whether err describes a save that created a playlist
// but failed to fill it.
func IsPartial(err error) bool {
	var saveErr *services.SaveError
	return errors.As(err, &saveErr) && saveErr.Partial()
}
