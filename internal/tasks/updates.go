package tasks

import (
	"fmt"

	"github.com/desertthunder/jamming/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Validate Phase = iota
	SavePlaylist
	RecordHistory
	ResetDraft
	ExportDraft
)

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case SavePlaylist:
		return "save_playlist"
	case RecordHistory:
		return "record_history"
	case ResetDraft:
		return "reset_draft"
	case ExportDraft:
		return "export_draft"
	default:
		return ""
	}
}

func validateUpdate(d *models.Draft) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking playlist %q (%d tracks)...", d.Name(), d.Len()),
	}
}

func savingUpdate(d *models.Draft) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePlaylist,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Saving %q to Spotify...", d.Name()),
	}
}

func savedUpdate(name, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePlaylist,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Playlist saved: %s (ID: %s)", name, playlistID),
		Data:    playlistID,
	}
}

func recordUpdate(record *models.SavedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordHistory,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recorded save attempt: %s", record.Status()),
		Data:    record,
	}
}

func resetUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResetDraft,
		Step:    1,
		Total:   1,
		Message: "Draft cleared",
	}
}

func exportingDraftUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDraft,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDraft,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, path),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDraft,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
