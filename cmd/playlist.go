package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/jamming/internal/formatter"
	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/shared"
	"github.com/desertthunder/jamming/internal/tasks"
	"github.com/urfave/cli/v3"
)

// activeDraft opens the store and returns the active draft, creating one if none exists.
func (r *Runner) activeDraft(cmd *cli.Command) (*models.Draft, error) {
	if err := r.openStore(cmd); err != nil {
		return nil, err
	}
	return r.drafts.EnsureActive()
}

// PlaylistShow prints the active playlist.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	draft, err := r.activeDraft(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.NewDraftExport(draft), true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d tracks)", draft.Name(), draft.Len()))
	if draft.Len() == 0 {
		return r.writePlain("No tracks yet. Add some with 'jam search <term> --add 1'\n")
	}
	writeTracks(r, draft.Tracks())
	return nil
}

// PlaylistNew creates an empty draft and makes it active.
func (r *Runner) PlaylistNew(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}

	draft := models.NewDraft(cmd.StringArg("name"))
	if err := r.drafts.Create(draft); err != nil {
		return err
	}
	if err := r.drafts.Activate(draft.ID()); err != nil {
		return err
	}

	r.logger.Info("draft created", "id", draft.ID(), "name", draft.Name())
	return r.writePlain("✓ Created %q (%s)\n", draft.Name(), draft.ID())
}

// PlaylistList prints the stored drafts, marking the active one.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}

	drafts, err := r.drafts.List(map[string]any{"limit": int(cmd.Int("limit"))})
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		return r.writePlain("No drafts yet. Start one with 'jam playlist new <name>'\n")
	}

	activeID := ""
	if active, err := r.drafts.Active(); err == nil {
		activeID = active.ID()
	} else if !errors.Is(err, shared.ErrDraftNotFound) {
		return err
	}

	for _, d := range drafts {
		marker := " "
		if d.ID() == activeID {
			marker = "*"
		}
		r.writePlain("%s %s  %-30s %3d tracks  updated %s\n",
			marker, d.ID(), d.Name(), d.Len(), d.UpdatedAt().Local().Format(time.DateTime))
	}
	return nil
}

// PlaylistUse makes the draft with the given ID active.
func (r *Runner) PlaylistUse(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: draft id", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	if err := r.drafts.Activate(id); err != nil {
		return err
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Now editing %q (%d tracks)\n", draft.Name(), draft.Len())
}

// PlaylistRename renames the active playlist.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	draft, err := r.activeDraft(cmd)
	if err != nil {
		return err
	}

	draft.Rename(name)
	if err := r.drafts.Update(draft); err != nil {
		return err
	}
	return r.writePlain("✓ Renamed to %q\n", draft.Name())
}

// PlaylistRemove removes a track from the active playlist by track ID.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.StringArg("track-id")
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	draft, err := r.activeDraft(cmd)
	if err != nil {
		return err
	}

	if !draft.Remove(trackID) {
		return fmt.Errorf("%w: track %s is not in %q", shared.ErrInvalidArgument, trackID, draft.Name())
	}
	if err := r.drafts.Update(draft); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s (%d tracks left)\n", trackID, draft.Len())
}

// PlaylistClear resets the active playlist to an empty "New Playlist".
func (r *Runner) PlaylistClear(ctx context.Context, cmd *cli.Command) error {
	draft, err := r.activeDraft(cmd)
	if err != nil {
		return err
	}

	draft.Reset()
	if err := r.drafts.Update(draft); err != nil {
		return err
	}
	return r.writePlain("✓ Cleared\n")
}

// PlaylistSave saves the active playlist to the user's account.
//
// The draft is reset only when every step succeeds.
func (r *Runner) PlaylistSave(ctx context.Context, cmd *cli.Command) error {
	draft, err := r.activeDraft(cmd)
	if err != nil {
		return err
	}
	if err := draft.ReadyToSave(); err != nil {
		return err
	}

	if err := r.connect(cmd); err != nil {
		return err
	}
	if err := r.authorize(ctx); err != nil {
		return err
	}

	name := draft.Name()
	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("  %s\n", update.Message)
		}
	}()

	result, err := r.playlistEngine().Save(ctx, progress, draft)
	close(progress)
	<-done

	if err != nil {
		if tasks.IsPartial(err) {
			return fmt.Errorf("playlist %q was created (%s) but not all tracks were added; the draft was kept: %w",
				name, result.PlaylistID, err)
		}
		return err
	}

	return r.writePlain("✓ Saved %q with %d tracks (%s)\n", result.Name, result.TrackCount, result.PlaylistID)
}

// PlaylistExport writes the active playlist, or every draft with --all, to disk.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")

	if cmd.Bool("all") {
		return r.exportAll(ctx, cmd, format, output)
	}

	draft, err := r.activeDraft(cmd)
	if err != nil {
		return err
	}

	if output == "-" {
		return formatter.Write(r.output, draft, format)
	}

	path, err := formatter.WriteExport(draft, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("draft exported", "path", path, "format", format)
	return r.writePlain("✓ Exported %q to %s\n", draft.Name(), path)
}

func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, format formatter.Format, output string) error {
	if output == "-" {
		return fmt.Errorf("%w: --all needs an output directory", shared.ErrInvalidArgument)
	}
	if err := r.openStore(cmd); err != nil {
		return err
	}

	drafts, err := r.drafts.List(nil)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		return r.writePlain("No drafts to export\n")
	}

	progress := make(chan tasks.ProgressUpdate, len(drafts)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := r.playlistEngine().ExportDrafts(ctx, progress, drafts, tasks.BulkExportOpts{
		Format:    format,
		OutputDir: output,
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("Exported %d/%d drafts to %s", result.SuccessfulExports, result.TotalDrafts, result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d draft(s) failed to export", result.FailedExports)
	}
	return nil
}

type historyEntry struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id,omitempty"`
	Name       string    `json:"name"`
	TrackCount int       `json:"track_count"`
	FailedStep string    `json:"failed_step,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaylistHistory lists previous save attempts, newest first.
func (r *Runner) PlaylistHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}

	records, err := r.history.List(map[string]any{
		"limit":   int(cmd.Int("limit")),
		"partial": cmd.Bool("partial"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, historyEntry{
				ID:         rec.ID(),
				PlaylistID: rec.PlaylistID(),
				Name:       rec.Name(),
				TrackCount: rec.TrackCount(),
				FailedStep: rec.FailedStep(),
				Status:     rec.Status(),
				CreatedAt:  rec.CreatedAt(),
			})
		}
		return r.writeJSON(entries, true)
	}

	if len(records) == 0 {
		return r.writePlain("No saves recorded\n")
	}

	for _, rec := range records {
		playlistID := rec.PlaylistID()
		if playlistID == "" {
			playlistID = "-"
		}
		r.writePlain("%s  %-24s %-30s %3d tracks  %s\n",
			rec.CreatedAt().Local().Format(time.DateTime), rec.Status(), rec.Name(), rec.TrackCount(), playlistID)
	}
	return nil
}
