package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries the catalog and prints the matching tracks.
//
// With --add, the tracks at the given positions are added to the active playlist.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	term := strings.TrimSpace(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd); err != nil {
		return err
	}
	if err := r.authorize(ctx); err != nil {
		return err
	}

	r.logger.Debug("searching", "term", term)
	tracks := r.spotify.Search(ctx, term)

	if add := cmd.String("add"); add != "" {
		return r.addResults(cmd, tracks, add)
	}

	if cmd.Bool("json") {
		if tracks == nil {
			tracks = []models.Track{}
		}
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks found for %q\n", term)
	}

	r.writePlain("Found %d tracks for %q:\n\n", len(tracks), term)
	writeTracks(r, tracks)
	r.writePlainln("Add with: jam search %q --add 1,2", term)
	return nil
}

func (r *Runner) addResults(cmd *cli.Command, tracks []models.Track, positions string) error {
	indexes, err := shared.ParseIndexes(positions, len(tracks))
	if err != nil {
		return err
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}

	draft, err := r.drafts.EnsureActive()
	if err != nil {
		return err
	}

	picked := make([]models.Track, 0, len(indexes))
	for _, i := range indexes {
		picked = append(picked, tracks[i])
	}

	added := draft.AddAll(picked)
	if added > 0 {
		if err := r.drafts.Update(draft); err != nil {
			return err
		}
	}

	r.logger.Info("tracks added", "draft", draft.ID(), "added", added, "skipped", len(picked)-added)
	return r.writePlain("✓ Added %d track(s) to %q (%d already present)\n", added, draft.Name(), len(picked)-added)
}

func writeTracks(r *Runner, tracks []models.Track) {
	for i, t := range tracks {
		r.writePlain("%3d. %s\n", i+1, t)
	}
}
