package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jamming/internal/shared"
	"github.com/desertthunder/jamming/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive search and playlist builder.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.connect(cmd); err != nil {
		return err
	}
	if err := r.openStore(cmd); err != nil {
		return err
	}

	draft, err := r.drafts.EnsureActive()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Opts{
		Service: r.spotify,
		Engine:  r.playlistEngine(),
		Drafts:  r.drafts,
		Draft:   draft,
		Auth:    r.auth,
		Logger:  shared.WithLogger(fileLogger, "component", "ui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
