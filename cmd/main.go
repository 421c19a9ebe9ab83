package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/desertthunder/jamming/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "jam",
		Usage:    "Search Spotify, build a playlist and save it to your account",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if closeErr := runner.Close(ctx); closeErr != nil {
		logger.Warn("failed to release resources", "error", closeErr)
	}
	cancel()

	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
