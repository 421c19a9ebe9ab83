package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/jamming/internal/auth"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the PKCE authorization flow and prints the authorized user.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd); err != nil {
		return err
	}

	if err := r.authorize(ctx); err != nil {
		return err
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch current user: %w", err)
	}

	r.logger.Info("authorization successful", "user", user.ID)

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	return r.writePlain("✓ Logged in as %s (%s)\n", name, user.ID)
}

// AuthStatus prints the client registration and the local authorization state.
//
// Access tokens live only in memory, so a fresh process always reports no cached token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.writePlainHeader("Spotify authorization")

	clientID := config.Credentials.Spotify.ClientID
	if clientID == "" {
		clientID = "(not set)"
	}
	r.writePlain("Client ID:    %s\n", clientID)
	r.writePlain("Redirect URI: %s\n", config.Credentials.Spotify.RedirectURI)
	r.writePlain("Scope:        %s\n", config.Credentials.Spotify.Scope)

	if err := config.Validate(); err != nil {
		r.writePlain("Config:       ✗ %v\n", err)
		return nil
	}
	r.writePlain("Config:       ✓ valid\n")

	if dir, err := config.StateDir(); err == nil {
		verifier, loadErr := auth.NewFileVerifierStore(dir).Load()
		switch {
		case loadErr != nil:
			r.writePlain("Pending:      ✗ %v\n", loadErr)
		case verifier != "":
			r.writePlain("Pending:      authorization in progress (verifier stored)\n")
		default:
			r.writePlain("Pending:      none\n")
		}
	}

	if s, ok := r.session.(interface{ Authenticated() bool }); ok && s.Authenticated() {
		r.writePlain("Token:        ✓ cached\n")
	} else {
		r.writePlain("Token:        ✗ none (run 'jam auth login')\n")
	}
	return nil
}
