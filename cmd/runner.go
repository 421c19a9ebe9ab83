package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/repositories"
	"github.com/desertthunder/jamming/internal/services"
	"github.com/desertthunder/jamming/internal/shared"
	"github.com/desertthunder/jamming/internal/tasks"
	"github.com/desertthunder/jamming/internal/ui"
	"github.com/urfave/cli/v3"
	"github.com/zmb3/spotify/v2"
)

// callbackTimeout bounds how long a command waits for the user to approve access.
const callbackTimeout = 2 * time.Minute

// musicService is the part of [services.SpotifyService] the commands use.
type musicService interface {
	services.Service
	CurrentUser(ctx context.Context) (*spotify.PrivateUser, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies not supplied through [RunnerOpts] are built on first use from
// the command's --config file.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	session services.Session
	auth    ui.Authenticator
	spotify musicService
	api     *services.APIService

	db      *sql.DB
	drafts  *repositories.DraftRepository
	history *repositories.HistoryRepository
	engine  *tasks.PlaylistEngine

	closers []func(context.Context) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Session    services.Session
	Auth       ui.Authenticator
	Spotify    musicService
	API        *services.APIService
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		session:    opts.Session,
		auth:       opts.Auth,
		spotify:    opts.Spotify,
		api:        opts.API,
	}
	if opts.DB != nil {
		r.useDB(opts.DB)
	}
	return r
}

// SetLogger replaces the runner's logger. Dependencies built afterwards use it.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, playlistCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases everything the runner built: the callback server, the session timer and the database.
func (r *Runner) Close(ctx context.Context) error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

// loadConfig reads the config file named by --config, applying .env and environment overrides.
//
// A missing file falls back to the embedded defaults.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	if err := shared.LoadEnv(cmd.String("env")); err != nil {
		r.logger.Warn("failed to load .env file", "error", err)
	}

	configPath := cmd.String("config")
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}

	config.ApplyEnv()
	r.config = config
	return config, nil
}

// connect builds the session, authorization flow and Spotify clients.
func (r *Runner) connect(cmd *cli.Command) error {
	if r.spotify != nil && r.auth != nil && r.api != nil {
		return nil
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if r.session == nil {
		if err := config.Validate(); err != nil {
			return err
		}

		stateDir, err := config.StateDir()
		if err != nil {
			return err
		}

		location := auth.NewCallbackLocation(nil)
		session := auth.NewSession(auth.SessionOpts{
			Config:     clientConfig(config),
			Store:      auth.NewFileVerifierStore(stateDir),
			Location:   location,
			Navigator:  auth.BrowserNavigator{},
			HTTPClient: r.httpClient,
			Logger:     shared.WithLogger(r.logger, "component", "auth"),
		})
		r.session = session
		r.closers = append(r.closers, func(context.Context) error {
			session.Close()
			return nil
		})

		if r.auth == nil {
			addr, err := config.CallbackAddr()
			if err != nil {
				return err
			}
			flow := newAuthFlow(session, location, addr, config.CallbackPath(), r.logger)
			r.auth = flow
			r.closers = append(r.closers, flow.Close)
		}
	}

	if r.auth == nil {
		r.auth = sessionAuthenticator{session: r.session}
	}
	if r.spotify == nil {
		r.spotify = services.NewSpotifyService(r.session, services.SpotifyOpts{
			BaseURL:    config.Spotify.APIURL,
			HTTPClient: r.httpClient,
			Logger:     shared.WithLogger(r.logger, "component", "spotify"),
		})
	}
	if r.api == nil {
		r.api = services.NewAPIService(r.session, config.Spotify.APIURL, r.httpClient)
	}
	return nil
}

// openStore opens (and migrates) the database named in the config.
func (r *Runner) openStore(cmd *cli.Command) error {
	if r.drafts != nil {
		return nil
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}

	r.closers = append(r.closers, func(context.Context) error { return db.Close() })
	r.useDB(db)
	return nil
}

func (r *Runner) useDB(db *sql.DB) {
	r.db = db
	r.drafts = repositories.NewDraftRepository(db)
	r.history = repositories.NewHistoryRepository(db)
}

// playlistEngine returns the save engine, wired to whatever stores are open.
func (r *Runner) playlistEngine() *tasks.PlaylistEngine {
	if r.engine == nil {
		var drafts tasks.DraftStore
		var history tasks.HistoryStore
		if r.drafts != nil {
			drafts, history = r.drafts, r.history
		}
		r.engine = tasks.NewPlaylistEngine(r.spotify, drafts, history, r.logger)
	}
	return r.engine
}

// authorize runs the authorization flow until a token is available.
//
// When the session redirects, the URL is printed in case the browser did not
// open, and the runner waits for the callback server to deliver the redirect.
func (r *Runner) authorize(ctx context.Context) error {
	outcome := r.auth.Begin(ctx)
	if outcome.Kind == auth.OutcomeRedirecting {
		r.writePlain("Opening Spotify in your browser. If it does not open, visit:\n\n  %s\n\n", outcome.AuthURL)
		r.writePlain("Waiting for authorization...\n")
		outcome = r.auth.Complete(ctx)
	}

	switch outcome.Kind {
	case auth.OutcomeAuthenticated:
		return nil
	case auth.OutcomeRedirecting:
		return fmt.Errorf("%w: authorization did not complete", shared.ErrNotAuthenticated)
	default:
		if outcome.Err != nil {
			return outcome.Err
		}
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, outcome.Kind)
	}
}

// clientConfig converts the loaded configuration into the auth client registration.
func clientConfig(c *shared.Config) auth.ClientConfig {
	return auth.ClientConfig{
		ClientID:    c.Credentials.Spotify.ClientID,
		RedirectURI: c.Credentials.Spotify.RedirectURI,
		Scope:       c.Credentials.Spotify.Scope,
		AuthURL:     c.Spotify.AuthURL,
		TokenURL:    c.Spotify.TokenURL,
	}
}

// sessionAuthenticator adapts a bare session that has no callback server; it can only report outcomes.
type sessionAuthenticator struct {
	session services.Session
}

func (a sessionAuthenticator) Begin(ctx context.Context) auth.Outcome {
	_, o := a.session.GetAccessToken(ctx)
	return o
}

func (a sessionAuthenticator) Complete(ctx context.Context) auth.Outcome {
	return a.Begin(ctx)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
