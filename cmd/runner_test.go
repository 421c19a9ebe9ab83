package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/services"
	"github.com/desertthunder/jamming/internal/shared"
	tu "github.com/desertthunder/jamming/internal/testing"
	"github.com/urfave/cli/v3"
)

// stubAuth returns queued outcomes from Begin and Complete; an empty queue
// reports authenticated.
type stubAuth struct {
	mu        sync.Mutex
	begin     []auth.Outcome
	complete  []auth.Outcome
	completes int
}

func (s *stubAuth) Begin(context.Context) auth.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.begin) == 0 {
		return auth.Outcome{Kind: auth.OutcomeAuthenticated}
	}
	o := s.begin[0]
	s.begin = s.begin[1:]
	return o
}

func (s *stubAuth) Complete(context.Context) auth.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completes++
	if len(s.complete) == 0 {
		return auth.Outcome{Kind: auth.OutcomeAuthenticated}
	}
	o := s.complete[0]
	s.complete = s.complete[1:]
	return o
}

const searchBody = `{"tracks": {"items": [
	{"id": "t1", "name": "Tiny Dancer", "uri": "spotify:track:t1", "artists": [{"name": "Elton John"}], "album": {"name": "Madman Across the Water"}},
	{"id": "t2", "name": "Rocket Man", "uri": "spotify:track:t2", "artists": [{"name": "Elton John"}], "album": {"name": "Honky Chateau"}},
	{"id": "t3", "name": "Levon", "uri": "spotify:track:t3", "artists": [], "album": {"name": ""}}
]}}`

// fakeSpotify serves the handful of Web API endpoints the commands touch.
type fakeSpotify struct {
	*httptest.Server

	mu          sync.Mutex
	addStatus   int
	added       [][]byte
	createCalls int
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()

	f := &fakeSpotify{addStatus: http.StatusCreated}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "u1", "display_name": "Jam Fan"}`))
	})
	mux.HandleFunc("POST /users/u1/playlists", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.createCalls++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "pl1", "name": "Road Trip"}`))
	})
	mux.HandleFunc("POST /playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.added = append(f.added, body)
		status := f.addStatus
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 300 {
			w.Write([]byte(`{"error": {"status": 500, "message": "boom"}}`))
			return
		}
		w.Write([]byte(`{"snapshot_id": "snap"}`))
	})
	mux.HandleFunc("GET /text", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain body"))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

type testEnv struct {
	runner  *Runner
	out     *bytes.Buffer
	api     *fakeSpotify
	auth    *stubAuth
	session *tu.StaticSession
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	api := newFakeSpotify(t)
	session := tu.NewStaticSession("tok")
	stub := &stubAuth{}
	out := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config:  shared.DefaultConfig(),
		Logger:  shared.NopLogger(),
		Output:  out,
		Session: session,
		Auth:    stub,
		Spotify: services.NewSpotifyService(session, services.SpotifyOpts{BaseURL: api.URL, HTTPClient: api.Client()}),
		API:     services.NewAPIService(session, api.URL, api.Client()),
		DB:      db,
	})

	return &testEnv{runner: runner, out: out, api: api, auth: stub, session: session}
}

func (e *testEnv) run(args ...string) error {
	e.out.Reset()
	app := &cli.Command{
		Name:      "jam",
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Commands:  e.runner.register(),
	}
	return app.Run(context.Background(), append([]string{"jam"}, args...))
}

func (e *testEnv) active(t *testing.T) *models.Draft {
	t.Helper()
	d, err := e.runner.drafts.EnsureActive()
	if err != nil {
		t.Fatalf("failed to load active draft: %v", err)
	}
	return d
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NopLogger()
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			session := tu.NewStaticSession("tok")
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Session:    session,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.session != session {
				t.Error("expected session to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.drafts != nil {
				t.Error("expected stores to be opened lazily")
			}
		})

		t.Run("with database wires repositories", func(t *testing.T) {
			db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()

			runner := NewRunner(RunnerOpts{DB: db})
			if runner.drafts == nil || runner.history == nil {
				t.Fatal("expected repositories to be created")
			}
		})
	})

	t.Run("Close runs closers in reverse and reports the first error", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NopLogger()})

		var order []int
		runner.closers = append(runner.closers,
			func(context.Context) error { order = append(order, 1); return errors.New("first") },
			func(context.Context) error { order = append(order, 2); return errors.New("second") },
		)

		err := runner.Close(context.Background())
		if err == nil || err.Error() != "second" {
			t.Errorf("expected error from the last registered closer, got %v", err)
		}
		if len(order) != 2 || order[0] != 2 || order[1] != 1 {
			t.Errorf("expected reverse order, got %v", order)
		}
		if err := runner.Close(context.Background()); err != nil {
			t.Errorf("expected second Close to be a no-op, got %v", err)
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty", func(t *testing.T) {
			out := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: out})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), "\n  \"key\": \"value\"\n") {
				t.Errorf("expected indented output, got %q", out.String())
			}
		})

		t.Run("compact", func(t *testing.T) {
			out := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: out})

			if err := runner.writeJSON([]int{1, 2}, false); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.String() != "[1,2]\n" {
				t.Errorf("got %q", out.String())
			}
		})

		t.Run("unmarshalable value", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON("x", false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("newline write failure", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})
			if err := runner.writeJSON("x", false); err == nil || !strings.Contains(err.Error(), "newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		out := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: out})

		runner.writePlain("%d tracks", 3)
		runner.writePlainln("done")
		if out.String() != "3 tracks\ndone\n" {
			t.Errorf("got %q", out.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("x"); err == nil {
			t.Error("expected write error")
		}
		if err := failing.writePlainln("x"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("clientConfig", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = "client-123"
		config.Spotify.TokenURL = "http://127.0.0.1:9/token"

		cc := clientConfig(config)
		if cc.ClientID != "client-123" {
			t.Errorf("ClientID = %q", cc.ClientID)
		}
		if cc.RedirectURI != config.Credentials.Spotify.RedirectURI {
			t.Errorf("RedirectURI = %q", cc.RedirectURI)
		}
		if cc.Scope != config.Credentials.Spotify.Scope {
			t.Errorf("Scope = %q", cc.Scope)
		}
		if cc.TokenURL != "http://127.0.0.1:9/token" {
			t.Errorf("TokenURL = %q", cc.TokenURL)
		}
	})
}

func TestAuthorize(t *testing.T) {
	newRunner := func(a *stubAuth) (*Runner, *bytes.Buffer) {
		out := &bytes.Buffer{}
		return NewRunner(RunnerOpts{Output: out, Logger: shared.NopLogger(), Auth: a}), out
	}

	t.Run("already authenticated does not wait", func(t *testing.T) {
		a := &stubAuth{}
		runner, out := newRunner(a)

		if err := runner.authorize(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.completes != 0 {
			t.Error("expected Complete not to be called")
		}
		if out.Len() != 0 {
			t.Errorf("expected no output, got %q", out.String())
		}
	})

	t.Run("redirect then callback", func(t *testing.T) {
		a := &stubAuth{
			begin: []auth.Outcome{{Kind: auth.OutcomeRedirecting, AuthURL: "https://accounts.example.com/authorize?client_id=x"}},
		}
		runner, out := newRunner(a)

		if err := runner.authorize(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.completes != 1 {
			t.Errorf("expected one Complete call, got %d", a.completes)
		}
		if !strings.Contains(out.String(), "https://accounts.example.com/authorize?client_id=x") {
			t.Errorf("expected authorization URL in output, got %q", out.String())
		}
		if !strings.Contains(out.String(), "Waiting for authorization") {
			t.Errorf("expected waiting message, got %q", out.String())
		}
	})

	t.Run("denied", func(t *testing.T) {
		denied := &auth.AuthDeniedError{Reason: "access_denied"}
		a := &stubAuth{
			begin:    []auth.Outcome{{Kind: auth.OutcomeRedirecting, AuthURL: "https://accounts.example.com/authorize"}},
			complete: []auth.Outcome{{Kind: auth.OutcomeDenied, Err: denied}},
		}
		runner, _ := newRunner(a)

		err := runner.authorize(context.Background())
		if !errors.Is(err, shared.ErrAuthDenied) {
			t.Errorf("expected ErrAuthDenied, got %v", err)
		}
	})

	t.Run("callback timeout", func(t *testing.T) {
		a := &stubAuth{
			begin:    []auth.Outcome{{Kind: auth.OutcomeRedirecting}},
			complete: []auth.Outcome{{Kind: auth.OutcomeFailed, Err: shared.ErrTimeout}},
		}
		runner, _ := newRunner(a)

		if err := runner.authorize(context.Background()); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("still redirecting after callback", func(t *testing.T) {
		a := &stubAuth{
			begin:    []auth.Outcome{{Kind: auth.OutcomeRedirecting}},
			complete: []auth.Outcome{{Kind: auth.OutcomeRedirecting}},
		}
		runner, _ := newRunner(a)

		if err := runner.authorize(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("failed without error", func(t *testing.T) {
		a := &stubAuth{begin: []auth.Outcome{{Kind: auth.OutcomeFailed}}}
		runner, _ := newRunner(a)

		if err := runner.authorize(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("auth login prints the user", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("auth", "login"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Logged in as Jam Fan (u1)") {
			t.Errorf("got %q", env.out.String())
		}
	})

	t.Run("auth status reports configuration", func(t *testing.T) {
		env := newTestEnv(t)
		env.runner.config.Credentials.Spotify.ClientID = ""

		if err := env.run("auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Client ID:    (not set)") {
			t.Errorf("expected unset client id, got %q", env.out.String())
		}
		if !strings.Contains(env.out.String(), "Config:       ✗") {
			t.Errorf("expected invalid config line, got %q", env.out.String())
		}
	})

	t.Run("search lists results", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("search", "elton"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := env.out.String()
		for _, want := range []string{
			"Found 3 tracks",
			"1. Tiny Dancer - Elton John (Madman Across the Water)",
			"3. Levon",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %q", want, out)
			}
		}
	})

	t.Run("search requires a term", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run("search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("search json", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("search", "--json", "elton"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(env.out.String(), `[{"id":"t1"`) {
			t.Errorf("got %q", env.out.String())
		}
	})

	t.Run("search add skips duplicates", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("search", "--add", "1,2", "elton"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := env.run("search", "--add", "2,3", "elton"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), "Added 1 track(s)") {
			t.Errorf("got %q", env.out.String())
		}

		draft := env.active(t)
		if draft.Len() != 3 {
			t.Fatalf("expected 3 tracks, got %d", draft.Len())
		}
		if got := draft.Tracks()[2].ID; got != "t3" {
			t.Errorf("expected insertion order, third track is %s", got)
		}
	})

	t.Run("search add out of range", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run("search", "--add", "9", "elton"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("search unauthorized", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.begin = []auth.Outcome{{Kind: auth.OutcomeDenied, Err: &auth.AuthDeniedError{Reason: "access_denied"}}}

		if err := env.run("search", "elton"); !errors.Is(err, shared.ErrAuthDenied) {
			t.Errorf("expected ErrAuthDenied, got %v", err)
		}
	})

	t.Run("playlist editing", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("playlist", "new", "Road Trip"); err != nil {
			t.Fatalf("new: %v", err)
		}
		first := env.active(t)
		if first.Name() != "Road Trip" {
			t.Fatalf("expected new draft to be active, got %q", first.Name())
		}

		if err := env.run("search", "--add", "1,2", "elton"); err != nil {
			t.Fatalf("search: %v", err)
		}
		if err := env.run("playlist", "remove", "t1"); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if err := env.run("playlist", "remove", "t1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected removing an absent track to fail, got %v", err)
		}
		if err := env.run("playlist", "rename", "Night Drive"); err != nil {
			t.Fatalf("rename: %v", err)
		}
		if err := env.run("playlist", "rename", "  "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected blank rename to fail, got %v", err)
		}

		draft := env.active(t)
		if draft.Name() != "Night Drive" || draft.Len() != 1 || draft.Tracks()[0].ID != "t2" {
			t.Errorf("unexpected draft %q with %d tracks", draft.Name(), draft.Len())
		}

		if err := env.run("playlist", "show"); err != nil {
			t.Fatalf("show: %v", err)
		}
		if !strings.Contains(env.out.String(), "Night Drive (1 tracks)") || !strings.Contains(env.out.String(), "Rocket Man") {
			t.Errorf("show output: %q", env.out.String())
		}

		if err := env.run("playlist", "new"); err != nil {
			t.Fatalf("new: %v", err)
		}
		if err := env.run("playlist", "list"); err != nil {
			t.Fatalf("list: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(env.out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 drafts, got %q", env.out.String())
		}
		if !strings.HasPrefix(lines[0], "  ") || !strings.HasPrefix(lines[1], "* ") || !strings.Contains(lines[1], models.DefaultDraftName) {
			t.Errorf("expected the new draft to be marked active, got %q", lines)
		}

		if err := env.run("playlist", "use", first.ID()); err != nil {
			t.Fatalf("use: %v", err)
		}
		if got := env.active(t).ID(); got != first.ID() {
			t.Errorf("expected %s active, got %s", first.ID(), got)
		}
		if err := env.run("playlist", "use", "missing"); !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("expected ErrDraftNotFound, got %v", err)
		}

		if err := env.run("playlist", "clear"); err != nil {
			t.Fatalf("clear: %v", err)
		}
		cleared := env.active(t)
		if cleared.Len() != 0 || cleared.Name() != models.DefaultDraftName {
			t.Errorf("expected cleared draft, got %q with %d tracks", cleared.Name(), cleared.Len())
		}
	})

	t.Run("playlist save", func(t *testing.T) {
		t.Run("empty playlist is refused before authorizing", func(t *testing.T) {
			env := newTestEnv(t)
			env.auth.begin = []auth.Outcome{{Kind: auth.OutcomeFailed, Err: errors.New("should not authorize")}}

			if err := env.run("playlist", "save"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if env.api.createCalls != 0 {
				t.Error("expected no playlist to be created")
			}
		})

		t.Run("success resets the draft and records history", func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run("search", "--add", "1,2", "elton"); err != nil {
				t.Fatalf("search: %v", err)
			}
			if err := env.run("playlist", "rename", "Road Trip"); err != nil {
				t.Fatalf("rename: %v", err)
			}

			if err := env.run("playlist", "save"); err != nil {
				t.Fatalf("save: %v", err)
			}
			if !strings.Contains(env.out.String(), `Saved "Road Trip" with 2 tracks (pl1)`) {
				t.Errorf("got %q", env.out.String())
			}
			if len(env.api.added) != 1 || !strings.Contains(string(env.api.added[0]), `"spotify:track:t1","spotify:track:t2"`) {
				t.Errorf("unexpected add requests %q", env.api.added)
			}

			draft := env.active(t)
			if draft.Len() != 0 || draft.Name() != models.DefaultDraftName {
				t.Errorf("expected the draft to be reset, got %q with %d tracks", draft.Name(), draft.Len())
			}

			if err := env.run("playlist", "history"); err != nil {
				t.Fatalf("history: %v", err)
			}
			if !strings.Contains(env.out.String(), "saved") || !strings.Contains(env.out.String(), "pl1") {
				t.Errorf("history output: %q", env.out.String())
			}
		})

		t.Run("partial failure keeps the draft", func(t *testing.T) {
			env := newTestEnv(t)
			env.api.addStatus = http.StatusInternalServerError
			if err := env.run("search", "--add", "1", "elton"); err != nil {
				t.Fatalf("search: %v", err)
			}

			err := env.run("playlist", "save")
			if !errors.Is(err, shared.ErrSaveFailed) {
				t.Fatalf("expected ErrSaveFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), "not all tracks were added") {
				t.Errorf("expected partial message, got %v", err)
			}

			if env.active(t).Len() != 1 {
				t.Error("expected the draft to be kept")
			}

			if err := env.run("playlist", "history", "--partial", "--json"); err != nil {
				t.Fatalf("history: %v", err)
			}
			if !strings.Contains(env.out.String(), `"failed_step": "add-tracks"`) {
				t.Errorf("history output: %q", env.out.String())
			}
		})
	})

	t.Run("playlist export", func(t *testing.T) {
		t.Run("to stdout", func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run("search", "--add", "1", "elton"); err != nil {
				t.Fatalf("search: %v", err)
			}

			if err := env.run("playlist", "export", "--format", "csv", "--output", "-"); err != nil {
				t.Fatalf("export: %v", err)
			}
			if !strings.Contains(env.out.String(), "t1,Tiny Dancer,Elton John") {
				t.Errorf("got %q", env.out.String())
			}
		})

		t.Run("to a file", func(t *testing.T) {
			env := newTestEnv(t)
			path := filepath.Join(t.TempDir(), "out.md")

			if err := env.run("playlist", "export", "--format", "markdown", "--output", path); err != nil {
				t.Fatalf("export: %v", err)
			}
			tu.AssertFileExists(t, path)
		})

		t.Run("unknown format", func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run("playlist", "export", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("all drafts", func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run("playlist", "new", "One"); err != nil {
				t.Fatal(err)
			}
			if err := env.run("playlist", "new", "Two"); err != nil {
				t.Fatal(err)
			}
			dir := t.TempDir()

			if err := env.run("playlist", "export", "--all", "--output", dir); err != nil {
				t.Fatalf("export: %v", err)
			}
			if !strings.Contains(env.out.String(), "Exported 2/2 drafts") {
				t.Errorf("got %q", env.out.String())
			}
			tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		})
	})

	t.Run("api get", func(t *testing.T) {
		env := newTestEnv(t)

		if err := env.run("api", "get", "--json", "/me"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.out.String() != `{"display_name":"Jam Fan","id":"u1"}`+"\n" {
			t.Errorf("got %q", env.out.String())
		}

		if err := env.run("api", "get", "text"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.out.String() != "plain body\n" {
			t.Errorf("got %q", env.out.String())
		}

		if err := env.run("api", "get", "/missing"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("api post rejects invalid JSON", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run("api", "post", "--data", "{nope", "/users/u1/playlists"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("api post", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run("api", "post", "--data", `{"name":"x"}`, "/users/u1/playlists"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.out.String(), `"id": "pl1"`) {
			t.Errorf("got %q", env.out.String())
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config writes a template once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		out := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: out, Logger: shared.NopLogger()})
		app := &cli.Command{Name: "jam", Writer: io.Discard, ErrWriter: io.Discard, Commands: runner.register()}

		if err := app.Run(context.Background(), []string{"jam", "setup", "config", "--config", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "client_id") {
			t.Error("expected template content")
		}

		app = &cli.Command{Name: "jam", Writer: io.Discard, ErrWriter: io.Discard, Commands: runner.register()}
		err := app.Run(context.Background(), []string{"jam", "setup", "config", "--config", path})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected overwrite to be refused, got %v", err)
		}
	})

	t.Run("database creates and migrates", func(t *testing.T) {
		dir := t.TempDir()
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(dir, "jam.db")

		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}, Logger: shared.NopLogger()})
		app := &cli.Command{Name: "jam", Writer: io.Discard, ErrWriter: io.Discard, Commands: runner.register()}

		err := app.Run(context.Background(), []string{"jam", "setup", "database", "--config", filepath.Join(dir, "config.toml")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, config.Database.Path)
		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	})
}
