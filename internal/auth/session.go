package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/desertthunder/jamming/internal/shared"
)

// SessionOpts configures a [Session]. Only Config and Store are required.
type SessionOpts struct {
	Config     ClientConfig
	Store      VerifierStore
	Location   Location
	Navigator  Navigator
	Clock      clockwork.Clock
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Session owns the access token for the lifetime of the process and drives the PKCE flow.
type Session struct {
	flow       sync.Mutex
	cache      *TokenCache
	location   Location
	redirector *Redirector
	exchanger  *Exchanger
	logger     *log.Logger
}

func NewSession(opts SessionOpts) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NopLogger()
	}
	if opts.Location == nil {
		opts.Location = NewCallbackLocation(nil)
	}
	if opts.Store == nil {
		opts.Store = &MemoryVerifierStore{}
	}

	cache := NewTokenCache(opts.Clock)
	return &Session{
		cache:      cache,
		location:   opts.Location,
		redirector: NewRedirector(opts.Config, opts.Store, opts.Navigator, opts.Logger),
		exchanger: NewExchanger(ExchangerOpts{
			Config:     opts.Config,
			Store:      opts.Store,
			Location:   opts.Location,
			Cache:      cache,
			Clock:      opts.Clock,
			HTTPClient: opts.HTTPClient,
			Logger:     opts.Logger,
		}),
		logger: opts.Logger,
	}
}

// GetAccessToken returns a usable token, or an outcome explaining why there is none.
//
// With no cached token it looks at the current location: an error parameter
// ends in [OutcomeDenied], a code is exchanged, and otherwise a new
// authorization is started and [OutcomeRedirecting] returned. A redirecting
// outcome is terminal for the caller's current operation.
func (s *Session) GetAccessToken(ctx context.Context) (string, Outcome) {
	if tok, ok := s.cache.Get(); ok {
		return tok, Outcome{Kind: OutcomeAuthenticated}
	}

	s.flow.Lock()
	defer s.flow.Unlock()

	if tok, ok := s.cache.Get(); ok {
		return tok, Outcome{Kind: OutcomeAuthenticated}
	}

	query := s.location.Query()
	if reason := query.Get("error"); reason != "" {
		s.location.Strip()
		err := &AuthDeniedError{Reason: reason, Description: query.Get("error_description")}
		s.logger.Warn("authorization denied", "reason", reason)
		return "", Outcome{Kind: OutcomeDenied, Err: err}
	}

	if code := query.Get("code"); code != "" {
		tok, err := s.exchanger.ExchangeCodeForToken(ctx, code)
		if err != nil {
			s.logger.Error("failed to exchange authorization code", "error", err)
			return "", Outcome{Kind: OutcomeFailed, Err: err}
		}
		return tok.Value, Outcome{Kind: OutcomeAuthenticated}
	}

	outcome, err := s.redirector.BeginAuthorization(ctx)
	if err != nil {
		s.logger.Error("failed to begin authorization", "error", err)
		return "", Outcome{Kind: OutcomeFailed, Err: err}
	}
	return "", outcome
}

// Invalidate drops the cached token so the next call re-enters the flow.
func (s *Session) Invalidate() {
	s.cache.Invalidate()
}

// Authenticated reports whether a live token is cached.
func (s *Session) Authenticated() bool {
	_, ok := s.cache.Get()
	return ok
}

// Close cancels the pending expiry timer.
func (s *Session) Close() {
	s.cache.Stop()
}
