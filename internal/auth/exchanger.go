package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"

	"github.com/desertthunder/jamming/internal/shared"
)

// Exchanger trades an authorization code and the stored verifier for an access token.
type Exchanger struct {
	oauth    *oauth2.Config
	store    VerifierStore
	location Location
	cache    *TokenCache
	clock    clockwork.Clock
	client   *http.Client
	logger   *log.Logger
}

type ExchangerOpts struct {
	Config     ClientConfig
	Store      VerifierStore
	Location   Location
	Cache      *TokenCache
	Clock      clockwork.Clock
	HTTPClient *http.Client
	Logger     *log.Logger
}

func NewExchanger(opts ExchangerOpts) *Exchanger {
	e := &Exchanger{
		oauth:    opts.Config.OAuth2(),
		store:    opts.Store,
		location: opts.Location,
		cache:    opts.Cache,
		clock:    opts.Clock,
		client:   opts.HTTPClient,
		logger:   opts.Logger,
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.cache == nil {
		e.cache = NewTokenCache(e.clock)
	}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.logger == nil {
		e.logger = shared.NopLogger()
	}
	return e
}

// ExchangeCodeForToken posts code and the stored verifier to the token endpoint and caches the result.
//
// The verifier is deleted and the location stripped whatever the outcome, so
// a code is never presented twice.
func (e *Exchanger) ExchangeCodeForToken(ctx context.Context, code string) (*AccessToken, error) {
	defer e.cleanup()

	verifier, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load code verifier: %w", err)
	}
	if verifier == "" {
		return nil, shared.ErrMissingVerifier
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)
	tok, err := e.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, &TokenExchangeError{Status: re.Response.StatusCode, Body: string(re.Body)}
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrTokenExchangeFailed, err)
	}

	lifetime := e.lifetime(tok)
	stored := e.cache.Store(tok.AccessToken, lifetime)
	e.logger.Info("access token obtained", "expires_in", lifetime)

	return &stored, nil
}

func (e *Exchanger) cleanup() {
	if err := e.store.Delete(); err != nil {
		e.logger.Warn("failed to delete code verifier", "error", err)
	}
	if e.location != nil {
		e.location.Strip()
	}
}

// lifetime reads expires_in from the token response, falling back to the parsed expiry.
func (e *Exchanger) lifetime(tok *oauth2.Token) time.Duration {
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}

	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}

	if !tok.Expiry.IsZero() {
		return tok.Expiry.Sub(e.clock.Now())
	}
	return 0
}
