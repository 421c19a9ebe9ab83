package main

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/server"
	"github.com/desertthunder/jamming/internal/services"
)

// authFlow connects the session to the local callback server.
//
// Begin makes sure the server is listening and drops any callback left over
// from an abandoned attempt before the session can send the browser away.
// Complete waits for the redirect, points the session's location at it and
// asks for a token again.
type authFlow struct {
	session  services.Session
	location *auth.CallbackLocation
	callback *server.CallbackHandler
	server   *server.Server
	timeout  time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	started bool
}

func newAuthFlow(session services.Session, location *auth.CallbackLocation, addr, path string, logger *log.Logger) *authFlow {
	callback := server.NewCallbackHandler(path)

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(logger))
	router.Handler(callback)

	return &authFlow{
		session:  session,
		location: location,
		callback: callback,
		server:   server.New(addr, router, logger),
		timeout:  callbackTimeout,
		logger:   logger,
	}
}

func (f *authFlow) Begin(ctx context.Context) auth.Outcome {
	if err := f.start(); err != nil {
		return auth.Outcome{Kind: auth.OutcomeFailed, Err: err}
	}
	f.callback.Drain()
	_, outcome := f.session.GetAccessToken(ctx)
	return outcome
}

func (f *authFlow) Complete(ctx context.Context) auth.Outcome {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	u, err := f.callback.Wait(ctx)
	if err != nil {
		return auth.Outcome{Kind: auth.OutcomeFailed, Err: err}
	}

	f.logger.Debug("authorization callback received", "path", u.Path)
	f.location.Set(u)
	_, outcome := f.session.GetAccessToken(ctx)
	if outcome.OK() {
		// A cached token wins over the callback; its code must not linger.
		f.location.Strip()
	}
	return outcome
}

func (f *authFlow) start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return nil
	}
	if err := f.server.Start(); err != nil {
		return err
	}
	f.started = true
	return nil
}

// Close stops the callback server if it was started.
func (f *authFlow) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil
	}
	f.started = false
	return f.server.Shutdown(ctx)
}
