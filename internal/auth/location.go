package auth

import (
	"context"
	"net/url"
	"sync"

	"github.com/desertthunder/jamming/internal/shared"
)

// Location is the URL the authorization server last redirected to.
type Location interface {
	Query() url.Values
	// Strip removes the query so a consumed code or error is not seen again.
	Strip()
}

// CallbackLocation is a [Location] set by the local callback server.
type CallbackLocation struct {
	mu  sync.RWMutex
	url *url.URL
}

// NewCallbackLocation returns a location with no query. A nil u is allowed.
func NewCallbackLocation(u *url.URL) *CallbackLocation {
	l := &CallbackLocation{}
	l.Set(u)
	return l
}

// Set records the URL received on the redirect URI.
func (l *CallbackLocation) Set(u *url.URL) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u == nil {
		l.url = nil
		return
	}
	cp := *u
	l.url = &cp
}

func (l *CallbackLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.url == nil {
		return url.Values{}
	}
	return l.url.Query()
}

func (l *CallbackLocation) Strip() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.url != nil {
		l.url.RawQuery = ""
		l.url.Fragment = ""
	}
}

// String returns the current URL, or an empty string.
func (l *CallbackLocation) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.url == nil {
		return ""
	}
	return l.url.String()
}

// Navigator sends the user agent to an authorization URL.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Navigate(ctx context.Context, url string) error { return f(ctx, url) }

// BrowserNavigator opens the system browser.
type BrowserNavigator struct{}

func (BrowserNavigator) Navigate(_ context.Context, url string) error {
	return shared.OpenBrowser(url)
}
