package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/desertthunder/jamming/internal/shared"
)

// CallbackHandler receives the authorization redirect and forwards its URL to a waiting caller.
//
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	path    string
	results chan *url.URL
}

// NewCallbackHandler creates a handler serving path. At most one callback may be pending.
func NewCallbackHandler(path string) *CallbackHandler {
	if path == "" {
		path = "/callback"
	}
	return &CallbackHandler{path: path, results: make(chan *url.URL, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP forwards the callback URL and renders a page telling the user to return to the terminal.
//
// Requests carrying neither code nor error are rejected with 400 and not forwarded.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code, errParam := query.Get("code"), query.Get("error")

	if code == "" && errParam == "" {
		http.Error(w, "Missing code or error parameter", http.StatusBadRequest)
		return
	}

	select {
	case h.results <- callbackURL(r):
	default:
		http.Error(w, "An authorization callback is already pending", http.StatusConflict)
		return
	}

	page := callbackPage{
		Title:   "Authorization Successful",
		Heading: "✓ Authorization Successful",
		Message: "You can close this window and return to the terminal.",
		Class:   "ok",
	}
	if code == "" {
		page = callbackPage{
			Title:   "Authorization Denied",
			Heading: "Authorization Denied",
			Message: fmt.Sprintf("Spotify reported %q. Return to the terminal to try again.", errParam),
			Class:   "denied",
		}
		if desc := query.Get("error_description"); desc != "" {
			page.Message = fmt.Sprintf("Spotify reported %q: %s. Return to the terminal to try again.", errParam, desc)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = callbackTemplate.Execute(w, page)
}

// Results returns the channel callback URLs are delivered on.
func (h *CallbackHandler) Results() <-chan *url.URL {
	return h.results
}

// Drain discards any callback still pending from an earlier attempt.
func (h *CallbackHandler) Drain() {
	for {
		select {
		case <-h.results:
		default:
			return
		}
	}
}

// Wait blocks until a callback arrives or ctx is done.
//
// A deadline expiry is reported as [shared.ErrTimeout].
func (h *CallbackHandler) Wait(ctx context.Context) (*url.URL, error) {
	select {
	case u := <-h.results:
		return u, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no authorization callback received", shared.ErrTimeout)
		}
		return nil, ctx.Err()
	}
}

// callbackURL rebuilds the absolute URL the browser was redirected to.
func callbackURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return &u
}

type callbackPage struct {
	Title   string
	Heading string
	Message string
	Class   string
}

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { margin: 0 0 1rem 0; }
        .ok h1 { color: #1DB954; }
        .denied h1 { color: #E22134; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container {{.Class}}">
        <h1>{{.Heading}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))
