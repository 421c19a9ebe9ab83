package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/jamming/internal/shared"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Method Matching", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodPost, "/items", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items", nil))
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(tag("first"), tag("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}

func TestCallbackHandler(t *testing.T) {
	newRouter := func(h *CallbackHandler) *BasicRouter {
		r := NewBasicRouter()
		r.Handler(h)
		return r
	}

	t.Run("Forwards Code", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		r := newRouter(h)

		req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:5173/callback?code=abc", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("expected success page, got %s", rec.Body.String())
		}

		select {
		case u := <-h.Results():
			if u.String() != "http://127.0.0.1:5173/callback?code=abc" {
				t.Errorf("unexpected forwarded URL %s", u)
			}
		default:
			t.Fatal("expected a forwarded callback")
		}
	})

	t.Run("Denied Page Escapes Description", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		r := newRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&error_description=%3Cscript%3E", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		body := rec.Body.String()
		if !strings.Contains(body, "Authorization Denied") {
			t.Errorf("expected denied page, got %s", body)
		}
		if strings.Contains(body, "<script>") {
			t.Error("error description must be escaped")
		}
		if u := <-h.Results(); u.Query().Get("error") != "access_denied" {
			t.Errorf("unexpected forwarded URL %s", u)
		}
	})

	t.Run("Rejects Second Pending Callback", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		r := newRouter(h)

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=one", nil))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=two", nil))
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}

		if u := <-h.Results(); u.Query().Get("code") != "one" {
			t.Errorf("expected first callback to win, got %s", u)
		}
	})

	t.Run("Drain Discards Pending Callback", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		r := newRouter(h)

		h.Drain()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=stale", nil))
		h.Drain()

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=fresh", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 after drain, got %d", rec.Code)
		}
		if u := <-h.Results(); u.Query().Get("code") != "fresh" {
			t.Errorf("expected fresh callback, got %s", u)
		}
	})

	t.Run("Missing Parameters", func(t *testing.T) {
		h := NewCallbackHandler("")
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		select {
		case <-h.Results():
			t.Error("invalid callback should not be forwarded")
		default:
		}
	})

	t.Run("Wait Timeout", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := h.Wait(ctx); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Wait Cancelled", func(t *testing.T) {
		h := NewCallbackHandler("/callback")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := h.Wait(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestServer(t *testing.T) {
	t.Run("Start Serve Shutdown", func(t *testing.T) {
		var logs bytes.Buffer
		logger := shared.NewLogger(&logs)

		h := NewCallbackHandler("/callback")
		r := NewBasicRouter()
		r.Use(LoggingMiddleware(logger))
		r.Handler(h)

		srv := New("127.0.0.1:0", r, logger)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if err := srv.Start(); err == nil {
			t.Error("expected error starting twice")
		}

		resp, err := http.Get(fmt.Sprintf("http://%s/callback?code=xyz", srv.Addr()))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		u, err := h.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		if u.Query().Get("code") != "xyz" || u.Host != srv.Addr() {
			t.Errorf("unexpected callback URL %s", u)
		}

		if err := srv.Shutdown(ctx); err != nil {
			t.Fatalf("Shutdown failed: %v", err)
		}

		if !strings.Contains(logs.String(), "/callback") || strings.Contains(logs.String(), "xyz") {
			t.Errorf("expected path logged without query, got %s", logs.String())
		}
	})

	t.Run("Port In Use", func(t *testing.T) {
		first := New("127.0.0.1:0", http.NotFoundHandler(), nil)
		if err := first.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer first.Shutdown(context.Background())

		second := New(first.Addr(), http.NotFoundHandler(), nil)
		if err := second.Start(); err == nil {
			second.Shutdown(context.Background())
			t.Error("expected listen error for a bound port")
		}
	})

	t.Run("Shutdown Before Start", func(t *testing.T) {
		if err := New("127.0.0.1:0", http.NotFoundHandler(), nil).Shutdown(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}
