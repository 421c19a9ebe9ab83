// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/models"
)

// MockService is a test double for [services.Service]
type MockService struct {
	mu sync.Mutex

	Tracks     []models.Track
	PlaylistID string
	SaveErr    error

	Searches []string
	Saves    []MockSave
}

// MockSave records one SavePlaylist call.
type MockSave struct {
	Name string
	URIs []string
}

func (m *MockService) Search(ctx context.Context, term string) []models.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, term)
	if m.Tracks == nil {
		return []models.Track{}
	}
	return slices.Clone(m.Tracks)
}

func (m *MockService) SavePlaylist(ctx context.Context, name string, uris []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves = append(m.Saves, MockSave{Name: name, URIs: slices.Clone(uris)})
	if m.SaveErr != nil {
		return m.PlaylistID, m.SaveErr
	}
	return m.PlaylistID, nil
}

func (m *MockService) Name() string { return "mock" }

// StaticSession is a session stub that hands out a fixed token until invalidated.
//
// With no token it reports a redirecting outcome, as a real session does
// before the user has authorized.
type StaticSession struct {
	mu            sync.Mutex
	token         string
	calls         int
	invalidations int
}

func NewStaticSession(token string) *StaticSession {
	return &StaticSession{token: token}
}

func (s *StaticSession) GetAccessToken(ctx context.Context) (string, auth.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.token == "" {
		return "", auth.Outcome{Kind: auth.OutcomeRedirecting, AuthURL: "https://accounts.example.com/authorize"}
	}
	return s.token, auth.Outcome{Kind: auth.OutcomeAuthenticated}
}

func (s *StaticSession) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
	s.token = ""
}

// Calls returns how many times a token was requested.
func (s *StaticSession) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Invalidations returns how many times the session was invalidated.
func (s *StaticSession) Invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidations
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
