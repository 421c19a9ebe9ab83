// Spotify Web API implementation of [Service]
//
// Response payloads are decoded into the types from github.com/zmb3/spotify/v2.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/shared"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"

	// MaxTracksPerRequest is the API limit for adding items to a playlist.
	MaxTracksPerRequest = 100

	playlistDescription = "Created with Jamming"
	maxErrorBody        = 4096
)

// SpotifyOpts configures a [SpotifyService]. Zero values select defaults.
type SpotifyOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
	// Limiter paces batched requests. Defaults to 10 per second.
	Limiter *rate.Limiter
}

// SpotifyService implements [Service] against the Spotify Web API using tokens from a [Session].
type SpotifyService struct {
	session    Session
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	limiter    *rate.Limiter
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

func NewSpotifyService(session Session, opts SpotifyOpts) *SpotifyService {
	s := &SpotifyService{
		session:    session,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		limiter:    opts.Limiter,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.logger == nil {
		s.logger = shared.NopLogger()
	}
	if s.limiter == nil {
		s.limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
	}
	return s
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// accessToken asks the session for a token and converts a non-authenticated outcome into an error.
func (s *SpotifyService) accessToken(ctx context.Context) (string, error) {
	tok, outcome := s.session.GetAccessToken(ctx)
	if outcome.OK() && tok != "" {
		return tok, nil
	}
	if outcome.Err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, outcome.Err)
	}
	return "", fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, outcome.Kind)
}

// doRequest performs an authenticated request against the API and decodes a JSON response into result.
//
// A 401 invalidates the session before the error is returned.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized {
			s.session.Invalidate()
			s.logger.Warn("access token rejected, session invalidated", "endpoint", endpoint)
		}
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchTracks searches the catalog for tracks matching term, in the provider's order.
//
// A blank term returns an empty slice without a request.
func (s *SpotifyService) SearchTracks(ctx context.Context, term string) ([]models.Track, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Track{}, nil
	}

	var result spotify.SearchResult
	endpoint := "/search?type=track&q=" + url.QueryEscape(term)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}

	if result.Tracks == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, normalizeTrack(ft))
	}
	return tracks, nil
}

// Search is the best-effort form of [SpotifyService.SearchTracks]: failures are logged and yield an empty slice.
func (s *SpotifyService) Search(ctx context.Context, term string) []models.Track {
	tracks, err := s.SearchTracks(ctx, term)
	if err != nil {
		s.logger.Error("search failed", "term", term, "error", err)
		return []models.Track{}
	}
	return tracks
}

// CurrentUser retrieves the profile of the authenticated user.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*spotify.PrivateUser, error) {
	var user spotify.PrivateUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePlaylist creates an empty private playlist owned by userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name string) (*spotify.FullPlaylist, error) {
	body := createPlaylistRequest{Name: name, Description: playlistDescription, Public: false}
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	var playlist spotify.FullPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracks appends uris to a playlist in order, [MaxTracksPerRequest] per request.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += MaxTracksPerRequest {
		end := min(start+MaxTracksPerRequest, len(uris))

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed waiting to add tracks: %w", err)
		}

		var snapshot snapshotResponse
		if err := s.doRequest(ctx, http.MethodPost, endpoint, addTracksRequest{URIs: uris[start:end]}, &snapshot); err != nil {
			return fmt.Errorf("failed to add tracks %d-%d: %w", start+1, end, err)
		}
		s.logger.Debug("added tracks", "playlist", playlistID, "count", end-start, "snapshot", snapshot.SnapshotID)
	}

	return nil
}

// SavePlaylist creates a playlist named name and adds uris to it, returning the new playlist id.
//
// A blank name or no uris is a no-op. Failures are returned as [*SaveError];
// a playlist created before a later step failed is not rolled back.
func (s *SpotifyService) SavePlaylist(ctx context.Context, name string, uris []string) (string, error) {
	if strings.TrimSpace(name) == "" || len(uris) == 0 {
		return "", nil
	}

	if _, err := s.accessToken(ctx); err != nil {
		return "", &SaveError{Step: StepAuthorize, Err: err}
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return "", &SaveError{Step: StepCurrentUser, Err: err}
	}

	playlist, err := s.CreatePlaylist(ctx, user.ID, name)
	if err != nil {
		return "", &SaveError{Step: StepCreatePlaylist, Err: err}
	}

	playlistID := string(playlist.ID)
	if playlistID == "" {
		return "", &SaveError{Step: StepCreatePlaylist, Err: fmt.Errorf("%w: response has no playlist id", shared.ErrAPIRequest)}
	}

	if err := s.AddTracks(ctx, playlistID, uris); err != nil {
		return playlistID, &SaveError{Step: StepAddTracks, PlaylistID: playlistID, Err: err}
	}

	s.logger.Info("playlist saved", "playlist", playlistID, "tracks", len(uris))
	return playlistID, nil
}

func normalizeTrack(ft spotify.FullTrack) models.Track {
	track := models.Track{
		ID:    string(ft.ID),
		Name:  ft.Name,
		Album: ft.Album.Name,
		URI:   string(ft.URI),
	}
	if len(ft.Artists) > 0 {
		track.Artist = ft.Artists[0].Name
	}
	return track
}
