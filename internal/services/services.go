package services

import (
	"context"

	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/models"
)

// Service defines the operations the UI layers need from a music provider.
type Service interface {
	// Search returns matching tracks, or an empty slice on any failure.
	Search(ctx context.Context, term string) []models.Track

	// SavePlaylist creates a playlist named name containing uris, in order.
	// An empty name or no uris is a no-op returning an empty id.
	SavePlaylist(ctx context.Context, name string, uris []string) (string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Session supplies access tokens. [auth.Session] is the production implementation.
type Session interface {
	GetAccessToken(ctx context.Context) (string, auth.Outcome)
	Invalidate()
}
