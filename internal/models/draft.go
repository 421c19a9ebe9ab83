package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/jamming/internal/shared"
)

// DefaultDraftName is used for new drafts and after a successful save.
const DefaultDraftName = "New Playlist"

// Draft is the playlist being assembled before it is saved to the provider.
//
// Tracks keep insertion order and never contain two tracks with the same ID.
type Draft struct {
	id        string
	name      string
	tracks    []Track
	createdAt time.Time
	updatedAt time.Time
}

// NewDraft creates an empty draft. An empty name falls back to [DefaultDraftName].
func NewDraft(name string) *Draft {
	if strings.TrimSpace(name) == "" {
		name = DefaultDraftName
	}
	now := time.Now()
	return &Draft{name: name, createdAt: now, updatedAt: now}
}

// RestoreDraft rebuilds a draft loaded from storage.
func RestoreDraft(id, name string, tracks []Track, createdAt, updatedAt time.Time) *Draft {
	return &Draft{
		id:        id,
		name:      name,
		tracks:    slices.Clone(tracks),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (d *Draft) ID() string           { return d.id }
func (d *Draft) Name() string         { return d.name }
func (d *Draft) CreatedAt() time.Time { return d.createdAt }
func (d *Draft) UpdatedAt() time.Time { return d.updatedAt }
func (d *Draft) Len() int             { return len(d.tracks) }

func (d *Draft) SetID(id string)          { d.id = id }
func (d *Draft) SetUpdatedAt(t time.Time) { d.updatedAt = t }

// Tracks returns a copy of the draft's tracks in order.
func (d *Draft) Tracks() []Track {
	return slices.Clone(d.tracks)
}

// Contains reports whether a track with id is in the draft.
func (d *Draft) Contains(id string) bool {
	target := Track{ID: id}
	return slices.ContainsFunc(d.tracks, target.Same)
}

// Add appends track unless a track with the same ID is already present.
func (d *Draft) Add(track Track) bool {
	if d.Contains(track.ID) {
		return false
	}
	d.tracks = append(d.tracks, track)
	d.touch()
	return true
}

// AddAll adds each track in order and returns how many were new.
func (d *Draft) AddAll(tracks []Track) int {
	added := 0
	for _, t := range tracks {
		if d.Add(t) {
			added++
		}
	}
	return added
}

// Remove drops the track with id and reports whether it was present.
func (d *Draft) Remove(id string) bool {
	before := len(d.tracks)
	target := Track{ID: id}
	d.tracks = slices.DeleteFunc(d.tracks, target.Same)
	if len(d.tracks) == before {
		return false
	}
	d.touch()
	return true
}

func (d *Draft) Rename(name string) {
	d.name = name
	d.touch()
}

// URIs returns the track URIs in draft order.
func (d *Draft) URIs() []string {
	uris := make([]string, len(d.tracks))
	for i, t := range d.tracks {
		uris[i] = t.URI
	}
	return uris
}

// Reset clears the tracks and restores the default name.
func (d *Draft) Reset() {
	d.name = DefaultDraftName
	d.tracks = nil
	d.touch()
}

// Validate requires a non-empty name.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.name) == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	return nil
}

// ReadyToSave reports why the draft cannot be saved, or nil when it can.
func (d *Draft) ReadyToSave() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(d.tracks) == 0 {
		return fmt.Errorf("%w: playlist has no tracks", shared.ErrInvalidInput)
	}
	return nil
}

func (d *Draft) touch() {
	d.updatedAt = time.Now()
}
