package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/jamming/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if desc == "" {
		desc = "Unknown Artist"
	}
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func newTrackList(title string) list.Model {
	l := list.New(nil, trackDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = l.Styles.Title.Background(lipgloss.Color(brandGreen))
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}
