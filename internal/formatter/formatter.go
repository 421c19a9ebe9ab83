// package formatter exports playlist drafts to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension used for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

// DraftExport is the serializable view of a draft.
type DraftExport struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	TrackCount int            `json:"track_count"`
	Tracks     []models.Track `json:"tracks"`
	ExportedAt time.Time      `json:"exported_at"`
}

func NewDraftExport(d *models.Draft) DraftExport {
	tracks := d.Tracks()
	if tracks == nil {
		tracks = []models.Track{}
	}
	return DraftExport{
		ID:         d.ID(),
		Name:       d.Name(),
		TrackCount: len(tracks),
		Tracks:     tracks,
		ExportedAt: time.Now().UTC(),
	}
}

// ExportToJSON renders the draft as indented JSON.
func ExportToJSON(d *models.Draft) ([]byte, error) {
	return shared.MarshalJSON(NewDraftExport(d), true)
}

// ExportToCSV renders the draft with columns: ID, Name, Artist, Album, URI
func ExportToCSV(d *models.Draft) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Artist", "Album", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range d.Tracks() {
		if err := writer.Write([]string{track.ID, track.Name, track.Artist, track.Album, track.URI}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the draft as a Markdown document with a numbered track list.
func ExportToMarkdown(d *models.Draft) ([]byte, error) {
	var buf bytes.Buffer
	tracks := d.Tracks()

	fmt.Fprintf(&buf, "# %s\n\n", d.Name())
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s `%s`\n", i+1, artistOrUnknown(track), track.Name, albumPart, track.URI)
	}

	return buf.Bytes(), nil
}

// ExportToText renders the draft as plain text.
func ExportToText(d *models.Draft) ([]byte, error) {
	var buf bytes.Buffer
	tracks := d.Tracks()

	fmt.Fprintf(&buf, "Playlist: %s\n", d.Name())
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, artistOrUnknown(track), track.Name)
	}

	return buf.Bytes(), nil
}

// Export renders the draft in format f.
func Export(d *models.Draft, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(d)
	case FormatMarkdown:
		return ExportToMarkdown(d)
	case FormatText:
		return ExportToText(d)
	case FormatJSON:
		return ExportToJSON(d)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// Write renders the draft in format f to w.
func Write(w io.Writer, d *models.Draft, f Format) error {
	data, err := Export(d, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExport writes the draft in format f to path and returns the path written.
//
// An empty path defaults to the slugged draft name with the format's extension.
// An existing directory places that default name inside it.
func WriteExport(d *models.Draft, f Format, path string) (string, error) {
	filename := Slug(d.Name()) + f.Extension()
	switch {
	case path == "":
		path = filename
	case isDir(path):
		path = filepath.Join(path, filename)
	}

	data, err := Export(d, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate export: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Slug turns a playlist name into a lowercase, dash-separated file name.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "playlist"
	}
	return slug
}

func artistOrUnknown(t models.Track) string {
	if t.Artist == "" {
		return "Unknown Artist"
	}
	return t.Artist
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
