package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/shared"
)

var _ models.Repository[*models.Draft] = (*DraftRepository)(nil)

// DraftRepository implements models.Repository[*models.Draft].
//
// Tracks are stored in draft_tracks and rewritten as a whole on Update.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new DraftRepository with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Create inserts a new, inactive draft with its tracks and assigns its ID.
func (r *DraftRepository) Create(draft *models.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "drafts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO drafts (id, sequence, name, active, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`
	if _, err := tx.Exec(query, id, sequence, draft.Name(), draft.CreatedAt(), draft.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}

	if err := insertTracks(tx, id, draft.Tracks()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit draft: %w", err)
	}

	draft.SetID(id)
	return nil
}

// Get retrieves a draft and its tracks by ID.
func (r *DraftRepository) Get(id string) (*models.Draft, error) {
	query := `SELECT id, name, created_at, updated_at FROM drafts WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// Active returns the active draft, or [shared.ErrDraftNotFound] when none is active.
func (r *DraftRepository) Active() (*models.Draft, error) {
	query := `SELECT id, name, created_at, updated_at FROM drafts WHERE active = 1 LIMIT 1`
	return r.scanOne(r.db.QueryRow(query), "active")
}

// EnsureActive returns the active draft, creating and activating an empty one if needed.
func (r *DraftRepository) EnsureActive() (*models.Draft, error) {
	draft, err := r.Active()
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, shared.ErrDraftNotFound) {
		return nil, err
	}

	draft = models.NewDraft("")
	if err := r.Create(draft); err != nil {
		return nil, err
	}
	if err := r.Activate(draft.ID()); err != nil {
		return nil, err
	}
	return draft, nil
}

// Activate makes the draft with id the only active draft.
func (r *DraftRepository) Activate(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE drafts SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("failed to deactivate drafts: %w", err)
	}

	result, err := tx.Exec(`UPDATE drafts SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to activate draft: %w", err)
	}
	if err := expectRow(result, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Update saves the draft's name and replaces its tracks.
func (r *DraftRepository) Update(draft *models.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	draft.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE drafts SET name = ?, updated_at = ? WHERE id = ?`, draft.Name(), now, draft.ID())
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	if err := expectRow(result, draft.ID()); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM draft_tracks WHERE draft_id = ?`, draft.ID()); err != nil {
		return fmt.Errorf("failed to clear draft tracks: %w", err)
	}
	if err := insertTracks(tx, draft.ID(), draft.Tracks()); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a draft and its tracks.
func (r *DraftRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM draft_tracks WHERE draft_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete draft tracks: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if err := expectRow(result, id); err != nil {
		return err
	}

	return tx.Commit()
}

// List retrieves drafts in creation order. Supported criteria: "limit" (int).
func (r *DraftRepository) List(criteria map[string]any) ([]*models.Draft, error) {
	query := `SELECT id, name, created_at, updated_at FROM drafts ORDER BY sequence ASC`
	limit, args := limitClause(criteria)

	rows, err := r.db.Query(query+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	var drafts []*models.Draft
	for rows.Next() {
		var id, name string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &name, &createdAt, &updatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, models.RestoreDraft(id, name, nil, createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}
	rows.Close()

	// tracks are loaded after the cursor is closed; a single-connection pool cannot serve both
	for i, d := range drafts {
		tracks, err := r.tracks(d.ID())
		if err != nil {
			return nil, err
		}
		drafts[i] = models.RestoreDraft(d.ID(), d.Name(), tracks, d.CreatedAt(), d.UpdatedAt())
	}

	return drafts, nil
}

func (r *DraftRepository) scanOne(row *sql.Row, key string) (*models.Draft, error) {
	var id, name string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&id, &name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", shared.ErrDraftNotFound, key)
		}
		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}

	tracks, err := r.tracks(id)
	if err != nil {
		return nil, err
	}
	return models.RestoreDraft(id, name, tracks, createdAt, updatedAt), nil
}

func (r *DraftRepository) tracks(draftID string) ([]models.Track, error) {
	query := `
		SELECT track_id, name, artist, album, uri
		FROM draft_tracks
		WHERE draft_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.Query(query, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.URI); err != nil {
			return nil, fmt.Errorf("failed to scan draft track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft tracks: %w", err)
	}
	return tracks, nil
}

func insertTracks(tx *sql.Tx, draftID string, tracks []models.Track) error {
	stmt, err := tx.Prepare(`
		INSERT INTO draft_tracks (draft_id, position, track_id, name, artist, album, uri)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		if _, err := stmt.Exec(draftID, i, t.ID, t.Name, t.Artist, t.Album, t.URI); err != nil {
			return fmt.Errorf("failed to insert track %s: %w", t.ID, err)
		}
	}
	return nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrDraftNotFound, id)
	}
	return nil
}
