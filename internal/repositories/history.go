package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/shared"
)

// HistoryRepository persists [models.SavedPlaylist] records. Records are append-only.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a save record and assigns its ID.
func (r *HistoryRepository) Create(record *models.SavedPlaylist) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "saved_playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO saved_playlists (id, sequence, playlist_id, name, track_count, failed_step, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		id,
		sequence,
		record.PlaylistID(),
		record.Name(),
		record.TrackCount(),
		record.FailedStep(),
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert save record: %w", err)
	}

	record.SetID(id)
	return nil
}

// Get retrieves a save record by ID.
func (r *HistoryRepository) Get(id string) (*models.SavedPlaylist, error) {
	query := `
		SELECT id, playlist_id, name, track_count, failed_step, created_at
		FROM saved_playlists
		WHERE id = ?
	`
	record, err := scanRecord(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("save record not found: %s", id)
	}
	return record, err
}

// List retrieves save records, newest first. Supported criteria: "limit" (int), "partial" (bool).
func (r *HistoryRepository) List(criteria map[string]any) ([]*models.SavedPlaylist, error) {
	query := `
		SELECT id, playlist_id, name, track_count, failed_step, created_at
		FROM saved_playlists
	`
	if partial, ok := criteria["partial"].(bool); ok && partial {
		query += ` WHERE failed_step != '' AND playlist_id != ''`
	}
	query += ` ORDER BY sequence DESC`

	limit, args := limitClause(criteria)
	rows, err := r.db.Query(query+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list save records: %w", err)
	}
	defer rows.Close()

	var records []*models.SavedPlaylist
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating save records: %w", err)
	}

	return records, nil
}

// Delete removes a save record by ID.
func (r *HistoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM saved_playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete save record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("save record not found: %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.SavedPlaylist, error) {
	var id, playlistID, name, failedStep string
	var trackCount int
	var createdAt time.Time

	if err := s.Scan(&id, &playlistID, &name, &trackCount, &failedStep, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan save record: %w", err)
	}
	return models.RestoreSavedPlaylist(id, playlistID, name, trackCount, failedStep, createdAt), nil
}
