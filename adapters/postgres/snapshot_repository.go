// Package postgres persists session snapshots for the optional storage
// collaborator. The snapshot body is stored as JSONB; the core defines the
// shape, this package only moves it.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chartlab/domain/core"
	"chartlab/domain/snapshot"
	apperrors "chartlab/internal/errors"
	"chartlab/ports"
)

// snapshotRepository implements ports.SnapshotRepository
type snapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a snapshot repository over an open pool
func NewSnapshotRepository(db *sqlx.DB) ports.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// EnsureSchema creates the snapshots table when missing
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS session_snapshots (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		taken_at   TIMESTAMPTZ NOT NULL,
		body       JSONB NOT NULL
	)`)
	if err != nil {
		return apperrors.StorageError("failed to ensure snapshot schema", err)
	}
	return nil
}

// Save inserts or replaces a snapshot
func (r *snapshotRepository) Save(ctx context.Context, snap *snapshot.SessionSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `INSERT INTO session_snapshots (id, session_id, taken_at, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET session_id = $2, taken_at = $3, body = $4`

	if _, err := r.db.ExecContext(ctx, query, snap.ID, snap.SessionID, snap.TakenAt, body); err != nil {
		return apperrors.StorageError("failed to save snapshot", err)
	}
	return nil
}

// Load retrieves a snapshot by ID
func (r *snapshotRepository) Load(ctx context.Context, id core.SnapshotID) (*snapshot.SessionSnapshot, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT body FROM session_snapshots WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("snapshot")
	}
	if err != nil {
		return nil, apperrors.StorageError("failed to load snapshot", err)
	}

	var snap snapshot.SessionSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ListRecent returns snapshots newest first
func (r *snapshotRepository) ListRecent(ctx context.Context, limit int) ([]*snapshot.SessionSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT body FROM session_snapshots ORDER BY taken_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.StorageError("failed to list snapshots", err)
	}
	defer rows.Close()

	var out []*snapshot.SessionSnapshot
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, apperrors.StorageError("failed to scan snapshot row", err)
		}
		var snap snapshot.SessionSnapshot
		if err := json.Unmarshal(body, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		out = append(out, &snap)
	}
	return out, rows.Err()
}

// Delete removes a snapshot by ID
func (r *snapshotRepository) Delete(ctx context.Context, id core.SnapshotID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM session_snapshots WHERE id = $1`, id); err != nil {
		return apperrors.StorageError("failed to delete snapshot", err)
	}
	return nil
}
