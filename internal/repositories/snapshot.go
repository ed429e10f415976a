package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// SnapshotRepository implements [models.SnapshotStore] for dashboard snapshots.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts snap, assigning an ID and creation time when they are unset.
func (r *SnapshotRepository) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap.ID == "" {
		snap.ID = shared.GenerateID()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `INSERT INTO snapshots (id, created_at, payload) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, snap.ID, snap.CreatedAt.UTC(), string(payload)); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	query := `SELECT payload FROM snapshots WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// Latest retrieves the most recently created snapshot.
func (r *SnapshotRepository) Latest(ctx context.Context) (*models.Snapshot, error) {
	query := `SELECT payload FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query), "latest")
}

// List returns up to limit snapshots, newest first.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]*models.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT payload FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*models.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap, err := decodeSnapshot(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return out, nil
}

// Prune deletes all but the newest keep snapshots and returns how many were removed.
func (r *SnapshotRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", shared.ErrInvalidArgument)
	}

	query := `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`
	result, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func (r *SnapshotRepository) scanOne(row *sql.Row, id string) (*models.Snapshot, error) {
	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return decodeSnapshot(payload)
}

func decodeSnapshot(payload string) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
