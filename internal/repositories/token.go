package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/wrapped/internal/models"
)

// Keys of the persisted session in the client_state table.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// TokenRepository implements [models.TokenStore] on the client_state table.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Load returns the stored session, or the zero session when nothing is stored.
func (r *TokenRepository) Load(ctx context.Context) (models.Session, error) {
	query := `SELECT key, value FROM client_state WHERE key IN (?, ?)`

	rows, err := r.db.QueryContext(ctx, query, AccessTokenKey, RefreshTokenKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	var s models.Session
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Session{}, fmt.Errorf("failed to scan session: %w", err)
		}
		switch key {
		case AccessTokenKey:
			s.AccessToken = value
		case RefreshTokenKey:
			s.RefreshToken = value
		}
	}
	if err := rows.Err(); err != nil {
		return models.Session{}, fmt.Errorf("error iterating session rows: %w", err)
	}

	return s, nil
}

// Save replaces both tokens in a single transaction.
func (r *TokenRepository) Save(ctx context.Context, s models.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	for _, kv := range [][2]string{{AccessTokenKey, s.AccessToken}, {RefreshTokenKey, s.RefreshToken}} {
		if _, err := tx.ExecContext(ctx, query, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("failed to store %s: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (r *TokenRepository) Clear(ctx context.Context) error {
	query := `DELETE FROM client_state WHERE key IN (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
