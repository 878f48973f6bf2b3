package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/heirloom/internal/client/models"
	"github.com/dmitrijs2005/heirloom/internal/dbx"
)

const (
	keyAddress      = "address"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// SQLiteRepository stores the session as key/value rows in the session table.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

// Load returns the stored session, or nil when no address is stored.
func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	address, err := r.get(ctx, keyAddress)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, nil
	}

	access, err := r.get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := r.get(ctx, keyRefreshToken)
	if err != nil {
		return nil, err
	}

	return &models.Session{Address: address, AccessToken: access, RefreshToken: refresh}, nil
}

// Save stores the session, replacing any previous one.
func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	if err := r.set(ctx, keyAddress, s.Address); err != nil {
		return err
	}
	if err := r.set(ctx, keyAccessToken, s.AccessToken); err != nil {
		return err
	}
	return r.set(ctx, keyRefreshToken, s.RefreshToken)
}

// Clear removes the stored session.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
