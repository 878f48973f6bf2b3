package confidential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/heirloom/internal/cryptox"
	"github.com/dmitrijs2005/heirloom/internal/dbx"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/google/uuid"
)

// PostgresStore persists confidential values in PostgreSQL. Client-submitted
// ciphertexts are sealed once more under the server master key before they
// hit the database, so a database dump alone reveals nothing.
type PostgresStore struct {
	db        dbx.DBTX
	masterKey []byte
}

func NewPostgresStore(db dbx.DBTX, masterKey []byte) *PostgresStore {
	return &PostgresStore{db: db, masterKey: masterKey}
}

func (s *PostgresStore) Ingest(ctx context.Context, owner string, ciphertext []byte) (protocol.Handle, error) {
	sealed, nonce, err := cryptox.Seal(ciphertext, s.masterKey)
	if err != nil {
		return "", fmt.Errorf("sealing value: %w", err)
	}
	handle := protocol.Handle(uuid.New().String())
	query := `
		INSERT INTO confidential_values (handle, owner, ciphertext, nonce)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, string(handle), owner, sealed, nonce); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return handle, nil
}

func (s *PostgresStore) Grant(ctx context.Context, handle protocol.Handle, grantee string) error {
	var exists bool
	checkQuery := `
		SELECT EXISTS (SELECT 1 FROM confidential_values WHERE handle = $1)
	`
	if err := s.db.QueryRowContext(ctx, checkQuery, string(handle)).Scan(&exists); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return ErrUnknownHandle
	}
	// ON CONFLICT keeps Grant idempotent for journal replay.
	query := `
		INSERT INTO confidential_grants (handle, grantee)
		VALUES ($1, $2)
		ON CONFLICT (handle, grantee) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, string(handle), grantee); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Open(ctx context.Context, handle protocol.Handle, caller string) ([]byte, error) {
	query := `
		SELECT owner, ciphertext, nonce
		FROM confidential_values
		WHERE handle = $1
	`
	var owner string
	var sealed, nonce []byte
	if err := s.db.QueryRowContext(ctx, query, string(handle)).Scan(&owner, &sealed, &nonce); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownHandle
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if caller != owner {
		var granted bool
		grantQuery := `
			SELECT EXISTS (SELECT 1 FROM confidential_grants WHERE handle = $1 AND grantee = $2)
		`
		if err := s.db.QueryRowContext(ctx, grantQuery, string(handle), caller).Scan(&granted); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if !granted {
			return nil, ErrNoGrant
		}
	}
	plain, err := cryptox.Unseal(sealed, nonce, s.masterKey)
	if err != nil {
		return nil, fmt.Errorf("unsealing value: %w", err)
	}
	return plain, nil
}
