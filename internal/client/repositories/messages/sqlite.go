package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/heirloom/internal/client/models"
	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts a cached message by (owner, idx). A re-retrieval of the same
// message overwrites the earlier copy.
func (r *SQLiteRepository) Save(ctx context.Context, m *models.Message) error {
	query := `INSERT INTO messages (owner, idx, annotation, payload, key_share, commitment, retrieved_at)
			values (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner, idx) DO UPDATE SET annotation = excluded.annotation,
				payload = excluded.payload,
				key_share = excluded.key_share,
				commitment = excluded.commitment,
				retrieved_at = excluded.retrieved_at
	`
	_, err := r.db.ExecContext(ctx, query,
		m.Owner, m.Idx, m.Annotation, m.Payload, m.KeyShare, m.Commitment, m.RetrievedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}
	return nil
}

// GetAll lists cached messages without payloads, newest retrievals first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Message, error) {
	query := `select owner, idx, annotation, retrieved_at from messages order by retrieved_at desc`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(&item.Owner, &item.Idx, &item.Annotation, &item.RetrievedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the full cached record for a single message.
func (r *SQLiteRepository) Get(ctx context.Context, owner string, idx int) (*models.Message, error) {
	query := `select owner, idx, annotation, payload, key_share, commitment, retrieved_at
		from messages where owner=? and idx=?`
	row := r.db.QueryRowContext(ctx, query, owner, idx)

	m := &models.Message{}
	if err := row.Scan(&m.Owner, &m.Idx, &m.Annotation, &m.Payload, &m.KeyShare, &m.Commitment, &m.RetrievedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return m, nil
}
