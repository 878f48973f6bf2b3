package journal

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/heirloom/internal/dbx"
	"github.com/dmitrijs2005/heirloom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, record *models.JournalRecord) error {
	query := `
		INSERT INTO journal (seq, body)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, record.Seq, record.Body); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.JournalRecord, error) {
	query := `
		SELECT seq, body, created_at
		FROM journal
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []*models.JournalRecord
	for rows.Next() {
		rec := &models.JournalRecord{}
		if err := rows.Scan(&rec.Seq, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return records, nil
}
