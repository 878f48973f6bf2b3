// Package journal declares the repository contract for the transaction
// journal. The journal is the source of truth: the in-memory state is a pure
// function of the records it holds.
package journal

import (
	"context"

	"github.com/dmitrijs2005/heirloom/internal/server/models"
)

type Repository interface {
	// Append stores a record. Seq values must arrive strictly increasing;
	// a duplicate seq is a conflict and must fail.
	Append(ctx context.Context, record *models.JournalRecord) error

	// SelectAll returns every record ordered by seq ascending.
	SelectAll(ctx context.Context) ([]*models.JournalRecord, error)
}
