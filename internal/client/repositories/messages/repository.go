package messages

import (
	"context"

	"github.com/dmitrijs2005/heirloom/internal/client/models"
)

// Repository describes the local cache of retrieved messages.
// Implementations are typically backed by a local SQLite database.
type Repository interface {
	// Save inserts a retrieved message or replaces an earlier copy of the
	// same (owner, idx) pair.
	Save(ctx context.Context, m *models.Message) error

	// GetAll lists cached messages, most recently retrieved first. Payloads
	// are not loaded; use Get for the full record.
	GetAll(ctx context.Context) ([]models.Message, error)

	// Get returns a single cached message by owner and index.
	Get(ctx context.Context, owner string, idx int) (*models.Message, error)
}
