package session

import (
	"context"

	"github.com/dmitrijs2005/heirloom/internal/client/models"
)

// Repository persists the login session between CLI runs.
type Repository interface {
	// Load returns the stored session, or nil if none is stored.
	Load(ctx context.Context) (*models.Session, error)

	// Save stores the session, replacing any previous one.
	Save(ctx context.Context, s *models.Session) error

	// Clear removes the stored session.
	Clear(ctx context.Context) error
}
