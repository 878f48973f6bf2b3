// Package identities declares the repository contract for API credentials.
package identities

import (
	"context"

	"github.com/dmitrijs2005/heirloom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByAddress(ctx context.Context, address string) (*models.Identity, error)
}
