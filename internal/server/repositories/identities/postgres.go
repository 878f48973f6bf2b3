package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/dbx"
	"github.com/dmitrijs2005/heirloom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {

	query :=
		`INSERT INTO identities (address, salt, verifier)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		identity.Address, identity.Salt, identity.Verifier).Scan(&identity.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) GetByAddress(ctx context.Context, address string) (*models.Identity, error) {
	query :=
		`SELECT id, address, verifier, salt FROM identities
		 WHERE address = $1
		 `

	identity := &models.Identity{}
	err := r.db.QueryRowContext(ctx, query, address).Scan(&identity.ID, &identity.Address, &identity.Verifier, &identity.Salt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}
