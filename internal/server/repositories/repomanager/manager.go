package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/heirloom/internal/dbx"
	"github.com/dmitrijs2005/heirloom/internal/server/repositories/identities"
	"github.com/dmitrijs2005/heirloom/internal/server/repositories/journal"
	"github.com/dmitrijs2005/heirloom/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Journal(db dbx.DBTX) journal.Repository
}
