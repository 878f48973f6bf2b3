package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/heirloom/internal/client/migrations"
	"github.com/dmitrijs2005/heirloom/internal/client/repositories/messages"
	"github.com/dmitrijs2005/heirloom/internal/client/repositories/session"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local cache repositories backed by one SQLite file.
type Repositories struct {
	Session  session.Repository
	Messages messages.Repository
	DB       *sql.DB
}

// RunMigrations applies the embedded client migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the local SQLite cache at dsn, applies
// migrations and returns the repositories bound to it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Session:  session.NewSQLiteRepository(db),
		Messages: messages.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
