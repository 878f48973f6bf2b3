package session

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/heirloom/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE session (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestLoad_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	s, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSaveLoadClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := &models.Session{Address: "alice", AccessToken: "at1", RefreshToken: "rt1"}
	require.NoError(t, r.Save(ctx, in))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, got)

	// saving again overwrites
	in2 := &models.Session{Address: "alice", AccessToken: "at2", RefreshToken: "rt2"}
	require.NoError(t, r.Save(ctx, in2))

	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at2", got.AccessToken)

	require.NoError(t, r.Clear(ctx))
	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
