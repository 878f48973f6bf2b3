package identities

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+identities\s*\(address,\s*salt,\s*verifier\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id\s*$`

	rows := sqlmock.NewRows([]string{"id"}).AddRow("42")
	mock.ExpectQuery(q).
		WithArgs("acct-1", []byte("salt"), []byte("verifier")).
		WillReturnRows(rows)

	id := &models.Identity{Address: "acct-1", Salt: []byte("salt"), Verifier: []byte("verifier")}
	got, err := repo.Create(context.Background(), id)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "42" || got.Address != "acct-1" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+identities\b`

	mock.ExpectQuery(q).
		WithArgs("acct-1", []byte("salt"), []byte("verifier")).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Identity{Address: "acct-1", Salt: []byte("salt"), Verifier: []byte("verifier")})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestGetByAddress_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*address,\s*verifier,\s*salt\s+FROM\s+identities\s+WHERE\s+address\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "address", "verifier", "salt"}).
		AddRow("42", "acct-1", []byte("verifier"), []byte("salt"))
	mock.ExpectQuery(q).
		WithArgs("acct-1").
		WillReturnRows(rows)

	got, err := repo.GetByAddress(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("GetByAddress error: %v", err)
	}
	if got.ID != "42" || got.Address != "acct-1" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestGetByAddress_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*address,\s*verifier,\s*salt\s+FROM\s+identities\b`

	mock.ExpectQuery(q).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByAddress(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
