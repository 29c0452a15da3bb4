package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"hamawards/internal/common"
	"hamawards/internal/server/models"
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

	q := `(?s)^INSERT\s+INTO\s+users\s*\(callsign,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now)
	mock.ExpectQuery(q).
		WithArgs("UA1ABC", "hash", "user").
		WillReturnRows(rows)

	u := &models.User{Callsign: "UA1ABC", PasswordHash: "hash", Role: "user"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("UA1ABC", "hash", "user").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Callsign: "UA1ABC", PasswordHash: "hash", Role: "user"})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetByCallsign_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "callsign", "password_hash", "role", "created_at"}).
		AddRow(int64(1), "UA1ABC", "hash", "admin", time.Now())
	mock.ExpectQuery(`SELECT\s+id,\s*callsign,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+callsign`).
		WithArgs("UA1ABC").
		WillReturnRows(rows)

	got, err := repo.GetByCallsign(context.Background(), "UA1ABC")
	if err != nil {
		t.Fatalf("GetByCallsign error: %v", err)
	}
	if got.ID != 1 || got.Role != "admin" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByCallsign_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*callsign`).
		WithArgs("GHOST").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByCallsign(context.Background(), "GHOST")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*callsign`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
