package claims

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

	rows := sqlmock.NewRows([]string{"id", "issued_at"}).AddRow(int64(1), time.Now())
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+user_awards.*RETURNING\s+id,\s*issued_at`).
		WithArgs(int64(5), int64(3), "Gold", "trk-1").
		WillReturnRows(rows)

	c := &models.Claim{UserID: 5, AwardID: 3, Level: "Gold", TrackingID: "trk-1"}
	got, err := repo.Create(context.Background(), c)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 1 || got.IssuedAt.IsZero() {
		t.Fatalf("unexpected claim: %+v", got)
	}
}

func TestCreate_AlreadyClaimed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+user_awards`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	c := &models.Claim{UserID: 5, AwardID: 3, Level: "Gold", TrackingID: "trk-2"}
	_, err := repo.Create(context.Background(), c)
	if !errors.Is(err, common.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "user_id", "award_id", "level", "tracking_id", "issued_at", "name", "bg_url"}
	rows := sqlmock.NewRows(cols).
		AddRow(int64(2), int64(5), int64(3), "Gold", "trk-2", time.Now(), "WAR", "https://s3/bg.png").
		AddRow(int64(1), int64(5), int64(3), "Silver", "trk-1", time.Now(), "WAR", "https://s3/bg.png")
	mock.ExpectQuery(`(?s)SELECT\s+ua\.id,.*JOIN\s+awards\s+a\s+ON\s+a\.id\s*=\s*ua\.award_id`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[0].AwardName != "WAR" || got[0].Level != "Gold" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestLevelsByUserAward(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"level"}).AddRow("Gold").AddRow("Silver")
	mock.ExpectQuery(`SELECT\s+level\s+FROM\s+user_awards`).
		WithArgs(int64(5), int64(3)).
		WillReturnRows(rows)

	got, err := repo.LevelsByUserAward(context.Background(), 5, 3)
	if err != nil {
		t.Fatalf("LevelsByUserAward error: %v", err)
	}
	if len(got) != 2 || got[0] != "Gold" {
		t.Fatalf("unexpected levels: %v", got)
	}
}
