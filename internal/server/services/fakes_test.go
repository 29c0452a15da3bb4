package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"hamawards/internal/common"
	"hamawards/internal/dbx"
	"hamawards/internal/lifecycle"
	"hamawards/internal/logging"
	"hamawards/internal/server/models"
	"hamawards/internal/server/repositories/awards"
	"hamawards/internal/server/repositories/claims"
	"hamawards/internal/server/repositories/qsos"
	"hamawards/internal/server/repositories/users"
)

// In-memory repository fakes. The repomanager fake hands out the same
// instances regardless of the DBTX, so transactional and plain calls see one
// shared state, which is what the tests need.

type fakeUsersRepo struct {
	nextID  int64
	byLogin map[string]*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byLogin: map[string]*models.User{}}
}

func (r *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := r.byLogin[user.Callsign]; ok {
		return nil, common.ErrAlreadyExists
	}
	r.nextID++
	user.ID = r.nextID
	r.byLogin[user.Callsign] = user
	return user, nil
}

func (r *fakeUsersRepo) GetByCallsign(ctx context.Context, callsign string) (*models.User, error) {
	if u, ok := r.byLogin[callsign]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range r.byLogin {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeQSOsRepo struct {
	nextID int64
	rows   []*models.QSO
	seen   map[string]struct{}
}

func newFakeQSOsRepo() *fakeQSOsRepo {
	return &fakeQSOsRepo{seen: map[string]struct{}{}}
}

func (r *fakeQSOsRepo) Insert(ctx context.Context, qso *models.QSO) (bool, error) {
	key := fmt.Sprintf("%d|%s", qso.UserID, qso.Record.DedupKey())
	if _, ok := r.seen[key]; ok {
		return false, nil
	}
	r.seen[key] = struct{}{}
	r.nextID++
	qso.ID = r.nextID
	r.rows = append(r.rows, qso)
	return true, nil
}

func (r *fakeQSOsRepo) ListByUser(ctx context.Context, userID int64) ([]*models.QSO, error) {
	var result []*models.QSO
	for _, q := range r.rows {
		if q.UserID == userID {
			result = append(result, q)
		}
	}
	return result, nil
}

func (r *fakeQSOsRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	list, _ := r.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

func (r *fakeQSOsRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	var kept []*models.QSO
	var deleted int64
	for _, q := range r.rows {
		if q.UserID == userID {
			deleted++
			delete(r.seen, fmt.Sprintf("%d|%s", q.UserID, q.Record.DedupKey()))
			continue
		}
		kept = append(kept, q)
	}
	r.rows = kept
	return deleted, nil
}

type fakeAwardsRepo struct {
	nextID int64
	byID   map[int64]*models.Award
}

func newFakeAwardsRepo() *fakeAwardsRepo {
	return &fakeAwardsRepo{byID: map[int64]*models.Award{}}
}

func (r *fakeAwardsRepo) Create(ctx context.Context, award *models.Award) (*models.Award, error) {
	r.nextID++
	award.ID = r.nextID
	r.byID[award.ID] = copyAward(award)
	return award, nil
}

func (r *fakeAwardsRepo) Update(ctx context.Context, award *models.Award) error {
	if _, ok := r.byID[award.ID]; !ok {
		return common.ErrNotFound
	}
	r.byID[award.ID] = copyAward(award)
	return nil
}

func (r *fakeAwardsRepo) GetByID(ctx context.Context, id int64) (*models.Award, error) {
	if a, ok := r.byID[id]; ok {
		return copyAward(a), nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeAwardsRepo) List(ctx context.Context) ([]*models.Award, error) {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*models.Award, 0, len(ids))
	for _, id := range ids {
		result = append(result, copyAward(r.byID[id]))
	}
	return result, nil
}

func (r *fakeAwardsRepo) Transition(ctx context.Context, id int64, from, to lifecycle.Status, entry models.AuditEntry) error {
	a, ok := r.byID[id]
	if !ok || a.Status != from {
		return common.ErrInvalidTransition
	}
	a.Status = to
	a.AuditLog = append(a.AuditLog, entry)
	return nil
}

func copyAward(a *models.Award) *models.Award {
	c := *a
	c.AuditLog = append([]models.AuditEntry(nil), a.AuditLog...)
	return &c
}

type fakeClaimsRepo struct {
	nextID int64
	rows   []*models.Claim
}

func (r *fakeClaimsRepo) Create(ctx context.Context, claim *models.Claim) (*models.Claim, error) {
	for _, c := range r.rows {
		if c.UserID == claim.UserID && c.AwardID == claim.AwardID && c.Level == claim.Level {
			return nil, common.ErrAlreadyClaimed
		}
	}
	r.nextID++
	claim.ID = r.nextID
	r.rows = append(r.rows, claim)
	return claim, nil
}

func (r *fakeClaimsRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Claim, error) {
	var result []*models.Claim
	for _, c := range r.rows {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeClaimsRepo) LevelsByUserAward(ctx context.Context, userID, awardID int64) ([]string, error) {
	var result []string
	for _, c := range r.rows {
		if c.UserID == userID && c.AwardID == awardID {
			result = append(result, c.Level)
		}
	}
	sort.Strings(result)
	return result, nil
}

type fakeRepoManager struct {
	users  *fakeUsersRepo
	qsos   *fakeQSOsRepo
	awards *fakeAwardsRepo
	claims *fakeClaimsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:  newFakeUsersRepo(),
		qsos:   newFakeQSOsRepo(),
		awards: newFakeAwardsRepo(),
		claims: &fakeClaimsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) QSOs(db dbx.DBTX) qsos.Repository                    { return m.qsos }
func (m *fakeRepoManager) Awards(db dbx.DBTX) awards.Repository                { return m.awards }
func (m *fakeRepoManager) Claims(db dbx.DBTX) claims.Repository                { return m.claims }

// newTxDB returns a sqlmock database that tolerates any number of
// transactions; the fakes above never touch it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
