package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hamawards/internal/adif"
	"hamawards/internal/common"
	"hamawards/internal/dbx"
	"hamawards/internal/lifecycle"
	"hamawards/internal/logging"
	"hamawards/internal/rules"
	"hamawards/internal/server/models"
	"hamawards/internal/server/repositories/repomanager"
)

type AwardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAwardService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AwardService {
	return &AwardService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "awards"),
	}
}

func (s *AwardService) actor(p Principal, award *models.Award) lifecycle.Actor {
	return lifecycle.Actor{
		UserID:    p.UserID,
		Callsign:  p.Callsign,
		Role:      lifecycle.Role(p.Role),
		IsCreator: award != nil && award.CreatorID == p.UserID,
	}
}

func canManageAwards(p Principal) bool {
	return p.Role == string(lifecycle.RoleAdmin) || p.Role == string(lifecycle.RoleAwardAdmin)
}

// Create stores a new award definition in draft. The rule document is
// validated structurally before anything is written.
func (s *AwardService) Create(ctx context.Context, p Principal, award *models.Award) (*models.Award, error) {
	if !canManageAwards(p) {
		return nil, common.ErrForbidden
	}
	if award.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if _, err := rules.ParseDocument(award.Rules); err != nil {
		return nil, err
	}

	award.Status = lifecycle.StatusDraft
	award.CreatorID = p.UserID
	award.AuditLog = []models.AuditEntry{{Action: "created", Actor: p.Callsign, At: time.Now().UTC()}}
	if len(award.Layout) == 0 {
		award.Layout = []byte(`{}`)
	}
	if len(award.Rules) == 0 {
		award.Rules = []byte(`[]`)
	}

	repo := s.repomanager.Awards(s.db)
	created, err := repo.Create(ctx, award)
	if err != nil {
		return nil, fmt.Errorf("error creating award: %w", err)
	}

	s.logger.Info(ctx, "award created", "award_id", created.ID, "creator", p.Callsign)

	return created, nil
}

// Update edits an award definition. Only the creator or an admin may edit.
// When a non-admin edits an approved award it drops back to pending so the
// change passes review again before operators see it.
func (s *AwardService) Update(ctx context.Context, p Principal, award *models.Award) (*models.Award, error) {
	if !canManageAwards(p) {
		return nil, common.ErrForbidden
	}
	if _, err := rules.ParseDocument(award.Rules); err != nil {
		return nil, err
	}

	var updated *models.Award
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Awards(tx)

		existing, err := repo.GetByID(ctx, award.ID)
		if err != nil {
			return err
		}
		if existing.CreatorID != p.UserID && p.Role != string(lifecycle.RoleAdmin) {
			return common.ErrForbidden
		}

		existing.Name = award.Name
		existing.Description = award.Description
		existing.BgURL = award.BgURL
		existing.Rules = award.Rules
		existing.Layout = award.Layout
		existing.AuditLog = append(existing.AuditLog,
			models.AuditEntry{Action: "edited", Actor: p.Callsign, At: time.Now().UTC()})

		if existing.Status == lifecycle.StatusApproved && p.Role != string(lifecycle.RoleAdmin) {
			existing.Status = lifecycle.StatusPending
			existing.AuditLog = append(existing.AuditLog,
				models.AuditEntry{Action: "submitted", Actor: p.Callsign, At: time.Now().UTC(),
					Reason: "edited while approved"})
		}

		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Get returns one award, subject to visibility: non-approved awards exist
// only for their creator and privileged roles, everyone else sees not found.
func (s *AwardService) Get(ctx context.Context, p Principal, id int64) (*models.Award, error) {
	repo := s.repomanager.Awards(s.db)
	award, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.Visible(award.Status, s.actor(p, award)) {
		return nil, common.ErrNotFound
	}
	return award, nil
}

// List returns the awards visible to the caller.
func (s *AwardService) List(ctx context.Context, p Principal) ([]*models.Award, error) {
	repo := s.repomanager.Awards(s.db)
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Award, 0, len(all))
	for _, award := range all {
		if lifecycle.Visible(award.Status, s.actor(p, award)) {
			visible = append(visible, award)
		}
	}
	return visible, nil
}

// ApplyLifecycle runs one review action against an award. The permission and
// transition rules live in the lifecycle package; persistence is a guarded
// update so two concurrent reviewers cannot both win.
func (s *AwardService) ApplyLifecycle(ctx context.Context, p Principal, awardID int64, action lifecycle.Action, reason string) (*models.Award, error) {
	var result *models.Award

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Awards(tx)

		award, err := repo.GetByID(ctx, awardID)
		if err != nil {
			return err
		}

		to, audited, err := lifecycle.Apply(award.Status, action, s.actor(p, award), reason)
		if err != nil {
			return err
		}

		entry := models.AuditEntry{Action: audited, Actor: p.Callsign, At: time.Now().UTC(), Reason: reason}
		if err := repo.Transition(ctx, awardID, award.Status, to, entry); err != nil {
			return err
		}

		award.Status = to
		award.AuditLog = append(award.AuditLog, entry)
		result = award
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "award transition", "award_id", awardID, "action", string(action), "actor", p.Callsign)

	return result, nil
}

// Check evaluates the caller's logbook against an award's rules. The verdict
// also carries the levels the caller already holds so clients can render
// claim buttons without a second request.
func (s *AwardService) Check(ctx context.Context, p Principal, awardID int64, includeBreakdown bool) (*rules.Verdict, error) {
	award, err := s.Get(ctx, p, awardID)
	if err != nil {
		return nil, err
	}

	schema, err := rules.ParseDocument(award.Rules)
	if err != nil {
		return nil, err
	}

	qsos, err := s.repomanager.QSOs(s.db).ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	verdict := rules.Evaluate(schema, recordsOf(qsos), includeBreakdown)

	levels, err := s.repomanager.Claims(s.db).LevelsByUserAward(ctx, p.UserID, awardID)
	if err != nil {
		return nil, err
	}
	if levels != nil {
		verdict.ClaimedLevels = levels
	}

	return verdict, nil
}

// Claim issues an award level to the caller. Eligibility is always
// recomputed server-side inside the transaction; a client cannot claim a
// level its log does not support. Claiming the same level twice is reported
// as already claimed, not as a failure.
func (s *AwardService) Claim(ctx context.Context, p Principal, awardID int64) (*models.Claim, error) {
	var claim *models.Claim

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		awardRepo := s.repomanager.Awards(tx)

		award, err := awardRepo.GetByID(ctx, awardID)
		if err != nil {
			return err
		}
		if award.Status != lifecycle.StatusApproved {
			return common.ErrNotFound
		}

		schema, err := rules.ParseDocument(award.Rules)
		if err != nil {
			return err
		}

		qsos, err := s.repomanager.QSOs(tx).ListByUser(ctx, p.UserID)
		if err != nil {
			return err
		}

		verdict := rules.Evaluate(schema, recordsOf(qsos), false)
		if !verdict.Eligible {
			return common.ErrNotEligible
		}

		claim = &models.Claim{
			UserID:     p.UserID,
			AwardID:    awardID,
			Level:      verdict.AchievedLevel.Name,
			TrackingID: uuid.NewString(),
		}

		created, err := s.repomanager.Claims(tx).Create(ctx, claim)
		if err != nil {
			return err
		}
		claim = created
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyClaimed) {
			return nil, common.ErrAlreadyClaimed
		}
		return nil, err
	}

	s.logger.Info(ctx, "award claimed",
		"award_id", awardID, "user_id", p.UserID,
		"level", claim.Level, "tracking_id", claim.TrackingID)

	return claim, nil
}

// ClaimsForUser lists the caller's issued awards, newest first.
func (s *AwardService) ClaimsForUser(ctx context.Context, p Principal) ([]*models.Claim, error) {
	return s.repomanager.Claims(s.db).ListByUser(ctx, p.UserID)
}

func recordsOf(qsos []*models.QSO) []adif.Record {
	records := make([]adif.Record, 0, len(qsos))
	for _, q := range qsos {
		records = append(records, q.Record)
	}
	return records
}
