package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"hamawards/internal/common"
	"hamawards/internal/dbx"
	"hamawards/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, claim *models.Claim) (*models.Claim, error) {
	query :=
		`INSERT INTO user_awards (user_id, award_id, level, tracking_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, issued_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		claim.UserID, claim.AwardID, claim.Level, claim.TrackingID).
		Scan(&claim.ID, &claim.IssuedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return claim, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Claim, error) {
	query :=
		`SELECT ua.id, ua.user_id, ua.award_id, ua.level, ua.tracking_id, ua.issued_at,
		        a.name, a.bg_url
		 FROM user_awards ua
		 JOIN awards a ON a.id = ua.award_id
		 WHERE ua.user_id = $1
		 ORDER BY ua.issued_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Claim
	for rows.Next() {
		claim := &models.Claim{}
		err := rows.Scan(&claim.ID, &claim.UserID, &claim.AwardID,
			&claim.Level, &claim.TrackingID, &claim.IssuedAt,
			&claim.AwardName, &claim.BgURL)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) LevelsByUserAward(ctx context.Context, userID, awardID int64) ([]string, error) {
	query :=
		`SELECT level FROM user_awards
		 WHERE user_id = $1 AND award_id = $2
		 ORDER BY level
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, awardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var level string
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
