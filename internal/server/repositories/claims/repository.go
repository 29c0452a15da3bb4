package claims

import (
	"context"

	"hamawards/internal/server/models"
)

type Repository interface {
	// Create records an issuance. A repeated claim for the same user, award
	// and level fails with ErrAlreadyClaimed.
	Create(ctx context.Context, claim *models.Claim) (*models.Claim, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Claim, error)
	LevelsByUserAward(ctx context.Context, userID, awardID int64) ([]string, error)
}
