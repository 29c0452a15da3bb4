package qsos

import (
	"context"

	"hamawards/internal/server/models"
)

type Repository interface {
	// Insert stores one contact. Returns false when the row was dropped by
	// the per-user deduplication constraint.
	Insert(ctx context.Context, qso *models.QSO) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.QSO, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
