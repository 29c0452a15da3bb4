package users

import (
	"context"

	"hamawards/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByCallsign(ctx context.Context, callsign string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
