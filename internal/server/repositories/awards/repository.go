package awards

import (
	"context"

	"hamawards/internal/lifecycle"
	"hamawards/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, award *models.Award) (*models.Award, error)
	Update(ctx context.Context, award *models.Award) error
	GetByID(ctx context.Context, id int64) (*models.Award, error)
	List(ctx context.Context) ([]*models.Award, error)
	// Transition atomically moves an award from one status to another and
	// appends an audit entry. Fails with ErrInvalidTransition when the row
	// is no longer in the expected source status.
	Transition(ctx context.Context, id int64, from, to lifecycle.Status, entry models.AuditEntry) error
}
