package diagnosis

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Record) error
	// ListByUser devuelve los registros más recientes primero.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
