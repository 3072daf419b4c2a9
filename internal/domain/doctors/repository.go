package doctors

import "context"

type Repository interface {
	Create(ctx context.Context, d Doctor) error
	GetByID(ctx context.Context, id string) (Doctor, error)
	// List filtra por especialidad si no está vacía (case-insensitive).
	List(ctx context.Context, specialty string) ([]Doctor, error)
}
