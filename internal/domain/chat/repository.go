package chat

import (
	"context"
	"time"
)

type Repository interface {
	Append(ctx context.Context, m Message) error
	// Recent devuelve los últimos limit mensajes del usuario en orden cronológico.
	Recent(ctx context.Context, userID string, limit int) ([]Message, error)
	// DeleteBefore borra mensajes con CreatedAt < cutoff y devuelve cuántos.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
