package postgres

import (
	"context"
	"database/sql"
	"time"

	"safedose-api/internal/domain/chat"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Append(ctx context.Context, m chat.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, user_id, role, text, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, m.ID, m.UserID, string(m.Role), m.Text, m.CreatedAt)
	return err
}

// Recent trae los últimos limit mensajes y los devuelve en orden cronológico.
func (r *ChatRepo) Recent(ctx context.Context, userID string, limit int) ([]chat.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, text, created_at
		FROM (
			SELECT id, user_id, role, text, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Message, 0, limit)
	for rows.Next() {
		var m chat.Message
		var role string
		if err := rows.Scan(&m.ID, &m.UserID, &role, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = chat.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ChatRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
