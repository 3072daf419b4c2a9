package postgres

import (
	"context"
	"database/sql"
	"time"

	"safedose-api/internal/domain/diagnosis"
)

type DiagnosisRepo struct {
	db *sql.DB
}

func NewDiagnosisRepo(db *sql.DB) *DiagnosisRepo {
	return &DiagnosisRepo{db: db}
}

func (r *DiagnosisRepo) Create(ctx context.Context, rec diagnosis.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diagnosis_records (
			id, user_id, query, transcription, analysis, summary, file_type, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID,
		rec.UserID,
		rec.Query,
		rec.Transcription,
		rec.Analysis,
		rec.Summary,
		rec.FileType,
		rec.CreatedAt,
	)
	return err
}

func (r *DiagnosisRepo) ListByUser(ctx context.Context, userID string, limit int) ([]diagnosis.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, query, transcription, analysis, summary, file_type, created_at
		FROM diagnosis_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]diagnosis.Record, 0)
	for rows.Next() {
		var rec diagnosis.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Query,
			&rec.Transcription,
			&rec.Analysis,
			&rec.Summary,
			&rec.FileType,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *DiagnosisRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diagnosis_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
