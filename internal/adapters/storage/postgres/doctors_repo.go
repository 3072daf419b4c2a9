package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"safedose-api/internal/domain/doctors"
)

type DoctorsRepo struct {
	db *sql.DB
}

func NewDoctorsRepo(db *sql.DB) *DoctorsRepo {
	return &DoctorsRepo{db: db}
}

func (r *DoctorsRepo) Create(ctx context.Context, d doctors.Doctor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctors (
			id, name, specialty, location, email, phone, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		d.ID,
		d.Name,
		d.Specialty,
		d.Location,
		d.Email,
		d.Phone,
		d.CreatedAt,
	)
	return err
}

func (r *DoctorsRepo) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doctors.Doctor{}, doctors.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, specialty, location, email, phone, created_at
		FROM doctors
		WHERE id = $1
	`, id)

	var d doctors.Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Location, &d.Email, &d.Phone, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doctors.Doctor{}, doctors.ErrNotFound
		}
		return doctors.Doctor{}, err
	}
	return d, nil
}

func (r *DoctorsRepo) List(ctx context.Context, specialty string) ([]doctors.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, specialty, location, email, phone, created_at
		FROM doctors
		WHERE $1 = '' OR lower(specialty) = lower($1)
		ORDER BY name ASC, id ASC
	`, strings.TrimSpace(specialty))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doctors.Doctor, 0)
	for rows.Next() {
		var d doctors.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Location, &d.Email, &d.Phone, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
