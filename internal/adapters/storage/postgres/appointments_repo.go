package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"safedose-api/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, user_id,
	doctor_id, doctor_name,
	patient_name, patient_email, whatsapp,
	appt_date, appt_time, starts_at,
	status, calendar_event_id, calendar_event_link,
	created_at, updated_at`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		a.ID,
		a.UserID,
		a.DoctorID,
		a.DoctorName,
		a.PatientName,
		a.PatientEmail,
		a.WhatsApp,
		a.Date,
		a.Time,
		a.StartsAt,
		string(a.Status),
		a.CalendarEventID,
		a.CalendarEventLink,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// Update solo toca los campos mutables: estado, evento de calendario y updated_at.
func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			status = $2,
			calendar_event_id = $3,
			calendar_event_link = $4,
			updated_at = $5
		WHERE id = $1
	`,
		a.ID,
		string(a.Status),
		a.CalendarEventID,
		a.CalendarEventLink,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, appointments.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentsRepo) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY starts_at ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(s rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var status string
	err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.DoctorID,
		&a.DoctorName,
		&a.PatientName,
		&a.PatientEmail,
		&a.WhatsApp,
		&a.Date,
		&a.Time,
		&a.StartsAt,
		&status,
		&a.CalendarEventID,
		&a.CalendarEventLink,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	a.Status = appointments.Status(status)
	return a, err
}
