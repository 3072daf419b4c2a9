package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedose-api/internal/domain/appointments"
	"safedose-api/internal/domain/chat"
	"safedose-api/internal/domain/diagnosis"
	"safedose-api/internal/domain/doctors"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var doctorCols = []string{"id", "name", "specialty", "location", "email", "phone", "created_at"}

func TestDoctorsRepoGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoctorsRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM doctors")).
		WithArgs("d-404").
		WillReturnRows(sqlmock.NewRows(doctorCols))

	_, err := repo.GetByID(context.Background(), "d-404")
	assert.ErrorIs(t, err, doctors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorsRepoListBySpecialty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoctorsRepo(db)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("lower(specialty) = lower($1)")).
		WithArgs("Cardiology").
		WillReturnRows(sqlmock.NewRows(doctorCols).
			AddRow("d-1", "Dr. Rao", "Cardiology", "Pune", "rao@clinic.test", "", now))

	out, err := repo.List(context.Background(), " Cardiology ")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Dr. Rao", out[0].Name)
	assert.Equal(t, now, out[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentsRepoUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), appointments.Appointment{ID: "a-1", Status: appointments.StatusCancelled})
	assert.ErrorIs(t, err, appointments.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentsRepoCreateAndGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := appointments.Appointment{
		ID:           "a-1",
		UserID:       "u-1",
		DoctorID:     "d-1",
		DoctorName:   "Dr. Rao",
		PatientName:  "Asha",
		PatientEmail: "asha@example.test",
		Date:         "2026-03-02",
		Time:         "10:30",
		StartsAt:     now.Add(24 * time.Hour),
		Status:       appointments.StatusBooked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(a.ID, a.UserID, a.DoctorID, a.DoctorName, a.PatientName, a.PatientEmail, a.WhatsApp,
			a.Date, a.Time, a.StartsAt, "booked", "", "", a.CreatedAt, a.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), a))

	cols := []string{
		"id", "user_id", "doctor_id", "doctor_name", "patient_name", "patient_email", "whatsapp",
		"appt_date", "appt_time", "starts_at", "status", "calendar_event_id", "calendar_event_link",
		"created_at", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = $1")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			a.ID, a.UserID, a.DoctorID, a.DoctorName, a.PatientName, a.PatientEmail, a.WhatsApp,
			a.Date, a.Time, a.StartsAt, "booked", "evt-1", "https://cal.test/evt-1", a.CreatedAt, a.UpdatedAt,
		))

	got, err := repo.GetByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusBooked, got.Status)
	assert.Equal(t, "evt-1", got.CalendarEventID)
	assert.Equal(t, a.StartsAt, got.StartsAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepoRecentAndPrune(t *testing.T) {
	db, mock := newMock(t)
	repo := NewChatRepo(db)
	t0 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2")).
		WithArgs("u-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "text", "created_at"}).
			AddRow("m-1", "u-1", "user", "hola", t0).
			AddRow("m-2", "u-1", "model", "hi", t0.Add(time.Second)))

	msgs, err := repo.Recent(context.Background(), "u-1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.Equal(t, chat.RoleModel, msgs[1].Role)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM chat_messages")).
		WithArgs(t0).
		WillReturnResult(sqlmock.NewResult(0, 7))
	n, err := repo.DeleteBefore(context.Background(), t0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDiagnosisRepoCreateAndList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiagnosisRepo(db)
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

	rec := diagnosis.Record{
		ID:        "r-1",
		UserID:    "u-1",
		Query:     "rash on arm",
		Analysis:  "Looks like contact dermatitis.",
		Summary:   "Looks like contact dermatitis....",
		FileType:  "image/png",
		CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO diagnosis_records")).
		WithArgs(rec.ID, rec.UserID, rec.Query, rec.Transcription, rec.Analysis, rec.Summary, rec.FileType, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), rec))

	mock.ExpectQuery(regexp.QuoteMeta("FROM diagnosis_records")).
		WithArgs("u-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "query", "transcription", "analysis", "summary", "file_type", "created_at",
		}).AddRow(rec.ID, rec.UserID, rec.Query, "", rec.Analysis, rec.Summary, rec.FileType, rec.CreatedAt))

	out, err := repo.ListByUser(context.Background(), "u-1", 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, rec, out[0])
	require.NoError(t, mock.ExpectationsWereMet())
}
