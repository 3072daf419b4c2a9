package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedose-api/internal/domain/appointments"
	"safedose-api/internal/domain/chat"
	"safedose-api/internal/domain/diagnosis"
	"safedose-api/internal/domain/doctors"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDoctorRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorRepo()

	require.NoError(t, repo.Create(ctx, doctors.Doctor{ID: "2", Name: "Zoe", Specialty: "Cardiology"}))
	require.NoError(t, repo.Create(ctx, doctors.Doctor{ID: "1", Name: "Arun", Specialty: "cardiology"}))
	require.NoError(t, repo.Create(ctx, doctors.Doctor{ID: "3", Name: "Bela", Specialty: "Dermatology"}))
	assert.Error(t, repo.Create(ctx, doctors.Doctor{ID: "1", Name: "dup"}))

	items, err := repo.List(ctx, "CARDIOLOGY")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Arun", items[0].Name)

	_, err = repo.GetByID(ctx, "404")
	assert.True(t, errors.Is(err, doctors.ErrNotFound))
}

func TestAppointmentRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo()

	late := appointments.Appointment{ID: "a", UserID: "u1", StartsAt: t0.Add(48 * time.Hour)}
	early := appointments.Appointment{ID: "b", UserID: "u1", StartsAt: t0}
	other := appointments.Appointment{ID: "c", UserID: "u2", StartsAt: t0}
	for _, a := range []appointments.Appointment{late, early, other} {
		require.NoError(t, repo.Create(ctx, a))
	}

	items, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)

	early.Status = appointments.StatusCancelled
	require.NoError(t, repo.Update(ctx, early))
	got, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusCancelled, got.Status)

	assert.True(t, errors.Is(repo.Update(ctx, appointments.Appointment{ID: "zzz"}), appointments.ErrNotFound))
}

func TestChatRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepo()

	for i, text := range []string{"a", "b", "c", "d"} {
		require.NoError(t, repo.Append(ctx, chat.Message{
			ID: text, UserID: "u1", Role: chat.RoleUser, Text: text, CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Append(ctx, chat.Message{ID: "x", UserID: "u2", Text: "x", CreatedAt: t0}))

	recent, err := repo.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Text)
	assert.Equal(t, "d", recent[1].Text)

	n, err := repo.DeleteBefore(ctx, t0.Add(90*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n) // a, b y el de u2

	none, err := repo.Recent(ctx, "u2", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDiagnosisRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewDiagnosisRepo()

	require.NoError(t, repo.Create(ctx, diagnosis.Record{ID: "1", UserID: "u1", CreatedAt: t0}))
	require.NoError(t, repo.Create(ctx, diagnosis.Record{ID: "2", UserID: "u1", CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, diagnosis.Record{ID: "3", UserID: "u1", CreatedAt: t0.Add(2 * time.Hour)}))

	items, err := repo.ListByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "3", items[0].ID)

	n, err := repo.DeleteBefore(ctx, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
