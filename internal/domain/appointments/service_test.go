package appointments

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"safedose-api/internal/domain/doctors"
	"safedose-api/internal/ports/calendar"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	byID    map[string]Appointment
	updates int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	r.updates++
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

type testDirectory map[string]doctors.Doctor

func (d testDirectory) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	doc, ok := d[id]
	if !ok {
		return doctors.Doctor{}, doctors.ErrNotFound
	}
	return doc, nil
}

type fakeCalendar struct {
	createErr error
	deleteErr error
	created   []calendar.EventInput
	deleted   []string
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, token string, in calendar.EventInput) (calendar.Event, error) {
	if f.createErr != nil {
		return calendar.Event{}, f.createErr
	}
	f.created = append(f.created, in)
	return calendar.Event{ID: "evt-1", Link: "https://calendar.example/evt-1"}, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, token, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

func newTestService(cal *fakeCalendar) (*Service, *testRepo) {
	repo := newTestRepo()
	dir := testDirectory{"doc-1": {ID: "doc-1", Name: "Meera Rao", Specialty: "Cardiology", Location: "Block B"}}
	var c calendar.Calendar
	if cal != nil {
		c = cal
	}
	svc := NewService(repo, Options{Doctors: dir, Calendar: c})
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func validInput() BookInput {
	return BookInput{
		DoctorID:     "doc-1",
		PatientName:  "Ana",
		PatientEmail: "ana@example.com",
		Date:         "2026-03-14",
		Time:         "09:30",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Book_ResolvesDoctorAndCreatesEvent(t *testing.T) {
	cal := &fakeCalendar{}
	svc, repo := newTestService(cal)

	res, err := svc.Book(context.Background(), "user-1", validInput(), "tok")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	a := res.Appointment
	if a.DoctorName != "Meera Rao" || a.Status != StatusBooked {
		t.Fatalf("unexpected appointment: %#v", a)
	}
	if res.Calendar.Status != CalendarCreated || a.CalendarEventID != "evt-1" {
		t.Fatalf("expected calendar created, got %#v", res.Calendar)
	}
	if len(cal.created) != 1 || cal.created[0].Location != "Block B" {
		t.Fatalf("expected one event using doctor location, got %#v", cal.created)
	}
	stored := repo.byID[a.ID]
	if stored.CalendarEventID != "evt-1" {
		t.Fatalf("expected event id persisted, got %q", stored.CalendarEventID)
	}
	want := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if !a.StartsAt.Equal(want) {
		t.Fatalf("expected StartsAt %v, got %v", want, a.StartsAt)
	}
}

func TestService_Book_CalendarFailureKeepsBooking(t *testing.T) {
	cal := &fakeCalendar{createErr: errors.New("token expired")}
	svc, repo := newTestService(cal)

	res, err := svc.Book(context.Background(), "user-1", validInput(), "tok")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if res.Calendar.Status != CalendarFailed || res.Calendar.Error == "" {
		t.Fatalf("expected calendar failed, got %#v", res.Calendar)
	}
	if _, ok := repo.byID[res.Appointment.ID]; !ok {
		t.Fatalf("appointment must be persisted")
	}
}

func TestService_Book_NoTokenSkipsCalendar(t *testing.T) {
	cal := &fakeCalendar{}
	svc, _ := newTestService(cal)

	res, err := svc.Book(context.Background(), "user-1", validInput(), "")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if res.Calendar.Status != CalendarSkipped || len(cal.created) != 0 {
		t.Fatalf("expected skipped calendar, got %#v", res.Calendar)
	}
}

func TestService_Book_Validation(t *testing.T) {
	svc, _ := newTestService(nil)

	cases := map[string]func(*BookInput){
		"no patient":     func(in *BookInput) { in.PatientName = " " },
		"bad email":      func(in *BookInput) { in.PatientEmail = "ana" },
		"bad date":       func(in *BookInput) { in.Date = "14/03/2026" },
		"bad time":       func(in *BookInput) { in.Time = "25:00" },
		"no doctor info": func(in *BookInput) { in.DoctorID = ""; in.DoctorName = "" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		if _, err := svc.Book(context.Background(), "user-1", in, ""); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	if _, err := svc.Book(context.Background(), "", validInput(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without user, got %v", err)
	}

	in := validInput()
	in.DoctorID = "doc-404"
	if _, err := svc.Book(context.Background(), "user-1", in, ""); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestService_Book_FreeTextDoctor(t *testing.T) {
	svc, _ := newTestService(nil)
	in := validInput()
	in.DoctorID = ""
	in.DoctorName = "Dr. House"

	res, err := svc.Book(context.Background(), "user-1", in, "tok")
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if res.Appointment.DoctorName != "Dr. House" || res.Calendar.Status != CalendarSkipped {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestService_Cancel_OwnerOnlyAndOnce(t *testing.T) {
	cal := &fakeCalendar{}
	svc, _ := newTestService(cal)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "user-1", validInput(), "tok")
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	id := booked.Appointment.ID

	if _, err := svc.Cancel(ctx, "user-2", id, "tok"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	res, err := svc.Cancel(ctx, "user-1", id, "tok")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if res.Appointment.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", res.Appointment.Status)
	}
	if res.Calendar.Status != CalendarDeleted || len(cal.deleted) != 1 || cal.deleted[0] != "evt-1" {
		t.Fatalf("expected event deleted, got %#v / %#v", res.Calendar, cal.deleted)
	}

	if _, err := svc.Cancel(ctx, "user-1", id, "tok"); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
	if _, err := svc.Cancel(ctx, "user-1", "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ListByUser_SortedByStart(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	for _, d := range []string{"2026-05-01", "2026-03-01", "2026-04-01"} {
		in := validInput()
		in.Date = d
		if _, err := svc.Book(ctx, "user-1", in, ""); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := svc.Book(ctx, "user-2", validInput(), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	items, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(items) != 3 || items[0].Date != "2026-03-01" || items[2].Date != "2026-05-01" {
		t.Fatalf("unexpected order: %#v", items)
	}
}
