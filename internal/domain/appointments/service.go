package appointments

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"safedose-api/internal/domain/doctors"
	"safedose-api/internal/platform/logger"
	"safedose-api/internal/ports/calendar"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("appointment not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
	ErrDoctorNotFound   = errors.New("doctor not found")
)

// DoctorDirectory resuelve el médico de una reserva.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id string) (doctors.Doctor, error)
}

type Service struct {
	repo     Repository
	doctors  DoctorDirectory
	calendar calendar.Calendar
	loc      *time.Location
	log      logger.Logger
	now      func() time.Time
}

type Options struct {
	Doctors  DoctorDirectory
	Calendar calendar.Calendar
	// Location para interpretar Date+Time. Default UTC.
	Location *time.Location
	Logger   logger.Logger
}

func NewService(repo Repository, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:     repo,
		doctors:  opts.Doctors,
		calendar: opts.Calendar,
		loc:      loc,
		log:      log.With(map[string]any{"component": "appointments"}),
		now:      time.Now,
	}
}

type BookInput struct {
	DoctorID     string
	DoctorName   string
	Location     string
	PatientName  string
	PatientEmail string
	WhatsApp     string
	Date         string
	Time         string
}

type BookResult struct {
	Appointment Appointment
	Calendar    CalendarResult
}

// Book persiste la cita y, si hay token, crea el evento de calendario. Un fallo de
// calendario no invalida la reserva: queda reportado en BookResult.Calendar.
func (s *Service) Book(ctx context.Context, userID string, in BookInput, calendarToken string) (BookResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return BookResult{}, ErrInvalidInput
	}

	patient := strings.TrimSpace(in.PatientName)
	if patient == "" {
		return BookResult{}, fmt.Errorf("%w: patient_name required", ErrInvalidInput)
	}
	email := strings.TrimSpace(in.PatientEmail)
	if _, err := mail.ParseAddress(email); err != nil {
		return BookResult{}, fmt.Errorf("%w: patient_email invalid", ErrInvalidInput)
	}

	date, clock := strings.TrimSpace(in.Date), strings.TrimSpace(in.Time)
	startsAt, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.loc)
	if err != nil {
		return BookResult{}, fmt.Errorf("%w: date must be YYYY-MM-DD and time HH:MM", ErrInvalidInput)
	}

	doctorID := strings.TrimSpace(in.DoctorID)
	doctorName := strings.TrimSpace(in.DoctorName)
	location := strings.TrimSpace(in.Location)
	if doctorID != "" {
		if s.doctors == nil {
			return BookResult{}, ErrDoctorNotFound
		}
		d, err := s.doctors.GetByID(ctx, doctorID)
		if err != nil {
			if errors.Is(err, doctors.ErrNotFound) {
				return BookResult{}, ErrDoctorNotFound
			}
			return BookResult{}, err
		}
		doctorName = d.Name
		if location == "" {
			location = d.Location
		}
	}
	if doctorName == "" {
		return BookResult{}, fmt.Errorf("%w: doctor_id or doctor_name required", ErrInvalidInput)
	}

	now := s.now().UTC()
	a := Appointment{
		ID:           uuid.NewString(),
		UserID:       userID,
		DoctorID:     doctorID,
		DoctorName:   doctorName,
		PatientName:  patient,
		PatientEmail: email,
		WhatsApp:     strings.TrimSpace(in.WhatsApp),
		Date:         date,
		Time:         clock,
		StartsAt:     startsAt,
		Status:       StatusBooked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return BookResult{}, err
	}

	cal := CalendarResult{Status: CalendarSkipped}
	token := strings.TrimSpace(calendarToken)
	if token == "" || s.calendar == nil {
		return BookResult{Appointment: a, Calendar: cal}, nil
	}

	ev, err := s.calendar.CreateEvent(ctx, token, calendar.EventInput{
		DoctorName:   a.DoctorName,
		Location:     location,
		PatientName:  a.PatientName,
		PatientEmail: a.PatientEmail,
		WhatsApp:     a.WhatsApp,
		Date:         a.Date,
		Time:         a.Time,
	})
	if err != nil {
		s.log.Warn("calendar event creation failed", map[string]any{"appointment_id": a.ID, "error": err})
		return BookResult{Appointment: a, Calendar: CalendarResult{Status: CalendarFailed, Error: err.Error()}}, nil
	}

	a.CalendarEventID = ev.ID
	a.CalendarEventLink = ev.Link
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		// la cita ya existe; el evento queda huérfano en el calendario del usuario
		s.log.Error("persist calendar event id failed", map[string]any{"appointment_id": a.ID, "error": err})
	}

	cal = CalendarResult{Status: CalendarCreated, EventID: ev.ID, EventLink: ev.Link}
	return BookResult{Appointment: a, Calendar: cal}, nil
}

// Cancel solo lo puede hacer el dueño de la cita.
func (s *Service) Cancel(ctx context.Context, userID, id, calendarToken string) (BookResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return BookResult{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return BookResult{}, err
	}
	if a.UserID != userID {
		return BookResult{}, ErrForbidden
	}
	if a.Status == StatusCancelled {
		return BookResult{}, ErrAlreadyCancelled
	}

	a.Status = StatusCancelled
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return BookResult{}, err
	}

	cal := CalendarResult{Status: CalendarSkipped}
	token := strings.TrimSpace(calendarToken)
	if token != "" && a.CalendarEventID != "" && s.calendar != nil {
		if err := s.calendar.DeleteEvent(ctx, token, a.CalendarEventID); err != nil {
			s.log.Warn("calendar event deletion failed", map[string]any{"appointment_id": a.ID, "error": err})
			cal = CalendarResult{Status: CalendarFailed, EventID: a.CalendarEventID, Error: err.Error()}
		} else {
			cal = CalendarResult{Status: CalendarDeleted, EventID: a.CalendarEventID}
		}
	}
	return BookResult{Appointment: a, Calendar: cal}, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Appointment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}
