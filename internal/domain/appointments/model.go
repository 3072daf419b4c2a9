package appointments

import "time"

// Status de una cita.
// @Enum booked, cancelled
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

// Appointment es una cita reservada por un usuario con un médico del directorio.
// Date (YYYY-MM-DD) y Time (HH:MM) se guardan tal como los eligió el usuario;
// StartsAt es la misma hora en la zona horaria configurada, usada para ordenar.
type Appointment struct {
	ID     string
	UserID string

	DoctorID   string
	DoctorName string

	PatientName  string
	PatientEmail string
	WhatsApp     string

	Date     string
	Time     string
	StartsAt time.Time

	Status Status

	CalendarEventID   string
	CalendarEventLink string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CalendarStatus resume qué pasó con el evento de calendario asociado.
type CalendarStatus string

const (
	CalendarSkipped CalendarStatus = "skipped"
	CalendarCreated CalendarStatus = "created"
	CalendarDeleted CalendarStatus = "deleted"
	CalendarFailed  CalendarStatus = "failed"
)

type CalendarResult struct {
	Status    CalendarStatus `json:"status"`
	EventID   string         `json:"event_id,omitempty"`
	EventLink string         `json:"event_link,omitempty"`
	Error     string         `json:"error,omitempty"`
}
