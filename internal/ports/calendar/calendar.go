package calendar

import "context"

// EventInput son los datos de una cita tal como los necesita el calendario.
// Date es YYYY-MM-DD y Time HH:MM, en la zona horaria configurada del adapter.
type EventInput struct {
	DoctorName   string
	Location     string
	PatientName  string
	PatientEmail string
	WhatsApp     string
	Date         string
	Time         string
}

type Event struct {
	ID   string
	Link string
}

// Calendar crea y borra eventos con el access token OAuth del usuario.
type Calendar interface {
	CreateEvent(ctx context.Context, accessToken string, in EventInput) (Event, error)
	DeleteEvent(ctx context.Context, accessToken, eventID string) error
}
