package doctors

import "time"

// Doctor es una entrada del directorio de profesionales al que se pueden reservar citas.
type Doctor struct {
	ID        string
	Name      string
	Specialty string
	Location  string
	Email     string
	Phone     string

	CreatedAt time.Time
}
