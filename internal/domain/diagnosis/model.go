package diagnosis

import "time"

// Record es una consulta de diagnóstico ya respondida, guardada en el historial del usuario.
type Record struct {
	ID            string
	UserID        string
	Query         string
	Transcription string
	Analysis      string
	// Summary son los primeros 60 caracteres del análisis seguidos de "...".
	Summary   string
	FileType  string
	CreatedAt time.Time
}

// Input de una consulta. Se necesita al menos uno de Query, File o Audio.
type Input struct {
	Query     string
	File      []byte
	FileMIME  string
	Audio     []byte
	AudioMIME string
}

type Result struct {
	RecordID      string `json:"record_id"`
	Transcription string `json:"transcription"`
	Analysis      string `json:"analysis"`
	Summary       string `json:"summary"`
}
