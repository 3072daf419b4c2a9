package diagnosis

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"safedose-api/internal/middleware"
)

const (
	maxUploadBytes = 25 << 20
	maxMemoryBytes = 8 << 20
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/diagnose", diagnoseHandler(svc))
	r.Get("/api/diagnose/history", historyHandler(svc))
}

type recordResponse struct {
	ID            string    `json:"id"`
	Query         string    `json:"query"`
	Transcription string    `json:"transcription"`
	Analysis      string    `json:"analysis"`
	Summary       string    `json:"summary"`
	FileType      string    `json:"file_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// diagnoseHandler godoc
// @Summary Análisis multimodal de un documento, imagen o audio
// @Tags diagnosis
// @Accept multipart/form-data
// @Produce json
// @Param user_id formData string false "Usuario (si no hay token)"
// @Param query formData string false "Pregunta en texto"
// @Param file formData file false "Imagen o PDF"
// @Param audio formData file false "Pregunta grabada"
// @Success 200 {object} Result
// @Failure 400 {string} string "input inválido"
// @Failure 415 {string} string "tipo de archivo no soportado"
// @Failure 502 {string} string "el modelo no respondió"
// @Router /api/diagnose [post]
func diagnoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		userID := middleware.UserID(r.Context(), r.FormValue("user_id"))
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in := Input{Query: r.FormValue("query")}
		var err error
		if in.File, in.FileMIME, err = readPart(r.MultipartForm, "file"); err != nil {
			http.Error(w, "invalid file", http.StatusBadRequest)
			return
		}
		if in.Audio, in.AudioMIME, err = readPart(r.MultipartForm, "audio"); err != nil {
			http.Error(w, "invalid audio", http.StatusBadRequest)
			return
		}

		res, err := svc.Diagnose(r.Context(), userID, in)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrUnsupportedMedia):
				http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			case errors.Is(err, ErrUpstream):
				http.Error(w, "analysis unavailable, please try again", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// historyHandler godoc
// @Summary Historial de diagnósticos
// @Tags diagnosis
// @Produce json
// @Param user_id query string false "Usuario (si no hay token)"
// @Param limit query int false "Cantidad máxima"
// @Success 200 {array} recordResponse
// @Router /api/diagnose/history [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		userID := middleware.UserID(r.Context(), q.Get("user_id"))
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		limit, _ := strconv.Atoi(q.Get("limit"))

		items, err := svc.History(r.Context(), userID, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, recordResponse{
				ID:            rec.ID,
				Query:         rec.Query,
				Transcription: rec.Transcription,
				Analysis:      rec.Analysis,
				Summary:       rec.Summary,
				FileType:      rec.FileType,
				CreatedAt:     rec.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// readPart lee un archivo opcional del form; sin archivo devuelve nil sin error.
func readPart(form *multipart.Form, field string) ([]byte, string, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, "", nil
	}
	fh := form.File[field][0]
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
