package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"safedose-api/internal/middleware"
)

// CalendarTokenHeader lleva el access token OAuth de Google Calendar del usuario.
const CalendarTokenHeader = "X-Calendar-Token"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/appointments", func(ar chi.Router) {
		ar.Post("/", bookHandler(svc))
		ar.Get("/", listHandler(svc))
		ar.Post("/{appointmentID}/cancel", cancelHandler(svc))
	})
}

type bookRequest struct {
	UserID       string `json:"user_id"`
	DoctorID     string `json:"doctor_id"`
	DoctorName   string `json:"doctor_name"`
	Location     string `json:"location"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	WhatsApp     string `json:"whatsapp"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:MM
}

type cancelRequest struct {
	UserID string `json:"user_id"`
}

type appointmentResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	DoctorID          string    `json:"doctor_id,omitempty"`
	DoctorName        string    `json:"doctor_name"`
	PatientName       string    `json:"patient_name"`
	PatientEmail      string    `json:"patient_email"`
	WhatsApp          string    `json:"whatsapp,omitempty"`
	Date              string    `json:"date"`
	Time              string    `json:"time"`
	StartsAt          time.Time `json:"starts_at"`
	Status            Status    `json:"status"`
	CalendarEventID   string    `json:"calendar_event_id,omitempty"`
	CalendarEventLink string    `json:"calendar_event_link,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type bookResponse struct {
	Appointment appointmentResponse `json:"appointment"`
	Calendar    CalendarResult      `json:"calendar"`
}

// bookHandler godoc
// @Summary Reservar una cita
// @Description Si viene X-Calendar-Token se crea el evento en Google Calendar; un fallo de calendario no invalida la reserva.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Calendar-Token header string false "Access token de Google Calendar"
// @Param payload body bookRequest true "Datos de la cita"
// @Success 201 {object} bookResponse
// @Failure 400 {string} string "input inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "doctor not found"
// @Router /api/appointments [post]
func bookHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		userID := middleware.UserID(r.Context(), req.UserID)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.Book(r.Context(), userID, BookInput{
			DoctorID:     req.DoctorID,
			DoctorName:   req.DoctorName,
			Location:     req.Location,
			PatientName:  req.PatientName,
			PatientEmail: req.PatientEmail,
			WhatsApp:     req.WhatsApp,
			Date:         req.Date,
			Time:         req.Time,
		}, r.Header.Get(CalendarTokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, bookResponse{
			Appointment: toAppointmentResponse(res.Appointment),
			Calendar:    res.Calendar,
		})
	}
}

// listHandler godoc
// @Summary Mis citas
// @Tags appointments
// @Produce json
// @Param user_id query string false "Usuario (si no hay token)"
// @Success 200 {array} appointmentResponse
// @Failure 401 {string} string "unauthorized"
// @Router /api/appointments [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context(), r.URL.Query().Get("user_id"))
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// cancelHandler godoc
// @Summary Cancelar una cita
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param X-Calendar-Token header string false "Access token de Google Calendar"
// @Success 200 {object} bookResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Failure 409 {string} string "appointment already cancelled"
// @Router /api/appointments/{appointmentID}/cancel [post]
func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelRequest
		if r.ContentLength != 0 {
			// body opcional: solo trae user_id cuando no hay token
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		fallback := req.UserID
		if fallback == "" {
			fallback = r.URL.Query().Get("user_id")
		}
		userID := middleware.UserID(r.Context(), fallback)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.Cancel(r.Context(), userID, chi.URLParam(r, "appointmentID"), r.Header.Get(CalendarTokenHeader))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, bookResponse{
			Appointment: toAppointmentResponse(res.Appointment),
			Calendar:    res.Calendar,
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDoctorNotFound):
		http.Error(w, "doctor not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrAlreadyCancelled):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:                a.ID,
		UserID:            a.UserID,
		DoctorID:          a.DoctorID,
		DoctorName:        a.DoctorName,
		PatientName:       a.PatientName,
		PatientEmail:      a.PatientEmail,
		WhatsApp:          a.WhatsApp,
		Date:              a.Date,
		Time:              a.Time,
		StartsAt:          a.StartsAt,
		Status:            a.Status,
		CalendarEventID:   a.CalendarEventID,
		CalendarEventLink: a.CalendarEventLink,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
