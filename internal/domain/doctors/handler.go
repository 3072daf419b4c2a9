package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/doctors", func(dr chi.Router) {
		dr.Post("/", createDoctorHandler(svc))
		dr.Get("/", listDoctorsHandler(svc))
		dr.Get("/{doctorID}", getDoctorHandler(svc))
	})
}

type createDoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Location  string `json:"location"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type doctorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Location  string    `json:"location"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// createDoctorHandler godoc
// @Summary Registrar un médico
// @Tags doctors
// @Accept json
// @Produce json
// @Param payload body createDoctorRequest true "Datos del médico"
// @Success 201 {object} doctorResponse
// @Failure 400 {string} string "name y specialty requeridos"
// @Router /api/doctors [post]
func createDoctorHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Create(r.Context(), CreateInput{
			Name:      req.Name,
			Specialty: req.Specialty,
			Location:  req.Location,
			Email:     req.Email,
			Phone:     req.Phone,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "name and specialty are required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toDoctorResponse(d))
	}
}

// listDoctorsHandler godoc
// @Summary Listar médicos
// @Tags doctors
// @Produce json
// @Param specialty query string false "Filtrar por especialidad"
// @Success 200 {array} doctorResponse
// @Router /api/doctors [get]
func listDoctorsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), r.URL.Query().Get("specialty"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doctorResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDoctorResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getDoctorHandler godoc
// @Summary Obtener un médico
// @Tags doctors
// @Produce json
// @Param doctorID path string true "ID del médico"
// @Success 200 {object} doctorResponse
// @Failure 404 {string} string "doctor not found"
// @Router /api/doctors/{doctorID} [get]
func getDoctorHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetByID(r.Context(), chi.URLParam(r, "doctorID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "doctor not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(d))
	}
}

func toDoctorResponse(d Doctor) doctorResponse {
	return doctorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Location:  d.Location,
		Email:     d.Email,
		Phone:     d.Phone,
		CreatedAt: d.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
