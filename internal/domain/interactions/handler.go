package interactions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/analyze", analyzeHandler(svc))
	// Alias que usa el formulario web viejo.
	r.Post("/check-risk", analyzeHandler(svc))

	r.Route("/api/medications", func(mr chi.Router) {
		mr.Get("/normalize", normalizeHandler(svc))
		mr.Get("/catalog", catalogHandler())
	})
	r.Get("/api/interactions/lookup", lookupHandler(svc))
	r.Get("/api/interactions/rules", rulesHandler(svc))
}

type analyzeRequest struct {
	MedicationList json.RawMessage `json:"medication_list" swaggertype:"array,string"`
}

type lookupResponse struct {
	Found       bool     `json:"found"`
	Drug1       string   `json:"drug1"`
	Drug2       string   `json:"drug2"`
	Severity    Severity `json:"severity,omitempty"`
	Description string   `json:"description,omitempty"`
	Advice      string   `json:"advice,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// analyzeHandler godoc
// @Summary Analizar interacciones entre medicamentos
// @Description Normaliza cada nombre, cruza la tabla curada y (en modo hybrid) el clasificador remoto. Nunca falla por el modelo remoto: en el peor caso responde con la tabla.
// @Tags interactions
// @Accept json
// @Produce json
// @Param payload body analyzeRequest true "Lista de medicamentos"
// @Success 200 {object} AnalysisResult
// @Failure 400 {object} errorResponse "medication_list inválido"
// @Router /api/analyze [post]
func analyzeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		names, err := ParseMedicationList(req.MedicationList)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		res, err := svc.Analyze(r.Context(), names)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// normalizeHandler godoc
// @Summary Normalizar un nombre de medicamento
// @Tags interactions
// @Produce json
// @Param name query string true "Nombre libre (genérico o marca)"
// @Success 200 {object} MedicationEntry
// @Failure 400 {object} errorResponse "name requerido"
// @Router /api/medications/normalize [get]
func normalizeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if strings.TrimSpace(name) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
			return
		}
		writeJSON(w, http.StatusOK, svc.Entry(name))
	}
}

// catalogHandler godoc
// @Summary Catálogo de genéricos reconocidos
// @Tags interactions
// @Produce json
// @Success 200 {array} DrugInfo
// @Router /api/medications/catalog [get]
func catalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Catalog())
	}
}

// lookupHandler godoc
// @Summary Consultar la tabla estática para un par
// @Tags interactions
// @Produce json
// @Param drug1 query string true "Primer medicamento"
// @Param drug2 query string true "Segundo medicamento"
// @Success 200 {object} lookupResponse
// @Failure 400 {object} errorResponse "drug1 y drug2 requeridos"
// @Router /api/interactions/lookup [get]
func lookupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		a, b := strings.TrimSpace(q.Get("drug1")), strings.TrimSpace(q.Get("drug2"))
		if a == "" || b == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "drug1 and drug2 are required"})
			return
		}

		out := lookupResponse{Drug1: Normalize(a), Drug2: Normalize(b)}
		if info, ok := svc.Lookup(a, b); ok {
			out.Found = true
			out.Severity = info.Severity
			out.Description = info.Description
			out.Advice = info.Advice
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// rulesHandler godoc
// @Summary Pares curados de la tabla estática
// @Tags interactions
// @Produce json
// @Success 200 {array} Rule
// @Router /api/interactions/rules [get]
func rulesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.Table().Rules())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
