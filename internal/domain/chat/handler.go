package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"safedose-api/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/chat", replyHandler(svc))
	r.Get("/api/chat/history", historyHandler(svc))
}

type replyRequest struct {
	UserID      string   `json:"user_id"`
	Message     string   `json:"message"`
	Medications []string `json:"medications"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// replyHandler godoc
// @Summary Conversar con el acompañante
// @Description Usa los últimos mensajes del usuario y su lista de medicamentos como contexto.
// @Tags chat
// @Accept json
// @Produce json
// @Param payload body replyRequest true "Mensaje"
// @Success 200 {object} Reply
// @Failure 400 {string} string "message requerido"
// @Failure 401 {string} string "unauthorized"
// @Router /api/chat [post]
func replyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		userID := middleware.UserID(r.Context(), req.UserID)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		reply, err := svc.Reply(r.Context(), userID, req.Message, req.Medications)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "message is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

// historyHandler godoc
// @Summary Historial del chat
// @Tags chat
// @Produce json
// @Param user_id query string false "Usuario (si no hay token)"
// @Param limit query int false "Cantidad de mensajes"
// @Success 200 {array} messageResponse
// @Failure 401 {string} string "unauthorized"
// @Router /api/chat/history [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		userID := middleware.UserID(r.Context(), q.Get("user_id"))
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 0
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		items, err := svc.History(r.Context(), userID, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]messageResponse, 0, len(items))
		for _, m := range items {
			out = append(out, messageResponse{ID: m.ID, Role: m.Role, Text: m.Text, CreatedAt: m.CreatedAt})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
