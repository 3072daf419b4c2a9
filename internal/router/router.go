package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "safedose-api/docs"
	"safedose-api/internal/domain/appointments"
	"safedose-api/internal/domain/chat"
	"safedose-api/internal/domain/diagnosis"
	"safedose-api/internal/domain/doctors"
	"safedose-api/internal/domain/interactions"
	"safedose-api/internal/middleware"
	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/metrics"
	"safedose-api/internal/platform/ratelimit"
	"safedose-api/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Limiter opcional; nil = sin rate limit.
	Limiter     *ratelimit.Limiter
	CORSOrigins []string
	Logger      logger.Logger

	Interactions *interactions.Service
	Doctors      *doctors.Service
	Appointments *appointments.Service
	Chat         *chat.Service
	Diagnosis    *diagnosis.Service
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Calendar-Token", "X-Debug-User-ID"},
		ExposedHeaders: []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Handler)
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "SafeDose Backend Running"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	if opts.Interactions != nil {
		interactions.RegisterRoutes(r, opts.Interactions)
	}
	if opts.Doctors != nil {
		doctors.RegisterRoutes(r, opts.Doctors)
	}
	if opts.Appointments != nil {
		appointments.RegisterRoutes(r, opts.Appointments)
	}
	if opts.Chat != nil {
		chat.RegisterRoutes(r, opts.Chat)
	}
	if opts.Diagnosis != nil {
		diagnosis.RegisterRoutes(r, opts.Diagnosis)
	}

	return r
}
