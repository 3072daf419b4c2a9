// Package app conecta config, storage, adapters y dominios. Lo usan cmd/api y cmd/mcp.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"safedose-api/internal/adapters/auth/googleid"
	"safedose-api/internal/adapters/calendar/googlecal"
	mem "safedose-api/internal/adapters/storage/memory"
	pg "safedose-api/internal/adapters/storage/postgres"
	"safedose-api/internal/config"
	"safedose-api/internal/domain/appointments"
	"safedose-api/internal/domain/chat"
	"safedose-api/internal/domain/diagnosis"
	"safedose-api/internal/domain/doctors"
	"safedose-api/internal/jobs"
	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/ratelimit"
	"safedose-api/internal/ports/auth"
	"safedose-api/internal/router"
)

// App es el proceso API ya armado.
type App struct {
	Handler   http.Handler
	Retention *jobs.Retention

	closers []func()
}

// Close libera recursos en orden inverso.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type repos struct {
	doctors      doctors.Repository
	appointments appointments.Repository
	chat         chat.Repository
	diagnosis    diagnosis.Repository
}

// newRepos: con DB usa Postgres, si no in-memory.
func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			doctors:      pg.NewDoctorsRepo(db),
			appointments: pg.NewAppointmentsRepo(db),
			chat:         pg.NewChatRepo(db),
			diagnosis:    pg.NewDiagnosisRepo(db),
		}
	}
	return repos{
		doctors:      mem.NewDoctorRepo(),
		appointments: mem.NewAppointmentRepo(),
		chat:         mem.NewChatRepo(),
		diagnosis:    mem.NewDiagnosisRepo(),
	}
}

// Build arma todo el proceso. db puede ser nil (modo in-memory).
func Build(ctx context.Context, cfg *config.Config, db *sql.DB, log logger.Logger) (*App, error) {
	a := &App{}

	gen, err := NewGenerator(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	interactionsSvc, closeCache, err := NewInteractions(ctx, cfg, gen, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeCache)

	loc, err := time.LoadLocation(cfg.Calendar.TimeZone)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("calendar time zone: %w", err)
	}

	cal, err := googlecal.New(googlecal.Config{
		BaseURL:      cfg.Calendar.BaseURL,
		CalendarName: cfg.Calendar.CalendarName,
		TimeZone:     cfg.Calendar.TimeZone,
		Timeout:      cfg.Calendar.Timeout,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("calendar client: %w", err)
	}

	r := newRepos(db)

	doctorsSvc := doctors.NewService(r.doctors)
	appointmentsSvc := appointments.NewService(r.appointments, appointments.Options{
		Doctors:  doctorsSvc,
		Calendar: cal,
		Location: loc,
		Logger:   log,
	})
	chatSvc := chat.NewService(r.chat, gen, chat.Options{
		PrimaryModel: cfg.Gemini.PrimaryModel,
		LegacyModel:  cfg.Gemini.LegacyModel,
		HistoryLimit: cfg.Chat.HistoryLimit,
		Timeout:      cfg.Gemini.Timeout,
		Logger:       log,
	})
	diagnosisSvc := diagnosis.NewService(r.diagnosis, gen, diagnosis.Options{
		Model:   cfg.Gemini.PrimaryModel,
		Timeout: cfg.Gemini.Timeout,
		Logger:  log,
	})

	var verifier auth.AuthVerifier
	if cfg.Auth.GoogleClientID != "" {
		verifier = googleid.NewVerifier(googleid.NewClient(googleid.Config{
			ClientID:     cfg.Auth.GoogleClientID,
			TokenInfoURL: cfg.Auth.TokenInfoURL,
		}))
	} else {
		log.Warn("auth.google_client_id not set, running in dev auth mode", nil)
	}

	limiter := ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Capacity, ratelimit.DefaultCost)

	a.Handler = router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Limiter:      limiter,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Logger:       log,
		Interactions: interactionsSvc,
		Doctors:      doctorsSvc,
		Appointments: appointmentsSvc,
		Chat:         chatSvc,
		Diagnosis:    diagnosisSvc,
	})

	a.Retention = jobs.NewRetention(map[string]jobs.Pruner{
		"chat":      chatSvc,
		"diagnosis": diagnosisSvc,
	}, limiter, jobs.Options{
		Retention: cfg.Chat.Retention,
		PruneAt:   cfg.Chat.PruneAt,
		Logger:    log,
	})

	return a, nil
}
