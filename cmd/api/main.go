package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	pg "safedose-api/internal/adapters/storage/postgres"
	"safedose-api/internal/app"
	"safedose-api/internal/config"
	"safedose-api/internal/platform/logger"
)

// @title SafeDose API
// @version 1.0
// @description Análisis de interacciones entre medicamentos, citas, chat y diagnóstico multimodal.
// @BasePath /
func main() {
	// .env es opcional (dev local)
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SAFEDOSE_CONFIG"))
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = pg.Open(ctx, cfg.Database.DSN)
		if err != nil {
			log.Error("postgres unavailable", map[string]any{"error": err})
			os.Exit(1)
		}
		defer db.Close()

		if cfg.Database.MigrateOnStart {
			if err := pg.Migrate(db, log); err != nil {
				log.Error("migrations failed", map[string]any{"error": err})
				os.Exit(1)
			}
		}
	} else {
		log.Warn("database.dsn not set, using in-memory storage", nil)
	}

	a, err := app.Build(ctx, cfg, db, log)
	if err != nil {
		log.Error("startup failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Retention.Start(); err != nil {
		log.Error("retention job not scheduled", map[string]any{"error": err})
	}
	defer a.Retention.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", map[string]any{"error": err})
		}
	case <-ctx.Done():
		log.Info("shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]any{"error": err})
	}
}
