// Package jobs agrupa las tareas programadas del proceso API.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/metrics"
)

const (
	DefaultRetention = 30 * 24 * time.Hour
	DefaultPruneAt   = "03:00"
)

// Pruner borra registros con created_at anterior a cutoff y devuelve cuántos eliminó.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper libera estado en memoria de clientes inactivos (buckets del rate limiter).
type Sweeper interface {
	Sweep() int
}

type Options struct {
	Retention time.Duration
	PruneAt   string // HH:MM, zona UTC
	Timeout   time.Duration
	Logger    logger.Logger
}

// Retention borra historial viejo de chat y diagnóstico una vez por día.
type Retention struct {
	pruners map[string]Pruner
	sweeper Sweeper

	retention time.Duration
	pruneAt   string
	timeout   time.Duration
	log       logger.Logger
	now       func() time.Time

	scheduler *gocron.Scheduler
}

// NewRetention recibe los pruners por nombre ("chat", "diagnosis"); el nombre es la label de la métrica.
func NewRetention(pruners map[string]Pruner, sweeper Sweeper, opts Options) *Retention {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.PruneAt == "" {
		opts.PruneAt = DefaultPruneAt
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	clean := make(map[string]Pruner, len(pruners))
	for kind, p := range pruners {
		if p != nil {
			clean[kind] = p
		}
	}

	return &Retention{
		pruners:   clean,
		sweeper:   sweeper,
		retention: opts.Retention,
		pruneAt:   opts.PruneAt,
		timeout:   opts.Timeout,
		log:       opts.Logger.With(map[string]any{"component": "retention"}),
		now:       time.Now,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start agenda la poda diaria y arranca el scheduler en background.
func (r *Retention) Start() error {
	r.scheduler.SingletonModeAll()

	_, err := r.scheduler.Every(1).Day().At(r.pruneAt).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			r.log.Error("retention run failed", map[string]any{"error": err})
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention at %q: %w", r.pruneAt, err)
	}

	r.scheduler.StartAsync()
	r.log.Info("retention job scheduled", map[string]any{
		"at":        r.pruneAt,
		"retention": r.retention.String(),
	})
	return nil
}

func (r *Retention) Stop() {
	r.scheduler.Stop()
}

// RunOnce ejecuta una poda completa. Un pruner que falla no frena a los demás.
func (r *Retention) RunOnce(ctx context.Context) error {
	cutoff := r.now().UTC().Add(-r.retention)

	var errs []error
	for kind, p := range r.pruners {
		n, err := p.PruneBefore(ctx, cutoff)
		if err != nil {
			r.log.Warn("prune failed", map[string]any{"kind": kind, "error": err})
			errs = append(errs, fmt.Errorf("prune %s: %w", kind, err))
			continue
		}
		metrics.RetentionDeleted.WithLabelValues(kind).Add(float64(n))
		r.log.Info("pruned records", map[string]any{"kind": kind, "deleted": n, "cutoff": cutoff})
	}

	if r.sweeper != nil {
		left := r.sweeper.Sweep()
		r.log.Debug("rate limiter swept", map[string]any{"buckets": left})
	}

	return errors.Join(errs...)
}
