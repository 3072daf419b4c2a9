package interactions

import (
	"context"
	"errors"
	"time"

	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/metrics"
)

// Strategy es un paso de la cadena de clasificación.
type Strategy interface {
	Name() string
	// Applicable se evalúa antes de Classify; false = saltar sin contar como fallo.
	Applicable(drugs []string) bool
	Classify(ctx context.Context, drugs []string) (ClassifierResult, error)
}

// Outcome dice qué estrategia produjo el resultado.
type Outcome struct {
	Result   ClassifierResult
	Strategy string
	// Remote es true si el resultado vino de un modelo externo (se puede cachear).
	Remote bool
}

// remoteStrategy marca estrategias cuyo resultado viene de fuera del proceso.
type remoteStrategy interface {
	Remote() bool
}

const StrategyNone = "none"

// Chain prueba las estrategias en orden hasta que una responde sin error.
// Nunca devuelve error: sin estrategias exitosas el resultado es vacío (LOW).
type Chain struct {
	strategies []Strategy
	log        logger.Logger
}

func NewChain(log logger.Logger, strategies ...Strategy) *Chain {
	if log == nil {
		log = logger.NewNop()
	}
	return &Chain{
		strategies: strategies,
		log:        log.With(map[string]any{"component": "classifier_chain"}),
	}
}

func (c *Chain) Strategies() []string {
	out := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		out = append(out, s.Name())
	}
	return out
}

func (c *Chain) Classify(ctx context.Context, drugs []string) Outcome {
	for _, s := range c.strategies {
		name := s.Name()
		if !s.Applicable(drugs) {
			metrics.ClassifierAttempts.WithLabelValues(name, "skipped").Inc()
			continue
		}

		start := time.Now()
		res, err := s.Classify(ctx, drugs)
		if err != nil {
			metrics.ClassifierAttempts.WithLabelValues(name, "error").Inc()
			c.log.Warn("classifier strategy failed, falling back", map[string]any{
				"strategy":    name,
				"drugs":       len(drugs),
				"duration_ms": time.Since(start).Milliseconds(),
				"error":       err,
				"canceled":    errors.Is(err, context.Canceled),
			})
			continue
		}

		metrics.ClassifierAttempts.WithLabelValues(name, "ok").Inc()
		c.log.Debug("classifier strategy ok", map[string]any{
			"strategy":     name,
			"interactions": res.InteractionCount,
			"risk_level":   res.RiskLevel,
			"duration_ms":  time.Since(start).Milliseconds(),
		})

		remote := false
		if rs, ok := s.(remoteStrategy); ok {
			remote = rs.Remote()
		}
		return Outcome{Result: res, Strategy: name, Remote: remote}
	}

	c.log.Error("no classifier strategy succeeded", map[string]any{"drugs": len(drugs)})
	return Outcome{Result: NewClassifierResult(nil), Strategy: StrategyNone}
}

// TableStrategy es el último recurso determinista: solo reglas exactas de la tabla.
type TableStrategy struct {
	table *Table
}

func NewTableStrategy(t *Table) *TableStrategy {
	return &TableStrategy{table: t}
}

func (s *TableStrategy) Name() string { return "static_table" }

func (s *TableStrategy) Applicable(_ []string) bool { return true }

func (s *TableStrategy) Classify(_ context.Context, drugs []string) (ClassifierResult, error) {
	findings := make([]Finding, 0)
	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			info, ok := s.table.Lookup(drugs[i], drugs[j])
			if !ok {
				continue
			}
			findings = append(findings, Finding{
				Drug1:       drugs[i],
				Drug2:       drugs[j],
				Severity:    info.Severity,
				Description: info.Description,
				Advice:      info.Advice,
			})
		}
	}
	return NewClassifierResult(findings), nil
}
