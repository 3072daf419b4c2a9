package app

import (
	"context"

	"safedose-api/internal/adapters/cache/lrucache"
	"safedose-api/internal/adapters/cache/rediscache"
	"safedose-api/internal/adapters/gemini"
	"safedose-api/internal/config"
	"safedose-api/internal/domain/interactions"
	"safedose-api/internal/platform/logger"
	"safedose-api/internal/ports/llm"
)

// NewGenerator arma el cliente Gemini. Sin API key devuelve nil: los dominios
// caen a sus respuestas locales.
func NewGenerator(cfg *config.Config, log logger.Logger) (llm.Generator, error) {
	if !cfg.GeminiEnabled() {
		log.Warn("gemini api key not set, remote models disabled", nil)
		return nil, nil
	}
	c, err := gemini.New(gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		BaseURL:           cfg.Gemini.BaseURL,
		Timeout:           cfg.Gemini.Timeout,
		RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
		Burst:             cfg.Gemini.Burst,
		Breaker: gemini.BreakerSettings{
			MaxRequests:  cfg.Gemini.Breaker.MaxRequests,
			Interval:     cfg.Gemini.Breaker.Interval,
			Timeout:      cfg.Gemini.Breaker.Timeout,
			FailureRatio: cfg.Gemini.Breaker.FailureRatio,
			MinRequests:  cfg.Gemini.Breaker.MinRequests,
		},
	}, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewInteractions arma el agregador: cadena primary -> legacy -> tabla y cache
// en dos niveles (LRU local, Redis si hay URL). El closer libera Redis.
func NewInteractions(ctx context.Context, cfg *config.Config, gen llm.Generator, log logger.Logger) (*interactions.Service, func(), error) {
	table := interactions.DefaultTable()

	var strategies []interactions.Strategy
	if gen != nil {
		strategies = append(strategies,
			interactions.NewRemoteStrategy("primary", cfg.Gemini.PrimaryModel, gen, cfg.Gemini.Timeout).WithLogger(log),
			interactions.NewRemoteStrategy("legacy", cfg.Gemini.LegacyModel, gen, cfg.Gemini.Timeout).WithLogger(log),
		)
	}
	strategies = append(strategies, interactions.NewTableStrategy(table))
	chain := interactions.NewChain(log, strategies...)

	tiers := interactions.Tiered{lrucache.New(cfg.Analysis.CacheSize, cfg.Analysis.CacheTTL)}
	closer := func() {}

	if cfg.Cache.RedisURL != "" {
		rc, err := rediscache.Open(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL, log)
		if err != nil {
			// Redis es opcional; seguimos solo con el LRU local.
			log.Warn("redis cache unavailable", map[string]any{"error": err})
		} else {
			tiers = append(tiers, rc)
			closer = func() {
				if err := rc.Close(); err != nil {
					log.Warn("closing redis cache", map[string]any{"error": err})
				}
			}
		}
	}

	svc := interactions.NewService(interactions.Options{
		Mode:   cfg.Analysis.Mode,
		Table:  table,
		Chain:  chain,
		Cache:  tiers,
		Logger: log,
	})

	log.Info("interaction analyzer ready", map[string]any{
		"mode":       svc.Mode(),
		"strategies": chain.Strategies(),
		"cache_tier": len(tiers),
	})
	return svc, closer, nil
}
