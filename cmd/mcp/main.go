package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"safedose-api/internal/app"
	"safedose-api/internal/config"
	"safedose-api/internal/mcpserver"
	"safedose-api/internal/platform/logger"
)

const version = "v1.0.0"

func main() {
	_ = godotenv.Load()

	// stdout es el canal MCP: los logs van a stderr
	bootLog := logger.New(logger.Options{Output: os.Stderr, Format: logger.FormatJSON})

	cfg, err := config.Load(os.Getenv("SAFEDOSE_CONFIG"))
	if err != nil {
		bootLog.Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: logger.FormatJSON,
		App:    cfg.Log.App + "-mcp",
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := app.NewGenerator(cfg, log)
	if err != nil {
		log.Error("gemini client", map[string]any{"error": err})
		os.Exit(1)
	}
	svc, closeCache, err := app.NewInteractions(ctx, cfg, gen, log)
	if err != nil {
		log.Error("interaction analyzer", map[string]any{"error": err})
		os.Exit(1)
	}
	defer closeCache()

	if err := mcpserver.New(svc, version, log).Run(ctx); err != nil {
		log.Error("mcp server stopped", map[string]any{"error": err})
		os.Exit(1)
	}
}
