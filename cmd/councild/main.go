package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/argume/council/internal/backend/openrouter"
	"github.com/argume/council/internal/classifier"
	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/costs"
	"github.com/argume/council/internal/council"
	"github.com/argume/council/internal/engine"
	"github.com/argume/council/internal/failover"
	councilfront "github.com/argume/council/internal/frontdoor/council"
	"github.com/argume/council/internal/interject"
	"github.com/argume/council/internal/jester"
	"github.com/argume/council/internal/memory"
	"github.com/argume/council/internal/orchestrator"
	"github.com/argume/council/internal/registry"
	"github.com/argume/council/internal/server"
	"github.com/argume/council/internal/storage"
	memstore "github.com/argume/council/internal/storage/memory"
	"github.com/argume/council/internal/storage/sqlite"
	"github.com/argume/council/internal/telemetry"
	"github.com/argume/council/internal/tokens"
)

func main() {
	// Load .env if present so COUNCIL_* overrides work in development.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("argume-council", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	configPath := os.Getenv("COUNCIL_CONFIG")
	if configPath == "" {
		configPath = "council.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reg, err := registry.New(cfg.Council.Participants)
	if err != nil {
		log.Fatalf("Invalid participant catalog: %v", err)
	}

	var store storage.Store
	if cfg.Storage.Path != "" {
		store, err = sqlite.New(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		logger.Info("using sqlite storage", slog.String("path", cfg.Storage.Path))
	} else {
		store = memstore.New()
		logger.Info("using in-memory storage")
	}
	defer store.Close()

	var backendOpts []openrouter.ClientOption
	if cfg.Backend.BaseURL != "" {
		backendOpts = append(backendOpts, openrouter.WithBaseURL(cfg.Backend.BaseURL))
	}
	backend := openrouter.NewClient(cfg.Backend.APIKey, backendOpts...)

	counters := tokens.NewRegistry()
	counters.Register(tokens.NewOpenAICounter())

	invoker := failover.New(reg, backend, logger)
	detector := interject.NewKeyword(reg)
	eng := engine.New(invoker, detector, counters, cfg.Council.Timeouts, logger)

	acc := costs.New()
	svc := orchestrator.New(
		store,
		memory.New(cfg.Council.WindowSize, logger),
		classifier.NewKeyword(cfg.Council.Keywords),
		classifier.NewTriggerDetector(cfg.Council.LargeContextBytes),
		council.New(reg, cfg.Council.RotationPool, council.NewRotation(0)),
		eng,
		acc,
		jester.New(),
		cfg.Council.EscalateAfterTurns,
		logger,
	)

	srv := server.New(cfg.Server.Port, logger)
	councilfront.NewHandler(svc, reg, acc, store, logger).Register(srv.Router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("shutdown complete")
}
