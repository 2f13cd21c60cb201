package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/agenthands/listingcheck/internal/config"
	"github.com/agenthands/listingcheck/internal/core"
	"github.com/agenthands/listingcheck/internal/core/similarity"
	"github.com/agenthands/listingcheck/internal/llm"
	"github.com/agenthands/listingcheck/internal/metrics"
	"github.com/agenthands/listingcheck/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		clog.InfoContextf(ctx, "No .env file found, using environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		clog.FatalContextf(ctx, "Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		clog.FatalContextf(ctx, "Invalid environment override: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		clog.FatalContextf(ctx, "Invalid configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()})))
	if cfg.Logging.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()

	comparator, err := llm.NewComparator(ctx, cfg.LLM, cfg.Embedding)
	if err != nil {
		clog.FatalContextf(ctx, "Failed to initialize comparator: %v", err)
	}
	if closer, ok := comparator.(io.Closer); ok {
		defer closer.Close()
	}
	embedder, err := llm.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		clog.FatalContextf(ctx, "Failed to initialize embedder: %v", err)
	}
	defer embedder.Close()

	engine := core.NewEngine(similarity.NewEmbeddingProvider(embedder), comparator)
	engine.Recorder = metrics.Recorder{}
	svc := core.NewService(engine, cfg.Thresholds)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.NewServer(svc, cfg.Server).SetupRouter(),
	}

	go func() {
		clog.FromContext(ctx).
			With("port", cfg.Server.Port).
			With("llm_provider", cfg.LLM.Provider).
			With("llm_model", cfg.LLM.Model).
			With("embedding_model", cfg.Embedding.Model).
			Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.FatalContextf(ctx, "Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	clog.InfoContextf(ctx, "Shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		clog.FromContext(shutdownCtx).With("error", err).Error("Graceful shutdown failed")
	}
}
