package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/meetingmind/contextd/internal/api"
	"github.com/meetingmind/contextd/internal/config"
	"github.com/meetingmind/contextd/internal/logging"
	"github.com/meetingmind/contextd/internal/meeting"
	"github.com/meetingmind/contextd/internal/meeting/embedder/cached"
	"github.com/meetingmind/contextd/internal/meeting/embedder/mock"
	"github.com/meetingmind/contextd/internal/meeting/embedder/onnx"
	"github.com/meetingmind/contextd/internal/meeting/embedder/openai"
	chromemstore "github.com/meetingmind/contextd/internal/meeting/store/chromem"
	"github.com/meetingmind/contextd/internal/summary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	// The service must not start without a working embedder.
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	if cfg.EmbedCacheEntries > 0 {
		embedder, err = cached.New(embedder, cfg.EmbedCacheEntries)
		if err != nil {
			log.Fatalf("Failed to initialize embedding cache: %v", err)
		}
	}

	store, err := chromemstore.New(cfg.DataDir, embedder)
	if err != nil {
		log.Fatalf("Failed to open meeting store: %v", err)
	}
	defer store.Close()

	manager := meeting.NewManager(store, meeting.WithLogger(logger))

	var summaries summary.Generator = summary.Template{}
	if cfg.AnthropicAPIKey != "" {
		summaries = summary.NewClaude(cfg.AnthropicAPIKey, cfg.SummaryModel)
		logger.Info("claude summary generation enabled", "model", cfg.SummaryModel)
	}

	handler := api.NewHandler(manager, summaries, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", srv.Addr, "embedder", cfg.Embedder, "data_dir", cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", srv.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server exited gracefully")
}

func buildEmbedder(cfg *config.Config) (meeting.Embedder, error) {
	switch cfg.Embedder {
	case config.EmbedderMock:
		return mock.New(), nil
	case config.EmbedderOpenAI:
		return openai.New(cfg.OpenAIAPIKey)
	case config.EmbedderONNX:
		return onnx.New(onnx.Config{
			ModelPath:     cfg.ONNXModelPath,
			TokenizerPath: cfg.ONNXTokenizerPath,
			LibraryPath:   cfg.ONNXLibraryPath,
		})
	}
	return nil, goerr.New("unknown embedder", goerr.V("embedder", cfg.Embedder))
}
