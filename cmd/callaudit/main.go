package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrelvoice/callaudit/internal/analyzer"
	"github.com/kestrelvoice/callaudit/internal/api"
	"github.com/kestrelvoice/callaudit/internal/bus"
	"github.com/kestrelvoice/callaudit/internal/config"
	"github.com/kestrelvoice/callaudit/internal/evaluator"
	"github.com/kestrelvoice/callaudit/internal/notify"
	"github.com/kestrelvoice/callaudit/internal/openai"
	"github.com/kestrelvoice/callaudit/internal/rubric"
	"github.com/kestrelvoice/callaudit/internal/store"
	"github.com/kestrelvoice/callaudit/internal/transcriber"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("callaudit starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// OpenAI client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	// Rubric seeds
	if cfg.RubricSeedPath != "" {
		seedRubrics(ctx, db, cfg.RubricSeedPath)
	}

	// Evaluator
	ev := evaluator.New(llm, cfg.EvalTimeout, cfg.EvalRetries, slog.Default())

	// NATS
	busClient, err := bus.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Low-score webhook (optional — analysis runs without it, just no alerts)
	var webhook *notify.Webhook
	if cfg.AlertWebhookURL != "" {
		webhook = notify.NewWebhook(cfg.AlertWebhookURL, slog.Default())
		slog.Info("low-score webhook ready", "threshold", cfg.AlertScoreThreshold)
	} else {
		slog.Warn("alert webhook not configured — running without low-score alerts")
	}

	// Analyzer — the main pipeline
	an := analyzer.New(db, ev, busClient, webhook, cfg.AlertScoreThreshold, slog.Default())

	// Transcriber
	tr := transcriber.New(db, llm, busClient, cfg.RecordingsDir, cfg.TranscribeTimeout, slog.Default())

	// Subscribe to call lifecycle events
	if err := busClient.Subscribe(bus.SubjectRecordingStored, tr.HandleRecordingStored); err != nil {
		slog.Error("failed to subscribe to recording events", "error", err)
		os.Exit(1)
	}
	if err := busClient.Subscribe(bus.SubjectTranscriptStored, an.HandleTranscriptStored); err != nil {
		slog.Error("failed to subscribe to transcript events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, an, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("callaudit ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("callaudit stopped")
}

func seedRubrics(ctx context.Context, db *store.Store, path string) {
	rubrics, err := rubric.LoadSeedFile(path)
	if err != nil {
		slog.Error("failed to load rubric seed file", "path", path, "error", err)
		os.Exit(1)
	}
	created := 0
	for _, r := range rubrics {
		ok, err := db.SeedRubric(ctx, r)
		if err != nil {
			slog.Error("failed to seed rubric", "name", r.Name, "error", err)
			os.Exit(1)
		}
		if ok {
			created++
		}
	}
	slog.Info("rubrics seeded", "total", len(rubrics), "created", created)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
