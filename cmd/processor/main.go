package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/advancementhq/feedback-pipeline/internal/bootstrap"
	"github.com/advancementhq/feedback-pipeline/internal/config"
	"github.com/advancementhq/feedback-pipeline/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewJSONLogger("processor", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "processor", logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	interval := time.Duration(cfg.FetchIntervalSeconds) * time.Second
	logger.Info("processor_started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ingest(ctx, app)
	for {
		select {
		case <-ctx.Done():
			logger.Info("processor_stopped")
			return
		case <-ticker.C:
			ingest(ctx, app)
		}
	}
}

func ingest(ctx context.Context, app *bootstrap.App) {
	ingestCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	batch, err := app.IngestUC.IngestBatch(ingestCtx)
	if err != nil {
		app.Logger.Error("ingest_failed", "error", err)
		return
	}
	if batch == nil {
		return
	}
	app.Logger.Info("batch_queued", "batch_id", batch.ID, "emails", len(batch.Emails))
}
