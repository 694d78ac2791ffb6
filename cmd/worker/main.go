package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/advancementhq/feedback-pipeline/internal/bootstrap"
	"github.com/advancementhq/feedback-pipeline/internal/config"
	"github.com/advancementhq/feedback-pipeline/internal/observability/logging"
)

const service = "worker"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, service, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := app.Metrics
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: m.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeBatchReady(ctx, func(handlerCtx context.Context, batchID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
		defer cancel()

		m.StartBatch()
		start := time.Now()
		report, err := app.ProcessUC.ProcessByID(processCtx, batchID)
		m.FinishBatch(service, time.Since(start), err)
		if err != nil {
			return err
		}

		m.CountEmails(service, report.Kept, report.Dropped, report.Failures)
		if !report.FetchedAt.IsZero() {
			m.ObserveQueueLag(service, start.Sub(report.FetchedAt))
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
