// Package bootstrap wires configuration, adapters, and use cases into
// a ready-to-run application.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/advancementhq/feedback-pipeline/internal/config"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
	"github.com/advancementhq/feedback-pipeline/internal/core/usecase"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/classifier/zeroshot"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/export/excel"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/googleauth"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/ledger/postgres"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/mail/gmail"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/queue/nats"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/resilience"
	sheetsink "github.com/advancementhq/feedback-pipeline/internal/infrastructure/sheets/google"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/spool/localfs"
	"github.com/advancementhq/feedback-pipeline/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.PipelineMetrics

	Queue     ports.MessageQueue
	Ledger    ports.ProcessedLedger
	IngestUC  ports.BatchIngestor
	ProcessUC ports.BatchProcessor
	DigestUC  ports.DigestService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := metrics.NewPipelineMetrics(service)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ledger := postgres.NewLedger(db)
	if err := ledger.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	spool, err := localfs.New(cfg.SpoolPath)
	if err != nil {
		return nil, fmt.Errorf("init batch spool: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, logger, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	classifier := zeroshot.New(cfg.ClassifierURL, cfg.ClassifierModel, zeroshot.Options{
		RequestsPerSecond:  cfg.ClassifierRPS,
		RequestTimeout:     time.Duration(cfg.ClassifierTimeout) * time.Second,
		MaxInputChars:      cfg.ClassifierMaxChars,
		ResilienceExecutor: executor,
		ObserveDuration: func(d time.Duration) {
			m.ObserveClassify(service, d)
		},
	})

	googleClient, err := googleauth.NewClient(ctx, cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	if err != nil {
		return nil, fmt.Errorf("init google client: %w", err)
	}
	mailSource, err := gmail.NewSource(ctx, googleClient, cfg.GmailQuery, logger)
	if err != nil {
		return nil, fmt.Errorf("init gmail source: %w", err)
	}
	digestSender, err := gmail.NewDigestSender(ctx, googleClient, cfg.DigestFrom)
	if err != nil {
		return nil, fmt.Errorf("init digest sender: %w", err)
	}
	sink, err := sheetsink.NewSink(ctx, googleClient, cfg.SpreadsheetID, executor, logger)
	if err != nil {
		return nil, fmt.Errorf("init sheet sink: %w", err)
	}
	exporter, err := excel.NewExporter(cfg.ReportPath, logger)
	if err != nil {
		return nil, fmt.Errorf("init report exporter: %w", err)
	}

	vocab, err := config.LoadVocabulary(cfg.KeywordsFile)
	if err != nil {
		return nil, fmt.Errorf("load keyword vocabulary: %w", err)
	}

	admissionThresholds := usecase.DefaultAdmissionThresholds()
	admissionThresholds.Feedback = cfg.FeedbackConfidence
	admission := usecase.NewAdmissionFilter(classifier, vocab, admissionThresholds, logger)
	sentiment := usecase.NewSentimentClassifier(classifier, vocab, usecase.SentimentThresholds{
		Sentiment:  cfg.SentimentThreshold,
		AxisFloor:  cfg.AxisFloor,
		Neutral:    cfg.NeutralThreshold,
		Donation:   cfg.DonationThreshold,
		Withdrawal: cfg.WithdrawalThreshold,
	}, logger)
	clusterer := usecase.NewTopicClusterer(classifier, cfg.MinClusterSize, cfg.SentimentWorkers, logger)

	ingestUC := usecase.NewIngestBatchUseCase(mailSource, ledger, spool, queue, cfg.FetchMaxResults, logger)
	processUC := usecase.NewProcessBatchUseCase(spool, clusterer, admission, sentiment, sink, exporter, mailSource, ledger, cfg.SentimentWorkers, logger)
	digestUC := usecase.NewWeeklyDigestUseCase(sink, digestSender, ledger, cfg.DigestRecipient, cfg.SheetURL, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,

		Queue:  queue,
		Ledger: ledger,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		DigestUC:  digestUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
