package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
)

const clusterTabMaxChars = 50

// ProcessBatchUseCase runs the full classification pipeline for one
// spooled batch: clustering, admission filtering with cluster override,
// sentiment/intent classification, sentiment resolution, and row
// publication.
type ProcessBatchUseCase struct {
	spool     ports.BatchSpool
	clusterer *TopicClusterer
	admission *AdmissionFilter
	sentiment *SentimentClassifier
	sink      ports.RowSink
	exporter  ports.ReportExporter
	mail      ports.MailSource
	ledger    ports.ProcessedLedger
	workers   int
	logger    *slog.Logger
}

func NewProcessBatchUseCase(
	spool ports.BatchSpool,
	clusterer *TopicClusterer,
	admission *AdmissionFilter,
	sentiment *SentimentClassifier,
	sink ports.RowSink,
	exporter ports.ReportExporter,
	mail ports.MailSource,
	ledger ports.ProcessedLedger,
	workers int,
	logger *slog.Logger,
) *ProcessBatchUseCase {
	if workers <= 0 {
		workers = defaultClassifyWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessBatchUseCase{
		spool:     spool,
		clusterer: clusterer,
		admission: admission,
		sentiment: sentiment,
		sink:      sink,
		exporter:  exporter,
		mail:      mail,
		ledger:    ledger,
		workers:   workers,
		logger:    logger,
	}
}

// ProcessByID loads and classifies one batch. Per-email classification
// failures never abort the batch; the failed email carries its
// conservative default markers into the output so a reviewer sees it.
func (uc *ProcessBatchUseCase) ProcessByID(ctx context.Context, batchID string) (*domain.BatchReport, error) {
	batch, err := uc.spool.Load(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if len(batch.Emails) == 0 {
		uc.logger.Info("batch_empty", "batch_id", batchID)
		return &domain.BatchReport{BatchID: batchID}, nil
	}

	report := uc.classifyBatch(ctx, batch)

	if err := uc.publish(ctx, report); err != nil {
		return nil, err
	}
	uc.routeMailbox(ctx, batch, report)
	uc.recordLedger(ctx, batch, report)

	uc.logger.Info("batch_processed",
		"batch_id", batchID,
		"total", len(batch.Emails),
		"kept", report.Kept,
		"dropped", report.Dropped,
		"cluster_overrides", report.Overrides,
		"classify_failures", report.Failures,
	)
	return report, nil
}

// classifyBatch runs clustering before admission so that emails in a
// big topic cluster are never silently discarded by the generic filter.
func (uc *ProcessBatchUseCase) classifyBatch(ctx context.Context, batch *domain.Batch) *domain.BatchReport {
	report := &domain.BatchReport{BatchID: batch.ID, FetchedAt: batch.FetchedAt}

	clusters := uc.clusterer.DetectClusters(ctx, batch.Emails)
	report.Clusters = clusters.Clusters

	type verdict struct {
		keep     bool
		override bool
	}
	verdicts := make([]verdict, len(batch.Emails))
	for i, email := range batch.Emails {
		decision := uc.admission.Decide(ctx, email.Subject, email.Body)
		keep := decision.IsFeedback
		override := false
		if !keep && clusters.Assignments[i] != domain.NoCluster {
			keep = true
			override = true
		}
		verdicts[i] = verdict{keep: keep, override: override}
	}

	results := make([]domain.ClassificationResult, len(batch.Emails))
	failed := make([]bool, len(batch.Emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, email := range batch.Emails {
		if !verdicts[i].keep {
			continue
		}
		g.Go(func() error {
			result, err := uc.sentiment.Classify(gctx, email.Body)
			if err != nil {
				uc.logger.Warn("email_classify_failed",
					"batch_id", batch.ID,
					"message_id", email.MessageID,
					"error", err,
				)
				failed[i] = true
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	for i, email := range batch.Emails {
		if !verdicts[i].keep {
			report.Dropped++
			report.DroppedIDs = append(report.DroppedIDs, email.MessageID)
			continue
		}
		report.Kept++
		if verdicts[i].override {
			report.Overrides++
		}
		if failed[i] {
			report.Failures++
		}

		row := domain.OutputRow{
			FirstName:    email.FirstName,
			LastName:     email.LastName,
			Address:      email.Address,
			Sentiment:    ResolveSentiment(results[i]),
			ReceivedAt:   email.ReceivedAt,
			Body:         email.Body,
			GivingStatus: results[i].GivingStatus.String(),
			NeedsReview:  results[i].NeedsReview() || failed[i],
		}
		if idx := clusters.Assignments[i]; idx != domain.NoCluster {
			row.ClusterKey = ClusterTab(clusters.Clusters[idx], email.ReceivedAt)
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

func (uc *ProcessBatchUseCase) publish(ctx context.Context, report *domain.BatchReport) error {
	for tab, rows := range groupRowsByTab(report.Rows) {
		if err := uc.sink.AppendRows(ctx, tab, rows); err != nil {
			return fmt.Errorf("append rows to %q: %w", tab, err)
		}
	}
	if uc.exporter != nil {
		if err := uc.exporter.Export(ctx, report); err != nil {
			uc.logger.Warn("report_export_failed", "batch_id", report.BatchID, "error", err)
		}
	}
	return nil
}

// routeMailbox applies labels and read state back to the mail source.
// Failures here are warnings: the rows are already persisted.
func (uc *ProcessBatchUseCase) routeMailbox(ctx context.Context, batch *domain.Batch, report *domain.BatchReport) {
	if len(report.DroppedIDs) > 0 {
		if err := uc.mail.LabelFiltered(ctx, report.DroppedIDs); err != nil {
			uc.logger.Warn("label_filtered_failed", "batch_id", batch.ID, "error", err)
		}
	}

	ids := make([]string, 0, len(batch.Emails))
	for _, email := range batch.Emails {
		ids = append(ids, email.MessageID)
	}
	if err := uc.mail.MarkRead(ctx, ids); err != nil {
		uc.logger.Warn("mark_read_failed", "batch_id", batch.ID, "error", err)
	}
}

func (uc *ProcessBatchUseCase) recordLedger(ctx context.Context, batch *domain.Batch, report *domain.BatchReport) {
	kept := make([]string, 0, report.Kept)
	dropped := make(map[string]bool, len(report.DroppedIDs))
	for _, id := range report.DroppedIDs {
		dropped[id] = true
	}
	for _, email := range batch.Emails {
		if !dropped[email.MessageID] {
			kept = append(kept, email.MessageID)
		}
	}

	if err := uc.ledger.MarkProcessed(ctx, batch.ID, kept, "kept"); err != nil {
		uc.logger.Warn("ledger_mark_failed", "batch_id", batch.ID, "outcome", "kept", "error", err)
	}
	if err := uc.ledger.MarkProcessed(ctx, batch.ID, report.DroppedIDs, "dropped"); err != nil {
		uc.logger.Warn("ledger_mark_failed", "batch_id", batch.ID, "outcome", "dropped", "error", err)
	}
}

// MonthTab is the destination worksheet for a main-feed row, e.g.
// "jan 2026".
func MonthTab(received time.Time) string {
	return strings.ToLower(received.Format("Jan 2006"))
}

// ClusterTab is the destination worksheet for a cluster row, e.g.
// "President Raymond - Jan 2026", truncated to the sheet-name limit.
func ClusterTab(cluster domain.TopicCluster, received time.Time) string {
	name := fmt.Sprintf("%s - %s", cluster.Entity, received.Format("Jan 2006"))
	if len(name) > clusterTabMaxChars {
		name = name[:clusterTabMaxChars-3] + "..."
	}
	return name
}

func groupRowsByTab(rows []domain.OutputRow) map[string][]domain.OutputRow {
	grouped := make(map[string][]domain.OutputRow)
	for _, row := range rows {
		tab := row.ClusterKey
		if tab == "" {
			tab = MonthTab(row.ReceivedAt)
		}
		grouped[tab] = append(grouped[tab], row)
	}
	return grouped
}
