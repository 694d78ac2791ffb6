package ports

import (
	"context"
	"time"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

// BatchIngestor is the inbound contract for the fetch-and-spool step.
type BatchIngestor interface {
	IngestBatch(ctx context.Context) (*domain.Batch, error)
}

// BatchProcessor is the inbound contract for asynchronous batch
// classification.
type BatchProcessor interface {
	ProcessByID(ctx context.Context, batchID string) (*domain.BatchReport, error)
}

// DigestService builds and sends the weekly summary for a week starting
// at weekStart.
type DigestService interface {
	SendWeekly(ctx context.Context, weekStart time.Time) error
}
