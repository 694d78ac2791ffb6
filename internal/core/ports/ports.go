package ports

import (
	"context"
	"time"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

// Classifier is the single point of contact with any zero-shot NLP
// backend. Scores are independent confidences in [0,1]; in single-label
// mode the top-scoring label is "the" classification. Implementations
// truncate input to their configured prefix length.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string, multiLabel bool) (map[string]float64, error)
}

// MailSource supplies already-decoded inbound emails and accepts mailbox
// routing decisions back.
type MailSource interface {
	FetchUnread(ctx context.Context, max int) ([]domain.Email, error)
	MarkRead(ctx context.Context, messageIDs []string) error
	LabelFiltered(ctx context.Context, messageIDs []string) error
}

// DigestSender delivers the rendered weekly digest.
type DigestSender interface {
	SendDigest(ctx context.Context, recipient, subject, htmlBody, textBody string) error
}

// RowSink persists output rows into the tabular system of record, keyed
// by destination tab.
type RowSink interface {
	AppendRows(ctx context.Context, tab string, rows []domain.OutputRow) error
	ReadRows(ctx context.Context, since, until time.Time) ([]domain.OutputRow, error)
}

// ReportExporter writes a local copy of the batch report.
type ReportExporter interface {
	Export(ctx context.Context, report *domain.BatchReport) error
}

// BatchSpool stores fetched batches between ingestion and processing.
type BatchSpool interface {
	Save(ctx context.Context, batch *domain.Batch) error
	Load(ctx context.Context, batchID string) (*domain.Batch, error)
}

// MessageQueue publishes/consumes batch-ready events.
type MessageQueue interface {
	PublishBatchReady(ctx context.Context, batchID string) error
	SubscribeBatchReady(ctx context.Context, handler func(context.Context, string) error) error
}

// ProcessedLedger tracks which messages and digest weeks have already
// been handled, so reruns stay idempotent.
type ProcessedLedger interface {
	FilterUnseen(ctx context.Context, messageIDs []string) ([]string, error)
	MarkProcessed(ctx context.Context, batchID string, messageIDs []string, outcome string) error
	DigestSent(ctx context.Context, weekStart time.Time) (bool, error)
	MarkDigestSent(ctx context.Context, weekStart time.Time, recipient string) error
}
