package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
)

// IngestBatchUseCase pulls unread mail, deduplicates against the
// processed ledger, spools the batch and signals the worker queue.
type IngestBatchUseCase struct {
	mail     ports.MailSource
	ledger   ports.ProcessedLedger
	spool    ports.BatchSpool
	queue    ports.MessageQueue
	maxFetch int
	logger   *slog.Logger
}

func NewIngestBatchUseCase(
	mail ports.MailSource,
	ledger ports.ProcessedLedger,
	spool ports.BatchSpool,
	queue ports.MessageQueue,
	maxFetch int,
	logger *slog.Logger,
) *IngestBatchUseCase {
	if maxFetch <= 0 {
		maxFetch = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestBatchUseCase{
		mail:     mail,
		ledger:   ledger,
		spool:    spool,
		queue:    queue,
		maxFetch: maxFetch,
		logger:   logger,
	}
}

// IngestBatch fetches the current unread window. Messages already in
// the ledger are skipped so a re-run of a crashed cycle cannot produce
// duplicate output rows. Returns nil when the mailbox held nothing new.
func (uc *IngestBatchUseCase) IngestBatch(ctx context.Context) (*domain.Batch, error) {
	emails, err := uc.mail.FetchUnread(ctx, uc.maxFetch)
	if err != nil {
		return nil, fmt.Errorf("fetch unread: %w", err)
	}
	if len(emails) == 0 {
		uc.logger.Info("mailbox_empty")
		return nil, nil
	}

	ids := make([]string, 0, len(emails))
	for _, email := range emails {
		ids = append(ids, email.MessageID)
	}
	unseen, err := uc.ledger.FilterUnseen(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("filter unseen: %w", err)
	}
	keep := make(map[string]bool, len(unseen))
	for _, id := range unseen {
		keep[id] = true
	}

	fresh := make([]domain.Email, 0, len(unseen))
	for _, email := range emails {
		if keep[email.MessageID] {
			fresh = append(fresh, email)
		}
	}
	if len(fresh) == 0 {
		uc.logger.Info("batch_all_seen", "fetched", len(emails))
		return nil, nil
	}

	batch := &domain.Batch{
		ID:        uuid.NewString(),
		Status:    domain.BatchSpooled,
		FetchedAt: time.Now().UTC(),
		Emails:    fresh,
	}
	if err := uc.spool.Save(ctx, batch); err != nil {
		return nil, fmt.Errorf("spool batch: %w", err)
	}
	if err := uc.queue.PublishBatchReady(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("publish batch ready: %w", err)
	}

	uc.logger.Info("batch_ingested",
		"batch_id", batch.ID,
		"fetched", len(emails),
		"fresh", len(fresh),
	)
	return batch, nil
}
