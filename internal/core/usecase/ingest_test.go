package usecase

import (
	"context"
	"testing"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

func TestIngestBatchSkipsSeenMessages(t *testing.T) {
	mail := &fakeMail{emails: []domain.Email{
		{MessageID: "m-1", Body: "first"},
		{MessageID: "m-2", Body: "second"},
		{MessageID: "m-3", Body: "third"},
	}}
	ledger := &fakeLedger{seen: map[string]bool{"m-2": true}}
	spool := &fakeSpool{}
	queue := &fakeQueue{}

	uc := NewIngestBatchUseCase(mail, ledger, spool, queue, 50, nil)
	batch, err := uc.IngestBatch(context.Background())
	if err != nil {
		t.Fatalf("IngestBatch() error = %v", err)
	}
	if batch == nil {
		t.Fatal("IngestBatch() = nil, want a batch")
	}
	if len(batch.Emails) != 2 {
		t.Fatalf("batch emails = %d, want 2 after dedup", len(batch.Emails))
	}
	if batch.Emails[0].MessageID != "m-1" || batch.Emails[1].MessageID != "m-3" {
		t.Errorf("batch emails = %v, want m-1 and m-3", batch.Emails)
	}
	if batch.Status != domain.BatchSpooled {
		t.Errorf("batch status = %q, want %q", batch.Status, domain.BatchSpooled)
	}

	if _, ok := spool.batches[batch.ID]; !ok {
		t.Error("batch not saved to spool")
	}
	if len(queue.published) != 1 || queue.published[0] != batch.ID {
		t.Errorf("published = %v, want [%s]", queue.published, batch.ID)
	}
}

func TestIngestBatchNothingNew(t *testing.T) {
	tests := []struct {
		name   string
		mail   *fakeMail
		ledger *fakeLedger
	}{
		{
			name:   "empty mailbox",
			mail:   &fakeMail{},
			ledger: &fakeLedger{},
		},
		{
			name:   "every message already processed",
			mail:   &fakeMail{emails: []domain.Email{{MessageID: "m-1"}}},
			ledger: &fakeLedger{seen: map[string]bool{"m-1": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spool := &fakeSpool{}
			queue := &fakeQueue{}
			uc := NewIngestBatchUseCase(tt.mail, tt.ledger, spool, queue, 50, nil)

			batch, err := uc.IngestBatch(context.Background())
			if err != nil {
				t.Fatalf("IngestBatch() error = %v", err)
			}
			if batch != nil {
				t.Errorf("IngestBatch() = %v, want nil", batch)
			}
			if len(spool.batches) != 0 {
				t.Error("batch spooled with nothing new")
			}
			if len(queue.published) != 0 {
				t.Errorf("published = %v, want none", queue.published)
			}
		})
	}
}

func TestIngestBatchHonorsFetchLimit(t *testing.T) {
	mail := &fakeMail{emails: []domain.Email{
		{MessageID: "m-1"}, {MessageID: "m-2"}, {MessageID: "m-3"},
	}}
	uc := NewIngestBatchUseCase(mail, &fakeLedger{}, &fakeSpool{}, &fakeQueue{}, 2, nil)

	batch, err := uc.IngestBatch(context.Background())
	if err != nil {
		t.Fatalf("IngestBatch() error = %v", err)
	}
	if len(batch.Emails) != 2 {
		t.Errorf("batch emails = %d, want the fetch limit of 2", len(batch.Emails))
	}
}

func TestIngestBatchFetchFailure(t *testing.T) {
	mail := &fakeMail{fetchErr: errBackendDown}
	uc := NewIngestBatchUseCase(mail, &fakeLedger{}, &fakeSpool{}, &fakeQueue{}, 50, nil)

	if _, err := uc.IngestBatch(context.Background()); err == nil {
		t.Fatal("IngestBatch() error = nil, want fetch failure")
	}
}
