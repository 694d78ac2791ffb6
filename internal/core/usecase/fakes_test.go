package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

var errBackendDown = errors.New("backend unavailable")

// fakeClassifier serves canned score maps keyed by the first candidate
// label, which uniquely identifies each label set the pipeline uses.
type fakeClassifier struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
	errOn  map[string]bool
	err    error
	calls  []string
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, labels []string, _ bool) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := labels[0]
	f.calls = append(f.calls, key)
	if f.err != nil {
		return nil, f.err
	}
	if f.errOn[key] {
		return nil, errBackendDown
	}
	if scores, ok := f.scores[key]; ok {
		return scores, nil
	}
	out := make(map[string]float64, len(labels))
	for _, label := range labels {
		out[label] = 0
	}
	return out, nil
}

func (f *fakeClassifier) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

type fakeSpool struct {
	batches map[string]*domain.Batch
}

func (f *fakeSpool) Save(_ context.Context, batch *domain.Batch) error {
	if f.batches == nil {
		f.batches = make(map[string]*domain.Batch)
	}
	f.batches[batch.ID] = batch
	return nil
}

func (f *fakeSpool) Load(_ context.Context, batchID string) (*domain.Batch, error) {
	batch, ok := f.batches[batchID]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

type fakeSink struct {
	appended  map[string][]domain.OutputRow
	rows      []domain.OutputRow
	appendErr error
}

func (f *fakeSink) AppendRows(_ context.Context, tab string, rows []domain.OutputRow) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	if f.appended == nil {
		f.appended = make(map[string][]domain.OutputRow)
	}
	f.appended[tab] = append(f.appended[tab], rows...)
	return nil
}

func (f *fakeSink) ReadRows(_ context.Context, _, _ time.Time) ([]domain.OutputRow, error) {
	return f.rows, nil
}

type fakeMail struct {
	emails   []domain.Email
	fetchErr error
	read     []string
	labeled  []string
}

func (f *fakeMail) FetchUnread(_ context.Context, max int) ([]domain.Email, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.emails) > max {
		return f.emails[:max], nil
	}
	return f.emails, nil
}

func (f *fakeMail) MarkRead(_ context.Context, messageIDs []string) error {
	f.read = append(f.read, messageIDs...)
	return nil
}

func (f *fakeMail) LabelFiltered(_ context.Context, messageIDs []string) error {
	f.labeled = append(f.labeled, messageIDs...)
	return nil
}

type fakeLedger struct {
	seen         map[string]bool
	marked       map[string][]string
	digestSent   bool
	digestMarked []time.Time
}

func (f *fakeLedger) FilterUnseen(_ context.Context, messageIDs []string) ([]string, error) {
	var unseen []string
	for _, id := range messageIDs {
		if !f.seen[id] {
			unseen = append(unseen, id)
		}
	}
	return unseen, nil
}

func (f *fakeLedger) MarkProcessed(_ context.Context, _ string, messageIDs []string, outcome string) error {
	if f.marked == nil {
		f.marked = make(map[string][]string)
	}
	f.marked[outcome] = append(f.marked[outcome], messageIDs...)
	return nil
}

func (f *fakeLedger) DigestSent(_ context.Context, _ time.Time) (bool, error) {
	return f.digestSent, nil
}

func (f *fakeLedger) MarkDigestSent(_ context.Context, weekStart time.Time, _ string) error {
	f.digestMarked = append(f.digestMarked, weekStart)
	return nil
}

type fakeQueue struct {
	published []string
}

func (f *fakeQueue) PublishBatchReady(_ context.Context, batchID string) error {
	f.published = append(f.published, batchID)
	return nil
}

func (f *fakeQueue) SubscribeBatchReady(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeExporter struct {
	reports []*domain.BatchReport
}

func (f *fakeExporter) Export(_ context.Context, report *domain.BatchReport) error {
	f.reports = append(f.reports, report)
	return nil
}

type fakeSender struct {
	recipient string
	subject   string
	htmlBody  string
	textBody  string
	sent      int
	err       error
}

func (f *fakeSender) SendDigest(_ context.Context, recipient, subject, htmlBody, textBody string) error {
	if f.err != nil {
		return f.err
	}
	f.recipient = recipient
	f.subject = subject
	f.htmlBody = htmlBody
	f.textBody = textBody
	f.sent++
	return nil
}
