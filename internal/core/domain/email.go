package domain

import "time"

type BatchStatus string

const (
	BatchSpooled    BatchStatus = "spooled"
	BatchProcessing BatchStatus = "processing"
	BatchDone       BatchStatus = "done"
	BatchFailed     BatchStatus = "failed"
)

// Email is one inbound message under analysis. It is read-only through
// the pipeline; derived classification state lives in separate records
// keyed by batch position.
type Email struct {
	MessageID  string    `json:"message_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Address    string    `json:"address"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
	Source     string    `json:"source"`
}

// FullText joins subject and body the way every classification stage
// sees the message.
func (e Email) FullText() string {
	if e.Subject == "" {
		return e.Body
	}
	return e.Subject + " " + e.Body
}

// Batch is one processing run's worth of unread emails, spooled between
// ingestion and classification.
type Batch struct {
	ID        string      `json:"id"`
	Status    BatchStatus `json:"status"`
	FetchedAt time.Time   `json:"fetched_at"`
	Emails    []Email     `json:"emails"`
}

// OutputRow is one formatted record ready for tabular storage. Created
// once per kept email and never mutated; follow-up fields stay empty for
// human reviewers.
type OutputRow struct {
	FirstName    string
	LastName     string
	Address      string
	Sentiment    ResolvedSentiment
	ReceivedAt   time.Time
	Body         string
	GivingStatus string
	NeedsReview  bool

	// ClusterKey routes the row to a topic-specific tab; empty means the
	// main feed.
	ClusterKey string
}

// BatchReport is the full outcome of processing one batch.
type BatchReport struct {
	BatchID   string
	FetchedAt time.Time
	Rows      []OutputRow
	Clusters  []TopicCluster
	Kept      int
	Dropped   int
	Overrides int
	Failures  int

	// DroppedIDs carries message IDs routed to the filtered-out label.
	DroppedIDs []string
}
