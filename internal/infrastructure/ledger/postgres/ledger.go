// Package postgres tracks processed messages and sent digests so that
// reruns and overlapping workers never double-handle mail.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) EnsureSchema(ctx context.Context) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across processor/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026081501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS processed_messages (
	message_id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processed_messages_batch ON processed_messages(batch_id);

CREATE TABLE IF NOT EXISTS sent_digests (
	week_start DATE PRIMARY KEY,
	recipient TEXT NOT NULL,
	sent_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// FilterUnseen returns the subset of messageIDs with no ledger entry,
// preserving input order.
func (l *Ledger) FilterUnseen(ctx context.Context, messageIDs []string) ([]string, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(messageIDs))
	rows, err := l.db.QueryContext(ctx, `
SELECT message_id
FROM processed_messages
WHERE message_id = ANY($1::text[])
`, pgTextArray(messageIDs))
	if err != nil {
		return nil, fmt.Errorf("query processed messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan processed message: %w", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed messages: %w", err)
	}

	unseen := make([]string, 0, len(messageIDs))
	for _, id := range messageIDs {
		if !seen[id] {
			unseen = append(unseen, id)
		}
	}
	return unseen, nil
}

// pgTextArray renders a text[] literal; the stdlib driver cannot bind
// Go slices directly.
func pgTextArray(values []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

func (l *Ledger) MarkProcessed(ctx context.Context, batchID string, messageIDs []string, outcome string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, id := range messageIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO processed_messages (message_id, batch_id, outcome, processed_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (message_id) DO NOTHING
`, id, batchID, outcome, now); err != nil {
			return fmt.Errorf("mark processed %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark tx: %w", err)
	}
	return nil
}

func (l *Ledger) DigestSent(ctx context.Context, weekStart time.Time) (bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM sent_digests
WHERE week_start = $1
`, weekStart.UTC().Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query sent digests: %w", err)
	}
	return count > 0, nil
}

func (l *Ledger) MarkDigestSent(ctx context.Context, weekStart time.Time, recipient string) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO sent_digests (week_start, recipient, sent_at)
VALUES ($1,$2,$3)
ON CONFLICT (week_start) DO NOTHING
`, weekStart.UTC().Format("2006-01-02"), recipient, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark digest sent: %w", err)
	}
	return nil
}
