package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLedgerFilterUnseenPreservesOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	ledger := NewLedger(db)
	rows := sqlmock.NewRows([]string{"message_id"}).AddRow("m-2")

	mock.ExpectQuery("FROM processed_messages").
		WithArgs(`{"m-1","m-2","m-3"}`).
		WillReturnRows(rows)

	unseen, err := ledger.FilterUnseen(context.Background(), []string{"m-1", "m-2", "m-3"})
	if err != nil {
		t.Fatalf("FilterUnseen() error = %v", err)
	}
	if len(unseen) != 2 || unseen[0] != "m-1" || unseen[1] != "m-3" {
		t.Fatalf("unseen = %v, want [m-1 m-3]", unseen)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLedgerFilterUnseenEmptyInput(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	unseen, err := NewLedger(db).FilterUnseen(context.Background(), nil)
	if err != nil {
		t.Fatalf("FilterUnseen() error = %v", err)
	}
	if len(unseen) != 0 {
		t.Fatalf("expected no ids, got %v", unseen)
	}
}

func TestLedgerMarkProcessedInsertsEachMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	ledger := NewLedger(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO processed_messages").
		WithArgs("m-1", "b-1", "kept", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO processed_messages").
		WithArgs("m-2", "b-1", "kept", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := ledger.MarkProcessed(context.Background(), "b-1", []string{"m-1", "m-2"}, "kept"); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLedgerDigestSentRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	ledger := NewLedger(db)
	weekStart := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM sent_digests").
		WithArgs("2026-01-12").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO sent_digests").
		WithArgs("2026-01-12", "advancement@example.edu", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sent, err := ledger.DigestSent(context.Background(), weekStart)
	if err != nil {
		t.Fatalf("DigestSent() error = %v", err)
	}
	if sent {
		t.Fatalf("expected digest not sent yet")
	}
	if err := ledger.MarkDigestSent(context.Background(), weekStart, "advancement@example.edu"); err != nil {
		t.Fatalf("MarkDigestSent() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
