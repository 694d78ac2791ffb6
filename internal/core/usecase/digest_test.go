package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

var digestWeekStart = time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

func digestRow(day int, sentiment domain.ResolvedSentiment, giving, body string) domain.OutputRow {
	return domain.OutputRow{
		FirstName:    "Ada",
		LastName:     "Chen",
		Address:      "ada@example.com",
		Sentiment:    sentiment,
		GivingStatus: giving,
		Body:         body,
		ReceivedAt:   digestWeekStart.AddDate(0, 0, day),
	}
}

func TestSendWeeklyBuildsAndSendsDigest(t *testing.T) {
	sink := &fakeSink{rows: []domain.OutputRow{
		digestRow(0, domain.SentimentPositive, "No", "Thank you for the wonderful reunion weekend."),
		digestRow(1, domain.SentimentPositive, "No", "I really appreciate the mentorship program."),
		digestRow(2, domain.SentimentPositive, "No", "Grateful for the scholarship support over the years."),
		digestRow(3, domain.SentimentNegative, "Paused giving", "I am pausing my donation until the tuition concern is addressed."),
	}}
	sender := &fakeSender{}
	ledger := &fakeLedger{}

	uc := NewWeeklyDigestUseCase(sink, sender, ledger, "advancement@college.edu", "https://sheets.example.com/doc", nil)
	if err := uc.SendWeekly(context.Background(), digestWeekStart); err != nil {
		t.Fatalf("SendWeekly() error = %v", err)
	}

	if sender.sent != 1 {
		t.Fatalf("sent = %d, want 1", sender.sent)
	}
	if sender.recipient != "advancement@college.edu" {
		t.Errorf("recipient = %q", sender.recipient)
	}
	if !strings.Contains(sender.subject, "January 12") {
		t.Errorf("subject = %q, want the week start date", sender.subject)
	}

	for _, want := range []string{
		"Action Required",
		"predominantly positive",
		"Gratitude &amp; Appreciation",
		"https://sheets.example.com/doc",
	} {
		if !strings.Contains(sender.htmlBody, want) {
			t.Errorf("html body missing %q", want)
		}
	}
	for _, want := range []string{
		"Total Emails Processed: 4",
		"Positive: 3 (75.0%)",
		"Paused Giving: 1",
		"Giving Status: Paused giving",
	} {
		if !strings.Contains(sender.textBody, want) {
			t.Errorf("text body missing %q", want)
		}
	}

	if len(ledger.digestMarked) != 1 || !ledger.digestMarked[0].Equal(digestWeekStart) {
		t.Errorf("digest marked = %v, want [%v]", ledger.digestMarked, digestWeekStart)
	}
}

func TestSendWeeklyIdempotent(t *testing.T) {
	sender := &fakeSender{}
	ledger := &fakeLedger{digestSent: true}

	uc := NewWeeklyDigestUseCase(&fakeSink{}, sender, ledger, "advancement@college.edu", "https://sheets.example.com/doc", nil)
	if err := uc.SendWeekly(context.Background(), digestWeekStart); err != nil {
		t.Fatalf("SendWeekly() error = %v", err)
	}
	if sender.sent != 0 {
		t.Errorf("sent = %d, want 0 when the week is already covered", sender.sent)
	}
}

func TestSendWeeklyEmptyWeek(t *testing.T) {
	sender := &fakeSender{}
	uc := NewWeeklyDigestUseCase(&fakeSink{}, sender, &fakeLedger{}, "advancement@college.edu", "https://sheets.example.com/doc", nil)

	if err := uc.SendWeekly(context.Background(), digestWeekStart); err != nil {
		t.Fatalf("SendWeekly() error = %v", err)
	}
	if sender.sent != 1 {
		t.Fatalf("sent = %d, want the empty-week notice to go out", sender.sent)
	}
	if !strings.Contains(sender.textBody, "No new alumni feedback emails") {
		t.Errorf("text body = %q, want the empty-week notice", sender.textBody)
	}
}

func TestExtractThemes(t *testing.T) {
	rows := []domain.OutputRow{
		{Body: "Thank you for the reunion, it was wonderful."},
		{Body: "So grateful for the faculty mentorship."},
		{Body: "I appreciate the campus tour."},
		{Body: "Planning a donation to the endowment."},
		{Body: "Concern about the dining facilities."},
	}

	major, minor := extractThemes(rows)
	if len(major) != 3 {
		t.Fatalf("major themes = %v, want three", major)
	}
	if major[0].Name != "Gratitude & Appreciation" || major[0].Count != 3 {
		t.Errorf("top theme = %+v, want Gratitude & Appreciation x3", major[0])
	}
	if len(minor) == 0 {
		t.Error("minor themes empty, want the long tail present")
	}
}

func TestExtractThemesFallback(t *testing.T) {
	rows := []domain.OutputRow{{Body: "Hello from the class of 1999."}, {Body: "Just checking in."}}

	major, minor := extractThemes(rows)
	if len(major) != 1 || major[0].Name != fallbackTheme {
		t.Errorf("major = %v, want only the fallback theme", major)
	}
	if len(minor) != 0 {
		t.Errorf("minor = %v, want none", minor)
	}
}
