package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/textsignal"
)

func newTestSentimentClassifier(classifier *fakeClassifier) *SentimentClassifier {
	return NewSentimentClassifier(classifier, textsignal.DefaultVocabulary(), DefaultSentimentThresholds(), nil)
}

func sentimentScores(gratitude, complaint, neutral float64) map[string]float64 {
	return map[string]float64{
		labelGratitude: gratitude,
		labelComplaint: complaint,
		labelNeutral:   neutral,
	}
}

func TestSentimentAxes(t *testing.T) {
	tests := []struct {
		name         string
		scores       map[string]float64
		wantPositive domain.TriState
		wantNegative domain.TriState
		wantReview   bool
	}{
		{
			name:         "clear gratitude",
			scores:       sentimentScores(0.8, 0.05, 0.1),
			wantPositive: domain.Yes,
			wantNegative: domain.Null,
		},
		{
			name:         "clear complaint",
			scores:       sentimentScores(0.05, 0.8, 0.1),
			wantPositive: domain.Null,
			wantNegative: domain.Yes,
		},
		{
			name:         "mixed email carries both axes",
			scores:       sentimentScores(0.5, 0.4, 0.05),
			wantPositive: domain.Yes,
			wantNegative: domain.Yes,
		},
		{
			name:         "dominant neutral declines both axes",
			scores:       sentimentScores(0.1, 0.05, 0.8),
			wantPositive: domain.Null,
			wantNegative: domain.Null,
			wantReview:   true,
		},
		{
			name:         "mid band commits to No on both axes",
			scores:       sentimentScores(0.2, 0.18, 0.3),
			wantPositive: domain.No,
			wantNegative: domain.No,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{scores: map[string]map[string]float64{
				labelGratitude: tt.scores,
			}}
			sc := newTestSentimentClassifier(classifier)

			result, err := sc.Classify(context.Background(), "The library hours announcement reached me yesterday afternoon.")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if result.Positive != tt.wantPositive {
				t.Errorf("Positive = %q, want %q", result.Positive, tt.wantPositive)
			}
			if result.Negative != tt.wantNegative {
				t.Errorf("Negative = %q, want %q", result.Negative, tt.wantNegative)
			}
			if result.NeedsReview() != tt.wantReview {
				t.Errorf("NeedsReview() = %v, want %v", result.NeedsReview(), tt.wantReview)
			}
		})
	}
}

func TestSentimentDonationIntent(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  bool
	}{
		{"above threshold", 0.3, true},
		{"at threshold", 0.20, false},
		{"below threshold", 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{scores: map[string]map[string]float64{
				labelGratitude: sentimentScores(0.5, 0.1, 0.2),
				labelDonation:  {labelDonation: tt.score},
			}}
			sc := newTestSentimentClassifier(classifier)

			result, err := sc.Classify(context.Background(), "Checking in about the scholarship fund after reunion weekend.")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if result.DonationIntent != tt.want {
				t.Errorf("DonationIntent = %v, want %v", result.DonationIntent, tt.want)
			}
		})
	}
}

func TestGivingStatusKeywordPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.GivingStatus
	}{
		{
			name: "removal outranks addition in the same email",
			text: "I am going to remove you from my will, though years ago I wanted to add you to my will.",
			want: domain.GivingStatus{domain.RemovedBequest},
		},
		{
			name: "bequest addition and gift accumulate",
			text: "I would like to add you to my will and also make a gift toward the new library fund.",
			want: domain.GivingStatus{domain.AddedBequest, domain.MakingGift},
		},
		{
			name: "resumed giving",
			text: "Good news: after two years away I plan to resume my giving this semester.",
			want: domain.GivingStatus{domain.ResumedGiving},
		},
		{
			name: "paused giving keyword",
			text: "Given the tuition decision I have decided to pause my giving for now.",
			want: domain.GivingStatus{domain.PausedGiving},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{scores: map[string]map[string]float64{
				labelGratitude: sentimentScores(0.3, 0.3, 0.1),
			}}
			sc := newTestSentimentClassifier(classifier)

			result, err := sc.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if len(result.GivingStatus) != len(tt.want) {
				t.Fatalf("GivingStatus = %v, want %v", result.GivingStatus, tt.want)
			}
			for _, transition := range tt.want {
				if !result.GivingStatus.Contains(transition) {
					t.Errorf("GivingStatus %v missing %q", result.GivingStatus, transition)
				}
			}
			if n := classifier.callCount(labelWithdrawal); n != 0 {
				t.Errorf("withdrawal classifier called %d times despite keyword evidence, want 0", n)
			}
		})
	}
}

func TestGivingStatusWithdrawalFallback(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		score float64
		want  domain.GivingStatus
	}{
		{
			name:  "withdrawal tone without estate language pauses giving",
			text:  "I no longer feel connected to the institution and won't continue on this path.",
			score: 0.3,
			want:  domain.GivingStatus{domain.PausedGiving},
		},
		{
			name:  "withdrawal tone with estate language removes bequest",
			text:  "My estate arrangements are changing given recent events at the college.",
			score: 0.3,
			want:  domain.GivingStatus{domain.RemovedBequest},
		},
		{
			name:  "weak withdrawal signal yields no transitions",
			text:  "I no longer feel connected to the institution and won't continue on this path.",
			score: 0.1,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{scores: map[string]map[string]float64{
				labelGratitude:  sentimentScores(0.1, 0.6, 0.1),
				labelWithdrawal: {labelWithdrawal: tt.score, "continuing support": 1 - tt.score},
			}}
			sc := newTestSentimentClassifier(classifier)

			result, err := sc.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if result.GivingStatus.String() != tt.want.String() {
				t.Errorf("GivingStatus = %q, want %q", result.GivingStatus.String(), tt.want.String())
			}
		})
	}
}

func TestSentimentClassifyFailureReturnsConservativeDefault(t *testing.T) {
	classifier := &fakeClassifier{err: errBackendDown}
	sc := newTestSentimentClassifier(classifier)

	result, err := sc.Classify(context.Background(), "The alumni office responded quickly to my question last week.")
	if err == nil {
		t.Fatal("Classify() error = nil, want classifier error")
	}
	if !errors.Is(err, domain.ErrClassifier) {
		t.Errorf("error = %v, want wrapped %v", err, domain.ErrClassifier)
	}

	want := domain.FailureDefault()
	if result.Negative != want.Negative || result.Positive != want.Positive {
		t.Errorf("result = %+v, want conservative default %+v", result, want)
	}
}
