package usecase

import (
	"context"
	"log/slog"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
	"github.com/advancementhq/feedback-pipeline/internal/core/textsignal"
)

var (
	sentimentLabels = []string{
		"expressing gratitude or happiness",
		"expressing complaint or disappointment",
		"neutral inquiry",
	}

	intentLabels = []string{
		"Donation Inquiry",
		"Website Issue",
		"Urgent Request",
		"Complaint",
		"Meeting Request",
		"Thank You",
		"Update Info",
		"General Question",
	}

	withdrawalLabels = []string{
		"withdrawing support or ending relationship",
		"continuing support",
	}
)

const (
	labelGratitude  = "expressing gratitude or happiness"
	labelComplaint  = "expressing complaint or disappointment"
	labelNeutral    = "neutral inquiry"
	labelDonation   = "Donation Inquiry"
	labelWithdrawal = "withdrawing support or ending relationship"
)

// SentimentThresholds are the confidence cut-offs of the sentiment and
// intent stage.
type SentimentThresholds struct {
	// Sentiment is the per-axis commit threshold; AxisFloor and Neutral
	// bound the "classifier declined" band below it.
	Sentiment  float64
	AxisFloor  float64
	Neutral    float64
	Donation   float64
	Withdrawal float64
}

func DefaultSentimentThresholds() SentimentThresholds {
	return SentimentThresholds{
		Sentiment:  0.25,
		AxisFloor:  0.15,
		Neutral:    0.5,
		Donation:   0.20,
		Withdrawal: 0.18,
	}
}

// SentimentClassifier produces the per-email ClassificationResult:
// independent positive/negative tri-state flags, a donation-inquiry
// flag, and the giving-status transition set.
type SentimentClassifier struct {
	classifier ports.Classifier
	vocab      textsignal.Vocabulary
	thresholds SentimentThresholds
	logger     *slog.Logger
}

func NewSentimentClassifier(
	classifier ports.Classifier,
	vocab textsignal.Vocabulary,
	thresholds SentimentThresholds,
	logger *slog.Logger,
) *SentimentClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SentimentClassifier{
		classifier: classifier,
		vocab:      vocab,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Classify analyzes one email body. On any backend failure it returns
// the conservative default of domain.FailureDefault together with the
// error, so the caller can log and keep the email in the review queue.
func (s *SentimentClassifier) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	scores, err := s.classifier.Classify(ctx, text, sentimentLabels, true)
	if err != nil {
		return domain.FailureDefault(), domain.WrapError(domain.ErrClassifier, "sentiment classify", err)
	}

	neutral := scores[labelNeutral]
	result := domain.ClassificationResult{
		Positive: s.axisState(scores[labelGratitude], neutral),
		Negative: s.axisState(scores[labelComplaint], neutral),
	}

	intent, err := s.classifier.Classify(ctx, text, intentLabels, false)
	if err != nil {
		return domain.FailureDefault(), domain.WrapError(domain.ErrClassifier, "intent classify", err)
	}
	result.DonationIntent = intent[labelDonation] > s.thresholds.Donation

	status, err := s.givingStatus(ctx, text)
	if err != nil {
		return domain.FailureDefault(), err
	}
	result.GivingStatus = status

	return result, nil
}

// axisState maps one sentiment axis score to a tri-state answer. Null is
// the explicit "classifier declined to commit" band: a dominant neutral
// score or an axis score below the floor.
func (s *SentimentClassifier) axisState(score, neutral float64) domain.TriState {
	if score > s.thresholds.Sentiment {
		return domain.Yes
	}
	if neutral > s.thresholds.Neutral || score < s.thresholds.AxisFloor {
		return domain.Null
	}
	return domain.No
}

// givingStatus detects giving transitions. Explicit keyword evidence
// always outranks the classifier fallback, and removal language
// outranks addition language when both co-occur.
func (s *SentimentClassifier) givingStatus(ctx context.Context, text string) (domain.GivingStatus, error) {
	if textsignal.AnyHit(text, s.vocab.RemovedBequest) {
		return domain.GivingStatus{domain.RemovedBequest}, nil
	}

	var status domain.GivingStatus
	if textsignal.AnyHit(text, s.vocab.AddedBequest) {
		status = append(status, domain.AddedBequest)
	}
	if textsignal.AnyHit(text, s.vocab.ResumedGiving) {
		status = append(status, domain.ResumedGiving)
	}
	if textsignal.AnyHit(text, s.vocab.MakingGift) {
		status = append(status, domain.MakingGift)
	}
	if len(status) > 0 {
		return status, nil
	}

	if textsignal.AnyHit(text, s.vocab.PausedGiving) {
		return domain.GivingStatus{domain.PausedGiving}, nil
	}

	scores, err := s.classifier.Classify(ctx, text, withdrawalLabels, true)
	if err != nil {
		return nil, domain.WrapError(domain.ErrClassifier, "withdrawal classify", err)
	}
	if scores[labelWithdrawal] > s.thresholds.Withdrawal {
		if s.vocab.HasEstateLanguage(text) {
			return domain.GivingStatus{domain.RemovedBequest}, nil
		}
		return domain.GivingStatus{domain.PausedGiving}, nil
	}

	return nil, nil
}
