package usecase

import (
	"context"
	"log/slog"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
	"github.com/advancementhq/feedback-pipeline/internal/core/textsignal"
)

// Candidate label sets for the zero-shot classifier. Order matters for
// readability only; scores are keyed by label.
var (
	admissionLabels = []string{
		"Substantive Feedback or Concern",
		"Address or Contact Update",
		"General Question or Inquiry",
		"Administrative Notification",
		"Link Sharing or Article",
	}

	fundLabels = []string{"give_funds", "withdraw_funds"}
)

const (
	labelFeedback    = "Substantive Feedback or Concern"
	labelAddress     = "Address or Contact Update"
	labelQuestion    = "General Question or Inquiry"
	labelAdmin       = "Administrative Notification"
	labelLinkSharing = "Link Sharing or Article"
)

// AdmissionThresholds are the confidence cut-offs of the admission
// decision chain.
type AdmissionThresholds struct {
	Feedback float64
	Address  float64
	Admin    float64
	Question float64
	Link     float64
	Fund     float64
}

func DefaultAdmissionThresholds() AdmissionThresholds {
	return AdmissionThresholds{
		Feedback: 0.35,
		Address:  0.5,
		Admin:    0.5,
		Question: 0.6,
		Link:     0.5,
		Fund:     0.5,
	}
}

// AdmissionFilter decides keep/drop for an incoming email. The decision
// is a pure function of the email text: keyword signals are checked both
// before and after the classifier call, and a strong keyword signal
// always beats classifier uncertainty. The precedence order is
// load-bearing; reordering changes outcomes on boundary cases.
type AdmissionFilter struct {
	classifier ports.Classifier
	vocab      textsignal.Vocabulary
	thresholds AdmissionThresholds
	logger     *slog.Logger
}

func NewAdmissionFilter(
	classifier ports.Classifier,
	vocab textsignal.Vocabulary,
	thresholds AdmissionThresholds,
	logger *slog.Logger,
) *AdmissionFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdmissionFilter{
		classifier: classifier,
		vocab:      vocab,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Decide evaluates one email. Never returns an error: a classifier
// failure falls through to the keyword-only default branch so an email
// is never lost to a backend outage.
func (f *AdmissionFilter) Decide(ctx context.Context, subject, body string) domain.FilterDecision {
	text := joinSubjectBody(subject, body)

	if textsignal.IsEmptyOrMinimal(text) {
		return domain.FilterDecision{IsAdminAuto: true}
	}
	if textsignal.IsLinkOnly(text) {
		return domain.FilterDecision{}
	}
	if textsignal.IsEmailChain(text) {
		return domain.FilterDecision{IsEmailChain: true}
	}

	matches := f.vocab.FilterMatches(text)
	switch {
	case matches[textsignal.AdminUpdates] >= 1:
		return domain.FilterDecision{IsAdminAuto: true}
	case matches[textsignal.AddressUpdates] >= 1:
		return domain.FilterDecision{IsAddressUpdate: true}
	case matches[textsignal.ForwardedChains] >= 3:
		return domain.FilterDecision{IsEmailChain: true}
	case matches[textsignal.TechnicalSupport] >= 1:
		return domain.FilterDecision{}
	case matches[textsignal.EventInquiries] >= 1:
		return domain.FilterDecision{}
	}

	// Parent courtesy notes without a single concern term are not
	// alumni feedback.
	if matches[textsignal.ParentPositiveOnly] >= 1 && !f.vocab.HasNegativeConcern(text) {
		return domain.FilterDecision{}
	}

	feedbackHits := f.vocab.FeedbackCount(text)
	fundIntent := f.fundIntent(ctx, text)

	scores, err := f.classifier.Classify(ctx, text, admissionLabels, false)
	if err != nil {
		f.logger.Warn("admission_classify_failed", "error", err)
		return domain.FilterDecision{IsFeedback: feedbackHits >= 1, FundIntent: fundIntent}
	}
	top, conf := topLabel(scores)

	decision := domain.FilterDecision{FundIntent: fundIntent}
	switch {
	case top == labelFeedback && conf > f.thresholds.Feedback:
		decision.IsFeedback = true
	case feedbackHits >= 2:
		decision.IsFeedback = true
	case top == labelAddress && conf > f.thresholds.Address:
		decision.IsAddressUpdate = true
	case top == labelAdmin && conf > f.thresholds.Admin:
		decision.IsAdminAuto = true
	case top == labelQuestion && conf > f.thresholds.Question && feedbackHits == 0:
		// generic question, no feedback signal
	case top == labelLinkSharing && conf > f.thresholds.Link:
		// link sharing
	default:
		decision.IsFeedback = feedbackHits >= 1
	}
	return decision
}

// fundIntent runs the give/withdraw classification only when fund
// keywords are present, and commits only above the fund threshold.
func (f *AdmissionFilter) fundIntent(ctx context.Context, text string) domain.FundIntent {
	give, withdraw := f.vocab.FundCounts(text)
	if give == 0 && withdraw == 0 {
		return domain.FundNone
	}

	scores, err := f.classifier.Classify(ctx, text, fundLabels, false)
	if err != nil {
		f.logger.Warn("fund_classify_failed", "error", err)
		return domain.FundNone
	}
	top, conf := topLabel(scores)
	if conf <= f.thresholds.Fund {
		return domain.FundNone
	}
	switch top {
	case "give_funds":
		return domain.FundGive
	case "withdraw_funds":
		return domain.FundWithdraw
	}
	return domain.FundNone
}

func joinSubjectBody(subject, body string) string {
	if subject == "" {
		return body
	}
	return subject + " " + body
}

// topLabel picks the highest-confidence label from a score map.
func topLabel(scores map[string]float64) (string, float64) {
	var best string
	bestScore := -1.0
	for label, score := range scores {
		if score > bestScore {
			best = label
			bestScore = score
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}
