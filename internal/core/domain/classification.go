package domain

import "strings"

// TriState is a three-valued classification answer. Null means the
// classifier declined to commit, which is not the same as No.
type TriState string

const (
	Yes  TriState = "Yes"
	No   TriState = "No"
	Null TriState = "Null"
)

// FundIntent is the auxiliary money-direction signal from the admission
// filter.
type FundIntent string

const (
	FundNone     FundIntent = ""
	FundGive     FundIntent = "give_funds"
	FundWithdraw FundIntent = "withdraw_funds"
)

// GivingTransition is one discrete change in a constituent's giving
// behavior.
type GivingTransition string

const (
	PausedGiving   GivingTransition = "Paused giving"
	RemovedBequest GivingTransition = "Removed bequest"
	ResumedGiving  GivingTransition = "Resumed giving"
	AddedBequest   GivingTransition = "Added bequest"
	MakingGift     GivingTransition = "Making gift"
)

// Positive reports whether the transition means money or commitment
// moving toward the institution.
func (t GivingTransition) Positive() bool {
	switch t {
	case ResumedGiving, AddedBequest, MakingGift:
		return true
	}
	return false
}

// GivingStatus holds the giving transitions detected in one email. The
// set may be empty (no signal) and may carry several positive
// transitions at once; negative transitions never co-occur with
// anything else.
type GivingStatus []GivingTransition

func (g GivingStatus) Contains(t GivingTransition) bool {
	for _, have := range g {
		if have == t {
			return true
		}
	}
	return false
}

func (g GivingStatus) AnyPositive() bool {
	for _, t := range g {
		if t.Positive() {
			return true
		}
	}
	return false
}

func (g GivingStatus) AnyNegative() bool {
	return g.Contains(PausedGiving) || g.Contains(RemovedBequest)
}

// String renders the comma-joined form used in output rows; an empty
// set renders "No".
func (g GivingStatus) String() string {
	if len(g) == 0 {
		return "No"
	}
	parts := make([]string, 0, len(g))
	for _, t := range g {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}

// ClassificationResult is the sentiment/intent outcome for one email.
// Positive and negative are independent axes: both Yes is a valid mixed
// result, both Null flags the email for manual review.
type ClassificationResult struct {
	Positive       TriState
	Negative       TriState
	DonationIntent bool
	GivingStatus   GivingStatus
}

// NeedsReview reports whether the classifier declined to commit on both
// sentiment axes.
func (r ClassificationResult) NeedsReview() bool {
	return r.Positive == Null && r.Negative == Null
}

// FailureDefault is the conservative stand-in recorded when a
// classification backend call fails: the email stays visible in the
// needs-attention queue instead of being silently dropped.
func FailureDefault() ClassificationResult {
	return ClassificationResult{
		Positive:       No,
		Negative:       Yes,
		DonationIntent: false,
		GivingStatus:   nil,
	}
}

// FilterDecision is the admission filter's verdict for one email. At
// most one drop-reason flag drives the decision; IsFeedback true implies
// all drop reasons are false.
type FilterDecision struct {
	IsFeedback      bool
	IsAddressUpdate bool
	IsEmailChain    bool
	IsAdminAuto     bool
	FundIntent      FundIntent
}

// ResolvedSentiment is the single user-facing category derived from a
// ClassificationResult.
type ResolvedSentiment string

const (
	SentimentPositive ResolvedSentiment = "Positive"
	SentimentNegative ResolvedSentiment = "Negative"
	SentimentNeutral  ResolvedSentiment = "Neutral"
)
