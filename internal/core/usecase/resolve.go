package usecase

import "github.com/advancementhq/feedback-pipeline/internal/core/domain"

// ResolveSentiment maps a classification result to the single
// user-facing category. Business-outcome signals dominate tone: a donor
// pausing giving in a warm, polite email must still surface as Negative,
// and money moving toward the institution is always Positive.
func ResolveSentiment(result domain.ClassificationResult) domain.ResolvedSentiment {
	if result.GivingStatus.AnyPositive() {
		return domain.SentimentPositive
	}
	if result.GivingStatus.AnyNegative() {
		return domain.SentimentNegative
	}
	if result.Negative == domain.Yes {
		return domain.SentimentNegative
	}
	if result.Positive == domain.Yes {
		return domain.SentimentPositive
	}
	return domain.SentimentNeutral
}
