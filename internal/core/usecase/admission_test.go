package usecase

import (
	"context"
	"testing"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/textsignal"
)

func newTestAdmissionFilter(classifier *fakeClassifier) *AdmissionFilter {
	return NewAdmissionFilter(classifier, textsignal.DefaultVocabulary(), DefaultAdmissionThresholds(), nil)
}

func TestAdmissionFilterDecide(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		scores map[string]map[string]float64
		errOn  map[string]bool
		want   domain.FilterDecision
	}{
		{
			name: "minimal body drops as admin noise",
			body: "Ok thanks!",
			want: domain.FilterDecision{IsAdminAuto: true},
		},
		{
			name: "link only body drops",
			body: "Worth a read: https://news.example.com/story www.example.com/more",
			want: domain.FilterDecision{},
		},
		{
			name: "forwarded chain drops",
			body: "Begin forwarded message:\nFrom: Jane Alum <jane@example.com>\nGreat news about the campus garden project this spring.",
			want: domain.FilterDecision{IsEmailChain: true},
		},
		{
			name: "address keywords beat the classifier",
			body: "Hi, I recently moved to Denver. Please update my address in the alumni records.",
			want: domain.FilterDecision{IsAddressUpdate: true},
		},
		{
			name: "auto reply keywords drop as admin",
			body: "Automatic reply: I am out of office until Monday with limited email access.",
			want: domain.FilterDecision{IsAdminAuto: true},
		},
		{
			name: "parent courtesy note without concern drops",
			body: "As a parent of class of 2027 I had a lovely time at orientation weekend this fall.",
			want: domain.FilterDecision{},
		},
		{
			name: "confident feedback classification keeps",
			body: "The renovation of the dining hall changed how students gather in the evenings and mornings.",
			scores: map[string]map[string]float64{
				labelFeedback: {labelFeedback: 0.9, labelQuestion: 0.05},
			},
			want: domain.FilterDecision{IsFeedback: true},
		},
		{
			name: "two feedback keywords override a confident question label",
			body: "I am disappointed about the tuition decision and have a concern about transparency.",
			scores: map[string]map[string]float64{
				labelFeedback: {labelQuestion: 0.9, labelFeedback: 0.05},
			},
			want: domain.FilterDecision{IsFeedback: true},
		},
		{
			name: "confident question without feedback signal drops",
			body: "Could someone tell me the bookstore hours on Saturdays during summer?",
			scores: map[string]map[string]float64{
				labelFeedback: {labelQuestion: 0.9, labelFeedback: 0.05},
			},
			want: domain.FilterDecision{},
		},
		{
			name:  "classifier failure falls back to keyword evidence",
			body:  "Writing to share my opinion on the recent changes to the alumni magazine format.",
			errOn: map[string]bool{labelFeedback: true},
			want:  domain.FilterDecision{IsFeedback: true},
		},
		{
			name: "fund keywords trigger intent classification",
			body: "After the anniversary campaign I would like to contribute to the scholarship fund this year.",
			scores: map[string]map[string]float64{
				labelFeedback: {labelFeedback: 0.9},
				"give_funds":  {"give_funds": 0.8, "withdraw_funds": 0.1},
			},
			want: domain.FilterDecision{IsFeedback: true, FundIntent: domain.FundGive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{scores: tt.scores, errOn: tt.errOn}
			filter := newTestAdmissionFilter(classifier)

			got := filter.Decide(context.Background(), "", tt.body)
			if got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAdmissionFilterSkipsClassifierForSignalDrops(t *testing.T) {
	classifier := &fakeClassifier{}
	filter := newTestAdmissionFilter(classifier)

	filter.Decide(context.Background(), "", "Ok thanks!")
	filter.Decide(context.Background(), "", "Worth a read: https://news.example.com/story www.example.com/more")

	if n := classifier.callCount(labelFeedback); n != 0 {
		t.Errorf("classifier called %d times for signal-level drops, want 0", n)
	}
}

func TestAdmissionFilterNoFundCallWithoutFundKeywords(t *testing.T) {
	classifier := &fakeClassifier{scores: map[string]map[string]float64{
		labelFeedback: {labelFeedback: 0.9},
	}}
	filter := newTestAdmissionFilter(classifier)

	filter.Decide(context.Background(), "", "The renovation of the dining hall changed how students gather in the evenings.")

	if n := classifier.callCount("give_funds"); n != 0 {
		t.Errorf("fund classifier called %d times without fund keywords, want 0", n)
	}
}
