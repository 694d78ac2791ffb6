package textsignal

import "testing"

func TestFilterMatches(t *testing.T) {
	vocab := DefaultVocabulary()

	matches := vocab.FilterMatches("Please update my address to 123 Main St. My new address is below.")
	if matches[AddressUpdates] < 1 {
		t.Fatalf("expected address_updates hit, got %v", matches)
	}

	matches = vocab.FilterMatches("This is an automatic reply. I am out of office until Monday.")
	if matches[AdminUpdates] < 2 {
		t.Fatalf("expected two admin_updates hits, got %v", matches)
	}

	matches = vocab.FilterMatches("I love the new mentorship program, it is excellent.")
	if len(matches) != 0 {
		t.Fatalf("expected no filter hits for praise, got %v", matches)
	}
}

func TestFeedbackCount(t *testing.T) {
	vocab := DefaultVocabulary()

	count := vocab.FeedbackCount("I'm disappointed and frustrated with the decision.")
	if count != 2 {
		t.Fatalf("FeedbackCount() = %d, want 2", count)
	}

	if vocab.FeedbackCount("See you at homecoming.") != 0 {
		t.Fatalf("expected zero feedback hits for neutral text")
	}
}

func TestFundCounts(t *testing.T) {
	vocab := DefaultVocabulary()

	give, withdraw := vocab.FundCounts("I would like to contribute and make a gift to the scholarship fund.")
	if give == 0 || withdraw != 0 {
		t.Fatalf("FundCounts() = (%d, %d), want give>0 withdraw=0", give, withdraw)
	}

	give, withdraw = vocab.FundCounts("Please cancel my pledge and refund my last donation.")
	if withdraw < 2 {
		t.Fatalf("FundCounts() withdraw = %d, want >= 2", withdraw)
	}
	_ = give
}

func TestHasNegativeConcern(t *testing.T) {
	vocab := DefaultVocabulary()

	if !vocab.HasNegativeConcern("As a proud parent I am worried about campus safety.") {
		t.Fatalf("expected negative-concern hit")
	}
	if vocab.HasNegativeConcern("As a proud parent, thank you for a wonderful semester!") {
		t.Fatalf("expected no negative-concern hit in pure thank-you")
	}
}

func TestHasEstateLanguage(t *testing.T) {
	vocab := DefaultVocabulary()

	if !vocab.HasEstateLanguage("I am rethinking my estate plans.") {
		t.Fatalf("expected estate-language hit")
	}
	if vocab.HasEstateLanguage("The dining hall food got worse.") {
		t.Fatalf("expected no estate-language hit")
	}
}
