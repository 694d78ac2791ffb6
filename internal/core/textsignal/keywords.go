package textsignal

import "strings"

// FilterCategory names one family of drop-signal keywords.
type FilterCategory string

const (
	AddressUpdates     FilterCategory = "address_updates"
	AdminUpdates       FilterCategory = "admin_updates"
	ForwardedChains    FilterCategory = "forwarded_chains"
	GenericAcks        FilterCategory = "generic_acknowledgments"
	ParentPositiveOnly FilterCategory = "parent_positive_only"
	TechnicalSupport   FilterCategory = "technical_support"
	EventInquiries     FilterCategory = "event_inquiries"
)

// Vocabulary bundles every keyword family the pipeline matches against.
// The zero value is unusable; construct with DefaultVocabulary and
// override term lists from config where needed.
type Vocabulary struct {
	Filter   map[FilterCategory][]string
	Feedback []string
	Negative []string

	GiveFunds     []string
	WithdrawFunds []string

	PausedGiving   []string
	ResumedGiving  []string
	RemovedBequest []string
	AddedBequest   []string
	MakingGift     []string

	EstateWords []string
}

// DefaultVocabulary returns the built-in term lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Filter: map[FilterCategory][]string{
			AddressUpdates: {
				"update my address", "change my address", "new address", "moved to",
				"update contact", "change email", "new email address", "update my info",
				"change my phone", "new phone number", "mailing address",
			},
			AdminUpdates: {
				"automatic reply", "out of office", "auto-reply", "autoreply",
				"vacation message", "away from", "do not reply",
				"iam.gserviceaccount.com", "service account", "unique id",
			},
			ForwardedChains: {
				"forwarded message", "fwd:", "fw:", "begin forwarded message",
				"original message", "---------- forwarded", "from:", "sent:",
				"subject:", "to:", "cc:",
			},
			GenericAcks: {
				"thanks for the update", "noted", "thank you for letting",
				"acknowledged", "got it", "received", "will do",
			},
			ParentPositiveOnly: {
				"parent of class of", "as a parent", "proud parent", "my student",
				"our student", "my child", "our child", "my daughter", "my son",
			},
			TechnicalSupport: {
				"reset my password", "reset my account", "can't log in", "cannot log in",
				"login not working", "portal login", "forgot password", "password reset",
				"access my account", "unlock my account", "reset password",
			},
			EventInquiries: {
				"reunion schedule", "event schedule", "ticket prices", "accommodation suggestions",
				"what time", "when is the", "where is the", "how do i register", "rsvp",
				"planning to attend", "attend the reunion", "attend the event",
				"schedule for", "agenda for", "registration details",
			},
		},
		Feedback: []string{
			"concern", "worried", "disappointed", "frustrated", "upset",
			"suggest", "recommendation", "should consider", "improvement",
			"issue with", "problem with", "broken", "not working", "error",
			"disagree", "oppose", "against", "don't support", "unhappy",
			"love", "appreciate", "excellent", "wonderful", "impressed",
			"complaint", "feedback", "experience with", "opinion on",
			"unsubscribe", "remove me", "opt out", "stop sending", "no longer want",
			"will", "estate", "bequest", "planned giving", "legacy", "financial plans",
			"personal plans", "commitments", "no longer directed", "removing from",
			"update my plans", "change my plans", "trust", "confidence",
			"infuriating", "infuriated", "eroded", "undermined", "betrayed",
			"outraged", "alarmed", "appalled", "disgraceful", "unacceptable",
			"course-correct", "rebuild trust", "lost confidence", "serious reflection",
		},
		Negative: []string{
			"concern", "worried", "disappointed", "frustrated", "upset", "issue", "problem",
			"disagree", "oppose", "unhappy", "complaint", "infuriating", "undermined",
			"eroded", "betrayed", "outraged", "alarmed", "appalled", "unacceptable",
			"will", "estate", "bequest", "financial plans", "no longer directed",
			"stop giving", "pause", "suspend", "discontinue", "step back",
		},
		GiveFunds: []string{
			"donate", "donation", "contribute", "contribution", "giving",
			"pledge", "support financially", "make a gift", "give money",
			"want to donate", "would like to contribute", "send money",
		},
		WithdrawFunds: []string{
			"refund", "cancel donation", "stop donation", "withdraw",
			"return my money", "get my money back", "cancel my pledge",
			"stop my contribution", "discontinue support",
		},
		PausedGiving: []string{
			"pause my giving", "pausing my giving", "stop my donation", "stopping my donation",
			"suspend my giving", "suspending my support", "hold my donation",
			"discontinue my giving", "step back from giving", "no longer donate",
			"stop giving", "pause my support",
		},
		ResumedGiving: []string{
			"resume my giving", "resuming my giving", "restart my donation",
			"start giving again", "reinstate my pledge", "resume my support",
			"giving again",
		},
		RemovedBequest: []string{
			"remove you from my will", "removing you from my will", "removed from my will",
			"remove the college from my will", "take you out of my will",
			"no longer in my will", "remove my bequest", "removing my bequest",
			"cancel my bequest", "revoke my bequest", "no longer directed to",
		},
		AddedBequest: []string{
			"add you in my will", "add you to my will", "adding you to my will",
			"include you in my will", "included in my will", "name you in my will",
			"add the college to my will", "add a bequest", "adding a bequest",
			"planned giving", "leave a legacy", "revising my will to include",
		},
		MakingGift: []string{
			"make a gift", "making a gift", "would like to contribute",
			"want to donate", "like to donate", "make a donation",
			"making a donation", "send a check", "pledge",
		},
		EstateWords: []string{"will", "estate", "bequest", "legacy", "planned"},
	}
}

// FilterMatches counts case-insensitive keyword hits per filter
// category. Categories with zero hits are absent from the map.
func (v Vocabulary) FilterMatches(text string) map[FilterCategory]int {
	lower := strings.ToLower(text)
	matches := make(map[FilterCategory]int)
	for category, keywords := range v.Filter {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches[category]++
			}
		}
	}
	return matches
}

// FeedbackCount counts hits against the feedback vocabulary.
func (v Vocabulary) FeedbackCount(text string) int {
	return countHits(text, v.Feedback)
}

// HasNegativeConcern reports whether any negative/concern term appears.
func (v Vocabulary) HasNegativeConcern(text string) bool {
	return countHits(text, v.Negative) > 0
}

// FundCounts returns give and withdraw keyword hit counts.
func (v Vocabulary) FundCounts(text string) (give, withdraw int) {
	return countHits(text, v.GiveFunds), countHits(text, v.WithdrawFunds)
}

// HasEstateLanguage reports whether the text mentions estate planning.
func (v Vocabulary) HasEstateLanguage(text string) bool {
	return countHits(text, v.EstateWords) > 0
}

func countHits(text string, keywords []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

// AnyHit reports whether any of the given terms appears in the text,
// case-insensitively.
func AnyHit(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
