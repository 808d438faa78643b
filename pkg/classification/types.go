package classification

// Sentiment is the classifier's read on the comment's tone.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Urgency buckets how quickly a comment needs attention.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank returns the ordinal position of an urgency level (low < medium < high).
// Unknown values rank below low so a malformed classification never outranks
// a real one.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	default:
		return 0
	}
}

// Intent is the classifier's read on what the author wants.
type Intent string

const (
	IntentQuestion   Intent = "question"
	IntentComplaint  Intent = "complaint"
	IntentCompliment Intent = "compliment"
	IntentSpam       Intent = "spam"
	IntentGeneral    Intent = "general"
)

// Classification is the value object produced once per comment by the
// external classifier and refined (never replaced) by tenant rules.
//
// SuggestedAction is advisory only: it records what the classifier or the
// refinement engine hinted, but routing always uses the decision engine's
// locally computed action.
type Classification struct {
	Sentiment        Sentiment `json:"sentiment"`
	Urgency          Urgency   `json:"urgency"`
	Intent           Intent    `json:"intent"`
	ToxicityScore    int       `json:"toxicity_score"`
	RequiresResponse bool      `json:"requires_response"`
	SuggestedAction  string    `json:"suggested_action"`
	Confidence       int       `json:"confidence"`
}

// Neutral returns the fail-closed default classification used whenever the
// classifier cannot produce a usable result. Zero confidence routes the
// comment to the low-confidence escalation path downstream.
func Neutral() Classification {
	return Classification{
		Sentiment:        SentimentNeutral,
		Urgency:          UrgencyLow,
		Intent:           IntentGeneral,
		ToxicityScore:    0,
		RequiresResponse: false,
		SuggestedAction:  "ignore",
		Confidence:       0,
	}
}
