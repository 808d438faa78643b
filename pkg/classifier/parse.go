package classifier

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/ormstack/moderation-go/pkg/classification"
)

var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseClassification extracts the JSON object from a model completion and
// cleans it into the fixed classification schema. Unknown or missing field
// values fall back to neutral defaults per field.
func parseClassification(completion string) (classification.Classification, error) {
	match := jsonBlockPattern.FindString(completion)
	if match == "" {
		return classification.Classification{}, fmt.Errorf("no JSON object in completion")
	}

	var raw struct {
		Sentiment        string      `json:"sentiment"`
		Urgency          string      `json:"urgency"`
		Intent           string      `json:"intent"`
		ToxicityScore    json.Number `json:"toxicity_score"`
		RequiresResponse bool        `json:"requires_response"`
		SuggestedAction  string      `json:"suggested_action"`
		Confidence       json.Number `json:"confidence"`
	}

	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return classification.Classification{}, fmt.Errorf("failed to decode classification JSON: %w", err)
	}

	result := classification.Neutral()
	result.RequiresResponse = raw.RequiresResponse

	if s := classification.Sentiment(raw.Sentiment); validSentiment(s) {
		result.Sentiment = s
	}
	if u := classification.Urgency(raw.Urgency); u.Rank() > 0 {
		result.Urgency = u
	}
	if i := classification.Intent(raw.Intent); validIntent(i) {
		result.Intent = i
	}
	if raw.SuggestedAction != "" {
		result.SuggestedAction = raw.SuggestedAction
	}

	if score, err := raw.ToxicityScore.Int64(); err == nil {
		result.ToxicityScore = clamp(int(score), 0, 10)
	}
	if conf, err := raw.Confidence.Int64(); err == nil {
		result.Confidence = clamp(int(conf), 0, 100)
	} else {
		result.Confidence = 50
	}

	return result, nil
}

func validSentiment(s classification.Sentiment) bool {
	switch s {
	case classification.SentimentPositive, classification.SentimentNeutral, classification.SentimentNegative:
		return true
	default:
		return false
	}
}

func validIntent(i classification.Intent) bool {
	switch i {
	case classification.IntentQuestion, classification.IntentComplaint,
		classification.IntentCompliment, classification.IntentSpam, classification.IntentGeneral:
		return true
	default:
		return false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
