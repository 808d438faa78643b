package classification

import (
	"strings"
	"time"

	"github.com/ormstack/moderation-go/pkg/policy"
)

// ruleContext carries everything a single refinement rule may inspect.
type ruleContext struct {
	rules     policy.ClassificationRules
	textLower string
	now       time.Time
}

// refinementRule mutates the working classification copy. Rules run in a
// fixed order and later rules may overwrite earlier ones on the same field.
// An error from any rule aborts refinement entirely.
type refinementRule func(*Classification, ruleContext) error

// refinementRules is the ordered rule sequence applied by Refine. Keeping the
// cascade as data makes the priority order testable directly.
var refinementRules = []refinementRule{
	applyToxicityHint,
	applyUrgencyKeywords,
	applySentimentKeywords,
	applyIntentKeywords,
	applyBusinessHoursFloor,
}

// Refine overlays tenant classification rules onto a raw classification and
// returns the refined copy. The input is never mutated. Refinement is
// best-effort: if any rule fails, the original classification is returned
// unchanged so a bad tenant config can never block the pipeline.
func Refine(c Classification, rules policy.ClassificationRules, commentText string, now time.Time) Classification {
	refined := c
	rctx := ruleContext{
		rules:     rules,
		textLower: strings.ToLower(commentText),
		now:       now,
	}

	for _, rule := range refinementRules {
		if err := rule(&refined, rctx); err != nil {
			return c
		}
	}

	return refined
}

// applyToxicityHint forces the hide hint when the tenant toxicity threshold
// is met. The decision engine runs its own toxicity check; this only records
// the advisory suggestion.
func applyToxicityHint(c *Classification, rctx ruleContext) error {
	if c.ToxicityScore >= rctx.rules.ToxicityThreshold {
		c.SuggestedAction = "hide"
	}
	return nil
}

// applyUrgencyKeywords raises urgency to high on the first matching tenant
// urgency keyword.
func applyUrgencyKeywords(c *Classification, rctx ruleContext) error {
	for _, keyword := range rctx.rules.UrgencyKeywords {
		if containsKeyword(rctx.textLower, keyword) {
			c.Urgency = UrgencyHigh
			break
		}
	}
	return nil
}

// applySentimentKeywords overrides sentiment from tenant keyword lists. Both
// lists are evaluated independently; the negative list runs second, so it
// wins when a comment matches both.
func applySentimentKeywords(c *Classification, rctx ruleContext) error {
	for _, keyword := range rctx.rules.PositiveKeywords {
		if containsKeyword(rctx.textLower, keyword) {
			c.Sentiment = SentimentPositive
			break
		}
	}
	for _, keyword := range rctx.rules.NegativeKeywords {
		if containsKeyword(rctx.textLower, keyword) {
			c.Sentiment = SentimentNegative
			break
		}
	}
	return nil
}

// applyIntentKeywords sets the intent from the tenant's ordered intent rules.
// The first intent with a matching keyword wins overall.
func applyIntentKeywords(c *Classification, rctx ruleContext) error {
	for _, rule := range rctx.rules.IntentKeywords {
		for _, keyword := range rule.Keywords {
			if containsKeyword(rctx.textLower, keyword) {
				c.Intent = Intent(rule.Intent)
				return nil
			}
		}
	}
	return nil
}

// applyBusinessHoursFloor raises urgency to at least medium for comments that
// require a response during the tenant's business hours. Urgency is never
// downgraded.
func applyBusinessHoursFloor(c *Classification, rctx ruleContext) error {
	if rctx.rules.BusinessHours == nil || !c.RequiresResponse {
		return nil
	}

	if withinBusinessHours(*rctx.rules.BusinessHours, rctx.now) && c.Urgency.Rank() < UrgencyMedium.Rank() {
		c.Urgency = UrgencyMedium
	}
	return nil
}

func containsKeyword(textLower, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(textLower, strings.ToLower(keyword))
}
