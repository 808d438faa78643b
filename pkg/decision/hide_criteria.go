package decision

import (
	"context"
	"fmt"
	"strings"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/policy"
)

// Violation labels derived from a classification and matched against the
// tenant's auto_hide_violations list.
const (
	ViolationToxicity   = "toxicity"
	ViolationSpam       = "spam"
	ViolationHarassment = "harassment"
)

// AuthorHistory exposes the author's moderation track record. The hide
// verifier only needs a count of prior violations per tenant.
type AuthorHistory interface {
	ViolationCount(ctx context.Context, clientID, authorID string) (int, error)
}

// HideRequest carries everything the verifier needs about the comment under
// review.
type HideRequest struct {
	ClientID       string
	AuthorID       string
	CommentText    string
	Classification classification.Classification
}

// VerifyHideCriteria re-checks, immediately before the irreversible platform
// call, whether a comment still meets the tenant's hide criteria. It is
// deliberately independent of the decision engine's original hide trigger so
// a stale queued decision cannot hide a comment that no longer qualifies.
// Returning false is not an error: the comment is marked reviewed-but-not-
// hidden by the caller.
func VerifyHideCriteria(ctx context.Context, req HideRequest, rules policy.ModerationRules, history AuthorHistory) bool {
	c := req.Classification

	if c.ToxicityScore >= rules.AutoHideThreshold {
		return true
	}

	textLower := strings.ToLower(req.CommentText)
	for _, keyword := range rules.BannedKeywords {
		if keyword != "" && strings.Contains(textLower, strings.ToLower(keyword)) {
			return true
		}
	}

	if c.Intent == classification.IntentSpam && c.Confidence >= rules.SpamConfidenceThreshold {
		return true
	}

	if history != nil {
		count, err := history.ViolationCount(ctx, req.ClientID, req.AuthorID)
		if err == nil && count >= rules.RepeatOffenderThreshold {
			return true
		}
	}

	violations := ViolationTypes(c)
	for _, configured := range rules.AutoHideViolations {
		for _, v := range violations {
			if v == configured {
				return true
			}
		}
	}

	return false
}

// ViolationTypes derives violation labels from a classification using a
// fixed mapping: toxicity >= 7 is toxicity, spam intent is spam, negative
// sentiment with high urgency is harassment.
func ViolationTypes(c classification.Classification) []string {
	var violations []string

	if c.ToxicityScore >= 7 {
		violations = append(violations, ViolationToxicity)
	}
	if c.Intent == classification.IntentSpam {
		violations = append(violations, ViolationSpam)
	}
	if c.Sentiment == classification.SentimentNegative && c.Urgency == classification.UrgencyHigh {
		violations = append(violations, ViolationHarassment)
	}

	return violations
}

// HideReason builds the human-readable reason recorded on the comment and in
// notifications when a comment is hidden.
func HideReason(c classification.Classification) string {
	var reasons []string

	switch {
	case c.ToxicityScore >= 8:
		reasons = append(reasons, fmt.Sprintf("High toxicity score (%d/10)", c.ToxicityScore))
	case c.ToxicityScore >= 6:
		reasons = append(reasons, fmt.Sprintf("Moderate toxicity score (%d/10)", c.ToxicityScore))
	}

	if c.Intent == classification.IntentSpam {
		reasons = append(reasons, "Identified as spam")
	}

	if c.Sentiment == classification.SentimentNegative && c.Urgency == classification.UrgencyHigh {
		reasons = append(reasons, "Negative high-urgency content")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Automated moderation rule triggered")
	}

	return strings.Join(reasons, "; ")
}
