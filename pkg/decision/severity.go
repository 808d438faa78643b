package decision

import (
	"github.com/ormstack/moderation-go/pkg/classification"
)

// Severity is the escalation urgency tier used to pick notification
// channels. It is distinct from the classification's urgency field.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns the ordinal position of a severity tier (low < medium < high
// < critical).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// SeverityFor maps a refined classification to an escalation severity tier.
// Evaluation errors fail safe to medium: visible to the on-call team without
// over-alarming.
func SeverityFor(c classification.Classification) (severity Severity) {
	defer func() {
		if r := recover(); r != nil {
			severity = SeverityMedium
		}
	}()

	switch {
	case c.ToxicityScore >= 8 && c.Confidence >= 80:
		return SeverityCritical
	case c.Intent == classification.IntentComplaint && c.Urgency == classification.UrgencyHigh:
		return SeverityCritical
	case c.ToxicityScore >= 6 || c.Urgency == classification.UrgencyHigh:
		return SeverityHigh
	case c.Urgency == classification.UrgencyMedium,
		c.Intent == classification.IntentQuestion,
		c.Intent == classification.IntentComplaint:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
