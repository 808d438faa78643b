package decision_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/policy"
)

var _ = Describe("Decide", func() {
	var rules policy.ClassificationRules

	BeforeEach(func() {
		rules = policy.ClassificationRules{}
		rules.Normalize()
	})

	It("hides a comment at or above the auto-hide threshold", func() {
		c := classification.Classification{
			Sentiment:     classification.SentimentNegative,
			Urgency:       classification.UrgencyHigh,
			Intent:        classification.IntentComplaint,
			ToxicityScore: 9,
			Confidence:    90,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionHide))
	})

	It("hides exactly at the threshold boundary", func() {
		c := classification.Classification{
			ToxicityScore: rules.AutoHideThreshold,
			Confidence:    95,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionHide))
	})

	It("escalates high urgency before considering a reply", func() {
		c := classification.Classification{
			Sentiment:        classification.SentimentNegative,
			Urgency:          classification.UrgencyHigh,
			Intent:           classification.IntentQuestion,
			RequiresResponse: true,
			ToxicityScore:    2,
			Confidence:       95,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionEscalate))
	})

	It("replies to a confident low-urgency question needing a response", func() {
		c := classification.Classification{
			Sentiment:        classification.SentimentNeutral,
			Urgency:          classification.UrgencyLow,
			Intent:           classification.IntentQuestion,
			RequiresResponse: true,
			ToxicityScore:    1,
			Confidence:       95,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionReply))
	})

	It("replies to a confident low-urgency complaint needing a response", func() {
		c := classification.Classification{
			Urgency:          classification.UrgencyLow,
			Intent:           classification.IntentComplaint,
			RequiresResponse: true,
			Confidence:       90,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionReply))
	})

	It("never auto-replies when auto-reply is disabled", func() {
		disabled := false
		rules.AutoReplyEnabled = &disabled

		c := classification.Classification{
			Urgency:          classification.UrgencyLow,
			Intent:           classification.IntentQuestion,
			RequiresResponse: true,
			Confidence:       95,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionIgnore))
	})

	It("replies to a medium-urgency question only through escalation", func() {
		c := classification.Classification{
			Urgency:          classification.UrgencyMedium,
			Intent:           classification.IntentQuestion,
			RequiresResponse: false,
			Confidence:       95,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionEscalate))
	})

	It("escalates below the confidence threshold", func() {
		c := classification.Classification{
			Urgency:    classification.UrgencyLow,
			Intent:     classification.IntentGeneral,
			Confidence: 40,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionEscalate))
	})

	It("ignores a benign confident comment", func() {
		c := classification.Classification{
			Sentiment:  classification.SentimentPositive,
			Urgency:    classification.UrgencyLow,
			Intent:     classification.IntentCompliment,
			Confidence: 90,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionIgnore))
	})

	It("routes the fail-closed neutral classification to escalation", func() {
		Expect(decision.Decide(classification.Neutral(), rules)).To(Equal(decision.ActionEscalate))
	})

	It("prefers reply over medium-urgency escalation for answerable questions", func() {
		c := classification.Classification{
			Urgency:          classification.UrgencyMedium,
			Intent:           classification.IntentQuestion,
			RequiresResponse: true,
			Confidence:       95,
		}

		Expect(decision.Decide(c, rules)).To(Equal(decision.ActionReply))
	})
})
