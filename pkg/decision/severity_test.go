package decision_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/decision"
)

var _ = Describe("SeverityFor", func() {
	It("is critical for confident high toxicity", func() {
		c := classification.Classification{
			ToxicityScore: 8,
			Confidence:    80,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityCritical))
	})

	It("is critical for a high-urgency complaint", func() {
		c := classification.Classification{
			Intent:     classification.IntentComplaint,
			Urgency:    classification.UrgencyHigh,
			Confidence: 60,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityCritical))
	})

	It("is high for unconfident high toxicity", func() {
		c := classification.Classification{
			ToxicityScore: 8,
			Confidence:    50,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityHigh))
	})

	It("is high for high urgency without a complaint", func() {
		c := classification.Classification{
			Intent:  classification.IntentGeneral,
			Urgency: classification.UrgencyHigh,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityHigh))
	})

	It("is medium for medium urgency", func() {
		c := classification.Classification{
			Urgency: classification.UrgencyMedium,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityMedium))
	})

	It("is medium for a low-urgency question", func() {
		c := classification.Classification{
			Intent:  classification.IntentQuestion,
			Urgency: classification.UrgencyLow,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityMedium))
	})

	It("is low for everything else", func() {
		c := classification.Classification{
			Sentiment: classification.SentimentPositive,
			Intent:    classification.IntentCompliment,
			Urgency:   classification.UrgencyLow,
		}

		Expect(decision.SeverityFor(c)).To(Equal(decision.SeverityLow))
	})

	It("never decreases as toxicity rises", func() {
		base := classification.Classification{
			Urgency:    classification.UrgencyLow,
			Intent:     classification.IntentGeneral,
			Confidence: 90,
		}

		previous := 0
		for score := 0; score <= 10; score++ {
			c := base
			c.ToxicityScore = score
			rank := decision.SeverityFor(c).Rank()
			Expect(rank).To(BeNumerically(">=", previous))
			previous = rank
		}
	})
})
