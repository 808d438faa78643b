package classifier

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ormstack/moderation-go/pkg/classification"
)

var _ = Describe("parseClassification", func() {
	It("parses a clean completion", func() {
		completion := `{
			"sentiment": "negative",
			"urgency": "high",
			"intent": "complaint",
			"toxicity_score": 6,
			"requires_response": true,
			"suggested_action": "escalate",
			"confidence": 85
		}`

		c, err := parseClassification(completion)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Sentiment).To(Equal(classification.SentimentNegative))
		Expect(c.Urgency).To(Equal(classification.UrgencyHigh))
		Expect(c.Intent).To(Equal(classification.IntentComplaint))
		Expect(c.ToxicityScore).To(Equal(6))
		Expect(c.RequiresResponse).To(BeTrue())
		Expect(c.SuggestedAction).To(Equal("escalate"))
		Expect(c.Confidence).To(Equal(85))
	})

	It("extracts JSON wrapped in prose", func() {
		completion := "Here is the analysis:\n{\"sentiment\": \"positive\", \"confidence\": 90}\nHope that helps!"

		c, err := parseClassification(completion)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Sentiment).To(Equal(classification.SentimentPositive))
		Expect(c.Confidence).To(Equal(90))
	})

	It("rejects completions without a JSON object", func() {
		_, err := parseClassification("I cannot classify this comment.")
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed JSON", func() {
		_, err := parseClassification(`{"sentiment": "positive",`)
		Expect(err).To(HaveOccurred())
	})

	It("falls back to neutral defaults for unknown enum values", func() {
		completion := `{"sentiment": "elated", "urgency": "mild", "intent": "musing", "confidence": 70}`

		c, err := parseClassification(completion)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Sentiment).To(Equal(classification.SentimentNeutral))
		Expect(c.Urgency).To(Equal(classification.UrgencyLow))
		Expect(c.Intent).To(Equal(classification.IntentGeneral))
	})

	It("clamps toxicity into 0..10", func() {
		c, err := parseClassification(`{"toxicity_score": 42, "confidence": 90}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.ToxicityScore).To(Equal(10))
	})

	It("clamps confidence into 0..100", func() {
		c, err := parseClassification(`{"confidence": 250}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Confidence).To(Equal(100))
	})

	It("defaults confidence to 50 when missing", func() {
		c, err := parseClassification(`{"sentiment": "neutral"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Confidence).To(Equal(50))
	})
})
