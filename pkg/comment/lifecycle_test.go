package comment_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
)

var _ = Describe("CanTransition", func() {
	It("allows pending to classified", func() {
		Expect(comment.CanTransition(comment.StatusPending, comment.StatusClassified)).To(BeTrue())
	})

	It("allows pending to classification_failed", func() {
		Expect(comment.CanTransition(comment.StatusPending, comment.StatusClassificationFailed)).To(BeTrue())
	})

	It("allows classified to each action outcome", func() {
		for _, to := range []comment.Status{
			comment.StatusReplied,
			comment.StatusHidden,
			comment.StatusEscalated,
			comment.StatusIgnored,
			comment.StatusReplyFailed,
			comment.StatusHideFailed,
			comment.StatusEscalationFailed,
		} {
			Expect(comment.CanTransition(comment.StatusClassified, to)).To(BeTrue(),
				"classified -> %s should be allowed", to)
		}
	})

	It("never allows pending to skip classification", func() {
		Expect(comment.CanTransition(comment.StatusPending, comment.StatusReplied)).To(BeFalse())
		Expect(comment.CanTransition(comment.StatusPending, comment.StatusHidden)).To(BeFalse())
	})

	It("lets failure states retry into their success state", func() {
		Expect(comment.CanTransition(comment.StatusClassificationFailed, comment.StatusClassified)).To(BeTrue())
		Expect(comment.CanTransition(comment.StatusReplyFailed, comment.StatusReplied)).To(BeTrue())
		Expect(comment.CanTransition(comment.StatusHideFailed, comment.StatusHidden)).To(BeTrue())
		Expect(comment.CanTransition(comment.StatusEscalationFailed, comment.StatusEscalated)).To(BeTrue())
	})

	It("lets a failed hide resolve to ignored after review", func() {
		Expect(comment.CanTransition(comment.StatusHideFailed, comment.StatusIgnored)).To(BeTrue())
	})

	It("keeps terminal states sticky", func() {
		terminals := []comment.Status{
			comment.StatusReplied,
			comment.StatusHidden,
			comment.StatusEscalated,
			comment.StatusIgnored,
		}
		all := append([]comment.Status{
			comment.StatusPending,
			comment.StatusClassified,
			comment.StatusReplyFailed,
		}, terminals...)

		for _, from := range terminals {
			for _, to := range all {
				Expect(comment.CanTransition(from, to)).To(BeFalse(),
					"%s -> %s should be rejected", from, to)
			}
		}
	})
})

var _ = Describe("IsTerminal", func() {
	It("marks the four action outcomes terminal", func() {
		Expect(comment.IsTerminal(comment.StatusReplied)).To(BeTrue())
		Expect(comment.IsTerminal(comment.StatusHidden)).To(BeTrue())
		Expect(comment.IsTerminal(comment.StatusEscalated)).To(BeTrue())
		Expect(comment.IsTerminal(comment.StatusIgnored)).To(BeTrue())
	})

	It("keeps failure states non-terminal", func() {
		Expect(comment.IsTerminal(comment.StatusReplyFailed)).To(BeFalse())
		Expect(comment.IsTerminal(comment.StatusHideFailed)).To(BeFalse())
		Expect(comment.IsTerminal(comment.StatusPending)).To(BeFalse())
		Expect(comment.IsTerminal(comment.StatusClassified)).To(BeFalse())
	})
})

var _ = Describe("AlreadyDone", func() {
	It("reports a sent reply", func() {
		c := &comment.Comment{ReplySent: true}
		Expect(c.AlreadyDone(decision.ActionReply)).To(BeTrue())
		Expect(c.AlreadyDone(decision.ActionHide)).To(BeFalse())
		Expect(c.AlreadyDone(decision.ActionEscalate)).To(BeFalse())
	})

	It("reports a hidden comment", func() {
		c := &comment.Comment{Hidden: true}
		Expect(c.AlreadyDone(decision.ActionHide)).To(BeTrue())
	})

	It("reports an escalated comment", func() {
		c := &comment.Comment{Escalated: true}
		Expect(c.AlreadyDone(decision.ActionEscalate)).To(BeTrue())
	})

	It("is false for ignore", func() {
		c := &comment.Comment{ReplySent: true, Hidden: true, Escalated: true}
		Expect(c.AlreadyDone(decision.ActionIgnore)).To(BeFalse())
	})

	It("is false on a fresh comment", func() {
		c := &comment.Comment{}
		Expect(c.ActionTaken()).To(BeFalse())
	})
})

var _ = Describe("ParseClassification", func() {
	It("round-trips a stored classification", func() {
		raw, err := json.Marshal(map[string]interface{}{
			"sentiment":      "negative",
			"urgency":        "high",
			"intent":         "complaint",
			"toxicity_score": 6,
			"confidence":     85,
		})
		Expect(err).NotTo(HaveOccurred())

		c := &comment.Comment{Classification: raw}
		parsed, ok := c.ParseClassification()
		Expect(ok).To(BeTrue())
		Expect(parsed.ToxicityScore).To(Equal(6))
		Expect(parsed.Confidence).To(Equal(85))
	})

	It("reports absence when nothing is stored", func() {
		c := &comment.Comment{}
		_, ok := c.ParseClassification()
		Expect(ok).To(BeFalse())
	})

	It("reports absence on malformed JSON", func() {
		c := &comment.Comment{Classification: []byte("{not json")}
		_, ok := c.ParseClassification()
		Expect(ok).To(BeFalse())
	})
})
