package handlers

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/queue"
)

var _ = Describe("HideHandler", func() {
	var (
		ctx        context.Context
		comments   *fakeComments
		policies   *fakePolicies
		platform   *fakePlatform
		dispatcher *fakeDispatcher
		q          *fakeQueue
		handler    *HideHandler
	)

	toxic := classification.Classification{
		Sentiment:     classification.SentimentNegative,
		Urgency:       classification.UrgencyHigh,
		Intent:        classification.IntentComplaint,
		ToxicityScore: 9,
		Confidence:    90,
	}

	hideMessage := func(commentID string, c classification.Classification) queue.Received {
		return queue.Received{
			Receipt: "receipt-" + commentID,
			Message: queue.ActionMessage{
				Action:         string(decision.ActionHide),
				CommentID:      commentID,
				ClientID:       "client-1",
				Classification: c,
			},
		}
	}

	storedComment := func(commentID string) *comment.Comment {
		return &comment.Comment{
			CommentID: commentID,
			ClientID:  "client-1",
			Platform:  comment.PlatformFacebook,
			Text:      "some comment text",
			AuthorID:  "author-1",
			Status:    comment.StatusClassified,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		comments = &fakeComments{byID: map[string]*comment.Comment{}}
		policies = &fakePolicies{}
		policies.moderation.Normalize()
		platform = &fakePlatform{}
		dispatcher = &fakeDispatcher{}
		q = &fakeQueue{}
		handler = NewHideHandler(comments, policies, platform, stubHistory{}, dispatcher, q, nopSink{}, quietLogger(), Options{})
	})

	AfterEach(func() {
		handler.Stop()
	})

	It("hides a qualifying comment and acks the message", func() {
		comments.byID["c1"] = storedComment("c1")
		q.pending = []queue.Received{hideMessage("c1", toxic)}

		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(platform.hideCalls).To(Equal(1))
		Expect(comments.byID["c1"].Hidden).To(BeTrue())
		Expect(comments.byID["c1"].HideReason).NotTo(BeEmpty())
		Expect(q.acked).To(ConsistOf("receipt-c1"))
	})

	It("queues a hide notice after a successful hide", func() {
		comments.byID["c1"] = storedComment("c1")
		q.pending = []queue.Received{hideMessage("c1", toxic)}

		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(dispatcher.notifications).To(HaveLen(1))
		Expect(dispatcher.notifications[0].NotificationType).To(Equal("comment_hidden"))
		Expect(dispatcher.notifications[0].CommentID).To(Equal("c1"))
	})

	It("never repeats the platform call for an already hidden comment", func() {
		c := storedComment("c1")
		c.Hidden = true
		c.Status = comment.StatusHidden
		comments.byID["c1"] = c
		q.pending = []queue.Received{hideMessage("c1", toxic)}

		Expect(handler.processBatch(ctx)).To(Succeed())
		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(platform.hideCalls).To(BeZero())
		Expect(q.acked).To(ContainElement("receipt-c1"))
	})

	It("skips the platform call when the criteria no longer hold", func() {
		benign := classification.Classification{
			Sentiment:     classification.SentimentNeutral,
			Urgency:       classification.UrgencyLow,
			Intent:        classification.IntentGeneral,
			ToxicityScore: 2,
			Confidence:    90,
		}
		comments.byID["c1"] = storedComment("c1")
		q.pending = []queue.Received{hideMessage("c1", benign)}

		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(platform.hideCalls).To(BeZero())
		Expect(comments.byID["c1"].Hidden).To(BeFalse())
		Expect(comments.byID["c1"].HideReviewed).To(BeTrue())
		Expect(comments.transitions).To(ContainElement("hide_skipped:c1"))
		Expect(q.acked).To(ConsistOf("receipt-c1"))
	})

	It("keeps processing siblings when one record fails", func() {
		comments.byID["c1"] = storedComment("c1")
		comments.byID["c2"] = storedComment("c2")
		platform.failID = "c1"
		q.pending = []queue.Received{
			hideMessage("c1", toxic),
			hideMessage("c2", toxic),
		}

		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(comments.byID["c1"].Hidden).To(BeFalse())
		Expect(comments.byID["c1"].HideFailed).To(BeTrue())
		Expect(comments.byID["c2"].Hidden).To(BeTrue())
		Expect(q.acked).To(ConsistOf("receipt-c2"))
	})

	It("acks a message whose comment no longer exists", func() {
		q.pending = []queue.Received{hideMessage("ghost", toxic)}

		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(platform.hideCalls).To(BeZero())
		Expect(q.acked).To(ConsistOf("receipt-ghost"))
	})

	It("records a failure when the platform rejects the hide", func() {
		comments.byID["c1"] = storedComment("c1")
		platform.reject = true
		q.pending = []queue.Received{hideMessage("c1", toxic)}

		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(comments.byID["c1"].Hidden).To(BeFalse())
		Expect(comments.transitions).To(ContainElement("hide_failed:c1"))
		Expect(q.acked).To(BeEmpty())
	})
})

var _ = Describe("truncateText", func() {
	It("never splits a multi-byte character", func() {
		Expect(truncateText("héllo wörld", 7)).To(Equal("héllo w"))
	})
})
