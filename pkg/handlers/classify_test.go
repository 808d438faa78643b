package handlers

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/queue"
)

type fakeClassifier struct {
	result classification.Classification
}

func (f fakeClassifier) Classify(ctx context.Context, commentText, businessContext string) classification.Classification {
	return f.result
}

var _ = Describe("ClassifyHandler", func() {
	var (
		ctx        context.Context
		comments   *fakeComments
		policies   *fakePolicies
		dispatcher *fakeDispatcher
		q          *fakeQueue
	)

	classifyMessage := func(commentID string) queue.Received {
		return queue.Received{
			Receipt: "receipt-" + commentID,
			Message: queue.ActionMessage{
				Action:    ActionClassify,
				CommentID: commentID,
				ClientID:  "client-1",
			},
		}
	}

	newHandler := func(cls classification.Classification) *ClassifyHandler {
		return NewClassifyHandler(comments, policies, fakeClassifier{result: cls},
			dispatcher, q, nopSink{}, quietLogger(), Options{})
	}

	BeforeEach(func() {
		ctx = context.Background()
		comments = &fakeComments{byID: map[string]*comment.Comment{}}
		policies = &fakePolicies{}
		policies.rules.Normalize()
		dispatcher = &fakeDispatcher{}
		q = &fakeQueue{}
	})

	It("escalates when the classifier falls back to the neutral result", func() {
		comments.byID["c1"] = &comment.Comment{
			CommentID: "c1",
			ClientID:  "client-1",
			Text:      "unreadable comment",
			Status:    comment.StatusPending,
		}
		q.pending = []queue.Received{classifyMessage("c1")}

		handler := newHandler(classification.Neutral())
		defer handler.Stop()
		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(comments.transitions).To(ContainElement("classified:c1"))
		Expect(dispatcher.dispatched).To(ConsistOf(dispatched{commentID: "c1", action: decision.ActionEscalate}))
		Expect(q.acked).To(ConsistOf("receipt-c1"))
	})

	It("closes out a benign high-confidence comment as ignored", func() {
		comments.byID["c1"] = &comment.Comment{
			CommentID: "c1",
			ClientID:  "client-1",
			Text:      "love this product",
			Status:    comment.StatusPending,
		}
		q.pending = []queue.Received{classifyMessage("c1")}

		handler := newHandler(classification.Classification{
			Sentiment:  classification.SentimentPositive,
			Urgency:    classification.UrgencyLow,
			Intent:     classification.IntentCompliment,
			Confidence: 95,
		})
		defer handler.Stop()
		Expect(handler.processBatch(ctx)).To(Succeed())

		Expect(comments.transitions).To(ContainElement("ignored:c1"))
		Expect(dispatcher.dispatched).To(BeEmpty())
		Expect(q.acked).To(ConsistOf("receipt-c1"))
	})

	It("re-dispatches a classified comment whose action never ran", func() {
		stored, err := json.Marshal(classification.Classification{
			Sentiment:     classification.SentimentNegative,
			Urgency:       classification.UrgencyHigh,
			Intent:        classification.IntentComplaint,
			ToxicityScore: 9,
			Confidence:    90,
		})
		Expect(err).NotTo(HaveOccurred())

		comments.byID["c1"] = &comment.Comment{
			CommentID:       "c1",
			ClientID:        "client-1",
			Status:          comment.StatusClassified,
			SuggestedAction: string(decision.ActionHide),
			Classification:  stored,
		}
		q.pending = []queue.Received{classifyMessage("c1")}

		handler := newHandler(classification.Neutral())
		defer handler.Stop()
		Expect(handler.processBatch(ctx)).To(Succeed())

		// Never re-classified, only the stored decision is replayed.
		Expect(comments.transitions).NotTo(ContainElement("classified:c1"))
		Expect(dispatcher.dispatched).To(ConsistOf(dispatched{commentID: "c1", action: decision.ActionHide}))
		Expect(q.acked).To(ConsistOf("receipt-c1"))
	})
})
