package dispatch_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/dispatch"
	"github.com/ormstack/moderation-go/pkg/queue"
)

type enqueued struct {
	msg   queue.ActionMessage
	delay time.Duration
}

type fakeQueue struct {
	enqueued   []enqueued
	enqueueErr error
}

func (f *fakeQueue) Enqueue(ctx context.Context, msg queue.ActionMessage, delay time.Duration) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, enqueued{msg: msg, delay: delay})
	return nil
}

func (f *fakeQueue) ReceiveBatch(ctx context.Context, max int, actions ...string) ([]queue.Received, error) {
	return nil, nil
}

func (f *fakeQueue) Delete(ctx context.Context, receipt string) error {
	return nil
}

var _ = Describe("DelayFor", func() {
	It("delays low urgency by five minutes", func() {
		Expect(dispatch.DelayFor(classification.UrgencyLow)).To(Equal(300 * time.Second))
	})

	It("delays medium urgency by one minute", func() {
		Expect(dispatch.DelayFor(classification.UrgencyMedium)).To(Equal(60 * time.Second))
	})

	It("runs high urgency immediately", func() {
		Expect(dispatch.DelayFor(classification.UrgencyHigh)).To(BeZero())
	})

	It("runs unknown urgency immediately", func() {
		Expect(dispatch.DelayFor(classification.Urgency("weird"))).To(BeZero())
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		q          *fakeQueue
		dispatcher *dispatch.Dispatcher
		c          *comment.Comment
		refined    classification.Classification
	)

	BeforeEach(func() {
		ctx = context.Background()
		q = &fakeQueue{}
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)
		dispatcher = dispatch.NewDispatcher(q, logger)

		c = &comment.Comment{
			CommentID: "comment-1",
			ClientID:  "client-1",
		}
		refined = classification.Classification{
			Urgency:    classification.UrgencyHigh,
			Confidence: 90,
		}
	})

	It("enqueues the decided action with the urgency delay", func() {
		refined.Urgency = classification.UrgencyMedium

		err := dispatcher.Dispatch(ctx, c, decision.ActionEscalate, refined)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.enqueued).To(HaveLen(1))
		Expect(q.enqueued[0].msg.Action).To(Equal("escalate"))
		Expect(q.enqueued[0].msg.CommentID).To(Equal("comment-1"))
		Expect(q.enqueued[0].msg.ClientID).To(Equal("client-1"))
		Expect(q.enqueued[0].delay).To(Equal(60 * time.Second))
	})

	It("skips ignore decisions", func() {
		err := dispatcher.Dispatch(ctx, c, decision.ActionIgnore, refined)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.enqueued).To(BeEmpty())
	})

	It("skips actions the comment already completed", func() {
		c.ReplySent = true

		err := dispatcher.Dispatch(ctx, c, decision.ActionReply, refined)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.enqueued).To(BeEmpty())
	})

	It("surfaces enqueue failures", func() {
		q.enqueueErr = errors.New("queue unavailable")

		err := dispatcher.Dispatch(ctx, c, decision.ActionHide, refined)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("comment-1"))
	})

	It("stamps notification messages with the send_notification action", func() {
		err := dispatcher.DispatchNotification(ctx, queue.ActionMessage{
			CommentID:        "comment-1",
			ClientID:         "client-1",
			NotificationType: "comment_hidden",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(q.enqueued).To(HaveLen(1))
		Expect(q.enqueued[0].msg.Action).To(Equal("send_notification"))
		Expect(q.enqueued[0].delay).To(BeZero())
	})
})
