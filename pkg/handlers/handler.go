// Package handlers contains the queue consumers that drive the moderation
// pipeline: classification, reply, hide and escalation. Each handler polls
// the work queue on its own ticker, processes records independently, and
// records per-record failures without ever aborting sibling records in the
// same batch.
package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/policy"
	"github.com/ormstack/moderation-go/pkg/queue"
)

// Handler is a single long-running queue consumer.
type Handler interface {
	// Name returns the unique identifier for this handler
	Name() string
	// Execute runs the handler poll loop until the context is canceled
	Execute(ctx context.Context) error
	// Stop cleanly stops the handler
	Stop()
}

// CommentRecords is the comment-store surface the handlers read and
// transition. *comment.Store implements it.
type CommentRecords interface {
	Get(ctx context.Context, commentID string) (*comment.Comment, error)
	MarkClassified(ctx context.Context, c *comment.Comment, refined classification.Classification, action decision.Action) error
	MarkClassificationFailed(ctx context.Context, c *comment.Comment, cause error) error
	MarkIgnored(ctx context.Context, c *comment.Comment) error
	MarkReplied(ctx context.Context, c *comment.Comment, replyMessage string) error
	MarkReplyFailed(ctx context.Context, c *comment.Comment, cause string) error
	MarkHidden(ctx context.Context, c *comment.Comment, reason string) error
	MarkHideSkipped(ctx context.Context, c *comment.Comment) error
	MarkHideFailed(ctx context.Context, c *comment.Comment, cause string) error
	MarkEscalated(ctx context.Context, c *comment.Comment, level decision.Severity, channels []string) error
	MarkEscalationFailed(ctx context.Context, c *comment.Comment, cause string) error
}

// PolicyProvider resolves per-tenant configuration. *policy.Store implements
// it.
type PolicyProvider interface {
	ClassificationRules(ctx context.Context, clientID string) policy.ClassificationRules
	ModerationRules(ctx context.Context, clientID string) policy.ModerationRules
	ResponseTemplates(ctx context.Context, clientID string) policy.ResponseTemplates
	NotificationSettings(ctx context.Context, clientID string) policy.NotificationSettings
}

// ActionDispatcher enqueues decided actions and notifications.
// *dispatch.Dispatcher implements it.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, c *comment.Comment, action decision.Action, refined classification.Classification) error
	DispatchNotification(ctx context.Context, msg queue.ActionMessage) error
}

// Options holds common handler tuning.
type Options struct {
	Interval  time.Duration
	BatchSize int
}

func (o *Options) applyDefaults() {
	if o.Interval == 0 {
		o.Interval = 10 * time.Second
	}
	if o.BatchSize == 0 {
		o.BatchSize = 10
	}
}

// BatchResult summarizes one poll cycle.
type BatchResult struct {
	Received  int
	Processed int
	Errors    []string
}

// ack deletes a processed message, logging rather than propagating failures:
// a missed ack only means one redundant redelivery against idempotent
// executors.
func ack(ctx context.Context, q queue.Queue, logger *logrus.Logger, receipt string) {
	if err := q.Delete(ctx, receipt); err != nil {
		logger.WithError(err).WithField("receipt", receipt).
			Error("Failed to acknowledge queue message")
	}
}

// runLoop drives a handler's poll cycle until the context is canceled or
// the handler is stopped. Poll errors are logged and the loop continues;
// only context cancellation ends it.
func runLoop(ctx context.Context, name string, ticker *time.Ticker, done <-chan struct{}, logger *logrus.Logger, poll func(context.Context) error) error {
	log := logger.WithField("handler", name)
	log.Info("Starting handler poll loop")

	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return ctx.Err()
		case <-done:
			return nil
		case <-ticker.C:
			if err := poll(ctx); err != nil {
				log.WithError(err).Error("Poll cycle failed")
			}
		}
	}
}
