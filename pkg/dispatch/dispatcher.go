// Package dispatch turns decided actions into queued work. It owns the
// severity-based delay policy and the pre-enqueue idempotency check that
// keeps a comment from being re-queued for an action it already completed.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/queue"
)

// Dispatcher wraps the work queue for the decision pipeline.
type Dispatcher struct {
	queue  queue.Queue
	logger *logrus.Logger
}

// NewDispatcher creates a dispatcher over the given queue.
func NewDispatcher(q queue.Queue, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{queue: q, logger: logger}
}

// DelayFor returns the scheduling delay applied before an action message
// becomes visible: low urgency waits 300s, medium 60s, everything else runs
// immediately. The delay is backpressure, not a correctness mechanism.
func DelayFor(urgency classification.Urgency) time.Duration {
	switch urgency {
	case classification.UrgencyLow:
		return 300 * time.Second
	case classification.UrgencyMedium:
		return 60 * time.Second
	default:
		return 0
	}
}

// Dispatch enqueues the action message for a decided action. Ignore
// decisions and actions the comment has already completed are skipped
// without touching the queue. An enqueue failure is returned as this
// record's processing error; callers continue with sibling records.
func (d *Dispatcher) Dispatch(ctx context.Context, c *comment.Comment, action decision.Action, refined classification.Classification) error {
	log := d.logger.WithFields(logrus.Fields{
		"comment_id": c.CommentID,
		"client_id":  c.ClientID,
		"action":     action,
	})

	if action == decision.ActionIgnore {
		log.Debug("Ignore decision, nothing to dispatch")
		return nil
	}

	if c.AlreadyDone(action) {
		log.Info("Action already completed, skipping dispatch")
		return nil
	}

	msg := queue.ActionMessage{
		Action:         string(action),
		CommentID:      c.CommentID,
		ClientID:       c.ClientID,
		Classification: refined,
		QueuedAt:       time.Now().UTC(),
	}

	delay := DelayFor(refined.Urgency)
	if err := d.queue.Enqueue(ctx, msg, delay); err != nil {
		log.WithError(err).Error("Failed to enqueue action message")
		return fmt.Errorf("failed to queue %s for comment %s: %w", action, c.CommentID, err)
	}

	log.WithField("delay", delay).Info("Queued action for comment")
	return nil
}

// DispatchNotification enqueues a send_notification message, used for hide
// notices routed through the escalation handler.
func (d *Dispatcher) DispatchNotification(ctx context.Context, msg queue.ActionMessage) error {
	msg.Action = "send_notification"
	msg.QueuedAt = time.Now().UTC()

	if err := d.queue.Enqueue(ctx, msg, 0); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"comment_id": msg.CommentID,
			"type":       msg.NotificationType,
		}).Error("Failed to enqueue notification message")
		return fmt.Errorf("failed to queue notification for comment %s: %w", msg.CommentID, err)
	}
	return nil
}
