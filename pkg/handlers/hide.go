package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/audit"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/interfaces/meta"
	"github.com/ormstack/moderation-go/pkg/queue"
)

// HideHandler consumes hide messages. Before the irreversible platform call
// it re-verifies the tenant's hide criteria against the current moderation
// rules; a queued decision that no longer qualifies results in a reviewed-
// but-not-hidden comment, not an error.
type HideHandler struct {
	comments   CommentRecords
	policies   PolicyProvider
	platform   meta.CommentActions
	history    decision.AuthorHistory
	dispatcher ActionDispatcher
	queue      queue.Queue
	auditor    audit.Sink
	logger     *logrus.Logger
	ticker     *time.Ticker
	done       chan struct{}
	options    Options
}

// NewHideHandler creates the hide handler.
func NewHideHandler(comments CommentRecords, policies PolicyProvider, platform meta.CommentActions, history decision.AuthorHistory, dispatcher ActionDispatcher, q queue.Queue, auditor audit.Sink, logger *logrus.Logger, options Options) *HideHandler {
	options.applyDefaults()
	return &HideHandler{
		comments:   comments,
		policies:   policies,
		platform:   platform,
		history:    history,
		dispatcher: dispatcher,
		queue:      q,
		auditor:    auditor,
		logger:     logger,
		ticker:     time.NewTicker(options.Interval),
		done:       make(chan struct{}),
		options:    options,
	}
}

// Name returns the unique identifier for this handler.
func (h *HideHandler) Name() string {
	return "hide_handler"
}

// Execute implements the Handler interface.
func (h *HideHandler) Execute(ctx context.Context) error {
	return runLoop(ctx, h.Name(), h.ticker, h.done, h.logger, h.processBatch)
}

// Stop implements the Handler interface.
func (h *HideHandler) Stop() {
	h.ticker.Stop()
	close(h.done)
}

func (h *HideHandler) processBatch(ctx context.Context) error {
	received, err := h.queue.ReceiveBatch(ctx, h.options.BatchSize, string(decision.ActionHide))
	if err != nil {
		return fmt.Errorf("failed to receive hide batch: %w", err)
	}
	if len(received) == 0 {
		return nil
	}

	result := BatchResult{Received: len(received)}
	for _, rec := range received {
		if err := h.processRecord(ctx, rec.Message); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("comment %s: %v", rec.Message.CommentID, err))
			if errors.Is(err, comment.ErrNotFound) {
				ack(ctx, h.queue, h.logger, rec.Receipt)
			}
			continue
		}
		result.Processed++
		ack(ctx, h.queue, h.logger, rec.Receipt)
	}

	h.auditor.Record(ctx, audit.EventHideBatch, map[string]interface{}{
		"records_received": result.Received,
		"comments_hidden":  result.Processed,
		"errors":           result.Errors,
	})

	h.logger.WithFields(logrus.Fields{
		"handler":   h.Name(),
		"received":  result.Received,
		"processed": result.Processed,
		"errors":    len(result.Errors),
	}).Info("Hide batch completed")
	return nil
}

func (h *HideHandler) processRecord(ctx context.Context, msg queue.ActionMessage) error {
	log := h.logger.WithFields(logrus.Fields{
		"comment_id": msg.CommentID,
		"client_id":  msg.ClientID,
	})
	log.Info("Processing hide for comment")

	c, err := h.comments.Get(ctx, msg.CommentID)
	if err != nil {
		log.WithError(err).Error("Failed to load comment")
		return err
	}

	if c.AlreadyDone(decision.ActionHide) {
		log.Info("Comment already hidden")
		return nil
	}
	if c.HideReviewed {
		log.Info("Comment already reviewed for hiding")
		return nil
	}

	rules := h.policies.ModerationRules(ctx, c.ClientID)
	shouldHide := decision.VerifyHideCriteria(ctx, decision.HideRequest{
		ClientID:       c.ClientID,
		AuthorID:       c.AuthorID,
		CommentText:    c.Text,
		Classification: msg.Classification,
	}, rules, h.history)

	if !shouldHide {
		log.Info("Comment does not meet hide criteria")
		if err := h.comments.MarkHideSkipped(ctx, c); err != nil {
			log.WithError(err).Error("Failed to record hide review")
			return err
		}
		return nil
	}

	reason := decision.HideReason(msg.Classification)

	hidden, err := h.platform.HideComment(ctx, c.CommentID)
	if err != nil {
		h.recordHideFailure(ctx, c, log, err.Error())
		return err
	}
	if !hidden {
		h.recordHideFailure(ctx, c, log, "API call failed")
		return fmt.Errorf("platform rejected hide for comment %s", c.CommentID)
	}

	if err := h.comments.MarkHidden(ctx, c, reason); err != nil {
		log.WithError(err).Error("Failed to record hide")
		return err
	}

	h.auditor.Record(ctx, audit.EventCommentHidden, map[string]interface{}{
		"comment_id":     c.CommentID,
		"client_id":      c.ClientID,
		"hide_reason":    reason,
		"classification": msg.Classification,
		"comment_text":   truncateText(c.Text, 100),
	})

	h.sendHideNotice(ctx, c, reason)

	log.WithField("hide_reason", reason).Info("Hidden comment")
	return nil
}

// sendHideNotice queues a hide notification for the escalation handler when
// the tenant has hide notices enabled. Best-effort: the hide itself already
// succeeded.
func (h *HideHandler) sendHideNotice(ctx context.Context, c *comment.Comment, reason string) {
	settings := h.policies.NotificationSettings(ctx, c.ClientID)
	if !settings.HideNotifications() {
		return
	}

	err := h.dispatcher.DispatchNotification(ctx, queue.ActionMessage{
		NotificationType: "comment_hidden",
		CommentID:        c.CommentID,
		ClientID:         c.ClientID,
		CommentText:      truncateText(c.Text, 200),
		HideReason:       reason,
	})
	if err != nil {
		h.logger.WithError(err).WithField("comment_id", c.CommentID).
			Error("Failed to queue hide notification")
	}
}

func (h *HideHandler) recordHideFailure(ctx context.Context, c *comment.Comment, log *logrus.Entry, cause string) {
	log.WithField("cause", cause).Error("Failed to hide comment")
	if err := h.comments.MarkHideFailed(ctx, c, cause); err != nil {
		log.WithError(err).Error("Failed to record hide failure")
	}
}

// truncateText trims to max runes, never splitting a multi-byte character.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
