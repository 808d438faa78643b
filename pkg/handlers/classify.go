package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/audit"
	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/classifier"
	"github.com/ormstack/moderation-go/pkg/comment"
	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/queue"
)

// ActionClassify is the queue action consumed by the classification handler.
const ActionClassify = "classify_comment"

// ClassifyHandler consumes classify_comment messages: it classifies the
// comment (failing closed to neutral), refines with tenant rules, decides
// the action, transitions the comment and dispatches the action message.
type ClassifyHandler struct {
	comments   CommentRecords
	policies   PolicyProvider
	classifier classifier.Classifier
	dispatcher ActionDispatcher
	queue      queue.Queue
	auditor    audit.Sink
	logger     *logrus.Logger
	ticker     *time.Ticker
	done       chan struct{}
	options    Options
}

// NewClassifyHandler creates the classification handler.
func NewClassifyHandler(comments CommentRecords, policies PolicyProvider, cls classifier.Classifier, dispatcher ActionDispatcher, q queue.Queue, auditor audit.Sink, logger *logrus.Logger, options Options) *ClassifyHandler {
	options.applyDefaults()
	return &ClassifyHandler{
		comments:   comments,
		policies:   policies,
		classifier: cls,
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
func (h *ClassifyHandler) Name() string {
	return "classify_handler"
}

// Execute implements the Handler interface.
func (h *ClassifyHandler) Execute(ctx context.Context) error {
	return runLoop(ctx, h.Name(), h.ticker, h.done, h.logger, h.processBatch)
}

// Stop implements the Handler interface.
func (h *ClassifyHandler) Stop() {
	h.ticker.Stop()
	close(h.done)
}

func (h *ClassifyHandler) processBatch(ctx context.Context) error {
	received, err := h.queue.ReceiveBatch(ctx, h.options.BatchSize, ActionClassify)
	if err != nil {
		h.auditor.Record(ctx, audit.EventClassificationBatchErr, map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to receive classify batch: %w", err)
	}
	if len(received) == 0 {
		return nil
	}

	result := BatchResult{Received: len(received)}
	for _, rec := range received {
		if err := h.processRecord(ctx, rec.Message); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("comment %s: %v", rec.Message.CommentID, err))
			// Failed records stay on the queue for lease-expiry
			// redelivery. A missing comment never resolves, so ack it.
			if errors.Is(err, comment.ErrNotFound) {
				ack(ctx, h.queue, h.logger, rec.Receipt)
			}
			continue
		}
		result.Processed++
		ack(ctx, h.queue, h.logger, rec.Receipt)
	}

	h.auditor.Record(ctx, audit.EventClassificationBatch, map[string]interface{}{
		"records_received":  result.Received,
		"records_processed": result.Processed,
		"errors":            result.Errors,
	})

	h.logger.WithFields(logrus.Fields{
		"handler":   h.Name(),
		"received":  result.Received,
		"processed": result.Processed,
		"errors":    len(result.Errors),
	}).Info("Classification batch completed")
	return nil
}

func (h *ClassifyHandler) processRecord(ctx context.Context, msg queue.ActionMessage) error {
	log := h.logger.WithFields(logrus.Fields{
		"comment_id": msg.CommentID,
		"client_id":  msg.ClientID,
	})
	log.Info("Processing comment classification")

	c, err := h.comments.Get(ctx, msg.CommentID)
	if err != nil {
		log.WithError(err).Error("Failed to load comment")
		return err
	}

	// Redelivered message for an already classified comment: recover the
	// dispatch if the action never completed, but never re-classify.
	if c.Status != comment.StatusPending && c.Status != comment.StatusClassificationFailed {
		return h.recoverDispatch(ctx, c)
	}

	rules := h.policies.ClassificationRules(ctx, c.ClientID)

	raw := h.classifier.Classify(ctx, c.Text, rules.BusinessContext)
	refined := classification.Refine(raw, rules, c.Text, time.Now())
	action := decision.Decide(refined, rules)

	if err := h.comments.MarkClassified(ctx, c, refined, action); err != nil {
		log.WithError(err).Error("Failed to record classification")
		if markErr := h.comments.MarkClassificationFailed(ctx, c, err); markErr != nil {
			log.WithError(markErr).Error("Failed to record classification failure")
		}
		return err
	}
	c.Status = comment.StatusClassified

	if action == decision.ActionIgnore {
		if err := h.comments.MarkIgnored(ctx, c); err != nil {
			log.WithError(err).Error("Failed to close out ignored comment")
			return err
		}
	} else if err := h.dispatcher.Dispatch(ctx, c, action, refined); err != nil {
		return err
	}

	h.auditor.Record(ctx, audit.EventCommentClassified, map[string]interface{}{
		"comment_id":     c.CommentID,
		"client_id":      c.ClientID,
		"classification": refined,
		"action":         string(action),
	})

	log.WithField("action", action).Info("Classified comment")
	return nil
}

// recoverDispatch re-dispatches the stored decision for a comment whose
// classify message was redelivered after classification succeeded but
// before the action was queued.
func (h *ClassifyHandler) recoverDispatch(ctx context.Context, c *comment.Comment) error {
	if c.Status != comment.StatusClassified || c.ActionTaken() {
		return nil
	}

	action := decision.Action(c.SuggestedAction)
	if action == "" || action == decision.ActionIgnore {
		return nil
	}

	refined, ok := c.ParseClassification()
	if !ok {
		return fmt.Errorf("comment %s classified without stored classification", c.CommentID)
	}

	return h.dispatcher.Dispatch(ctx, c, action, refined)
}
