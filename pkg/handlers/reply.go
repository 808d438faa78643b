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
	"github.com/ormstack/moderation-go/pkg/templates"
)

// ReplyHandler consumes reply messages: it renders the tenant template and
// posts the reply through the platform API. An already-set reply_sent flag
// is treated as success without a second platform call.
type ReplyHandler struct {
	comments CommentRecords
	policies PolicyProvider
	platform meta.CommentActions
	queue    queue.Queue
	auditor  audit.Sink
	logger   *logrus.Logger
	ticker   *time.Ticker
	done     chan struct{}
	options  Options
}

// NewReplyHandler creates the reply handler.
func NewReplyHandler(comments CommentRecords, policies PolicyProvider, platform meta.CommentActions, q queue.Queue, auditor audit.Sink, logger *logrus.Logger, options Options) *ReplyHandler {
	options.applyDefaults()
	return &ReplyHandler{
		comments: comments,
		policies: policies,
		platform: platform,
		queue:    q,
		auditor:  auditor,
		logger:   logger,
		ticker:   time.NewTicker(options.Interval),
		done:     make(chan struct{}),
		options:  options,
	}
}

// Name returns the unique identifier for this handler.
func (h *ReplyHandler) Name() string {
	return "reply_handler"
}

// Execute implements the Handler interface.
func (h *ReplyHandler) Execute(ctx context.Context) error {
	return runLoop(ctx, h.Name(), h.ticker, h.done, h.logger, h.processBatch)
}

// Stop implements the Handler interface.
func (h *ReplyHandler) Stop() {
	h.ticker.Stop()
	close(h.done)
}

func (h *ReplyHandler) processBatch(ctx context.Context) error {
	received, err := h.queue.ReceiveBatch(ctx, h.options.BatchSize, string(decision.ActionReply))
	if err != nil {
		return fmt.Errorf("failed to receive reply batch: %w", err)
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

	h.auditor.Record(ctx, audit.EventReplyBatch, map[string]interface{}{
		"records_received": result.Received,
		"replies_sent":     result.Processed,
		"errors":           result.Errors,
	})

	h.logger.WithFields(logrus.Fields{
		"handler":   h.Name(),
		"received":  result.Received,
		"processed": result.Processed,
		"errors":    len(result.Errors),
	}).Info("Reply batch completed")
	return nil
}

func (h *ReplyHandler) processRecord(ctx context.Context, msg queue.ActionMessage) error {
	log := h.logger.WithFields(logrus.Fields{
		"comment_id": msg.CommentID,
		"client_id":  msg.ClientID,
	})
	log.Info("Processing reply for comment")

	c, err := h.comments.Get(ctx, msg.CommentID)
	if err != nil {
		log.WithError(err).Error("Failed to load comment")
		return err
	}

	if c.AlreadyDone(decision.ActionReply) {
		log.Info("Already replied to comment")
		return nil
	}

	tpl := h.policies.ResponseTemplates(ctx, c.ClientID)
	replyMessage := templates.GenerateReply(templates.ReplyInput{
		AuthorName: c.AuthorName,
		Platform:   string(c.Platform),
	}, msg.Classification, tpl, time.Now())

	sent, err := h.platform.ReplyToComment(ctx, c.CommentID, replyMessage)
	if err != nil {
		h.recordReplyFailure(ctx, c, log, err.Error())
		return err
	}
	if !sent {
		h.recordReplyFailure(ctx, c, log, "API call failed")
		return fmt.Errorf("platform rejected reply for comment %s", c.CommentID)
	}

	if err := h.comments.MarkReplied(ctx, c, replyMessage); err != nil {
		log.WithError(err).Error("Failed to record reply")
		return err
	}

	h.auditor.Record(ctx, audit.EventReplySent, map[string]interface{}{
		"comment_id":     c.CommentID,
		"client_id":      c.ClientID,
		"reply_message":  replyMessage,
		"classification": msg.Classification,
	})

	log.Info("Replied to comment")
	return nil
}

func (h *ReplyHandler) recordReplyFailure(ctx context.Context, c *comment.Comment, log *logrus.Entry, cause string) {
	log.WithField("cause", cause).Error("Failed to send reply")
	if err := h.comments.MarkReplyFailed(ctx, c, cause); err != nil {
		log.WithError(err).Error("Failed to record reply failure")
	}
}
