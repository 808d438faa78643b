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
	"github.com/ormstack/moderation-go/pkg/notify"
	"github.com/ormstack/moderation-go/pkg/queue"
)

// ActionSendNotification is the queue action for standalone notifications
// (hide notices) routed through this handler.
const ActionSendNotification = "send_notification"

// HideNoticeSender delivers hide notices. *notify.SlackNotifier implements
// it.
type HideNoticeSender interface {
	SendHideNotice(ctx context.Context, clientID, commentText, hideReason string) error
}

// EscalateHandler consumes escalate messages: it computes the severity
// tier, fans the alert out to the tenant's enabled channels and records the
// escalation on the comment. It also delivers send_notification messages.
type EscalateHandler struct {
	comments  CommentRecords
	policies  PolicyProvider
	notifiers map[string]notify.Notifier
	slack     HideNoticeSender
	queue     queue.Queue
	auditor   audit.Sink
	logger    *logrus.Logger
	ticker    *time.Ticker
	done      chan struct{}
	options   Options
}

// NewEscalateHandler creates the escalation handler. The notifiers map is
// keyed by channel name (notify.ChannelSlack etc.).
func NewEscalateHandler(comments CommentRecords, policies PolicyProvider, notifiers map[string]notify.Notifier, slack HideNoticeSender, q queue.Queue, auditor audit.Sink, logger *logrus.Logger, options Options) *EscalateHandler {
	options.applyDefaults()
	return &EscalateHandler{
		comments:  comments,
		policies:  policies,
		notifiers: notifiers,
		slack:     slack,
		queue:     q,
		auditor:   auditor,
		logger:    logger,
		ticker:    time.NewTicker(options.Interval),
		done:      make(chan struct{}),
		options:   options,
	}
}

// Name returns the unique identifier for this handler.
func (h *EscalateHandler) Name() string {
	return "escalation_handler"
}

// Execute implements the Handler interface.
func (h *EscalateHandler) Execute(ctx context.Context) error {
	return runLoop(ctx, h.Name(), h.ticker, h.done, h.logger, h.processBatch)
}

// Stop implements the Handler interface.
func (h *EscalateHandler) Stop() {
	h.ticker.Stop()
	close(h.done)
}

func (h *EscalateHandler) processBatch(ctx context.Context) error {
	received, err := h.queue.ReceiveBatch(ctx, h.options.BatchSize,
		string(decision.ActionEscalate), ActionSendNotification)
	if err != nil {
		return fmt.Errorf("failed to receive escalation batch: %w", err)
	}
	if len(received) == 0 {
		return nil
	}

	result := BatchResult{Received: len(received)}
	for _, rec := range received {
		var err error
		if rec.Message.Action == ActionSendNotification {
			err = h.processNotification(ctx, rec.Message)
		} else {
			err = h.processEscalation(ctx, rec.Message)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("comment %s: %v", rec.Message.CommentID, err))
			if errors.Is(err, comment.ErrNotFound) {
				ack(ctx, h.queue, h.logger, rec.Receipt)
			}
			continue
		}
		result.Processed++
		ack(ctx, h.queue, h.logger, rec.Receipt)
	}

	h.auditor.Record(ctx, audit.EventEscalationBatch, map[string]interface{}{
		"records_received": result.Received,
		"escalations_sent": result.Processed,
		"errors":           result.Errors,
	})

	h.logger.WithFields(logrus.Fields{
		"handler":   h.Name(),
		"received":  result.Received,
		"processed": result.Processed,
		"errors":    len(result.Errors),
	}).Info("Escalation batch completed")
	return nil
}

func (h *EscalateHandler) processEscalation(ctx context.Context, msg queue.ActionMessage) error {
	log := h.logger.WithFields(logrus.Fields{
		"comment_id": msg.CommentID,
		"client_id":  msg.ClientID,
	})
	log.Info("Processing escalation for comment")

	c, err := h.comments.Get(ctx, msg.CommentID)
	if err != nil {
		log.WithError(err).Error("Failed to load comment")
		return err
	}

	if c.AlreadyDone(decision.ActionEscalate) {
		log.Info("Comment already escalated")
		return nil
	}

	settings := h.policies.NotificationSettings(ctx, c.ClientID)
	severity := decision.SeverityFor(msg.Classification)

	alert := notify.Alert{
		CommentID:   c.CommentID,
		ClientID:    c.ClientID,
		CommentText: c.Text,
		AuthorName:  c.AuthorName,
		AuthorID:    c.AuthorID,
		Platform:    string(c.Platform),
		Severity:    severity,
		Sentiment:   string(msg.Classification.Sentiment),
		Toxicity:    msg.Classification.ToxicityScore,
	}

	var sent []string
	for _, channel := range notify.ChannelsFor(severity) {
		if !notify.Enabled(channel, settings) {
			continue
		}
		notifier, ok := h.notifiers[channel]
		if !ok {
			continue
		}
		if err := notifier.Send(ctx, alert); err != nil {
			log.WithError(err).WithField("channel", channel).Warn("Notification channel failed")
			continue
		}
		sent = append(sent, channel)
	}

	if err := h.comments.MarkEscalated(ctx, c, severity, sent); err != nil {
		log.WithError(err).Error("Failed to record escalation")
		if markErr := h.comments.MarkEscalationFailed(ctx, c, err.Error()); markErr != nil {
			log.WithError(markErr).Error("Failed to record escalation failure")
		}
		return err
	}

	h.auditor.Record(ctx, audit.EventCommentEscalated, map[string]interface{}{
		"comment_id":         c.CommentID,
		"client_id":          c.ClientID,
		"escalation_level":   string(severity),
		"notifications_sent": sent,
		"classification":     msg.Classification,
	})

	log.WithFields(logrus.Fields{
		"escalation_level":   severity,
		"notifications_sent": sent,
	}).Info("Escalated comment")
	return nil
}

// processNotification delivers a standalone notification message, currently
// only hide notices.
func (h *EscalateHandler) processNotification(ctx context.Context, msg queue.ActionMessage) error {
	if msg.NotificationType != "comment_hidden" {
		h.logger.WithFields(logrus.Fields{
			"type":       msg.NotificationType,
			"comment_id": msg.CommentID,
		}).Warn("Unknown notification type, dropping")
		return nil
	}

	settings := h.policies.NotificationSettings(ctx, msg.ClientID)
	if !settings.Slack() {
		return nil
	}

	if err := h.slack.SendHideNotice(ctx, msg.ClientID, msg.CommentText, msg.HideReason); err != nil {
		return fmt.Errorf("failed to send hide notice: %w", err)
	}
	return nil
}
