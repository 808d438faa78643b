package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Message is the database row backing one queued action message. The action
// column duplicates the body's action field so consumers can claim only the
// message types they handle.
type Message struct {
	ID           string          `gorm:"primaryKey;column:id"`
	Action       string          `gorm:"column:action;not null;index"`
	Body         json.RawMessage `gorm:"column:body;type:jsonb;not null"`
	VisibleAt    time.Time       `gorm:"column:visible_at;not null;index"`
	ClaimedUntil *time.Time      `gorm:"column:claimed_until"`
	Attempts     int             `gorm:"column:attempts;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "queue_messages"
}

// PostgresQueue implements Queue on a queue_messages table. Delayed
// visibility comes from visible_at; at-least-once delivery comes from the
// claim lease: a claimed message that is never deleted becomes visible again
// once its lease expires.
type PostgresQueue struct {
	db                *gorm.DB
	logger            *logrus.Logger
	visibilityTimeout time.Duration
	builder           sq.StatementBuilderType
}

// NewPostgresQueue creates a queue backed by the given database. A zero
// visibilityTimeout defaults to five minutes.
func NewPostgresQueue(db *gorm.DB, logger *logrus.Logger, visibilityTimeout time.Duration) *PostgresQueue {
	if visibilityTimeout <= 0 {
		visibilityTimeout = 5 * time.Minute
	}

	return &PostgresQueue{
		db:                db,
		logger:            logger,
		visibilityTimeout: visibilityTimeout,
		builder:           sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Enqueue makes a message visible to consumers after the given delay.
func (q *PostgresQueue) Enqueue(ctx context.Context, msg ActionMessage, delay time.Duration) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal action message: %w", err)
	}

	row := Message{
		ID:        uuid.NewString(),
		Action:    msg.Action,
		Body:      body,
		VisibleAt: time.Now().UTC().Add(delay),
		CreatedAt: time.Now().UTC(),
	}

	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"message_id": row.ID,
		"action":     msg.Action,
		"comment_id": msg.CommentID,
		"delay":      delay,
	}).Debug("Enqueued action message")
	return nil
}

// ReceiveBatch claims up to max visible messages, restricted to the given
// action types when any are passed. Claimed messages are leased for the
// visibility timeout; they reappear if not deleted in time.
func (q *PostgresQueue) ReceiveBatch(ctx context.Context, max int, actions ...string) ([]Received, error) {
	if max <= 0 {
		max = 10
	}
	now := time.Now().UTC()

	// Built with ? placeholders so the outer update renumbers them.
	claimable := sq.StatementBuilder.
		Select("id").
		From("queue_messages").
		Where(sq.LtOrEq{"visible_at": now}).
		Where(sq.Or{
			sq.Eq{"claimed_until": nil},
			sq.LtOrEq{"claimed_until": now},
		}).
		OrderBy("visible_at ASC").
		Limit(uint64(max)).
		Suffix("FOR UPDATE SKIP LOCKED")

	if len(actions) > 0 {
		claimable = claimable.Where(sq.Eq{"action": actions})
	}

	claimableSQL, claimableArgs, err := claimable.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim query: %w", err)
	}

	claim := q.builder.
		Update("queue_messages").
		Set("claimed_until", now.Add(q.visibilityTimeout)).
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Expr("id IN ("+claimableSQL+")", claimableArgs...)).
		Suffix("RETURNING id, body")

	claimSQL, claimArgs, err := claim.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim update: %w", err)
	}

	var rows []Message
	err = q.db.WithContext(ctx).Raw(claimSQL, claimArgs...).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to claim messages: %w", err)
	}

	received := make([]Received, 0, len(rows))
	for _, row := range rows {
		var msg ActionMessage
		if err := json.Unmarshal(row.Body, &msg); err != nil {
			// A malformed body can never be processed; acknowledge it so it
			// does not poison the queue.
			q.logger.WithError(err).WithField("message_id", row.ID).
				Error("Dropping malformed queue message")
			if delErr := q.Delete(ctx, row.ID); delErr != nil {
				q.logger.WithError(delErr).WithField("message_id", row.ID).
					Error("Failed to delete malformed queue message")
			}
			continue
		}
		received = append(received, Received{Receipt: row.ID, Message: msg})
	}

	return received, nil
}

// Delete acknowledges a claimed message.
func (q *PostgresQueue) Delete(ctx context.Context, receipt string) error {
	err := q.db.WithContext(ctx).Where("id = ?", receipt).Delete(&Message{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", receipt, err)
	}
	return nil
}
