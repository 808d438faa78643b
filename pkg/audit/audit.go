// Package audit is the append-only audit sink. Recording is fire-and-forget:
// a failed write is logged and dropped, never surfaced to the decision
// pipeline.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Event types written by the moderation pipeline.
const (
	EventCommentClassified      = "comment_classified"
	EventReplySent              = "reply_sent"
	EventCommentHidden          = "comment_hidden"
	EventCommentEscalated       = "comment_escalated"
	EventClassificationBatch    = "classification_batch_completed"
	EventReplyBatch             = "reply_batch_completed"
	EventHideBatch              = "hide_batch_completed"
	EventEscalationBatch        = "escalation_batch_completed"
	EventClassificationBatchErr = "classification_batch_error"
)

// Log is one append-only audit record.
type Log struct {
	LogID     string          `gorm:"primaryKey;column:log_id"`
	Timestamp time.Time       `gorm:"column:timestamp;not null;index"`
	EventType string          `gorm:"column:event_type;not null;index"`
	Details   json.RawMessage `gorm:"column:details;type:jsonb"`
}

// TableName specifies the table name for the Log model.
func (Log) TableName() string {
	return "audit_logs"
}

// Sink records moderation events.
type Sink interface {
	Record(ctx context.Context, eventType string, details map[string]interface{})
}

// Store is the database-backed audit sink.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore creates an audit store backed by the given database.
func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Record appends one audit event. Failures are logged only.
func (s *Store) Record(ctx context.Context, eventType string, details map[string]interface{}) {
	raw, err := json.Marshal(details)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).
			Error("Failed to marshal audit details")
		return
	}

	entry := Log{
		LogID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Details:   raw,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).
			Error("Failed to save audit log")
		return
	}

	s.logger.WithField("event_type", eventType).Debug("Saved audit log")
}
