package comment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/decision"
)

// ErrNotFound is returned when a comment id does not exist.
var ErrNotFound = errors.New("comment not found")

// Store owns all comment-record mutations. Lifecycle transitions are the
// only write path; nothing else in the system updates a comment row. Writes
// are last-write-wins, which is safe because executors are idempotent, not
// because of locking.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewStore creates a comment store backed by the given database.
func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Get retrieves a comment by id.
func (s *Store) Get(ctx context.Context, commentID string) (*Comment, error) {
	var c Comment
	err := s.db.WithContext(ctx).Where("comment_id = ?", commentID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment %s: %w", commentID, err)
	}
	return &c, nil
}

// Create persists a newly ingested comment in state pending.
func (s *Store) Create(ctx context.Context, c *Comment) error {
	now := time.Now().UTC()
	c.Status = StatusPending
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create comment %s: %w", c.CommentID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id": c.CommentID,
		"client_id":  c.ClientID,
		"platform":   c.Platform,
	}).Debug("Created comment")
	return nil
}

func (s *Store) update(ctx context.Context, commentID string, current Status, next Status, updates map[string]interface{}) error {
	if !CanTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s for comment %s", ErrInvalidTransition, current, next, commentID)
	}

	updates["status"] = next
	updates["updated_at"] = time.Now().UTC()

	err := s.db.WithContext(ctx).Model(&Comment{}).
		Where("comment_id = ?", commentID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update comment %s: %w", commentID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id": commentID,
		"from":       current,
		"to":         next,
	}).Debug("Comment transitioned")
	return nil
}

// MarkClassified records the refined classification and the locally decided
// action, moving the comment to classified.
func (s *Store) MarkClassified(ctx context.Context, c *Comment, refined classification.Classification, action decision.Action) error {
	raw, err := json.Marshal(refined)
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}

	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusClassified, map[string]interface{}{
		"classification":           json.RawMessage(raw),
		"suggested_action":         string(action),
		"classification_timestamp": now,
		"classification_error":     "",
	})
}

// MarkClassificationFailed records a classification failure. The comment
// remains retryable through queue redelivery.
func (s *Store) MarkClassificationFailed(ctx context.Context, c *Comment, cause error) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusClassificationFailed, map[string]interface{}{
		"classification_error":     cause.Error(),
		"classification_timestamp": now,
	})
}

// MarkReplied records a successfully sent reply.
func (s *Store) MarkReplied(ctx context.Context, c *Comment, replyMessage string) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusReplied, map[string]interface{}{
		"reply_sent":       true,
		"reply_message":    replyMessage,
		"reply_failed":     false,
		"reply_error":      "",
		"action_timestamp": now,
	})
}

// MarkReplyFailed records a reply failure, whether the platform returned a
// boolean failure or the transport errored.
func (s *Store) MarkReplyFailed(ctx context.Context, c *Comment, cause string) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusReplyFailed, map[string]interface{}{
		"reply_failed":     true,
		"reply_error":      cause,
		"action_timestamp": now,
	})
}

// MarkHidden records a successful platform hide.
func (s *Store) MarkHidden(ctx context.Context, c *Comment, reason string) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusHidden, map[string]interface{}{
		"hidden":           true,
		"hide_reason":      reason,
		"hide_reviewed":    true,
		"hide_decision":    "hidden",
		"hide_failed":      false,
		"hide_error":       "",
		"action_timestamp": now,
	})
}

// MarkHideSkipped records that the hide verifier reviewed the comment and
// declined to hide it. This is a normal outcome, not a failure.
func (s *Store) MarkHideSkipped(ctx context.Context, c *Comment) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusIgnored, map[string]interface{}{
		"hide_reviewed":    true,
		"hide_decision":    "no_action",
		"action_timestamp": now,
	})
}

// MarkHideFailed records a hide failure.
func (s *Store) MarkHideFailed(ctx context.Context, c *Comment, cause string) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusHideFailed, map[string]interface{}{
		"hide_failed":      true,
		"hide_error":       cause,
		"action_timestamp": now,
	})
}

// MarkEscalated records a completed escalation with the severity tier and
// the channels actually notified.
func (s *Store) MarkEscalated(ctx context.Context, c *Comment, level decision.Severity, channels []string) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusEscalated, map[string]interface{}{
		"escalated":          true,
		"escalation_level":   string(level),
		"notifications_sent": pq.StringArray(channels),
		"escalation_failed":  false,
		"escalation_error":   "",
		"action_timestamp":   now,
	})
}

// MarkEscalationFailed records an escalation failure.
func (s *Store) MarkEscalationFailed(ctx context.Context, c *Comment, cause string) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusEscalationFailed, map[string]interface{}{
		"escalation_failed": true,
		"escalation_error":  cause,
		"action_timestamp":  now,
	})
}

// MarkIgnored closes out a comment the decision engine chose not to act on.
func (s *Store) MarkIgnored(ctx context.Context, c *Comment) error {
	now := time.Now().UTC()
	return s.update(ctx, c.CommentID, c.Status, StatusIgnored, map[string]interface{}{
		"action_timestamp": now,
	})
}

// CountAuthorViolations reports how many of the author's comments for the
// tenant ended up hidden. Used by the repeat-offender hide criterion.
func (s *Store) CountAuthorViolations(ctx context.Context, clientID, authorID string) (int, error) {
	if authorID == "" {
		return 0, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&Comment{}).
		Where("client_id = ? AND author_id = ? AND hidden = ?", clientID, authorID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count author violations: %w", err)
	}
	return int(count), nil
}

// ViolationCount implements decision.AuthorHistory.
func (s *Store) ViolationCount(ctx context.Context, clientID, authorID string) (int, error) {
	return s.CountAuthorViolations(ctx, clientID, authorID)
}
