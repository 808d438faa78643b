package comment

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/ormstack/moderation-go/pkg/classification"
)

// Platform identifies where a comment was posted.
type Platform string

const (
	PlatformFacebook    Platform = "facebook"
	PlatformInstagram   Platform = "instagram"
	PlatformFacebookAds Platform = "facebook_ads"
)

// Status is the comment's position in the moderation lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusClassified Status = "classified"
	StatusReplied    Status = "replied"
	StatusHidden     Status = "hidden"
	StatusEscalated  Status = "escalated"
	StatusIgnored    Status = "ignored"

	StatusClassificationFailed Status = "classification_failed"
	StatusReplyFailed          Status = "reply_failed"
	StatusHideFailed           Status = "hide_failed"
	StatusEscalationFailed     Status = "escalation_failed"
)

// Comment is the database model for one platform comment. Rows are created
// by ingestion in state pending and only ever mutated through the lifecycle
// transitions in Store; the core never deletes them.
type Comment struct {
	CommentID string   `gorm:"primaryKey;column:comment_id"`
	ClientID  string   `gorm:"column:client_id;not null;index"`
	Platform  Platform `gorm:"column:platform;type:comment_platform;not null"`
	Text      string   `gorm:"column:text;not null"`

	// Author Information
	AuthorID       string `gorm:"column:author_id"`
	AuthorName     string `gorm:"column:author_name"`
	AuthorUsername string `gorm:"column:author_username"`

	// Lifecycle
	Status          Status          `gorm:"column:status;type:comment_status;not null;default:pending"`
	Classification  json.RawMessage `gorm:"column:classification;type:jsonb"`
	SuggestedAction string          `gorm:"column:suggested_action"`

	// Timestamps
	CreatedAt               time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
	ClassificationTimestamp *time.Time `gorm:"column:classification_timestamp"`
	ActionTimestamp         *time.Time `gorm:"column:action_timestamp"`

	// Reply outcome
	ReplySent    bool   `gorm:"column:reply_sent;default:false"`
	ReplyMessage string `gorm:"column:reply_message"`
	ReplyFailed  bool   `gorm:"column:reply_failed;default:false"`
	ReplyError   string `gorm:"column:reply_error"`

	// Hide outcome
	Hidden       bool   `gorm:"column:hidden;default:false"`
	HideReason   string `gorm:"column:hide_reason"`
	HideFailed   bool   `gorm:"column:hide_failed;default:false"`
	HideError    string `gorm:"column:hide_error"`
	HideReviewed bool   `gorm:"column:hide_reviewed;default:false"`
	HideDecision string `gorm:"column:hide_decision"`

	// Escalation outcome
	Escalated         bool           `gorm:"column:escalated;default:false"`
	EscalationLevel   string         `gorm:"column:escalation_level"`
	NotificationsSent pq.StringArray `gorm:"column:notifications_sent;type:text[]"`
	EscalationFailed  bool           `gorm:"column:escalation_failed;default:false"`
	EscalationError   string         `gorm:"column:escalation_error"`

	// Classification failure
	ClassificationError string `gorm:"column:classification_error"`
}

// TableName specifies the table name for the Comment model.
func (Comment) TableName() string {
	return "comments"
}

// ParseClassification decodes the stored classification, if any.
func (c *Comment) ParseClassification() (classification.Classification, bool) {
	if len(c.Classification) == 0 {
		return classification.Classification{}, false
	}

	var parsed classification.Classification
	if err := json.Unmarshal(c.Classification, &parsed); err != nil {
		return classification.Classification{}, false
	}
	return parsed, true
}
