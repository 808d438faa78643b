// Package queue defines the work-queue boundary for the moderation pipeline
// and a Postgres-backed implementation with delayed visibility. Delivery is
// at-least-once with no ordering guarantee; consumers must be idempotent.
package queue

import (
	"context"
	"time"

	"github.com/ormstack/moderation-go/pkg/classification"
)

// ActionMessage is the unit of work placed on the queue. It is ephemeral:
// nothing outlives queue semantics.
type ActionMessage struct {
	Action         string                        `json:"action"`
	CommentID      string                        `json:"comment_id"`
	ClientID       string                        `json:"client_id"`
	Classification classification.Classification `json:"classification"`
	QueuedAt       time.Time                     `json:"queued_at"`

	// NotificationType and payload fields are set for send_notification
	// messages only.
	NotificationType string `json:"type,omitempty"`
	CommentText      string `json:"comment_text,omitempty"`
	HideReason       string `json:"hide_reason,omitempty"`
}

// Received wraps a delivered message with its redelivery receipt.
type Received struct {
	Receipt string
	Message ActionMessage
}

// Queue is the work-queue collaborator. Enqueue makes a message visible
// after the given delay; ReceiveBatch claims up to max currently visible
// messages, optionally restricted to the given action types; Delete
// acknowledges a claimed message so it is not redelivered.
type Queue interface {
	Enqueue(ctx context.Context, msg ActionMessage, delay time.Duration) error
	ReceiveBatch(ctx context.Context, max int, actions ...string) ([]Received, error)
	Delete(ctx context.Context, receipt string) error
}
