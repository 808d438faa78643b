// Package notify fans escalation alerts out to tenant notification
// channels. Severity selects candidate channels; tenant settings gate each
// one independently.
package notify

import (
	"context"

	"github.com/ormstack/moderation-go/pkg/decision"
	"github.com/ormstack/moderation-go/pkg/policy"
)

// Channel names recorded on the comment after an escalation.
const (
	ChannelSlack = "slack"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Alert is one escalation notification.
type Alert struct {
	CommentID   string
	ClientID    string
	CommentText string
	AuthorName  string
	AuthorID    string
	Platform    string
	Severity    decision.Severity
	Sentiment   string
	Toxicity    int
}

// Notifier delivers an alert over one channel.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// ChannelsFor returns the channels an alert of the given severity should
// reach, before tenant gating: critical pages everything, high adds email to
// chat, everything else is chat only.
func ChannelsFor(severity decision.Severity) []string {
	switch severity {
	case decision.SeverityCritical:
		return []string{ChannelSlack, ChannelEmail, ChannelSMS}
	case decision.SeverityHigh:
		return []string{ChannelSlack, ChannelEmail}
	default:
		return []string{ChannelSlack}
	}
}

// Enabled reports whether the tenant has the channel switched on.
func Enabled(channel string, settings policy.NotificationSettings) bool {
	switch channel {
	case ChannelSlack:
		return settings.Slack()
	case ChannelEmail:
		return settings.EmailEnabled
	case ChannelSMS:
		return settings.SMSEnabled
	default:
		return false
	}
}
