package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier satisfies Notifier for channels without a real delivery
// integration yet (email, SMS). It records the alert and succeeds, matching
// the behavior of channels the platform has provisioned but not wired.
type LogNotifier struct {
	channel string
	logger  *logrus.Logger
}

// NewLogNotifier creates a logging notifier for the named channel.
func NewLogNotifier(channel string, logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{channel: channel, logger: logger}
}

// Send logs the alert.
func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	n.logger.WithFields(logrus.Fields{
		"channel":    n.channel,
		"comment_id": alert.CommentID,
		"client_id":  alert.ClientID,
		"severity":   alert.Severity,
	}).Info("Notification dispatched")
	return nil
}
