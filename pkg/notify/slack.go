package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ormstack/moderation-go/pkg/decision"
)

// severityColors maps severity tiers to Slack attachment colors.
var severityColors = map[decision.Severity]string{
	decision.SeverityCritical: "#FF0000",
	decision.SeverityHigh:     "#FF6600",
	decision.SeverityMedium:   "#FFCC00",
	decision.SeverityLow:      "#00CC00",
}

// SlackNotifier posts escalation alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewSlackNotifier creates a Slack notifier. An empty webhook URL is allowed
// and makes Send report a configuration error at call time.
func NewSlackNotifier(webhookURL string, logger *logrus.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Send posts the alert to the webhook.
func (n *SlackNotifier) Send(ctx context.Context, alert Alert) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	payload := buildEscalationMessage(alert)
	if err := n.post(ctx, payload); err != nil {
		return err
	}

	n.logger.WithFields(logrus.Fields{
		"comment_id": alert.CommentID,
		"client_id":  alert.ClientID,
		"severity":   alert.Severity,
	}).Info("Sent Slack escalation notification")
	return nil
}

// SendHideNotice posts a notice that a comment was auto-hidden.
func (n *SlackNotifier) SendHideNotice(ctx context.Context, clientID, commentText, hideReason string) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	payload := map[string]interface{}{
		"text": "🙈 Comment Hidden",
		"attachments": []map[string]interface{}{
			{
				"color": severityColors[decision.SeverityHigh],
				"fields": []map[string]interface{}{
					{"title": "Client", "value": clientID, "short": true},
					{"title": "Reason", "value": hideReason, "short": true},
					{"title": "Comment", "value": truncate(commentText, 200), "short": false},
				},
			},
		},
	}

	if err := n.post(ctx, payload); err != nil {
		return err
	}

	n.logger.WithField("client_id", clientID).Info("Sent Slack hide notification")
	return nil
}

func (n *SlackNotifier) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildEscalationMessage(alert Alert) map[string]interface{} {
	color, ok := severityColors[alert.Severity]
	if !ok {
		color = "#CCCCCC"
	}

	blocks := []map[string]interface{}{
		{
			"type": "header",
			"text": map[string]interface{}{
				"type": "plain_text",
				"text": fmt.Sprintf("🚨 %s Priority Comment Alert", strings.ToUpper(string(alert.Severity))),
			},
		},
		{
			"type": "section",
			"fields": []map[string]interface{}{
				{"type": "mrkdwn", "text": fmt.Sprintf("*Client:* %s", alert.ClientID)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Platform:* %s", alert.Platform)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Sentiment:* %s", alert.Sentiment)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Toxicity:* %d/10", alert.Toxicity)},
			},
		},
		{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Comment:*\n> %s", truncate(alert.CommentText, 500)),
			},
		},
	}

	if alert.AuthorName != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Author:* %s (ID: %s)", alert.AuthorName, alert.AuthorID),
			},
		})
	}

	return map[string]interface{}{
		"attachments": []map[string]interface{}{
			{"color": color, "blocks": blocks},
		},
	}
}

// truncate trims to max runes, never splitting a multi-byte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
