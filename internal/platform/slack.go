package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// SlackNotifier mirrors sent notifications into a Slack channel via an
// incoming webhook. It wraps another Writer: task writes pass through
// untouched, notification sends are delivered to the backend first and then
// posted to Slack best-effort.
type SlackNotifier struct {
	Writer
	webhookURL string
}

// NewSlackNotifier wraps a Writer with a Slack webhook mirror.
func NewSlackNotifier(inner Writer, webhookURL string) *SlackNotifier {
	return &SlackNotifier{Writer: inner, webhookURL: webhookURL}
}

var notificationEmoji = map[string]string{
	"info":    ":information_source:",
	"warning": ":warning:",
	"error":   ":x:",
	"success": ":white_check_mark:",
}

// SendNotification delivers via the wrapped Writer and mirrors to Slack.
func (s *SlackNotifier) SendNotification(ctx context.Context, workspaceID, userID string, n Notification) (string, error) {
	id, err := s.Writer.SendNotification(ctx, workspaceID, userID, n)
	if err != nil {
		return "", err
	}

	if s.webhookURL != "" {
		emoji := notificationEmoji[n.Type]
		if emoji == "" {
			emoji = notificationEmoji["info"]
		}
		msg := &slack.WebhookMessage{
			Text: fmt.Sprintf("%s *%s*\n%s", emoji, n.Title, n.Message),
		}
		if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
			slog.Warn("Slack notification mirror failed", "error", err)
		}
	}

	return id, nil
}
