package services

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackNotifier posts event messages to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, post: slack.PostWebhookContext}
}

func (s *SlackNotifier) Post(ctx context.Context, text string) error {
	if s.webhookURL == "" || text == "" {
		return nil
	}
	if err := s.post(ctx, s.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
