package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Client wraps the Slack SDK client for use throughout the application
type Client struct {
	client *slack.Client
}

// NewClient creates a new Slack client with bot token
func NewClient(botToken string, opts ...slack.Option) *Client {
	return &Client{
		client: slack.New(botToken, opts...),
	}
}

// PostReply posts text into the thread anchored at threadTS. An empty
// threadTS posts a top-level message.
func (c *Client) PostReply(ctx context.Context, channelID, threadTS, text string) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	if _, err := c.PostMessage(ctx, channelID, opts...); err != nil {
		return err
	}
	return nil
}

// PostMessage posts a message to a Slack channel
func (c *Client) PostMessage(ctx context.Context, channelID string, opts ...slack.MsgOption) (string, error) {
	_, timestamp, err := c.client.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("post message: %w", err)
	}

	return timestamp, nil
}

// AuthTest verifies the bot token is valid
func (c *Client) AuthTest(ctx context.Context) (*slack.AuthTestResponse, error) {
	resp, err := c.client.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth test: %w", err)
	}

	return resp, nil
}
