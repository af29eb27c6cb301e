package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/savaki/christine-bot/pkg/models"
)

const (
	// DefaultModel is the Claude model used when none is configured
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens caps the reply length when none is configured
	DefaultMaxTokens = 1024
)

// Client wraps the Anthropic Messages API
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClient creates a new Anthropic client with SDK retries disabled
func NewClient(apiKey, model string, maxTokens int, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &Client{
		client:    anthropic.NewClient(reqOpts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// ModelID returns the model every request is sent to
func (c *Client) ModelID() string {
	return c.model
}

// Reply sends the persona as the system prompt with a single user turn and
// returns the first text block, or models.FallbackReply when there is none.
func (c *Client) Reply(ctx context.Context, systemPrompt, userText string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	if msg != nil {
		for _, block := range msg.Content {
			if block.Type == "text" && block.Text != "" {
				return block.Text, nil
			}
		}
	}

	return models.FallbackReply, nil
}
