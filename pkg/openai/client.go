package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/savaki/christine-bot/pkg/models"
)

// DefaultModel is the chat model used when none is configured
const DefaultModel = "gpt-4o-mini"

// Client wraps the OpenAI Chat Completions API
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new OpenAI client. SDK retries are disabled so each
// Reply is exactly one upstream request.
func NewClient(apiKey, model, baseURL string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

// ModelID returns the model every request is sent to
func (c *Client) ModelID() string {
	return c.model
}

// Reply sends one system and one user message and returns the first choice's
// content, or models.FallbackReply when the response has none.
func (c *Client) Reply(ctx context.Context, systemPrompt, userText string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return models.FallbackReply, nil
	}

	return resp.Choices[0].Message.Content, nil
}
