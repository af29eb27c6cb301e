package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/savaki/christine-bot/pkg/models"
)

const (
	// Default Bedrock model ID for Claude 3.5 Sonnet
	DefaultModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"

	// DefaultMaxTokens caps the reply length when none is configured
	DefaultMaxTokens = 1024
)

// InvokeModelAPI is the subset of the Bedrock Runtime client used here
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client is a client for AWS Bedrock Runtime (Claude models)
type Client struct {
	client    InvokeModelAPI
	modelID   string
	maxTokens int
}

// NewClient creates a new Bedrock client. An empty modelID selects DefaultModelID.
func NewClient(cfg aws.Config, modelID string, maxTokens int) *Client {
	return NewClientWithAPI(bedrockruntime.NewFromConfig(cfg), modelID, maxTokens)
}

// NewClientWithAPI creates a Bedrock client around an existing runtime API
func NewClientWithAPI(api InvokeModelAPI, modelID string, maxTokens int) *Client {
	if modelID == "" {
		modelID = DefaultModelID
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{
		client:    api,
		modelID:   modelID,
		maxTokens: maxTokens,
	}
}

// ModelID returns the model every request is sent to
func (c *Client) ModelID() string {
	return c.modelID
}

// BedrockRequest represents a request to Bedrock (Claude Messages API format)
type BedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Messages         []models.Message `json:"messages"`
	System           string           `json:"system,omitempty"`
}

// BedrockResponse represents a response from Bedrock
type BedrockResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Reply sends a single-turn request to Claude via Bedrock and returns the
// first text block, or models.FallbackReply when there is none.
func (c *Client) Reply(ctx context.Context, systemPrompt, userText string) (string, error) {
	req := BedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        c.maxTokens,
		Messages: []models.Message{
			{Role: models.RoleUser, Content: userText},
		},
		System: systemPrompt,
	}

	// Marshal request body
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// Invoke Bedrock model
	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke bedrock model: %w", err)
	}

	var response BedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return models.FallbackReply, nil
	}

	for _, block := range response.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return models.FallbackReply, nil
}
