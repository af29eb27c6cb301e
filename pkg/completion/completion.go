// Package completion selects the chat-completion provider the bot talks to.
package completion

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/savaki/christine-bot/pkg/anthropic"
	"github.com/savaki/christine-bot/pkg/bedrock"
	appconfig "github.com/savaki/christine-bot/pkg/config"
	"github.com/savaki/christine-bot/pkg/openai"
)

// Client produces a single-turn reply for a system prompt and user text.
// Implementations return models.FallbackReply instead of an empty string.
type Client interface {
	Reply(ctx context.Context, systemPrompt, userText string) (string, error)
	ModelID() string
}

var (
	_ Client = (*openai.Client)(nil)
	_ Client = (*anthropic.Client)(nil)
	_ Client = (*bedrock.Client)(nil)
)

// New builds the client for cfg.Provider. The returned handle is safe for
// concurrent use and is meant to be created once per process.
func New(ctx context.Context, cfg *appconfig.Config) (Client, error) {
	switch cfg.Provider {
	case appconfig.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.ModelID(), cfg.OpenAIBaseURL), nil

	case appconfig.ProviderAnthropic:
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.ModelID(), cfg.MaxTokens), nil

	case appconfig.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return bedrock.NewClient(awsCfg, cfg.ModelID(), cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
