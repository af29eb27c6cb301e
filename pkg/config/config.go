package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Completion providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Default model per provider, used when COMPLETION_MODEL is unset
var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderBedrock:   "anthropic.claude-3-5-sonnet-20241022-v2:0",
}

// Config holds application configuration loaded from environment variables
type Config struct {
	// Slack
	SlackSigningSecret string        `envconfig:"SLACK_SIGNING_SECRET"`
	SlackBotToken      string        `envconfig:"SLACK_BOT_TOKEN"`
	SlackTimeout       time.Duration `envconfig:"SLACK_TIMEOUT" default:"10s"`

	// Completion
	Provider          string        `envconfig:"COMPLETION_PROVIDER" default:"openai"`
	Model             string        `envconfig:"COMPLETION_MODEL"`
	MaxTokens         int           `envconfig:"COMPLETION_MAX_TOKENS" default:"1024"`
	CompletionTimeout time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"30s"`
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `envconfig:"OPENAI_BASE_URL"`
	AnthropicAPIKey   string        `envconfig:"ANTHROPIC_API_KEY"`

	// AWS
	AWSRegion string `envconfig:"AWS_REGION" default:"us-east-1"`

	// DynamoDB dispatch ledger, disabled when the table is empty
	DispatchTable   string `envconfig:"DISPATCH_TABLE"`
	DispatchTTLDays int    `envconfig:"DISPATCH_TTL_DAYS" default:"7"`

	// HTTP
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`

	// Posted in the thread when the completion call fails. Empty posts nothing.
	ApologyText string `envconfig:"APOLOGY_TEXT"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
}

// Load reads configuration from environment variables. Nothing is validated
// here; callers pick the Validate variant matching what they run.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	return &cfg, nil
}

// Validate checks everything required to serve Slack events
func (c *Config) Validate() error {
	if err := c.ValidateSlack(); err != nil {
		return err
	}
	return c.ValidateCompletion()
}

// ValidateSlack checks the Slack credentials are present
func (c *Config) ValidateSlack() error {
	if c.SlackSigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}
	if c.SlackBotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	return nil
}

// ValidateCompletion checks the selected completion provider is usable
func (c *Config) ValidateCompletion() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %s", c.Provider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %s", c.Provider)
		}
	case ProviderBedrock:
		// credentials come from the AWS default chain
	default:
		return fmt.Errorf("unknown COMPLETION_PROVIDER %q", c.Provider)
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be positive")
	}
	return nil
}

// ModelID returns the configured model, or the provider default
func (c *Config) ModelID() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// ListenAddr returns the address the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GetDispatchTTL returns the TTL duration for ledger records
func (c *Config) GetDispatchTTL() time.Duration {
	return time.Duration(c.DispatchTTLDays*24) * time.Hour
}

// Secrets reports which secrets are set, never their values
type Secrets struct {
	HasSigningSecret bool `json:"has_SIGNING_SECRET"`
	HasBotToken      bool `json:"has_BOT_TOKEN"`
	HasOpenAIKey     bool `json:"has_OPENAI_KEY"`
}

// Secrets returns the presence flags for the debug endpoint
func (c *Config) Secrets() Secrets {
	return Secrets{
		HasSigningSecret: c.SlackSigningSecret != "",
		HasBotToken:      c.SlackBotToken != "",
		HasOpenAIKey:     c.OpenAIAPIKey != "",
	}
}
