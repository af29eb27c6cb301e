// Package app wires configuration into a ready Receiver and Runner. Both
// entrypoints build through it so the HTTP server and the Lambda behave
// the same.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/savaki/christine-bot/pkg/completion"
	appconfig "github.com/savaki/christine-bot/pkg/config"
	"github.com/savaki/christine-bot/pkg/dynamodb"
	"github.com/savaki/christine-bot/pkg/handler"
	"github.com/savaki/christine-bot/pkg/persona"
	slackclient "github.com/savaki/christine-bot/pkg/slack"
)

// Options carries what differs between entrypoints
type Options struct {
	// WaitForDispatch holds each ack until its dispatch finishes
	WaitForDispatch bool
}

// App holds the long-lived handles for one process
type App struct {
	Completion completion.Client
	Slack      *slackclient.Client
	Runner     *handler.Runner
	Receiver   *handler.Receiver
	Ledger     *dynamodb.DispatchRepository
}

// Build creates every client once. cfg must already be validated.
func Build(ctx context.Context, cfg *appconfig.Config, logger zerolog.Logger, opts Options) (*App, error) {
	completer, err := completion.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	slackClient := slackclient.NewClient(cfg.SlackBotToken)

	return assemble(ctx, cfg, logger, opts, completer, slackClient)
}

func assemble(ctx context.Context, cfg *appconfig.Config, logger zerolog.Logger, opts Options, completer completion.Client, slackClient *slackclient.Client) (*App, error) {
	a := &App{
		Completion: completer,
		Slack:      slackClient,
	}

	sinks := []handler.Sink{handler.NewLogSink(logger)}
	var ledger handler.Ledger
	if cfg.DispatchTable != "" {
		ddb, err := dynamodb.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("create dynamodb client: %w", err)
		}
		a.Ledger = dynamodb.NewDispatchRepository(ddb, cfg.DispatchTable, cfg.GetDispatchTTL())
		ledger = a.Ledger
		sinks = append(sinks, a.Ledger)
		logger.Info().Str("table", cfg.DispatchTable).Msg("dispatch ledger enabled")
	}

	dispatcher := handler.NewDispatcher(completer, slackClient, handler.DispatcherConfig{
		Persona:           persona.Prompt(),
		CompletionTimeout: cfg.CompletionTimeout,
		PostTimeout:       cfg.SlackTimeout,
		ApologyText:       cfg.ApologyText,
	})
	a.Runner = handler.NewRunner(dispatcher, ledger, logger, sinks...)
	a.Receiver = handler.NewReceiver(handler.ReceiverConfig{
		SigningSecret:   cfg.SlackSigningSecret,
		WaitForDispatch: opts.WaitForDispatch,
		DropRetries:     a.Ledger == nil,
	}, a.Runner, logger)

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", completer.ModelID()).
		Bool("wait_for_dispatch", opts.WaitForDispatch).
		Msg("bot assembled")

	return a, nil
}

// CheckSlack verifies the bot token with auth.test
func (a *App) CheckSlack(ctx context.Context, logger zerolog.Logger) error {
	resp, err := a.Slack.AuthTest(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	logger.Info().Str("team", resp.Team).Str("bot_user_id", resp.UserID).Msg("slack token verified")
	return nil
}
