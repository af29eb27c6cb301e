package main

import (
	"fmt"

	"github.com/savaki/christine-bot/pkg/app"
	appconfig "github.com/savaki/christine-bot/pkg/config"
	"github.com/savaki/christine-bot/pkg/log"
	"github.com/savaki/christine-bot/pkg/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack events HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := appconfig.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger := log.NewLogger(cfg.LogLevel, cfg.LogFormat).With().
				Str("env", cfg.Environment).
				Logger()

			bot, err := app.Build(ctx, cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			if err := bot.CheckSlack(ctx, logger); err != nil {
				return err
			}

			srv := server.New(cfg, bot.Receiver, bot.Runner, logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "HTTP port to listen on (overrides PORT).")

	return cmd
}
