package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/savaki/christine-bot/pkg/completion"
	appconfig "github.com/savaki/christine-bot/pkg/config"
	"github.com/savaki/christine-bot/pkg/persona"
	"github.com/spf13/cobra"
)

// newAskCmd sends one prompt through the configured provider, to check
// credentials and the persona without Slack
func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text>",
		Short: "Ask Christine one question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateCompletion(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			client, err := completion.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CompletionTimeout)
			defer cancel()

			reply, err := client.Reply(ctx, persona.Prompt(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}
