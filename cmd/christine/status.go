package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	appconfig "github.com/savaki/christine-bot/pkg/config"
	"github.com/savaki/christine-bot/pkg/dynamodb"
	"github.com/savaki/christine-bot/pkg/models"
	"github.com/spf13/cobra"
)

// dispatchLookup reads ledger records by Slack event_id
type dispatchLookup interface {
	GetByEventID(ctx context.Context, eventID string) (*models.DispatchRecord, error)
}

// newStatusCmd prints the ledger record for one Slack event
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <event-id>",
		Short: "Show how a Slack event was handled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DispatchTable == "" {
				return errors.New("DISPATCH_TABLE is required")
			}

			ddb, err := dynamodb.NewClient(cmd.Context(), cfg.AWSRegion)
			if err != nil {
				return fmt.Errorf("create dynamodb client: %w", err)
			}
			repo := dynamodb.NewDispatchRepository(ddb, cfg.DispatchTable, cfg.GetDispatchTTL())

			return printStatus(cmd.Context(), cmd.OutOrStdout(), repo, args[0])
		},
	}
}

func printStatus(ctx context.Context, w io.Writer, lookup dispatchLookup, eventID string) error {
	rec, err := lookup.GetByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
