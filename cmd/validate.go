package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitorbr/olist-analytics/query"
	"github.com/vitorbr/olist-analytics/utils"
	"github.com/vitorbr/olist-analytics/warehouse"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Checks that every mart table the dashboard reads exists and has rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			ctx := context.Background()
			client, err := warehouse.NewClient(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("error creating warehouse client: %w", err)
			}
			defer client.Close()

			queries := query.NewService(client, cfg, log, utils.RealTimeProvider{})
			results := queries.ValidateMarts(ctx)

			invalid := 0
			for _, table := range query.RequiredTables {
				if results[table] {
					log.Info(fmt.Sprintf("%s: ok", table))
				} else {
					log.Error(fmt.Sprintf("%s: missing or empty", table))
					invalid++
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d mart tables are missing or empty", invalid, len(query.RequiredTables))
			}
			log.Info("All mart tables validated")
			return nil
		},
	}
}
