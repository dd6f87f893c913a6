package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitorbr/olist-analytics/load"
	"github.com/vitorbr/olist-analytics/pipeline"
)

func newLoadCmd() *cobra.Command {
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Loads the downloaded CSV files into the raw_ DuckDB tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			if !appendMode {
				if err := load.RemoveExisting(cfg.DuckDB.Path); err != nil {
					return err
				}
			}

			p, err := pipeline.NewLoadPipeline(cfg, log)
			if err != nil {
				return fmt.Errorf("error creating pipeline: %w", err)
			}
			defer p.Close()

			stats, err := p.LoadRawTables()
			if err != nil {
				return fmt.Errorf("error loading raw tables: %w", err)
			}

			for _, stat := range stats {
				log.Info(fmt.Sprintf("%s: %d rows, %d columns", stat.Table, stat.Rows, stat.Columns))
			}
			log.Info(fmt.Sprintf("Load completed without errors. %d tables loaded", len(stats)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendMode, "append", false, "keep the existing database file instead of recreating it")
	return cmd
}
