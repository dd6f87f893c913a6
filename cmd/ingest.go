package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitorbr/olist-analytics/load"
	"github.com/vitorbr/olist-analytics/pipeline"
)

func newIngestCmd() *cobra.Command {
	var withLoad bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Downloads the Olist datasets from Kaggle into the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			if withLoad {
				if err := load.RemoveExisting(cfg.DuckDB.Path); err != nil {
					return err
				}
			}

			p, err := pipeline.NewPipeline(cfg, log)
			if err != nil {
				return fmt.Errorf("error creating pipeline: %w", err)
			}
			defer p.Close()

			nFiles, err := p.IngestDatasets()
			if err != nil {
				return fmt.Errorf("error ingesting datasets: %w", err)
			}
			log.Info(fmt.Sprintf("Ingest completed without errors. Extracted %d files", nFiles))

			if !withLoad {
				return nil
			}

			stats, err := p.LoadRawTables()
			if err != nil {
				return fmt.Errorf("error loading raw tables: %w", err)
			}
			log.Info(fmt.Sprintf("Loaded %d raw tables", len(stats)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withLoad, "load", false, "also load the downloaded CSV files into DuckDB")
	return cmd
}
