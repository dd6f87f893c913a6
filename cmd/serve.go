package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitorbr/olist-analytics/api"
	"github.com/vitorbr/olist-analytics/query"
	"github.com/vitorbr/olist-analytics/utils"
	"github.com/vitorbr/olist-analytics/warehouse"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the dashboard API",
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
			svc := api.NewAPIService(client, queries, cfg, log)

			errCh := make(chan error, 1)
			go func() {
				if err := svc.Serve(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
			log.Info("Dashboard API listening", "addr", cfg.Server.Addr, "backend", cfg.Warehouse.Backend)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case sig := <-quit:
				log.Info(fmt.Sprintf("Received %s, shutting down", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return svc.Shutdown(shutdownCtx)
		},
	}
}
