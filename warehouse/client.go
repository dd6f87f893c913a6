package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitorbr/olist-analytics/config"
	"github.com/vitorbr/olist-analytics/load"
)

// Executor runs one SQL statement against the warehouse and returns its
// result. A single blocking call per query; no retries, no transactions.
type Executor interface {
	Query(ctx context.Context, sqlText string, args ...any) (*Table, error)
}

// Client is the full warehouse surface the dashboard needs: query
// execution plus table introspection.
type Client interface {
	Executor
	TableExists(ctx context.Context, name string) (bool, error)
	ListTables(ctx context.Context) (*Table, error)
	Close() error
}

// NewClient builds the warehouse client selected by the config backend:
// "bigquery" for the cloud warehouse, "duckdb" for a local marts file.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	switch cfg.Warehouse.Backend {
	case "bigquery":
		return NewBigQueryClient(ctx, cfg, logger)
	case "duckdb":
		db, err := load.NewDuckDB(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("error opening local warehouse: %w", err)
		}
		return NewDuckDBClient(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown warehouse backend %q (expected bigquery or duckdb)", cfg.Warehouse.Backend)
	}
}
