package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitorbr/olist-analytics/load"
)

// DuckDBClient serves warehouse queries from a local DuckDB database that
// holds the same marts schema as the cloud dataset. Used in dev mode and in
// tests; the query layer emits dialect-portable SQL so the statements are
// identical on both backends.
type DuckDBClient struct {
	Logger *slog.Logger
	db     *load.DuckDB
}

func NewDuckDBClient(db *load.DuckDB, logger *slog.Logger) *DuckDBClient {
	return &DuckDBClient{Logger: logger, db: db}
}

func (c *DuckDBClient) Query(ctx context.Context, sqlText string, args ...any) (*Table, error) {
	c.Logger.Debug("Executing DuckDB query", "query", truncate(sqlText, 120))

	columns, rows, err := c.db.QueryRows(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

func (c *DuckDBClient) TableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := c.db.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM duckdb_tables() WHERE table_name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return count > 0, nil
}

func (c *DuckDBClient) ListTables(ctx context.Context) (*Table, error) {
	return c.Query(ctx,
		"SELECT table_name AS table_id, estimated_size AS row_count, 0 AS size_bytes "+
			"FROM duckdb_tables() ORDER BY table_name")
}

func (c *DuckDBClient) Close() error {
	c.db.Close()
	return nil
}
