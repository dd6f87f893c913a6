package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/vitorbr/olist-analytics/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryClient executes warehouse queries against a BigQuery dataset,
// authenticated once with a service account.
type BigQueryClient struct {
	Logger  *slog.Logger
	bq      *bigquery.Client
	dataset string
	timeout time.Duration
}

// NewBigQueryClient authenticates using the service-account JSON file from
// the warehouse config. Credential problems are returned immediately with a
// descriptive message; nothing is retried.
func NewBigQueryClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*BigQueryClient, error) {
	credsFile := cfg.Warehouse.CredentialsFile
	if credsFile == "" {
		credsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credsFile == "" {
		return nil, errors.New("no warehouse credentials: set warehouse.credentials_file or GOOGLE_APPLICATION_CREDENTIALS")
	}

	data, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file %s: %w", credsFile, err)
	}

	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account file %s: %w", credsFile, err)
	}
	if sa.ProjectID == "" {
		return nil, fmt.Errorf("service account file %s is missing project_id", credsFile)
	}

	client, err := bigquery.NewClient(ctx, sa.ProjectID, option.WithCredentialsJSON(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	if cfg.Warehouse.Location != "" {
		client.Location = cfg.Warehouse.Location
	}

	logger.Info("BigQuery client initialized", "project", sa.ProjectID, "dataset", cfg.Warehouse.DatasetID)

	return &BigQueryClient{
		Logger:  logger,
		bq:      client,
		dataset: cfg.Warehouse.DatasetID,
		timeout: cfg.Warehouse.MaxQueryTimeout,
	}, nil
}

// Query runs one SQL statement with positional parameters and materializes
// the full result.
func (c *BigQueryClient) Query(ctx context.Context, sqlText string, args ...any) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.Logger.Debug("Executing BigQuery query", "query", truncate(sqlText, 120))

	q := c.bq.Query(sqlText)
	if len(args) > 0 {
		params := make([]bigquery.QueryParameter, len(args))
		for i, arg := range args {
			params[i] = bigquery.QueryParameter{Value: arg}
		}
		q.Parameters = params
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	table := &Table{}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read query results: %w", err)
		}

		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		table.Rows = append(table.Rows, values)
	}

	for _, field := range it.Schema {
		table.Columns = append(table.Columns, field.Name)
	}

	c.Logger.Info("Query executed successfully", "rows", table.NumRows())
	return table, nil
}

// TableExists checks for a table in the configured dataset.
func (c *BigQueryClient) TableExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.bq.Dataset(c.dataset).Table(name).Metadata(ctx)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return true, nil
}

// ListTables returns name, row count, and size for every table in the
// dataset.
func (c *BigQueryClient) ListTables(ctx context.Context) (*Table, error) {
	query := fmt.Sprintf(
		"SELECT table_id, row_count, size_bytes FROM %s.__TABLES__ ORDER BY table_id", c.dataset)
	return c.Query(ctx, query)
}

func (c *BigQueryClient) Close() error {
	return c.bq.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
