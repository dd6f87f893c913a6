package load

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitorbr/olist-analytics/config"
)

func setupTestDB(t *testing.T) *DuckDB {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{
		DuckDB: config.DuckDBConfig{
			Path: ":memory:",
		},
	}

	db, err := NewDuckDB(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create DuckDB instance: %v", err)
	}

	return db
}

func TestNewDuckDB(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	assert.NotNil(t, db.DB)
	assert.Equal(t, ":memory:", db.DBType)
}

func TestNewDuckDB_MotherDuckWithoutToken(t *testing.T) {
	os.Unsetenv("MOTHERDUCK_TOKEN")
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{
		DuckDB: config.DuckDBConfig{
			Path: "md:olist",
		},
	}

	_, err := NewDuckDB(cfg, logger)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MOTHERDUCK_TOKEN")
}

func TestRunQueryAndQueryRows(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.RunQuery("CREATE TABLE test (id INTEGER, name STRING);")
	assert.NoError(t, err)
	err = db.RunQuery("INSERT INTO test VALUES (1, 'Alice'), (2, 'Bob');")
	assert.NoError(t, err)

	columns, rows, err := db.QueryRows(context.Background(), "SELECT * FROM test WHERE id >= ? ORDER BY id;", 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, columns)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0][1])
	assert.Equal(t, "Bob", rows[1][1])
}

func TestQueryRows_Invalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, _, err := db.QueryRows(context.Background(), "SELECT * FROM no_such_table;")
	assert.Error(t, err)
}

func TestRunQuery_Invalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.RunQuery("SELECT * FROM no_such_table;")
	assert.Error(t, err)
}
