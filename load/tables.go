package load

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TableMapping ties a source CSV file to the raw_ table it is loaded into.
type TableMapping struct {
	CSVFile     string
	Table       string
	Description string
}

// RawTables is the fixed set of CSV-to-table mappings for the Brazilian
// e-commerce dataset. Every load run recreates all of them.
var RawTables = []TableMapping{
	{"olist_customers_dataset.csv", "raw_customers", "Customer information"},
	{"olist_orders_dataset.csv", "raw_orders", "Order information"},
	{"olist_order_items_dataset.csv", "raw_order_items", "Order line items"},
	{"olist_order_payments_dataset.csv", "raw_order_payments", "Payment information"},
	{"olist_order_reviews_dataset.csv", "raw_order_reviews", "Customer reviews"},
	{"olist_products_dataset.csv", "raw_products", "Product catalog"},
	{"olist_sellers_dataset.csv", "raw_sellers", "Seller information"},
	{"olist_geolocation_dataset.csv", "raw_geolocation", "Geographic coordinates"},
	{"product_category_name_translation.csv", "raw_category_translation", "Category translations"},
}

// TableStat summarizes one loaded table.
type TableStat struct {
	Table   string
	Rows    int64
	Columns int
}

// LoadCSVFile (re)creates a table from a CSV file using DuckDB's automatic
// schema detection, then compares the loaded row count against the raw line
// count of the source file. A mismatch is logged as a warning, never an error.
func (db *DuckDB) LoadCSVFile(csvPath, table string) (int64, error) {
	sourceRows, err := CountCSVRows(csvPath)
	if err != nil {
		db.Logger.Warn(fmt.Sprintf("Could not count rows in %s: %v", csvPath, err))
		sourceRows = -1
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true);",
		table, strings.ReplaceAll(csvPath, "'", "''"),
	)
	db.Logger.Debug("Executing DuckDB query", "query", query)

	if err := db.RunQuery(query); err != nil {
		return 0, fmt.Errorf("failed to load %s into %s: %w", csvPath, table, err)
	}

	loaded, err := db.RowCount(table)
	if err != nil {
		return 0, err
	}

	if sourceRows >= 0 && loaded != sourceRows {
		db.Logger.Warn("Row count mismatch after load",
			"table", table, "csv_rows", sourceRows, "loaded_rows", loaded)
	}

	return loaded, nil
}

// LoadAll loads every known CSV from dataDir and returns per-table stats.
// A missing or broken file fails the run; the DB file is expected to have
// been freshly recreated by the caller.
func (db *DuckDB) LoadAll(dataDir string) ([]TableStat, error) {
	stats := make([]TableStat, 0, len(RawTables))
	for _, m := range RawTables {
		csvPath := filepath.Join(dataDir, m.CSVFile)
		db.Logger.Info(fmt.Sprintf("Loading %s -> %s (%s)", m.CSVFile, m.Table, m.Description))

		rows, err := db.LoadCSVFile(csvPath, m.Table)
		if err != nil {
			return stats, err
		}

		cols, err := db.ColumnCount(m.Table)
		if err != nil {
			return stats, err
		}

		db.Logger.Info("Loaded table", "table", m.Table, "rows", rows, "columns", cols)
		stats = append(stats, TableStat{Table: m.Table, Rows: rows, Columns: cols})
	}
	return stats, nil
}

func (db *DuckDB) RowCount(table string) (int64, error) {
	var count int64
	if err := db.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

func (db *DuckDB) ColumnCount(table string) (int, error) {
	var count int
	err := db.DB.QueryRow(
		"SELECT COUNT(*) FROM duckdb_columns() WHERE table_name = ?", table,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count columns in %s: %w", table, err)
	}
	return count, nil
}

// CountCSVRows returns the number of data rows in a CSV file, i.e. the line
// count minus the header.
func CountCSVRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	var lines int64
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}

// RemoveExisting deletes the local DuckDB file so a load run starts fresh.
// In-memory and MotherDuck paths are left alone.
func RemoveExisting(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "md:") {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing database %s: %w", path, err)
	}
	return nil
}
