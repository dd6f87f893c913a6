package warehouse

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"
)

// Table is a flat query result: named columns over rows of scalar values.
// It is the single result shape every query function produces and every
// chart helper consumes.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Value returns the raw cell value, or nil when the row or column is absent.
func (t *Table) Value(row int, column string) any {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return nil
	}
	idx := t.ColumnIndex(column)
	if idx < 0 || idx >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][idx]
}

// Float converts a cell to float64, tolerating the numeric types the
// BigQuery and DuckDB drivers produce. Missing cells convert to 0.
func (t *Table) Float(row int, column string) float64 {
	return toFloat(t.Value(row, column))
}

// Int converts a cell to int64. Integer driver values pass through
// unchanged so counts above 2^53 keep their exact value; other types fall
// back to the float conversion. Missing cells convert to 0.
func (t *Table) Int(row int, column string) int64 {
	switch x := t.Value(row, column).(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	default:
		return int64(toFloat(x))
	}
}

// String converts a cell to its string form. Missing cells convert to "".
func (t *Table) String(row int, column string) string {
	v := t.Value(row, column)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case *big.Rat:
		f, _ := x.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Records returns the rows as column-name keyed maps, the shape the API
// layer serves as JSON.
func (t *Table) Records() []map[string]any {
	if t == nil {
		return []map[string]any{}
	}
	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = normalizeValue(row[i])
			}
		}
		records = append(records, rec)
	}
	return records
}

// normalizeValue rewrites driver-specific values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case *big.Rat:
		f, _ := x.Float64()
		return f
	case time.Time:
		return x.Format("2006-01-02")
	case []byte:
		return string(x)
	default:
		return v
	}
}

// MarshalJSON encodes the table as an array of records.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Records())
}

// WriteCSV writes the table in CSV form, header first. Used by the
// dashboard download buttons.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(row) && row[i] != nil {
				record[i] = fmt.Sprintf("%v", normalizeValue(row[i]))
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}
