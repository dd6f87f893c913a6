package query

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitorbr/olist-analytics/warehouse"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClockedService(exec *stubExecutor, ttl time.Duration) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewServiceWithTTL(exec, "olist_marts", ttl, logger, clock), clock
}

func TestRepeatedCallHitsCache(t *testing.T) {
	exec := &stubExecutor{}
	svc, _ := newClockedService(exec, 600*time.Second)

	f := Filters{Year: "2017"}
	_, err := svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)
	_, err = svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 1, exec.calls)
}

func TestDifferentFiltersMissCache(t *testing.T) {
	exec := &stubExecutor{}
	svc, _ := newClockedService(exec, 600*time.Second)

	_, err := svc.MonthlySalesTrends(context.Background(), Filters{Year: "2017"})
	require.NoError(t, err)
	_, err = svc.MonthlySalesTrends(context.Background(), Filters{Year: "2018"})
	require.NoError(t, err)
	_, err = svc.MonthlySalesTrends(context.Background(), Filters{Year: "2017", Region: "South"})
	require.NoError(t, err)

	assert.Equal(t, 3, exec.calls)
}

func TestSameFiltersDifferentFunctionsMissCache(t *testing.T) {
	exec := &stubExecutor{}
	svc, _ := newClockedService(exec, 600*time.Second)

	f := Filters{Year: "2017"}
	_, err := svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)
	_, err = svc.SalesByState(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 2, exec.calls)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	exec := &stubExecutor{}
	svc, clock := newClockedService(exec, 600*time.Second)

	f := Filters{}
	_, err := svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)

	clock.Advance(599 * time.Second)
	_, err = svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, exec.calls)

	clock.Advance(2 * time.Second)
	_, err = svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2, exec.calls)
}

func TestClearCacheForcesRefetch(t *testing.T) {
	exec := &stubExecutor{}
	svc, _ := newClockedService(exec, 600*time.Second)

	f := Filters{Region: "Northeast"}
	_, err := svc.TopCategories(context.Background(), f, 5)
	require.NoError(t, err)

	svc.ClearCache()

	_, err = svc.TopCategories(context.Background(), f, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, exec.calls)
}

func TestErrorsAreNotCached(t *testing.T) {
	exec := &stubExecutor{err: errors.New("connection reset")}
	svc, _ := newClockedService(exec, 600*time.Second)

	f := Filters{}
	_, err := svc.MonthlySalesTrends(context.Background(), f)
	require.Error(t, err)
	_, err = svc.MonthlySalesTrends(context.Background(), f)
	require.Error(t, err)

	assert.Equal(t, 2, exec.calls)

	exec.err = nil
	_, err = svc.MonthlySalesTrends(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 3, exec.calls)
}

func TestDashboardSummarySumsTrendRows(t *testing.T) {
	exec := &stubExecutor{table: &warehouse.Table{
		Columns: []string{"month_year", "total_orders", "total_items", "total_sales", "avg_order_value"},
		Rows: [][]any{
			{"2017-01", int64(100), int64(120), 1000.50, 10.0},
			{"2017-02", int64(200), int64(250), 2499.50, 12.5},
			{"2017-03", int64(50), int64(60), 500.00, 10.0},
		},
	}}
	svc, _ := newClockedService(exec, 600*time.Second)

	summary, err := svc.DashboardSummary(context.Background(), Filters{Year: "2017"})
	require.NoError(t, err)

	assert.Equal(t, int64(350), summary.TotalOrders)
	assert.Equal(t, int64(430), summary.TotalItems)
	assert.InDelta(t, 4000.00, summary.TotalSales, 0.001)
	// total sales over total orders, not the mean of the monthly averages
	assert.InDelta(t, 11.43, summary.AvgOrderValue, 0.001)
}

func TestDashboardSummaryEmptyTrends(t *testing.T) {
	exec := &stubExecutor{table: &warehouse.Table{
		Columns: []string{"month_year", "total_orders", "total_items", "total_sales"},
	}}
	svc, _ := newClockedService(exec, 600*time.Second)

	summary, err := svc.DashboardSummary(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestValidateMarts(t *testing.T) {
	exec := &stubExecutor{table: &warehouse.Table{
		Columns: []string{"row_count"},
		Rows:    [][]any{{int64(42)}},
	}}
	svc, _ := newClockedService(exec, 600*time.Second)

	results := svc.ValidateMarts(context.Background())
	require.Len(t, results, len(RequiredTables))
	for _, table := range RequiredTables {
		assert.True(t, results[table], table)
	}

	failing := &stubExecutor{err: errors.New("dataset not found")}
	svc, _ = newClockedService(failing, 600*time.Second)
	results = svc.ValidateMarts(context.Background())
	for _, table := range RequiredTables {
		assert.False(t, results[table], table)
	}
}
