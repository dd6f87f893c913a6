package query

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitorbr/olist-analytics/config"
	"github.com/vitorbr/olist-analytics/load"
	"github.com/vitorbr/olist-analytics/warehouse"
)

// martsDDL mirrors the warehouse read contract on an in-memory DuckDB.
var martsDDL = []string{
	"CREATE SCHEMA olist_marts",
	`CREATE TABLE olist_marts.dim_date (
		date_key INTEGER, year INTEGER, month INTEGER, month_name VARCHAR)`,
	`CREATE TABLE olist_marts.dim_customers (
		customer_key VARCHAR, customer_region VARCHAR, customer_state VARCHAR, customer_city VARCHAR)`,
	`CREATE TABLE olist_marts.dim_sellers (
		seller_key VARCHAR, seller_region VARCHAR, seller_state VARCHAR, seller_city VARCHAR)`,
	`CREATE TABLE olist_marts.dim_products (
		product_key VARCHAR, product_category_english VARCHAR)`,
	`CREATE TABLE olist_marts.dim_payments (
		payment_key VARCHAR, primary_payment_type VARCHAR, total_installments INTEGER,
		uses_credit_card BOOLEAN, uses_boleto BOOLEAN, uses_voucher BOOLEAN)`,
	`CREATE TABLE olist_marts.dim_reviews (
		review_key VARCHAR, review_score INTEGER, days_to_review INTEGER)`,
	`CREATE TABLE olist_marts.dim_orders (
		order_key VARCHAR, days_to_delivery INTEGER, delivery_vs_estimate_days INTEGER,
		is_delivered_on_time BOOLEAN)`,
	`CREATE TABLE olist_marts.fact_sales (
		order_item_key VARCHAR, order_key VARCHAR, date_key INTEGER,
		customer_key VARCHAR, seller_key VARCHAR, product_key VARCHAR,
		payment_key VARCHAR, review_key VARCHAR,
		price DOUBLE, freight_value DOUBLE, payment_value DOUBLE, total_item_value DOUBLE)`,
}

// martsFixture is a 4-item dataset spanning two years, two regions, mixed
// payment types, and one unreviewed item.
var martsFixture = []string{
	`INSERT INTO olist_marts.dim_date VALUES
		(20170101, 2017, 1, 'January'),
		(20170201, 2017, 2, 'February'),
		(20180101, 2018, 1, 'January')`,
	`INSERT INTO olist_marts.dim_customers VALUES
		('c1', 'Southeast', 'SP', 'sao paulo'),
		('c2', 'South', 'RS', 'porto alegre')`,
	`INSERT INTO olist_marts.dim_sellers VALUES
		('s1', 'Southeast', 'SP', 'campinas'),
		('s2', 'Northeast', 'BA', 'salvador')`,
	`INSERT INTO olist_marts.dim_products VALUES
		('p1', 'toys'),
		('p2', 'electronics')`,
	`INSERT INTO olist_marts.dim_payments VALUES
		('pay1', 'credit_card', 4, TRUE, FALSE, FALSE),
		('pay2', 'boleto', 1, FALSE, TRUE, FALSE)`,
	`INSERT INTO olist_marts.dim_reviews VALUES
		('r1', 5, 2),
		('r2', 2, 40)`,
	`INSERT INTO olist_marts.dim_orders VALUES
		('o1', 5, 3, TRUE),
		('o2', 20, -2, FALSE),
		('o3', 10, 1, TRUE)`,
	`INSERT INTO olist_marts.fact_sales VALUES
		('i1', 'o1', 20170101, 'c1', 's1', 'p1', 'pay1', 'r1', 100.0, 10.0, 110.0, 110.0),
		('i2', 'o1', 20170101, 'c1', 's1', 'p2', 'pay1', 'r1', 50.0, 5.0, 55.0, 55.0),
		('i3', 'o2', 20170201, 'c2', 's2', 'p1', 'pay2', NULL, 30.0, 8.0, 38.0, 38.0),
		('i4', 'o3', 20180101, 'c1', 's2', 'p2', 'pay1', 'r2', 200.0, 20.0, 220.0, 220.0)`,
}

func newMartsService(t *testing.T, statements ...[]string) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, err := load.NewDuckDB(&config.Config{
		DuckDB: config.DuckDBConfig{Path: ":memory:"},
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	client := warehouse.NewDuckDBClient(db, logger)
	ctx := context.Background()
	for _, stmt := range martsDDL {
		_, err := client.Query(ctx, stmt)
		require.NoError(t, err)
	}
	for _, batch := range statements {
		for _, stmt := range batch {
			_, err := client.Query(ctx, stmt)
			require.NoError(t, err)
		}
	}

	return NewServiceWithTTL(client, "olist_marts", 600*time.Second, logger, nil)
}

func pctSum(t *testing.T, table *warehouse.Table, col string) float64 {
	t.Helper()
	require.NotZero(t, table.NumRows())
	var sum float64
	for i := 0; i < table.NumRows(); i++ {
		sum += table.Float(i, col)
	}
	return sum
}

func TestMonthlySalesTrendsAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)
	ctx := context.Background()

	table, err := svc.MonthlySalesTrends(ctx, Filters{})
	require.NoError(t, err)
	require.Equal(t, 3, table.NumRows())

	assert.Equal(t, "2017-01", table.String(0, "month_year"))
	assert.Equal(t, int64(1), table.Int(0, "total_orders"))
	assert.Equal(t, int64(2), table.Int(0, "total_items"))
	assert.InDelta(t, 165.00, table.Float(0, "total_sales"), 0.001)
	assert.Equal(t, "2018-01", table.String(2, "month_year"))

	table, err = svc.MonthlySalesTrends(ctx, Filters{Year: "2017"})
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())

	table, err = svc.MonthlySalesTrends(ctx, Filters{Region: "South"})
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())
	assert.Equal(t, "2017-02", table.String(0, "month_year"))
	assert.InDelta(t, 38.00, table.Float(0, "total_sales"), 0.001)
}

func TestDashboardSummaryAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	summary, err := svc.DashboardSummary(context.Background(), Filters{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalOrders)
	assert.Equal(t, int64(4), summary.TotalItems)
	assert.InDelta(t, 423.00, summary.TotalSales, 0.001)
	assert.InDelta(t, 141.00, summary.AvgOrderValue, 0.001)
}

func TestReviewCorrelationBucketsUnreviewedItems(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	table, err := svc.ReviewCorrelation(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 3, table.NumRows())

	byCategory := map[string]int{}
	for i := 0; i < table.NumRows(); i++ {
		byCategory[table.String(i, "review_category")] = i
	}
	require.Contains(t, byCategory, "Positive (4-5)")
	require.Contains(t, byCategory, "Negative (1-2)")
	require.Contains(t, byCategory, "No Review")

	row := byCategory["No Review"]
	assert.Equal(t, int64(1), table.Int(row, "total_items"))
	assert.Equal(t, int64(0), table.Int(row, "reviews_count"))
	assert.Equal(t, int64(1), table.Int(row, "no_review_count"))

	row = byCategory["Positive (4-5)"]
	assert.Equal(t, int64(2), table.Int(row, "total_items"))
	assert.Equal(t, int64(2), table.Int(row, "reviews_count"))
	assert.Equal(t, int64(0), table.Int(row, "no_review_count"))
}

// A mart where no item has a review must yield exactly one 'No Review' row
// rather than an empty table.
func TestReviewCorrelationAllNullReviews(t *testing.T) {
	fixture := []string{
		`INSERT INTO olist_marts.dim_date VALUES (20170101, 2017, 1, 'January')`,
		`INSERT INTO olist_marts.dim_customers VALUES ('c1', 'Southeast', 'SP', 'sao paulo')`,
		`INSERT INTO olist_marts.fact_sales VALUES
			('i1', 'o1', 20170101, 'c1', 's1', 'p1', 'pay1', NULL, 10.0, 1.0, 11.0, 11.0),
			('i2', 'o2', 20170101, 'c1', 's1', 'p1', 'pay1', NULL, 20.0, 2.0, 22.0, 22.0),
			('i3', 'o3', 20170101, 'c1', 's1', 'p1', 'pay1', NULL, 30.0, 3.0, 33.0, 33.0)`,
	}
	svc := newMartsService(t, fixture)

	table, err := svc.ReviewCorrelation(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())

	assert.Equal(t, "No Review", table.String(0, "review_category"))
	assert.Equal(t, int64(3), table.Int(0, "total_items"))
	assert.Equal(t, int64(0), table.Int(0, "reviews_count"))
	assert.Equal(t, int64(3), table.Int(0, "no_review_count"))
}

func TestPercentageColumnsSumToHundred(t *testing.T) {
	svc := newMartsService(t, martsFixture)
	ctx := context.Background()

	cases := []struct {
		name string
		col  string
		run  func() (*warehouse.Table, error)
	}{
		{"sales_by_state", "pct_of_items", func() (*warehouse.Table, error) {
			return svc.SalesByState(ctx, Filters{})
		}},
		{"review_score_distribution", "pct_of_items", func() (*warehouse.Table, error) {
			return svc.ReviewScoreDistribution(ctx, Filters{})
		}},
		{"review_timing", "pct_of_reviews", func() (*warehouse.Table, error) {
			return svc.ReviewTiming(ctx, Filters{})
		}},
		{"installment_analysis", "pct_of_items", func() (*warehouse.Table, error) {
			return svc.InstallmentAnalysis(ctx, Filters{})
		}},
		{"customer_segmentation", "pct_of_customers", func() (*warehouse.Table, error) {
			return svc.CustomerSegmentation(ctx, Filters{})
		}},
		{"order_frequency", "pct_of_customers", func() (*warehouse.Table, error) {
			return svc.OrderFrequency(ctx, Filters{})
		}},
		{"delivery_distribution", "pct_of_items", func() (*warehouse.Table, error) {
			return svc.DeliveryDistribution(ctx, Filters{})
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := tc.run()
			require.NoError(t, err)
			assert.InDelta(t, 100.0, pctSum(t, table, tc.col), 0.5)
		})
	}
}

func TestTopCategoriesAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)
	ctx := context.Background()

	table, err := svc.TopCategories(ctx, Filters{}, 0)
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, "electronics", table.String(0, "category"))
	assert.InDelta(t, 275.00, table.Float(0, "total_revenue"), 0.001)

	table, err = svc.TopCategories(ctx, Filters{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())

	table, err = svc.TopCategories(ctx, Filters{Year: "2017", Region: "Southeast"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
}

func TestSalesByRegionMatrix(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	table, err := svc.SalesByRegion(context.Background(), Filters{})
	require.NoError(t, err)
	// Southeast->Southeast, Southeast->Northeast, South->Northeast
	require.Equal(t, 3, table.NumRows())

	assert.Equal(t, "Southeast", table.String(0, "customer_region"))
	assert.Equal(t, "Northeast", table.String(0, "seller_region"))
	assert.InDelta(t, 220.00, table.Float(0, "total_sales"), 0.001)
}

func TestCustomerSegmentationAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	table, err := svc.CustomerSegmentation(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())

	bySegment := map[string]int64{}
	for i := 0; i < table.NumRows(); i++ {
		bySegment[table.String(i, "segment")] = table.Int(i, "customers")
	}
	assert.Equal(t, int64(1), bySegment["One-time"])
	assert.Equal(t, int64(1), bySegment["Occasional (2-3)"])
}

func TestPaymentAnalysisAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	table, err := svc.PaymentAnalysis(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())

	assert.Equal(t, "credit_card", table.String(0, "primary_payment_type"))
	assert.Equal(t, int64(3), table.Int(0, "credit_card_orders"))
	assert.Equal(t, int64(0), table.Int(0, "boleto_orders"))
	assert.Equal(t, "boleto", table.String(1, "primary_payment_type"))
	assert.Equal(t, int64(1), table.Int(1, "boleto_orders"))
}

func TestDeliveryPatternsAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	table, err := svc.DeliveryPatterns(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())

	bySouthern := map[string]int{}
	for i := 0; i < table.NumRows(); i++ {
		bySouthern[table.String(i, "customer_region")] = i
	}
	row := bySouthern["Southeast"]
	// items i1, i2 (o1, on time) and i4 (o3, on time)
	assert.Equal(t, int64(2), table.Int(row, "total_orders"))
	assert.InDelta(t, 100.0, table.Float(row, "on_time_delivery_rate"), 0.001)
	assert.Equal(t, int64(5), table.Int(row, "min_delivery_days"))
	assert.Equal(t, int64(10), table.Int(row, "max_delivery_days"))

	row = bySouthern["South"]
	assert.InDelta(t, 0.0, table.Float(row, "on_time_delivery_rate"), 0.001)
}

func TestOverviewAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	table, err := svc.Overview(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())

	assert.Equal(t, int64(3), table.Int(0, "total_orders"))
	assert.Equal(t, int64(4), table.Int(0, "total_items"))
	assert.Equal(t, int64(2), table.Int(0, "unique_customers"))
	assert.Equal(t, int64(2), table.Int(0, "unique_sellers"))
	assert.Equal(t, int64(2), table.Int(0, "unique_products"))
}

func TestValidateMartsAgainstDuckDB(t *testing.T) {
	svc := newMartsService(t, martsFixture)

	results := svc.ValidateMarts(context.Background())
	require.Len(t, results, len(RequiredTables))
	for _, table := range RequiredTables {
		assert.True(t, results[table], table)
	}
}

func TestValidateMartsEmptyTables(t *testing.T) {
	svc := newMartsService(t) // schema only, no rows

	results := svc.ValidateMarts(context.Background())
	for _, table := range RequiredTables {
		assert.False(t, results[table], table)
	}
}
