package query

import (
	"context"
	"fmt"
	"math"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// Summary is the dashboard's headline metric card set.
type Summary struct {
	TotalOrders   int64   `json:"total_orders"`
	TotalItems    int64   `json:"total_items"`
	TotalSales    float64 `json:"total_sales"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// DashboardSummary derives the headline metrics from the monthly trends
// table: totals are column sums and the average order value is total sales
// divided by total orders, not an average of the monthly averages.
func (s *Service) DashboardSummary(ctx context.Context, f Filters) (Summary, error) {
	trends, err := s.MonthlySalesTrends(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for i := 0; i < trends.NumRows(); i++ {
		summary.TotalOrders += trends.Int(i, "total_orders")
		summary.TotalItems += trends.Int(i, "total_items")
		summary.TotalSales += trends.Float(i, "total_sales")
	}
	summary.TotalSales = math.Round(summary.TotalSales*100) / 100
	if summary.TotalOrders > 0 {
		summary.AvgOrderValue = math.Round(summary.TotalSales/float64(summary.TotalOrders)*100) / 100
	}

	return summary, nil
}

// Overview returns warehouse-wide distinct counts for the landing page.
func (s *Service) Overview(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
		"COUNT(DISTINCT f.customer_key) AS unique_customers",
		"COUNT(DISTINCT f.seller_key) AS unique_sellers",
		"COUNT(DISTINCT f.product_key) AS unique_products",
	)
	q.applyYear(f)
	q.applyCustomerRegion(f)

	return s.run(ctx, cacheKey("overview", f.key()), q)
}

// ValidateMarts checks that every table of the read contract exists and has
// rows. Failures count as invalid, not as errors.
func (s *Service) ValidateMarts(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(RequiredTables))
	for _, table := range RequiredTables {
		sqlText := fmt.Sprintf("SELECT COUNT(*) AS row_count FROM %s.%s", s.dataset, table)

		res, err := s.exec.Query(ctx, sqlText)
		if err != nil {
			s.logger.Error(fmt.Sprintf("Failed to validate table %s: %v", table, err))
			results[table] = false
			continue
		}
		results[table] = res.NumRows() > 0 && res.Int(0, "row_count") > 0
	}
	return results
}
