package query

import (
	"context"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// MonthlySalesTrends returns one row per calendar month: order and item
// counts, sales and payment totals, and average values.
func (s *Service) MonthlySalesTrends(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"CAST(d.year AS STRING) || '-' || LPAD(CAST(d.month AS STRING), 2, '0') AS month_year",
		"d.year",
		"d.month",
		"d.month_name",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(SUM(f.payment_value), 2) AS total_payments",
		"ROUND(AVG(f.total_item_value), 2) AS avg_order_value",
		"ROUND(AVG(f.payment_value), 2) AS avg_payment_value",
	)
	q.joinDate()
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("d.year", "d.month", "d.month_name")
	q.orderBy("d.year", "d.month")

	return s.run(ctx, cacheKey("monthly_sales_trends", f.key()), q)
}
