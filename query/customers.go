package query

import (
	"context"
	"fmt"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// customerMetricsCTE builds the per-customer rollup the behavior queries
// share: one row per customer with order count, spend, and activity span.
func (s *Service) customerMetricsCTE(f Filters) (string, []any, error) {
	q := newMartQuery(s.dataset,
		"c.customer_key",
		"c.customer_region",
		"COUNT(DISTINCT f.order_key) AS order_count",
		"ROUND(SUM(f.total_item_value), 2) AS total_spent",
		"ROUND(AVG(f.total_item_value), 2) AS avg_order_value",
		"COUNT(DISTINCT d.year * 100 + d.month) AS active_months",
	)
	q.joinCustomers()
	q.joinDate()
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("c.customer_key", "c.customer_region")

	inner, args, err := q.toSQL()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("WITH customer_metrics AS (%s)", inner), args, nil
}

// CustomerBehavior aggregates purchase behavior per customer region:
// averages per customer plus the one-time vs repeat split.
func (s *Service) CustomerBehavior(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cte, args, err := s.customerMetricsCTE(f)
	if err != nil {
		return nil, err
	}

	sqlText := cte + `
SELECT
    customer_region,
    COUNT(*) AS customer_count,
    ROUND(AVG(order_count), 1) AS avg_orders_per_customer,
    ROUND(AVG(total_spent), 2) AS avg_customer_lifetime_value,
    ROUND(AVG(avg_order_value), 2) AS avg_order_value,
    ROUND(AVG(active_months), 1) AS avg_active_months,
    SUM(CASE WHEN order_count = 1 THEN 1 ELSE 0 END) AS one_time_customers,
    SUM(CASE WHEN order_count > 1 THEN 1 ELSE 0 END) AS repeat_customers
FROM customer_metrics
GROUP BY customer_region
ORDER BY avg_customer_lifetime_value DESC`

	return s.runSQL(ctx, cacheKey("customer_behavior", f.key()), sqlText, args...)
}

// CustomerSegmentation buckets customers by how often they ordered, with a
// share-of-total column.
func (s *Service) CustomerSegmentation(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cte, args, err := s.customerMetricsCTE(f)
	if err != nil {
		return nil, err
	}

	sqlText := cte + `
SELECT
    CASE
        WHEN order_count = 1 THEN 'One-time'
        WHEN order_count <= 3 THEN 'Occasional (2-3)'
        ELSE 'Frequent (4+)'
    END AS segment,
    COUNT(*) AS customers,
    ROUND(AVG(total_spent), 2) AS avg_customer_value,
    ROUND(AVG(avg_order_value), 2) AS avg_order_value,
    ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_customers
FROM customer_metrics
GROUP BY segment
ORDER BY customers DESC`

	return s.runSQL(ctx, cacheKey("customer_segmentation", f.key()), sqlText, args...)
}

// OrderFrequency is the distribution of orders per customer.
func (s *Service) OrderFrequency(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cte, args, err := s.customerMetricsCTE(f)
	if err != nil {
		return nil, err
	}

	sqlText := cte + `
SELECT
    order_count,
    COUNT(*) AS customers,
    ROUND(SUM(total_spent), 2) AS total_spent,
    ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_customers
FROM customer_metrics
GROUP BY order_count
ORDER BY order_count`

	return s.runSQL(ctx, cacheKey("order_frequency", f.key()), sqlText, args...)
}
