package query

import (
	"context"
	"fmt"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// DeliveryPatterns aggregates delivery performance per customer region.
// The customer join is part of the base query, so a region filter adds only
// a predicate.
func (s *Service) DeliveryPatterns(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"c.customer_region",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"ROUND(AVG(o.days_to_delivery), 1) AS avg_delivery_days",
		"ROUND(AVG(o.delivery_vs_estimate_days), 1) AS avg_delivery_vs_estimate",
		"SUM(CASE WHEN o.is_delivered_on_time THEN 1 ELSE 0 END) AS on_time_deliveries",
		"SUM(CASE WHEN NOT o.is_delivered_on_time THEN 1 ELSE 0 END) AS late_deliveries",
		"ROUND(SUM(CASE WHEN o.is_delivered_on_time THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 1) AS on_time_delivery_rate",
		"MIN(o.days_to_delivery) AS min_delivery_days",
		"MAX(o.days_to_delivery) AS max_delivery_days",
	)
	q.joinOrders()
	q.joinCustomers()
	q.where("o.days_to_delivery IS NOT NULL")
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("c.customer_region")
	q.orderBy("avg_delivery_days ASC")

	return s.run(ctx, cacheKey("delivery_patterns", f.key()), q)
}

// DeliveryDistribution buckets orders by delivery duration. Bucket
// boundaries are the Delivery*Days constants.
func (s *Service) DeliveryDistribution(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	bucket := fmt.Sprintf(`CASE
        WHEN o.days_to_delivery <= %d THEN 'Express (0-%d days)'
        WHEN o.days_to_delivery <= %d THEN 'Fast (%d-%d days)'
        WHEN o.days_to_delivery <= %d THEN 'Normal (%d-%d days)'
        WHEN o.days_to_delivery <= %d THEN 'Slow (%d-%d days)'
        ELSE 'Very slow (%d+ days)'
    END`,
		DeliveryFastDays, DeliveryFastDays,
		DeliveryWeekDays, DeliveryFastDays+1, DeliveryWeekDays,
		DeliveryFortnightDays, DeliveryWeekDays+1, DeliveryFortnightDays,
		DeliveryMonthDays, DeliveryFortnightDays+1, DeliveryMonthDays,
		DeliveryMonthDays+1)

	q := newMartQuery(s.dataset,
		bucket+" AS delivery_bucket",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"ROUND(AVG(o.delivery_vs_estimate_days), 1) AS avg_delivery_vs_estimate",
		"ROUND(SUM(CASE WHEN o.is_delivered_on_time THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 1) AS on_time_delivery_rate",
		"ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_items",
	)
	q.joinOrders()
	q.where("o.days_to_delivery IS NOT NULL")
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("delivery_bucket")
	q.orderBy("total_orders DESC")

	return s.run(ctx, cacheKey("delivery_distribution", f.key()), q)
}
