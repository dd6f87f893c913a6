package query

import (
	"context"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// SalesByRegion returns the customer-region x seller-region flow matrix.
// Both dimensions are already part of the base joins, so a region filter
// adds only a predicate.
func (s *Service) SalesByRegion(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"c.customer_region",
		"s.seller_region",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_order_value",
		"COUNT(DISTINCT c.customer_key) AS unique_customers",
		"COUNT(DISTINCT s.seller_key) AS unique_sellers",
	)
	q.joinCustomers()
	q.joinSellers()
	q.where("c.customer_region IS NOT NULL AND s.seller_region IS NOT NULL")
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("c.customer_region", "s.seller_region")
	q.orderBy("total_sales DESC")

	return s.run(ctx, cacheKey("sales_by_region", f.key()), q)
}

// SalesByState breaks sales down by customer state with a share-of-total
// column.
func (s *Service) SalesByState(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"c.customer_state",
		"c.customer_region",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_order_value",
		"ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_items",
	)
	q.joinCustomers()
	q.where("c.customer_state IS NOT NULL")
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("c.customer_state", "c.customer_region")
	q.orderBy("total_sales DESC")

	return s.run(ctx, cacheKey("sales_by_state", f.key()), q)
}
