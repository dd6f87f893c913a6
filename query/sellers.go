package query

import (
	"context"
	"strconv"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// SellerPerformance aggregates seller metrics per seller region. A region
// filter applies to the seller side here.
func (s *Service) SellerPerformance(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"s.seller_region",
		"COUNT(DISTINCT s.seller_key) AS unique_sellers",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_revenue",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
		"ROUND(SUM(f.total_item_value) / COUNT(DISTINCT s.seller_key), 2) AS revenue_per_seller",
		"COUNT(DISTINCT f.product_key) AS unique_products_sold",
	)
	q.joinSellers()
	q.where("s.seller_region IS NOT NULL")
	q.applyYear(f)
	q.applySellerRegion(f)
	q.groupBy("s.seller_region")
	q.orderBy("total_revenue DESC")

	return s.run(ctx, cacheKey("seller_performance", f.key()), q)
}

// TopSellers ranks individual sellers by revenue.
func (s *Service) TopSellers(ctx context.Context, f Filters, limit int) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	q := newMartQuery(s.dataset,
		"s.seller_key",
		"s.seller_city",
		"s.seller_state",
		"s.seller_region",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"COUNT(*) AS items_sold",
		"ROUND(SUM(f.total_item_value), 2) AS total_revenue",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
	)
	q.joinSellers()
	q.applyYear(f)
	q.applySellerRegion(f)
	q.groupBy("s.seller_key", "s.seller_city", "s.seller_state", "s.seller_region")
	q.orderBy("total_revenue DESC")
	q.limit(uint64(limit))

	return s.run(ctx, cacheKey("top_sellers", f.key(), strconv.Itoa(limit)), q)
}

// SellerDiversity measures assortment breadth per seller region: how many
// distinct products and categories its sellers move.
func (s *Service) SellerDiversity(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"s.seller_region",
		"COUNT(DISTINCT s.seller_key) AS unique_sellers",
		"COUNT(DISTINCT f.product_key) AS unique_products",
		"COUNT(DISTINCT p.product_category_english) AS unique_categories",
		"ROUND(SUM(f.total_item_value), 2) AS total_revenue",
	)
	q.joinSellers()
	q.joinProducts()
	q.where("s.seller_region IS NOT NULL")
	q.applyYear(f)
	q.applySellerRegion(f)
	q.groupBy("s.seller_region")
	q.orderBy("unique_products DESC")

	return s.run(ctx, cacheKey("seller_diversity", f.key()), q)
}
