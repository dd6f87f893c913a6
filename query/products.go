package query

import (
	"context"
	"strconv"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// TopCategories ranks product categories by revenue. Rows without a
// translated category name are excluded.
func (s *Service) TopCategories(ctx context.Context, f Filters, limit int) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	q := newMartQuery(s.dataset,
		"p.product_category_english AS category",
		"COUNT(DISTINCT p.product_key) AS unique_products",
		"COUNT(*) AS items_sold",
		"ROUND(SUM(f.total_item_value), 2) AS total_revenue",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
		"ROUND(SUM(f.freight_value), 2) AS total_freight",
	)
	q.joinProducts()
	q.where("p.product_category_english IS NOT NULL")
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("p.product_category_english")
	q.orderBy("total_revenue DESC")
	q.limit(uint64(limit))

	return s.run(ctx, cacheKey("top_categories", f.key(), strconv.Itoa(limit)), q)
}
