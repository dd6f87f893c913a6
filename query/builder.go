package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// martQuery assembles a statement against the star schema. The fact table is
// always aliased f; dimension joins are registered by alias so a join needed
// both by the base query and by a filter is only emitted once.
type martQuery struct {
	b       sq.SelectBuilder
	dataset string
	joined  map[string]bool
}

// newMartQuery starts a query over fact_sales with the given select list.
// Positional ? placeholders are kept as-is; both warehouse backends accept
// them.
func newMartQuery(dataset string, columns ...string) *martQuery {
	q := &martQuery{
		dataset: dataset,
		joined:  map[string]bool{"f": true},
	}
	q.b = sq.Select(columns...).From(fmt.Sprintf("%s.fact_sales f", dataset))
	return q
}

func (q *martQuery) table(name string) string {
	return q.dataset + "." + name
}

func (q *martQuery) join(alias, table, on string) {
	if q.joined[alias] {
		return
	}
	q.b = q.b.Join(fmt.Sprintf("%s %s ON %s", q.table(table), alias, on))
	q.joined[alias] = true
}

func (q *martQuery) leftJoin(alias, table, on string) {
	if q.joined[alias] {
		return
	}
	q.b = q.b.LeftJoin(fmt.Sprintf("%s %s ON %s", q.table(table), alias, on))
	q.joined[alias] = true
}

func (q *martQuery) joinDate()      { q.join("d", "dim_date", "f.date_key = d.date_key") }
func (q *martQuery) joinCustomers() { q.join("c", "dim_customers", "f.customer_key = c.customer_key") }
func (q *martQuery) joinSellers()   { q.join("s", "dim_sellers", "f.seller_key = s.seller_key") }
func (q *martQuery) joinProducts()  { q.join("p", "dim_products", "f.product_key = p.product_key") }
func (q *martQuery) joinPayments()  { q.join("pay", "dim_payments", "f.payment_key = pay.payment_key") }
func (q *martQuery) joinOrders()    { q.join("o", "dim_orders", "f.order_key = o.order_key") }
func (q *martQuery) leftJoinReviews() {
	q.leftJoin("r", "dim_reviews", "f.review_key = r.review_key")
}

// applyYear adds the year predicate when a concrete year was selected,
// joining the date dimension on demand.
func (q *martQuery) applyYear(f Filters) {
	if year, ok := f.yearValue(); ok {
		q.joinDate()
		q.b = q.b.Where("d.year = ?", year)
	}
}

// applyCustomerRegion adds the customer-region predicate when a concrete
// region was selected, joining the customer dimension on demand.
func (q *martQuery) applyCustomerRegion(f Filters) {
	if region, ok := f.regionValue(); ok {
		q.joinCustomers()
		q.b = q.b.Where("c.customer_region = ?", region)
	}
}

// applySellerRegion is the seller-side variant, used by queries whose
// subject is the seller rather than the customer.
func (q *martQuery) applySellerRegion(f Filters) {
	if region, ok := f.regionValue(); ok {
		q.joinSellers()
		q.b = q.b.Where("s.seller_region = ?", region)
	}
}

func (q *martQuery) where(pred string, args ...any) *martQuery {
	q.b = q.b.Where(pred, args...)
	return q
}

func (q *martQuery) groupBy(groupBys ...string) *martQuery {
	q.b = q.b.GroupBy(groupBys...)
	return q
}

func (q *martQuery) orderBy(orderBys ...string) *martQuery {
	q.b = q.b.OrderBy(orderBys...)
	return q
}

func (q *martQuery) limit(n uint64) *martQuery {
	q.b = q.b.Limit(n)
	return q
}

func (q *martQuery) toSQL() (string, []any, error) {
	sqlText, args, err := q.b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}
	return sqlText, args, nil
}
