package query

import (
	"context"
	"fmt"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// PaymentAnalysis aggregates sales by primary payment type, including
// per-instrument usage counts.
func (s *Service) PaymentAnalysis(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"pay.primary_payment_type",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_order_value",
		"ROUND(AVG(pay.total_installments), 1) AS avg_installments",
		"SUM(CASE WHEN pay.uses_credit_card THEN 1 ELSE 0 END) AS credit_card_orders",
		"SUM(CASE WHEN pay.uses_boleto THEN 1 ELSE 0 END) AS boleto_orders",
		"SUM(CASE WHEN pay.uses_voucher THEN 1 ELSE 0 END) AS voucher_orders",
		"ROUND(SUM(f.payment_value), 2) AS total_payments",
	)
	q.joinPayments()
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("pay.primary_payment_type")
	q.orderBy("total_sales DESC")

	return s.run(ctx, cacheKey("payment_analysis", f.key()), q)
}

// InstallmentAnalysis buckets orders by installment count. Bucket
// boundaries are the Installments* constants.
func (s *Service) InstallmentAnalysis(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	bucket := fmt.Sprintf(`CASE
        WHEN pay.total_installments <= 1 THEN 'Single payment'
        WHEN pay.total_installments <= %d THEN 'Few (2-%d)'
        WHEN pay.total_installments <= %d THEN 'Medium (%d-%d)'
        WHEN pay.total_installments <= %d THEN 'Many (%d-%d)'
        ELSE 'Extended (%d+)'
    END`,
		InstallmentsFew, InstallmentsFew,
		InstallmentsMedium, InstallmentsFew+1, InstallmentsMedium,
		InstallmentsMany, InstallmentsMedium+1, InstallmentsMany,
		InstallmentsMany+1)

	q := newMartQuery(s.dataset,
		bucket+" AS installment_bucket",
		"COUNT(DISTINCT f.order_key) AS total_orders",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_order_value",
		"ROUND(AVG(pay.total_installments), 1) AS avg_installments",
		"ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_items",
	)
	q.joinPayments()
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("installment_bucket")
	q.orderBy("total_orders DESC")

	return s.run(ctx, cacheKey("installment_analysis", f.key()), q)
}
