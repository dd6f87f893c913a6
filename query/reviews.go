package query

import (
	"context"
	"fmt"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// ReviewCorrelation relates review sentiment to sales. Fact rows without a
// review are kept and bucketed as 'No Review' rather than dropped.
func (s *Service) ReviewCorrelation(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		`CASE
        WHEN r.review_key IS NULL THEN 'No Review'
        WHEN r.review_score >= 4 THEN 'Positive (4-5)'
        WHEN r.review_score = 3 THEN 'Neutral (3)'
        ELSE 'Negative (1-2)'
    END AS review_category`,
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
		"ROUND(AVG(COALESCE(r.review_score, 0)), 1) AS avg_review_score",
		"COUNT(r.review_key) AS reviews_count",
		"COUNT(*) - COUNT(r.review_key) AS no_review_count",
	)
	q.leftJoinReviews()
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("review_category")
	q.orderBy("total_sales DESC")

	return s.run(ctx, cacheKey("review_correlation", f.key()), q)
}

// ReviewScoreDistribution counts items per review score, keeping unreviewed
// items as their own row, with a share-of-total column.
func (s *Service) ReviewScoreDistribution(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := newMartQuery(s.dataset,
		"COALESCE(CAST(r.review_score AS STRING), 'No Review') AS review_score",
		"COUNT(*) AS total_items",
		"ROUND(SUM(f.total_item_value), 2) AS total_sales",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
		"ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_items",
	)
	q.leftJoinReviews()
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("review_score")
	q.orderBy("review_score")

	return s.run(ctx, cacheKey("review_score_distribution", f.key()), q)
}

// ReviewTiming buckets reviewed items by how long the review took. Bucket
// boundaries are the Review*Days constants.
func (s *Service) ReviewTiming(ctx context.Context, f Filters) (*warehouse.Table, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	bucket := fmt.Sprintf(`CASE
        WHEN r.days_to_review <= %d THEN 'Within %d days'
        WHEN r.days_to_review <= %d THEN '%d-%d days'
        WHEN r.days_to_review <= %d THEN '%d-%d days'
        ELSE 'Over %d days'
    END`,
		ReviewFastDays, ReviewFastDays,
		ReviewNormalDays, ReviewFastDays+1, ReviewNormalDays,
		ReviewSlowDays, ReviewNormalDays+1, ReviewSlowDays,
		ReviewSlowDays)

	q := newMartQuery(s.dataset,
		bucket+" AS review_timing",
		"COUNT(*) AS total_items",
		"ROUND(AVG(r.review_score), 1) AS avg_review_score",
		"ROUND(AVG(f.total_item_value), 2) AS avg_item_value",
		"ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1) AS pct_of_reviews",
	)
	q.join("r", "dim_reviews", "f.review_key = r.review_key")
	q.where("r.days_to_review IS NOT NULL")
	q.applyYear(f)
	q.applyCustomerRegion(f)
	q.groupBy("review_timing")
	q.orderBy("total_items DESC")

	return s.run(ctx, cacheKey("review_timing", f.key()), q)
}
