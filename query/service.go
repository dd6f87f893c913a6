// Package query translates dashboard filter state into warehouse queries
// against the olist marts star schema. Each query function covers one
// business question, returns a flat table, and is memoized for the
// configured TTL. The SQL is dialect-portable between BigQuery and DuckDB.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vitorbr/olist-analytics/cache"
	"github.com/vitorbr/olist-analytics/config"
	"github.com/vitorbr/olist-analytics/utils"
	"github.com/vitorbr/olist-analytics/warehouse"
)

// Review-timing bucket boundaries in days. Carried over from the marts
// definition as-is.
const (
	ReviewFastDays   = 7
	ReviewNormalDays = 30
	ReviewSlowDays   = 90
)

// Delivery-time bucket boundaries in days.
const (
	DeliveryFastDays      = 3
	DeliveryWeekDays      = 7
	DeliveryFortnightDays = 15
	DeliveryMonthDays     = 30
)

// Installment bucket boundaries.
const (
	InstallmentsFew    = 3
	InstallmentsMedium = 6
	InstallmentsMany   = 12
)

// RequiredTables is the read contract against the warehouse: the dashboard
// cannot function without all of them.
var RequiredTables = []string{
	"fact_sales",
	"dim_customers",
	"dim_products",
	"dim_sellers",
	"dim_orders",
	"dim_payments",
	"dim_reviews",
	"dim_date",
}

// Service is the query layer: an executor, a TTL cache, and the dataset the
// marts live in.
type Service struct {
	exec    warehouse.Executor
	cache   *cache.Cache
	logger  *slog.Logger
	dataset string
}

func NewService(exec warehouse.Executor, cfg *config.Config, logger *slog.Logger, clock utils.TimeProvider) *Service {
	return &Service{
		exec:    exec,
		cache:   cache.New(cfg.Warehouse.CacheTTL, clock),
		logger:  logger,
		dataset: cfg.Warehouse.DatasetID,
	}
}

// NewServiceWithTTL is a convenience constructor for callers that have no
// full config at hand.
func NewServiceWithTTL(exec warehouse.Executor, dataset string, ttl time.Duration, logger *slog.Logger, clock utils.TimeProvider) *Service {
	return &Service{
		exec:    exec,
		cache:   cache.New(ttl, clock),
		logger:  logger,
		dataset: dataset,
	}
}

// ClearCache drops every memoized result. Wired to the dashboard's refresh
// button; there is no per-function invalidation.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// run executes a built statement through the cache.
func (s *Service) run(ctx context.Context, key string, q *martQuery) (*warehouse.Table, error) {
	sqlText, args, err := q.toSQL()
	if err != nil {
		return nil, err
	}
	return s.runSQL(ctx, key, sqlText, args...)
}

func (s *Service) runSQL(ctx context.Context, key, sqlText string, args ...any) (*warehouse.Table, error) {
	if table, ok := s.cache.Get(key); ok {
		return table, nil
	}

	table, err := s.exec.Query(ctx, sqlText, args...)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to run %s: %v", strings.SplitN(key, "|", 2)[0], err))
		return nil, err
	}

	s.cache.Set(key, table)
	return table, nil
}

func cacheKey(fn string, parts ...string) string {
	if len(parts) == 0 {
		return fn
	}
	return fn + "|" + strings.Join(parts, "|")
}
