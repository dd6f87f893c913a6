// Package api serves the dashboard's JSON API. Every analytics endpoint
// accepts the same year/region filter pair and answers 200 with an error
// field on query failure, so one broken section never takes down the whole
// dashboard.
package api

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vitorbr/olist-analytics/config"
	"github.com/vitorbr/olist-analytics/query"
	"github.com/vitorbr/olist-analytics/warehouse"
)

type APIService struct {
	router  *echo.Echo
	queries *query.Service
	client  warehouse.Client
	logger  *slog.Logger
	dataset string
	backend string
}

func NewAPIService(client warehouse.Client, queries *query.Service, config *config.Config, logger *slog.Logger) *APIService {
	svc := &APIService{
		router:  echo.New(),
		queries: queries,
		client:  client,
		logger:  logger,
		dataset: config.Warehouse.DatasetID,
		backend: config.Warehouse.Backend,
	}

	svc.router.HideBanner = true
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.Server.CORSOrigins,
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type"},
	}))

	api := svc.router.Group("/api/v1")
	api.GET("/health", svc.health)
	api.GET("/summary", svc.summary)
	api.GET("/overview", svc.handleQuery("overview", svc.queries.Overview))
	api.GET("/validate", svc.validateMarts)
	api.POST("/cache/clear", svc.clearCache)

	api.GET("/tables", svc.listTables)
	api.GET("/tables/:name/sample", svc.tableSample)

	sales := api.Group("/sales")
	sales.GET("/trends", svc.handleQuery("monthly_sales_trends", svc.queries.MonthlySalesTrends))
	sales.GET("/regions", svc.handleQuery("sales_by_region", svc.queries.SalesByRegion))
	sales.GET("/states", svc.handleQuery("sales_by_state", svc.queries.SalesByState))

	api.GET("/products/top-categories", svc.handleLimitQuery("top_categories", svc.queries.TopCategories))

	customers := api.Group("/customers")
	customers.GET("/behavior", svc.handleQuery("customer_behavior", svc.queries.CustomerBehavior))
	customers.GET("/segments", svc.handleQuery("customer_segmentation", svc.queries.CustomerSegmentation))
	customers.GET("/order-frequency", svc.handleQuery("order_frequency", svc.queries.OrderFrequency))

	payments := api.Group("/payments")
	payments.GET("/types", svc.handleQuery("payment_analysis", svc.queries.PaymentAnalysis))
	payments.GET("/installments", svc.handleQuery("installment_analysis", svc.queries.InstallmentAnalysis))

	sellers := api.Group("/sellers")
	sellers.GET("/performance", svc.handleQuery("seller_performance", svc.queries.SellerPerformance))
	sellers.GET("/top", svc.handleLimitQuery("top_sellers", svc.queries.TopSellers))
	sellers.GET("/diversity", svc.handleQuery("seller_diversity", svc.queries.SellerDiversity))

	reviews := api.Group("/reviews")
	reviews.GET("/correlation", svc.handleQuery("review_correlation", svc.queries.ReviewCorrelation))
	reviews.GET("/scores", svc.handleQuery("review_score_distribution", svc.queries.ReviewScoreDistribution))
	reviews.GET("/timing", svc.handleQuery("review_timing", svc.queries.ReviewTiming))

	delivery := api.Group("/delivery")
	delivery.GET("/patterns", svc.handleQuery("delivery_patterns", svc.queries.DeliveryPatterns))
	delivery.GET("/distribution", svc.handleQuery("delivery_distribution", svc.queries.DeliveryDistribution))

	figures := api.Group("/charts")
	figures.GET("/sales-trends", svc.salesTrendGridChart)
	figures.GET("/revenue-trend", svc.handleFigure("monthly_sales_trends", svc.queries.MonthlySalesTrends, revenueTrendFigure))
	figures.GET("/regions-heatmap", svc.handleFigure("sales_by_region", svc.queries.SalesByRegion, regionalHeatmapFigure))
	figures.GET("/top-categories", svc.topCategoriesChart)
	figures.GET("/customer-segments", svc.handleFigure("customer_segmentation", svc.queries.CustomerSegmentation, customerSegmentsFigure))

	return svc
}

func (svc *APIService) Serve(addr string) error {
	return svc.router.Start(addr)
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}
