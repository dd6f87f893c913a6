package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vitorbr/olist-analytics/charts"
	"github.com/vitorbr/olist-analytics/query"
	"github.com/vitorbr/olist-analytics/warehouse"
)

// FigureResponse wraps chart specs the way QueryResponse wraps tables: a
// failed query still answers 200 with Error set, an empty figure carries
// Warning instead.
type FigureResponse struct {
	Figure  *charts.Figure   `json:"figure,omitempty"`
	Figures []*charts.Figure `json:"figures,omitempty"`
	Error   string           `json:"error,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

type figureBuilder func(table *warehouse.Table) *charts.Figure

func (svc *APIService) figureError(ctx echo.Context, name string, err error) error {
	svc.logger.Error(fmt.Sprintf("Chart query %s failed: %v", name, err))
	return ctx.JSON(http.StatusOK, FigureResponse{Error: fmt.Sprintf("failed to load %s", name)})
}

// handleFigure runs a filtered query and turns the result table into a
// single chart spec.
func (svc *APIService) handleFigure(name string, run queryRunner, build figureBuilder) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		f, err := parseFilters(ctx)
		if err != nil {
			return err
		}
		table, err := run(ctx.Request().Context(), f)
		if err != nil {
			return svc.figureError(ctx, name, err)
		}

		resp := FigureResponse{Figure: build(table)}
		if resp.Figure.Empty() {
			resp.Warning = "no data for the selected filters"
		}
		return ctx.JSON(http.StatusOK, resp)
	}
}

// salesTrendGridChart serves the four-panel monthly trends overview.
func (svc *APIService) salesTrendGridChart(ctx echo.Context) error {
	f, err := parseFilters(ctx)
	if err != nil {
		return err
	}
	table, err := svc.queries.MonthlySalesTrends(ctx.Request().Context(), f)
	if err != nil {
		return svc.figureError(ctx, "monthly_sales_trends", err)
	}

	resp := FigureResponse{Figures: charts.SalesTrendGrid(table)}
	if table.Empty() {
		resp.Warning = "no data for the selected filters"
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (svc *APIService) topCategoriesChart(ctx echo.Context) error {
	f, err := parseFilters(ctx)
	if err != nil {
		return err
	}
	limit, err := parseLimit(ctx)
	if err != nil {
		return err
	}
	table, err := svc.queries.TopCategories(ctx.Request().Context(), f, limit)
	if err != nil {
		return svc.figureError(ctx, "top_categories", err)
	}

	resp := FigureResponse{
		Figure: charts.BarChart(table, "category", "total_revenue", "Top Categories by Revenue"),
	}
	if resp.Figure.Empty() {
		resp.Warning = "no data for the selected filters"
	}
	return ctx.JSON(http.StatusOK, resp)
}

func revenueTrendFigure(table *warehouse.Table) *charts.Figure {
	return charts.LineChart(table, "month_year",
		[]string{"total_sales", "avg_order_value"}, "Revenue Over Time")
}

func regionalHeatmapFigure(table *warehouse.Table) *charts.Figure {
	return charts.RegionalHeatmap(table, "Sales by Customer and Seller Region")
}

// customerSegmentsFigure labels each pie slice with its share of customers.
func customerSegmentsFigure(table *warehouse.Table) *charts.Figure {
	fig := charts.PieChart(table, "segment", "customers", "Customer Segments")
	for i := 0; i < table.NumRows(); i++ {
		fig.Series[0].Text = append(fig.Series[0].Text,
			charts.FormatPercentage(table.Float(i, "pct_of_customers")))
	}
	return fig
}

// summaryCards renders the headline metrics for the dashboard's metric row.
func summaryCards(s query.Summary) []MetricCard {
	return []MetricCard{
		{Label: "Total Orders", Value: strconv.FormatInt(s.TotalOrders, 10)},
		{Label: "Total Items", Value: strconv.FormatInt(s.TotalItems, 10)},
		{Label: "Total Sales", Value: charts.FormatCurrency(s.TotalSales)},
		{Label: "Avg Order Value", Value: charts.FormatCurrency(s.AvgOrderValue)},
	}
}
