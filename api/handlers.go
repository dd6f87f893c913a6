package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vitorbr/olist-analytics/query"
	"github.com/vitorbr/olist-analytics/warehouse"
)

// sampleRowLimit caps the /tables/:name/sample endpoint.
const sampleRowLimit = 50

// QueryResponse is the envelope every analytics endpoint answers with. A
// failed query still answers 200, with Error set and Data empty; an empty
// result for legitimate filters sets Warning instead.
type QueryResponse struct {
	Data    []map[string]any `json:"data"`
	Rows    int              `json:"rows"`
	Error   string           `json:"error,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

type queryRunner func(ctx context.Context, f query.Filters) (*warehouse.Table, error)

type limitQueryRunner func(ctx context.Context, f query.Filters, limit int) (*warehouse.Table, error)

func parseFilters(ctx echo.Context) (query.Filters, error) {
	f := query.Filters{
		Year:   ctx.QueryParam("year"),
		Region: ctx.QueryParam("region"),
	}
	if err := f.Validate(); err != nil {
		return query.Filters{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return f, nil
}

func (svc *APIService) handleQuery(name string, run queryRunner) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		f, err := parseFilters(ctx)
		if err != nil {
			return err
		}
		table, err := run(ctx.Request().Context(), f)
		return svc.respond(ctx, name, table, err)
	}
}

func parseLimit(ctx echo.Context) (int, error) {
	raw := ctx.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
	}
	return limit, nil
}

func (svc *APIService) handleLimitQuery(name string, run limitQueryRunner) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		f, err := parseFilters(ctx)
		if err != nil {
			return err
		}
		limit, err := parseLimit(ctx)
		if err != nil {
			return err
		}

		table, err := run(ctx.Request().Context(), f, limit)
		return svc.respond(ctx, name, table, err)
	}
}

// respond serializes a query result, as CSV when ?format=csv was asked for.
func (svc *APIService) respond(ctx echo.Context, name string, table *warehouse.Table, err error) error {
	if err != nil {
		svc.logger.Error(fmt.Sprintf("Query %s failed: %v", name, err))
		return ctx.JSON(http.StatusOK, QueryResponse{
			Data:  []map[string]any{},
			Error: fmt.Sprintf("failed to load %s", name),
		})
	}

	if ctx.QueryParam("format") == "csv" {
		ctx.Response().Header().Set(echo.HeaderContentType, "text/csv")
		ctx.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="%s.csv"`, name))
		ctx.Response().WriteHeader(http.StatusOK)
		return table.WriteCSV(ctx.Response())
	}

	resp := QueryResponse{
		Data: table.Records(),
		Rows: table.NumRows(),
	}
	if table.Empty() {
		resp.Warning = "no data for the selected filters"
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (svc *APIService) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": svc.backend,
	})
}

// MetricCard is a display-ready headline metric.
type MetricCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SummaryResponse struct {
	Summary *query.Summary `json:"summary,omitempty"`
	Cards   []MetricCard   `json:"cards,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (svc *APIService) summary(ctx echo.Context) error {
	f, err := parseFilters(ctx)
	if err != nil {
		return err
	}

	summary, err := svc.queries.DashboardSummary(ctx.Request().Context(), f)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("Dashboard summary failed: %v", err))
		return ctx.JSON(http.StatusOK, SummaryResponse{Error: "failed to load dashboard summary"})
	}
	return ctx.JSON(http.StatusOK, SummaryResponse{
		Summary: &summary,
		Cards:   summaryCards(summary),
	})
}

func (svc *APIService) validateMarts(ctx echo.Context) error {
	results := svc.queries.ValidateMarts(ctx.Request().Context())

	valid := true
	for _, ok := range results {
		valid = valid && ok
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"valid":  valid,
		"tables": results,
	})
}

func (svc *APIService) clearCache(ctx echo.Context) error {
	svc.queries.ClearCache()
	svc.logger.Info("Query cache cleared")
	return ctx.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

func (svc *APIService) listTables(ctx echo.Context) error {
	table, err := svc.client.ListTables(ctx.Request().Context())
	return svc.respond(ctx, "tables", table, err)
}

// tableSample returns the first rows of one mart table. The name must be
// part of the read contract; anything else is a 404.
func (svc *APIService) tableSample(ctx echo.Context) error {
	name := ctx.Param("name")
	if !slices.Contains(query.RequiredTables, name) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown table %q", name))
	}

	sqlText := fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d", svc.dataset, name, sampleRowLimit)
	table, err := svc.client.Query(ctx.Request().Context(), sqlText)
	return svc.respond(ctx, name, table, err)
}
