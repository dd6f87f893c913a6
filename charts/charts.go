// Package charts builds renderer-agnostic figure specifications from query
// result tables. The dashboard frontend turns them into actual plots; the
// palette and layout defaults match the house style.
package charts

import (
	"slices"

	"github.com/vitorbr/olist-analytics/warehouse"
)

// Color palettes, one slice per scheme.
var (
	PrimaryColors     = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"}
	SecondaryColors   = []string{"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"}
	DivergingColors   = []string{"#d73027", "#fc8d59", "#fee08b", "#d9ef8b", "#91cf60", "#1a9850"}
	QualitativeColors = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#ffff33"}
)

const defaultHeight = 400

// Figure is a declarative chart description.
type Figure struct {
	Kind       string   `json:"kind"` // line, bar, pie, heatmap
	Title      string   `json:"title"`
	XTitle     string   `json:"x_title,omitempty"`
	YTitle     string   `json:"y_title,omitempty"`
	Height     int      `json:"height"`
	ShowLegend bool     `json:"show_legend"`
	Series     []Series `json:"series,omitempty"`

	// heatmap only
	Z       [][]float64 `json:"z,omitempty"`
	XLabels []string    `json:"x_labels,omitempty"`
	YLabels []string    `json:"y_labels,omitempty"`
}

// Series is one trace of a figure. For pie charts X holds the slice labels
// and Y the slice values. Text carries optional per-point display labels.
type Series struct {
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
	Text  []string  `json:"text,omitempty"`
}

// Empty reports whether the figure carries no data points.
func (f *Figure) Empty() bool {
	if len(f.Z) > 0 {
		return false
	}
	for _, s := range f.Series {
		if len(s.Y) > 0 {
			return false
		}
	}
	return true
}

func columnSeries(table *warehouse.Table, name, xCol, yCol, color string) Series {
	s := Series{Name: name, Color: color}
	for i := 0; i < table.NumRows(); i++ {
		s.X = append(s.X, table.String(i, xCol))
		s.Y = append(s.Y, table.Float(i, yCol))
	}
	return s
}

// LineChart plots one column over another, one series per y column.
func LineChart(table *warehouse.Table, xCol string, yCols []string, title string) *Figure {
	fig := &Figure{
		Kind:       "line",
		Title:      title,
		Height:     defaultHeight,
		ShowLegend: len(yCols) > 1,
	}
	for i, yCol := range yCols {
		color := PrimaryColors[i%len(PrimaryColors)]
		fig.Series = append(fig.Series, columnSeries(table, yCol, xCol, yCol, color))
	}
	return fig
}

// BarChart plots one value column per category.
func BarChart(table *warehouse.Table, xCol, yCol, title string) *Figure {
	return &Figure{
		Kind:   "bar",
		Title:  title,
		Height: defaultHeight,
		Series: []Series{columnSeries(table, yCol, xCol, yCol, PrimaryColors[0])},
	}
}

// PieChart plots one value column sliced by a label column.
func PieChart(table *warehouse.Table, namesCol, valuesCol, title string) *Figure {
	return &Figure{
		Kind:       "pie",
		Title:      title,
		Height:     defaultHeight,
		ShowLegend: true,
		Series:     []Series{columnSeries(table, valuesCol, namesCol, valuesCol, "")},
	}
}

// RegionalHeatmap pivots the region flow matrix into a customer-region by
// seller-region grid of sales totals. Missing combinations are zero.
func RegionalHeatmap(table *warehouse.Table, title string) *Figure {
	fig := &Figure{
		Kind:   "heatmap",
		Title:  title,
		XTitle: "Seller Region",
		YTitle: "Customer Region",
		Height: 500,
	}
	if table.Empty() {
		return fig
	}

	var customers, sellers []string
	for i := 0; i < table.NumRows(); i++ {
		c := table.String(i, "customer_region")
		s := table.String(i, "seller_region")
		if !slices.Contains(customers, c) {
			customers = append(customers, c)
		}
		if !slices.Contains(sellers, s) {
			sellers = append(sellers, s)
		}
	}
	slices.Sort(customers)
	slices.Sort(sellers)

	z := make([][]float64, len(customers))
	for i := range z {
		z[i] = make([]float64, len(sellers))
	}
	for i := 0; i < table.NumRows(); i++ {
		row := slices.Index(customers, table.String(i, "customer_region"))
		col := slices.Index(sellers, table.String(i, "seller_region"))
		z[row][col] += table.Float(i, "total_sales")
	}

	fig.Z = z
	fig.XLabels = sellers
	fig.YLabels = customers
	return fig
}

// SalesTrendGrid is the four-panel monthly overview: sales, orders, average
// order value, and item counts over time.
func SalesTrendGrid(table *warehouse.Table) []*Figure {
	panels := []struct {
		col   string
		title string
	}{
		{"total_sales", "Total Sales"},
		{"total_orders", "Total Orders"},
		{"avg_order_value", "Average Order Value"},
		{"total_items", "Total Items"},
	}

	figures := make([]*Figure, 0, len(panels))
	for i, p := range panels {
		fig := &Figure{
			Kind:   "line",
			Title:  p.title,
			Height: 300,
			Series: []Series{
				columnSeries(table, p.title, "month_year", p.col, PrimaryColors[i%len(PrimaryColors)]),
			},
		}
		figures = append(figures, fig)
	}
	return figures
}
