package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"opsdash/internal/dto"
	"opsdash/internal/infra"
)

// ErrNoChart is returned by ChartPNG for views without a PNG rendering
// (the choropleth, the heatmap and the three KPIs).
var ErrNoChart = errors.New("view has no chart rendering")

// ExportService renders the dashboard into downloadable documents.
type ExportService interface {
	// Workbook writes an .xlsx file with one sheet per tabular view.
	Workbook(ctx context.Context, w io.Writer) error
	// Report writes a PDF with the KPIs, the funnel, the top SKUs and the
	// cleaning summary.
	Report(ctx context.Context, w io.Writer) error
	// ChartPNG writes the named view as a PNG image.
	ChartPNG(ctx context.Context, name string, w io.Writer) error
}

type exportService struct {
	dashboard DashboardService
	cleaning  dto.CleaningReport
}

func NewExportService(dashboard DashboardService, cleaning dto.CleaningReport) ExportService {
	return &exportService{dashboard: dashboard, cleaning: cleaning}
}

// ── Workbook ──────────────────────────────────────────────────────────────────

func (s *exportService) Workbook(ctx context.Context, w io.Writer) error {
	d, err := s.dashboard.Build(ctx)
	if err != nil {
		return err
	}

	sheets := []infra.Sheet{
		{
			Name:   "KPIs",
			Header: []string{"Indicator", "Value"},
			Rows: [][]any{
				{d.AverageOrderValue.Title, d.AverageOrderValue.Value.InexactFloat64()},
				{d.AverageRating.Title, d.AverageRating.Value.InexactFloat64()},
				{d.TotalProfit.Title, d.TotalProfit.Value.InexactFloat64()},
			},
		},
		monthlySheet(d.MonthlyOrders),
		{Name: "Categories", Header: []string{"Category", "Order lines"}, Rows: labeledRows(d.CategoryDistribution.Slices)},
		leadTimeSheet(d.LeadTime),
		ratingsSheet(d.RatingDistribution),
		funnelSheet(d.Funnel),
		recencySheet(d.Recency),
		stateSheet(d.Choropleth),
		topSKUSheet(d.TopSKUs),
		heatmapSheet(d.Heatmap),
		cleaningSheet(s.cleaning),
	}
	return infra.WriteWorkbook(w, sheets)
}

func monthlySheet(v dto.MonthlyOrdersView) infra.Sheet {
	sh := infra.Sheet{Name: "Monthly orders", Header: []string{"Month", "Month end", "Orders"}}
	for _, p := range v.Points {
		sh.Rows = append(sh.Rows, []any{p.Month, p.MonthEnd, p.Orders})
	}
	return sh
}

func labeledRows(counts []dto.LabeledCount) [][]any {
	rows := make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{c.Label, c.Count})
	}
	return rows
}

func leadTimeSheet(v dto.LeadTimeView) infra.Sheet {
	sh := infra.Sheet{Name: "Lead time", Header: []string{"Product", "Lead time (days)", "Orders"}}
	for _, p := range v.Points {
		sh.Rows = append(sh.Rows, []any{p.ProductID, p.LeadTimeDays, p.Orders})
	}
	return sh
}

func ratingsSheet(v dto.RatingDistributionView) infra.Sheet {
	sh := infra.Sheet{Name: "Ratings", Header: []string{"Rating", "Reviews"}}
	for _, r := range v.Ratings {
		sh.Rows = append(sh.Rows, []any{r.Rating, r.Count})
	}
	return sh
}

func funnelSheet(v dto.FunnelView) infra.Sheet {
	sh := infra.Sheet{Name: "Funnel", Header: []string{"Stage", "Customers"}}
	for _, st := range v.Stages {
		sh.Rows = append(sh.Rows, []any{st.Stage, st.Count})
	}
	return sh
}

func recencySheet(v dto.RecencyView) infra.Sheet {
	sh := infra.Sheet{Name: "Days since last order", Header: []string{"From (days)", "To (days)", "Customers"}}
	for _, b := range v.Bins {
		sh.Rows = append(sh.Rows, []any{b.Start, b.End, b.Count})
	}
	return sh
}

func stateSheet(v dto.ChoroplethResponse) infra.Sheet {
	sh := infra.Sheet{Name: "Orders by state", Header: []string{"State", "Orders"}}
	for _, st := range v.States {
		sh.Rows = append(sh.Rows, []any{st.State, st.Count})
	}
	return sh
}

func topSKUSheet(v dto.TopSKUsView) infra.Sheet {
	sh := infra.Sheet{Name: "Top SKUs", Header: []string{"Rank", "Product ID", "Product", "Category", "Units sold"}}
	for _, it := range v.Items {
		sh.Rows = append(sh.Rows, []any{it.Rank, it.ProductID, it.ProductName, it.CategoryName, it.Quantity})
	}
	return sh
}

func heatmapSheet(v dto.HeatmapView) infra.Sheet {
	sh := infra.Sheet{Name: "Category by month", Header: append([]string{"Category"}, v.Months...)}
	for i, name := range v.Categories {
		row := make([]any, 0, len(v.Months)+1)
		row = append(row, name)
		for _, n := range v.Counts[i] {
			row = append(row, n)
		}
		sh.Rows = append(sh.Rows, row)
	}
	return sh
}

func cleaningSheet(r dto.CleaningReport) infra.Sheet {
	sh := infra.Sheet{
		Name:   "Cleaning",
		Header: []string{"Table", "Column", "Values", "Q1", "Q3", "Lower", "Upper", "Clamped low", "Clamped high"},
	}
	for _, c := range r.Columns {
		sh.Rows = append(sh.Rows, []any{c.Table, c.Column, c.Values, c.Q1, c.Q3, c.Lower, c.Upper, c.ClampedLow, c.ClampedHigh})
	}
	sh.Rows = append(sh.Rows, []any{"orders", "zero amount dropped", r.ZeroAmountOrdersDropped})
	return sh
}

// ── Report ────────────────────────────────────────────────────────────────────

func (s *exportService) Report(ctx context.Context, w io.Writer) error {
	d, err := s.dashboard.Build(ctx)
	if err != nil {
		return err
	}
	generated, err := time.Parse(time.RFC3339, d.GeneratedAt)
	if err != nil {
		generated = time.Now()
	}

	funnel := infra.ReportTable{Title: "Customer funnel", Header: []string{"Stage", "Customers"}, Widths: []float64{0.7, 0.3}}
	for _, st := range d.Funnel.Stages {
		funnel.Rows = append(funnel.Rows, []string{st.Stage, strconv.Itoa(st.Count)})
	}

	top := infra.ReportTable{
		Title:  "Top 10 SKUs by quantity",
		Header: []string{"Product", "Category", "Units sold"},
		Widths: []float64{0.5, 0.3, 0.2},
	}
	for _, it := range d.TopSKUs.Items {
		top.Rows = append(top.Rows, []string{it.ProductName, it.CategoryName, strconv.FormatInt(it.Quantity, 10)})
	}

	cleaning := infra.ReportTable{
		Title:  "Outlier capping",
		Header: []string{"Column", "Lower", "Upper", "Clamped"},
		Widths: []float64{0.4, 0.2, 0.2, 0.2},
	}
	for _, c := range s.cleaning.Columns {
		cleaning.Rows = append(cleaning.Rows, []string{
			c.Table + "." + c.Column,
			strconv.FormatFloat(c.Lower, 'f', 2, 64),
			strconv.FormatFloat(c.Upper, 'f', 2, 64),
			strconv.Itoa(c.ClampedLow + c.ClampedHigh),
		})
	}
	cleaning.Rows = append(cleaning.Rows, []string{"zero-amount orders dropped", "", "", strconv.Itoa(s.cleaning.ZeroAmountOrdersDropped)})

	return infra.WriteReportPDF(w, infra.Report{
		Title:       "Executive KPI Dashboard",
		Subtitle:    "E-Commerce Performance Analytics",
		GeneratedAt: generated,
		KPIs: []infra.KPILine{
			{Label: d.AverageOrderValue.Title, Value: d.AverageOrderValue.Formatted},
			{Label: d.AverageRating.Title, Value: d.AverageRating.Formatted},
			{Label: d.TotalProfit.Title, Value: d.TotalProfit.Formatted},
		},
		Tables: []infra.ReportTable{funnel, top, cleaning},
	})
}

// ── Charts ────────────────────────────────────────────────────────────────────

func (s *exportService) ChartPNG(ctx context.Context, name string, w io.Writer) error {
	v, err := s.dashboard.View(ctx, name)
	if err != nil {
		return err
	}

	switch view := v.(type) {
	case dto.MonthlyOrdersView:
		xs := make([]time.Time, 0, len(view.Points))
		ys := make([]float64, 0, len(view.Points))
		for _, p := range view.Points {
			t, err := time.Parse(monthLayout, p.Month)
			if err != nil {
				return fmt.Errorf("monthly point %q: %w", p.Month, err)
			}
			xs = append(xs, t)
			ys = append(ys, float64(p.Orders))
		}
		return infra.RenderLinePNG(w, "Monthly Order Volume", xs, ys)

	case dto.CategoryDistributionView:
		values := make([]infra.ChartValue, 0, len(view.Slices))
		for _, sl := range view.Slices {
			values = append(values, infra.ChartValue{Label: sl.Label, Value: float64(sl.Count)})
		}
		return infra.RenderPiePNG(w, "Category Distribution by Order Volume", values)

	case dto.LeadTimeView:
		xs := make([]float64, 0, len(view.Points))
		ys := make([]float64, 0, len(view.Points))
		for _, p := range view.Points {
			xs = append(xs, float64(p.LeadTimeDays))
			ys = append(ys, float64(p.Orders))
		}
		var fit func(float64) float64
		if view.Trend != nil {
			a, b := view.Trend.Intercept, view.Trend.Slope
			fit = func(x float64) float64 { return a + b*x }
		}
		return infra.RenderScatterPNG(w, "Product Order Volume vs Supplier Lead Time", xs, ys, fit)

	case dto.RatingDistributionView:
		values := make([]infra.ChartValue, 0, len(view.Ratings))
		for _, r := range view.Ratings {
			values = append(values, infra.ChartValue{Label: strconv.Itoa(int(r.Rating)), Value: float64(r.Count)})
		}
		return infra.RenderBarPNG(w, "Distribution of Product Review Ratings", values)

	case dto.FunnelView:
		values := make([]infra.ChartValue, 0, len(view.Stages))
		for _, st := range view.Stages {
			values = append(values, infra.ChartValue{Label: st.Stage, Value: float64(st.Count)})
		}
		return infra.RenderBarPNG(w, "Customer Engagement Funnel", values)

	case dto.RecencyView:
		values := make([]infra.ChartValue, 0, len(view.Bins))
		for _, b := range view.Bins {
			values = append(values, infra.ChartValue{Label: strconv.FormatFloat(b.Start, 'f', 0, 64), Value: float64(b.Count)})
		}
		return infra.RenderBarPNG(w, "Days Since Last Order", values)

	case dto.TopSKUsView:
		values := make([]infra.ChartValue, 0, len(view.Items))
		for _, it := range view.Items {
			values = append(values, infra.ChartValue{Label: it.ProductName, Value: float64(it.Quantity)})
		}
		return infra.RenderBarPNG(w, "Top 10 Selling SKUs by Quantity", values)

	default:
		return fmt.Errorf("%w: %q", ErrNoChart, name)
	}
}
