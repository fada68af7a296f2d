package infra

// chart_png.go: server-side PNG rendering with wcharczuk/go-chart for the
// views that have a plain bar, pie, line or scatter shape.

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyChart is returned when the data has nothing to draw.
var ErrEmptyChart = errors.New("nothing to chart")

const (
	chartWidth  = 1024
	chartHeight = 500
)

var (
	colorPrimary = drawing.ColorFromHex("005B99")
	colorAccent  = drawing.ColorFromHex("FF9900")
)

// ChartValue is one labelled bar or slice.
type ChartValue struct {
	Label string
	Value float64
}

func allZero(values []ChartValue) bool {
	for _, v := range values {
		if v.Value != 0 {
			return false
		}
	}
	return true
}

// RenderBarPNG draws one bar per value.
func RenderBarPNG(w io.Writer, title string, values []ChartValue) error {
	if len(values) == 0 || allZero(values) {
		return ErrEmptyChart
	}
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		bars[i] = chart.Value{Label: v.Label, Value: v.Value, Style: chart.Style{FillColor: colorPrimary, StrokeColor: colorPrimary}}
	}
	barWidth := (chartWidth - 120) / len(values)
	if barWidth > 60 {
		barWidth = 60
	}
	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// RenderPiePNG draws one slice per value.
func RenderPiePNG(w io.Writer, title string, values []ChartValue) error {
	if len(values) == 0 || allZero(values) {
		return ErrEmptyChart
	}
	slices := make([]chart.Value, len(values))
	for i, v := range values {
		slices[i] = chart.Value{Label: v.Label, Value: v.Value}
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: slices,
	}
	if err := pc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

// RenderLinePNG draws a time series. Fewer than two points are drawn as bars.
func RenderLinePNG(w io.Writer, title string, xs []time.Time, ys []float64) error {
	if len(xs) < 2 {
		values := make([]ChartValue, len(xs))
		for i := range xs {
			values[i] = ChartValue{Label: xs[i].Format("2006-01"), Value: ys[i]}
		}
		return RenderBarPNG(w, title, values)
	}
	ch := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01")},
		YAxis:      chart.YAxis{Range: yRange(ys)},
		Series: []chart.Series{chart.TimeSeries{
			Name:    title,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: colorPrimary, StrokeWidth: 2.5, DotColor: colorPrimary, DotWidth: 4},
		}},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

// RenderScatterPNG draws points and, when fit is not nil, the fitted line
// across the x range. At least two distinct x values are required.
func RenderScatterPNG(w io.Writer, title string, xs, ys []float64, fit func(float64) float64) error {
	if len(xs) == 0 {
		return ErrEmptyChart
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	if lo == hi {
		return ErrEmptyChart
	}

	series := []chart.Series{chart.ContinuousSeries{
		Name:    "orders",
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: colorPrimary},
	}}
	if fit != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    "trend",
			XValues: []float64{lo, hi},
			YValues: []float64{fit(lo), fit(hi)},
			Style:   chart.Style{StrokeColor: colorAccent, StrokeWidth: 2},
		})
	}
	ch := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      chartWidth,
		Height:     chartHeight,
		YAxis:      chart.YAxis{Range: yRange(ys)},
		Series:     series,
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter chart: %w", err)
	}
	return nil
}

// yRange pins the y axis to [0, max] so a flat series still has a height.
func yRange(ys []float64) *chart.ContinuousRange {
	top := 1.0
	for _, y := range ys {
		top = math.Max(top, y)
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}
