package service

import (
	"bytes"
	"context"
	"testing"

	"opsdash/internal/dto"
	"opsdash/internal/infra"
	"opsdash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newTestExport(t *testing.T) ExportService {
	t.Helper()
	_, report := Clean(syntheticTables())
	return NewExportService(newTestDashboard(t, DashboardOptions{}), report)
}

func TestWorkbook_HasOneSheetPerView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExport(t).Workbook(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"KPIs", "Monthly orders", "Categories", "Lead time", "Ratings", "Funnel",
		"Days since last order", "Orders by state", "Top SKUs", "Category by month", "Cleaning",
	}, f.GetSheetList())

	rows, err := f.GetRows("Top SKUs")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Contains(t, rows[1], "Novel")

	kpi, err := f.GetCellValue("KPIs", "B2")
	require.NoError(t, err)
	assert.Equal(t, "60", kpi)
}

func TestReport_IsPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExport(t).Report(context.Background(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestChartPNG_RenderableViews(t *testing.T) {
	svc := newTestExport(t)
	for _, name := range []string{
		ViewMonthlyOrders,
		ViewCategoryDistribution,
		ViewLeadTime,
		ViewRatingDistribution,
		ViewCustomerFunnel,
		ViewDaysSinceLastOrder,
		ViewTopSKUs,
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, svc.ChartPNG(context.Background(), name, &buf))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestChartPNG_ViewsWithoutChart(t *testing.T) {
	svc := newTestExport(t)
	for _, name := range []string{ViewChoropleth, ViewCategoryHeatmap, ViewAverageOrderValue, ViewAverageRating, ViewTotalProfit} {
		err := svc.ChartPNG(context.Background(), name, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrNoChart, name)
	}
}

func TestChartPNG_UnknownView(t *testing.T) {
	err := newTestExport(t).ChartPNG(context.Background(), "nope", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestChartPNG_EmptyDataset(t *testing.T) {
	empty, err := NewDashboardService(model.NewDataset(model.Tables{}, ""), DashboardOptions{}).Build(context.Background())
	require.NoError(t, err)
	svc := NewExportService(&stubDashboard{resp: empty}, dto.CleaningReport{})

	err = svc.ChartPNG(context.Background(), ViewTopSKUs, &bytes.Buffer{})
	assert.ErrorIs(t, err, infra.ErrEmptyChart)
}
