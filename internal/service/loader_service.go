package service

import (
	"context"
	"fmt"
	"math"

	"opsdash/internal/dto"
	"opsdash/internal/model"
	"opsdash/internal/repository"
	"opsdash/internal/stats"

	"github.com/rs/zerolog/log"
)

// LoaderService turns the raw source tables into the cleaned Dataset.
type LoaderService interface {
	LoadAndClean(ctx context.Context) (*model.Dataset, dto.CleaningReport, error)
}

type loaderService struct {
	repo repository.DatasetRepository
}

func NewLoaderService(repo repository.DatasetRepository) LoaderService {
	return &loaderService{repo: repo}
}

func (s *loaderService) LoadAndClean(ctx context.Context) (*model.Dataset, dto.CleaningReport, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, dto.CleaningReport{}, fmt.Errorf("load dataset: %w", err)
	}

	cleaned, report := Clean(snap.Tables)
	for _, c := range report.Columns {
		log.Info().
			Str("table", c.Table).
			Str("column", c.Column).
			Int("values", c.Values).
			Float64("lower", c.Lower).
			Float64("upper", c.Upper).
			Int("clamped_low", c.ClampedLow).
			Int("clamped_high", c.ClampedHigh).
			Msg("outliers capped")
	}
	log.Info().Int("dropped", report.ZeroAmountOrdersDropped).Msg("zero-amount orders removed")

	return model.NewDataset(cleaned, snap.Fingerprint), report, nil
}

// Clean caps outliers and removes zero-amount orders. The input slices are
// not modified; the three touched tables are copied first.
//
// Steps, in order: cap order_items.unit_price and recompute total_price,
// cap orders.total_amount, cap product_suppliers.supply_price, then drop
// every order whose capped total_amount is exactly zero.
func Clean(t model.Tables) (model.Tables, dto.CleaningReport) {
	var report dto.CleaningReport

	items := append([]model.OrderItem(nil), t.OrderItems...)
	report.Columns = append(report.Columns, capColumn(
		model.OrderItem{}.TableName(), "unit_price", len(items),
		func(i int) *float64 { return &items[i].UnitPrice },
	))
	for i := range items {
		items[i].RecomputeTotal()
	}

	orders := append([]model.Order(nil), t.Orders...)
	report.Columns = append(report.Columns, capColumn(
		model.Order{}.TableName(), "total_amount", len(orders),
		func(i int) *float64 { return &orders[i].TotalAmount },
	))

	links := append([]model.ProductSupplier(nil), t.ProductSuppliers...)
	report.Columns = append(report.Columns, capColumn(
		model.ProductSupplier{}.TableName(), "supply_price", len(links),
		func(i int) *float64 { return &links[i].SupplyPrice },
	))

	kept := orders[:0]
	for _, o := range orders {
		if o.TotalAmount == 0 {
			report.ZeroAmountOrdersDropped++
			continue
		}
		kept = append(kept, o)
	}

	t.OrderItems = items
	t.Orders = kept
	t.ProductSuppliers = links
	return t, report
}

// capColumn clamps the n values reachable through at onto their IQR fence.
// A column with no non-null values is left alone.
func capColumn(table, column string, n int, at func(i int) *float64) dto.ColumnCleaning {
	values := make([]float64, n)
	for i := range values {
		values[i] = *at(i)
	}

	res := dto.ColumnCleaning{Table: table, Column: column}
	fence, ok := stats.IQRFence(values)
	if !ok {
		return res
	}
	res.Values = len(stats.NonNull(values))
	res.Q1, res.Q3, res.Lower, res.Upper = fence.Q1, fence.Q3, fence.Lower, fence.Upper

	for i := 0; i < n; i++ {
		p := at(i)
		if math.IsNaN(*p) {
			continue
		}
		switch {
		case *p < fence.Lower:
			res.ClampedLow++
		case *p > fence.Upper:
			res.ClampedHigh++
		default:
			continue
		}
		*p = fence.Clamp(*p)
	}
	return res
}
