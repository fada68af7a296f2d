package service

import (
	"math"
	"sort"
	"time"

	"opsdash/internal/dto"
	"opsdash/internal/model"
	"opsdash/internal/stats"

	"github.com/shopspring/decimal"
)

// Every function in this file is a pure aggregation over the cleaned
// Dataset. None of them fails: empty joins yield empty series and zero
// scalars.

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"

	// RecencyBins is the number of equal-width buckets of the
	// days-since-last-order histogram.
	RecencyBins = 30

	topSKULimit = 10
)

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ── Monthly order volume ──────────────────────────────────────────────────────

func monthlyOrders(ds *model.Dataset, overlay []OverlayEntry) dto.MonthlyOrdersView {
	counts := make(map[time.Time]int)
	var first, last time.Time
	for _, o := range ds.ActiveOrders() {
		m := monthStart(o.OrderDate)
		counts[m]++
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	view := dto.MonthlyOrdersView{
		Points:     []dto.MonthlyPoint{},
		Promotions: promotionRanges(ds, overlay),
	}
	if len(counts) == 0 {
		return view
	}
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		view.Points = append(view.Points, dto.MonthlyPoint{
			Month:    m.Format(monthLayout),
			MonthEnd: m.AddDate(0, 1, -1).Format(dayLayout),
			Orders:   counts[m],
		})
	}
	return view
}

// promotionRanges resolves the overlay by promotion name. Names that are not
// in the promotions table are left out; OverlayWarnings reports them.
func promotionRanges(ds *model.Dataset, overlay []OverlayEntry) []dto.PromotionRange {
	out := make([]dto.PromotionRange, 0, len(overlay))
	for _, e := range overlay {
		p, ok := findPromotion(ds, e.Name)
		if !ok {
			continue
		}
		out = append(out, dto.PromotionRange{
			Name:  e.Name,
			Start: p.StartDate.Format(dayLayout),
			End:   p.EndDate.Format(dayLayout),
			Color: e.Color,
		})
	}
	return out
}

func findPromotion(ds *model.Dataset, name string) (model.Promotion, bool) {
	for _, p := range ds.Promotions() {
		if p.Name == name {
			return p, true
		}
	}
	return model.Promotion{}, false
}

// ── Category distribution ─────────────────────────────────────────────────────

func categoryDistribution(ds *model.Dataset) dto.CategoryDistributionView {
	counts := make(map[string]int)
	for _, it := range ds.OrderItems() {
		if c, ok := itemCategory(ds, it); ok {
			counts[c.Name]++
		}
	}

	view := dto.CategoryDistributionView{Slices: make([]dto.LabeledCount, 0, len(counts))}
	for name, n := range counts {
		view.Slices = append(view.Slices, dto.LabeledCount{Label: name, Count: n})
	}
	sort.Slice(view.Slices, func(i, j int) bool { return view.Slices[i].Label < view.Slices[j].Label })
	return view
}

func itemCategory(ds *model.Dataset, it model.OrderItem) (*model.Category, bool) {
	p, ok := ds.Product(it.ProductID)
	if !ok {
		return nil, false
	}
	return ds.Category(p.CategoryID)
}

// ── Lead time vs orders ───────────────────────────────────────────────────────

func leadTime(ds *model.Dataset) dto.LeadTimeView {
	leads := make(map[int64][]int32)
	for _, ps := range ds.ProductSuppliers() {
		leads[ps.ProductID] = append(leads[ps.ProductID], ps.LeadTimeDays)
	}

	type key struct {
		product int64
		lead    int32
	}
	counts := make(map[key]int)
	for _, it := range ds.OrderItems() {
		// One item counts once per supplier link of its product.
		for _, l := range leads[it.ProductID] {
			counts[key{it.ProductID, l}]++
		}
	}

	view := dto.LeadTimeView{Points: make([]dto.LeadTimePoint, 0, len(counts))}
	for k, n := range counts {
		view.Points = append(view.Points, dto.LeadTimePoint{ProductID: k.product, LeadTimeDays: k.lead, Orders: n})
	}
	sort.Slice(view.Points, func(i, j int) bool {
		a, b := view.Points[i], view.Points[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.LeadTimeDays < b.LeadTimeDays
	})

	xs := make([]float64, len(view.Points))
	ys := make([]float64, len(view.Points))
	for i, p := range view.Points {
		xs[i] = float64(p.LeadTimeDays)
		ys[i] = float64(p.Orders)
	}
	if line, ok := stats.LeastSquares(xs, ys); ok {
		lo, hi := xs[0], xs[0]
		for _, x := range xs {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
		view.Trend = &dto.TrendLine{
			Intercept: line.Intercept,
			Slope:     line.Slope,
			X0:        lo,
			Y0:        line.At(lo),
			X1:        hi,
			Y1:        line.At(hi),
		}
	}
	return view
}

// ── Review ratings ────────────────────────────────────────────────────────────

func ratingDistribution(ds *model.Dataset) dto.RatingDistributionView {
	counts := map[int32]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ds.Reviews() {
		counts[r.Rating]++
	}
	view := dto.RatingDistributionView{Ratings: make([]dto.RatingCount, 0, len(counts))}
	for rating, n := range counts {
		view.Ratings = append(view.Ratings, dto.RatingCount{Rating: rating, Count: n})
	}
	sort.Slice(view.Ratings, func(i, j int) bool { return view.Ratings[i].Rating < view.Ratings[j].Rating })
	return view
}

// ── Customer funnel ───────────────────────────────────────────────────────────

// Funnel stage labels, in display order.
const (
	StageRegistered = "Registered"
	StagePlaced     = "Placed Orders"
	StageRepeated   = "Repeated Customers"
	StageReviewers  = "Reviewers"
)

func customerFunnel(ds *model.Dataset) dto.FunnelView {
	perCustomer := make(map[int64]int)
	for _, o := range ds.ActiveOrders() {
		perCustomer[o.CustomerID]++
	}
	repeated := 0
	for _, n := range perCustomer {
		if n > 1 {
			repeated++
		}
	}
	reviewers := make(map[int64]struct{})
	for _, r := range ds.Reviews() {
		reviewers[r.CustomerID] = struct{}{}
	}

	return dto.FunnelView{Stages: []dto.FunnelStage{
		{Stage: StageRegistered, Count: len(ds.Customers())},
		{Stage: StagePlaced, Count: len(perCustomer)},
		{Stage: StageRepeated, Count: repeated},
		{Stage: StageReviewers, Count: len(reviewers)},
	}}
}

// ── Days since last order ─────────────────────────────────────────────────────

func daysSinceLastOrder(ds *model.Dataset, today time.Time) dto.RecencyView {
	last := make(map[int64]time.Time)
	for _, o := range ds.ActiveOrders() {
		if t, ok := last[o.CustomerID]; !ok || o.OrderDate.After(t) {
			last[o.CustomerID] = o.OrderDate
		}
	}

	days := make([]float64, 0, len(last))
	for _, t := range last {
		days = append(days, math.Floor(today.Sub(t).Hours()/24))
	}

	view := dto.RecencyView{
		ReferenceDate: today.Format(dayLayout),
		Customers:     len(days),
		Bins:          []dto.HistogramBin{},
	}
	for _, b := range stats.Histogram(days, RecencyBins) {
		view.Bins = append(view.Bins, dto.HistogramBin{Start: b.Start, End: b.End, Count: b.Count})
	}
	return view
}

// ── Choropleth ────────────────────────────────────────────────────────────────

func stateCounts(ds *model.Dataset, view MapView) dto.ChoroplethResponse {
	counts := make(map[model.StateCode]int)
	switch view {
	case MapCustomers:
		for _, c := range ds.Customers() {
			if c.State != "" {
				counts[c.State]++
			}
		}
	default:
		for _, o := range ds.ActiveOrders() {
			if o.ShippingState != "" {
				counts[o.ShippingState]++
			}
		}
	}

	resp := dto.ChoroplethResponse{
		View:   string(view),
		Title:  view.Title(),
		States: make([]dto.StateCount, 0, len(counts)),
	}
	for st, n := range counts {
		resp.States = append(resp.States, dto.StateCount{State: string(st), Count: n})
	}
	sort.Slice(resp.States, func(i, j int) bool { return resp.States[i].State < resp.States[j].State })
	return resp
}

// ── KPIs ──────────────────────────────────────────────────────────────────────

func averageOrderValue(ds *model.Dataset) dto.KPIView {
	sum, n := decimal.Zero, int64(0)
	for _, o := range ds.ActiveOrders() {
		if math.IsNaN(o.TotalAmount) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(o.TotalAmount))
		n++
	}
	value := decimal.Zero
	if n > 0 {
		value = sum.Div(decimal.NewFromInt(n))
	}
	return dto.KPIView{
		Title:     "Average Order Value (AOV)",
		Value:     value,
		Formatted: "$" + value.StringFixed(2),
	}
}

func averageRating(ds *model.Dataset) dto.KPIView {
	reviews := ds.Reviews()
	value := decimal.Zero
	if len(reviews) > 0 {
		var sum int64
		for _, r := range reviews {
			sum += int64(r.Rating)
		}
		value = decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(reviews))))
	}
	return dto.KPIView{
		Title:     "Average Stars",
		Value:     value,
		Formatted: value.StringFixed(2),
	}
}

// totalProfit is revenue minus supply cost over the items of active orders.
// Items whose product has no supplier link add revenue only.
func totalProfit(ds *model.Dataset, policy SupplierPolicy) dto.KPIView {
	supply := supplyPrices(ds.ProductSuppliers(), policy)

	revenue, cost := decimal.Zero, decimal.Zero
	for _, it := range ds.OrderItems() {
		o, ok := ds.Order(it.OrderID)
		if !ok || o.IsCancelled() {
			continue
		}
		qty := decimal.NewFromInt32(it.Quantity)
		if !math.IsNaN(it.UnitPrice) {
			revenue = revenue.Add(qty.Mul(decimal.NewFromFloat(it.UnitPrice)))
		}
		if price, ok := supply[it.ProductID]; ok && !math.IsNaN(price) {
			cost = cost.Add(qty.Mul(decimal.NewFromFloat(price)))
		}
	}

	value := revenue.Sub(cost)
	return dto.KPIView{
		Title:     "Total Profit",
		Value:     value,
		Formatted: "$" + value.StringFixed(2),
	}
}

// supplyPrices picks one supply price per product according to policy.
func supplyPrices(links []model.ProductSupplier, policy SupplierPolicy) map[int64]float64 {
	out := make(map[int64]float64)
	for _, ps := range links {
		cur, seen := out[ps.ProductID]
		switch {
		case !seen:
			out[ps.ProductID] = ps.SupplyPrice
		case policy == SupplierCheapest && (math.IsNaN(cur) || ps.SupplyPrice < cur):
			out[ps.ProductID] = ps.SupplyPrice
		}
	}
	return out
}

// ── Top SKUs ──────────────────────────────────────────────────────────────────

func topSKUs(ds *model.Dataset) dto.TopSKUsView {
	totals := make(map[int64]int64)
	for _, it := range ds.OrderItems() {
		if _, ok := itemCategory(ds, it); ok {
			totals[it.ProductID] += int64(it.Quantity)
		}
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topSKULimit {
		ids = ids[:topSKULimit]
	}

	view := dto.TopSKUsView{Items: make([]dto.TopSKU, 0, len(ids))}
	for i, id := range ids {
		p, _ := ds.Product(id)
		c, _ := ds.Category(p.CategoryID)
		view.Items = append(view.Items, dto.TopSKU{
			Rank:         i + 1,
			ProductID:    id,
			ProductName:  p.Name,
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Quantity:     totals[id],
		})
	}
	return view
}

// ── Category × month heatmap ──────────────────────────────────────────────────

func categoryHeatmap(ds *model.Dataset) dto.HeatmapView {
	type cell struct {
		category string
		month    time.Time
	}
	counts := make(map[cell]int)
	categories := make(map[string]struct{})
	months := make(map[time.Time]struct{})

	for _, it := range ds.OrderItems() {
		c, ok := itemCategory(ds, it)
		if !ok {
			continue
		}
		o, ok := ds.Order(it.OrderID)
		if !ok || o.IsCancelled() {
			continue
		}
		m := monthStart(o.OrderDate)
		counts[cell{c.Name, m}]++
		categories[c.Name] = struct{}{}
		months[m] = struct{}{}
	}

	view := dto.HeatmapView{
		Categories: make([]string, 0, len(categories)),
		Months:     make([]string, 0, len(months)),
		Counts:     make([][]int, 0, len(categories)),
	}
	for name := range categories {
		view.Categories = append(view.Categories, name)
	}
	sort.Strings(view.Categories)

	ordered := make([]time.Time, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
	for _, m := range ordered {
		view.Months = append(view.Months, m.Format(monthLayout))
	}

	for _, name := range view.Categories {
		row := make([]int, len(ordered))
		for j, m := range ordered {
			row[j] = counts[cell{name, m}]
		}
		view.Counts = append(view.Counts, row)
	}
	return view
}
