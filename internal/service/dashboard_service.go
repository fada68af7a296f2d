package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"opsdash/internal/dto"
	"opsdash/internal/infra"
	"opsdash/internal/metrics"
	"opsdash/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownView is returned for a view name outside ViewNames.
var ErrUnknownView = errors.New("unknown view")

// Stable view identifiers used in URLs and exports.
const (
	ViewMonthlyOrders        = "monthly-orders"
	ViewCategoryDistribution = "category-distribution"
	ViewLeadTime             = "lead-time"
	ViewRatingDistribution   = "rating-distribution"
	ViewCustomerFunnel       = "customer-funnel"
	ViewDaysSinceLastOrder   = "days-since-last-order"
	ViewChoropleth           = "choropleth"
	ViewAverageOrderValue    = "average-order-value"
	ViewTopSKUs              = "top-skus"
	ViewCategoryHeatmap      = "category-heatmap"
	ViewAverageRating        = "average-rating"
	ViewTotalProfit          = "total-profit"
)

// ViewNames lists the twelve views in page order.
var ViewNames = []string{
	ViewMonthlyOrders,
	ViewCategoryDistribution,
	ViewLeadTime,
	ViewRatingDistribution,
	ViewCustomerFunnel,
	ViewDaysSinceLastOrder,
	ViewChoropleth,
	ViewAverageOrderValue,
	ViewTopSKUs,
	ViewCategoryHeatmap,
	ViewAverageRating,
	ViewTotalProfit,
}

// PayloadCache is the optional shared cache of rendered view payloads.
// infra.ViewCache implements it.
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Status() string
}

var _ PayloadCache = (*infra.ViewCache)(nil)

// DashboardOptions configures a DashboardService. Zero values are usable:
// first-supplier policy, no overlay, wall clock, no cache, no metrics.
type DashboardOptions struct {
	SupplierPolicy SupplierPolicy
	Overlay        []OverlayEntry
	Now            func() time.Time
	Cache          PayloadCache
	Metrics        *metrics.Metrics
}

// DashboardService computes the dashboard views from a cleaned Dataset.
type DashboardService interface {
	// Build returns all twelve views. The first call computes them; later
	// calls return the same result.
	Build(ctx context.Context) (*dto.DashboardResponse, error)
	// View returns one view by its stable name.
	View(ctx context.Context, name string) (any, error)
	// Choropleth applies a toggle selection to the current state and returns
	// the state-count payload of the resulting state. On ErrInvalidSelection
	// the payload is that of current.
	Choropleth(ctx context.Context, current, requested string) (dto.ChoroplethResponse, error)
	// CacheStatus is "disabled" or the cache breaker state.
	CacheStatus() string
}

type dashboardService struct {
	ds   *model.Dataset
	opts DashboardOptions

	mu    sync.Mutex
	built *dto.DashboardResponse
}

func NewDashboardService(ds *model.Dataset, opts DashboardOptions) DashboardService {
	if opts.SupplierPolicy == "" {
		opts.SupplierPolicy = SupplierFirst
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &dashboardService{ds: ds, opts: opts}
}

// ── Build ─────────────────────────────────────────────────────────────────────

func (s *dashboardService) Build(ctx context.Context) (*dto.DashboardResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built != nil {
		return s.built, nil
	}

	start := time.Now()
	now := s.opts.Now()
	resp := &dto.DashboardResponse{
		Fingerprint: s.ds.Fingerprint(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}

	// Each view writes only its own field.
	g, gctx := errgroup.WithContext(ctx)
	run := func(compute func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			compute()
			return nil
		})
	}
	run(func() { resp.MonthlyOrders = monthlyOrders(s.ds, s.opts.Overlay) })
	run(func() { resp.CategoryDistribution = categoryDistribution(s.ds) })
	run(func() { resp.LeadTime = leadTime(s.ds) })
	run(func() { resp.RatingDistribution = ratingDistribution(s.ds) })
	run(func() { resp.Funnel = customerFunnel(s.ds) })
	run(func() { resp.Recency = daysSinceLastOrder(s.ds, now) })
	run(func() { resp.Choropleth = stateCounts(s.ds, InitialMapView) })
	run(func() { resp.AverageOrderValue = averageOrderValue(s.ds) })
	run(func() { resp.TopSKUs = topSKUs(s.ds) })
	run(func() { resp.Heatmap = categoryHeatmap(s.ds) })
	run(func() { resp.AverageRating = averageRating(s.ds) })
	run(func() { resp.TotalProfit = totalProfit(s.ds, s.opts.SupplierPolicy) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}

	s.opts.Metrics.ObserveBuild(time.Since(start))
	log.Info().
		Str("fingerprint", resp.Fingerprint).
		Dur("elapsed", time.Since(start)).
		Msg("dashboard views computed")

	s.built = resp
	return resp, nil
}

// ── View ──────────────────────────────────────────────────────────────────────

func (s *dashboardService) View(ctx context.Context, name string) (any, error) {
	d, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	switch name {
	case ViewMonthlyOrders:
		return d.MonthlyOrders, nil
	case ViewCategoryDistribution:
		return d.CategoryDistribution, nil
	case ViewLeadTime:
		return d.LeadTime, nil
	case ViewRatingDistribution:
		return d.RatingDistribution, nil
	case ViewCustomerFunnel:
		return d.Funnel, nil
	case ViewDaysSinceLastOrder:
		return d.Recency, nil
	case ViewChoropleth:
		return d.Choropleth, nil
	case ViewAverageOrderValue:
		return d.AverageOrderValue, nil
	case ViewTopSKUs:
		return d.TopSKUs, nil
	case ViewCategoryHeatmap:
		return d.Heatmap, nil
	case ViewAverageRating:
		return d.AverageRating, nil
	case ViewTotalProfit:
		return d.TotalProfit, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
}

// ── Choropleth ────────────────────────────────────────────────────────────────

func (s *dashboardService) Choropleth(ctx context.Context, current, requested string) (dto.ChoroplethResponse, error) {
	cur, err := ParseMapView(current)
	if err != nil {
		cur = InitialMapView
	}

	next, err := Transition(cur, requested)
	if err != nil {
		s.opts.Metrics.RecordToggle(requested, "rejected")
		log.Warn().Str("requested", requested).Str("current", string(cur)).Msg("choropleth selection rejected")
		return s.choropleth(ctx, cur), err
	}
	s.opts.Metrics.RecordToggle(string(next), "ok")
	return s.choropleth(ctx, next), nil
}

// choropleth computes the state counts of view, going through the shared
// cache when one is configured. Cache failures only cost a recomputation.
func (s *dashboardService) choropleth(ctx context.Context, view MapView) dto.ChoroplethResponse {
	if s.opts.Cache == nil {
		return stateCounts(s.ds, view)
	}

	key := s.ds.Fingerprint() + ":" + ViewChoropleth + ":" + string(view)
	if b, err := s.opts.Cache.Get(ctx, key); err == nil {
		var resp dto.ChoroplethResponse
		if jsonErr := json.Unmarshal(b, &resp); jsonErr == nil {
			s.opts.Metrics.RecordCacheOp("get", "hit")
			return resp
		}
	} else if errors.Is(err, infra.ErrCacheMiss) {
		s.opts.Metrics.RecordCacheOp("get", "miss")
	} else {
		s.opts.Metrics.RecordCacheOp("get", "error")
		log.Debug().Err(err).Str("key", key).Msg("view cache get failed")
	}

	resp := stateCounts(s.ds, view)
	if b, err := json.Marshal(resp); err == nil {
		if err := s.opts.Cache.Set(ctx, key, b); err != nil {
			s.opts.Metrics.RecordCacheOp("set", "error")
			log.Debug().Err(err).Str("key", key).Msg("view cache set failed")
		} else {
			s.opts.Metrics.RecordCacheOp("set", "ok")
		}
	}
	return resp
}

func (s *dashboardService) CacheStatus() string {
	if s.opts.Cache == nil {
		return "disabled"
	}
	return s.opts.Cache.Status()
}
