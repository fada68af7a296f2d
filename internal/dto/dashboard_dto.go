package dto

import "github.com/shopspring/decimal"

// ── Cleaning ──────────────────────────────────────────────────────────────────

// ColumnCleaning describes the outlier capping applied to one column.
type ColumnCleaning struct {
	Table       string  `json:"table"`
	Column      string  `json:"column"`
	Values      int     `json:"values"` // non-null values the quartiles were computed on
	Q1          float64 `json:"q1"`
	Q3          float64 `json:"q3"`
	Lower       float64 `json:"lower_bound"`
	Upper       float64 `json:"upper_bound"`
	ClampedLow  int     `json:"clamped_low"`
	ClampedHigh int     `json:"clamped_high"`
}

// CleaningReport summarises what the loader changed.
type CleaningReport struct {
	Columns                 []ColumnCleaning `json:"columns"`
	ZeroAmountOrdersDropped int              `json:"zero_amount_orders_dropped"`
}

// ── Views ─────────────────────────────────────────────────────────────────────

type MonthlyPoint struct {
	Month    string `json:"month"`     // YYYY-MM
	MonthEnd string `json:"month_end"` // last calendar day, YYYY-MM-DD
	Orders   int    `json:"orders"`
}

// PromotionRange is a shaded band drawn behind the monthly series.
type PromotionRange struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"`
}

type MonthlyOrdersView struct {
	Points     []MonthlyPoint   `json:"points"`
	Promotions []PromotionRange `json:"promotions"`
}

type LabeledCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type CategoryDistributionView struct {
	Slices []LabeledCount `json:"slices"`
}

type LeadTimePoint struct {
	ProductID    int64 `json:"product_id"`
	LeadTimeDays int32 `json:"lead_time_days"`
	Orders       int   `json:"orders"`
}

// TrendLine is the least squares fit drawn across the scatter, evaluated at
// the smallest and largest lead time.
type TrendLine struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
}

type LeadTimeView struct {
	Points []LeadTimePoint `json:"points"`
	Trend  *TrendLine      `json:"trend,omitempty"`
}

type RatingCount struct {
	Rating int32 `json:"rating"`
	Count  int   `json:"count"`
}

type RatingDistributionView struct {
	Ratings []RatingCount `json:"ratings"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

type FunnelView struct {
	Stages []FunnelStage `json:"stages"`
}

type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

type RecencyView struct {
	ReferenceDate string         `json:"reference_date"`
	Customers     int            `json:"customers"`
	Bins          []HistogramBin `json:"bins"`
}

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// ChoroplethResponse is both the initial map and the payload of the toggle.
type ChoroplethResponse struct {
	View   string       `json:"view"`
	Title  string       `json:"title"`
	States []StateCount `json:"states"`
}

// KPIView is a single-number indicator.
type KPIView struct {
	Title     string          `json:"title"`
	Value     decimal.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

type TopSKU struct {
	Rank         int    `json:"rank"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Quantity     int64  `json:"quantity"`
}

type TopSKUsView struct {
	Items []TopSKU `json:"items"`
}

// HeatmapView is a category × month grid; Counts[i][j] belongs to
// Categories[i] and Months[j].
type HeatmapView struct {
	Categories []string `json:"categories"`
	Months     []string `json:"months"`
	Counts     [][]int  `json:"counts"`
}

// DashboardResponse carries all twelve views.
type DashboardResponse struct {
	Fingerprint          string                   `json:"fingerprint"`
	GeneratedAt          string                   `json:"generated_at"`
	MonthlyOrders        MonthlyOrdersView        `json:"monthly_orders"`
	CategoryDistribution CategoryDistributionView `json:"category_distribution"`
	LeadTime             LeadTimeView             `json:"lead_time"`
	RatingDistribution   RatingDistributionView   `json:"rating_distribution"`
	Funnel               FunnelView               `json:"customer_funnel"`
	Recency              RecencyView              `json:"days_since_last_order"`
	Choropleth           ChoroplethResponse       `json:"choropleth"`
	AverageOrderValue    KPIView                  `json:"average_order_value"`
	TopSKUs              TopSKUsView              `json:"top_skus"`
	Heatmap              HeatmapView              `json:"category_heatmap"`
	AverageRating        KPIView                  `json:"average_rating"`
	TotalProfit          KPIView                  `json:"total_profit"`
}

// ── Requests ──────────────────────────────────────────────────────────────────

// ChoroplethRequest is the body of POST /v1/choropleth. View is checked by
// the service so that an unknown value can fail closed onto Current.
type ChoroplethRequest struct {
	View    string `json:"view"    validate:"required,max=32"`
	Current string `json:"current" validate:"omitempty,oneof=orders customers"`
}

// ── Health ────────────────────────────────────────────────────────────────────

type HealthResponse struct {
	OK          bool           `json:"ok"`
	Fingerprint string         `json:"fingerprint"`
	Rows        map[string]int `json:"rows"`
	Cleaning    CleaningReport `json:"cleaning"`
	Cache       string         `json:"cache"`
	Breaker     string         `json:"breaker,omitempty"`
}
