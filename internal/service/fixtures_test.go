package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"opsdash/internal/dto"
	"opsdash/internal/infra"
	"opsdash/internal/model"
	"opsdash/internal/repository"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// syntheticTables is a small store: three customers, five orders (one
// Cancelled, one with a zero total), five items over three products.
// Values are chosen so that capping leaves every row untouched.
func syntheticTables() model.Tables {
	return model.Tables{
		Categories: []model.Category{
			{ID: 1, Name: "Electronics"},
			{ID: 2, Name: "Books"},
		},
		Customers: []model.Customer{
			{ID: 1, State: "CA", RegistrationDate: day(2023, 1, 10)},
			{ID: 2, State: "NY", RegistrationDate: day(2023, 2, 11)},
			{ID: 3, State: "TX", RegistrationDate: day(2023, 3, 12)},
		},
		Products: []model.Product{
			{ID: 10, Name: "Phone", CategoryID: 1},
			{ID: 20, Name: "Novel", CategoryID: 2},
			{ID: 30, Name: "Cable", CategoryID: 1},
		},
		Orders: []model.Order{
			{ID: 100, CustomerID: 1, OrderDate: day(2024, 1, 15), Status: "Delivered", TotalAmount: 100, ShippingState: "CA"},
			{ID: 101, CustomerID: 1, OrderDate: day(2024, 3, 10), Status: "Delivered", TotalAmount: 50, ShippingState: "CA"},
			{ID: 102, CustomerID: 2, OrderDate: day(2024, 1, 20), Status: model.StatusCancelled, TotalAmount: 80, ShippingState: "NY"},
			{ID: 103, CustomerID: 2, OrderDate: day(2024, 2, 5), Status: "Delivered", TotalAmount: 0, ShippingState: "NY"},
			{ID: 104, CustomerID: 3, OrderDate: day(2024, 3, 25), Status: "Shipped", TotalAmount: 30, ShippingState: "TX"},
		},
		OrderItems: []model.OrderItem{
			{ID: 1, OrderID: 100, ProductID: 10, Quantity: 1, UnitPrice: 50},
			{ID: 2, OrderID: 101, ProductID: 20, Quantity: 2, UnitPrice: 10},
			{ID: 3, OrderID: 102, ProductID: 10, Quantity: 1, UnitPrice: 30},
			{ID: 4, OrderID: 103, ProductID: 20, Quantity: 4, UnitPrice: 20},
			{ID: 5, OrderID: 104, ProductID: 30, Quantity: 3, UnitPrice: 40},
		},
		ProductSuppliers: []model.ProductSupplier{
			{ProductID: 10, SupplierID: 1, SupplyPrice: 30, LeadTimeDays: 5},
			{ProductID: 10, SupplierID: 2, SupplyPrice: 25, LeadTimeDays: 10},
			{ProductID: 20, SupplierID: 1, SupplyPrice: 6, LeadTimeDays: 3},
		},
		Promotions: []model.Promotion{
			{ID: 1, Name: "Unrelated", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 2)},
			{ID: 2, Name: "Black Friday Deal", StartDate: day(2024, 11, 24), EndDate: day(2024, 11, 30)},
		},
		Reviews: []model.Review{
			{ID: 1, CustomerID: 1, ProductID: 10, OrderID: 100, Rating: 5},
			{ID: 2, CustomerID: 2, ProductID: 20, OrderID: 102, Rating: 4},
			{ID: 3, CustomerID: 1, ProductID: 20, OrderID: 101, Rating: 5},
		},
		Suppliers: []model.Supplier{
			{ID: 1, Country: "USA", State: "CA"},
			{ID: 2, Country: "USA", State: "WA"},
		},
	}
}

// cleanedDataset runs the synthetic tables through Clean.
func cleanedDataset(t *testing.T) *model.Dataset {
	t.Helper()
	tables := syntheticTables()
	for i := range tables.OrderItems {
		tables.OrderItems[i].RecomputeTotal()
	}
	cleaned, report := Clean(tables)
	require.Equal(t, 1, report.ZeroAmountOrdersDropped)
	return model.NewDataset(cleaned, "fp-test")
}

var testToday = day(2024, 4, 1)

func newTestDashboard(t *testing.T, opts DashboardOptions) DashboardService {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testToday }
	}
	return NewDashboardService(cleanedDataset(t), opts)
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubDatasetRepo struct {
	snap *repository.Snapshot
	err  error
}

var _ repository.DatasetRepository = (*stubDatasetRepo)(nil)

func (r *stubDatasetRepo) Load(_ context.Context) (*repository.Snapshot, error) {
	return r.snap, r.err
}

// memCache is an in-memory PayloadCache that counts calls.
type memCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	gets  int
	sets  int
	fail  error
	state string
}

var _ PayloadCache = (*memCache)(nil)

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte), state: "closed"} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.fail != nil {
		return nil, c.fail
	}
	b, ok := c.data[key]
	if !ok {
		return nil, infra.ErrCacheMiss
	}
	return b, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.fail != nil {
		return c.fail
	}
	c.data[key] = value
	return nil
}

func (c *memCache) Status() string { return c.state }

// stubDashboard serves a fixed response, for export tests.
type stubDashboard struct {
	resp *dto.DashboardResponse
}

var _ DashboardService = (*stubDashboard)(nil)

func (s *stubDashboard) Build(context.Context) (*dto.DashboardResponse, error) { return s.resp, nil }
func (s *stubDashboard) CacheStatus() string                                   { return "disabled" }

func (s *stubDashboard) View(ctx context.Context, name string) (any, error) {
	inner := &dashboardService{built: s.resp}
	return inner.View(ctx, name)
}

func (s *stubDashboard) Choropleth(context.Context, string, string) (dto.ChoroplethResponse, error) {
	return s.resp.Choropleth, nil
}
