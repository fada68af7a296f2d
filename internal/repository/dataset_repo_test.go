package repository

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"opsdash/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalFiles is a consistent two-order data directory.
func minimalFiles() map[string]string {
	return map[string]string{
		"categories.csv":          "category_id,category_name,description\n1,Electronics,\n2,Books,Paper\n",
		"customers.csv":           "customer_id,first_name,last_name,email,city,state,registration_date,birth_date\n1,Ann,Lee,a@x.io,Austin,TX,2023-01-05,\n2,Bo,Kim,b@x.io,Reno,NV,2023-02-06,1990-07-01\n",
		"employees.csv":           "employee_id,first_name,last_name,department,position\n1,Cy,Ng,Ops,Lead\n",
		"inventory_movements.csv": "movement_id,product_id,movement_type,quantity,movement_date\n1,10,IN,5,2024-01-01\n",
		"order_items.csv":         "order_item_id,order_id,product_id,quantity,unit_price,total_price\n1,100,10,2,19.5,999\n2,101,20,1,,\n",
		"orders.csv":              "order_id,customer_id,order_date,status,total_amount,payment_method,shipping_state,shipping_date,delivery_date\n100,1,2024-01-15,Delivered,39.0,Card,TX,2024-01-16,2024-01-20\n101,2,2024-02-01 10:30:00,Cancelled,,PayPal,NV,,\n",
		"product_suppliers.csv":   "product_id,supplier_id,supply_price,lead_time_days,min_order_quantity\n10,1,9.5,7,10\n",
		"products.csv":            "product_id,product_name,category_id,brand,price,cost,stock_quantity,weight_kg,created_date\n10,Phone,1,Acme,19.5,9.5,3,0.2,\n20,,2,Pulp,9.0,4.0,8,,\n",
		"promotions.csv":          "promotion_id,promotion_name,start_date,end_date,discount_percentage,is_active\n1,Black Friday Deal,2024-11-24,2024-11-30,25,True\n",
		"reviews.csv":             "review_id,customer_id,product_id,order_id,rating,helpful_votes,review_date\n1,1,10,100,5,2,2024-01-25\n",
		"suppliers.csv":           "supplier_id,supplier_name,country,state,rating\n1,Parts Co,USA,CA,4.5\n",
	}
}

func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestLoad_TypedTables(t *testing.T) {
	snap, err := NewCSVDatasetRepository(writeDataDir(t, minimalFiles())).Load(context.Background())
	require.NoError(t, err)

	tb := snap.Tables
	assert.Len(t, tb.Categories, 2)
	assert.Nil(t, tb.Categories[0].Description)
	require.Len(t, tb.Customers, 2)
	assert.Nil(t, tb.Customers[0].BirthDate)
	assert.Equal(t, "TX", string(tb.Customers[0].State))

	require.Len(t, tb.Orders, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC), tb.Orders[1].OrderDate)
	assert.True(t, math.IsNaN(tb.Orders[1].TotalAmount))
	assert.True(t, tb.Orders[1].IsCancelled())
	assert.Nil(t, tb.Orders[1].ShippingDate)

	assert.Equal(t, "Product 20", tb.Products[1].Name)
	assert.Equal(t, "Black Friday Deal", tb.Promotions[0].Name)
	assert.True(t, tb.Promotions[0].IsActive)
	assert.Equal(t, int32(7), tb.ProductSuppliers[0].LeadTimeDays)
}

func TestLoad_RecomputesItemTotal(t *testing.T) {
	snap, err := NewCSVDatasetRepository(writeDataDir(t, minimalFiles())).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 39.0, snap.Tables.OrderItems[0].TotalPrice)
	assert.True(t, math.IsNaN(snap.Tables.OrderItems[1].TotalPrice))
}

func TestLoad_FingerprintTracksBytes(t *testing.T) {
	files := minimalFiles()
	a, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.NoError(t, err)
	b, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Len(t, a.Fingerprint, 64)

	files["suppliers.csv"] += "2,Other,USA,WA,3.0\n"
	c, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestLoad_MissingFile(t *testing.T) {
	files := minimalFiles()
	delete(files, "reviews.csv")

	_, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "load reviews")
}

func TestLoad_BadDateNamesFileLineAndColumn(t *testing.T) {
	files := minimalFiles()
	files["orders.csv"] = "order_id,customer_id,order_date,status,total_amount\n100,1,2024-01-15,Delivered,39\n101,2,someday,Delivered,10\n"

	_, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, `orders.csv line 3 column "order_date"`)
}

func TestLoad_DuplicateKey(t *testing.T) {
	files := minimalFiles()
	files["categories.csv"] = "category_id,category_name\n1,Electronics\n1,Books\n"

	_, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorContains(t, err, "first seen on line 2")
}

func TestLoad_DuplicateCompositeKey(t *testing.T) {
	files := minimalFiles()
	files["product_suppliers.csv"] = "product_id,supplier_id,supply_price,lead_time_days,min_order_quantity\n10,1,9.5,7,10\n10,1,8.0,3,5\n"

	_, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestLoad_MissingColumn(t *testing.T) {
	files := minimalFiles()
	files["reviews.csv"] = "review_id,customer_id,product_id,order_id,helpful_votes\n1,1,10,100,2\n"

	_, err := NewCSVDatasetRepository(writeDataDir(t, files)).Load(context.Background())
	require.ErrorIs(t, err, infra.ErrMissingColumn)
	assert.ErrorContains(t, err, "rating")
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCSVDatasetRepository(writeDataDir(t, minimalFiles())).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
