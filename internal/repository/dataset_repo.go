package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"opsdash/internal/infra"
	"opsdash/internal/model"
)

// ErrDuplicateKey is returned when two rows share a primary key.
var ErrDuplicateKey = errors.New("duplicate primary key")

// Snapshot is the typed, uncleaned content of the data directory.
type Snapshot struct {
	Tables model.Tables
	// Fingerprint is the hex SHA-256 of the eleven files in load order.
	Fingerprint string
}

// DatasetRepository reads the eleven source tables.
type DatasetRepository interface {
	Load(ctx context.Context) (*Snapshot, error)
}

type csvDatasetRepo struct{ dir string }

// NewCSVDatasetRepository reads <dir>/<table>.csv for every table.
func NewCSVDatasetRepository(dir string) DatasetRepository {
	return &csvDatasetRepo{dir: dir}
}

// tableReader decodes one CSV table into the snapshot.
type tableReader struct {
	name     string
	required []string
	decode   func(t *infra.CSVTable, out *model.Tables) error
}

var tableReaders = []tableReader{
	{model.Category{}.TableName(), []string{"category_id", "category_name"}, decodeCategories},
	{model.Customer{}.TableName(), []string{"customer_id", "state", "registration_date", "birth_date"}, decodeCustomers},
	{model.Employee{}.TableName(), []string{"employee_id"}, decodeEmployees},
	{model.InventoryMovement{}.TableName(), []string{"movement_id", "product_id", "movement_type", "quantity", "movement_date"}, decodeInventoryMovements},
	{model.OrderItem{}.TableName(), []string{"order_item_id", "order_id", "product_id", "quantity", "unit_price"}, decodeOrderItems},
	{model.Order{}.TableName(), []string{"order_id", "customer_id", "order_date", "status", "total_amount"}, decodeOrders},
	{model.ProductSupplier{}.TableName(), []string{"product_id", "supplier_id", "supply_price", "lead_time_days", "min_order_quantity"}, decodeProductSuppliers},
	{model.Product{}.TableName(), []string{"product_id", "category_id", "price", "cost", "stock_quantity"}, decodeProducts},
	{model.Promotion{}.TableName(), []string{"promotion_id", "start_date", "end_date", "discount_percentage", "is_active"}, decodePromotions},
	{model.Review{}.TableName(), []string{"review_id", "customer_id", "product_id", "order_id", "rating", "helpful_votes"}, decodeReviews},
	{model.Supplier{}.TableName(), []string{"supplier_id", "country", "state", "rating"}, decodeSuppliers},
}

func (r *csvDatasetRepo) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	digest := sha256.New()
	for _, tr := range tableReaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.loadTable(tr, digest, &snap.Tables); err != nil {
			return nil, fmt.Errorf("load %s: %w", tr.name, err)
		}
	}
	snap.Fingerprint = hex.EncodeToString(digest.Sum(nil))
	return snap, nil
}

func (r *csvDatasetRepo) loadTable(tr tableReader, digest hash.Hash, out *model.Tables) error {
	path := filepath.Join(r.dir, tr.name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := infra.ReadCSVTable(filepath.Base(path), io.TeeReader(f, digest))
	if err != nil {
		return err
	}
	if err := t.Require(tr.required...); err != nil {
		return err
	}
	return tr.decode(t, out)
}

// keyIndex detects duplicate primary keys and remembers where each key was
// first seen.
type keyIndex[K comparable] map[K]int

func (k keyIndex[K]) add(table string, key K, line int) error {
	if first, ok := k[key]; ok {
		return fmt.Errorf("%s line %d: %w %v (first seen on line %d)", table, line, ErrDuplicateKey, key, first)
	}
	k[key] = line
	return nil
}

func decodeCategories(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Categories = make([]model.Category, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		c := model.Category{
			ID:          row.Key("category_id"),
			Name:        row.Category("category_name"),
			Description: row.OptionalString("description"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), c.ID, row.Line()); err != nil {
			return err
		}
		out.Categories = append(out.Categories, c)
	}
	return nil
}

func decodeCustomers(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Customers = make([]model.Customer, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		c := model.Customer{
			ID:               row.Key("customer_id"),
			FirstName:        row.String("first_name"),
			LastName:         row.String("last_name"),
			Email:            row.String("email"),
			City:             row.Category("city"),
			State:            model.StateCode(row.Category("state")),
			RegistrationDate: row.Time("registration_date"),
			BirthDate:        row.OptionalTime("birth_date"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), c.ID, row.Line()); err != nil {
			return err
		}
		out.Customers = append(out.Customers, c)
	}
	return nil
}

func decodeEmployees(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Employees = make([]model.Employee, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		e := model.Employee{
			ID:         row.Key("employee_id"),
			FirstName:  row.String("first_name"),
			LastName:   row.String("last_name"),
			Department: row.Category("department"),
			Position:   row.Category("position"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), e.ID, row.Line()); err != nil {
			return err
		}
		out.Employees = append(out.Employees, e)
	}
	return nil
}

func decodeInventoryMovements(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.InventoryMovements = make([]model.InventoryMovement, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		m := model.InventoryMovement{
			ID:           row.Key("movement_id"),
			ProductID:    row.Key("product_id"),
			MovementType: model.MovementType(row.Category("movement_type")),
			Quantity:     row.Int32("quantity"),
			MovementDate: row.Time("movement_date"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), m.ID, row.Line()); err != nil {
			return err
		}
		out.InventoryMovements = append(out.InventoryMovements, m)
	}
	return nil
}

func decodeOrderItems(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.OrderItems = make([]model.OrderItem, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		it := model.OrderItem{
			ID:        row.Key("order_item_id"),
			OrderID:   row.Key("order_id"),
			ProductID: row.Key("product_id"),
			Quantity:  row.Int32("quantity"),
			UnitPrice: row.NullableFloat("unit_price"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), it.ID, row.Line()); err != nil {
			return err
		}
		it.RecomputeTotal()
		out.OrderItems = append(out.OrderItems, it)
	}
	return nil
}

func decodeOrders(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Orders = make([]model.Order, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		o := model.Order{
			ID:            row.Key("order_id"),
			CustomerID:    row.Key("customer_id"),
			OrderDate:     row.Time("order_date"),
			Status:        model.OrderStatus(row.Category("status")),
			TotalAmount:   row.NullableFloat("total_amount"),
			PaymentMethod: model.PaymentMethod(row.Category("payment_method")),
			ShippingState: model.StateCode(row.Category("shipping_state")),
			ShippingDate:  row.OptionalTime("shipping_date"),
			DeliveryDate:  row.OptionalTime("delivery_date"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), o.ID, row.Line()); err != nil {
			return err
		}
		out.Orders = append(out.Orders, o)
	}
	return nil
}

func decodeProductSuppliers(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[[2]int64]{}
	out.ProductSuppliers = make([]model.ProductSupplier, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		ps := model.ProductSupplier{
			ProductID:        row.Key("product_id"),
			SupplierID:       row.Key("supplier_id"),
			SupplyPrice:      row.NullableFloat("supply_price"),
			LeadTimeDays:     row.Int32("lead_time_days"),
			MinOrderQuantity: row.Int32("min_order_quantity"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), [2]int64{ps.ProductID, ps.SupplierID}, row.Line()); err != nil {
			return err
		}
		out.ProductSuppliers = append(out.ProductSuppliers, ps)
	}
	return nil
}

func decodeProducts(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Products = make([]model.Product, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		p := model.Product{
			ID:            row.Key("product_id"),
			Name:          row.String("product_name"),
			CategoryID:    row.Key("category_id"),
			Brand:         row.Category("brand"),
			Price:         row.NullableFloat("price"),
			Cost:          row.NullableFloat("cost"),
			StockQuantity: row.Int32("stock_quantity"),
			WeightKg:      row.NullableFloat("weight_kg"),
			CreatedDate:   row.OptionalTime("created_date"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), p.ID, row.Line()); err != nil {
			return err
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Product %d", p.ID)
		}
		out.Products = append(out.Products, p)
	}
	return nil
}

func decodePromotions(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	nameCol := "promotion_name"
	if !t.Has(nameCol) {
		nameCol = "name"
	}
	out.Promotions = make([]model.Promotion, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		p := model.Promotion{
			ID:                 row.Key("promotion_id"),
			Name:               row.String(nameCol),
			StartDate:          row.Time("start_date"),
			EndDate:            row.Time("end_date"),
			DiscountPercentage: row.NullableFloat("discount_percentage"),
			IsActive:           row.Bool("is_active"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), p.ID, row.Line()); err != nil {
			return err
		}
		out.Promotions = append(out.Promotions, p)
	}
	return nil
}

func decodeReviews(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Reviews = make([]model.Review, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		rv := model.Review{
			ID:           row.Key("review_id"),
			CustomerID:   row.Key("customer_id"),
			ProductID:    row.Key("product_id"),
			OrderID:      row.Key("order_id"),
			Rating:       row.Int32("rating"),
			HelpfulVotes: row.Int32("helpful_votes"),
			ReviewDate:   row.OptionalTime("review_date"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), rv.ID, row.Line()); err != nil {
			return err
		}
		out.Reviews = append(out.Reviews, rv)
	}
	return nil
}

func decodeSuppliers(t *infra.CSVTable, out *model.Tables) error {
	keys := keyIndex[int64]{}
	out.Suppliers = make([]model.Supplier, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		s := model.Supplier{
			ID:      row.Key("supplier_id"),
			Name:    row.String("supplier_name"),
			Country: row.Category("country"),
			State:   row.Category("state"),
			Rating:  row.NullableFloat("rating"),
		}
		if err := row.Err(); err != nil {
			return err
		}
		if err := keys.add(t.Name(), s.ID, row.Line()); err != nil {
			return err
		}
		out.Suppliers = append(out.Suppliers, s)
	}
	return nil
}
