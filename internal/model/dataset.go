package model

// Tables holds the eleven source tables in file order. It is the mutable
// working set used while loading and cleaning; once cleaning is finished it
// is frozen into a Dataset.
type Tables struct {
	Categories         []Category
	Customers          []Customer
	Employees          []Employee
	InventoryMovements []InventoryMovement
	OrderItems         []OrderItem
	Orders             []Order
	ProductSuppliers   []ProductSupplier
	Products           []Product
	Promotions         []Promotion
	Reviews            []Review
	Suppliers          []Supplier
}

// TableNames lists the eleven tables in load order.
var TableNames = []string{
	Category{}.TableName(),
	Customer{}.TableName(),
	Employee{}.TableName(),
	InventoryMovement{}.TableName(),
	OrderItem{}.TableName(),
	Order{}.TableName(),
	ProductSupplier{}.TableName(),
	Product{}.TableName(),
	Promotion{}.TableName(),
	Review{}.TableName(),
	Supplier{}.TableName(),
}

// RowCounts returns the number of rows per table name.
func (t *Tables) RowCounts() map[string]int {
	return map[string]int{
		Category{}.TableName():          len(t.Categories),
		Customer{}.TableName():          len(t.Customers),
		Employee{}.TableName():          len(t.Employees),
		InventoryMovement{}.TableName(): len(t.InventoryMovements),
		OrderItem{}.TableName():         len(t.OrderItems),
		Order{}.TableName():             len(t.Orders),
		ProductSupplier{}.TableName():   len(t.ProductSuppliers),
		Product{}.TableName():           len(t.Products),
		Promotion{}.TableName():         len(t.Promotions),
		Review{}.TableName():            len(t.Reviews),
		Supplier{}.TableName():          len(t.Suppliers),
	}
}

// Dataset is the cleaned, read-only context every view is computed from.
// Nothing may mutate it after NewDataset returns; accessors hand out the
// underlying slices, so callers must treat them as read-only.
type Dataset struct {
	tables      Tables
	fingerprint string

	categoryByID map[int64]*Category
	productByID  map[int64]*Product
	orderByID    map[int64]*Order
}

// NewDataset freezes t into a Dataset and builds the primary-key indexes.
// fingerprint identifies the source bytes and is used as a cache version.
func NewDataset(t Tables, fingerprint string) *Dataset {
	d := &Dataset{
		tables:       t,
		fingerprint:  fingerprint,
		categoryByID: make(map[int64]*Category, len(t.Categories)),
		productByID:  make(map[int64]*Product, len(t.Products)),
		orderByID:    make(map[int64]*Order, len(t.Orders)),
	}
	for i := range d.tables.Categories {
		d.categoryByID[d.tables.Categories[i].ID] = &d.tables.Categories[i]
	}
	for i := range d.tables.Products {
		d.productByID[d.tables.Products[i].ID] = &d.tables.Products[i]
	}
	for i := range d.tables.Orders {
		d.orderByID[d.tables.Orders[i].ID] = &d.tables.Orders[i]
	}
	return d
}

func (d *Dataset) Fingerprint() string { return d.fingerprint }

func (d *Dataset) Categories() []Category                 { return d.tables.Categories }
func (d *Dataset) Customers() []Customer                  { return d.tables.Customers }
func (d *Dataset) Employees() []Employee                  { return d.tables.Employees }
func (d *Dataset) InventoryMovements() []InventoryMovement { return d.tables.InventoryMovements }
func (d *Dataset) OrderItems() []OrderItem                { return d.tables.OrderItems }
func (d *Dataset) Orders() []Order                        { return d.tables.Orders }
func (d *Dataset) ProductSuppliers() []ProductSupplier    { return d.tables.ProductSuppliers }
func (d *Dataset) Products() []Product                    { return d.tables.Products }
func (d *Dataset) Promotions() []Promotion                { return d.tables.Promotions }
func (d *Dataset) Reviews() []Review                      { return d.tables.Reviews }
func (d *Dataset) Suppliers() []Supplier                  { return d.tables.Suppliers }

// Category looks up a category by key.
func (d *Dataset) Category(id int64) (*Category, bool) {
	c, ok := d.categoryByID[id]
	return c, ok
}

// Product looks up a product by key.
func (d *Dataset) Product(id int64) (*Product, bool) {
	p, ok := d.productByID[id]
	return p, ok
}

// Order looks up an order by key. Orders dropped during cleaning are absent.
func (d *Dataset) Order(id int64) (*Order, bool) {
	o, ok := d.orderByID[id]
	return o, ok
}

// ActiveOrders returns the orders that were not cancelled, in file order.
func (d *Dataset) ActiveOrders() []Order {
	out := make([]Order, 0, len(d.tables.Orders))
	for _, o := range d.tables.Orders {
		if !o.IsCancelled() {
			out = append(out, o)
		}
	}
	return out
}

// RowCounts returns the number of rows per table name.
func (d *Dataset) RowCounts() map[string]int { return d.tables.RowCounts() }
