package model

// OrderItem is one line of an order.
// TotalPrice is always Quantity × UnitPrice; the loader recomputes it after
// UnitPrice is capped and never trusts the value in the file.
type OrderItem struct {
	ID         int64   `json:"order_item_id"`
	OrderID    int64   `json:"order_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   int32   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

func (OrderItem) TableName() string { return "order_items" }

// RecomputeTotal sets TotalPrice from Quantity and UnitPrice.
func (it *OrderItem) RecomputeTotal() {
	it.TotalPrice = float64(it.Quantity) * it.UnitPrice
}
