package model

// ProductSupplier links a product to one of its suppliers.
// The pair (ProductID, SupplierID) is the key.
type ProductSupplier struct {
	ProductID        int64   `json:"product_id"`
	SupplierID       int64   `json:"supplier_id"`
	SupplyPrice      float64 `json:"supply_price"`
	LeadTimeDays     int32   `json:"lead_time_days"`
	MinOrderQuantity int32   `json:"min_order_quantity"`
}

func (ProductSupplier) TableName() string { return "product_suppliers" }
