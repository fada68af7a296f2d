package model

// Supplier provides products.
type Supplier struct {
	ID      int64   `json:"supplier_id"`
	Name    string  `json:"supplier_name,omitempty"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Rating  float64 `json:"rating"`
}

func (Supplier) TableName() string { return "suppliers" }
