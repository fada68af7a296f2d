package model

import "time"

// Product is a sellable SKU.
type Product struct {
	ID            int64      `json:"product_id"`
	Name          string     `json:"product_name"`
	CategoryID    int64      `json:"category_id"`
	Brand         string     `json:"brand,omitempty"`
	Price         float64    `json:"price"`
	Cost          float64    `json:"cost"`
	StockQuantity int32      `json:"stock_quantity"`
	WeightKg      float64    `json:"weight_kg"`
	CreatedDate   *time.Time `json:"created_date,omitempty"`
}

func (Product) TableName() string { return "products" }
