package model

import "time"

// Promotion is a discount campaign with a date range.
type Promotion struct {
	ID                 int64     `json:"promotion_id"`
	Name               string    `json:"promotion_name"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	DiscountPercentage float64   `json:"discount_percentage"`
	IsActive           bool      `json:"is_active"`
}

func (Promotion) TableName() string { return "promotions" }
