package model

import "time"

// Review is a product rating left by a customer for an order.
type Review struct {
	ID           int64      `json:"review_id"`
	CustomerID   int64      `json:"customer_id"`
	ProductID    int64      `json:"product_id"`
	OrderID      int64      `json:"order_id"`
	Rating       int32      `json:"rating"`
	HelpfulVotes int32      `json:"helpful_votes"`
	ReviewDate   *time.Time `json:"review_date,omitempty"`
}

func (Review) TableName() string { return "reviews" }
