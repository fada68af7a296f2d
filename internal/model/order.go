package model

import "time"

// OrderStatus is the lifecycle status of an order as written in the source.
type OrderStatus string

// StatusCancelled is the only status the dashboard treats specially.
const StatusCancelled OrderStatus = "Cancelled"

// PaymentMethod is the payment instrument recorded on an order.
type PaymentMethod string

// Order is a customer order. TotalAmount may be NaN when the cell was empty.
type Order struct {
	ID            int64         `json:"order_id"`
	CustomerID    int64         `json:"customer_id"`
	OrderDate     time.Time     `json:"order_date"`
	Status        OrderStatus   `json:"status"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	ShippingState StateCode     `json:"shipping_state,omitempty"`
	ShippingDate  *time.Time    `json:"shipping_date,omitempty"`
	DeliveryDate  *time.Time    `json:"delivery_date,omitempty"`
}

func (Order) TableName() string { return "orders" }

// IsCancelled reports whether the order was cancelled.
func (o Order) IsCancelled() bool { return o.Status == StatusCancelled }
