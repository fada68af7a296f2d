package model

import "time"

// MovementType is the kind of stock change ("in", "out", "adjustment", ...).
type MovementType string

// InventoryMovement records one stock change for a product.
type InventoryMovement struct {
	ID           int64        `json:"movement_id"`
	ProductID    int64        `json:"product_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int32        `json:"quantity"` // signed as in the source file
	MovementDate time.Time    `json:"movement_date"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }
