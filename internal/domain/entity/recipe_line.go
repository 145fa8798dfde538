package entity

import "time"

// RecipeLine cantidad de un stock consumida por cada unidad del producto.
// Única por (ProductID, StockID).
type RecipeLine struct {
	ID        int64
	ProductID int64
	StockID   int64
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
