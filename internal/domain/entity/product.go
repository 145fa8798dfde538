package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto vendible compuesto por uno o más stocks (receta).
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal // precio de lista
	CreatedAt time.Time
	UpdatedAt time.Time
}
