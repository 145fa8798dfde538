package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseBill cabecera de una factura de compra.
type PurchaseBill struct {
	ID            int64
	DisplayNumber string // PUR-0001; se asigna una sola vez
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []*PurchaseLine
}

// PurchaseLine stock comprado dentro de una factura, al precio de compra.
type PurchaseLine struct {
	ID             int64
	PurchaseBillID int64
	StockID        int64
	Quantity       int64
	Price          decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Amount cantidad * precio.
func (l *PurchaseLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Amount suma de los montos de las líneas.
func (b *PurchaseBill) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.Amount())
	}
	return total
}
