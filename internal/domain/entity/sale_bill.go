package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SaleBill cabecera de una factura de venta.
type SaleBill struct {
	ID            int64
	DisplayNumber string // EMZA-0001; se asigna una sola vez
	CustomerID    int64
	Discount      decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []*SaleLine
}

// SaleLine línea de producto vendida dentro de una factura.
type SaleLine struct {
	ID         int64
	SaleBillID int64
	ProductID  int64
	Quantity   int64
	Price      decimal.Decimal
	// TransactionID de los movimientos que debitó la línea; la reposición los revierte.
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Amount cantidad * precio.
func (l *SaleLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Amount suma de los montos de las líneas.
func (b *SaleBill) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// FinalAmount monto neto de descuento.
func (b *SaleBill) FinalAmount() decimal.Decimal {
	return b.Amount().Sub(b.Discount)
}

// FormatDisplayNumber arma el identificador visible a partir de la identidad: PREFIJO-%04d.
func FormatDisplayNumber(prefix string, id int64) string {
	return fmt.Sprintf("%s-%04d", prefix, id)
}
