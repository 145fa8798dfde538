package entity

import "time"

// Stock representa un insumo inventariable con saldo corrido.
// Las cantidades solo se modifican a través del libro de stock (inventory.Ledger).
type Stock struct {
	ID               int64
	Name             string // único
	StockTypeID      int64
	OpeningQuantity  int64
	PurchaseQuantity int64 // acumulado de compras
	SaleQuantity     int64 // acumulado de ventas (neto de devoluciones)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BalanceQuantity saldo disponible: apertura + compras - ventas.
func (s *Stock) BalanceQuantity() int64 {
	return s.OpeningQuantity + s.PurchaseQuantity - s.SaleQuantity
}
