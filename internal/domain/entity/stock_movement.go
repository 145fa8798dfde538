package entity

import "time"

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementTypePurchase   MovementType = "PURCHASE"    // suma a purchase_quantity
	MovementTypeSale       MovementType = "SALE"        // suma a sale_quantity
	MovementTypeSaleReturn MovementType = "SALE_RETURN" // resta de sale_quantity
)

// StockMovement registro de auditoría de cada primitiva del libro.
// TransactionID agrupa los movimientos de una misma operación de producto o línea de factura.
type StockMovement struct {
	ID            string
	TransactionID string
	StockID       int64
	Type          MovementType
	Quantity      int64
	Reference     string // número de factura u otra referencia libre
	CreatedAt     time.Time
}
