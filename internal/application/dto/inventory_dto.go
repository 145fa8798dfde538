package dto

import "time"

// CreateStockTypeRequest body para POST /api/stock-types.
type CreateStockTypeRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Metric string `json:"metric" validate:"required,oneof=pcs ml"`
}

// StockTypeResponse tipo de stock en respuestas.
type StockTypeResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Metric    string    `json:"metric"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStockRequest body para POST /api/stocks.
// Compras y ventas arrancan en cero; solo se mueven por el libro.
type CreateStockRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=200"`
	StockTypeID     int64  `json:"stock_type_id" validate:"required,gt=0"`
	OpeningQuantity int64  `json:"opening_quantity" validate:"min=0"`
}

// StockResponse stock con sus acumulados y saldo.
type StockResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	StockTypeID      int64     `json:"stock_type_id"`
	OpeningQuantity  int64     `json:"opening_quantity"`
	PurchaseQuantity int64     `json:"purchase_quantity"`
	SaleQuantity     int64     `json:"sale_quantity"`
	BalanceQuantity  int64     `json:"balance_quantity"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StockListResponse lista paginada de stocks.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// LedgerResponse resultado de una primitiva del libro: nuevo acumulado y stock resultante.
type LedgerResponse struct {
	Total int64         `json:"total"`
	Stock StockResponse `json:"stock"`
}

// StockMovementResponse movimiento del libro de stock.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	StockID       int64     `json:"stock_id"`
	Type          string    `json:"type"`
	Quantity      int64     `json:"quantity"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
