package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	WalkIn      bool   `json:"walk_in"`
}

// CreateSaleBillRequest body para POST /api/sale-bills.
// CustomerID nil factura al cliente de mostrador.
type CreateSaleBillRequest struct {
	CustomerID *int64            `json:"customer_id,omitempty"`
	Discount   decimal.Decimal   `json:"discount"`
	Lines      []SaleLineRequest `json:"lines" validate:"dive"`
	// IdempotencyKey viene del header Idempotency-Key.
	IdempotencyKey string `json:"-"`
}

// SaleLineRequest línea de venta. Price nil toma el precio de lista del producto.
type SaleLineRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  int64            `json:"quantity" validate:"gt=0"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// UpdateSaleBillRequest body para PATCH /api/sale-bills/:id. El número visible no se modifica.
type UpdateSaleBillRequest struct {
	CustomerID *int64           `json:"customer_id,omitempty"`
	Discount   *decimal.Decimal `json:"discount,omitempty"`
}

// SaleBillResponse factura de venta con líneas y totales.
type SaleBillResponse struct {
	ID            int64              `json:"id"`
	DisplayNumber string             `json:"display_number"`
	CustomerID    int64              `json:"customer_id"`
	Discount      decimal.Decimal    `json:"discount"`
	Amount        decimal.Decimal    `json:"amount"`
	FinalAmount   decimal.Decimal    `json:"final_amount"`
	Lines         []SaleLineResponse `json:"lines"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleLineResponse línea de venta en respuestas.
type SaleLineResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

// SaleBillListResponse lista paginada de facturas de venta.
type SaleBillListResponse struct {
	Items []SaleBillResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreatePurchaseBillRequest body para POST /api/purchase-bills.
type CreatePurchaseBillRequest struct {
	Lines          []PurchaseLineRequest `json:"lines" validate:"dive"`
	IdempotencyKey string                `json:"-"`
}

// PurchaseLineRequest stock comprado al precio indicado.
type PurchaseLineRequest struct {
	StockID  int64           `json:"stock_id" validate:"required,gt=0"`
	Quantity int64           `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price"`
}

// PurchaseBillResponse factura de compra con líneas y total.
type PurchaseBillResponse struct {
	ID            int64                  `json:"id"`
	DisplayNumber string                 `json:"display_number"`
	Amount        decimal.Decimal        `json:"amount"`
	Lines         []PurchaseLineResponse `json:"lines"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PurchaseLineResponse línea de compra en respuestas.
type PurchaseLineResponse struct {
	ID       int64           `json:"id"`
	StockID  int64           `json:"stock_id"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// PurchaseBillListResponse lista paginada de facturas de compra.
type PurchaseBillListResponse struct {
	Items []PurchaseBillResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
