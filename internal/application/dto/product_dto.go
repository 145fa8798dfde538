package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price"`
}

// UpdateProductRequest entrada para actualizar un producto; los campos nil no cambian.
type UpdateProductRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Price *decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Price     decimal.Decimal      `json:"price"`
	Recipe    []RecipeLineResponse `json:"recipe,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AddRecipeLineRequest body para POST /api/products/:id/recipe.
type AddRecipeLineRequest struct {
	StockID  int64 `json:"stock_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"gt=0"`
}

// RecipeLineResponse cantidad de un stock consumida por unidad de producto.
type RecipeLineResponse struct {
	ID        int64  `json:"id"`
	StockID   int64  `json:"stock_id"`
	StockName string `json:"stock_name,omitempty"`
	Quantity  int64  `json:"quantity"`
}

// AvailabilityResponse unidades vendibles de un producto con el stock actual.
type AvailabilityResponse struct {
	ProductID         int64 `json:"product_id"`
	AvailableQuantity int64 `json:"available_quantity"`
}
