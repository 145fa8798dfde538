package repository

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id int64) error
}

// RecipeLineRepository puerto para las líneas de receta (StockVariant).
// Create devuelve domain.ErrDuplicateRecipeLine si ya existe (producto, stock).
type RecipeLineRepository interface {
	Create(ctx context.Context, line *entity.RecipeLine) error
	ListByProduct(ctx context.Context, productID int64) ([]*entity.RecipeLine, error)
	Delete(ctx context.Context, productID, stockID int64) error
}
