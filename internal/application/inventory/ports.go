package inventory

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro de stock y el motor de productos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		recipeRepo repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
