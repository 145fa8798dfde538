package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	dominv "github.com/jhoicas/emza-api/internal/domain/inventory"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// Resolver calcula cuántas unidades de un producto pueden armarse con el stock actual.
// Es una lectura sin bloqueo; para decidir una venta usa Engine.Sell.
type Resolver struct {
	productRepo repository.ProductRepository
	recipeRepo  repository.RecipeLineRepository
	stockRepo   repository.StockRepository
}

// NewResolver construye el resolver de disponibilidad.
func NewResolver(
	productRepo repository.ProductRepository,
	recipeRepo repository.RecipeLineRepository,
	stockRepo repository.StockRepository,
) *Resolver {
	return &Resolver{productRepo: productRepo, recipeRepo: recipeRepo, stockRepo: stockRepo}
}

// AvailableQuantity mínimo sobre la receta de floor(saldo / cantidad por unidad).
// Un producto sin receta tiene disponibilidad 0.
func (r *Resolver) AvailableQuantity(ctx context.Context, productID int64) (int64, error) {
	product, err := r.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	lines, err := r.recipeRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	stocks := make(map[int64]*entity.Stock, len(lines))
	for _, line := range lines {
		s, err := r.stockRepo.GetByID(ctx, line.StockID)
		if err != nil {
			return 0, err
		}
		if s != nil {
			stocks[s.ID] = s
		}
	}
	reqs, err := requirements(lines, stocks)
	if err != nil {
		return 0, err
	}
	return dominv.AvailableQuantity(reqs), nil
}

// requirements cruza la receta con los stocks cargados.
func requirements(lines []*entity.RecipeLine, stocks map[int64]*entity.Stock) ([]dominv.Requirement, error) {
	reqs := make([]dominv.Requirement, 0, len(lines))
	for _, line := range lines {
		s, ok := stocks[line.StockID]
		if !ok {
			return nil, fmt.Errorf("stock %d de la receta: %w", line.StockID, domain.ErrNotFound)
		}
		reqs = append(reqs, dominv.Requirement{
			StockID: line.StockID,
			PerUnit: line.Quantity,
			Balance: s.BalanceQuantity(),
		})
	}
	return reqs, nil
}

func stockIDs(lines []*entity.RecipeLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.StockID)
	}
	return ids
}
