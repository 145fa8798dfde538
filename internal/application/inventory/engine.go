package inventory

import (
	"context"
	"maps"
	"slices"

	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	dominv "github.com/jhoicas/emza-api/internal/domain/inventory"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// Engine propaga operaciones sobre un producto a cada stock de su receta.
// Todas las operaciones son atómicas: o se aplican todas las líneas o ninguna.
type Engine struct {
	txRunner    TxRunner
	ledger      *Ledger
	productRepo repository.ProductRepository
}

// NewEngine construye el motor de consistencia de productos.
func NewEngine(txRunner TxRunner, ledger *Ledger, productRepo repository.ProductRepository) *Engine {
	return &Engine{txRunner: txRunner, ledger: ledger, productRepo: productRepo}
}

// Sell vende qty unidades del producto: debita line.Quantity*qty en cada stock de la receta.
// Falla con *domain.InsufficientStockError sin modificar ningún saldo si la disponibilidad no alcanza.
func (e *Engine) Sell(ctx context.Context, productID, qty int64) error {
	return e.run(ctx, productID, qty, func(
		stockRepo repository.StockRepository,
		recipeRepo repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
	) error {
		return e.SellInTx(ctx, stockRepo, recipeRepo, movRepo, NewRef(""), productID, qty)
	})
}

// Purchase acredita line.Quantity*qty en cada stock de la receta.
func (e *Engine) Purchase(ctx context.Context, productID, qty int64) error {
	return e.run(ctx, productID, qty, func(
		stockRepo repository.StockRepository,
		recipeRepo repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
	) error {
		return e.PurchaseInTx(ctx, stockRepo, recipeRepo, movRepo, NewRef(""), productID, qty)
	})
}

// ReturnSale revierte line.Quantity*qty de lo vendido en cada stock de la receta.
func (e *Engine) ReturnSale(ctx context.Context, productID, qty int64) error {
	return e.run(ctx, productID, qty, func(
		stockRepo repository.StockRepository,
		recipeRepo repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
	) error {
		return e.ReturnSaleInTx(ctx, stockRepo, recipeRepo, movRepo, NewRef(""), productID, qty)
	})
}

// SellInTx ejecuta la venta con los repositorios de la tx del caller (facturación).
// Bloquea los stocks de la receta en orden ascendente y recalcula la disponibilidad con los saldos bloqueados.
func (e *Engine) SellInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	recipeRepo repository.RecipeLineRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, productID, qty int64,
) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	lines, err := recipeRepo.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	locked, err := stockRepo.LockMany(ctx, stockIDs(lines))
	if err != nil {
		return err
	}
	reqs, err := requirements(lines, locked)
	if err != nil {
		return err
	}
	if available := dominv.AvailableQuantity(reqs); available < qty {
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	return e.eachLine(lines, qty, func(stockID, n int64) error {
		_, err := e.ledger.DebitSaleInTx(ctx, stockRepo, movRepo, ref, stockID, n)
		return err
	})
}

// PurchaseInTx acredita la receta con los repositorios de la tx del caller.
func (e *Engine) PurchaseInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	recipeRepo repository.RecipeLineRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, productID, qty int64,
) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	lines, err := e.lockedRecipe(ctx, stockRepo, recipeRepo, productID)
	if err != nil {
		return err
	}
	return e.eachLine(lines, qty, func(stockID, n int64) error {
		_, err := e.ledger.CreditPurchaseInTx(ctx, stockRepo, movRepo, ref, stockID, n)
		return err
	})
}

// ReturnSaleInTx revierte la venta con los repositorios de la tx del caller.
func (e *Engine) ReturnSaleInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	recipeRepo repository.RecipeLineRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, productID, qty int64,
) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	lines, err := e.lockedRecipe(ctx, stockRepo, recipeRepo, productID)
	if err != nil {
		return err
	}
	return e.eachLine(lines, qty, func(stockID, n int64) error {
		_, err := e.ledger.ReverseSaleInTx(ctx, stockRepo, movRepo, ref, stockID, n)
		return err
	})
}

// ReverseTransactionInTx repone lo que debitaron los movimientos de ref.TransactionID, neto de
// devoluciones previas, sin releer la receta actual del producto. Las reposiciones se registran con la
// misma TransactionID, por lo que una operación ya repuesta no vuelve a sumar.
func (e *Engine) ReverseTransactionInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	ref Ref,
) error {
	if ref.TransactionID == "" {
		return domain.ErrInvalidInput
	}
	movs, err := movRepo.ListByTransaction(ctx, ref.TransactionID)
	if err != nil {
		return err
	}
	sold := make(map[int64]int64)
	for _, m := range movs {
		switch m.Type {
		case entity.MovementTypeSale:
			sold[m.StockID] += m.Quantity
		case entity.MovementTypeSaleReturn:
			sold[m.StockID] -= m.Quantity
		}
	}
	ids := slices.Sorted(maps.Keys(sold))
	if len(ids) == 0 {
		return nil
	}
	if _, err := stockRepo.LockMany(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		if sold[id] <= 0 {
			continue
		}
		if _, err := e.ledger.ReverseSaleInTx(ctx, stockRepo, movRepo, ref, id, sold[id]); err != nil {
			return err
		}
	}
	return nil
}

// run valida la entrada y el producto fuera de la tx y luego ejecuta fn atómicamente.
func (e *Engine) run(ctx context.Context, productID, qty int64, fn func(
	stockRepo repository.StockRepository,
	recipeRepo repository.RecipeLineRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return e.txRunner.Run(ctx, fn)
}

// lockedRecipe carga la receta y bloquea sus stocks en orden ascendente de ID.
func (e *Engine) lockedRecipe(
	ctx context.Context,
	stockRepo repository.StockRepository,
	recipeRepo repository.RecipeLineRepository,
	productID int64,
) ([]*entity.RecipeLine, error) {
	lines, err := recipeRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, err := stockRepo.LockMany(ctx, stockIDs(lines)); err != nil {
		return nil, err
	}
	return lines, nil
}

func (e *Engine) eachLine(lines []*entity.RecipeLine, qty int64, fn func(stockID, n int64) error) error {
	for _, line := range lines {
		n, err := dominv.Consumed(line.Quantity, qty)
		if err != nil {
			return err
		}
		if err := fn(line.StockID, n); err != nil {
			return err
		}
	}
	return nil
}
