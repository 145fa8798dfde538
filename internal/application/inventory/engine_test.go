package inventory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/emza-api/internal/application/inventory"
	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
	"github.com/jhoicas/emza-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fixture arma el caso CR7: 9 ml de aceite y 1 frasco por unidad.
type fixture struct {
	store     *memory.Store
	ledger    *inventory.Ledger
	engine    *inventory.Engine
	resolver  *inventory.Resolver
	oilID     int64
	bottleID  int64
	productID int64
}

func newFixture(t *testing.T, cfg inventory.LedgerConfig, oilOpening, bottleOpening int64) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()

	ml := &entity.StockType{Name: "Aceite de perfume", Metric: entity.MetricMilliliter}
	require.NoError(t, store.StockTypes().Create(ctx, ml))
	pcs := &entity.StockType{Name: "Frascos", Metric: entity.MetricPiece}
	require.NoError(t, store.StockTypes().Create(ctx, pcs))

	oil := &entity.Stock{Name: "Aceite CR7", StockTypeID: ml.ID, OpeningQuantity: oilOpening}
	require.NoError(t, repos.Stocks.Create(ctx, oil))
	bottle := &entity.Stock{Name: "Frasco 30ml", StockTypeID: pcs.ID, OpeningQuantity: bottleOpening}
	require.NoError(t, repos.Stocks.Create(ctx, bottle))

	product := &entity.Product{Name: "CR7 30ml", Price: decimal.NewFromInt(25000)}
	require.NoError(t, repos.Products.Create(ctx, product))
	require.NoError(t, repos.RecipeLines.Create(ctx, &entity.RecipeLine{ProductID: product.ID, StockID: oil.ID, Quantity: 9}))
	require.NoError(t, repos.RecipeLines.Create(ctx, &entity.RecipeLine{ProductID: product.ID, StockID: bottle.ID, Quantity: 1}))

	ledger := inventory.NewLedger(store, cfg)
	return &fixture{
		store:     store,
		ledger:    ledger,
		engine:    inventory.NewEngine(store, ledger, repos.Products),
		resolver:  inventory.NewResolver(repos.Products, repos.RecipeLines, repos.Stocks),
		oilID:     oil.ID,
		bottleID:  bottle.ID,
		productID: product.ID,
	}
}

func (f *fixture) stock(t *testing.T, id int64) *entity.Stock {
	t.Helper()
	s, err := f.store.Repos().Stocks.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (f *fixture) movements(t *testing.T, id int64) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.Repos().Movements.ListByStock(context.Background(), id, 0, 0)
	require.NoError(t, err)
	return movs
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolver
// ──────────────────────────────────────────────────────────────────────────────

func TestResolver_AvailableQuantity(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)

	got, err := f.resolver.AvailableQuantity(context.Background(), f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got, "floor(100/9)=11 limita sobre floor(50/1)=50")
}

func TestResolver_ProductWithoutRecipe(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()
	empty := &entity.Product{Name: "Sin receta", Price: decimal.NewFromInt(1000)}
	require.NoError(t, f.store.Repos().Products.Create(ctx, empty))

	got, err := f.resolver.AvailableQuantity(ctx, empty.ID)
	require.NoError(t, err)
	assert.Zero(t, got)

	err = f.engine.Sell(ctx, empty.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestResolver_UnknownProduct(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	_, err := f.resolver.AvailableQuantity(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Engine
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_SellExactAvailability(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()

	require.NoError(t, f.engine.Sell(ctx, f.productID, 11))
	assert.Equal(t, int64(1), f.stock(t, f.oilID).BalanceQuantity())
	assert.Equal(t, int64(39), f.stock(t, f.bottleID).BalanceQuantity())

	// Con 1 ml restante ya no puede armarse otra unidad
	err := f.engine.Sell(ctx, f.productID, 1)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(1), insufficient.Requested)
	assert.Equal(t, int64(0), insufficient.Available)
	assert.Equal(t, int64(1), f.stock(t, f.oilID).BalanceQuantity())
	assert.Equal(t, int64(39), f.stock(t, f.bottleID).BalanceQuantity())
}

func TestEngine_SellOverAvailabilityChangesNothing(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)

	err := f.engine.Sell(context.Background(), f.productID, 12)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(0), f.stock(t, f.oilID).SaleQuantity)
	assert.Equal(t, int64(0), f.stock(t, f.bottleID).SaleQuantity)
	assert.Empty(t, f.movements(t, f.oilID))
	assert.Empty(t, f.movements(t, f.bottleID))
}

func TestEngine_SellRecordsMovementsWithSharedTransaction(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	require.NoError(t, f.engine.Sell(context.Background(), f.productID, 2))

	oilMovs := f.movements(t, f.oilID)
	bottleMovs := f.movements(t, f.bottleID)
	require.Len(t, oilMovs, 1)
	require.Len(t, bottleMovs, 1)
	assert.Equal(t, entity.MovementTypeSale, oilMovs[0].Type)
	assert.Equal(t, int64(18), oilMovs[0].Quantity)
	assert.Equal(t, int64(2), bottleMovs[0].Quantity)
	assert.Equal(t, oilMovs[0].TransactionID, bottleMovs[0].TransactionID)
}

func TestEngine_Purchase(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 0, 0)
	ctx := context.Background()

	require.NoError(t, f.engine.Purchase(ctx, f.productID, 2))
	assert.Equal(t, int64(18), f.stock(t, f.oilID).PurchaseQuantity)
	assert.Equal(t, int64(2), f.stock(t, f.bottleID).PurchaseQuantity)

	got, err := f.resolver.AvailableQuantity(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestEngine_ReturnSaleRoundTrip(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()

	require.NoError(t, f.engine.Sell(ctx, f.productID, 3))
	require.NoError(t, f.engine.ReturnSale(ctx, f.productID, 3))

	assert.Equal(t, int64(100), f.stock(t, f.oilID).BalanceQuantity())
	assert.Equal(t, int64(50), f.stock(t, f.bottleID).BalanceQuantity())
	assert.Equal(t, int64(0), f.stock(t, f.oilID).SaleQuantity)
}

func TestEngine_ReturnSaleIsAtomic(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()

	require.NoError(t, f.engine.Sell(ctx, f.productID, 2))
	// Se revierte el frasco por fuera: la devolución del producto fallará en la segunda línea
	_, err := f.ledger.ReverseSale(ctx, f.bottleID, 2)
	require.NoError(t, err)

	err = f.engine.ReturnSale(ctx, f.productID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(18), f.stock(t, f.oilID).SaleQuantity, "la primera línea debe revertirse con la tx")
}

func TestEngine_InvalidInput(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()

	assert.ErrorIs(t, f.engine.Sell(ctx, f.productID, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.engine.Purchase(ctx, f.productID, -1), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.engine.ReturnSale(ctx, f.productID, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.engine.Sell(ctx, 999, 1), domain.ErrNotFound)
}

func TestEngine_ConcurrentSellsNeverOversell(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()

	var ok, short atomic.Int64
	var g errgroup.Group
	for range 20 {
		g.Go(func() error {
			err := f.engine.Sell(ctx, f.productID, 1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				short.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(11), ok.Load())
	assert.Equal(t, int64(9), short.Load())
	assert.Equal(t, int64(1), f.stock(t, f.oilID).BalanceQuantity())
	assert.Equal(t, int64(39), f.stock(t, f.bottleID).BalanceQuantity())
}

func TestEngine_ReverseTransactionUsesRecordedMovements(t *testing.T) {
	f := newFixture(t, inventory.LedgerConfig{}, 100, 50)
	ctx := context.Background()
	ref := inventory.NewRef("EMZA-0001")

	reverse := func() error {
		return f.store.Run(ctx, func(
			stockRepo repository.StockRepository,
			_ repository.RecipeLineRepository,
			movRepo repository.StockMovementRepository,
		) error {
			return f.engine.ReverseTransactionInTx(ctx, stockRepo, movRepo, ref)
		})
	}

	err := f.store.Run(ctx, func(
		stockRepo repository.StockRepository,
		recipeRepo repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
	) error {
		return f.engine.SellInTx(ctx, stockRepo, recipeRepo, movRepo, ref, f.productID, 2)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(82), f.stock(t, f.oilID).BalanceQuantity())

	// La receta cambia: la reposición no debe depender de ella
	recipes := f.store.Repos().RecipeLines
	require.NoError(t, recipes.Delete(ctx, f.productID, f.oilID))
	require.NoError(t, recipes.Create(ctx, &entity.RecipeLine{ProductID: f.productID, StockID: f.oilID, Quantity: 3}))

	require.NoError(t, reverse())
	assert.Equal(t, int64(100), f.stock(t, f.oilID).BalanceQuantity())
	assert.Equal(t, int64(50), f.stock(t, f.bottleID).BalanceQuantity())
	oilMovs := f.movements(t, f.oilID)
	require.Len(t, oilMovs, 2)
	assert.Equal(t, entity.MovementTypeSaleReturn, oilMovs[0].Type)
	assert.Equal(t, ref.TransactionID, oilMovs[0].TransactionID)

	// Ya repuesta: una segunda reversión no suma nada
	require.NoError(t, reverse())
	assert.Equal(t, int64(100), f.stock(t, f.oilID).BalanceQuantity())
	assert.Len(t, f.movements(t, f.oilID), 2)

	assert.ErrorIs(t, f.engine.ReverseTransactionInTx(ctx, nil, nil, inventory.Ref{}), domain.ErrInvalidInput)
}
