package billing

import (
	"context"

	"github.com/jhoicas/emza-api/internal/application/inventory"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y facturación.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(repos repository.Repos) error) error
}

// InventoryEngine interfaz para integrar facturación con el motor de productos.
// Los métodos usan los repositorios del caller (misma transacción); si retornan error
// (ej: ErrInsufficientStock) el caller debe hacer rollback.
type InventoryEngine interface {
	SellInTx(
		ctx context.Context,
		stockRepo repository.StockRepository,
		recipeRepo repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
		ref inventory.Ref, productID, qty int64,
	) error
	// ReverseTransactionInTx repone lo debitado por los movimientos de ref.TransactionID.
	ReverseTransactionInTx(
		ctx context.Context,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		ref inventory.Ref,
	) error
}

// StockLedger primitiva de compra usada por las líneas de compra.
type StockLedger interface {
	CreditPurchaseInTx(
		ctx context.Context,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		ref inventory.Ref, stockID, qty int64,
	) (int64, error)
}

// IdempotencyStore evita crear dos veces la misma factura ante reintentos del cliente.
type IdempotencyStore interface {
	// Claim reserva la clave. Si ya fue completada devuelve el ID de la factura y claimed=false.
	// Si otra petición la tiene en curso devuelve domain.ErrConflict.
	Claim(ctx context.Context, scope, key string) (existingID int64, claimed bool, err error)
	// Complete asocia la clave reservada con la factura creada.
	Complete(ctx context.Context, scope, key string, id int64) error
	// Release libera una clave reservada cuando la creación falla.
	Release(ctx context.Context, scope, key string) error
}

// Config parámetros de numeración.
type Config struct {
	SalePrefix     string // EMZA
	PurchasePrefix string // PUR
}

func (c Config) withDefaults() Config {
	if c.SalePrefix == "" {
		c.SalePrefix = "EMZA"
	}
	if c.PurchasePrefix == "" {
		c.PurchasePrefix = "PUR"
	}
	return c
}
