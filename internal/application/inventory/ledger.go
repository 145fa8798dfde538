package inventory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// Ref identifica la operación a la que pertenecen los movimientos del libro.
// TransactionID agrupa todos los movimientos de una venta, compra o factura.
type Ref struct {
	TransactionID string
	Reference     string
}

// NewRef genera una referencia con un TransactionID nuevo.
func NewRef(reference string) Ref {
	return Ref{TransactionID: uuid.New().String(), Reference: reference}
}

// LedgerConfig opciones del libro de stock.
type LedgerConfig struct {
	// AllowNegative permite que una venta deje el saldo de un stock por debajo de cero.
	AllowNegative bool
}

// Ledger aplica las tres primitivas del libro sobre un stock: compra, venta y devolución.
// Cada primitiva bloquea la fila del stock y registra un StockMovement en la misma transacción.
type Ledger struct {
	txRunner      TxRunner
	allowNegative bool
	now           func() time.Time
}

// NewLedger construye el libro de stock.
func NewLedger(txRunner TxRunner, cfg LedgerConfig) *Ledger {
	return &Ledger{
		txRunner:      txRunner,
		allowNegative: cfg.AllowNegative,
		now:           time.Now,
	}
}

// CreditPurchase suma qty a purchase_quantity del stock. Devuelve el nuevo acumulado.
func (l *Ledger) CreditPurchase(ctx context.Context, stockID, qty int64) (int64, error) {
	return l.runSingle(ctx, stockID, qty, entity.MovementTypePurchase)
}

// DebitSale suma qty a sale_quantity del stock. Devuelve el nuevo acumulado.
// Sin AllowNegative falla con ErrInsufficientStock si qty supera el saldo.
func (l *Ledger) DebitSale(ctx context.Context, stockID, qty int64) (int64, error) {
	return l.runSingle(ctx, stockID, qty, entity.MovementTypeSale)
}

// ReverseSale resta qty de sale_quantity del stock. Devuelve el nuevo acumulado.
func (l *Ledger) ReverseSale(ctx context.Context, stockID, qty int64) (int64, error) {
	return l.runSingle(ctx, stockID, qty, entity.MovementTypeSaleReturn)
}

// CreditPurchaseInTx igual que CreditPurchase usando los repositorios de la tx del caller.
func (l *Ledger) CreditPurchaseInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, stockID, qty int64,
) (int64, error) {
	return l.apply(ctx, stockRepo, movRepo, ref, stockID, qty, entity.MovementTypePurchase)
}

// DebitSaleInTx igual que DebitSale usando los repositorios de la tx del caller.
func (l *Ledger) DebitSaleInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, stockID, qty int64,
) (int64, error) {
	return l.apply(ctx, stockRepo, movRepo, ref, stockID, qty, entity.MovementTypeSale)
}

// ReverseSaleInTx igual que ReverseSale usando los repositorios de la tx del caller.
func (l *Ledger) ReverseSaleInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, stockID, qty int64,
) (int64, error) {
	return l.apply(ctx, stockRepo, movRepo, ref, stockID, qty, entity.MovementTypeSaleReturn)
}

func (l *Ledger) runSingle(ctx context.Context, stockID, qty int64, typ entity.MovementType) (int64, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidInput
	}
	var total int64
	err := l.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.RecipeLineRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		total, err = l.apply(ctx, stockRepo, movRepo, NewRef(""), stockID, qty, typ)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// apply bloquea la fila (SELECT FOR UPDATE), valida, actualiza acumulados y guarda el movimiento.
func (l *Ledger) apply(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	ref Ref, stockID, qty int64,
	typ entity.MovementType,
) (int64, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidInput
	}
	stock, err := stockRepo.GetForUpdate(ctx, stockID)
	if err != nil {
		return 0, err
	}
	if stock == nil {
		return 0, domain.ErrNotFound
	}

	var total int64
	switch typ {
	case entity.MovementTypePurchase:
		if stock.PurchaseQuantity > math.MaxInt64-qty {
			return 0, domain.ErrInvalidInput
		}
		stock.PurchaseQuantity += qty
		total = stock.PurchaseQuantity
	case entity.MovementTypeSale:
		if !l.allowNegative && qty > stock.BalanceQuantity() {
			return 0, fmt.Errorf("stock %d: solicitado %d, saldo %d: %w",
				stockID, qty, stock.BalanceQuantity(), domain.ErrInsufficientStock)
		}
		if stock.SaleQuantity > math.MaxInt64-qty {
			return 0, domain.ErrInvalidInput
		}
		stock.SaleQuantity += qty
		total = stock.SaleQuantity
	case entity.MovementTypeSaleReturn:
		// No se devuelve más de lo vendido.
		if qty > stock.SaleQuantity {
			return 0, fmt.Errorf("stock %d: devolución %d supera lo vendido %d: %w",
				stockID, qty, stock.SaleQuantity, domain.ErrInvalidInput)
		}
		stock.SaleQuantity -= qty
		total = stock.SaleQuantity
	default:
		return 0, domain.ErrInvalidInput
	}

	now := l.now()
	stock.UpdatedAt = now
	if err := stockRepo.UpdateQuantities(ctx, stock); err != nil {
		return 0, err
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		TransactionID: ref.TransactionID,
		StockID:       stockID,
		Type:          typ,
		Quantity:      qty,
		Reference:     ref.Reference,
		CreatedAt:     now,
	}
	if mov.TransactionID == "" {
		mov.TransactionID = uuid.New().String()
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return 0, err
	}
	return total, nil
}
