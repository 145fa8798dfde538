package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/application/inventory"
	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
	"github.com/jhoicas/emza-api/pkg/logger"
)

const purchaseScope = "purchase-bill"

// PurchaseBillUseCase registra compras de stock: cada línea acredita purchase_quantity.
type PurchaseBillUseCase struct {
	txRunner TxRunner
	ledger   StockLedger
	repos    repository.Repos
	idem     IdempotencyStore
	cfg      Config
	log      *logger.Logger
}

// NewPurchaseBillUseCase construye el caso de uso. idem y log pueden ser nil.
func NewPurchaseBillUseCase(
	txRunner TxRunner,
	ledger StockLedger,
	repos repository.Repos,
	idem IdempotencyStore,
	cfg Config,
	log *logger.Logger,
) *PurchaseBillUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseBillUseCase{
		txRunner: txRunner,
		ledger:   ledger,
		repos:    repos,
		idem:     idem,
		cfg:      cfg.withDefaults(),
		log:      log.Component("purchase_bill"),
	}
}

// CreatePurchaseBill crea cabecera, número visible y líneas en una sola transacción.
func (uc *PurchaseBillUseCase) CreatePurchaseBill(ctx context.Context, in dto.CreatePurchaseBillRequest) (*dto.PurchaseBillResponse, error) {
	for _, l := range in.Lines {
		if err := validatePurchaseLine(l); err != nil {
			return nil, err
		}
	}

	if in.IdempotencyKey != "" && uc.idem != nil {
		existingID, claimed, err := uc.idem.Claim(ctx, purchaseScope, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return uc.GetPurchaseBill(ctx, existingID)
		}
	}

	var bill *entity.PurchaseBill
	err := uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		bill = &entity.PurchaseBill{}
		if err := r.PurchaseBills.Create(ctx, bill); err != nil {
			return err
		}
		bill.DisplayNumber = entity.FormatDisplayNumber(uc.cfg.PurchasePrefix, bill.ID)
		if err := r.PurchaseBills.SetDisplayNumber(ctx, bill.ID, bill.DisplayNumber); err != nil {
			return err
		}
		ref := inventory.NewRef(bill.DisplayNumber)
		for _, item := range in.Lines {
			line, err := uc.purchaseLine(ctx, r, ref, bill.ID, item)
			if err != nil {
				return err
			}
			bill.Lines = append(bill.Lines, line)
		}
		return nil
	})
	if err != nil {
		if in.IdempotencyKey != "" && uc.idem != nil {
			if rerr := uc.idem.Release(ctx, purchaseScope, in.IdempotencyKey); rerr != nil {
				uc.log.Warn().Err(rerr).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
		return nil, err
	}
	if in.IdempotencyKey != "" && uc.idem != nil {
		if err := uc.idem.Complete(ctx, purchaseScope, in.IdempotencyKey, bill.ID); err != nil {
			uc.log.Warn().Err(err).Str("bill", bill.DisplayNumber).Msg("no se pudo completar la clave de idempotencia")
		}
	}

	uc.log.Info().
		Int64("bill_id", bill.ID).
		Str("bill", bill.DisplayNumber).
		Int("lines", len(bill.Lines)).
		Str("amount", bill.Amount().StringFixed(2)).
		Msg("factura de compra creada")
	return toPurchaseBillResponse(bill), nil
}

// AddPurchaseLine agrega una línea a una compra existente.
func (uc *PurchaseBillUseCase) AddPurchaseLine(ctx context.Context, billID int64, in dto.PurchaseLineRequest) (*dto.PurchaseBillResponse, error) {
	if err := validatePurchaseLine(in); err != nil {
		return nil, err
	}
	var bill *entity.PurchaseBill
	err := uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		var err error
		bill, err = r.PurchaseBills.GetForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return domain.ErrNotFound
		}
		if _, err := uc.purchaseLine(ctx, r, inventory.NewRef(bill.DisplayNumber), bill.ID, in); err != nil {
			return err
		}
		bill.Lines, err = r.PurchaseBills.ListLines(ctx, bill.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseBillResponse(bill), nil
}

// GetPurchaseBill devuelve la compra con sus líneas.
func (uc *PurchaseBillUseCase) GetPurchaseBill(ctx context.Context, billID int64) (*dto.PurchaseBillResponse, error) {
	bill, err := uc.repos.PurchaseBills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, domain.ErrNotFound
	}
	bill.Lines, err = uc.repos.PurchaseBills.ListLines(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	return toPurchaseBillResponse(bill), nil
}

// ListPurchaseBills lista compras de la más reciente a la más antigua.
func (uc *PurchaseBillUseCase) ListPurchaseBills(ctx context.Context, page dto.PageRequest) (*dto.PurchaseBillListResponse, error) {
	page.DefaultPage()
	bills, err := uc.repos.PurchaseBills.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.PurchaseBillListResponse{
		Items: make([]dto.PurchaseBillResponse, 0, len(bills)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, b := range bills {
		b.Lines, err = uc.repos.PurchaseBills.ListLines(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *toPurchaseBillResponse(b))
	}
	return out, nil
}

func (uc *PurchaseBillUseCase) purchaseLine(
	ctx context.Context,
	r repository.Repos,
	ref inventory.Ref,
	billID int64,
	in dto.PurchaseLineRequest,
) (*entity.PurchaseLine, error) {
	if _, err := uc.ledger.CreditPurchaseInTx(ctx, r.Stocks, r.Movements, ref, in.StockID, in.Quantity); err != nil {
		return nil, fmt.Errorf("stock %d: %w", in.StockID, err)
	}
	line := &entity.PurchaseLine{
		PurchaseBillID: billID,
		StockID:        in.StockID,
		Quantity:       in.Quantity,
		Price:          in.Price,
	}
	if err := r.PurchaseBills.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func validatePurchaseLine(l dto.PurchaseLineRequest) error {
	if l.StockID <= 0 || l.Quantity <= 0 || l.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}
