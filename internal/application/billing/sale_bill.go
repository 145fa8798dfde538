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

const saleScope = "sale-bill"

// SaleBillUseCase crea facturas de venta y descuenta el inventario en una sola transacción.
type SaleBillUseCase struct {
	txRunner TxRunner
	engine   InventoryEngine
	repos    repository.Repos // lecturas fuera de transacción
	idem     IdempotencyStore
	cfg      Config
	log      *logger.Logger
}

// NewSaleBillUseCase construye el caso de uso. idem y log pueden ser nil.
func NewSaleBillUseCase(
	txRunner TxRunner,
	engine InventoryEngine,
	repos repository.Repos,
	idem IdempotencyStore,
	cfg Config,
	log *logger.Logger,
) *SaleBillUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleBillUseCase{
		txRunner: txRunner,
		engine:   engine,
		repos:    repos,
		idem:     idem,
		cfg:      cfg.withDefaults(),
		log:      log.Component("sale_bill"),
	}
}

// CreateSaleBill crea la cabecera con su número visible, vende cada línea a través del motor
// y guarda las líneas. Si alguna línea no tiene stock no queda nada persistido.
func (uc *SaleBillUseCase) CreateSaleBill(ctx context.Context, in dto.CreateSaleBillRequest) (*dto.SaleBillResponse, error) {
	if in.Discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if err := validateSaleLine(l); err != nil {
			return nil, err
		}
	}

	if in.IdempotencyKey != "" && uc.idem != nil {
		existingID, claimed, err := uc.idem.Claim(ctx, saleScope, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return uc.GetSaleBill(ctx, existingID)
		}
	}

	var bill *entity.SaleBill
	err := uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		customer, err := resolveCustomer(ctx, r.Customers, in.CustomerID)
		if err != nil {
			return err
		}
		bill = &entity.SaleBill{CustomerID: customer.ID, Discount: in.Discount}
		if err := r.SaleBills.Create(ctx, bill); err != nil {
			return err
		}
		// El número sale de la identidad recién asignada, en la misma tx que la cabecera
		bill.DisplayNumber = entity.FormatDisplayNumber(uc.cfg.SalePrefix, bill.ID)
		if err := r.SaleBills.SetDisplayNumber(ctx, bill.ID, bill.DisplayNumber); err != nil {
			return err
		}

		for _, item := range in.Lines {
			line, err := uc.sellLine(ctx, r, bill, item)
			if err != nil {
				return err
			}
			bill.Lines = append(bill.Lines, line)
		}
		return nil
	})
	if err != nil {
		uc.release(ctx, in.IdempotencyKey)
		return nil, err
	}
	if in.IdempotencyKey != "" && uc.idem != nil {
		if err := uc.idem.Complete(ctx, saleScope, in.IdempotencyKey, bill.ID); err != nil {
			uc.log.Warn().Err(err).Str("bill", bill.DisplayNumber).Msg("no se pudo completar la clave de idempotencia")
		}
	}

	uc.log.Info().
		Int64("bill_id", bill.ID).
		Str("bill", bill.DisplayNumber).
		Int("lines", len(bill.Lines)).
		Str("final_amount", bill.FinalAmount().StringFixed(2)).
		Msg("factura de venta creada")
	return toSaleBillResponse(bill), nil
}

// AddSaleLine agrega una línea a una factura existente y debita su receta.
func (uc *SaleBillUseCase) AddSaleLine(ctx context.Context, billID int64, in dto.SaleLineRequest) (*dto.SaleBillResponse, error) {
	if err := validateSaleLine(in); err != nil {
		return nil, err
	}
	var bill *entity.SaleBill
	err := uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		var err error
		bill, err = lockSaleBill(ctx, r.SaleBills, billID)
		if err != nil {
			return err
		}
		if _, err := uc.sellLine(ctx, r, bill, in); err != nil {
			return err
		}
		bill.Lines, err = r.SaleBills.ListLines(ctx, bill.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSaleBillResponse(bill), nil
}

// DeleteSaleLine borra la línea y devuelve al stock lo que consumió.
func (uc *SaleBillUseCase) DeleteSaleLine(ctx context.Context, billID, lineID int64) error {
	return uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		bill, err := lockSaleBill(ctx, r.SaleBills, billID)
		if err != nil {
			return err
		}
		line, err := r.SaleBills.GetLine(ctx, billID, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		if err := uc.restock(ctx, r, bill, line); err != nil {
			return err
		}
		return r.SaleBills.DeleteLine(ctx, billID, lineID)
	})
}

// UpdateSaleBill cambia cliente y/o descuento. El número visible se conserva.
func (uc *SaleBillUseCase) UpdateSaleBill(ctx context.Context, billID int64, in dto.UpdateSaleBillRequest) (*dto.SaleBillResponse, error) {
	if in.Discount != nil && in.Discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var bill *entity.SaleBill
	err := uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		var err error
		bill, err = lockSaleBill(ctx, r.SaleBills, billID)
		if err != nil {
			return err
		}
		if in.CustomerID != nil {
			customer, err := resolveCustomer(ctx, r.Customers, in.CustomerID)
			if err != nil {
				return err
			}
			bill.CustomerID = customer.ID
		}
		if in.Discount != nil {
			bill.Discount = *in.Discount
		}
		if err := r.SaleBills.Update(ctx, bill); err != nil {
			return err
		}
		bill.Lines, err = r.SaleBills.ListLines(ctx, bill.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSaleBillResponse(bill), nil
}

// DeleteSaleBill repone el stock de todas las líneas y borra la factura.
func (uc *SaleBillUseCase) DeleteSaleBill(ctx context.Context, billID int64) error {
	err := uc.txRunner.RunBilling(ctx, func(r repository.Repos) error {
		bill, err := lockSaleBill(ctx, r.SaleBills, billID)
		if err != nil {
			return err
		}
		lines, err := r.SaleBills.ListLines(ctx, bill.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := uc.restock(ctx, r, bill, line); err != nil {
				return err
			}
		}
		return r.SaleBills.Delete(ctx, bill.ID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("bill_id", billID).Msg("factura de venta eliminada")
	return nil
}

// GetSaleBill devuelve la factura con sus líneas y totales.
func (uc *SaleBillUseCase) GetSaleBill(ctx context.Context, billID int64) (*dto.SaleBillResponse, error) {
	bill, err := uc.repos.SaleBills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, domain.ErrNotFound
	}
	bill.Lines, err = uc.repos.SaleBills.ListLines(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	return toSaleBillResponse(bill), nil
}

// ListSaleBills lista facturas de la más reciente a la más antigua.
func (uc *SaleBillUseCase) ListSaleBills(ctx context.Context, page dto.PageRequest) (*dto.SaleBillListResponse, error) {
	page.DefaultPage()
	bills, err := uc.repos.SaleBills.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleBillListResponse{
		Items: make([]dto.SaleBillResponse, 0, len(bills)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, b := range bills {
		b.Lines, err = uc.repos.SaleBills.ListLines(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *toSaleBillResponse(b))
	}
	return out, nil
}

// sellLine valida el producto, aplica el precio por defecto, vende vía motor y guarda la línea.
// Cada línea lleva su propia TransactionID para poder revertir exactamente lo que debitó.
func (uc *SaleBillUseCase) sellLine(
	ctx context.Context,
	r repository.Repos,
	bill *entity.SaleBill,
	in dto.SaleLineRequest,
) (*entity.SaleLine, error) {
	product, err := r.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %d: %w", in.ProductID, domain.ErrNotFound)
	}
	price := product.Price
	if in.Price != nil {
		price = *in.Price
	}
	ref := inventory.NewRef(bill.DisplayNumber)
	if err := uc.engine.SellInTx(ctx, r.Stocks, r.RecipeLines, r.Movements, ref, product.ID, in.Quantity); err != nil {
		return nil, err
	}
	line := &entity.SaleLine{
		SaleBillID:    bill.ID,
		ProductID:     product.ID,
		Quantity:      in.Quantity,
		Price:         price,
		TransactionID: ref.TransactionID,
	}
	if err := r.SaleBills.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// restock devuelve al stock lo que la línea debitó al venderse, aunque la receta haya cambiado después.
func (uc *SaleBillUseCase) restock(ctx context.Context, r repository.Repos, bill *entity.SaleBill, line *entity.SaleLine) error {
	ref := inventory.Ref{TransactionID: line.TransactionID, Reference: bill.DisplayNumber}
	if err := uc.engine.ReverseTransactionInTx(ctx, r.Stocks, r.Movements, ref); err != nil {
		return fmt.Errorf("reponer línea %d: %w", line.ID, err)
	}
	return nil
}

func (uc *SaleBillUseCase) release(ctx context.Context, key string) {
	if key == "" || uc.idem == nil {
		return
	}
	if err := uc.idem.Release(ctx, saleScope, key); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo liberar la clave de idempotencia")
	}
}

func validateSaleLine(l dto.SaleLineRequest) error {
	if l.ProductID <= 0 || l.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if l.Price != nil && l.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// resolveCustomer nil -> cliente de mostrador; ID desconocido -> ErrNotFound.
func resolveCustomer(ctx context.Context, repo repository.CustomerRepository, id *int64) (*entity.Customer, error) {
	if id == nil {
		return repo.GetOrCreateWalkIn(ctx)
	}
	c, err := repo.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cliente %d: %w", *id, domain.ErrNotFound)
	}
	return c, nil
}

func lockSaleBill(ctx context.Context, repo repository.SaleBillRepository, id int64) (*entity.SaleBill, error) {
	bill, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, domain.ErrNotFound
	}
	return bill, nil
}
