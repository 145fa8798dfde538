package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// StockLedger primitivas del libro expuestas por la API.
type StockLedger interface {
	CreditPurchase(ctx context.Context, stockID, qty int64) (int64, error)
	DebitSale(ctx context.Context, stockID, qty int64) (int64, error)
	ReverseSale(ctx context.Context, stockID, qty int64) (int64, error)
}

// StockUseCase catálogo de tipos de stock y stocks, más las primitivas del libro.
// Las cantidades de compra y venta solo cambian a través del libro.
type StockUseCase struct {
	typeRepo  repository.StockTypeRepository
	stockRepo repository.StockRepository
	movRepo   repository.StockMovementRepository
	ledger    StockLedger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	typeRepo repository.StockTypeRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	ledger StockLedger,
) *StockUseCase {
	return &StockUseCase{typeRepo: typeRepo, stockRepo: stockRepo, movRepo: movRepo, ledger: ledger}
}

// CreateStockType crea un tipo de stock con su unidad de medida.
func (uc *StockUseCase) CreateStockType(ctx context.Context, in dto.CreateStockTypeRequest) (*dto.StockTypeResponse, error) {
	name := strings.TrimSpace(in.Name)
	metric := entity.Metric(in.Metric)
	if name == "" || !metric.Valid() {
		return nil, domain.ErrInvalidInput
	}
	st := &entity.StockType{Name: name, Metric: metric}
	if err := uc.typeRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return toStockTypeResponse(st), nil
}

// ListStockTypes lista todos los tipos de stock.
func (uc *StockUseCase) ListStockTypes(ctx context.Context) ([]*dto.StockTypeResponse, error) {
	list, err := uc.typeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.StockTypeResponse, 0, len(list))
	for _, st := range list {
		out = append(out, toStockTypeResponse(st))
	}
	return out, nil
}

// CreateStock crea un stock con su cantidad de apertura. Compras y ventas arrancan en 0.
func (uc *StockUseCase) CreateStock(ctx context.Context, in dto.CreateStockRequest) (*dto.StockResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.OpeningQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	st, err := uc.typeRepo.GetByID(ctx, in.StockTypeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}
	stock := &entity.Stock{
		Name:            name,
		StockTypeID:     st.ID,
		OpeningQuantity: in.OpeningQuantity,
	}
	if err := uc.stockRepo.Create(ctx, stock); err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// GetStock obtiene un stock por ID.
func (uc *StockUseCase) GetStock(ctx context.Context, id int64) (*dto.StockResponse, error) {
	stock, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	return toStockResponse(stock), nil
}

// ListStocks lista stocks con paginación.
func (uc *StockUseCase) ListStocks(ctx context.Context, page dto.PageRequest) (*dto.StockListResponse, error) {
	page.DefaultPage()
	list, err := uc.stockRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStockResponse(s))
	}
	return &dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListMovements historial del libro para un stock, del más reciente al más antiguo.
func (uc *StockUseCase) ListMovements(ctx context.Context, stockID int64, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	if _, err := uc.GetStock(ctx, stockID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.movRepo.ListByStock(ctx, stockID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			StockID:       m.StockID,
			Type:          string(m.Type),
			Quantity:      m.Quantity,
			Reference:     m.Reference,
			CreatedAt:     m.CreatedAt,
		})
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Purchase acredita una compra directa sobre el stock.
func (uc *StockUseCase) Purchase(ctx context.Context, stockID, qty int64) (*dto.LedgerResponse, error) {
	return uc.apply(ctx, stockID, qty, uc.ledger.CreditPurchase)
}

// Sale debita una venta directa sobre el stock.
func (uc *StockUseCase) Sale(ctx context.Context, stockID, qty int64) (*dto.LedgerResponse, error) {
	return uc.apply(ctx, stockID, qty, uc.ledger.DebitSale)
}

// SaleReturn revierte una venta directa sobre el stock.
func (uc *StockUseCase) SaleReturn(ctx context.Context, stockID, qty int64) (*dto.LedgerResponse, error) {
	return uc.apply(ctx, stockID, qty, uc.ledger.ReverseSale)
}

func (uc *StockUseCase) apply(
	ctx context.Context,
	stockID, qty int64,
	op func(ctx context.Context, stockID, qty int64) (int64, error),
) (*dto.LedgerResponse, error) {
	total, err := op(ctx, stockID, qty)
	if err != nil {
		return nil, err
	}
	stock, err := uc.GetStock(ctx, stockID)
	if err != nil {
		return nil, err
	}
	return &dto.LedgerResponse{Total: total, Stock: *stock}, nil
}

func toStockTypeResponse(st *entity.StockType) *dto.StockTypeResponse {
	return &dto.StockTypeResponse{
		ID:        st.ID,
		Name:      st.Name,
		Metric:    string(st.Metric),
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}

func toStockResponse(s *entity.Stock) *dto.StockResponse {
	return &dto.StockResponse{
		ID:               s.ID,
		Name:             s.Name,
		StockTypeID:      s.StockTypeID,
		OpeningQuantity:  s.OpeningQuantity,
		PurchaseQuantity: s.PurchaseQuantity,
		SaleQuantity:     s.SaleQuantity,
		BalanceQuantity:  s.BalanceQuantity(),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
