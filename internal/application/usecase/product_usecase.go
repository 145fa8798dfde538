package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// ProductEngine operaciones a nivel producto del motor de inventario.
type ProductEngine interface {
	Sell(ctx context.Context, productID, qty int64) error
	Purchase(ctx context.Context, productID, qty int64) error
	ReturnSale(ctx context.Context, productID, qty int64) error
}

// AvailabilityResolver calcula unidades vendibles de un producto.
type AvailabilityResolver interface {
	AvailableQuantity(ctx context.Context, productID int64) (int64, error)
}

// ProductUseCase CRUD de productos y su receta. Los saldos se mueven vía motor.
type ProductUseCase struct {
	repo       repository.ProductRepository
	recipeRepo repository.RecipeLineRepository
	stockRepo  repository.StockRepository
	engine     ProductEngine
	resolver   AvailabilityResolver
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	recipeRepo repository.RecipeLineRepository,
	stockRepo repository.StockRepository,
	engine ProductEngine,
	resolver AvailabilityResolver,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		recipeRepo: recipeRepo,
		stockRepo:  stockRepo,
		engine:     engine,
		resolver:   resolver,
	}
}

// Create crea un nuevo producto sin receta.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	product := &entity.Product{Name: name, Price: in.Price}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product, nil), nil
}

// GetByID obtiene un producto con su receta.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe, err := uc.recipe(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, recipe), nil
}

// Update actualiza nombre y/o precio.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	recipe, err := uc.recipe(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, recipe), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto y su receta. Falla con ErrConflict si ya fue facturado.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.repo.Delete(ctx, id)
}

// AddRecipeLine agrega un stock a la receta. Un stock aparece a lo sumo una vez por producto.
func (uc *ProductUseCase) AddRecipeLine(ctx context.Context, productID int64, in dto.AddRecipeLineRequest) (*dto.ProductResponse, error) {
	if in.Quantity <= 0 || in.StockID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.get(ctx, productID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.stockRepo.GetByID(ctx, in.StockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	line := &entity.RecipeLine{ProductID: product.ID, StockID: stock.ID, Quantity: in.Quantity}
	if err := uc.recipeRepo.Create(ctx, line); err != nil {
		return nil, err
	}
	recipe, err := uc.recipe(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, recipe), nil
}

// RemoveRecipeLine quita un stock de la receta.
func (uc *ProductUseCase) RemoveRecipeLine(ctx context.Context, productID, stockID int64) error {
	if _, err := uc.get(ctx, productID); err != nil {
		return err
	}
	return uc.recipeRepo.Delete(ctx, productID, stockID)
}

// Availability unidades del producto que pueden venderse con el stock actual.
func (uc *ProductUseCase) Availability(ctx context.Context, productID int64) (*dto.AvailabilityResponse, error) {
	qty, err := uc.resolver.AvailableQuantity(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{ProductID: productID, AvailableQuantity: qty}, nil
}

// Sell vende qty unidades fuera de factura y devuelve la disponibilidad resultante.
func (uc *ProductUseCase) Sell(ctx context.Context, productID, qty int64) (*dto.AvailabilityResponse, error) {
	return uc.apply(ctx, productID, qty, uc.engine.Sell)
}

// Purchase acredita qty unidades en toda la receta.
func (uc *ProductUseCase) Purchase(ctx context.Context, productID, qty int64) (*dto.AvailabilityResponse, error) {
	return uc.apply(ctx, productID, qty, uc.engine.Purchase)
}

// ReturnSale revierte la venta de qty unidades.
func (uc *ProductUseCase) ReturnSale(ctx context.Context, productID, qty int64) (*dto.AvailabilityResponse, error) {
	return uc.apply(ctx, productID, qty, uc.engine.ReturnSale)
}

func (uc *ProductUseCase) apply(
	ctx context.Context,
	productID, qty int64,
	op func(ctx context.Context, productID, qty int64) error,
) (*dto.AvailabilityResponse, error) {
	if err := op(ctx, productID, qty); err != nil {
		return nil, err
	}
	return uc.Availability(ctx, productID)
}

func (uc *ProductUseCase) get(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (uc *ProductUseCase) recipe(ctx context.Context, productID int64) ([]dto.RecipeLineResponse, error) {
	lines, err := uc.recipeRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecipeLineResponse, 0, len(lines))
	for _, l := range lines {
		item := dto.RecipeLineResponse{ID: l.ID, StockID: l.StockID, Quantity: l.Quantity}
		s, err := uc.stockRepo.GetByID(ctx, l.StockID)
		if err != nil {
			return nil, fmt.Errorf("stock %d de la receta: %w", l.StockID, err)
		}
		if s != nil {
			item.StockName = s.Name
		}
		out = append(out, item)
	}
	return out, nil
}

func toProductResponse(p *entity.Product, recipe []dto.RecipeLineResponse) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Recipe:    recipe,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
