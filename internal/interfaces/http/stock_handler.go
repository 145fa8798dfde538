package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emza-api/internal/application/dto"
	"github.com/jhoicas/emza-api/internal/application/usecase"
)

// StockHandler tipos de stock, stocks y primitivas del libro.
type StockHandler struct {
	uc *usecase.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *usecase.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// CreateStockType godoc
// @Summary      Crear tipo de stock
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockTypeRequest  true  "Nombre y unidad (pcs|ml)"
// @Success      201   {object}  dto.StockTypeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-types [post]
func (h *StockHandler) CreateStockType(c *fiber.Ctx) error {
	var in dto.CreateStockTypeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateStockType(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListStockTypes godoc
// @Summary      Listar tipos de stock
// @Tags         stocks
// @Produce      json
// @Success      200  {array}  dto.StockTypeResponse
// @Router       /api/stock-types [get]
func (h *StockHandler) ListStockTypes(c *fiber.Ctx) error {
	out, err := h.uc.ListStockTypes(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear stock
// @Description  Las compras y ventas arrancan en cero; solo cambian a través del libro.
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "Datos del stock"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stocks [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateStock(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar stocks
// @Tags         stocks
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.StockListResponse
// @Router       /api/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListStocks(c.UserContext(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener stock
// @Tags         stocks
// @Produce      json
// @Param        id   path  int  true  "ID del stock"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	out, err := h.uc.GetStock(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial del libro de un stock (más reciente primero)
// @Tags         stocks
// @Produce      json
// @Param        id      path   int  true   "ID del stock"
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.StockMovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/stocks/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	out, err := h.uc.ListMovements(c.UserContext(), id, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Purchase godoc
// @Summary      Acreditar compra en el libro
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del stock"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad"
// @Success      200   {object}  dto.LedgerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id}/purchase [post]
func (h *StockHandler) Purchase(c *fiber.Ctx) error {
	return h.ledgerOp(c, h.uc.Purchase)
}

// Sale godoc
// @Summary      Debitar venta en el libro
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del stock"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad"
// @Success      200   {object}  dto.LedgerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id}/sale [post]
func (h *StockHandler) Sale(c *fiber.Ctx) error {
	return h.ledgerOp(c, h.uc.Sale)
}

// SaleReturn godoc
// @Summary      Revertir venta en el libro
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del stock"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad"
// @Success      200   {object}  dto.LedgerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id}/sale-return [post]
func (h *StockHandler) SaleReturn(c *fiber.Ctx) error {
	return h.ledgerOp(c, h.uc.SaleReturn)
}

func (h *StockHandler) ledgerOp(c *fiber.Ctx, op func(ctx context.Context, stockID, qty int64) (*dto.LedgerResponse, error)) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	var in dto.QuantityRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := op(c.UserContext(), id, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
