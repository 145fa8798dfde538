package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emza-api/internal/application/billing"
	"github.com/jhoicas/emza-api/internal/application/dto"
)

// SaleBillHandler facturas de venta: cada línea descuenta la receta del producto.
type SaleBillHandler struct {
	uc *billing.SaleBillUseCase
}

// NewSaleBillHandler construye el handler.
func NewSaleBillHandler(uc *billing.SaleBillUseCase) *SaleBillHandler {
	return &SaleBillHandler{uc: uc}
}

// Create godoc
// @Summary      Crear factura de venta
// @Description  Sin customer_id se factura al cliente de mostrador. Las líneas sin precio toman el de lista.
// @Description  Si alguna línea no tiene stock no se persiste nada (409 INSUFFICIENT_STOCK).
// @Tags         sale-bills
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave para reintentos seguros"
// @Param        body             body    dto.CreateSaleBillRequest  true   "Cliente, descuento y líneas"
// @Success      201  {object}  dto.SaleBillResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/sale-bills [post]
func (h *SaleBillHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleBillRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	in.IdempotencyKey = c.Get(IdempotencyHeader)
	out, err := h.uc.CreateSaleBill(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar facturas de venta (más recientes primero)
// @Tags         sale-bills
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleBillListResponse
// @Router       /api/sale-bills [get]
func (h *SaleBillHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListSaleBills(c.UserContext(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura de venta
// @Tags         sale-bills
// @Produce      json
// @Param        id   path  int  true  "ID de la factura"
// @Success      200  {object}  dto.SaleBillResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sale-bills/{id} [get]
func (h *SaleBillHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	out, err := h.uc.GetSaleBill(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Cambiar cliente o descuento
// @Description  El número visible no cambia.
// @Tags         sale-bills
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID de la factura"
// @Param        body  body  dto.UpdateSaleBillRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.SaleBillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sale-bills/{id} [patch]
func (h *SaleBillHandler) Update(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	var in dto.UpdateSaleBillRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateSaleBill(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar factura de venta
// @Description  Repone el stock de todas las líneas.
// @Tags         sale-bills
// @Param        id   path  int  true  "ID de la factura"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sale-bills/{id} [delete]
func (h *SaleBillHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	if err := h.uc.DeleteSaleBill(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLine godoc
// @Summary      Agregar línea a una factura de venta
// @Tags         sale-bills
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID de la factura"
// @Param        body  body  dto.SaleLineRequest  true  "Producto, cantidad y precio opcional"
// @Success      201   {object}  dto.SaleBillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sale-bills/{id}/lines [post]
func (h *SaleBillHandler) AddLine(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	var in dto.SaleLineRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddSaleLine(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteLine godoc
// @Summary      Quitar línea de una factura de venta (repone stock)
// @Tags         sale-bills
// @Param        id      path  int  true  "ID de la factura"
// @Param        lineId  path  int  true  "ID de la línea"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sale-bills/{id}/lines/{lineId} [delete]
func (h *SaleBillHandler) DeleteLine(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	lineID, ok, err := idParam(c, "lineId")
	if !ok {
		return err
	}
	if err := h.uc.DeleteSaleLine(c.UserContext(), id, lineID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
