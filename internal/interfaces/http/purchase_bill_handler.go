package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emza-api/internal/application/billing"
	"github.com/jhoicas/emza-api/internal/application/dto"
)

// PurchaseBillHandler facturas de compra: cada línea acredita un stock.
type PurchaseBillHandler struct {
	uc *billing.PurchaseBillUseCase
}

// NewPurchaseBillHandler construye el handler.
func NewPurchaseBillHandler(uc *billing.PurchaseBillUseCase) *PurchaseBillHandler {
	return &PurchaseBillHandler{uc: uc}
}

// Create godoc
// @Summary      Crear factura de compra
// @Tags         purchase-bills
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                         false  "Clave para reintentos seguros"
// @Param        body             body    dto.CreatePurchaseBillRequest  true   "Líneas de stock comprado"
// @Success      201  {object}  dto.PurchaseBillResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-bills [post]
func (h *PurchaseBillHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseBillRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	in.IdempotencyKey = c.Get(IdempotencyHeader)
	out, err := h.uc.CreatePurchaseBill(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/purchase-bills?limit=20&offset=0
func (h *PurchaseBillHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListPurchaseBills(c.UserContext(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/purchase-bills/:id
func (h *PurchaseBillHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	out, err := h.uc.GetPurchaseBill(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddLine POST /api/purchase-bills/:id/lines
func (h *PurchaseBillHandler) AddLine(c *fiber.Ctx) error {
	id, ok, err := idParam(c, "id")
	if !ok {
		return err
	}
	var in dto.PurchaseLineRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddPurchaseLine(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
