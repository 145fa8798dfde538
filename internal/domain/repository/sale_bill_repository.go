package repository

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// SaleBillRepository puerto de persistencia de facturas de venta y sus líneas.
type SaleBillRepository interface {
	// Create inserta la cabecera y asigna bill.ID (identidad del almacenamiento).
	Create(ctx context.Context, bill *entity.SaleBill) error
	// SetDisplayNumber guarda el número visible; falla con ErrConflict si ya estaba asignado.
	SetDisplayNumber(ctx context.Context, id int64, number string) error
	GetByID(ctx context.Context, id int64) (*entity.SaleBill, error)
	// GetForUpdate bloquea la cabecera (serializa cambios de líneas sobre la misma factura).
	GetForUpdate(ctx context.Context, id int64) (*entity.SaleBill, error)
	Update(ctx context.Context, bill *entity.SaleBill) error
	List(ctx context.Context, limit, offset int) ([]*entity.SaleBill, error)
	Delete(ctx context.Context, id int64) error

	CreateLine(ctx context.Context, line *entity.SaleLine) error
	GetLine(ctx context.Context, billID, lineID int64) (*entity.SaleLine, error)
	ListLines(ctx context.Context, billID int64) ([]*entity.SaleLine, error)
	DeleteLine(ctx context.Context, billID, lineID int64) error
}
