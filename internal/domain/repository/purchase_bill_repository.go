package repository

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// PurchaseBillRepository puerto de persistencia de facturas de compra y sus líneas.
type PurchaseBillRepository interface {
	Create(ctx context.Context, bill *entity.PurchaseBill) error
	SetDisplayNumber(ctx context.Context, id int64, number string) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseBill, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseBill, error)
	List(ctx context.Context, limit, offset int) ([]*entity.PurchaseBill, error)

	CreateLine(ctx context.Context, line *entity.PurchaseLine) error
	ListLines(ctx context.Context, billID int64) ([]*entity.PurchaseLine, error)
}
