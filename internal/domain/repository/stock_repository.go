package repository

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// StockRepository define el puerto de persistencia de stocks.
// Usado dentro de transacciones para garantizar consistencia del libro.
type StockRepository interface {
	Create(ctx context.Context, stock *entity.Stock) error
	GetByID(ctx context.Context, id int64) (*entity.Stock, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Stock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Stock, error)
	// LockMany bloquea varias filas en orden ascendente de ID (evita deadlocks entre ventas).
	LockMany(ctx context.Context, ids []int64) (map[int64]*entity.Stock, error)
	// UpdateQuantities persiste purchase_quantity y sale_quantity.
	UpdateQuantities(ctx context.Context, stock *entity.Stock) error
}

// StockTypeRepository puerto para tipos de stock (datos de referencia).
type StockTypeRepository interface {
	Create(ctx context.Context, st *entity.StockType) error
	GetByID(ctx context.Context, id int64) (*entity.StockType, error)
	List(ctx context.Context) ([]*entity.StockType, error)
}
