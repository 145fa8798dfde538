package repository

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el historial del libro de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByStock(ctx context.Context, stockID int64, limit, offset int) ([]*entity.StockMovement, error)
	// ListByTransaction devuelve los movimientos de una operación en orden de registro.
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error)
}
