package repository

import (
	"context"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	// GetOrCreateWalkIn devuelve el cliente de mostrador, creándolo la primera vez.
	GetOrCreateWalkIn(ctx context.Context) (*entity.Customer, error)
}
