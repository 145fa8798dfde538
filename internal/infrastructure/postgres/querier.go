package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// Querier lo implementan *pgxpool.Pool y pgx.Tx; los repos funcionan igual dentro o fuera de una tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepos construye todos los repositorios sobre el mismo Querier.
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Stocks:        NewStockRepository(q),
		Movements:     NewStockMovementRepository(q),
		Products:      NewProductRepository(q),
		RecipeLines:   NewRecipeLineRepository(q),
		Customers:     NewCustomerRepository(q),
		SaleBills:     NewSaleBillRepository(q),
		PurchaseBills: NewPurchaseBillRepository(q),
	}
}
