package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

var (
	_ repository.StockRepository     = (*StockRepo)(nil)
	_ repository.StockTypeRepository = (*StockTypeRepo)(nil)
)

const stockColumns = `id, name, stock_type_id, opening_quantity, purchase_quantity, sale_quantity, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(&s.ID, &s.Name, &s.StockTypeID, &s.OpeningQuantity,
		&s.PurchaseQuantity, &s.SaleQuantity, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta el stock y asigna ID y timestamps.
func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stocks (name, stock_type_id, opening_quantity, purchase_quantity, sale_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		stock.Name, stock.StockTypeID, stock.OpeningQuantity, stock.PurchaseQuantity, stock.SaleQuantity,
	).Scan(&stock.ID, &stock.CreatedAt, &stock.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// GetByID obtiene un stock por ID; nil si no existe.
func (r *StockRepo) GetByID(ctx context.Context, id int64) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// List lista stocks por ID ascendente.
func (r *StockRepo) List(ctx context.Context, limit, offset int) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+stockColumns+` FROM stocks ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()

	out := []*entity.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// LockMany bloquea las filas en orden ascendente de ID. Los IDs inexistentes no aparecen en el mapa.
func (r *StockRepo) LockMany(ctx context.Context, ids []int64) (map[int64]*entity.Stock, error) {
	sorted := slices.Compact(slices.Sorted(slices.Values(ids)))
	out := make(map[int64]*entity.Stock, len(sorted))
	if len(sorted) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+stockColumns+` FROM stocks WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return nil, fmt.Errorf("lock stocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// UpdateQuantities persiste los acumulados de compra y venta.
func (r *StockRepo) UpdateQuantities(ctx context.Context, stock *entity.Stock) error {
	query := `
		UPDATE stocks SET purchase_quantity = $2, sale_quantity = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, stock.ID, stock.PurchaseQuantity, stock.SaleQuantity).Scan(&stock.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update stock quantities: %w", err)
	}
	return nil
}

// StockTypeRepo implementación de StockTypeRepository.
type StockTypeRepo struct {
	q Querier
}

// NewStockTypeRepository construye el adaptador de tipos de stock.
func NewStockTypeRepository(q Querier) *StockTypeRepo {
	return &StockTypeRepo{q: q}
}

func (r *StockTypeRepo) Create(ctx context.Context, st *entity.StockType) error {
	query := `
		INSERT INTO stock_types (name, metric) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, st.Name, string(st.Metric)).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock type: %w", err)
	}
	return nil
}

func (r *StockTypeRepo) GetByID(ctx context.Context, id int64) (*entity.StockType, error) {
	var st entity.StockType
	var metric string
	err := r.q.QueryRow(ctx,
		`SELECT id, name, metric, created_at, updated_at FROM stock_types WHERE id = $1`, id,
	).Scan(&st.ID, &st.Name, &metric, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock type: %w", err)
	}
	st.Metric = entity.Metric(metric)
	return &st, nil
}

func (r *StockTypeRepo) List(ctx context.Context) ([]*entity.StockType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, metric, created_at, updated_at FROM stock_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stock types: %w", err)
	}
	defer rows.Close()

	out := []*entity.StockType{}
	for rows.Next() {
		var st entity.StockType
		var metric string
		if err := rows.Scan(&st.ID, &st.Name, &metric, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock type: %w", err)
		}
		st.Metric = entity.Metric(metric)
		out = append(out, &st)
	}
	return out, rows.Err()
}
