package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository    = (*ProductRepo)(nil)
	_ repository.RecipeLineRepository = (*RecipeLineRepo)(nil)
)

// ProductRepo implementación de ProductRepository (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (name, price) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	if err := r.q.QueryRow(ctx, query, p.Name, p.Price).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx,
		`SELECT id, name, price, created_at, updated_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update persiste nombre y precio; refresca updated_at.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, price = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query, p.ID, p.Name, p.Price).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, price, created_at, updated_at FROM products ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []*entity.Product{}
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Delete borra el producto; la receta cae en cascada. Con ventas registradas devuelve ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecipeLineRepo implementación de RecipeLineRepository.
type RecipeLineRepo struct {
	q Querier
}

// NewRecipeLineRepository construye el adaptador de recetas.
func NewRecipeLineRepository(q Querier) *RecipeLineRepo {
	return &RecipeLineRepo{q: q}
}

func (r *RecipeLineRepo) Create(ctx context.Context, line *entity.RecipeLine) error {
	query := `
		INSERT INTO recipe_lines (product_id, stock_id, quantity) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, line.ProductID, line.StockID, line.Quantity).
		Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRecipeLine
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert recipe line: %w", err)
	}
	return nil
}

// ListByProduct devuelve la receta ordenada por stock_id.
func (r *RecipeLineRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.RecipeLine, error) {
	query := `
		SELECT id, product_id, stock_id, quantity, created_at, updated_at
		FROM recipe_lines WHERE product_id = $1
		ORDER BY stock_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()

	out := []*entity.RecipeLine{}
	for rows.Next() {
		var l entity.RecipeLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.StockID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *RecipeLineRepo) Delete(ctx context.Context, productID, stockID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM recipe_lines WHERE product_id = $1 AND stock_id = $2`, productID, stockID)
	if err != nil {
		return fmt.Errorf("delete recipe line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
