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

var _ repository.PurchaseBillRepository = (*PurchaseBillRepo)(nil)

const purchaseBillColumns = `id, COALESCE(display_number, ''), created_at, updated_at`

// PurchaseBillRepo implementación de PurchaseBillRepository.
type PurchaseBillRepo struct {
	q Querier
}

// NewPurchaseBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseBillRepository(q Querier) *PurchaseBillRepo {
	return &PurchaseBillRepo{q: q}
}

func (r *PurchaseBillRepo) Create(ctx context.Context, bill *entity.PurchaseBill) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO purchase_bills DEFAULT VALUES RETURNING id, created_at, updated_at`,
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert purchase bill: %w", err)
	}
	return nil
}

func (r *PurchaseBillRepo) SetDisplayNumber(ctx context.Context, id int64, number string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE purchase_bills SET display_number = $2 WHERE id = $1 AND display_number IS NULL`, id, number)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("set purchase bill number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return displayNumberMiss(ctx, r.q, "purchase_bills", id)
	}
	return nil
}

func (r *PurchaseBillRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseBill, error) {
	return r.get(ctx, `SELECT `+purchaseBillColumns+` FROM purchase_bills WHERE id = $1`, id)
}

func (r *PurchaseBillRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseBill, error) {
	return r.get(ctx, `SELECT `+purchaseBillColumns+` FROM purchase_bills WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseBillRepo) get(ctx context.Context, query string, id int64) (*entity.PurchaseBill, error) {
	var b entity.PurchaseBill
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.DisplayNumber, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase bill: %w", err)
	}
	return &b, nil
}

func (r *PurchaseBillRepo) List(ctx context.Context, limit, offset int) ([]*entity.PurchaseBill, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+purchaseBillColumns+` FROM purchase_bills ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase bills: %w", err)
	}
	defer rows.Close()

	out := []*entity.PurchaseBill{}
	for rows.Next() {
		var b entity.PurchaseBill
		if err := rows.Scan(&b.ID, &b.DisplayNumber, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase bill: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *PurchaseBillRepo) CreateLine(ctx context.Context, line *entity.PurchaseLine) error {
	query := `
		INSERT INTO purchase_lines (purchase_bill_id, stock_id, quantity, price) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, line.PurchaseBillID, line.StockID, line.Quantity, line.Price).
		Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert purchase line: %w", err)
	}
	return nil
}

func (r *PurchaseBillRepo) ListLines(ctx context.Context, billID int64) ([]*entity.PurchaseLine, error) {
	query := `
		SELECT id, purchase_bill_id, stock_id, quantity, price, created_at, updated_at
		FROM purchase_lines WHERE purchase_bill_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("list purchase lines: %w", err)
	}
	defer rows.Close()

	out := []*entity.PurchaseLine{}
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseBillID, &l.StockID, &l.Quantity, &l.Price, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
