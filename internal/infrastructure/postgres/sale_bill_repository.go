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

var _ repository.SaleBillRepository = (*SaleBillRepo)(nil)

const (
	saleBillColumns = `id, COALESCE(display_number, ''), customer_id, discount, created_at, updated_at`
	saleLineColumns = `id, sale_bill_id, product_id, quantity, price, transaction_id::text, created_at, updated_at`
)

// SaleBillRepo implementación de SaleBillRepository (cabeceras y líneas).
type SaleBillRepo struct {
	q Querier
}

// NewSaleBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleBillRepository(q Querier) *SaleBillRepo {
	return &SaleBillRepo{q: q}
}

func scanSaleBill(row pgx.Row) (*entity.SaleBill, error) {
	var b entity.SaleBill
	if err := row.Scan(&b.ID, &b.DisplayNumber, &b.CustomerID, &b.Discount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanSaleLine(row pgx.Row) (*entity.SaleLine, error) {
	var l entity.SaleLine
	if err := row.Scan(&l.ID, &l.SaleBillID, &l.ProductID, &l.Quantity, &l.Price, &l.TransactionID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserta la cabecera sin número visible; el número se asigna con SetDisplayNumber en la misma tx.
func (r *SaleBillRepo) Create(ctx context.Context, bill *entity.SaleBill) error {
	query := `
		INSERT INTO sale_bills (customer_id, discount) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, bill.CustomerID, bill.Discount).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert sale bill: %w", err)
	}
	return nil
}

func (r *SaleBillRepo) SetDisplayNumber(ctx context.Context, id int64, number string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sale_bills SET display_number = $2 WHERE id = $1 AND display_number IS NULL`, id, number)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("set sale bill number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return displayNumberMiss(ctx, r.q, "sale_bills", id)
	}
	return nil
}

func (r *SaleBillRepo) GetByID(ctx context.Context, id int64) (*entity.SaleBill, error) {
	return r.get(ctx, `SELECT `+saleBillColumns+` FROM sale_bills WHERE id = $1`, id)
}

func (r *SaleBillRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SaleBill, error) {
	return r.get(ctx, `SELECT `+saleBillColumns+` FROM sale_bills WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleBillRepo) get(ctx context.Context, query string, id int64) (*entity.SaleBill, error) {
	b, err := scanSaleBill(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale bill: %w", err)
	}
	return b, nil
}

// Update persiste cliente y descuento. display_number no se toca.
func (r *SaleBillRepo) Update(ctx context.Context, bill *entity.SaleBill) error {
	query := `
		UPDATE sale_bills SET customer_id = $2, discount = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, bill.ID, bill.CustomerID, bill.Discount).Scan(&bill.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update sale bill: %w", err)
	}
	return nil
}

// List devuelve las facturas de la más reciente a la más antigua.
func (r *SaleBillRepo) List(ctx context.Context, limit, offset int) ([]*entity.SaleBill, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+saleBillColumns+` FROM sale_bills ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sale bills: %w", err)
	}
	defer rows.Close()

	out := []*entity.SaleBill{}
	for rows.Next() {
		b, err := scanSaleBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete borra la cabecera; las líneas caen en cascada.
func (r *SaleBillRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sale_bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleBillRepo) CreateLine(ctx context.Context, line *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (sale_bill_id, product_id, quantity, price, transaction_id) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, line.SaleBillID, line.ProductID, line.Quantity, line.Price, line.TransactionID).
		Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

func (r *SaleBillRepo) GetLine(ctx context.Context, billID, lineID int64) (*entity.SaleLine, error) {
	l, err := scanSaleLine(r.q.QueryRow(ctx,
		`SELECT `+saleLineColumns+` FROM sale_lines WHERE id = $1 AND sale_bill_id = $2`, lineID, billID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale line: %w", err)
	}
	return l, nil
}

func (r *SaleBillRepo) ListLines(ctx context.Context, billID int64) ([]*entity.SaleLine, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+saleLineColumns+` FROM sale_lines WHERE sale_bill_id = $1 ORDER BY id`, billID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()

	out := []*entity.SaleLine{}
	for rows.Next() {
		l, err := scanSaleLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SaleBillRepo) DeleteLine(ctx context.Context, billID, lineID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sale_lines WHERE id = $1 AND sale_bill_id = $2`, lineID, billID)
	if err != nil {
		return fmt.Errorf("delete sale line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// displayNumberMiss distingue factura inexistente de número ya asignado cuando el UPDATE no afectó filas.
func displayNumberMiss(ctx context.Context, q Querier, table string, id int64) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if exists {
		return domain.ErrConflict
	}
	return domain.ErrNotFound
}
