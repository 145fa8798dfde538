package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

var (
	_ repository.StockTypeRepository     = (*StockTypeRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.RecipeLineRepository    = (*RecipeLineRepo)(nil)
	_ repository.CustomerRepository      = (*CustomerRepo)(nil)
	_ repository.SaleBillRepository      = (*SaleBillRepo)(nil)
	_ repository.PurchaseBillRepository  = (*PurchaseBillRepo)(nil)
)

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Stock types
// ─────────────────────────────────────────────────────────────────────────────

// StockTypeRepo implementación en memoria de StockTypeRepository.
type StockTypeRepo struct{ base }

func (r *StockTypeRepo) Create(_ context.Context, st *entity.StockType) error {
	defer r.lock()()
	d := r.s.d
	for _, existing := range d.stockTypes {
		if strings.EqualFold(existing.Name, st.Name) {
			return domain.ErrDuplicate
		}
	}
	st.ID = d.next("stock_types")
	stamp(&st.CreatedAt, &st.UpdatedAt)
	d.stockTypes[st.ID] = *st
	return nil
}

func (r *StockTypeRepo) GetByID(_ context.Context, id int64) (*entity.StockType, error) {
	defer r.lock()()
	st, ok := r.s.d.stockTypes[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r *StockTypeRepo) List(_ context.Context) ([]*entity.StockType, error) {
	defer r.lock()()
	out := []*entity.StockType{}
	for _, st := range sortedValues(r.s.d.stockTypes) {
		out = append(out, &st)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Stocks
// ─────────────────────────────────────────────────────────────────────────────

// StockRepo implementación en memoria de StockRepository.
// GetForUpdate y LockMany no bloquean nada extra: la transacción ya tiene el mutex del almacén.
type StockRepo struct{ base }

func (r *StockRepo) Create(_ context.Context, stock *entity.Stock) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.stockTypes[stock.StockTypeID]; !ok {
		return domain.ErrInvalidInput
	}
	for _, existing := range d.stocks {
		if existing.Name == stock.Name {
			return domain.ErrDuplicate
		}
	}
	stock.ID = d.next("stocks")
	stamp(&stock.CreatedAt, &stock.UpdatedAt)
	d.stocks[stock.ID] = *stock
	return nil
}

func (r *StockRepo) GetByID(_ context.Context, id int64) (*entity.Stock, error) {
	defer r.lock()()
	return r.get(id), nil
}

func (r *StockRepo) get(id int64) *entity.Stock {
	s, ok := r.s.d.stocks[id]
	if !ok {
		return nil
	}
	return &s
}

func (r *StockRepo) List(_ context.Context, limit, offset int) ([]*entity.Stock, error) {
	defer r.lock()()
	out := []*entity.Stock{}
	for _, s := range page(sortedValues(r.s.d.stocks), limit, offset) {
		out = append(out, &s)
	}
	return out, nil
}

func (r *StockRepo) GetForUpdate(_ context.Context, id int64) (*entity.Stock, error) {
	defer r.lock()()
	return r.get(id), nil
}

func (r *StockRepo) LockMany(_ context.Context, ids []int64) (map[int64]*entity.Stock, error) {
	defer r.lock()()
	out := make(map[int64]*entity.Stock, len(ids))
	for _, id := range ids {
		if s := r.get(id); s != nil {
			out[id] = s
		}
	}
	return out, nil
}

func (r *StockRepo) UpdateQuantities(_ context.Context, stock *entity.Stock) error {
	defer r.lock()()
	current, ok := r.s.d.stocks[stock.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.PurchaseQuantity = stock.PurchaseQuantity
	current.SaleQuantity = stock.SaleQuantity
	current.UpdatedAt = stock.UpdatedAt
	r.s.d.stocks[stock.ID] = current
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Stock movements
// ─────────────────────────────────────────────────────────────────────────────

// StockMovementRepo implementación en memoria de StockMovementRepository.
type StockMovementRepo struct{ base }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.lock()()
	if _, ok := r.s.d.stocks[m.StockID]; !ok {
		return domain.ErrInvalidInput
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.s.d.movements = append(r.s.d.movements, *m)
	return nil
}

// ListByStock devuelve los movimientos del más reciente al más antiguo.
func (r *StockMovementRepo) ListByStock(_ context.Context, stockID int64, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.lock()()
	var matched []entity.StockMovement
	for _, m := range slices.Backward(r.s.d.movements) {
		if m.StockID == stockID {
			matched = append(matched, m)
		}
	}
	out := []*entity.StockMovement{}
	for _, m := range page(matched, limit, offset) {
		out = append(out, &m)
	}
	return out, nil
}

// ListByTransaction devuelve los movimientos de una operación en orden de registro.
func (r *StockMovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.StockMovement, error) {
	defer r.lock()()
	out := []*entity.StockMovement{}
	for _, m := range r.s.d.movements {
		if m.TransactionID == transactionID {
			out = append(out, &m)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Products y recetas
// ─────────────────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	p.ID = r.s.d.next("products")
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.d.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	current, ok := r.s.d.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Name = p.Name
	current.Price = p.Price
	current.UpdatedAt = time.Now().UTC()
	r.s.d.products[p.ID] = current
	*p = current
	return nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.lock()()
	out := []*entity.Product{}
	for _, p := range page(sortedValues(r.s.d.products), limit, offset) {
		out = append(out, &p)
	}
	return out, nil
}

// Delete borra el producto y su receta. Falla con ErrConflict si alguna línea de venta lo referencia.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, l := range d.saleLines {
		if l.ProductID == id {
			return domain.ErrConflict
		}
	}
	for lineID, l := range d.recipeLines {
		if l.ProductID == id {
			delete(d.recipeLines, lineID)
		}
	}
	delete(d.products, id)
	return nil
}

// RecipeLineRepo implementación en memoria de RecipeLineRepository.
type RecipeLineRepo struct{ base }

func (r *RecipeLineRepo) Create(_ context.Context, line *entity.RecipeLine) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.products[line.ProductID]; !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := d.stocks[line.StockID]; !ok {
		return domain.ErrInvalidInput
	}
	for _, existing := range d.recipeLines {
		if existing.ProductID == line.ProductID && existing.StockID == line.StockID {
			return domain.ErrDuplicateRecipeLine
		}
	}
	line.ID = d.next("recipe_lines")
	stamp(&line.CreatedAt, &line.UpdatedAt)
	d.recipeLines[line.ID] = *line
	return nil
}

// ListByProduct devuelve la receta ordenada por stock_id.
func (r *RecipeLineRepo) ListByProduct(_ context.Context, productID int64) ([]*entity.RecipeLine, error) {
	defer r.lock()()
	out := []*entity.RecipeLine{}
	for _, l := range sortedValues(r.s.d.recipeLines) {
		if l.ProductID == productID {
			out = append(out, &l)
		}
	}
	slices.SortFunc(out, func(a, b *entity.RecipeLine) int { return cmp.Compare(a.StockID, b.StockID) })
	return out, nil
}

func (r *RecipeLineRepo) Delete(_ context.Context, productID, stockID int64) error {
	defer r.lock()()
	for id, l := range r.s.d.recipeLines {
		if l.ProductID == productID && l.StockID == stockID {
			delete(r.s.d.recipeLines, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ─────────────────────────────────────────────────────────────────────────────
// Customers
// ─────────────────────────────────────────────────────────────────────────────

// CustomerRepo implementación en memoria de CustomerRepository.
type CustomerRepo struct{ base }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	defer r.lock()()
	r.create(c)
	return nil
}

func (r *CustomerRepo) create(c *entity.Customer) {
	c.ID = r.s.d.next("customers")
	stamp(&c.CreatedAt, &c.UpdatedAt)
	r.s.d.customers[c.ID] = *c
}

func (r *CustomerRepo) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	defer r.lock()()
	c, ok := r.s.d.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	defer r.lock()()
	out := []*entity.Customer{}
	for _, c := range page(sortedValues(r.s.d.customers), limit, offset) {
		out = append(out, &c)
	}
	return out, nil
}

func (r *CustomerRepo) GetOrCreateWalkIn(_ context.Context) (*entity.Customer, error) {
	defer r.lock()()
	for _, c := range r.s.d.customers {
		if c.WalkIn {
			return &c, nil
		}
	}
	c := &entity.Customer{Name: entity.WalkInCustomerName, WalkIn: true}
	r.create(c)
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sale bills
// ─────────────────────────────────────────────────────────────────────────────

// SaleBillRepo implementación en memoria de SaleBillRepository.
type SaleBillRepo struct{ base }

func (r *SaleBillRepo) Create(_ context.Context, bill *entity.SaleBill) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.customers[bill.CustomerID]; !ok {
		return domain.ErrInvalidInput
	}
	bill.ID = d.next("sale_bills")
	stamp(&bill.CreatedAt, &bill.UpdatedAt)
	row := *bill
	row.Lines = nil
	d.saleBills[bill.ID] = row
	return nil
}

func (r *SaleBillRepo) SetDisplayNumber(_ context.Context, id int64, number string) error {
	defer r.lock()()
	d := r.s.d
	bill, ok := d.saleBills[id]
	if !ok {
		return domain.ErrNotFound
	}
	if bill.DisplayNumber != "" {
		return domain.ErrConflict
	}
	for _, other := range d.saleBills {
		if other.DisplayNumber == number {
			return domain.ErrDuplicate
		}
	}
	bill.DisplayNumber = number
	d.saleBills[id] = bill
	return nil
}

func (r *SaleBillRepo) GetByID(_ context.Context, id int64) (*entity.SaleBill, error) {
	defer r.lock()()
	b, ok := r.s.d.saleBills[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *SaleBillRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SaleBill, error) {
	return r.GetByID(ctx, id)
}

// Update persiste cliente y descuento. El número visible no se toca.
func (r *SaleBillRepo) Update(_ context.Context, bill *entity.SaleBill) error {
	defer r.lock()()
	d := r.s.d
	current, ok := d.saleBills[bill.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := d.customers[bill.CustomerID]; !ok {
		return domain.ErrInvalidInput
	}
	current.CustomerID = bill.CustomerID
	current.Discount = bill.Discount
	current.UpdatedAt = time.Now().UTC()
	d.saleBills[bill.ID] = current
	bill.UpdatedAt = current.UpdatedAt
	return nil
}

// List devuelve las facturas de la más reciente a la más antigua.
func (r *SaleBillRepo) List(_ context.Context, limit, offset int) ([]*entity.SaleBill, error) {
	defer r.lock()()
	all := sortedValues(r.s.d.saleBills)
	slices.Reverse(all)
	out := []*entity.SaleBill{}
	for _, b := range page(all, limit, offset) {
		out = append(out, &b)
	}
	return out, nil
}

func (r *SaleBillRepo) Delete(_ context.Context, id int64) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.saleBills[id]; !ok {
		return domain.ErrNotFound
	}
	for lineID, l := range d.saleLines {
		if l.SaleBillID == id {
			delete(d.saleLines, lineID)
		}
	}
	delete(d.saleBills, id)
	return nil
}

func (r *SaleBillRepo) CreateLine(_ context.Context, line *entity.SaleLine) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.saleBills[line.SaleBillID]; !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := d.products[line.ProductID]; !ok {
		return domain.ErrInvalidInput
	}
	line.ID = d.next("sale_lines")
	stamp(&line.CreatedAt, &line.UpdatedAt)
	d.saleLines[line.ID] = *line
	return nil
}

func (r *SaleBillRepo) GetLine(_ context.Context, billID, lineID int64) (*entity.SaleLine, error) {
	defer r.lock()()
	l, ok := r.s.d.saleLines[lineID]
	if !ok || l.SaleBillID != billID {
		return nil, nil
	}
	return &l, nil
}

func (r *SaleBillRepo) ListLines(_ context.Context, billID int64) ([]*entity.SaleLine, error) {
	defer r.lock()()
	out := []*entity.SaleLine{}
	for _, l := range sortedValues(r.s.d.saleLines) {
		if l.SaleBillID == billID {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *SaleBillRepo) DeleteLine(_ context.Context, billID, lineID int64) error {
	defer r.lock()()
	l, ok := r.s.d.saleLines[lineID]
	if !ok || l.SaleBillID != billID {
		return domain.ErrNotFound
	}
	delete(r.s.d.saleLines, lineID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Purchase bills
// ─────────────────────────────────────────────────────────────────────────────

// PurchaseBillRepo implementación en memoria de PurchaseBillRepository.
type PurchaseBillRepo struct{ base }

func (r *PurchaseBillRepo) Create(_ context.Context, bill *entity.PurchaseBill) error {
	defer r.lock()()
	bill.ID = r.s.d.next("purchase_bills")
	stamp(&bill.CreatedAt, &bill.UpdatedAt)
	row := *bill
	row.Lines = nil
	r.s.d.purchaseBills[bill.ID] = row
	return nil
}

func (r *PurchaseBillRepo) SetDisplayNumber(_ context.Context, id int64, number string) error {
	defer r.lock()()
	d := r.s.d
	bill, ok := d.purchaseBills[id]
	if !ok {
		return domain.ErrNotFound
	}
	if bill.DisplayNumber != "" {
		return domain.ErrConflict
	}
	for _, other := range d.purchaseBills {
		if other.DisplayNumber == number {
			return domain.ErrDuplicate
		}
	}
	bill.DisplayNumber = number
	d.purchaseBills[id] = bill
	return nil
}

func (r *PurchaseBillRepo) GetByID(_ context.Context, id int64) (*entity.PurchaseBill, error) {
	defer r.lock()()
	b, ok := r.s.d.purchaseBills[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *PurchaseBillRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseBill, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseBillRepo) List(_ context.Context, limit, offset int) ([]*entity.PurchaseBill, error) {
	defer r.lock()()
	all := sortedValues(r.s.d.purchaseBills)
	slices.Reverse(all)
	out := []*entity.PurchaseBill{}
	for _, b := range page(all, limit, offset) {
		out = append(out, &b)
	}
	return out, nil
}

func (r *PurchaseBillRepo) CreateLine(_ context.Context, line *entity.PurchaseLine) error {
	defer r.lock()()
	d := r.s.d
	if _, ok := d.purchaseBills[line.PurchaseBillID]; !ok {
		return domain.ErrInvalidInput
	}
	if _, ok := d.stocks[line.StockID]; !ok {
		return domain.ErrInvalidInput
	}
	line.ID = d.next("purchase_lines")
	stamp(&line.CreatedAt, &line.UpdatedAt)
	d.purchaseLines[line.ID] = *line
	return nil
}

func (r *PurchaseBillRepo) ListLines(_ context.Context, billID int64) ([]*entity.PurchaseLine, error) {
	defer r.lock()()
	out := []*entity.PurchaseLine{}
	for _, l := range sortedValues(r.s.d.purchaseLines) {
		if l.PurchaseBillID == billID {
			out = append(out, &l)
		}
	}
	return out, nil
}
