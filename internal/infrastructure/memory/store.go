// Package memory implementa los puertos de persistencia en memoria.
// Se usa en modo demo (STORAGE_DRIVER=memory) y en las pruebas de los casos de uso.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/emza-api/internal/domain/entity"
	"github.com/jhoicas/emza-api/internal/domain/repository"
)

// data estado completo del almacén. Se guardan valores, nunca punteros compartidos con el caller.
type data struct {
	seq           map[string]int64
	stockTypes    map[int64]entity.StockType
	stocks        map[int64]entity.Stock
	movements     []entity.StockMovement
	products      map[int64]entity.Product
	recipeLines   map[int64]entity.RecipeLine
	customers     map[int64]entity.Customer
	saleBills     map[int64]entity.SaleBill
	saleLines     map[int64]entity.SaleLine
	purchaseBills map[int64]entity.PurchaseBill
	purchaseLines map[int64]entity.PurchaseLine
}

func newData() *data {
	return &data{
		seq:           map[string]int64{},
		stockTypes:    map[int64]entity.StockType{},
		stocks:        map[int64]entity.Stock{},
		products:      map[int64]entity.Product{},
		recipeLines:   map[int64]entity.RecipeLine{},
		customers:     map[int64]entity.Customer{},
		saleBills:     map[int64]entity.SaleBill{},
		saleLines:     map[int64]entity.SaleLine{},
		purchaseBills: map[int64]entity.PurchaseBill{},
		purchaseLines: map[int64]entity.PurchaseLine{},
	}
}

// clone copia superficial por tabla; las entidades son valores sin punteros internos.
func (d *data) clone() *data {
	return &data{
		seq:           maps.Clone(d.seq),
		stockTypes:    maps.Clone(d.stockTypes),
		stocks:        maps.Clone(d.stocks),
		movements:     slices.Clone(d.movements),
		products:      maps.Clone(d.products),
		recipeLines:   maps.Clone(d.recipeLines),
		customers:     maps.Clone(d.customers),
		saleBills:     maps.Clone(d.saleBills),
		saleLines:     maps.Clone(d.saleLines),
		purchaseBills: maps.Clone(d.purchaseBills),
		purchaseLines: maps.Clone(d.purchaseLines),
	}
}

// next devuelve la siguiente identidad de la tabla (equivalente a BIGSERIAL).
func (d *data) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// Store almacén en memoria con el mismo contrato transaccional que el adaptador postgres.
// Una transacción mantiene el mutex hasta terminar; si fn falla se restaura la foto previa.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el mutex brevemente).
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repos {
	b := base{s: s, inTx: inTx}
	return repository.Repos{
		Stocks:        &StockRepo{b},
		Movements:     &StockMovementRepo{b},
		Products:      &ProductRepo{b},
		RecipeLines:   &RecipeLineRepo{b},
		Customers:     &CustomerRepo{b},
		SaleBills:     &SaleBillRepo{b},
		PurchaseBills: &PurchaseBillRepo{b},
	}
}

// StockTypes repositorio de tipos de stock fuera de transacción.
func (s *Store) StockTypes() repository.StockTypeRepository {
	return &StockTypeRepo{base{s: s}}
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	recipeRepo repository.RecipeLineRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.RunBilling(ctx, func(r repository.Repos) error {
		return fn(r.Stocks, r.RecipeLines, r.Movements)
	})
}

// RunBilling implementa billing.TxRunner.
func (s *Store) RunBilling(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(s.repos(true)); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// base comparte el almacén y sabe si el mutex ya lo tiene la transacción en curso.
type base struct {
	s    *Store
	inTx bool
}

func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

// page aplica limit/offset sobre una lista ya ordenada. limit <= 0 devuelve todo.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// sortedValues devuelve los valores de m ordenados por identidad.
func sortedValues[T any](m map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
