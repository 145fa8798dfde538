package inventory

import (
	"math"

	"github.com/jhoicas/emza-api/internal/domain"
)

// Requirement consumo de un stock por unidad de producto, junto con el saldo actual del stock.
type Requirement struct {
	StockID int64
	PerUnit int64 // cantidad de la línea de receta
	Balance int64 // saldo del stock (apertura + compras - ventas)
}

// AvailableQuantity cuántas unidades enteras del producto se pueden vender (servicio de dominio).
// Disponible = min( floor(Saldo / PorUnidad) ) sobre todas las líneas; 0 si no hay receta.
// Un saldo negativo cuenta como 0.
func AvailableQuantity(reqs []Requirement) int64 {
	if len(reqs) == 0 {
		return 0
	}
	var available int64 = math.MaxInt64
	for _, r := range reqs {
		if r.PerUnit <= 0 || r.Balance <= 0 {
			return 0
		}
		if n := r.Balance / r.PerUnit; n < available {
			available = n
		}
	}
	return available
}

// Consumed cantidad de stock que mueve una operación de qty unidades de producto.
// Devuelve ErrInvalidInput si el producto desborda int64.
func Consumed(perUnit, qty int64) (int64, error) {
	if perUnit <= 0 || qty <= 0 {
		return 0, domain.ErrInvalidInput
	}
	if qty > math.MaxInt64/perUnit {
		return 0, domain.ErrInvalidInput
	}
	return perUnit * qty, nil
}
