package entity

import "time"

// Metric unidad de medida de un tipo de stock.
type Metric string

const (
	MetricPiece      Metric = "pcs" // piezas
	MetricMilliliter Metric = "ml"  // mililitros
)

// Valid indica si la unidad está soportada. Agregar aquí nuevas unidades.
func (m Metric) Valid() bool {
	switch m {
	case MetricPiece, MetricMilliliter:
		return true
	}
	return false
}

// StockType dato de referencia: nombre y unidad de medida (ej: "Aceite de perfume (ml)").
type StockType struct {
	ID        int64
	Name      string
	Metric    Metric
	CreatedAt time.Time
	UpdatedAt time.Time
}
