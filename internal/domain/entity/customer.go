package entity

import "time"

// WalkInCustomerName nombre del cliente sintetizado para ventas sin cliente.
const WalkInCustomerName = "Walk-in Customer"

// Customer representa un cliente de las facturas de venta.
type Customer struct {
	ID          int64
	Name        string
	PhoneNumber string
	Address     string
	WalkIn      bool // true solo para el cliente de mostrador
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
