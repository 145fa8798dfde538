package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emza-api/internal/domain"
	"github.com/jhoicas/emza-api/internal/domain/inventory"
)

// Aceite de perfume 100ml, 9ml por unidad de CR7 -> floor(100/9) = 11.
func TestAvailableQuantity_EjemploCR7(t *testing.T) {
	reqs := []inventory.Requirement{{StockID: 1, PerUnit: 9, Balance: 100}}
	assert.Equal(t, int64(11), inventory.AvailableQuantity(reqs))

	// Después de vender 11: 100 - 99 = 1ml.
	reqs[0].Balance = 1
	assert.Equal(t, int64(0), inventory.AvailableQuantity(reqs))
}

func TestAvailableQuantity_SinRecetaEsCero(t *testing.T) {
	assert.Equal(t, int64(0), inventory.AvailableQuantity(nil))
	assert.Equal(t, int64(0), inventory.AvailableQuantity([]inventory.Requirement{}))
}

func TestAvailableQuantity_MinimoEntreLineas(t *testing.T) {
	reqs := []inventory.Requirement{
		{StockID: 1, PerUnit: 9, Balance: 100},  // 11
		{StockID: 2, PerUnit: 1, Balance: 7},    // 7
		{StockID: 3, PerUnit: 50, Balance: 500}, // 10
	}
	assert.Equal(t, int64(7), inventory.AvailableQuantity(reqs))
}

func TestAvailableQuantity_SaldoNegativoCuentaComoCero(t *testing.T) {
	reqs := []inventory.Requirement{
		{StockID: 1, PerUnit: 1, Balance: 10},
		{StockID: 2, PerUnit: 3, Balance: -4},
	}
	assert.Equal(t, int64(0), inventory.AvailableQuantity(reqs))
}

func TestConsumed(t *testing.T) {
	n, err := inventory.Consumed(9, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(99), n)

	_, err = inventory.Consumed(2, math.MaxInt64)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.Consumed(3, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
