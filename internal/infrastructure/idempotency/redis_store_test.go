package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emza-api/internal/domain"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Minute), mr
}

func TestClaimCompleteReplay(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "sale-bill", "abc")
	require.NoError(t, err)
	assert.True(t, claimed)

	// Mientras está en curso, otra petición con la misma clave es un conflicto
	_, claimed, err = store.Claim(ctx, "sale-bill", "abc")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, claimed)

	require.NoError(t, store.Complete(ctx, "sale-bill", "abc", 42))
	id, claimed, err := store.Claim(ctx, "sale-bill", "abc")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, int64(42), id)

	// El scope separa facturas de venta y de compra
	_, claimed, err = store.Claim(ctx, "purchase-bill", "abc")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestReleaseAllowsRetry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "sale-bill", "k1")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, store.Release(ctx, "sale-bill", "k1"))

	_, claimed, err = store.Claim(ctx, "sale-bill", "k1")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestKeysExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Claim(ctx, "sale-bill", "k2")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "sale-bill", "k2", 7))
	assert.True(t, mr.Exists(keyPrefix+"sale-bill:k2"))

	mr.FastForward(2 * time.Minute)
	_, claimed, err := store.Claim(ctx, "sale-bill", "k2")
	require.NoError(t, err)
	assert.True(t, claimed, "una clave vencida se puede volver a reservar")
}

func TestPendingClaimExpiresBeforeFullTTL(t *testing.T) {
	store, mr := newTestStore(t)
	store.WithPendingTTL(10 * time.Second)
	ctx := context.Background()

	// Reserva abandonada (el proceso murió antes de Complete/Release)
	_, claimed, err := store.Claim(ctx, "sale-bill", "stuck")
	require.NoError(t, err)
	require.True(t, claimed)
	assert.Equal(t, 10*time.Second, mr.TTL(redisKey("sale-bill", "stuck")))

	mr.FastForward(11 * time.Second)
	_, claimed, err = store.Claim(ctx, "sale-bill", "stuck")
	require.NoError(t, err)
	assert.True(t, claimed, "la reserva vencida se puede volver a tomar")

	// Completada, la clave vive el TTL completo
	require.NoError(t, store.Complete(ctx, "sale-bill", "stuck", 7))
	assert.Equal(t, time.Minute, mr.TTL(redisKey("sale-bill", "stuck")))
	mr.FastForward(30 * time.Second)
	id, claimed, err := store.Claim(ctx, "sale-bill", "stuck")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, int64(7), id)
}
