// Package idempotency guarda en Redis las claves Idempotency-Key de creación de facturas.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/emza-api/internal/domain"
)

const (
	keyPrefix = "emza:idem:"
	pending   = "pending"

	defaultPendingTTL = 30 * time.Second
)

// RedisStore implementa billing.IdempotencyStore.
// Valor "pending" mientras la factura se crea (TTL corto, por si el proceso muere a mitad);
// luego el ID de la factura con el TTL completo.
type RedisStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewRedisStore construye el store. ttl <= 0 usa 24h.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl, pendingTTL: min(defaultPendingTTL, ttl)}
}

// WithPendingTTL cambia cuánto vive una reserva sin completar. d <= 0 no cambia nada.
func (s *RedisStore) WithPendingTTL(d time.Duration) *RedisStore {
	if d > 0 {
		s.pendingTTL = min(d, s.ttl)
	}
	return s
}

// Connect crea el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("idempotency: ping: %w", err)
	}
	return client, nil
}

func redisKey(scope, key string) string {
	return keyPrefix + scope + ":" + key
}

// Claim reserva la clave con SET NX. Si ya existe devuelve el ID guardado o ErrConflict si sigue en curso.
func (s *RedisStore) Claim(ctx context.Context, scope, key string) (int64, bool, error) {
	k := redisKey(scope, key)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pending, s.pendingTTL).Result()
		if err != nil {
			return 0, false, fmt.Errorf("idempotency: claim: %w", err)
		}
		if ok {
			return 0, true, nil
		}
		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// Expiró o fue liberada entre SETNX y GET
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("idempotency: get: %w", err)
		}
		if val == pending {
			return 0, false, fmt.Errorf("petición con la misma clave en curso: %w", domain.ErrConflict)
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("idempotency: valor inválido %q: %w", val, err)
		}
		return id, false, nil
	}
	return 0, false, fmt.Errorf("petición con la misma clave en curso: %w", domain.ErrConflict)
}

// Complete guarda el ID de la factura creada con el TTL completo.
func (s *RedisStore) Complete(ctx context.Context, scope, key string, id int64) error {
	if err := s.client.Set(ctx, redisKey(scope, key), strconv.FormatInt(id, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: complete: %w", err)
	}
	return nil
}

// Release borra la clave para permitir reintentar tras un fallo.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, redisKey(scope, key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}
