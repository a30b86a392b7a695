package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
)

// KV is the minimal surface the store needs from a Redis client.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// GoRedisKV wraps github.com/redis/go-redis/v9.
type GoRedisKV struct{ c *redis.Client }

func NewGoRedisKV(addr string) *GoRedisKV {
	return &GoRedisKV{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := g.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (g *GoRedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return g.c.Set(ctx, key, value, ttl).Err()
}

func (g *GoRedisKV) Del(ctx context.Context, key string) error {
	return g.c.Del(ctx, key).Err()
}

func (g *GoRedisKV) Ping(ctx context.Context) error { return g.c.Ping(ctx).Err() }

func (g *GoRedisKV) Close() error { return g.c.Close() }

// Key is the Redis key holding a cart's conditions.
func Key(cartID string) string { return fmt.Sprintf("cart:%s:conditions", cartID) }

// RedisStore keeps cart conditions as a JSON list of definitions.
type RedisStore struct {
	kv  KV
	ttl time.Duration
}

// NewRedisStore returns a store; ttl <= 0 keeps entries forever.
func NewRedisStore(kv KV, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{kv: kv, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, cartID string, conditions []condition.Definition) error {
	if _, err := condition.FromDefinitions(conditions); err != nil {
		return err
	}
	data, err := json.Marshal(conditions)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, Key(cartID), string(data), s.ttl); err != nil {
		return fmt.Errorf("save cart %s conditions: %w", cartID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, cartID string) ([]condition.Definition, error) {
	raw, ok, err := s.kv.Get(ctx, Key(cartID))
	if err != nil {
		return nil, fmt.Errorf("load cart %s conditions: %w", cartID, err)
	}
	if !ok {
		return []condition.Definition{}, nil
	}
	var defs []condition.Definition
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		return nil, fmt.Errorf("decode cart %s conditions: %w", cartID, err)
	}
	return defs, nil
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	if err := s.kv.Del(ctx, Key(cartID)); err != nil {
		return fmt.Errorf("delete cart %s conditions: %w", cartID, err)
	}
	return nil
}

// MemoryStore is the in-process store used when no Redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]condition.Definition
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]condition.Definition)}
}

func (s *MemoryStore) Save(ctx context.Context, cartID string, conditions []condition.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := condition.FromDefinitions(conditions); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cartID] = append([]condition.Definition(nil), conditions...)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, cartID string) ([]condition.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]condition.Definition{}, s.carts[cartID]...), nil
}

func (s *MemoryStore) Delete(ctx context.Context, cartID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
	return nil
}
