package dedupe

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Deduper remembers Telegram update IDs so redelivered webhooks are processed
// once.
type Deduper interface {
	// Seen records id and reports whether it had already been recorded.
	Seen(ctx context.Context, id int64) (bool, error)
}

const keyPrefix = "intake:update:"

type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Redis shares seen IDs across bot replicas.
type Redis struct {
	client setNXer
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Seen(ctx context.Context, id int64) (bool, error) {
	stored, err := r.client.SetNX(ctx, keyPrefix+strconv.FormatInt(id, 10), 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("recording update %d: %w", id, err)
	}
	return !stored, nil
}

const defaultCacheSize = 4096

// Memory keeps recent IDs in a bounded, expiring LRU. Used when Redis is not
// configured.
type Memory struct {
	mu    sync.Mutex // makes lookup and insert a single step
	cache *expirable.LRU[int64, struct{}]
}

// NewMemory remembers up to size IDs for ttl each. A zero ttl never expires.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Memory{cache: expirable.NewLRU[int64, struct{}](size, nil, ttl)}
}

func (m *Memory) Seen(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cache.Get(id); ok {
		return true, nil
	}
	m.cache.Add(id, struct{}{})
	return false, nil
}
