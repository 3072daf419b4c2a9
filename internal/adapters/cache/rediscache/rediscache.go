package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"safedose-api/internal/domain/interactions"
	"safedose-api/internal/platform/logger"
)

const (
	DefaultTTL = 24 * time.Hour

	keyPrefix = "safedose:ddi:"
)

// Cache comparte clasificaciones remotas entre réplicas. Los errores de Redis se
// loguean y cuentan como miss: el cache nunca corta un análisis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

var _ interactions.ResultCache = (*Cache)(nil)

// Open parsea la URL (redis://...), crea el cliente y verifica con PING.
func Open(ctx context.Context, url string, ttl time.Duration, log logger.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl, log), nil
}

func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Cache{client: client, ttl: ttl, log: log.With(map[string]any{"component": "redis_cache"})}
}

type entry struct {
	Result   interactions.ClassifierResult `json:"result"`
	CachedAt time.Time                     `json:"cached_at"`
}

func (c *Cache) Get(ctx context.Context, key string) (interactions.ClassifierResult, bool) {
	k := hashKey(key)
	val, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return interactions.ClassifierResult{}, false
	}
	if err != nil {
		c.log.Warn("redis get failed", map[string]any{"error": err})
		return interactions.ClassifierResult{}, false
	}

	var e entry
	if err := json.Unmarshal(val, &e); err != nil {
		c.log.Warn("dropping corrupted cache entry", map[string]any{"error": err})
		c.client.Del(ctx, k)
		return interactions.ClassifierResult{}, false
	}
	return e.Result, true
}

func (c *Cache) Set(ctx context.Context, key string, res interactions.ClassifierResult) {
	b, err := json.Marshal(entry{Result: res, CachedAt: time.Now().UTC()})
	if err != nil {
		c.log.Warn("marshal cache entry", map[string]any{"error": err})
		return
	}
	if err := c.client.Set(ctx, hashKey(key), b, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", map[string]any{"error": err})
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return keyPrefix + hex.EncodeToString(sum[:16])
}
