package lrucache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"safedose-api/internal/domain/interactions"
)

const (
	DefaultSize = 512
	DefaultTTL  = 30 * time.Minute
)

// Cache es el nivel en proceso del cache de clasificaciones (LRU con expiración).
type Cache struct {
	lru *expirable.LRU[string, interactions.ClassifierResult]
}

var _ interactions.ResultCache = (*Cache)(nil)

func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, interactions.ClassifierResult](size, nil, ttl)}
}

func (c *Cache) Get(_ context.Context, key string) (interactions.ClassifierResult, bool) {
	res, ok := c.lru.Get(key)
	if !ok {
		return interactions.ClassifierResult{}, false
	}
	return clone(res), true
}

func (c *Cache) Set(_ context.Context, key string, res interactions.ClassifierResult) {
	c.lru.Add(key, clone(res))
}

func (c *Cache) Len() int { return c.lru.Len() }

// clone evita que el llamador mute el slice guardado.
func clone(res interactions.ClassifierResult) interactions.ClassifierResult {
	res.Details = append([]interactions.Finding{}, res.Details...)
	return res
}
