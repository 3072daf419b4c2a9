package interactions

import (
	"context"
	"sort"
	"strings"
)

// ResultCache guarda resultados remotos por conjunto de fármacos.
// Las implementaciones deben ser seguras para uso concurrente.
type ResultCache interface {
	Get(ctx context.Context, key string) (ClassifierResult, bool)
	Set(ctx context.Context, key string, res ClassifierResult)
}

// CacheKey es independiente del orden y de duplicados.
func CacheKey(drugs []string) string {
	set := distinct(drugs)
	sort.Strings(set)
	return "ddi:v1:" + strings.Join(set, "|")
}

// Tiered consulta los niveles en orden y rellena los anteriores en un hit.
type Tiered []ResultCache

func (t Tiered) Get(ctx context.Context, key string) (ClassifierResult, bool) {
	for i, c := range t {
		if c == nil {
			continue
		}
		res, ok := c.Get(ctx, key)
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if t[j] != nil {
				t[j].Set(ctx, key, res)
			}
		}
		return res, true
	}
	return ClassifierResult{}, false
}

func (t Tiered) Set(ctx context.Context, key string, res ClassifierResult) {
	for _, c := range t {
		if c != nil {
			c.Set(ctx, key, res)
		}
	}
}
