package interactions

import (
	"context"
	"errors"
	"sync"

	"safedose-api/internal/ports/llm"
)

// fakeGenerator responde por modelo; si no hay respuesta configurada devuelve errUnavailable.
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []llm.Request
	notReady  bool
}

var errUnavailable = errors.New("service unavailable")

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeGenerator) Configured() bool { return !f.notReady }

func (f *fakeGenerator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	text, ok := f.responses[req.Model]
	err := f.errs[req.Model]
	f.mu.Unlock()

	if err != nil {
		return llm.Response{}, err
	}
	if !ok {
		return llm.Response{}, errUnavailable
	}
	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	return llm.Response{Text: text, Model: req.Model}, nil
}

func (f *fakeGenerator) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Model)
	}
	return out
}

// blockingGenerator espera a que el contexto expire.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ llm.Request) (llm.Response, error) {
	<-ctx.Done()
	return llm.Response{}, ctx.Err()
}

// mapCache es un ResultCache en memoria para tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]ClassifierResult
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string]ClassifierResult{}}
}

func (c *mapCache) Get(_ context.Context, key string) (ClassifierResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[key]
	return r, ok
}

func (c *mapCache) Set(_ context.Context, key string, res ClassifierResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = res
	c.sets++
}

// stubStrategy permite controlar Applicable/Classify.
type stubStrategy struct {
	name       string
	applicable bool
	result     ClassifierResult
	err        error
	calls      int
}

func (s *stubStrategy) Name() string               { return s.name }
func (s *stubStrategy) Applicable(_ []string) bool { return s.applicable }
func (s *stubStrategy) Classify(_ context.Context, _ []string) (ClassifierResult, error) {
	s.calls++
	return s.result, s.err
}
