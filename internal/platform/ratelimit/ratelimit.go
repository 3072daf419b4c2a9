package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/ratelimit"

	"safedose-api/internal/platform/metrics"
)

// Costos de DefaultCost. MaxCost es el mayor; una capacidad menor nunca lo alcanza.
const (
	CostDiagnose int64 = 30
	CostLLM      int64 = 10
	MaxCost            = CostDiagnose
)

// CostFunc decide cuántos tokens consume un request. 0 = gratis.
type CostFunc func(r *http.Request) int64

// Limiter mantiene un token bucket por IP de cliente.
type Limiter struct {
	mu       sync.RWMutex
	clients  map[string]*ratelimit.Bucket
	rate     float64
	capacity int64
	cost     CostFunc
}

func New(rate float64, capacity int64, cost CostFunc) *Limiter {
	if cost == nil {
		cost = func(*http.Request) int64 { return 1 }
	}
	return &Limiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     rate,
		capacity: capacity,
		cost:     cost,
	}
}

func (l *Limiter) bucket(clientIP string) *ratelimit.Bucket {
	l.mu.RLock()
	b, ok := l.clients[clientIP]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.clients[clientIP]; !ok {
		b = ratelimit.NewBucketWithRate(l.rate, l.capacity)
		l.clients[clientIP] = b
		metrics.RateLimiterBuckets.Set(float64(len(l.clients)))
	}
	return b
}

// Sweep descarta buckets llenos (clientes inactivos). Devuelve cuántos quedaron.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, b := range l.clients {
		if b.Available() >= b.Capacity() {
			delete(l.clients, ip)
		}
	}
	metrics.RateLimiterBuckets.Set(float64(len(l.clients)))
	return len(l.clients)
}

func (l *Limiter) Handler(next http.Handler) http.Handler {
	limit := strconv.FormatInt(l.capacity, 10)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cost := l.cost(r)
		if cost <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		// con costo > capacidad el bucket nunca se llenaría lo suficiente
		if cost > l.capacity {
			cost = l.capacity
		}

		b := l.bucket(clientIP(r))
		w.Header().Set("X-RateLimit-Limit", limit)

		if b.TakeAvailable(cost) < cost {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(b.Available(), 10))
		next.ServeHTTP(w, r)
	})
}

// DefaultCost: las rutas que llaman al LLM cuestan más que el CRUD.
func DefaultCost(r *http.Request) int64 {
	p := r.URL.Path
	switch {
	case p == "/health" || p == "/" || p == "/metrics" || strings.HasPrefix(p, "/swagger"):
		return 0
	case p == "/api/diagnose":
		return CostDiagnose
	case p == "/api/analyze" || p == "/check-risk" || p == "/api/chat":
		return CostLLM
	default:
		return 1
	}
}

// clientIP usa RemoteAddr; chi RealIP ya lo reescribe desde X-Forwarded-For.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
