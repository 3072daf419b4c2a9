package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"safedose-api/internal/domain/diagnosis"
)

type diagnosisRepo struct {
	mu   sync.RWMutex
	byID map[string]diagnosis.Record
}

func NewDiagnosisRepo() diagnosis.Repository {
	return &diagnosisRepo{
		byID: make(map[string]diagnosis.Record),
	}
}

func (r *diagnosisRepo) Create(ctx context.Context, rec diagnosis.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("diagnosis record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("diagnosis record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *diagnosisRepo) ListByUser(ctx context.Context, userID string, limit int) ([]diagnosis.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]diagnosis.Record, 0)
	for _, rec := range r.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}

	// más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *diagnosisRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.byID {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
