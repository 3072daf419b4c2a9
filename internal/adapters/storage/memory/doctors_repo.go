package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"safedose-api/internal/domain/doctors"
)

type doctorRepo struct {
	mu   sync.RWMutex
	byID map[string]doctors.Doctor
}

func NewDoctorRepo() doctors.Repository {
	return &doctorRepo{
		byID: make(map[string]doctors.Doctor),
	}
}

func (r *doctorRepo) Create(ctx context.Context, d doctors.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("doctor id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("doctor already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *doctorRepo) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return doctors.Doctor{}, doctors.ErrNotFound
	}
	return d, nil
}

func (r *doctorRepo) List(ctx context.Context, specialty string) ([]doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doctors.Doctor, 0, len(r.byID))
	for _, d := range r.byID {
		if specialty == "" || strings.EqualFold(d.Specialty, specialty) {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
