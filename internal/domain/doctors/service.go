package doctors

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound lo devuelven los repositorios cuando el id no existe.
	ErrNotFound = errors.New("doctor not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	Specialty string
	Location  string
	Email     string
	Phone     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Doctor, error) {
	name := strings.TrimSpace(in.Name)
	specialty := strings.TrimSpace(in.Specialty)
	if name == "" || specialty == "" {
		return Doctor{}, ErrInvalidInput
	}

	d := Doctor{
		ID:        uuid.NewString(),
		Name:      name,
		Specialty: specialty,
		Location:  strings.TrimSpace(in.Location),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Doctor{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Doctor, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) List(ctx context.Context, specialty string) ([]Doctor, error) {
	return s.repo.List(ctx, strings.TrimSpace(specialty))
}
