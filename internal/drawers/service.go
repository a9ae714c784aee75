package drawers

import (
	"context"
	"fmt"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, drawer Drawer) (Drawer, error)
	List(ctx context.Context, trolleyID string) ([]Drawer, error)
	Get(ctx context.Context, id string) (Drawer, error)
	Update(ctx context.Context, drawer Drawer) (Drawer, error)
	Delete(ctx context.Context, id string) error
}

// CreateInput carries a new drawer definition.
type CreateInput struct {
	DrawerCode string
	TrolleyID  string
	Position   int
	Capacity   int
	DrawerType string
}

// UpdateInput carries partial drawer updates. Nil fields stay unchanged.
type UpdateInput struct {
	TrolleyID  *string
	Position   *int
	Capacity   *int
	DrawerType *string
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Drawer, error) {
	if input.Capacity <= 0 {
		return Drawer{}, fmt.Errorf("%w: capacity must be a positive integer", shared.ErrValidation)
	}
	if input.Position < 0 {
		return Drawer{}, fmt.Errorf("%w: position must not be negative", shared.ErrValidation)
	}
	return s.repo.Create(ctx, Drawer{
		DrawerCode: input.DrawerCode,
		TrolleyID:  input.TrolleyID,
		Position:   input.Position,
		Capacity:   input.Capacity,
		DrawerType: input.DrawerType,
	})
}

func (s *Service) List(ctx context.Context, trolleyID string) ([]Drawer, error) {
	return s.repo.List(ctx, trolleyID)
}

func (s *Service) Get(ctx context.Context, id string) (Drawer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Drawer, error) {
	drawer, err := s.repo.Get(ctx, id)
	if err != nil {
		return Drawer{}, err
	}
	if input.TrolleyID != nil {
		drawer.TrolleyID = *input.TrolleyID
	}
	if input.Position != nil {
		if *input.Position < 0 {
			return Drawer{}, fmt.Errorf("%w: position must not be negative", shared.ErrValidation)
		}
		drawer.Position = *input.Position
	}
	if input.Capacity != nil {
		if *input.Capacity <= 0 {
			return Drawer{}, fmt.Errorf("%w: capacity must be a positive integer", shared.ErrValidation)
		}
		drawer.Capacity = *input.Capacity
	}
	if input.DrawerType != nil {
		drawer.DrawerType = *input.DrawerType
	}
	return s.repo.Update(ctx, drawer)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
