package employees

import (
	"context"
	"fmt"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, employee Employee) (Employee, error)
	List(ctx context.Context, status *Status) ([]Employee, error)
	Get(ctx context.Context, id string) (Employee, error)
	Update(ctx context.Context, employee Employee) (Employee, error)
	Deactivate(ctx context.Context, id string) error
}

// CreateInput carries a new roster entry.
type CreateInput struct {
	EmployeeID string
	FirstName  string
	LastName   string
	Role       string
	Status     Status
}

// UpdateInput carries partial employee updates. Nil fields stay unchanged.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Role      *string
	Status    *Status
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Employee, error) {
	status := input.Status
	if status == "" {
		status = StatusActive
	}
	if !ValidStatus(status) {
		return Employee{}, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, status)
	}
	return s.repo.Create(ctx, Employee{
		EmployeeID: input.EmployeeID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Role:       input.Role,
		Status:     status,
	})
}

func (s *Service) List(ctx context.Context, status *Status) ([]Employee, error) {
	if status != nil && !ValidStatus(*status) {
		return nil, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, *status)
	}
	return s.repo.List(ctx, status)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Employee, error) {
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if input.FirstName != nil {
		employee.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		employee.LastName = *input.LastName
	}
	if input.Role != nil {
		employee.Role = *input.Role
	}
	if input.Status != nil {
		if !ValidStatus(*input.Status) {
			return Employee{}, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, *input.Status)
		}
		employee.Status = *input.Status
	}
	return s.repo.Update(ctx, employee)
}

// Delete retires an employee by marking them inactive.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}
