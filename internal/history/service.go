package history

import (
	"context"
	"fmt"
	"time"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context, params shared.PageParams) ([]Record, int, error)
	Get(ctx context.Context, id string) (Record, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Record, error)
	ListWarnings(ctx context.Context) ([]Record, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CreateInput carries one new audit entry.
type CreateInput struct {
	EmployeeID            *string
	DrawerID              *string
	BatchID               *string
	ActionType            ActionType
	QuantityChanged       int
	CompletionTimeSeconds *int
	AccuracyScore         *float64
	EfficiencyScore       *float64
	Notes                 *string
	BatchWarningTriggered bool
}

func (in CreateInput) validate() error {
	if !ValidActionType(in.ActionType) {
		return fmt.Errorf("%w: action_type must be one of restock, removal, adjustment", shared.ErrValidation)
	}
	if in.QuantityChanged == 0 {
		return fmt.Errorf("%w: quantity_changed is required", shared.ErrValidation)
	}
	if err := scoreInRange(in.AccuracyScore, "accuracy_score"); err != nil {
		return err
	}
	return scoreInRange(in.EfficiencyScore, "efficiency_score")
}

func scoreInRange(score *float64, field string) error {
	if score != nil && (*score < 0 || *score > 999.99) {
		return fmt.Errorf("%w: %s must be between 0 and 999.99", shared.ErrValidation, field)
	}
	return nil
}

type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Record, error) {
	if err := input.validate(); err != nil {
		return Record{}, err
	}
	return s.repo.Insert(ctx, Record{
		EmployeeID:            input.EmployeeID,
		DrawerID:              input.DrawerID,
		BatchID:               input.BatchID,
		ActionType:            input.ActionType,
		QuantityChanged:       input.QuantityChanged,
		RestockTimestamp:      s.now().UTC(),
		CompletionTimeSeconds: input.CompletionTimeSeconds,
		AccuracyScore:         input.AccuracyScore,
		EfficiencyScore:       input.EfficiencyScore,
		Notes:                 input.Notes,
		BatchWarningTriggered: input.BatchWarningTriggered,
	})
}

func (s *Service) List(ctx context.Context, params shared.PageParams) ([]Record, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.repo.Get(ctx, id)
}

// ListByEmployee returns the employee's records, newest first. A missing
// employee is NotFound even when they simply have no records yet.
func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	exists, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: employee %s not found", shared.ErrNotFound, employeeID)
	}
	return s.repo.ListByEmployee(ctx, employeeID)
}

func (s *Service) ListWarnings(ctx context.Context) ([]Record, error) {
	return s.repo.ListWarnings(ctx)
}

// Prune deletes records older than the retention window.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, s.now().UTC().Add(-retention))
}
