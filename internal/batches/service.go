package batches

import (
	"context"
	"fmt"
	"time"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, batch ItemBatch) (ItemBatch, error)
	List(ctx context.Context, filters ListFilters, params shared.PageParams) ([]ItemBatch, int, error)
	ListByStatus(ctx context.Context, status BatchStatus) ([]ItemBatch, error)
	Get(ctx context.Context, id string) (ItemBatch, error)
	Update(ctx context.Context, batch ItemBatch) (ItemBatch, error)
	SoftDelete(ctx context.Context, id string) error
}

// CreateInput carries a new batch intake.
type CreateInput struct {
	ItemType     string
	BatchNumber  string
	Quantity     int
	ExpiryDate   time.Time
	ReceivedDate *time.Time
	Status       BatchStatus
}

// UpdateInput carries partial batch updates. Nil fields stay unchanged.
type UpdateInput struct {
	ItemType   *string
	Quantity   *int
	ExpiryDate *time.Time
	Status     *BatchStatus
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (ItemBatch, error) {
	if input.Quantity <= 0 {
		return ItemBatch{}, fmt.Errorf("%w: quantity must be a positive integer", shared.ErrValidation)
	}
	status := input.Status
	if status == "" {
		status = StatusAvailable
	}
	if !ValidStatus(status) {
		return ItemBatch{}, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, status)
	}
	received := time.Now().UTC()
	if input.ReceivedDate != nil {
		received = input.ReceivedDate.UTC()
	}
	return s.repo.Create(ctx, ItemBatch{
		ItemType:     input.ItemType,
		BatchNumber:  input.BatchNumber,
		Quantity:     input.Quantity,
		ExpiryDate:   input.ExpiryDate,
		ReceivedDate: received,
		Status:       status,
	})
}

func (s *Service) List(ctx context.Context, filters ListFilters, params shared.PageParams) ([]ItemBatch, int, error) {
	if filters.Status != nil && !ValidStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, *filters.Status)
	}
	return s.repo.List(ctx, filters, params)
}

func (s *Service) ListByStatus(ctx context.Context, status BatchStatus) ([]ItemBatch, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, status)
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) Get(ctx context.Context, id string) (ItemBatch, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (ItemBatch, error) {
	batch, err := s.repo.Get(ctx, id)
	if err != nil {
		return ItemBatch{}, err
	}
	if input.ItemType != nil {
		batch.ItemType = *input.ItemType
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return ItemBatch{}, fmt.Errorf("%w: quantity must be a positive integer", shared.ErrValidation)
		}
		batch.Quantity = *input.Quantity
	}
	if input.ExpiryDate != nil {
		batch.ExpiryDate = *input.ExpiryDate
	}
	if input.Status != nil {
		if !ValidStatus(*input.Status) {
			return ItemBatch{}, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, *input.Status)
		}
		batch.Status = *input.Status
	}
	return s.repo.Update(ctx, batch)
}

// Delete retires a batch by marking it depleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}
