package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/galleytrack/galleytrack/internal/shared"
)

type fakeRepo struct {
	records   []Record
	employees map[string]bool
	cutoff    time.Time
}

func (f *fakeRepo) Insert(ctx context.Context, record Record) (Record, error) {
	record.ID = uuid.NewString()
	record.CreatedAt = record.RestockTimestamp
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeRepo) List(ctx context.Context, params shared.PageParams) ([]Record, int, error) {
	return f.records, len(f.records), nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Record, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, shared.ErrNotFound
}

func (f *fakeRepo) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	return f.employees[employeeID], nil
}

func (f *fakeRepo) ListByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	matches := []Record{}
	for _, rec := range f.records {
		if rec.EmployeeID != nil && *rec.EmployeeID == employeeID {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

func (f *fakeRepo) ListWarnings(ctx context.Context) ([]Record, error) {
	matches := []Record{}
	for _, rec := range f.records {
		if rec.BatchWarningTriggered {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

func (f *fakeRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	kept := f.records[:0]
	var deleted int64
	for _, rec := range f.records {
		if rec.RestockTimestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return deleted, nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateRecord(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	record, err := svc.Create(context.Background(), CreateInput{
		EmployeeID:      ptr(uuid.NewString()),
		ActionType:      ActionRestock,
		QuantityChanged: 24,
		AccuracyScore:   ptr(95.5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	require.False(t, record.RestockTimestamp.IsZero())
	require.Nil(t, record.EfficiencyScore)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Create(context.Background(), CreateInput{ActionType: "theft", QuantityChanged: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{ActionType: ActionRestock})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{
		ActionType: ActionRestock, QuantityChanged: 1, AccuracyScore: ptr(1000.0),
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{
		ActionType: ActionRemoval, QuantityChanged: -5, EfficiencyScore: ptr(-0.1),
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Boundary scores are accepted.
	_, err = svc.Create(context.Background(), CreateInput{
		ActionType: ActionAdjustment, QuantityChanged: 1,
		AccuracyScore: ptr(0.0), EfficiencyScore: ptr(999.99),
	})
	require.NoError(t, err)
}

func TestListByEmployeeRequiresEmployee(t *testing.T) {
	employeeID := uuid.NewString()
	repo := &fakeRepo{employees: map[string]bool{employeeID: true}}
	svc := NewService(repo)

	records, err := svc.ListByEmployee(context.Background(), employeeID)
	require.NoError(t, err)
	require.Empty(t, records, "known employee with no records yields an empty list")

	_, err = svc.ListByEmployee(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPruneUsesRetentionCutoff(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	old := Record{ID: "old", RestockTimestamp: now.Add(-48 * time.Hour)}
	recent := Record{ID: "recent", RestockTimestamp: now.Add(-time.Hour)}
	repo.records = []Record{old, recent}

	deleted, err := svc.Prune(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
	require.Equal(t, now.Add(-24*time.Hour), repo.cutoff)
	require.Len(t, repo.records, 1)
	require.Equal(t, "recent", repo.records[0].ID)
}
