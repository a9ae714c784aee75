package employees

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/galleytrack/galleytrack/internal/shared"
)

type fakeRepo struct {
	byID map[string]Employee
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Employee{}}
}

func (f *fakeRepo) Create(ctx context.Context, employee Employee) (Employee, error) {
	for _, existing := range f.byID {
		if existing.EmployeeID == employee.EmployeeID {
			return Employee{}, shared.ErrDuplicate
		}
	}
	employee.ID = uuid.NewString()
	f.byID[employee.ID] = employee
	return employee, nil
}

func (f *fakeRepo) List(ctx context.Context, status *Status) ([]Employee, error) {
	out := []Employee{}
	for _, e := range f.byID {
		if status != nil && e.Status != *status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Employee, error) {
	employee, ok := f.byID[id]
	if !ok {
		return Employee{}, shared.ErrNotFound
	}
	return employee, nil
}

func (f *fakeRepo) Update(ctx context.Context, employee Employee) (Employee, error) {
	if _, ok := f.byID[employee.ID]; !ok {
		return Employee{}, shared.ErrNotFound
	}
	f.byID[employee.ID] = employee
	return employee, nil
}

func (f *fakeRepo) Deactivate(ctx context.Context, id string) error {
	employee, ok := f.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	employee.Status = StatusInactive
	f.byID[id] = employee
	return nil
}

func TestCreateDefaultsActive(t *testing.T) {
	svc := NewService(newFakeRepo())

	employee, err := svc.Create(context.Background(), CreateInput{EmployeeID: "EMP-001", FirstName: "Mina", LastName: "Park", Role: "crew"})
	require.NoError(t, err)
	require.Equal(t, StatusActive, employee.Status)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateInput{EmployeeID: "EMP-001", Status: "furloughed"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateEmployeeID(t *testing.T) {
	svc := NewService(newFakeRepo())
	input := CreateInput{EmployeeID: "EMP-001", FirstName: "Mina", LastName: "Park", Role: "crew"}

	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestListValidatesStatusFilter(t *testing.T) {
	svc := NewService(newFakeRepo())

	bad := Status("retired")
	_, err := svc.List(context.Background(), &bad)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteMarksInactive(t *testing.T) {
	svc := NewService(newFakeRepo())
	created, err := svc.Create(context.Background(), CreateInput{EmployeeID: "EMP-001", FirstName: "Mina", LastName: "Park", Role: "crew"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	employee, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInactive, employee.Status)

	require.ErrorIs(t, svc.Delete(context.Background(), uuid.NewString()), shared.ErrNotFound)
}
