package employees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galleytrack/galleytrack/internal/shared"
)

const employeeColumns = `id, employee_id, first_name, last_name, role, status, created_at, updated_at`

// Repository persists employees in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, employee Employee) (Employee, error) {
	now := time.Now().UTC()
	employee.ID = uuid.NewString()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO employees (id, employee_id, first_name, last_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		employee.ID, employee.EmployeeID, employee.FirstName, employee.LastName,
		employee.Role, employee.Status, employee.CreatedAt, employee.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Employee{}, fmt.Errorf("%w: employee ID %s already exists", shared.ErrDuplicate, employee.EmployeeID)
	}
	if err != nil {
		return Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return employee, nil
}

func (r *Repository) List(ctx context.Context, status *Status) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY employee_id`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	list := []Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	employee, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: employee %s not found", shared.ErrNotFound, id)
	}
	if err != nil {
		return Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return employee, nil
}

func (r *Repository) Update(ctx context.Context, employee Employee) (Employee, error) {
	employee.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE employees
		SET first_name = $2, last_name = $3, role = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		employee.ID, employee.FirstName, employee.LastName, employee.Role, employee.Status, employee.UpdatedAt)
	if err != nil {
		return Employee{}, fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, fmt.Errorf("%w: employee %s not found", shared.ErrNotFound, employee.ID)
	}
	return r.Get(ctx, employee.ID)
}

// Deactivate marks an employee inactive. Employees are never removed so
// the audit trail keeps its references.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE employees SET status = $2, updated_at = $3 WHERE id = $1`,
		id, StatusInactive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %s not found", shared.ErrNotFound, id)
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.EmployeeID, &e.FirstName, &e.LastName, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
