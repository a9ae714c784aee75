package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galleytrack/galleytrack/internal/shared"
)

const recordColumns = `id, employee_id, drawer_id, batch_id, action_type, quantity_changed,
	restock_timestamp, completion_time_seconds, accuracy_score, efficiency_score, notes,
	batch_warning_triggered, created_at`

// Repository persists audit records in Postgres. Inserts only; the
// trail is never updated through the API.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, record Record) (Record, error) {
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO restock_history (id, employee_id, drawer_id, batch_id, action_type, quantity_changed,
			restock_timestamp, completion_time_seconds, accuracy_score, efficiency_score, notes,
			batch_warning_triggered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		record.ID, record.EmployeeID, record.DrawerID, record.BatchID, record.ActionType,
		record.QuantityChanged, record.RestockTimestamp, record.CompletionTimeSeconds,
		record.AccuracyScore, record.EfficiencyScore, record.Notes,
		record.BatchWarningTriggered, record.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert restock record: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, params shared.PageParams) ([]Record, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM restock_history`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count restock records: %w", err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM restock_history
		ORDER BY restock_timestamp DESC LIMIT $1 OFFSET $2`, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list restock records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM restock_history WHERE id = $1`, id)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: restock record %s not found", shared.ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get restock record: %w", err)
	}
	return record, nil
}

func (r *Repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, employeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check employee: %w", err)
	}
	return exists, nil
}

func (r *Repository) ListByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM restock_history
		WHERE employee_id = $1 ORDER BY restock_timestamp DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list restock records by employee: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *Repository) ListWarnings(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM restock_history
		WHERE batch_warning_triggered ORDER BY restock_timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("list warning records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// DeleteOlderThan removes records outside the retention window. Only the
// retention job calls this; the HTTP surface stays append-only.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM restock_history WHERE restock_timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune restock records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.DrawerID, &rec.BatchID, &rec.ActionType,
		&rec.QuantityChanged, &rec.RestockTimestamp, &rec.CompletionTimeSeconds,
		&rec.AccuracyScore, &rec.EfficiencyScore, &rec.Notes,
		&rec.BatchWarningTriggered, &rec.CreatedAt)
	return rec, err
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restock record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
