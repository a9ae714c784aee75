package batches

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

const batchColumns = `id, item_type, batch_number, quantity, expiry_date, received_date, status, created_at, updated_at`

// Repository persists item batches in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, batch ItemBatch) (ItemBatch, error) {
	now := time.Now().UTC()
	batch.ID = uuid.NewString()
	batch.CreatedAt = now
	batch.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO item_batches (id, item_type, batch_number, quantity, expiry_date, received_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		batch.ID, batch.ItemType, batch.BatchNumber, batch.Quantity, batch.ExpiryDate,
		batch.ReceivedDate, batch.Status, batch.CreatedAt, batch.UpdatedAt)
	if isUniqueViolation(err) {
		return ItemBatch{}, fmt.Errorf("%w: batch number %s already exists", shared.ErrDuplicate, batch.BatchNumber)
	}
	if err != nil {
		return ItemBatch{}, fmt.Errorf("insert item batch: %w", err)
	}
	return batch, nil
}

func (r *Repository) List(ctx context.Context, filters ListFilters, params shared.PageParams) ([]ItemBatch, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.ItemType != "" {
		args = append(args, filters.ItemType)
		where += fmt.Sprintf(" AND item_type = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM item_batches`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count item batches: %w", err)
	}

	args = append(args, params.PerPage, params.Offset())
	query := `SELECT ` + batchColumns + ` FROM item_batches` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list item batches: %w", err)
	}
	defer rows.Close()

	items, err := scanBatches(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) ListByStatus(ctx context.Context, status BatchStatus) ([]ItemBatch, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+batchColumns+` FROM item_batches WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list item batches by status: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

func (r *Repository) Get(ctx context.Context, id string) (ItemBatch, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+batchColumns+` FROM item_batches WHERE id = $1`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ItemBatch{}, fmt.Errorf("%w: item batch %s not found", shared.ErrNotFound, id)
	}
	if err != nil {
		return ItemBatch{}, fmt.Errorf("get item batch: %w", err)
	}
	return batch, nil
}

func (r *Repository) Update(ctx context.Context, batch ItemBatch) (ItemBatch, error) {
	batch.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE item_batches
		SET item_type = $2, quantity = $3, expiry_date = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		batch.ID, batch.ItemType, batch.Quantity, batch.ExpiryDate, batch.Status, batch.UpdatedAt)
	if err != nil {
		return ItemBatch{}, fmt.Errorf("update item batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ItemBatch{}, fmt.Errorf("%w: item batch %s not found", shared.ErrNotFound, batch.ID)
	}
	return r.Get(ctx, batch.ID)
}

// SoftDelete marks a batch depleted. Rows are never removed so the
// ledger and audit trail keep their references.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE item_batches SET status = $2, updated_at = $3 WHERE id = $1`,
		id, StatusDepleted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete item batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item batch %s not found", shared.ErrNotFound, id)
	}
	return nil
}

func scanBatch(row pgx.Row) (ItemBatch, error) {
	var b ItemBatch
	err := row.Scan(&b.ID, &b.ItemType, &b.BatchNumber, &b.Quantity, &b.ExpiryDate,
		&b.ReceivedDate, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func scanBatches(rows pgx.Rows) ([]ItemBatch, error) {
	items := []ItemBatch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item batch: %w", err)
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
