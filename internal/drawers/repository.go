package drawers

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

const drawerColumns = `id, drawer_code, trolley_id, position, capacity, drawer_type, created_at, updated_at`

// Repository persists drawers in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, drawer Drawer) (Drawer, error) {
	now := time.Now().UTC()
	drawer.ID = uuid.NewString()
	drawer.CreatedAt = now
	drawer.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO drawers (id, drawer_code, trolley_id, position, capacity, drawer_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		drawer.ID, drawer.DrawerCode, drawer.TrolleyID, drawer.Position, drawer.Capacity,
		drawer.DrawerType, drawer.CreatedAt, drawer.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Drawer{}, fmt.Errorf("%w: drawer code %s already exists", shared.ErrDuplicate, drawer.DrawerCode)
	}
	if err != nil {
		return Drawer{}, fmt.Errorf("insert drawer: %w", err)
	}
	return drawer, nil
}

func (r *Repository) List(ctx context.Context, trolleyID string) ([]Drawer, error) {
	query := `SELECT ` + drawerColumns + ` FROM drawers`
	args := []any{}
	if trolleyID != "" {
		query += ` WHERE trolley_id = $1`
		args = append(args, trolleyID)
	}
	query += ` ORDER BY trolley_id, position`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drawers: %w", err)
	}
	defer rows.Close()

	list := []Drawer{}
	for rows.Next() {
		d, err := scanDrawer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drawer: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Drawer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+drawerColumns+` FROM drawers WHERE id = $1`, id)
	drawer, err := scanDrawer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Drawer{}, fmt.Errorf("%w: drawer %s not found", shared.ErrNotFound, id)
	}
	if err != nil {
		return Drawer{}, fmt.Errorf("get drawer: %w", err)
	}
	return drawer, nil
}

func (r *Repository) Update(ctx context.Context, drawer Drawer) (Drawer, error) {
	drawer.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE drawers
		SET trolley_id = $2, position = $3, capacity = $4, drawer_type = $5, updated_at = $6
		WHERE id = $1`,
		drawer.ID, drawer.TrolleyID, drawer.Position, drawer.Capacity, drawer.DrawerType, drawer.UpdatedAt)
	if err != nil {
		return Drawer{}, fmt.Errorf("update drawer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Drawer{}, fmt.Errorf("%w: drawer %s not found", shared.ErrNotFound, drawer.ID)
	}
	return r.Get(ctx, drawer.ID)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM drawers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: drawer %s not found", shared.ErrNotFound, id)
	}
	return nil
}

func scanDrawer(row pgx.Row) (Drawer, error) {
	var d Drawer
	err := row.Scan(&d.ID, &d.DrawerCode, &d.TrolleyID, &d.Position, &d.Capacity,
		&d.DrawerType, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
