package tracking

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

// Repository persists the batch ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by the service.
// LockDrawer must be called first inside a Record transaction: the row
// lock serialises concurrent load actions per drawer and closes the
// detect-then-append race.
type TxRepository interface {
	LockDrawer(ctx context.Context, drawerID string) error
	GetBatch(ctx context.Context, batchID string) (BatchRef, error)
	NonDepletedEntries(ctx context.Context, drawerID string) ([]ExistingBatch, error)
	NextBatchOrder(ctx context.Context, drawerID string) (int, error)
	UpsertSnapshot(ctx context.Context, drawerID string, status DrawerState, now time.Time) (StatusSnapshot, error)
	InsertEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error)
	InsertAuditRecord(ctx context.Context, record AuditRecord) error
	GetEntryForUpdate(ctx context.Context, entryID string) (LedgerEntry, error)
	MarkEntryDepleted(ctx context.Context, entryID string, now time.Time) (LedgerEntry, error)
	MarkBatchDepleted(ctx context.Context, batchID string) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("tracking repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const existingBatchesQuery = `SELECT b.batch_number, b.item_type, t.quantity_loaded, t.load_date
FROM drawer_batch_tracking t
JOIN item_batches b ON b.id = t.batch_id
WHERE t.drawer_id=$1 AND t.is_depleted=FALSE
ORDER BY t.batch_order ASC`

// NonDepletedEntries lists the undepleted batches currently tracked for the
// drawer, outside any transaction. Used by the read-side detect endpoint.
func (r *Repository) NonDepletedEntries(ctx context.Context, drawerID string) ([]ExistingBatch, error) {
	if r == nil {
		return nil, errors.New("tracking repository not initialised")
	}
	rows, err := r.pool.Query(ctx, existingBatchesQuery, drawerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExistingBatches(rows)
}

// EntriesFor lists the full ledger for a drawer in batch_order.
func (r *Repository) EntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, drawer_id, batch_id, quantity_loaded, load_date, is_depleted, depletion_date, batch_order, created_at
FROM drawer_batch_tracking WHERE drawer_id=$1 ORDER BY batch_order ASC`, drawerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LedgerEntriesFor lists undepleted ledger rows for a drawer in batch_order.
func (r *Repository) LedgerEntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, drawer_id, batch_id, quantity_loaded, load_date, is_depleted, depletion_date, batch_order, created_at
FROM drawer_batch_tracking WHERE drawer_id=$1 AND is_depleted=FALSE ORDER BY batch_order ASC`, drawerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SnapshotFor returns the drawer's current status snapshot.
func (r *Repository) SnapshotFor(ctx context.Context, drawerID string) (StatusSnapshot, error) {
	var snap StatusSnapshot
	err := r.pool.QueryRow(ctx, `SELECT id, drawer_id, status, last_updated, created_at FROM drawer_status WHERE drawer_id=$1`, drawerID).
		Scan(&snap.ID, &snap.DrawerID, &snap.Status, &snap.LastUpdated, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StatusSnapshot{}, fmt.Errorf("%w: no status found for drawer %s", shared.ErrNotFound, drawerID)
		}
		return StatusSnapshot{}, err
	}
	return snap, nil
}

// SnapshotByID returns a snapshot by its own id.
func (r *Repository) SnapshotByID(ctx context.Context, id string) (StatusSnapshot, error) {
	var snap StatusSnapshot
	err := r.pool.QueryRow(ctx, `SELECT id, drawer_id, status, last_updated, created_at FROM drawer_status WHERE id=$1`, id).
		Scan(&snap.ID, &snap.DrawerID, &snap.Status, &snap.LastUpdated, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StatusSnapshot{}, fmt.Errorf("%w: drawer status %s not found", shared.ErrNotFound, id)
		}
		return StatusSnapshot{}, err
	}
	return snap, nil
}

// ListSnapshots returns every drawer's current snapshot.
func (r *Repository) ListSnapshots(ctx context.Context) ([]StatusSnapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, drawer_id, status, last_updated, created_at FROM drawer_status ORDER BY last_updated DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snaps := []StatusSnapshot{}
	for rows.Next() {
		var snap StatusSnapshot
		if err := rows.Scan(&snap.ID, &snap.DrawerID, &snap.Status, &snap.LastUpdated, &snap.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// UpdateSnapshotStatus sets the status of an existing snapshot by id.
func (r *Repository) UpdateSnapshotStatus(ctx context.Context, id string, status DrawerState, now time.Time) (StatusSnapshot, error) {
	var snap StatusSnapshot
	err := r.pool.QueryRow(ctx, `UPDATE drawer_status SET status=$2, last_updated=$3 WHERE id=$1
RETURNING id, drawer_id, status, last_updated, created_at`, id, string(status), now).
		Scan(&snap.ID, &snap.DrawerID, &snap.Status, &snap.LastUpdated, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StatusSnapshot{}, fmt.Errorf("%w: drawer status %s not found", shared.ErrNotFound, id)
		}
		return StatusSnapshot{}, err
	}
	return snap, nil
}

func (r *txRepository) LockDrawer(ctx context.Context, drawerID string) error {
	var id string
	err := r.tx.QueryRow(ctx, `SELECT id FROM drawers WHERE id=$1 FOR UPDATE`, drawerID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: drawer %s not found", shared.ErrNotFound, drawerID)
		}
		return err
	}
	return nil
}

func (r *txRepository) GetBatch(ctx context.Context, batchID string) (BatchRef, error) {
	var ref BatchRef
	var status string
	err := r.tx.QueryRow(ctx, `SELECT id, batch_number, item_type, quantity, status FROM item_batches WHERE id=$1`, batchID).
		Scan(&ref.ID, &ref.BatchNumber, &ref.ItemType, &ref.Quantity, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BatchRef{}, fmt.Errorf("%w: batch %s not found", shared.ErrNotFound, batchID)
		}
		return BatchRef{}, err
	}
	ref.Depleted = status == "depleted"
	return ref, nil
}

func (r *txRepository) NonDepletedEntries(ctx context.Context, drawerID string) ([]ExistingBatch, error) {
	rows, err := r.tx.Query(ctx, existingBatchesQuery, drawerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExistingBatches(rows)
}

func (r *txRepository) NextBatchOrder(ctx context.Context, drawerID string) (int, error) {
	var next int
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(MAX(batch_order), 0) + 1 FROM drawer_batch_tracking WHERE drawer_id=$1`, drawerID).Scan(&next)
	return next, err
}

func (r *txRepository) UpsertSnapshot(ctx context.Context, drawerID string, status DrawerState, now time.Time) (StatusSnapshot, error) {
	var snap StatusSnapshot
	err := r.tx.QueryRow(ctx, `INSERT INTO drawer_status (id, drawer_id, status, last_updated, created_at)
VALUES ($1,$2,$3,$4,$4)
ON CONFLICT (drawer_id) DO UPDATE SET status=EXCLUDED.status, last_updated=EXCLUDED.last_updated
RETURNING id, drawer_id, status, last_updated, created_at`, uuid.NewString(), drawerID, string(status), now).
		Scan(&snap.ID, &snap.DrawerID, &snap.Status, &snap.LastUpdated, &snap.CreatedAt)
	return snap, err
}

func (r *txRepository) InsertEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = entry.LoadDate
	_, err := r.tx.Exec(ctx, `INSERT INTO drawer_batch_tracking (id, drawer_id, batch_id, quantity_loaded, load_date, is_depleted, depletion_date, batch_order, created_at)
VALUES ($1,$2,$3,$4,$5,FALSE,NULL,$6,$7)`,
		entry.ID, entry.DrawerID, entry.BatchID, entry.QuantityLoaded, entry.LoadDate, entry.BatchOrder, entry.CreatedAt)
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertAuditRecord(ctx context.Context, record AuditRecord) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO restock_history (id, employee_id, drawer_id, batch_id, action_type, quantity_changed, restock_timestamp, completion_time_seconds, accuracy_score, efficiency_score, notes, batch_warning_triggered, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		uuid.NewString(), record.EmployeeID, record.DrawerID, record.BatchID, string(record.ActionType), record.QuantityChanged,
		record.RestockTimestamp, record.CompletionTimeSeconds, record.AccuracyScore, record.EfficiencyScore, record.Notes,
		record.BatchWarningTriggered, record.RestockTimestamp)
	return err
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, entryID string) (LedgerEntry, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, drawer_id, batch_id, quantity_loaded, load_date, is_depleted, depletion_date, batch_order, created_at
FROM drawer_batch_tracking WHERE id=$1 FOR UPDATE`, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerEntry{}, fmt.Errorf("%w: batch tracking %s not found", shared.ErrNotFound, entryID)
		}
		return LedgerEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) MarkEntryDepleted(ctx context.Context, entryID string, now time.Time) (LedgerEntry, error) {
	row := r.tx.QueryRow(ctx, `UPDATE drawer_batch_tracking SET is_depleted=TRUE, depletion_date=$2 WHERE id=$1
RETURNING id, drawer_id, batch_id, quantity_loaded, load_date, is_depleted, depletion_date, batch_order, created_at`, entryID, now)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerEntry{}, fmt.Errorf("%w: batch tracking %s not found", shared.ErrNotFound, entryID)
		}
		return LedgerEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) MarkBatchDepleted(ctx context.Context, batchID string) error {
	_, err := r.tx.Exec(ctx, `UPDATE item_batches SET status='depleted', updated_at=NOW() WHERE id=$1`, batchID)
	return err
}

func scanEntry(row pgx.Row) (LedgerEntry, error) {
	var entry LedgerEntry
	err := row.Scan(&entry.ID, &entry.DrawerID, &entry.BatchID, &entry.QuantityLoaded, &entry.LoadDate,
		&entry.IsDepleted, &entry.DepletionDate, &entry.BatchOrder, &entry.CreatedAt)
	return entry, err
}

func scanExistingBatches(rows pgx.Rows) ([]ExistingBatch, error) {
	existing := []ExistingBatch{}
	for rows.Next() {
		var b ExistingBatch
		if err := rows.Scan(&b.BatchNumber, &b.ItemType, &b.QuantityLoaded, &b.LoadDate); err != nil {
			return nil, err
		}
		existing = append(existing, b)
	}
	return existing, rows.Err()
}
