package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/galleytrack/galleytrack/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	NonDepletedEntries(ctx context.Context, drawerID string) ([]ExistingBatch, error)
	EntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error)
	LedgerEntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error)
	SnapshotFor(ctx context.Context, drawerID string) (StatusSnapshot, error)
	SnapshotByID(ctx context.Context, id string) (StatusSnapshot, error)
	ListSnapshots(ctx context.Context) ([]StatusSnapshot, error)
	UpdateSnapshotStatus(ctx context.Context, id string, status DrawerState, now time.Time) (StatusSnapshot, error)
}

// MetricsPort receives domain-level metric events.
type MetricsPort interface {
	CountStackingWarning()
}

// Service coordinates ledger operations. Record and Deplete are the only
// write paths into the ledger and the audit trail.
type Service struct {
	repo    RepositoryPort
	logger  *slog.Logger
	metrics MetricsPort
	now     func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger, metrics MetricsPort) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: metrics, now: time.Now}
}

// Record registers one inventory load action: it detects stacking, refreshes
// the drawer's status snapshot, appends a ledger entry and an audit record,
// all inside one transaction. A stacking condition is advisory: the load is
// always accepted and the warning returned alongside the snapshot.
func (s *Service) Record(ctx context.Context, input RecordInput) (StatusSnapshot, *Warning, error) {
	if err := input.Validate(); err != nil {
		return StatusSnapshot{}, nil, err
	}

	now := s.now().UTC()
	var snapshot StatusSnapshot
	var warning *Warning

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// The drawer row lock serialises concurrent loads on the same
		// drawer, so detect-then-append cannot race.
		if err := tx.LockDrawer(ctx, input.DrawerID); err != nil {
			return err
		}
		if _, err := tx.GetBatch(ctx, input.BatchID); err != nil {
			return err
		}

		existing, err := tx.NonDepletedEntries(ctx, input.DrawerID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			warning = newStackingWarning(existing)
		}

		snapshot, err = tx.UpsertSnapshot(ctx, input.DrawerID, input.Status, now)
		if err != nil {
			return err
		}

		order, err := tx.NextBatchOrder(ctx, input.DrawerID)
		if err != nil {
			return err
		}
		entry := LedgerEntry{
			DrawerID:       input.DrawerID,
			BatchID:        input.BatchID,
			QuantityLoaded: input.Quantity,
			LoadDate:       now,
			BatchOrder:     order,
		}
		if _, err := tx.InsertEntry(ctx, entry); err != nil {
			return err
		}

		record := AuditRecord{
			EmployeeID:            input.EmployeeID,
			DrawerID:              &input.DrawerID,
			BatchID:               &input.BatchID,
			ActionType:            ActionRestock,
			QuantityChanged:       input.Quantity,
			RestockTimestamp:      now,
			BatchWarningTriggered: warning != nil,
		}
		return tx.InsertAuditRecord(ctx, record)
	})
	if err != nil {
		return StatusSnapshot{}, nil, err
	}

	if warning != nil {
		if s.metrics != nil {
			s.metrics.CountStackingWarning()
		}
		s.logger.Warn("batch stacking detected",
			slog.String("drawer_id", input.DrawerID),
			slog.String("batch_id", input.BatchID),
			slog.Int("existing_batches", len(warning.ExistingBatches)))
	}
	return snapshot, warning, nil
}

// Detect returns the drawer's current non-depleted batches. Pure read;
// a drawer with no tracking history yields an empty slice.
func (s *Service) Detect(ctx context.Context, drawerID string) ([]ExistingBatch, error) {
	return s.repo.NonDepletedEntries(ctx, drawerID)
}

// Deplete marks a ledger entry depleted. Repeated calls re-stamp the
// depletion timestamp rather than failing. When the entry's loaded
// quantity covers the whole batch, the batch itself is marked depleted
// in the same transaction.
func (s *Service) Deplete(ctx context.Context, entryID string) (LedgerEntry, error) {
	if entryID == "" {
		return LedgerEntry{}, fmt.Errorf("%w: batch_tracking_id is required", shared.ErrValidation)
	}
	now := s.now().UTC()
	var updated LedgerEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		updated, err = tx.MarkEntryDepleted(ctx, entryID, now)
		if err != nil {
			return err
		}
		batch, err := tx.GetBatch(ctx, entry.BatchID)
		if err != nil {
			return err
		}
		if batch.Quantity == entry.QuantityLoaded && !batch.Depleted {
			return tx.MarkBatchDepleted(ctx, batch.ID)
		}
		return nil
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return updated, nil
}

// EntriesFor lists the drawer's full ledger in batch order.
func (s *Service) EntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error) {
	return s.repo.EntriesFor(ctx, drawerID)
}

// NonDepletedEntriesFor lists the drawer's undepleted ledger rows.
func (s *Service) NonDepletedEntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error) {
	return s.repo.LedgerEntriesFor(ctx, drawerID)
}

// SnapshotFor returns the drawer's current status snapshot.
func (s *Service) SnapshotFor(ctx context.Context, drawerID string) (StatusSnapshot, error) {
	return s.repo.SnapshotFor(ctx, drawerID)
}

// SnapshotByID returns a snapshot by snapshot id.
func (s *Service) SnapshotByID(ctx context.Context, id string) (StatusSnapshot, error) {
	return s.repo.SnapshotByID(ctx, id)
}

// ListSnapshots returns every drawer's current snapshot.
func (s *Service) ListSnapshots(ctx context.Context) ([]StatusSnapshot, error) {
	return s.repo.ListSnapshots(ctx)
}

// UpdateStatus sets a snapshot's status value outside the load path.
func (s *Service) UpdateStatus(ctx context.Context, id string, status DrawerState) (StatusSnapshot, error) {
	if !ValidDrawerState(status) {
		return StatusSnapshot{}, fmt.Errorf("%w: status must be one of empty, partial, full, needs_restock", shared.ErrValidation)
	}
	return s.repo.UpdateSnapshotStatus(ctx, id, status, s.now().UTC())
}
