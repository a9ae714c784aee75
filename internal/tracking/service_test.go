package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/galleytrack/galleytrack/internal/shared"
)

type memoryState struct {
	drawers   map[string]bool
	batches   map[string]BatchRef
	entries   map[string]LedgerEntry
	snapshots map[string]StatusSnapshot
	audits    []AuditRecord
}

func (s *memoryState) clone() *memoryState {
	next := &memoryState{
		drawers:   make(map[string]bool, len(s.drawers)),
		batches:   make(map[string]BatchRef, len(s.batches)),
		entries:   make(map[string]LedgerEntry, len(s.entries)),
		snapshots: make(map[string]StatusSnapshot, len(s.snapshots)),
		audits:    append([]AuditRecord(nil), s.audits...),
	}
	for k, v := range s.drawers {
		next.drawers[k] = v
	}
	for k, v := range s.batches {
		next.batches[k] = v
	}
	for k, v := range s.entries {
		next.entries[k] = v
	}
	for k, v := range s.snapshots {
		next.snapshots[k] = v
	}
	return next
}

type memoryRepo struct {
	state     *memoryState
	failAudit bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: &memoryState{
		drawers:   map[string]bool{},
		batches:   map[string]BatchRef{},
		entries:   map[string]LedgerEntry{},
		snapshots: map[string]StatusSnapshot{},
	}}
}

func (r *memoryRepo) addDrawer() string {
	id := uuid.NewString()
	r.state.drawers[id] = true
	return id
}

func (r *memoryRepo) addBatch(number string, quantity int) string {
	id := uuid.NewString()
	r.state.batches[id] = BatchRef{ID: id, BatchNumber: number, ItemType: "Snack Box", Quantity: quantity}
	return id
}

type memoryTx struct {
	repo  *memoryRepo
	state *memoryState
}

// WithTx emulates transaction semantics: mutations land on a staged copy
// and only become visible when fn succeeds.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := r.state.clone()
	if err := fn(ctx, &memoryTx{repo: r, state: staged}); err != nil {
		return err
	}
	r.state = staged
	return nil
}

func (r *memoryRepo) NonDepletedEntries(ctx context.Context, drawerID string) ([]ExistingBatch, error) {
	return nonDepleted(r.state, drawerID), nil
}

func (r *memoryRepo) EntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error) {
	return entriesByOrder(r.state, drawerID, false), nil
}

func (r *memoryRepo) LedgerEntriesFor(ctx context.Context, drawerID string) ([]LedgerEntry, error) {
	return entriesByOrder(r.state, drawerID, true), nil
}

func (r *memoryRepo) SnapshotFor(ctx context.Context, drawerID string) (StatusSnapshot, error) {
	snap, ok := r.state.snapshots[drawerID]
	if !ok {
		return StatusSnapshot{}, fmt.Errorf("%w: no status found for drawer %s", shared.ErrNotFound, drawerID)
	}
	return snap, nil
}

func (r *memoryRepo) SnapshotByID(ctx context.Context, id string) (StatusSnapshot, error) {
	for _, snap := range r.state.snapshots {
		if snap.ID == id {
			return snap, nil
		}
	}
	return StatusSnapshot{}, fmt.Errorf("%w: drawer status %s not found", shared.ErrNotFound, id)
}

func (r *memoryRepo) ListSnapshots(ctx context.Context) ([]StatusSnapshot, error) {
	snaps := []StatusSnapshot{}
	for _, snap := range r.state.snapshots {
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (r *memoryRepo) UpdateSnapshotStatus(ctx context.Context, id string, status DrawerState, now time.Time) (StatusSnapshot, error) {
	for key, snap := range r.state.snapshots {
		if snap.ID == id {
			snap.Status = status
			snap.LastUpdated = now
			r.state.snapshots[key] = snap
			return snap, nil
		}
	}
	return StatusSnapshot{}, fmt.Errorf("%w: drawer status %s not found", shared.ErrNotFound, id)
}

func (tx *memoryTx) LockDrawer(ctx context.Context, drawerID string) error {
	if !tx.state.drawers[drawerID] {
		return fmt.Errorf("%w: drawer %s not found", shared.ErrNotFound, drawerID)
	}
	return nil
}

func (tx *memoryTx) GetBatch(ctx context.Context, batchID string) (BatchRef, error) {
	batch, ok := tx.state.batches[batchID]
	if !ok {
		return BatchRef{}, fmt.Errorf("%w: batch %s not found", shared.ErrNotFound, batchID)
	}
	return batch, nil
}

func (tx *memoryTx) NonDepletedEntries(ctx context.Context, drawerID string) ([]ExistingBatch, error) {
	return nonDepleted(tx.state, drawerID), nil
}

func (tx *memoryTx) NextBatchOrder(ctx context.Context, drawerID string) (int, error) {
	max := 0
	for _, entry := range tx.state.entries {
		if entry.DrawerID == drawerID && entry.BatchOrder > max {
			max = entry.BatchOrder
		}
	}
	return max + 1, nil
}

func (tx *memoryTx) UpsertSnapshot(ctx context.Context, drawerID string, status DrawerState, now time.Time) (StatusSnapshot, error) {
	snap, ok := tx.state.snapshots[drawerID]
	if !ok {
		snap = StatusSnapshot{ID: uuid.NewString(), DrawerID: drawerID, CreatedAt: now}
	}
	snap.Status = status
	snap.LastUpdated = now
	tx.state.snapshots[drawerID] = snap
	return snap, nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = entry.LoadDate
	tx.state.entries[entry.ID] = entry
	return entry, nil
}

func (tx *memoryTx) InsertAuditRecord(ctx context.Context, record AuditRecord) error {
	if tx.repo.failAudit {
		return errors.New("audit insert failed")
	}
	record.ID = uuid.NewString()
	tx.state.audits = append(tx.state.audits, record)
	return nil
}

func (tx *memoryTx) GetEntryForUpdate(ctx context.Context, entryID string) (LedgerEntry, error) {
	entry, ok := tx.state.entries[entryID]
	if !ok {
		return LedgerEntry{}, fmt.Errorf("%w: batch tracking %s not found", shared.ErrNotFound, entryID)
	}
	return entry, nil
}

func (tx *memoryTx) MarkEntryDepleted(ctx context.Context, entryID string, now time.Time) (LedgerEntry, error) {
	entry, ok := tx.state.entries[entryID]
	if !ok {
		return LedgerEntry{}, fmt.Errorf("%w: batch tracking %s not found", shared.ErrNotFound, entryID)
	}
	entry.IsDepleted = true
	stamped := now
	entry.DepletionDate = &stamped
	tx.state.entries[entryID] = entry
	return entry, nil
}

func (tx *memoryTx) MarkBatchDepleted(ctx context.Context, batchID string) error {
	batch, ok := tx.state.batches[batchID]
	if !ok {
		return fmt.Errorf("%w: batch %s not found", shared.ErrNotFound, batchID)
	}
	batch.Depleted = true
	tx.state.batches[batchID] = batch
	return nil
}

func nonDepleted(state *memoryState, drawerID string) []ExistingBatch {
	entries := entriesByOrder(state, drawerID, true)
	existing := []ExistingBatch{}
	for _, entry := range entries {
		batch := state.batches[entry.BatchID]
		existing = append(existing, ExistingBatch{
			BatchNumber:    batch.BatchNumber,
			ItemType:       batch.ItemType,
			QuantityLoaded: entry.QuantityLoaded,
			LoadDate:       entry.LoadDate,
		})
	}
	return existing
}

func entriesByOrder(state *memoryState, drawerID string, skipDepleted bool) []LedgerEntry {
	entries := []LedgerEntry{}
	for _, entry := range state.entries {
		if entry.DrawerID != drawerID {
			continue
		}
		if skipDepleted && entry.IsDepleted {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].BatchOrder < entries[j].BatchOrder })
	return entries
}

func record(t *testing.T, svc *Service, drawerID, batchID string, qty int) (StatusSnapshot, *Warning) {
	t.Helper()
	snap, warning, err := svc.Record(context.Background(), RecordInput{
		DrawerID: drawerID,
		BatchID:  batchID,
		Quantity: qty,
		Status:   DrawerStatePartial,
	})
	require.NoError(t, err)
	return snap, warning
}

func TestFirstLoadNeverWarns(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	batch := repo.addBatch("BATCH-001", 50)

	snap, warning := record(t, svc, drawer, batch, 25)
	require.Nil(t, warning)
	require.Equal(t, drawer, snap.DrawerID)
	require.Equal(t, DrawerStatePartial, snap.Status)

	entries, err := svc.EntriesFor(context.Background(), drawer)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].BatchOrder)
	require.False(t, entries[0].IsDepleted)
}

func TestStackingDetected(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	batch1 := repo.addBatch("BATCH-001", 50)
	batch2 := repo.addBatch("BATCH-002", 50)

	_, warning := record(t, svc, drawer, batch1, 25)
	require.Nil(t, warning)

	_, warning = record(t, svc, drawer, batch2, 25)
	require.NotNil(t, warning)
	require.Equal(t, WarningCodeStacking, warning.Code)
	require.Equal(t, "1 batch(es) already loaded without depletion", warning.Message)
	require.Len(t, warning.ExistingBatches, 1)
	require.Equal(t, "BATCH-001", warning.ExistingBatches[0].BatchNumber)

	entries, err := svc.EntriesFor(context.Background(), drawer)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, entries[1].BatchOrder)

	require.Len(t, repo.state.audits, 2)
	require.False(t, repo.state.audits[0].BatchWarningTriggered)
	require.True(t, repo.state.audits[1].BatchWarningTriggered)
}

func TestDepletionClearsWarning(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	batch1 := repo.addBatch("BATCH-001", 50)
	batch2 := repo.addBatch("BATCH-002", 50)

	record(t, svc, drawer, batch1, 25)
	_, warning := record(t, svc, drawer, batch2, 25)
	require.NotNil(t, warning)
	require.Equal(t, []string{"BATCH-001"}, batchNumbers(warning.ExistingBatches))

	entries, err := svc.EntriesFor(context.Background(), drawer)
	require.NoError(t, err)
	updated, err := svc.Deplete(context.Background(), entries[0].ID)
	require.NoError(t, err)
	require.True(t, updated.IsDepleted)
	require.NotNil(t, updated.DepletionDate)

	existing, err := svc.Detect(context.Background(), drawer)
	require.NoError(t, err)
	require.Equal(t, []string{"BATCH-002"}, batchNumbers(existing))

	batch3 := repo.addBatch("BATCH-003", 50)
	_, warning = record(t, svc, drawer, batch3, 25)
	require.NotNil(t, warning)
	require.Equal(t, []string{"BATCH-002"}, batchNumbers(warning.ExistingBatches))
}

func TestDetectEmptyDrawer(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()

	existing, err := svc.Detect(context.Background(), drawer)
	require.NoError(t, err)
	require.Empty(t, existing)
}

func TestDepletionCascadesToBatch(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	full := repo.addBatch("BATCH-FULL", 50)
	partial := repo.addBatch("BATCH-PART", 50)

	record(t, svc, drawer, full, 50)
	record(t, svc, drawer, partial, 25)

	entries, err := svc.EntriesFor(context.Background(), drawer)
	require.NoError(t, err)

	_, err = svc.Deplete(context.Background(), entries[0].ID)
	require.NoError(t, err)
	require.True(t, repo.state.batches[full].Depleted, "fully loaded batch should cascade to depleted")

	_, err = svc.Deplete(context.Background(), entries[1].ID)
	require.NoError(t, err)
	require.False(t, repo.state.batches[partial].Depleted, "partially loaded batch must stay untouched")
}

func TestDepleteRestampsTimestamp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	batch := repo.addBatch("BATCH-001", 50)

	record(t, svc, drawer, batch, 25)
	entries, err := svc.EntriesFor(context.Background(), drawer)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	first, err := svc.Deplete(context.Background(), entries[0].ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(time.Hour) }
	second, err := svc.Deplete(context.Background(), entries[0].ID)
	require.NoError(t, err)
	require.True(t, second.IsDepleted)
	require.True(t, second.DepletionDate.After(*first.DepletionDate))
}

func TestDepleteUnknownEntry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Deplete(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordUnknownDrawerOrBatch(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()

	_, _, err := svc.Record(context.Background(), RecordInput{
		DrawerID: uuid.NewString(), BatchID: uuid.NewString(), Quantity: 10, Status: DrawerStateFull,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, _, err = svc.Record(context.Background(), RecordInput{
		DrawerID: drawer, BatchID: uuid.NewString(), Quantity: 10, Status: DrawerStateFull,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.state.entries, "failed record must leave no ledger entries")
	require.Empty(t, repo.state.audits, "failed record must leave no audit records")
}

func TestRecordValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	batch := repo.addBatch("BATCH-001", 50)

	_, _, err := svc.Record(context.Background(), RecordInput{DrawerID: drawer, BatchID: batch, Quantity: 0, Status: DrawerStateFull})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, _, err = svc.Record(context.Background(), RecordInput{DrawerID: drawer, BatchID: batch, Quantity: 10, Status: DrawerState("overflowing")})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRecordRollsBackOnAuditFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	drawer := repo.addDrawer()
	batch := repo.addBatch("BATCH-001", 50)

	repo.failAudit = true
	_, _, err := svc.Record(context.Background(), RecordInput{DrawerID: drawer, BatchID: batch, Quantity: 10, Status: DrawerStateFull})
	require.Error(t, err)
	require.Empty(t, repo.state.entries)
	require.Empty(t, repo.state.snapshots)
	require.Empty(t, repo.state.audits)

	repo.failAudit = false
	snap, warning := record(t, svc, drawer, batch, 10)
	require.Nil(t, warning, "rolled-back attempt must not count as an existing batch")
	require.Equal(t, DrawerStateFull, repo.state.snapshots[snap.DrawerID].Status)
}

func batchNumbers(existing []ExistingBatch) []string {
	numbers := make([]string, 0, len(existing))
	for _, b := range existing {
		numbers = append(numbers, b.BatchNumber)
	}
	return numbers
}
