// Package mvcc implements a snapshot-isolated, optimistic-concurrency-
// controlled multi-version key-value engine: a Store of versioned values,
// Transactions as buffered read/write handles over a snapshot, and a
// Manager that mediates between them and runs the commit validate-and-
// apply protocol.
package mvcc

import (
	"sync"
	"time"

	"github.com/mnohosten/snapkv/pkg/audit"
)

// Manager issues transactions, mediates reads/writes against the Store
// and each transaction's buffers, runs commit validation and apply, and
// performs garbage collection.
//
// A single mutex serializes begin's snapshot capture, commit's validate-
// and-apply, and GC — the three operations whose ordering the
// correctness invariants in SPEC_FULL.md §5 depend on. Read and Write
// only need to look up a transaction by id safely; they take the same
// mutex briefly for that lookup and then operate on the transaction's own
// fields, which are synchronized independently (see Transaction).
type Manager struct {
	mu   sync.Mutex
	live map[TxnID]*Transaction

	store *Store
	cfg   *Config
	stats *statsTracker

	txSeq uint64

	gcStopChan chan struct{}
	gcWaitGrp  sync.WaitGroup
}

// NewManager constructs a Manager with an empty Store and the given
// options applied over DefaultConfig. If cfg.GCInterval is positive, a
// background goroutine calls GC on that interval until Close is called,
// following the teacher's ttlCleanupLoop convention.
func NewManager(opts ...Option) *Manager {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Manager{
		live:       make(map[TxnID]*Transaction),
		store:      NewStore(),
		cfg:        cfg,
		stats:      newStatsTracker(),
		gcStopChan: make(chan struct{}),
	}

	if cfg.GCInterval > 0 {
		m.gcWaitGrp.Add(1)
		go m.gcLoop(cfg.GCInterval)
	}

	return m
}

// gcLoop runs GC every interval until gcStopChan is closed.
func (m *Manager) gcLoop(interval time.Duration) {
	defer m.gcWaitGrp.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.GC()
		case <-m.gcStopChan:
			return
		}
	}
}

// Close stops the background GC goroutine started by WithGCInterval, if
// any, and waits for it to exit. Safe to call on a Manager constructed
// without WithGCInterval; it is then a no-op wait on an already-idle
// WaitGroup. Close must only be called once.
func (m *Manager) Close() error {
	close(m.gcStopChan)
	m.gcWaitGrp.Wait()
	return nil
}

// Store returns the underlying version store, for callers that want the
// store-level operations (Write, Read, CurrentVersion, AllVersions)
// directly rather than through a transaction.
func (m *Manager) Store() *Store {
	return m.store
}

// Begin assigns a new tx_id, snapshots the store's current version
// counter, and registers a new active Transaction.
func (m *Manager) Begin() (TxnID, error) {
	m.mu.Lock()
	if m.cfg.MaxLiveTransactions > 0 && len(m.live) >= m.cfg.MaxLiveTransactions {
		m.mu.Unlock()
		return 0, ErrMaxLiveTransactions
	}

	snapshot := m.store.CurrentVersion()
	m.txSeq++
	id := TxnID(m.txSeq)
	tx := newTransaction(id, snapshot)
	m.live[id] = tx
	m.mu.Unlock()

	m.emit(audit.Event{Operation: audit.OperationBegin, TxID: uint64(id), Success: true})
	return id, nil
}

// missingTxErr distinguishes a tx_id this manager never issued from one it
// issued but that already reached a terminal state. Must be called with
// m.mu held. TxnID is a manager-local sequential counter (see Begin), so
// any id within the range already handed out that isn't in the live set
// was terminated by a prior Commit/Abort; anything past txSeq was never
// issued at all.
func (m *Manager) missingTxErr(id TxnID) error {
	if id == 0 || uint64(id) > m.txSeq {
		return ErrUnknownTransaction
	}
	return ErrTransactionNotActive
}

// lookupActive returns the live Transaction for id, or the appropriate
// error (ErrUnknownTransaction, ErrTransactionNotActive) if it is not
// live.
func (m *Manager) lookupActive(id TxnID) (*Transaction, error) {
	m.mu.Lock()
	tx, ok := m.live[id]
	if !ok {
		err := m.missingTxErr(id)
		m.mu.Unlock()
		return nil, err
	}
	m.mu.Unlock()
	return tx, nil
}

// Read resolves key against tx's write buffer first (read-your-writes),
// then against the store at tx's snapshot version, recording the
// observed version id into the read set on the first read of a key.
func (m *Manager) Read(id TxnID, key string) (any, bool, error) {
	tx, err := m.lookupActive(id)
	if err != nil {
		return nil, false, err
	}

	m.emit(audit.Event{Operation: audit.OperationRead, TxID: uint64(id), Key: key, Success: true})

	tx.mu.Lock()
	if v, ok := tx.bufferedWrite(key); ok {
		tx.mu.Unlock()
		if isTombstone(v) {
			return nil, false, nil
		}
		return v, true, nil
	}
	snapshot := tx.SnapshotVersion
	tx.mu.Unlock()

	value, versionID, found := m.store.ReadVersion(key, snapshot)
	if !found {
		return nil, false, nil
	}

	tx.mu.Lock()
	tx.recordRead(key, value, versionID)
	tx.mu.Unlock()

	return value, true, nil
}

// Write buffers value for key in tx's write set. No store interaction, no
// read-set mutation.
func (m *Manager) Write(id TxnID, key string, value any) error {
	tx, err := m.lookupActive(id)
	if err != nil {
		return err
	}

	tx.mu.Lock()
	tx.bufferWrite(key, value)
	tx.mu.Unlock()

	m.emit(audit.Event{Operation: audit.OperationWrite, TxID: uint64(id), Key: key, Success: true})
	return nil
}

// Delete buffers a tombstone for key, so that on commit it is applied as
// a fresh version that resolves to "absent" for later readers.
func (m *Manager) Delete(id TxnID, key string) error {
	tx, err := m.lookupActive(id)
	if err != nil {
		return err
	}

	tx.mu.Lock()
	tx.bufferWrite(key, Tombstone)
	tx.mu.Unlock()

	m.emit(audit.Event{Operation: audit.OperationDelete, TxID: uint64(id), Key: key, Success: true})
	return nil
}

// CommitResult carries the outcome of a successful commit beyond the bare
// success signal, for callers that opted into fingerprinting.
type CommitResult struct {
	Fingerprint string
}

// Commit runs the OCC validate-and-apply protocol for tx. On conflict it
// marks the transaction aborted and returns ErrConflict; the caller is
// expected to retry from scratch. On success it applies the write set
// through the store, allocating fresh version ids, and marks the
// transaction committed. Validation and apply run as one critical section
// under the manager lock, so no concurrent commit or begin can observe a
// partial apply.
func (m *Manager) Commit(id TxnID) (CommitResult, error) {
	start := time.Now()

	m.mu.Lock()
	tx, ok := m.live[id]
	if !ok {
		err := m.missingTxErr(id)
		m.mu.Unlock()
		return CommitResult{}, err
	}

	tx.mu.Lock()
	reads := make(map[string]readEntry, len(tx.readSet))
	for k, v := range tx.readSet {
		reads[k] = v
	}
	writes := make(map[string]any, len(tx.writeSet))
	for k, v := range tx.writeSet {
		writes[k] = v
	}
	tx.mu.Unlock()

	for key, entry := range reads {
		if latest := m.store.LatestVersionID(key); latest > entry.versionID {
			tx.mu.Lock()
			tx.Status = StatusAborted
			tx.EndTime = time.Now()
			tx.mu.Unlock()
			delete(m.live, id)
			m.mu.Unlock()

			latency := time.Since(start)
			m.stats.recordAbort(latency)
			m.emit(audit.Event{
				Operation: audit.OperationCommit,
				TxID:      uint64(id),
				Key:       key,
				Success:   false,
				Error:     ErrConflict.Error(),
				Duration:  latency,
				Severity:  audit.SeverityWarn,
			})
			return CommitResult{}, ErrConflict
		}
	}

	for key, value := range writes {
		m.store.Write(key, value)
	}

	var fingerprint string
	if m.cfg.Fingerprint {
		fingerprint = fingerprintWriteSet(writes)
	}

	tx.mu.Lock()
	tx.Status = StatusCommitted
	tx.EndTime = time.Now()
	tx.mu.Unlock()
	delete(m.live, id)
	m.mu.Unlock()

	latency := time.Since(start)
	m.stats.recordCommit(latency)
	m.emit(audit.Event{
		Operation:   audit.OperationCommit,
		TxID:        uint64(id),
		Success:     true,
		Duration:    latency,
		Fingerprint: fingerprint,
		Severity:    audit.SeverityInfo,
	})
	return CommitResult{Fingerprint: fingerprint}, nil
}

// Abort marks tx aborted without applying its write buffer and removes it
// from the live set.
func (m *Manager) Abort(id TxnID) error {
	start := time.Now()

	m.mu.Lock()
	tx, ok := m.live[id]
	if !ok {
		err := m.missingTxErr(id)
		m.mu.Unlock()
		return err
	}

	tx.mu.Lock()
	tx.Status = StatusAborted
	tx.EndTime = time.Now()
	tx.mu.Unlock()
	delete(m.live, id)
	m.mu.Unlock()

	m.stats.recordAbort(time.Since(start))
	m.emit(audit.Event{Operation: audit.OperationAbort, TxID: uint64(id), Success: true})
	return nil
}

// GC reclaims versions no longer visible to any live transaction and no
// longer needed as the live version for future snapshots. It returns the
// number of versions discarded.
func (m *Manager) GC() int {
	m.mu.Lock()
	minSnapshot := m.store.CurrentVersion()
	for _, tx := range m.live {
		if tx.SnapshotVersion < minSnapshot {
			minSnapshot = tx.SnapshotVersion
		}
	}
	discarded := m.store.gc(minSnapshot)
	m.mu.Unlock()

	m.stats.recordGC(discarded)
	m.emit(audit.Event{
		Operation: audit.OperationGC,
		Success:   true,
		Details:   map[string]any{"versions_discarded": discarded},
	})
	return discarded
}

// Stats returns an advisory snapshot of manager activity.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	live := len(m.live)
	m.mu.Unlock()
	return m.stats.snapshot(live)
}

func (m *Manager) emit(e audit.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m.cfg.AuditSink.Emit(e)
}

func isTombstone(v any) bool {
	_, ok := v.(tombstone)
	return ok
}
