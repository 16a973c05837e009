package mvcc

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mnohosten/snapkv/pkg/snapshot"
)

// Snapshot is the advisory payload written by ExportSnapshot: a point-in-
// time view of manager stats and version-store size, for operators
// shipping periodic health snapshots off-box. It carries no key/value
// data, so exporting one never reintroduces the persistence Non-goal.
type Snapshot struct {
	GeneratedAt    time.Time `json:"generated_at"`
	CurrentVersion uint64    `json:"current_version"`
	LiveKeys       int       `json:"live_keys"`
	Stats          Stats     `json:"stats"`
}

// ExportSnapshot serializes the manager's current Stats and store size as
// JSON and writes the result through codec to w. Grounded on the
// teacher's pkg/compression usage pattern of compressing a document
// before a storage write, repurposed here for an observability export
// instead of a storage path.
func (m *Manager) ExportSnapshot(w io.Writer, codec *snapshot.Codec) error {
	m.mu.Lock()
	live := len(m.live)
	m.mu.Unlock()

	snap := Snapshot{
		GeneratedAt:    time.Now(),
		CurrentVersion: m.store.CurrentVersion(),
		LiveKeys:       m.store.KeyCount(),
		Stats:          m.stats.snapshot(live),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("mvcc: marshal snapshot: %w", err)
	}

	compressed, err := codec.Compress(data)
	if err != nil {
		return fmt.Errorf("mvcc: compress snapshot: %w", err)
	}

	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("mvcc: write snapshot: %w", err)
	}
	return nil
}
