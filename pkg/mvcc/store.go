package mvcc

import (
	"sort"
	"sync"
	"time"
)

// Store is the multi-version key-value store. It owns every VersionedValue
// ever written and the single global version counter that orders them.
//
// Locking is simplified from the teacher's nested scheme in the original
// version store to a single lock: a store-wide lock guards the key->sequence map and the counter
// together (so an append and the counter bump are always observed as one
// step by a concurrent reader), while per-key sequences are plain slices
// read under the same lock. A single coarse lock is kept per the "use one
// lock first" guidance; the counter and the map are never consistent
// independently of each other, so splitting them would require a second
// synchronization point for no benefit at this scale.
type Store struct {
	mu      sync.RWMutex
	data    map[string][]VersionedValue // ascending VersionID per key
	counter uint64
}

// NewStore creates an empty version store with its counter at zero.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]VersionedValue),
	}
}

// Write atomically increments the global counter and appends a fresh
// version for key, returning the new version id.
func (s *Store) Write(key string, value any) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	v := VersionedValue{
		Value:     value,
		VersionID: s.counter,
		CreatedAt: time.Now(),
	}
	s.data[key] = append(s.data[key], v)
	return v.VersionID
}

// Read returns the value of the highest-id version of key whose id is <=
// snapshot, or (nil, false) if no such version exists or that version is
// a tombstone.
func (s *Store) Read(key string, snapshot uint64) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.data[key]
	idx := visibleIndex(versions, snapshot)
	if idx < 0 {
		return nil, false
	}
	v := versions[idx]
	if v.Deleted() {
		return nil, false
	}
	return v.Value, true
}

// ReadVersion behaves like Read but also returns the exact version id
// observed, so callers (the Manager) can record it in a read set without
// re-scanning the sequence themselves.
func (s *Store) ReadVersion(key string, snapshot uint64) (value any, versionID uint64, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.data[key]
	idx := visibleIndex(versions, snapshot)
	if idx < 0 {
		return nil, 0, false
	}
	v := versions[idx]
	if v.Deleted() {
		return nil, 0, false
	}
	return v.Value, v.VersionID, true
}

// visibleIndex returns the index of the version with the largest VersionID
// <= snapshot, or -1 if none exists. versions is ascending by VersionID.
func visibleIndex(versions []VersionedValue, snapshot uint64) int {
	i := sort.Search(len(versions), func(i int) bool {
		return versions[i].VersionID > snapshot
	})
	return i - 1
}

// CurrentVersion returns the current value of the global counter.
func (s *Store) CurrentVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter
}

// LatestVersionID returns the VersionID of the newest version of key, or 0
// if the key has no versions. Used by commit validation.
func (s *Store) LatestVersionID(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.data[key]
	if len(versions) == 0 {
		return 0
	}
	return versions[len(versions)-1].VersionID
}

// KeyCount returns the number of distinct keys currently tracked by the
// store, including keys whose only remaining version is a tombstone.
func (s *Store) KeyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// AllVersions returns a copy of the version sequence for key, ordered by
// ascending VersionID.
func (s *Store) AllVersions(key string) []VersionedValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.data[key]
	out := make([]VersionedValue, len(versions))
	copy(out, versions)
	return out
}

// gc reclaims versions no longer reachable by any snapshot >= minSnapshot
// and no longer needed as the "live" version for any future snapshot. It
// retains, per key, the highest-id version with id <= minSnapshot (if any)
// plus every version with id > minSnapshot; strictly older versions are
// discarded. Keys left with no retained versions are removed entirely.
// Returns the number of discarded versions.
func (s *Store) gc(minSnapshot uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := 0
	for key, versions := range s.data {
		idx := visibleIndex(versions, minSnapshot)
		// idx < 0 means every version is newer than minSnapshot (or the
		// chain is empty): nothing to discard. Otherwise idx is the
		// visible version and everything before it is strictly older.
		start := idx
		if start < 0 {
			start = 0
		}

		discarded += start
		if start == 0 {
			continue
		}

		if start >= len(versions) {
			delete(s.data, key)
			continue
		}
		retained := make([]VersionedValue, len(versions)-start)
		copy(retained, versions[start:])
		s.data[key] = retained
	}
	return discarded
}
