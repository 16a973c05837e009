package mvcc

import "testing"

func TestStoreWriteAssignsMonotonicVersions(t *testing.T) {
	s := NewStore()

	v1 := s.Write("a", 1)
	v2 := s.Write("b", 2)
	v3 := s.Write("a", 3)

	if !(v1 < v2 && v2 < v3) {
		t.Fatalf("expected strictly increasing ids, got %d %d %d", v1, v2, v3)
	}
	if got := s.CurrentVersion(); got != v3 {
		t.Fatalf("CurrentVersion() = %d, want %d", got, v3)
	}
}

func TestStoreReadResolvesHighestIDAtOrBelowSnapshot(t *testing.T) {
	s := NewStore()
	s.Write("price", 100)
	v2 := s.Write("price", 200)
	s.Write("price", 300)

	value, ok := s.Read("price", v2)
	if !ok || value != 200 {
		t.Fatalf("Read at v2 = (%v, %v), want (200, true)", value, ok)
	}
}

func TestStoreReadOfUnwrittenKeyIsAbsent(t *testing.T) {
	s := NewStore()
	s.Write("other", 1)

	if _, ok := s.Read("missing", s.CurrentVersion()); ok {
		t.Fatalf("expected absence for unwritten key")
	}
}

func TestStoreReadAtSnapshotZeroSeesNothing(t *testing.T) {
	s := NewStore()
	s.Write("k", "v")

	if _, ok := s.Read("k", 0); ok {
		t.Fatalf("snapshot 0 predates any version and must see nothing")
	}
}

// Invariant 3: snapshot determinism.
func TestStoreSnapshotDeterminismUnderLaterWrites(t *testing.T) {
	s := NewStore()
	v1 := s.Write("k", "first")

	before, ok := s.Read("k", v1)
	if !ok || before != "first" {
		t.Fatalf("unexpected initial read: %v %v", before, ok)
	}

	s.Write("k", "second")
	s.Write("k", "third")

	after, ok := s.Read("k", v1)
	if !ok || after != before {
		t.Fatalf("read at v1 changed after later writes: before=%v after=%v", before, after)
	}
}

func TestStoreTombstoneHidesValue(t *testing.T) {
	s := NewStore()
	s.Write("k", "v")
	s.Write("k", Tombstone)

	if _, ok := s.Read("k", s.CurrentVersion()); ok {
		t.Fatalf("expected tombstoned key to read as absent")
	}
}

func TestStoreLatestVersionID(t *testing.T) {
	s := NewStore()
	if got := s.LatestVersionID("missing"); got != 0 {
		t.Fatalf("LatestVersionID(missing) = %d, want 0", got)
	}

	v1 := s.Write("k", 1)
	if got := s.LatestVersionID("k"); got != v1 {
		t.Fatalf("LatestVersionID = %d, want %d", got, v1)
	}
	v2 := s.Write("k", 2)
	if got := s.LatestVersionID("k"); got != v2 {
		t.Fatalf("LatestVersionID = %d, want %d", got, v2)
	}
}

// S5 — GC with no live transactions reclaims all but the newest version
// and preserves visibility of the newest.
func TestStoreGCSequentialWrites(t *testing.T) {
	s := NewStore()
	for i := 0; i < 100; i++ {
		s.Write("key", i)
	}

	discarded := s.gc(s.CurrentVersion())
	if discarded != 99 {
		t.Fatalf("gc() = %d, want 99", discarded)
	}

	v, ok := s.Read("key", s.CurrentVersion())
	if !ok || v != 99 {
		t.Fatalf("Read after gc = (%v, %v), want (99, true)", v, ok)
	}
}

// S6 — GC under a live reader must not discard the version that reader
// still needs.
func TestStoreGCPreservesSnapshotForLiveReader(t *testing.T) {
	s := NewStore()
	v1 := s.Write("x", 1)
	s.Write("x", 2)

	s.gc(v1)

	v, ok := s.Read("x", v1)
	if !ok || v != 1 {
		t.Fatalf("Read at pinned snapshot = (%v, %v), want (1, true)", v, ok)
	}

	latest, ok := s.Read("x", s.CurrentVersion())
	if !ok || latest != 2 {
		t.Fatalf("Read at current = (%v, %v), want (2, true)", latest, ok)
	}
}

func TestStoreGCRetainsTombstoneAsVisibleVersion(t *testing.T) {
	s := NewStore()
	s.Write("k", "v")
	s.Write("k", Tombstone)

	s.gc(s.CurrentVersion())

	if got := s.KeyCount(); got != 1 {
		t.Fatalf("expected tombstone's own version to be retained, KeyCount() = %d", got)
	}
}

func TestStoreKeyCount(t *testing.T) {
	s := NewStore()
	if got := s.KeyCount(); got != 0 {
		t.Fatalf("KeyCount() on empty store = %d, want 0", got)
	}
	s.Write("a", 1)
	s.Write("b", 2)
	s.Write("a", 3)
	if got := s.KeyCount(); got != 2 {
		t.Fatalf("KeyCount() = %d, want 2", got)
	}
}
