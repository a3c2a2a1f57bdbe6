package storagepage

import (
	"path/filepath"
	"testing"
)

func openTestDisk(t *testing.T) *DiskManager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := OpenDiskManager(path)
	if err != nil {
		t.Fatalf("OpenDiskManager: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestFetchPageCachesAndPins(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 2)

	p0, err := bp.FetchPage(0)
	if err != nil {
		t.Fatalf("fetch 0: %v", err)
	}
	p0.Write(0, []byte("hello"))
	bp.UnpinPage(0, true)

	p0b, err := bp.FetchPage(0)
	if err != nil {
		t.Fatalf("re-fetch 0: %v", err)
	}
	if string(p0b.Read(0, 5)) != "hello" {
		t.Fatalf("expected cached write to survive re-fetch, got %q", p0b.Read(0, 5))
	}
	bp.UnpinPage(0, false)
}

func TestFetchPageNoFreeFrame(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 1)

	if _, err := bp.FetchPage(0); err != nil {
		t.Fatalf("fetch 0: %v", err)
	}
	// Frame 0 is still pinned; fetching a second page must fail.
	if _, err := bp.FetchPage(1); err == nil {
		t.Fatal("expected ErrNoFreeFrame")
	}
}

func TestEvictionFlushesDirtyPage(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 1)

	p0, err := bp.FetchPage(0)
	if err != nil {
		t.Fatalf("fetch 0: %v", err)
	}
	p0.Write(0, []byte("dirty-data"))
	bp.UnpinPage(0, true)

	// Fetching page 1 evicts page 0 (the only unpinned frame); its dirty
	// contents must be flushed to disk before the mapping is dropped.
	p1, err := bp.FetchPage(1)
	if err != nil {
		t.Fatalf("fetch 1: %v", err)
	}
	p1.Write(0, []byte("page-one"))
	bp.UnpinPage(1, true)

	p0Again, err := bp.FetchPage(0)
	if err != nil {
		t.Fatalf("re-fetch 0 after eviction: %v", err)
	}
	if string(p0Again.Read(0, 10)) != "dirty-data" {
		t.Fatalf("expected evicted dirty page to survive on disk, got %q", p0Again.Read(0, 10))
	}
}

func TestUnpinUnknownPageIsNoOp(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 1)
	bp.UnpinPage(42, true) // must not panic
}

func TestFlushPageNotResident(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 1)
	if err := bp.FlushPage(7); err == nil {
		t.Fatal("expected ErrPageNotFound")
	}
}

func TestStatsReportsOccupancy(t *testing.T) {
	d := openTestDisk(t)
	bp := NewBufferPool(d, 2)

	if _, err := bp.FetchPage(0); err != nil {
		t.Fatalf("fetch 0: %v", err)
	}
	p1, err := bp.FetchPage(1)
	if err != nil {
		t.Fatalf("fetch 1: %v", err)
	}
	p1.Write(0, []byte("dirty"))
	bp.UnpinPage(1, true)

	stats := bp.Stats()
	if stats.Capacity != 2 || stats.Resident != 2 {
		t.Fatalf("stats = %+v, want capacity=2 resident=2", stats)
	}
	if stats.Pinned != 1 {
		t.Fatalf("stats.Pinned = %d, want 1 (page 0 still pinned)", stats.Pinned)
	}
	if stats.Dirty != 1 {
		t.Fatalf("stats.Dirty = %d, want 1", stats.Dirty)
	}
}
