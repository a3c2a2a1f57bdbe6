package monitor

import (
	"bytes"
	"strings"
	"testing"

	"minidb/internal/opslog"
	"minidb/internal/storagepage"
)

type fakePool struct{ stats storagepage.Stats }

func (f fakePool) Stats() storagepage.Stats { return f.stats }

type fakeLocks struct{ count int }

func (f fakeLocks) LockedRIDCount() int { return f.count }

func TestSnapshotLogsPoolsAndLocks(t *testing.T) {
	var buf bytes.Buffer
	logger := opslog.New(&buf, "mon")
	m := New(logger, fakeLocks{count: 3})
	m.AddPool("users", fakePool{stats: storagepage.Stats{Capacity: 16, Resident: 4, Pinned: 1, Dirty: 2}})

	m.snapshot()

	out := buf.String()
	if !strings.Contains(out, "pool users: 4/16 resident, 1 pinned, 2 dirty") {
		t.Fatalf("missing pool line: %q", out)
	}
	if !strings.Contains(out, "lock manager: 3 locked RIDs") {
		t.Fatalf("missing lock line: %q", out)
	}
}

func TestStartAndStopDoNotPanic(t *testing.T) {
	var buf bytes.Buffer
	m := New(opslog.New(&buf, "mon"), nil)
	if err := m.Start("*/30 * * * * *"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Stop()
}
