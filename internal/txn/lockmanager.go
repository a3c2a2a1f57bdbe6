package txn

import (
	"fmt"

	"minidb/internal/heap"
)

// lockEntry is the per-RID lock state: the granted mode and its holders.
type lockEntry struct {
	mode    heap.LockMode
	holders map[uint64]struct{}
}

// LockManager implements heap.LockManager per spec.md §4.10. It does not
// wait or yield: the specified model is single-threaded and cooperative, so
// a conflict is always an immediate error, never a block.
type LockManager struct {
	entries map[heap.RID]*lockEntry
}

// NewLockManager returns an empty lock table.
func NewLockManager() *LockManager {
	return &LockManager{entries: make(map[heap.RID]*lockEntry)}
}

// Acquire grants txnID a lock on rid at mode, per spec.md §4.10:
//   - no entry: create one with mode, holders {txnID}.
//   - txnID already a holder: succeed (reentrant; mode is not upgraded).
//   - both requested and current mode are shared: add txnID to holders.
//   - otherwise: ErrLockConflict.
func (lm *LockManager) Acquire(txnID uint64, rid heap.RID, mode heap.LockMode) error {
	e, ok := lm.entries[rid]
	if !ok {
		lm.entries[rid] = &lockEntry{mode: mode, holders: map[uint64]struct{}{txnID: {}}}
		return nil
	}
	if _, already := e.holders[txnID]; already {
		return nil
	}
	if e.mode == heap.Shared && mode == heap.Shared {
		e.holders[txnID] = struct{}{}
		return nil
	}
	return fmt.Errorf("txn: acquire lock on %+v: %w", rid, ErrLockConflict)
}

// Release removes txnID from rid's holder set, dropping the entry if it
// becomes empty.
func (lm *LockManager) Release(txnID uint64, rid heap.RID) {
	e, ok := lm.entries[rid]
	if !ok {
		return
	}
	delete(e.holders, txnID)
	if len(e.holders) == 0 {
		delete(lm.entries, rid)
	}
}

// ReleaseAll removes txnID from every entry it holds, dropping any entry
// that becomes empty.
func (lm *LockManager) ReleaseAll(txnID uint64) {
	for rid, e := range lm.entries {
		delete(e.holders, txnID)
		if len(e.holders) == 0 {
			delete(lm.entries, rid)
		}
	}
}

// LockedRIDCount returns the number of RIDs currently holding at least one
// lock, for the periodic stats snapshot the monitor package logs.
func (lm *LockManager) LockedRIDCount() int {
	return len(lm.entries)
}
