// Package heap implements the heap file: an ordered sequence of slotted
// pages holding a table's row storage, plus a forward iterator, per
// spec.md §3/§4.5.
package heap

import (
	"fmt"

	"minidb/internal/slotted"
	"minidb/internal/storagepage"
)

// RID (record id) locates a record within a heap file. It is stable until
// the record is deleted.
type RID struct {
	PageID storagepage.PageID
	SlotID slotted.SlotID
}

// LockMode is the granularity requested from a LockManager.
type LockMode int

const (
	Shared LockMode = iota
	Exclusive
)

// LockManager is the subset of txn.LockManager that HeapFile needs. Kept
// as an interface here (rather than importing the txn package) so heap
// stays a leaf dependency; txn.LockManager implements this signature.
type LockManager interface {
	Acquire(txnID uint64, rid RID, mode LockMode) error
}

// HeapFile is an ordered sequence of slotted pages indexed 0..pageCount.
// It borrows a BufferPool and, optionally, a LockManager; it owns only its
// page count.
type HeapFile struct {
	pool      *storagepage.BufferPool
	lockMgr   LockManager
	pageCount storagepage.PageID

	txnBound bool
	txnID    uint64
}

// Open initializes a fresh heap file: page 0 is allocated, initialized as
// a slotted page, and written back.
func Open(pool *storagepage.BufferPool, lockMgr LockManager) (*HeapFile, error) {
	h := &HeapFile{pool: pool, lockMgr: lockMgr}
	page, err := pool.NewPage(0)
	if err != nil {
		return nil, fmt.Errorf("heap: init page 0: %w", err)
	}
	slotted.Init(page)
	pool.UnpinPage(0, true)
	h.pageCount = 1
	return h, nil
}

// OpenExisting reattaches to a heap file that already has pages on disk,
// trusting pool's backing file rather than re-initializing page 0 the way
// Open does for a brand new file.
func OpenExisting(pool *storagepage.BufferPool, lockMgr LockManager) (*HeapFile, error) {
	count, err := pool.DiskPageCount()
	if err != nil {
		return nil, fmt.Errorf("heap: reopen: %w", err)
	}
	if count == 0 {
		return Open(pool, lockMgr)
	}
	return &HeapFile{pool: pool, lockMgr: lockMgr, pageCount: count}, nil
}

// BindTransaction attaches a transaction to the heap; subsequent inserts
// acquire exclusive locks and gets attempt shared locks under its id.
func (h *HeapFile) BindTransaction(txnID uint64) {
	h.txnBound = true
	h.txnID = txnID
}

// UnbindTransaction detaches the current transaction.
func (h *HeapFile) UnbindTransaction() {
	h.txnBound = false
}

// PageCount returns the number of pages currently in the heap file.
func (h *HeapFile) PageCount() int { return int(h.pageCount) }

// Insert places data (an already-serialized record) in the first page with room, or a
// newly appended page if none has room. If a transaction is bound, an
// exclusive lock on the new RID is acquired after the write and its error
// (if any) is surfaced to the caller.
func (h *HeapFile) Insert(data []byte) (RID, error) {
	for pid := storagepage.PageID(0); pid < h.pageCount; pid++ {
		page, err := h.pool.FetchPage(pid)
		if err != nil {
			return RID{}, err
		}
		sp := slotted.Wrap(page)
		slotID, err := sp.Insert(data)
		if err != nil {
			h.pool.UnpinPage(pid, false)
			continue
		}
		h.pool.UnpinPage(pid, true)
		rid := RID{PageID: pid, SlotID: slotID}
		return rid, h.lockOnInsert(rid)
	}

	newID := h.pageCount
	page, err := h.pool.NewPage(newID)
	if err != nil {
		return RID{}, err
	}
	sp := slotted.Init(page)
	slotID, err := sp.Insert(data)
	if err != nil {
		// A fresh page cannot fail to hold one record unless it is larger
		// than a page can ever contain.
		h.pool.UnpinPage(newID, false)
		return RID{}, err
	}
	h.pool.UnpinPage(newID, true)
	h.pageCount++
	rid := RID{PageID: newID, SlotID: slotID}
	return rid, h.lockOnInsert(rid)
}

func (h *HeapFile) lockOnInsert(rid RID) error {
	if !h.txnBound || h.lockMgr == nil {
		return nil
	}
	return h.lockMgr.Acquire(h.txnID, rid, Exclusive)
}

// Get returns the bytes stored at rid, or nil if the page doesn't exist or
// the slot is dead. Lock conflicts on the (attempted) shared lock are
// deliberately suppressed per spec.md's Open Question #1.
func (h *HeapFile) Get(rid RID) []byte {
	if rid.PageID >= h.pageCount {
		return nil
	}
	page, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return nil
	}
	sp := slotted.Wrap(page)
	data := sp.Get(rid.SlotID)
	h.pool.UnpinPage(rid.PageID, false)

	if h.txnBound && h.lockMgr != nil {
		_ = h.lockMgr.Acquire(h.txnID, rid, Shared) // conflicts ignored on read
	}
	return data
}

// Delete removes the record at rid. A no-op if the page doesn't exist.
func (h *HeapFile) Delete(rid RID) {
	if rid.PageID >= h.pageCount {
		return
	}
	page, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return
	}
	sp := slotted.Wrap(page)
	sp.Delete(rid.SlotID)
	h.pool.UnpinPage(rid.PageID, true)
}

// Scan returns a forward iterator over live (rid, bytes) pairs in
// page-order then slot-order, skipping dead slots.
func (h *HeapFile) Scan() *Iterator {
	return &Iterator{heap: h, pageID: 0, slotID: 0}
}

// Iterator yields (RID, bytes) pairs across the heap file. It pins the
// page it is currently reading from exactly once, holding that single pin
// across every record yielded from the page, and unpins it when advancing.
type Iterator struct {
	heap       *HeapFile
	pageID     storagepage.PageID
	slotID     slotted.SlotID
	page       *storagepage.Page
	pinnedPage bool
}

// Next advances to the next live record. It returns false once the heap is
// exhausted.
func (it *Iterator) Next() (RID, []byte, bool) {
	for it.pageID < it.heap.pageCount {
		if !it.pinnedPage {
			page, err := it.heap.pool.FetchPage(it.pageID)
			if err != nil {
				return RID{}, nil, false
			}
			it.page = page
			it.pinnedPage = true
		}
		sp := slotted.Wrap(it.page)
		capacity := sp.Capacity()
		for int(it.slotID) < capacity {
			data := sp.Get(it.slotID)
			sid := it.slotID
			it.slotID++
			if data == nil {
				continue
			}
			return RID{PageID: it.pageID, SlotID: sid}, data, true
		}
		// Page exhausted: unpin and advance.
		it.heap.pool.UnpinPage(it.pageID, false)
		it.pinnedPage = false
		it.pageID++
		it.slotID = 0
	}
	return RID{}, nil, false
}

// Close unpins the page currently held by the iterator, if any. Safe to
// call multiple times.
func (it *Iterator) Close() {
	if it.pinnedPage {
		it.heap.pool.UnpinPage(it.pageID, false)
		it.pinnedPage = false
	}
}
