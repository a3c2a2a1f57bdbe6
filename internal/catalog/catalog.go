// Package catalog implements the Table and Catalog components of
// spec.md §4.9: a table owns its schema, heap file, and per-column
// indexes; a catalog is a name-to-table registry.
package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"minidb/internal/btree"
	"minidb/internal/heap"
	"minidb/internal/manifest"
	"minidb/internal/storagepage"
	"minidb/internal/tuple"
)

// Table holds an owned copy of its schema, its heap file, and a
// name->B+Tree map for each indexed column.
type Table struct {
	name    string
	schema  *tuple.Schema
	heap    *heap.HeapFile
	pool    *storagepage.BufferPool
	disk    *storagepage.DiskManager
	indexes map[string]*btree.BTree
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's owned schema.
func (t *Table) Schema() *tuple.Schema { return t.schema }

// HeapFile exposes the underlying heap file for sequential scans.
func (t *Table) HeapFile() *heap.HeapFile { return t.heap }

// BindTransaction propagates a bound transaction id to the heap file so
// inserts/gets acquire locks under it.
func (t *Table) BindTransaction(txnID uint64) { t.heap.BindTransaction(txnID) }

// UnbindTransaction detaches the currently bound transaction, if any.
func (t *Table) UnbindTransaction() { t.heap.UnbindTransaction() }

// Insert serializes tup and inserts it into the heap file, then inserts
// (key, rid) into every index built over one of tup's integer columns.
func (t *Table) Insert(tup *tuple.Tuple) (heap.RID, error) {
	rid, err := t.heap.Insert(tup.Serialize())
	if err != nil {
		return heap.RID{}, fmt.Errorf("catalog: insert into %q: %w", t.name, err)
	}
	for col, idx := range t.indexes {
		colIdx, _ := t.schema.IndexOf(col)
		v := tup.Values[colIdx]
		if v.IsNull() {
			continue
		}
		idx.Insert(v.Int, rid)
	}
	return rid, nil
}

// Get fetches and deserializes the tuple at rid, or nil if it no longer
// exists.
func (t *Table) Get(rid heap.RID) (*tuple.Tuple, error) {
	data := t.heap.Get(rid)
	if data == nil {
		return nil, nil
	}
	return tuple.Deserialize(data, t.schema)
}

// CreateIndex builds a new B+Tree over col by scanning every live row in
// the heap. It is a no-op if the column is not an integer column, per
// spec.md §4.9.
func (t *Table) CreateIndex(col string) error {
	colIdx, ok := t.schema.IndexOf(col)
	if !ok {
		return fmt.Errorf("catalog: table %q has no column %q", t.name, col)
	}
	if t.schema.Columns[colIdx].Type != tuple.Integer {
		return nil
	}

	tr := btree.New()
	it := t.heap.Scan()
	defer it.Close()
	for {
		rid, data, ok := it.Next()
		if !ok {
			break
		}
		row, err := tuple.Deserialize(data, t.schema)
		if err != nil {
			return fmt.Errorf("catalog: rebuild index %q.%q: %w", t.name, col, err)
		}
		v := row.Values[colIdx]
		if v.IsNull() {
			continue
		}
		tr.Insert(v.Int, rid)
	}
	if t.indexes == nil {
		t.indexes = make(map[string]*btree.BTree)
	}
	t.indexes[col] = tr
	return nil
}

// Index returns the B+Tree built over col, if one exists.
func (t *Table) Index(col string) (*btree.BTree, bool) {
	tr, ok := t.indexes[col]
	return tr, ok
}

// Stats returns the occupancy of the table's backing buffer pool, for the
// periodic monitor snapshot.
func (t *Table) Stats() storagepage.Stats {
	return t.pool.Stats()
}

// Catalog owns every Table, keyed by name. Tables are backed by one file
// per table under dataDir, per spec.md §6.
type Catalog struct {
	mu       sync.RWMutex
	dataDir  string
	poolSize int
	lockMgr  heap.LockManager
	tables   map[string]*Table
}

// New returns an empty catalog rooted at dataDir; each table opened
// through it gets its own BufferPool of poolSize frames sharing lockMgr
// (which may be nil outside a transactional session).
func New(dataDir string, poolSize int, lockMgr heap.LockManager) *Catalog {
	return &Catalog{
		dataDir:  dataDir,
		poolSize: poolSize,
		lockMgr:  lockMgr,
		tables:   make(map[string]*Table),
	}
}

// CreateTable deep-copies schema, opens `<name>.db` under the catalog's
// data directory, writes its `<name>.schema.yaml` manifest, and registers
// the resulting Table under name. A duplicate name overwrites the previous
// registration; avoiding that is the caller's responsibility, per
// spec.md §4.9.
func (c *Catalog) CreateTable(name string, schema *tuple.Schema) (*Table, error) {
	t, err := c.open(name, schema, heap.Open)
	if err != nil {
		return nil, fmt.Errorf("catalog: create table %q: %w", name, err)
	}
	if err := manifest.Write(c.dataDir, name, schema); err != nil {
		return nil, fmt.Errorf("catalog: create table %q: %w", name, err)
	}
	return t, nil
}

// OpenTable reattaches to a table whose `<name>.db` file and manifest
// already exist on disk (e.g. re-registering every table found by
// manifest.ListTables on startup), without zero-initializing page 0.
func (c *Catalog) OpenTable(name string) (*Table, error) {
	schema, err := manifest.Read(c.dataDir, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: open table %q: %w", name, err)
	}
	t, err := c.open(name, schema, heap.OpenExisting)
	if err != nil {
		return nil, fmt.Errorf("catalog: open table %q: %w", name, err)
	}
	return t, nil
}

func (c *Catalog) open(name string, schema *tuple.Schema, openHeap func(*storagepage.BufferPool, heap.LockManager) (*heap.HeapFile, error)) (*Table, error) {
	path := filepath.Join(c.dataDir, name+".db")
	disk, err := storagepage.OpenDiskManager(path)
	if err != nil {
		return nil, err
	}
	pool := storagepage.NewBufferPool(disk, c.poolSize)
	hf, err := openHeap(pool, c.lockMgr)
	if err != nil {
		return nil, err
	}

	t := &Table{
		name:    name,
		schema:  schema.Clone(),
		heap:    hf,
		pool:    pool,
		disk:    disk,
		indexes: make(map[string]*btree.BTree),
	}

	c.mu.Lock()
	c.tables[name] = t
	c.mu.Unlock()
	return t, nil
}

// DataDir returns the directory the catalog's table files live under, for
// ambient tooling (manifest listing, config) that needs the same root.
func (c *Catalog) DataDir() string { return c.dataDir }

// Table looks up a registered table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	return t, ok
}

// TableNames returns every registered table name.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for n := range c.tables {
		names = append(names, n)
	}
	return names
}

// BindTransaction propagates txnID to every currently registered table, so
// whichever table an upcoming insert/get targets acquires locks under it.
func (c *Catalog) BindTransaction(txnID uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tables {
		t.BindTransaction(txnID)
	}
}

// UnbindTransaction detaches the currently bound transaction (if any) from
// every registered table.
func (c *Catalog) UnbindTransaction() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tables {
		t.UnbindTransaction()
	}
}

// Close flushes and closes every table's backing file.
func (c *Catalog) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var firstErr error
	for _, t := range c.tables {
		if err := t.pool.FlushAll(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := t.disk.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
