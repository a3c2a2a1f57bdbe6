package exec

import (
	"math"

	"minidb/internal/btree"
	"minidb/internal/heap"
	"minidb/internal/sqlast"
	"minidb/internal/tuple"
)

// IndexScan materializes matching RIDs from a B+Tree on its first Next
// call, per the op-to-range_scan mapping of spec.md §4.7, then drains them
// in ascending key order.
type IndexScan struct {
	tree   *btree.BTree
	heap   *heap.HeapFile
	schema *tuple.Schema
	cond   sqlast.Simple

	materialized bool
	rids         []heap.RID
	pos          int
}

// NewIndexScan builds an IndexScan over tree, reading rows through hf.
// cond must be an equality or ordering comparison against an indexed
// integer column; the planner never builds an IndexScan for `!=`.
func NewIndexScan(tree *btree.BTree, hf *heap.HeapFile, schema *tuple.Schema, cond sqlast.Simple) *IndexScan {
	return &IndexScan{tree: tree, heap: hf, schema: schema, cond: cond}
}

func (s *IndexScan) Schema() *tuple.Schema { return s.schema }

func (s *IndexScan) materialize() {
	s.materialized = true
	v := s.cond.Value.Int
	switch s.cond.Op {
	case sqlast.OpEq:
		if rid, ok := s.tree.Search(v); ok {
			s.rids = []heap.RID{rid}
		}
	case sqlast.OpGe:
		s.rids = s.tree.RangeScan(v, math.MaxInt64)
	case sqlast.OpGt:
		s.rids = s.tree.RangeScan(v+1, math.MaxInt64)
	case sqlast.OpLe:
		s.rids = s.tree.RangeScan(math.MinInt64, v)
	case sqlast.OpLt:
		s.rids = s.tree.RangeScan(math.MinInt64, v-1)
	}
}

func (s *IndexScan) Next() (*tuple.Tuple, error) {
	if !s.materialized {
		s.materialize()
	}
	for s.pos < len(s.rids) {
		rid := s.rids[s.pos]
		s.pos++
		data := s.heap.Get(rid)
		if data == nil {
			continue // deleted since the index was built/consulted
		}
		return tuple.Deserialize(data, s.schema)
	}
	return nil, nil
}

func (s *IndexScan) Close() {}
