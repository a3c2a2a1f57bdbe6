package exec

import (
	"minidb/internal/heap"
	"minidb/internal/tuple"
)

// SeqScan pulls the next live record from a heap file's iterator and
// deserializes it with the given schema.
type SeqScan struct {
	it     *heap.Iterator
	schema *tuple.Schema
}

// NewSeqScan opens a forward scan over hf.
func NewSeqScan(hf *heap.HeapFile, schema *tuple.Schema) *SeqScan {
	return &SeqScan{it: hf.Scan(), schema: schema}
}

func (s *SeqScan) Schema() *tuple.Schema { return s.schema }

func (s *SeqScan) Next() (*tuple.Tuple, error) {
	_, data, ok := s.it.Next()
	if !ok {
		return nil, nil
	}
	return tuple.Deserialize(data, s.schema)
}

func (s *SeqScan) Close() { s.it.Close() }
