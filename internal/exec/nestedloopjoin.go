package exec

import (
	"minidb/internal/heap"
	"minidb/internal/tuple"
)

// NestedLoopJoin emits, for each left tuple, every right-table row whose
// join column equals the left tuple's join column, in right-table scan
// order, per spec.md §4.7.
type NestedLoopJoin struct {
	left        Operator
	rightHeap   *heap.HeapFile
	rightSchema *tuple.Schema
	leftColIdx  int
	rightColIdx int
	schema      *tuple.Schema

	curLeft *tuple.Tuple
	rightIt *heap.Iterator
}

// NewNestedLoopJoin joins left against rightHeap's rows on
// left.Values[leftColIdx] == right.Values[rightColIdx]. schema must be the
// concatenation of left's schema and rightSchema.
func NewNestedLoopJoin(left Operator, rightHeap *heap.HeapFile, rightSchema *tuple.Schema, leftColIdx, rightColIdx int, schema *tuple.Schema) *NestedLoopJoin {
	return &NestedLoopJoin{
		left:        left,
		rightHeap:   rightHeap,
		rightSchema: rightSchema,
		leftColIdx:  leftColIdx,
		rightColIdx: rightColIdx,
		schema:      schema,
	}
}

func (j *NestedLoopJoin) Schema() *tuple.Schema { return j.schema }

func (j *NestedLoopJoin) Next() (*tuple.Tuple, error) {
	for {
		if j.curLeft == nil {
			t, err := j.left.Next()
			if err != nil {
				return nil, err
			}
			if t == nil {
				return nil, nil
			}
			j.curLeft = t
			j.rightIt = j.rightHeap.Scan()
		}

		_, data, ok := j.rightIt.Next()
		if !ok {
			j.rightIt.Close()
			j.curLeft = nil
			continue
		}
		right, err := tuple.Deserialize(data, j.rightSchema)
		if err != nil {
			return nil, err
		}
		if !tuple.Compare(j.curLeft.Values[j.leftColIdx], right.Values[j.rightColIdx], tuple.OpEq) {
			continue
		}
		return j.merge(right), nil
	}
}

func (j *NestedLoopJoin) merge(right *tuple.Tuple) *tuple.Tuple {
	values := make([]tuple.Value, 0, len(j.curLeft.Values)+len(right.Values))
	for _, v := range j.curLeft.Values {
		values = append(values, v.Clone())
	}
	for _, v := range right.Values {
		values = append(values, v.Clone())
	}
	return tuple.New(j.schema, values)
}

func (j *NestedLoopJoin) Close() {
	if j.rightIt != nil {
		j.rightIt.Close()
	}
	j.left.Close()
}
