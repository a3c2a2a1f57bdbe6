// Package exec implements the pull-model (Volcano-style) executor
// operators described by spec.md §4.7: every operator exposes Next,
// returning the next tuple or (nil, nil) once exhausted. Operators form
// a tree; callers dispose only the root, which releases its children.
package exec

import (
	"minidb/internal/sqlast"
	"minidb/internal/tuple"
)

// Operator is one node of the executor tree.
type Operator interface {
	// Next returns the next tuple, or (nil, nil) when exhausted.
	Next() (*tuple.Tuple, error)
	// Close releases this operator and, recursively, its children.
	Close()
	// Schema describes the tuples this operator produces.
	Schema() *tuple.Schema
}

// evaluate reports whether tup (described by schema) satisfies cond.
// A reference to an absent column is false, never an error, per spec.md
// §4.7.
func evaluate(cond sqlast.Condition, schema *tuple.Schema, tup *tuple.Tuple) bool {
	switch c := cond.(type) {
	case sqlast.Simple:
		idx, ok := schema.IndexOf(c.Column)
		if !ok {
			return false
		}
		return tuple.Compare(tup.Values[idx], c.Value, c.Op.TupleOp())
	case sqlast.And:
		return evaluate(c.Left, schema, tup) && evaluate(c.Right, schema, tup)
	case sqlast.Or:
		return evaluate(c.Left, schema, tup) || evaluate(c.Right, schema, tup)
	case sqlast.Not:
		return !evaluate(c.Cond, schema, tup)
	default:
		return false
	}
}

// Filter returns only the child tuples that satisfy cond. Tuples that do
// not pass are released immediately (they carry no resources of their
// own beyond Go-managed memory, so this is a no-op beyond letting them be
// collected, matching the release discipline of spec.md §4.7 in spirit).
type Filter struct {
	child Operator
	cond  sqlast.Condition
}

// NewFilter wraps child, keeping only tuples matching cond.
func NewFilter(child Operator, cond sqlast.Condition) *Filter {
	return &Filter{child: child, cond: cond}
}

func (f *Filter) Schema() *tuple.Schema { return f.child.Schema() }

func (f *Filter) Next() (*tuple.Tuple, error) {
	for {
		tup, err := f.child.Next()
		if err != nil || tup == nil {
			return tup, err
		}
		if evaluate(f.cond, f.child.Schema(), tup) {
			return tup, nil
		}
	}
}

func (f *Filter) Close() { f.child.Close() }

// Project constructs a new tuple from the values at indices, deep-copying
// text bytes, and releases the input.
type Project struct {
	child   Operator
	indices []int
	schema  *tuple.Schema
}

// NewProject wraps child, projecting the columns at indices into schema.
func NewProject(child Operator, indices []int, schema *tuple.Schema) *Project {
	return &Project{child: child, indices: indices, schema: schema}
}

func (p *Project) Schema() *tuple.Schema { return p.schema }

func (p *Project) Next() (*tuple.Tuple, error) {
	in, err := p.child.Next()
	if err != nil || in == nil {
		return nil, err
	}
	values := make([]tuple.Value, len(p.indices))
	for i, idx := range p.indices {
		values[i] = in.Values[idx].Clone()
	}
	return tuple.New(p.schema, values), nil
}

func (p *Project) Close() { p.child.Close() }
