// Package planner maps parsed statements onto executor operator trees
// and catalog mutations, per spec.md §4.8.
package planner

import (
	"errors"
	"fmt"

	"minidb/internal/catalog"
	"minidb/internal/exec"
	"minidb/internal/heap"
	"minidb/internal/sqlast"
	"minidb/internal/tuple"
)

// Named error kinds from spec.md §7, raised by table/column resolution.
var (
	ErrTableNotFound       = errors.New("planner: table not found")
	ErrColumnNotFound      = errors.New("planner: column not found")
	ErrColumnCountMismatch = errors.New("planner: value count does not match column count")
)

// Planner resolves statements against a borrowed catalog.
type Planner struct {
	catalog *catalog.Catalog
}

// New returns a planner over cat.
func New(cat *catalog.Catalog) *Planner {
	return &Planner{catalog: cat}
}

// PlanSelect builds an operator tree for sel following spec.md §4.8's
// five-step recipe: resolve table, choose SeqScan/IndexScan, optionally
// join, optionally filter, optionally project.
func (p *Planner) PlanSelect(sel sqlast.Select) (exec.Operator, error) {
	table, ok := p.catalog.Table(sel.Table)
	if !ok {
		return nil, fmt.Errorf("planner: select from %q: %w", sel.Table, ErrTableNotFound)
	}

	var op exec.Operator
	usedIndex := false
	if simple, ok := asIndexableSimple(sel.Where, table); ok {
		tree, _ := table.Index(simple.Column)
		op = exec.NewIndexScan(tree, table.HeapFile(), table.Schema(), simple)
		usedIndex = true
	} else {
		op = exec.NewSeqScan(table.HeapFile(), table.Schema())
	}

	if sel.Join != nil {
		rightTable, ok := p.catalog.Table(sel.Join.Table)
		if !ok {
			return nil, fmt.Errorf("planner: join with %q: %w", sel.Join.Table, ErrTableNotFound)
		}
		leftIdx, ok := op.Schema().IndexOf(sel.Join.LeftColumn)
		if !ok {
			return nil, fmt.Errorf("planner: join column %q: %w", sel.Join.LeftColumn, ErrColumnNotFound)
		}
		rightIdx, ok := rightTable.Schema().IndexOf(sel.Join.RightColumn)
		if !ok {
			return nil, fmt.Errorf("planner: join column %q: %w", sel.Join.RightColumn, ErrColumnNotFound)
		}
		mergedSchema, err := concatSchemas(op.Schema(), rightTable.Schema())
		if err != nil {
			return nil, fmt.Errorf("planner: join %q: %w", sel.Join.Table, err)
		}
		op = exec.NewNestedLoopJoin(op, rightTable.HeapFile(), rightTable.Schema(), leftIdx, rightIdx, mergedSchema)
	}

	if !usedIndex && sel.Where != nil {
		op = exec.NewFilter(op, sel.Where)
	}

	if sel.Columns != nil {
		indices := make([]int, len(sel.Columns))
		cols := make([]tuple.Column, len(sel.Columns))
		schema := op.Schema()
		for i, name := range sel.Columns {
			idx, ok := schema.IndexOf(name)
			if !ok {
				return nil, fmt.Errorf("planner: select column %q: %w", name, ErrColumnNotFound)
			}
			indices[i] = idx
			cols[i] = schema.Columns[idx]
		}
		projSchema, err := tuple.NewSchema(cols)
		if err != nil {
			return nil, fmt.Errorf("planner: select list: %w", err)
		}
		op = exec.NewProject(op, indices, projSchema)
	}

	return op, nil
}

// asIndexableSimple reports whether where is, itself, a Simple condition
// referencing one of table's indexed columns with an operator other than
// `!=` — the only shape spec.md §4.8 allows an IndexScan for.
func asIndexableSimple(where sqlast.Condition, table *catalog.Table) (sqlast.Simple, bool) {
	if where == nil {
		return sqlast.Simple{}, false
	}
	simple, ok := where.(sqlast.Simple)
	if !ok || simple.Op == sqlast.OpNe {
		return sqlast.Simple{}, false
	}
	if _, ok := table.Index(simple.Column); !ok {
		return sqlast.Simple{}, false
	}
	return simple, true
}

func concatSchemas(left, right *tuple.Schema) (*tuple.Schema, error) {
	cols := make([]tuple.Column, 0, left.Len()+right.Len())
	cols = append(cols, left.Columns...)
	cols = append(cols, right.Columns...)
	return tuple.NewSchema(cols)
}

// ExecuteInsert resolves ins.Table and inserts one row built from
// ins.Values, failing ErrColumnCountMismatch if the value count does not
// match the schema.
func (p *Planner) ExecuteInsert(ins sqlast.Insert) (heap.RID, error) {
	table, ok := p.catalog.Table(ins.Table)
	if !ok {
		return heap.RID{}, fmt.Errorf("planner: insert into %q: %w", ins.Table, ErrTableNotFound)
	}
	if len(ins.Values) != table.Schema().Len() {
		return heap.RID{}, fmt.Errorf("planner: insert into %q: %w", ins.Table, ErrColumnCountMismatch)
	}
	return table.Insert(tuple.New(table.Schema(), ins.Values))
}

// ExecuteCreateTable registers ct's schema with the catalog.
func (p *Planner) ExecuteCreateTable(ct sqlast.CreateTable) error {
	schema, err := tuple.NewSchema(ct.Columns)
	if err != nil {
		return fmt.Errorf("planner: create table %q: %w", ct.Name, err)
	}
	_, err = p.catalog.CreateTable(ct.Name, schema)
	if err != nil {
		return fmt.Errorf("planner: create table %q: %w", ct.Name, err)
	}
	return nil
}

// ExecuteCreateIndex resolves ci.Table and builds an index over ci.Column.
// Building is a no-op if the column is not an integer column.
func (p *Planner) ExecuteCreateIndex(ci sqlast.CreateIndex) error {
	table, ok := p.catalog.Table(ci.Table)
	if !ok {
		return fmt.Errorf("planner: create index on %q: %w", ci.Table, ErrTableNotFound)
	}
	if err := table.CreateIndex(ci.Column); err != nil {
		return fmt.Errorf("planner: create index %q: %w", ci.IndexName, err)
	}
	return nil
}
