// Package sqlast defines the AST shapes accepted from the parser, per
// spec.md §6: statements, WHERE condition trees, and literal values.
package sqlast

import "minidb/internal/tuple"

// Statement is any of the seven statement kinds below.
type Statement interface {
	isStatement()
}

// CreateTable declares a new table with the given columns.
type CreateTable struct {
	Name    string
	Columns []tuple.Column
}

func (CreateTable) isStatement() {}

// CreateIndex declares an index over one column of an existing table.
type CreateIndex struct {
	IndexName string
	Table     string
	Column    string
}

func (CreateIndex) isStatement() {}

// Insert appends one row of literal values to a table.
type Insert struct {
	Table  string
	Values []tuple.Value
}

func (Insert) isStatement() {}

// Join describes the single optional equi-join clause a Select may carry.
type Join struct {
	Table       string
	LeftColumn  string
	RightColumn string
}

// Select reads rows from Table, optionally joined and filtered.
//
// Columns is nil (meaning "*") or a list of column names.
type Select struct {
	Columns []string
	Table   string
	Join    *Join
	Where   Condition
}

func (Select) isStatement() {}

// Begin starts a transaction.
type Begin struct{}

func (Begin) isStatement() {}

// Commit commits the current transaction.
type Commit struct{}

func (Commit) isStatement() {}

// Abort aborts the current transaction.
type Abort struct{}

func (Abort) isStatement() {}

// Op is a WHERE-clause comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Condition is a WHERE-clause tree: Simple, And, Or, or Not.
type Condition interface {
	isCondition()
}

// Simple compares a named column against a literal value.
type Simple struct {
	Column string
	Op     Op
	Value  tuple.Value
}

func (Simple) isCondition() {}

// And is the conjunction of two conditions (higher precedence than Or).
type And struct{ Left, Right Condition }

func (And) isCondition() {}

// Or is the disjunction of two conditions.
type Or struct{ Left, Right Condition }

func (Or) isCondition() {}

// Not negates a condition; it binds as a unary prefix.
type Not struct{ Cond Condition }

func (Not) isCondition() {}

// TupleOp converts a WHERE-clause operator to its tuple.Compare equivalent.
func (op Op) TupleOp() tuple.Op {
	switch op {
	case OpEq:
		return tuple.OpEq
	case OpNe:
		return tuple.OpNe
	case OpLt:
		return tuple.OpLt
	case OpLe:
		return tuple.OpLe
	case OpGt:
		return tuple.OpGt
	default:
		return tuple.OpGe
	}
}
