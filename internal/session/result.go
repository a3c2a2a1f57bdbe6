package session

import (
	"minidb/internal/heap"
	"minidb/internal/tuple"
)

// ResultKind tags which variant of the §7 success result a Result holds.
type ResultKind int

const (
	TableCreated ResultKind = iota
	IndexCreated
	RowInserted
	Selected
	TransactionStarted
	TransactionCommitted
	TransactionAborted
)

// Result is the success variant Session.Execute returns: a tagged union
// over the per-statement outcomes spec.md §7 names (TableCreated,
// RowInserted, Select{rows}, TransactionStarted/Committed/Aborted).
type Result struct {
	Kind ResultKind

	// Set for TableCreated/IndexCreated/RowInserted.
	TableName string

	// Set for RowInserted.
	RID heap.RID

	// Set for Selected.
	Schema *tuple.Schema
	Rows   []*tuple.Tuple

	// Set for TransactionStarted/Committed/Aborted.
	TxnID uint64
}
