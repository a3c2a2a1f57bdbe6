package txn

import "minidb/internal/tuple"

// RecordKind tags the variant of a LogRecord, mirroring the
// BEGIN/COMMIT/ABORT vocabulary of a physical WAL while staying purely
// logical: this WAL is in-memory and used only for idempotent replay,
// per spec.md's Non-goals.
type RecordKind int

const (
	RecordBegin RecordKind = iota
	RecordCommit
	RecordAbort
	RecordInsert
)

// LogRecord is one WAL entry. Table and Values are populated only for
// RecordInsert.
type LogRecord struct {
	Kind   RecordKind
	TxnID  uint64
	Table  string
	Values []tuple.Value
}

// WAL is an append-only ordered list of LogRecords. Appends never
// reorder; it is read back in append order.
type WAL struct {
	records []LogRecord
}

// NewWAL returns an empty WAL.
func NewWAL() *WAL {
	return &WAL{}
}

// Append adds rec to the end of the log.
func (w *WAL) Append(rec LogRecord) {
	w.records = append(w.records, rec)
}

// Records returns every record in append order.
func (w *WAL) Records() []LogRecord {
	return w.records
}
