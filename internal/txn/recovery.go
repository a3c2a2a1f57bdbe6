package txn

import (
	"fmt"

	"minidb/internal/catalog"
	"minidb/internal/tuple"
)

// Recover replays records against cat: a first pass collects committed
// transaction ids, a second pass re-executes every insert belonging to a
// committed transaction by constructing a tuple from the recorded values
// and the target table's current schema. Aborted and in-doubt (no commit
// record) transactions contribute nothing, per spec.md §4.11.
func Recover(records []LogRecord, cat *catalog.Catalog) error {
	committed := make(map[uint64]bool)
	for _, r := range records {
		if r.Kind == RecordCommit {
			committed[r.TxnID] = true
		}
	}

	for _, r := range records {
		if r.Kind != RecordInsert || !committed[r.TxnID] {
			continue
		}
		table, ok := cat.Table(r.Table)
		if !ok {
			return fmt.Errorf("txn: recover insert into %q: %w", r.Table, ErrTableNotFound)
		}
		if _, err := table.Insert(tuple.New(table.Schema(), r.Values)); err != nil {
			return fmt.Errorf("txn: recover insert into %q: %w", r.Table, err)
		}
	}
	return nil
}
