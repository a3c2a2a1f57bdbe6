// Package session implements spec.md §4.11's Session: it holds a borrowed
// Catalog, a TransactionManager, a WAL, and at most one current
// transaction, and dispatches parsed SQL statements to the planner while
// maintaining that transaction state, the way the teacher's cmd/repl/main.go
// loop owns a *sql.DB and leaves execution to internal/engine.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"minidb/internal/catalog"
	"minidb/internal/opslog"
	"minidb/internal/planner"
	"minidb/internal/sqlast"
	"minidb/internal/sqlparse"
	"minidb/internal/tuple"
	"minidb/internal/txn"
)

// Session binds one client's transaction lifecycle to a shared catalog.
type Session struct {
	id         string
	catalog    *catalog.Catalog
	planner    *planner.Planner
	txnMgr     *txn.Manager
	lockMgr    *txn.LockManager
	wal        *txn.WAL
	currentTxn *uint64
	log        *opslog.Logger
}

// New returns a Session over cat, logging through a fresh opslog.Logger
// tagged with a new random session id.
func New(cat *catalog.Catalog, txnMgr *txn.Manager, lockMgr *txn.LockManager, wal *txn.WAL) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		catalog: cat,
		planner: planner.New(cat),
		txnMgr:  txnMgr,
		lockMgr: lockMgr,
		wal:     wal,
		log:     opslog.Default(id),
	}
}

// ID returns the session's id, the same string tagging its log lines.
func (s *Session) ID() string { return s.id }

// Catalog returns the session's borrowed Catalog, for ambient tooling
// (e.g. a REPL's DESCRIBE command) that reads schema without going through
// Execute.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Execute parses sqlText and dispatches it, per spec.md §4.11. It never
// panics or returns a bare error: failures come back as *Error, tagged
// ParseOrigin or ExecuteOrigin.
func (s *Session) Execute(sqlText string) (Result, error) {
	stmt, err := sqlparse.New(sqlText).ParseStatement()
	if err != nil {
		s.log.Warn("parse error: %v", err)
		return Result{}, &Error{Origin: ParseOrigin, Err: err}
	}

	result, err := s.dispatch(stmt)
	if err != nil {
		s.log.Warn("execute error: %v", err)
		return Result{}, &Error{Origin: ExecuteOrigin, Err: err}
	}
	return result, nil
}

func (s *Session) dispatch(stmt sqlast.Statement) (Result, error) {
	switch st := stmt.(type) {
	case sqlast.CreateTable:
		if err := s.planner.ExecuteCreateTable(st); err != nil {
			return Result{}, err
		}
		return Result{Kind: TableCreated, TableName: st.Name}, nil

	case sqlast.CreateIndex:
		if err := s.planner.ExecuteCreateIndex(st); err != nil {
			return Result{}, err
		}
		return Result{Kind: IndexCreated, TableName: st.Table}, nil

	case sqlast.Insert:
		rid, err := s.planner.ExecuteInsert(st)
		if err != nil {
			return Result{}, err
		}
		if s.currentTxn != nil {
			s.wal.Append(txn.LogRecord{Kind: txn.RecordInsert, TxnID: *s.currentTxn, Table: st.Table, Values: st.Values})
		}
		return Result{Kind: RowInserted, TableName: st.Table, RID: rid}, nil

	case sqlast.Select:
		op, err := s.planner.PlanSelect(st)
		if err != nil {
			return Result{}, err
		}
		defer op.Close()
		var rows []*tuple.Tuple
		for {
			row, err := op.Next()
			if err != nil {
				return Result{}, err
			}
			if row == nil {
				break
			}
			rows = append(rows, row)
		}
		return Result{Kind: Selected, TableName: st.Table, Schema: op.Schema(), Rows: rows}, nil

	case sqlast.Begin:
		return s.executeBegin()

	case sqlast.Commit:
		return s.executeCommit()

	case sqlast.Abort:
		return s.executeAbort()

	default:
		return Result{}, fmt.Errorf("session: unrecognized statement %T", stmt)
	}
}

func (s *Session) executeBegin() (Result, error) {
	if s.currentTxn != nil {
		return Result{}, ErrTransactionAlreadyExists
	}
	id := s.txnMgr.Begin()
	s.currentTxn = &id
	s.catalog.BindTransaction(id)
	s.wal.Append(txn.LogRecord{Kind: txn.RecordBegin, TxnID: id})
	return Result{Kind: TransactionStarted, TxnID: id}, nil
}

func (s *Session) executeCommit() (Result, error) {
	if s.currentTxn == nil {
		return Result{}, ErrNoActiveTransaction
	}
	id := *s.currentTxn
	if err := s.txnMgr.Commit(id); err != nil {
		return Result{}, err
	}
	s.wal.Append(txn.LogRecord{Kind: txn.RecordCommit, TxnID: id})
	s.endTransaction()
	return Result{Kind: TransactionCommitted, TxnID: id}, nil
}

func (s *Session) executeAbort() (Result, error) {
	if s.currentTxn == nil {
		return Result{}, ErrNoActiveTransaction
	}
	id := *s.currentTxn
	if err := s.txnMgr.Abort(id); err != nil {
		return Result{}, err
	}
	s.wal.Append(txn.LogRecord{Kind: txn.RecordAbort, TxnID: id})
	s.endTransaction()
	return Result{Kind: TransactionAborted, TxnID: id}, nil
}

func (s *Session) endTransaction() {
	id := *s.currentTxn
	s.lockMgr.ReleaseAll(id)
	s.catalog.UnbindTransaction()
	s.currentTxn = nil
}
