package txn

import "errors"

// Named error kinds from spec.md §7 owned by this package.
var (
	ErrLockConflict         = errors.New("txn: lock conflict")
	ErrTransactionNotActive = errors.New("txn: transaction not active")
	ErrTransactionNotFound  = errors.New("txn: transaction not found")
	ErrTableNotFound        = errors.New("txn: table not found")
)
