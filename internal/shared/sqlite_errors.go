// Package shared holds helpers used by more than one storage path.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import "strings"

// SQLiteConflict names the kind of lock conflict a failed ledger write hit.
type SQLiteConflict string

const (
	// NoConflict means the error is not a lock conflict and must not be retried.
	NoConflict SQLiteConflict = ""
	// ConflictBusy is SQLITE_BUSY: another connection holds the write lock.
	ConflictBusy SQLiteConflict = "busy"
	// ConflictLocked is "database is locked", reported for shared-cache and
	// WAL checkpoint contention.
	ConflictLocked SQLiteConflict = "locked"
)

// ClassifySQLiteConflict reports whether err is a lock conflict the alert
// ledger should back off and retry. modernc.org/sqlite surfaces these codes
// only in the error text once they are wrapped.
func ClassifySQLiteConflict(err error) SQLiteConflict {
	if err == nil {
		return NoConflict
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLITE_BUSY"):
		return ConflictBusy
	case strings.Contains(msg, "database is locked"):
		return ConflictLocked
	default:
		return NoConflict
	}
}

// Retryable reports whether a write that failed with this conflict may be retried.
func (c SQLiteConflict) Retryable() bool { return c != NoConflict }
