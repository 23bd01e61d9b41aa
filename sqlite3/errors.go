//
// Written by Maxim Khitrov (February 2013)
//

package sqlite3

/*
#include "sqlite3.h"
*/
import "C"

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Result and extended result codes.
// [http://www.sqlite.org/c3ref/c_abort.html]
const (
	OK         = C.SQLITE_OK
	ERROR      = C.SQLITE_ERROR
	INTERNAL   = C.SQLITE_INTERNAL
	PERM       = C.SQLITE_PERM
	ABORT      = C.SQLITE_ABORT
	BUSY       = C.SQLITE_BUSY
	LOCKED     = C.SQLITE_LOCKED
	NOMEM      = C.SQLITE_NOMEM
	READONLY   = C.SQLITE_READONLY
	INTERRUPT  = C.SQLITE_INTERRUPT
	IOERR      = C.SQLITE_IOERR
	CORRUPT    = C.SQLITE_CORRUPT
	NOTFOUND   = C.SQLITE_NOTFOUND
	FULL       = C.SQLITE_FULL
	CANTOPEN   = C.SQLITE_CANTOPEN
	PROTOCOL   = C.SQLITE_PROTOCOL
	EMPTY      = C.SQLITE_EMPTY
	SCHEMA     = C.SQLITE_SCHEMA
	TOOBIG     = C.SQLITE_TOOBIG
	CONSTRAINT = C.SQLITE_CONSTRAINT
	MISMATCH   = C.SQLITE_MISMATCH
	MISUSE     = C.SQLITE_MISUSE
	NOLFS      = C.SQLITE_NOLFS
	AUTH       = C.SQLITE_AUTH
	FORMAT     = C.SQLITE_FORMAT
	RANGE      = C.SQLITE_RANGE
	NOTADB     = C.SQLITE_NOTADB
	ROW        = C.SQLITE_ROW
	DONE       = C.SQLITE_DONE

	ABORT_ROLLBACK = C.SQLITE_ABORT | (2 << 8)

	// Fundamental data types returned by sqlite3_column_type.
	// [http://www.sqlite.org/c3ref/c_blob.html]
	INTEGER = C.SQLITE_INTEGER
	FLOAT   = C.SQLITE_FLOAT
	TEXT    = C.SQLITE_TEXT
	BLOB    = C.SQLITE_BLOB
	NULL    = C.SQLITE_NULL
)

// Error is returned for all SQLite API result codes other than OK, ROW, and
// DONE. Code carries the original (possibly extended) result code; the other
// fields are filled in to the extent the caller had them available, so that a
// failure can be reproduced without re-running the query.
type Error struct {
	Code    int    // Raw SQLite result code
	Message string // sqlite3_errmsg16() at the time of the call, if known
	SQL     string // SQL text that produced the error, if known
	Param   string // bound parameter name or column name, if applicable
}

func (e *Error) Error() string {
	switch {
	case e.SQL != "" && e.Param != "":
		return fmt.Sprintf("sqlite3: %s (%d) [param=%s] in %q", e.Message, e.Code, e.Param, e.SQL)
	case e.SQL != "":
		return fmt.Sprintf("sqlite3: %s (%d) in %q", e.Message, e.Code, e.SQL)
	default:
		return fmt.Sprintf("sqlite3: %s (%d)", e.Message, e.Code)
	}
}

// ErrBadConn is returned by Conn methods after the connection has been
// closed.
var ErrBadConn = errors.New("sqlite3: use of closed connection")

// ErrBadStmt is returned by Stmt methods after the statement has been
// finalized.
var ErrBadStmt = errors.New("sqlite3: use of finalized statement")

// ErrInterrupted is returned by Stmt.step when sqlite3_step returns
// INTERRUPT, i.e. Conn.Interrupt was called while the statement was
// executing. Exported so callers above the gateway (orm's error
// classification) can match it with errors.Is.
var ErrInterrupted = errors.New("sqlite3: interrupted")

// libErr constructs an *Error (wrapped with a stack trace via
// github.com/cockroachdb/errors) from a raw SQLite result code, consulting
// db's errmsg16 if db is non-nil.
func libErr(rc C.int, db *C.sqlite3) error {
	e := &Error{Code: int(rc)}
	if db != nil {
		e.Message = errmsg16(db)
	}
	if e.Message == "" {
		e.Message = errstr(rc)
	}
	return errors.WithStack(e)
}

// pkgErr constructs a package-level misuse error (argument count mismatches,
// unsupported bind/scan types, and similar caller errors that never reach the
// native library).
func pkgErr(rc C.int, format string, a ...interface{}) error {
	return errors.WithStack(&Error{Code: int(rc), Message: fmt.Sprintf(format, a...)})
}

// VersionNum returns the SQLite library version number, e.g. 3007014 for
// version 3.7.14.
// [http://www.sqlite.org/c3ref/libversion.html]
func VersionNum() int {
	return int(C.sqlite3_libversion_number())
}

// SingleThread returns true if the SQLite library was compiled with
// -DSQLITE_THREADSAFE=0, making it unsafe to use from more than one goroutine
// even with separate connections.
func SingleThread() bool {
	return threadsafe == 0
}
