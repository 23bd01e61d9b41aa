//
// Written by Maxim Khitrov (February 2013)
//

package sqlite3

/*
#include "sqlite3.h"
*/
import "C"

import (
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

// utf16LE is the codec used to transcode Go strings into the UTF-16LE byte
// buffers that the SQLite "_16" ABI entry points expect, and back. Bound text
// values, column text, column names, and error messages cross the boundary
// through the _16 family (bind_text16, column_text16, column_name16,
// errmsg16). SQL text does not: Prepare and Exec pass it as NUL-terminated
// UTF-8 to sqlite3_prepare_v2 and sqlite3_exec, and parameter names go
// through the UTF-8 sqlite3_bind_parameter_index.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// utf16Bytes encodes s as a UTF-16LE byte buffer without a trailing NUL. The
// buffer's length is what must be passed to bind_text16 as the "n" argument:
// it is always even and counts UTF-16 bytes, not the UTF-8 bytes that len(s)
// counts.
func utf16Bytes(s string) []byte {
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// Transcoding a valid Go string should never fail; surrogate-pair
		// halves are the only inputs that could, and those cannot occur in a
		// well-formed string.
		return nil
	}
	return b
}

// utf16ToString decodes a UTF-16LE byte buffer of length n (in bytes) back
// into a Go string.
func utf16ToString(p unsafe.Pointer, n int) string {
	if p == nil || n <= 0 {
		return ""
	}
	b := C.GoBytes(p, C.int(n))
	s, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}

// utf16ZString decodes a NUL-terminated UTF-16LE buffer, such as the ones
// returned by sqlite3_column_name16 and sqlite3_errmsg16, which carry no
// explicit length and must be scanned for a zero code unit.
func utf16ZString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for {
		unit := *(*uint16)(unsafe.Pointer(uintptr(p) + uintptr(n)*2))
		if unit == 0 {
			break
		}
		n++
	}
	return utf16ToString(p, n*2)
}

// errmsg16 returns the most recent error message for db.
func errmsg16(db *C.sqlite3) string {
	return utf16ZString(unsafe.Pointer(C.sqlite3_errmsg16(db)))
}

// cStr returns a pointer to a NUL-terminated C string. s must already end
// with "\x00"; this just reinterprets the Go string's backing array instead
// of copying it.
func cStr(s string) *C.char {
	return (*C.char)(unsafe.Pointer(unsafe.StringData(s)))
}

// goStr converts a NUL-terminated C string into a Go string by copying it.
func goStr(s *C.char) string {
	return C.GoString(s)
}

// goStrN returns a Go string backed directly by SQLite's memory. The string
// is only valid until the next call that might invalidate the underlying
// buffer (e.g. another Stmt method).
func goStrN(s *C.char, n C.int) string {
	return unsafe.String((*byte)(unsafe.Pointer(s)), int(n))
}

// cBytes returns a pointer to b's backing array, or nil if b is empty.
func cBytes(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// goBytes returns a []byte backed directly by SQLite's memory. Like goStrN,
// the result is only valid until the next call that might invalidate it.
func goBytes(p unsafe.Pointer, n C.int) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), int(n))
}

// cBool converts a Go bool into the C.int SQLite expects.
func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// NamedArgs maps bound parameter names (including the leading sigil: ":foo",
// "@foo", or "$foo") to values. Passing a NamedArgs map to Conn.Exec,
// Conn.Query, or Stmt.Exec/Query selects named binding instead of positional
// binding.
type NamedArgs map[string]interface{}

// namedArgs extracts the sole NamedArgs value from args, or returns nil if
// args does not consist of exactly one NamedArgs map.
func namedArgs(args []interface{}) NamedArgs {
	if len(args) == 1 {
		if named, ok := args[0].(NamedArgs); ok {
			return named
		}
	}
	return nil
}

// RowMap is used as the final argument to Stmt.Scan to collect all remaining
// column/value pairs using dynamic typing (see Stmt.scanDynamic).
type RowMap map[string]interface{}

// RawString is a string bound or scanned without copying, referencing memory
// owned by Go (when binding) or by SQLite (when scanning). The underlying
// memory must remain valid and unmodified for as long as SQLite or the
// caller, respectively, may still access it.
type RawString string

// RawBytes is the []byte equivalent of RawString.
type RawBytes []byte

// ZeroBlob binds a zero-filled BLOB of the given length, allocated by SQLite
// without requiring the caller to materialize it in Go memory first.
type ZeroBlob int

// BusyFunc is called when SQLite cannot acquire a lock on a table. Returning
// true retries the operation; returning false lets it fail with BUSY or
// IOERR_BLOCKED.
type BusyFunc func(count int) (retry bool)

// CommitFunc is called immediately before a transaction commits. Returning
// true forces a rollback instead.
type CommitFunc func() (rollback bool)

// RollbackFunc is called when a transaction is rolled back, whether by
// explicit request or because a CommitFunc vetoed the commit.
type RollbackFunc func()

// UpdateFunc is called after a row is inserted, updated, or deleted.
// op is one of C.SQLITE_INSERT, C.SQLITE_UPDATE, or C.SQLITE_DELETE.
type UpdateFunc func(op int, db, table string, rowid int64)

// dbToConn records which native handles are live and the *Conn that owns
// each: Open adds an entry and Close removes it. The exported callback
// trampolines below do not consult it; they receive the *Conn itself as the
// void* context pointer SQLite hands back.
var dbToConn = make(map[*C.sqlite3]*Conn)

//export go_busy_handler
func go_busy_handler(data unsafe.Pointer, count C.int) C.int {
	c := (*Conn)(data)
	if c.busy != nil && c.busy(int(count)) {
		return 1
	}
	return 0
}

//export go_commit_hook
func go_commit_hook(data unsafe.Pointer) C.int {
	c := (*Conn)(data)
	if c.commit != nil && c.commit() {
		return 1
	}
	return 0
}

//export go_rollback_hook
func go_rollback_hook(data unsafe.Pointer) {
	c := (*Conn)(data)
	if c.rollback != nil {
		c.rollback()
	}
}

//export go_update_hook
func go_update_hook(data unsafe.Pointer, op C.int, db, table *C.char, rowid C.sqlite3_int64) {
	c := (*Conn)(data)
	if c.update != nil {
		c.update(int(op), C.GoString(db), C.GoString(table), int64(rowid))
	}
}
