package orm

import (
	"github.com/cockroachdb/errors"

	"github.com/gosqliteorm/gosqliteorm/sqlite3"
)

// Kind is the flat error taxonomy every failure surfaced above the native
// gateway is tagged with; callers match on Kind. The only place above
// component A that inspects a native result code is classifyNativeErr, which
// maps sqlite3.BUSY to KindBusy.
type Kind int

const (
	_ Kind = iota
	KindPrepare
	KindStep
	KindBind
	KindColumn
	KindUnknownParameter
	KindUnknownColumn
	KindBindNotSupported
	KindUntranslatable
	KindSchemaIncompatible
	KindNotFound
	KindDisposed
	KindCancelled
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindPrepare:
		return "Prepare"
	case KindStep:
		return "Step"
	case KindBind:
		return "Bind"
	case KindColumn:
		return "Column"
	case KindUnknownParameter:
		return "UnknownParameter"
	case KindUnknownColumn:
		return "UnknownColumn"
	case KindBindNotSupported:
		return "BindNotSupported"
	case KindUntranslatable:
		return "UntranslatableExpression"
	case KindSchemaIncompatible:
		return "SchemaIncompatible"
	case KindNotFound:
		return "NotFound"
	case KindDisposed:
		return "Disposed"
	case KindCancelled:
		return "Cancelled"
	case KindBusy:
		return "Busy"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with enough context (the native code and message, the
// SQL text, and a parameter or column name) to reproduce a failure without
// re-running the query.
type Error struct {
	Kind    Kind
	Code    int    // native result code, zero if not applicable
	Message string // native errmsg16, or a description for non-native kinds
	SQL     string
	Ref     string // parameter name, column name, or node/type description
	Retries int    // populated for KindBusy
}

func (e *Error) Error() string {
	switch {
	case e.SQL != "" && e.Ref != "":
		return e.Kind.String() + ": " + e.Message + " [ref=" + e.Ref + "] in " + e.SQL
	case e.SQL != "":
		return e.Kind.String() + ": " + e.Message + " in " + e.SQL
	case e.Ref != "":
		return e.Kind.String() + ": " + e.Message + " [ref=" + e.Ref + "]"
	default:
		return e.Kind.String() + ": " + e.Message
	}
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write `errors.Is(err, &orm.Error{Kind: orm.KindNotFound})`.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newErr(kind Kind, format string, a ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: errors.Newf(format, a...).Error()})
}

// wrapStepErr wraps a native sqlite3 call failure for a Step-class
// operation (Exec/Query against a generated statement), classifying it as
// KindCancelled or KindBusy when the underlying cause is Conn.Interrupt or
// a busy-timeout expiry, per §5's "the aborted call returns Interrupted,
// which the mapper surfaces as Cancelled" requirement, and falling back to
// the generic KindStep otherwise.
func wrapStepErr(cause error, format string, a ...interface{}) error {
	return wrapNativeErr(KindStep, cause, format, a...)
}

// wrapNativeErr is wrapStepErr generalized over the fallback Kind, for call
// sites (schema synchronization) whose default classification isn't
// KindStep but which can still observe Conn.Interrupt or a busy timeout.
func wrapNativeErr(fallback Kind, cause error, format string, a ...interface{}) error {
	return errors.WithStack(&Error{Kind: classifyNativeErr(cause, fallback), Message: errors.Newf(format, a...).Error()})
}

func classifyNativeErr(cause error, fallback Kind) Kind {
	if errors.Is(cause, sqlite3.ErrInterrupted) {
		return KindCancelled
	}
	var se *sqlite3.Error
	if errors.As(cause, &se) && se.Code == sqlite3.BUSY {
		return KindBusy
	}
	return fallback
}

// ErrNotFound is a convenience sentinel matching Kind: KindNotFound for use
// with errors.Is.
var ErrNotFound = &Error{Kind: KindNotFound, Message: "no row for primary key"}

// ErrDisposed is returned by operations against a finalized Statement or a
// closed Connection.
var ErrDisposed = &Error{Kind: KindDisposed, Message: "use of disposed handle"}

// ErrCancelled is returned when a statement observes SQLITE_INTERRUPT.
var ErrCancelled = &Error{Kind: KindCancelled, Message: "interrupted"}
