//
// Written by Maxim Khitrov (February 2013)
//

// +build windows go1.1

package sqlite3

/*
#cgo CFLAGS: -DNDEBUG
#cgo linux LDFLAGS: -ldl

#include "sqlite3.h"
*/
import "C"

// errstr uses the native implementation of sqlite3_errstr.
func errstr(rc C.int) string {
	return C.GoString(C.sqlite3_errstr(rc))
}
