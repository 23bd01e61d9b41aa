//
// Written by Maxim Khitrov (February 2013)
//

package sqlite3_test

import (
	"io"
	"reflect"
	"runtime"
	"testing"

	. "github.com/gosqliteorm/gosqliteorm/sqlite3"
)

// minVersion is the minimum required SQLite version. The package will not build
// with anything less, so it's only used to check that VersionNum is working.
const minVersion = 3007014

// skip causes all remaining tests to be skipped when set to true.
var skip = false

// thisFile is used by close to detect when it is called as a deferred function.
var thisFile string

// Test control functions.
func checkSkip(t *testing.T) {
	if skip {
		t.Fatalf("test skipped")
	}
}
func skipIfFailed(t *testing.T) {
	skip = t.Failed()
}

// Object control functions.
func open(t *testing.T, name string) *Conn {
	c, err := Open(name)
	if err != nil || c == nil {
		t.Fatalf("Open(%q) unexpected error: %v", name, err)
	}
	return c
}
func close(t *testing.T, c io.Closer) {
	_, file, line, _ := runtime.Caller(1)
	if file != thisFile {
		line = 0 // Called as a deferred function
	}
	if err := c.Close(); err != nil {
		t.Fatalf("(%T).Close() [line %d] unexpected error: %v", c, line, err)
	}
}

func TestInit(t *testing.T) {
	defer skipIfFailed(t)

	// Library information
	if SingleThread() {
		t.Log("!!!WARNING!!! SQLite was built with -DSQLITE_THREADSAFE=0")
	}
	if v := VersionNum(); v < minVersion {
		t.Fatalf("VersionNum() expected >= %d; got %d", minVersion, v)
	}

	// Open/Close
	_, thisFile, _, _ = runtime.Caller(0)
	close(t, open(t, ":memory:"))

	// Check of assumptions for Stmt.Params()
	unnamedVars := []string{}
	if unnamedVars == nil {
		t.Fatalf("unnamedVars == nil")
	}
}

func TestBasic(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	c := open(t, ":memory:")
	defer close(t, c)

	// Connection information
	if !c.AutoCommit() {
		t.Fatalf("c.AutoCommit() expected true")
	}
	if path := c.Path("main"); path != "" {
		t.Fatalf(`c.Path("main") expected ""; got %q`, path)
	}

	// Setup
	sql := `CREATE TABLE x(a, b, c)`
	if err := c.Exec(sql); err != nil {
		t.Fatalf("c.Exec(%q) unexpected error: %v", sql, err)
	}
	sql = `INSERT INTO x VALUES(NULL, 42, ?)`
	if err := c.Exec(sql, "hello, world"); err != nil {
		t.Fatalf("c.Exec(%q) unexpected error: %v", sql, err)
	}
	if rowid := c.LastInsertId(); rowid != 1 {
		t.Fatalf("c.LastInsertId() expected 1; got %v", rowid)
	}

	// Query
	sql = `SELECT * FROM x ORDER BY rowid`
	if c.Exec(sql, 42) == nil {
		t.Fatalf("c.Exec(%q, 42) expected an error", sql)
	}
	s, err := c.Query(sql)
	if err != nil || s == nil {
		t.Fatalf("c.Query(%q) unexpected error: %v", sql, err)
	}
	defer close(t, s)

	// Statement information
	if s.Conn() != c {
		t.Fatalf("s.Conn() expected %v; got %v", c, s.Conn())
	}
	if !s.Valid() {
		t.Fatalf("s.Valid() expected true")
	}
	if !s.Busy() {
		t.Fatalf("s.Busy() expected true")
	}
	if !s.ReadOnly() {
		t.Fatalf("s.ReadOnly() expected true")
	}
	if s.String() != sql {
		t.Fatalf("s.String() expected %q; got %q", sql, s.String())
	}
	if s.NumParams() != 0 {
		t.Fatalf("s.NumParams() expected 0; got %d", s.NumParams())
	}
	if s.NumColumns() != 3 {
		t.Fatalf("s.NumColumns() expected 3; got %d", s.NumColumns())
	}
	if s.Params() != nil {
		t.Fatalf("s.Params() expected <nil>; got %v", s.Params())
	}

	// Column metadata
	cols := []string{"a", "b", "c"}
	if !reflect.DeepEqual(cols, s.Columns()) {
		t.Fatalf("s.Columns() expected %v; got %v", cols, s.Columns())
	}
	decls := []string{"", "", ""}
	if !reflect.DeepEqual(decls, s.DeclTypes()) {
		t.Fatalf("s.DeclTypes() expected %v; got %v", decls, s.DeclTypes())
	}
	dtypes := []byte{NULL, INTEGER, TEXT}
	if !reflect.DeepEqual(dtypes, s.DataTypes()) {
		t.Fatalf("s.DataTypes() expected %v; got %v", dtypes, s.DataTypes())
	}

	// Scanning into variables
	var _a interface{}
	var _b int
	var _c string
	if err := s.Scan(&_a, &_b, &_c); err != nil {
		t.Fatalf("s.Scan() unexpected error: %v", err)
	}
	if _a != nil {
		t.Fatalf("s.Scan(&_a, _, _) expected <nil>; got %v", _a)
	}
	if _b != 42 {
		t.Fatalf("s.Scan(_, &_b, _) expected 42; got %d", _b)
	}
	if _c != "hello, world" {
		t.Fatalf(`s.Scan(_, _, &_c) expected "hello, world"; got %q`, _c)
	}

	// Scanning into RowMap
	have := make(RowMap)
	want := RowMap{"a": nil, "b": int64(42), "c": "hello, world"}
	if err := s.Scan(have); err != nil {
		t.Fatalf("s.Scan(have) unexpected error: %v", err)
	}
	if !reflect.DeepEqual(want, have) {
		t.Fatalf("s.Scan(have) expected %v; got %v", want, have)
	}

	// Mixed scanning
	_a = "bad"
	have = make(RowMap)
	delete(want, "a")
	if err := s.Scan(&_a, have); err != nil {
		t.Fatalf("s.Scan(&_a, have) unexpected error: %v", err)
	}
	if _a != nil {
		t.Fatalf("s.Scan(&_a, _) expected <nil>; got %v", _a)
	}
	if !reflect.DeepEqual(want, have) {
		t.Fatalf("s.Scan(_, have) expected %v; got %v", want, have)
	}

	// End of rows
	if err := s.Next(); err != io.EOF {
		t.Fatalf("s.Next() expected EOF; got %v", err)
	}
	if s.Busy() {
		t.Fatalf("s.Busy() expected false")
	}
	if s.DataTypes() != nil {
		t.Fatalf("s.DataTypes() expected <nil>; got %v", s.DataTypes())
	}

	// Close
	close(t, s)
	if s.Conn() != c {
		t.Fatalf("s.Conn() expected %v; got %v", c, s.Conn())
	}
	if s.Valid() {
		t.Fatalf("s.Valid() expected false")
	}
}

func TestUnicode(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	c := open(t, ":memory:")
	defer close(t, c)

	if err := c.Exec(`CREATE TABLE x(a)`); err != nil {
		t.Fatalf("c.Exec(create) unexpected error: %v", err)
	}
	// U+1F600 (outside the BMP, encodes as a UTF-16 surrogate pair) plus
	// combining characters, to exercise the _16 bind/column round trip.
	want := "café \U0001F600 क्ष"
	if err := c.Exec(`INSERT INTO x VALUES(?)`, want); err != nil {
		t.Fatalf("c.Exec(insert) unexpected error: %v", err)
	}

	s, err := c.Query(`SELECT a FROM x`)
	if err != nil {
		t.Fatalf("c.Query() unexpected error: %v", err)
	}
	defer close(t, s)

	cols := s.Columns()
	if len(cols) != 1 || cols[0] != "a" {
		t.Fatalf("s.Columns() expected [a]; got %v", cols)
	}

	var have string
	if err := s.Scan(&have); err != nil {
		t.Fatalf("s.Scan() unexpected error: %v", err)
	}
	if have != want {
		t.Fatalf("s.Scan() expected %q; got %q", want, have)
	}
}

func TestParams(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	c := open(t, ":memory:")
	defer close(t, c)

	// Setup
	sql := `CREATE TABLE x(a, b, c)`
	if err := c.Exec(sql); err != nil {
		t.Fatalf("c.Exec(%q) unexpected error: %v", sql, err)
	}

	// Unnamed parameters
	sql = `INSERT INTO x VALUES(?, ?, ?)`
	s, err := c.Prepare(sql)
	if err != nil || s == nil {
		t.Fatalf("c.Prepare(%q) unexpected error: %v", sql, err)
	}
	defer close(t, s)

	// Parameter information
	if s.NumParams() != 3 {
		t.Fatalf("s.NumParams() expected 3; got %d", s.NumParams())
	}
	if s.Params() != nil {
		t.Fatalf("s.Params() expected <nil>; got %v", s.Params())
	}

	// Bad arguments
	if s.Exec() == nil {
		t.Fatalf("s.Exec() expected an error")
	}
	if s.Exec(1, 2, 3, 4) == nil {
		t.Fatalf("s.Exec(1, 2, 3, 4) expected an error")
	}
	if s.Exec(NamedArgs{}) == nil {
		t.Fatalf("s.Exec(NamedArgs{}) expected an error")
	}

	// Multiple inserts
	if err := s.Exec(1, 2, 3); err != nil {
		t.Fatalf("s.Exec(1, 2, 3) unexpected error: %v", err)
	}
	if err := s.Exec(1.1, 2.2, 3.3); err != nil {
		t.Fatalf("s.Exec(1.1, 2.2, 3.3) unexpected error: %v", err)
	}

	// Named parameters
	sql = `INSERT INTO x VALUES(:a, @B, $c)`
	s, err = c.Prepare(sql)
	if err != nil || s == nil {
		t.Fatalf("c.Prepare(%q) unexpected error: %v", sql, err)
	}
	defer close(t, s)

	// Parameter information
	if s.NumParams() != 3 {
		t.Fatalf("s.NumParams() expected 3; got %d", s.NumParams())
	}
	params := []string{":a", "@B", "$c"}
	if !reflect.DeepEqual(params, s.Params()) {
		t.Fatalf("s.Params() expected %v; got %v", params, s.Params())
	}

	// Multiple inserts
	if err := s.Exec("a", "b", "c"); err != nil {
		t.Fatalf(`s.Exec("a", "b", "c") unexpected error: %v`, err)
	}
	args := NamedArgs{
		":a": []byte("X"),
		"@B": []byte("Y"),
		"$C": []byte("*"),
	}
	if err := s.Query(args); err != io.EOF {
		t.Fatalf("s.Query(args) expected EOF; got %v", err)
	}

	// Select all rows
	sql = `SELECT rowid, * FROM x ORDER BY rowid`
	if s, err = c.Query(sql); err != nil {
		t.Fatalf("c.Query() unexpected error: %v", err)
	}
	defer close(t, s)

	// Verify
	table := []RowMap{
		{"rowid": int64(1), "a": int64(1), "b": int64(2), "c": int64(3)},
		{"rowid": int64(2), "a": 1.1, "b": 2.2, "c": 3.3},
		{"rowid": int64(3), "a": "a", "b": "b", "c": "c"},
		{"rowid": int64(4), "a": []byte("X"), "b": []byte("Y"), "c": nil},
	}
	have := make(RowMap)
	for i, want := range table {
		if err := s.Scan(have); err != nil {
			t.Fatalf("s.Scan(have) unexpected error: %v", err)
		}
		if !reflect.DeepEqual(want, have) {
			t.Fatalf("s.Scan(have) expected %v; got %v", want, have)
		}
		if i < len(table)-1 {
			if err := s.Next(); err != nil {
				t.Fatalf("s.Next(%d) unexpected error: %v", i, err)
			}
		}
	}
	if err := s.Next(); err != io.EOF {
		t.Fatalf("s.Next() expected EOF; got %v", err)
	}
}

func TestTx(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	c := open(t, ":memory:")
	defer close(t, c)

	c.Exec(`CREATE TABLE x(a)`)

	// Begin
	if err := c.Begin(); err != nil {
		t.Fatalf("c.Begin() unexpected error: %v", err)
	}
	c.Exec(`INSERT INTO x VALUES(?)`, 1)
	c.Exec(`INSERT INTO x VALUES(?)`, 2)

	// Commit
	if err := c.Commit(); err != nil {
		t.Fatalf("c.Commit() unexpected error: %v", err)
	}

	// Begin
	if err := c.Begin(); err != nil {
		t.Fatalf("c.Begin() unexpected error: %v", err)
	}
	c.Exec(`INSERT INTO x VALUES(?)`, 3)
	c.Exec(`INSERT INTO x VALUES(?)`, 4)

	// Rollback
	if err := c.Rollback(); err != nil {
		t.Fatalf("c.Rollback() unexpected error: %v", err)
	}

	// Verify
	s, _ := c.Query("SELECT * FROM x ORDER BY rowid")
	defer close(t, s)

	var i int
	if s.Scan(&i); i != 1 {
		t.Fatalf("Row 1 expected 1; got %d", i)
	}
	s.Next()
	if s.Scan(&i); i != 2 {
		t.Fatalf("Row 2 expected 2; got %d", i)
	}
	if err := s.Next(); err != io.EOF {
		t.Fatalf("s.Next() expected EOF; got %v", err)
	}
}

func TestWithTransactionNesting(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	c := open(t, ":memory:")
	defer close(t, c)

	c.Exec(`CREATE TABLE x(a)`)

	err := c.WithTransaction(func() error {
		if err := c.Exec(`INSERT INTO x VALUES(1)`); err != nil {
			return err
		}
		// Nested call must use a SAVEPOINT, not a second BEGIN.
		inner := c.WithTransaction(func() error {
			return c.Exec(`INSERT INTO x VALUES(2)`)
		})
		if inner != nil {
			t.Fatalf("nested WithTransaction unexpected error: %v", inner)
		}
		// A failing nested block rolls back only its own savepoint.
		failErr := errTest{}
		inner = c.WithTransaction(func() error {
			c.Exec(`INSERT INTO x VALUES(3)`)
			return failErr
		})
		if inner != failErr {
			t.Fatalf("nested WithTransaction expected failErr; got %v", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTransaction unexpected error: %v", err)
	}

	s, _ := c.Query(`SELECT a FROM x ORDER BY a`)
	defer close(t, s)
	var got []int
	for {
		var a int
		if err := s.Scan(&a); err != nil {
			t.Fatalf("s.Scan() unexpected error: %v", err)
		}
		got = append(got, a)
		if err := s.Next(); err != nil {
			break
		}
	}
	want := []int{1, 2}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("rows expected %v; got %v", want, got)
	}
}

type errTest struct{}

func (errTest) Error() string { return "test failure" }

func TestOpenStmtCount(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	before := OpenStmtCount()

	c := open(t, ":memory:")
	s, err := c.Prepare(`SELECT 1`)
	if err != nil {
		t.Fatalf("c.Prepare() unexpected error: %v", err)
	}
	if OpenStmtCount() != before+1 {
		t.Fatalf("OpenStmtCount() expected %d; got %d", before+1, OpenStmtCount())
	}
	close(t, s)
	if OpenStmtCount() != before {
		t.Fatalf("OpenStmtCount() expected %d; got %d", before, OpenStmtCount())
	}
	close(t, c)
}

func TestPrepared(t *testing.T) {
	checkSkip(t)
	defer skipIfFailed(t)

	c := open(t, ":memory:")
	defer close(t, c)

	c.Exec(`CREATE TABLE x(a)`)

	before := OpenStmtCount()
	s1, err := c.Prepared(`INSERT INTO x VALUES(?)`)
	if err != nil {
		t.Fatalf("c.Prepared() unexpected error: %v", err)
	}
	if err := s1.Exec(1); err != nil {
		t.Fatalf("s1.Exec() unexpected error: %v", err)
	}

	s2, err := c.Prepared(`INSERT INTO x VALUES(?)`)
	if err != nil {
		t.Fatalf("c.Prepared() unexpected error: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("c.Prepared() expected the same cached *Stmt on repeat use")
	}
	if err := s2.Exec(2); err != nil {
		t.Fatalf("s2.Exec() unexpected error: %v", err)
	}
	if OpenStmtCount() != before+1 {
		t.Fatalf("OpenStmtCount() expected %d; got %d", before+1, OpenStmtCount())
	}
}
