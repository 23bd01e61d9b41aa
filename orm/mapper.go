package orm

import (
	"io"
	"reflect"
	"strings"

	"github.com/gosqliteorm/gosqliteorm/sqlite3"
)

// Mapper ties a registered Table to a *sqlite3.Conn, providing the
// Save/Load/LoadAll/Delete operations component G specifies. T must be a
// struct type; callers pass *T to every method.
type Mapper[T any] struct {
	conn  *sqlite3.Conn
	opts  ConnOptions
	table *Table
}

// NewMapper registers T's Table descriptor (if not already registered),
// synchronizes it against conn's live schema on first use, and returns a
// Mapper ready for Save/Load/LoadAll/Delete.
func NewMapper[T any](conn *sqlite3.Conn, opts ConnOptions) (*Mapper[T], error) {
	var zero T
	typ := reflect.TypeOf(zero)
	table := Register(typ)
	if err := Synchronize(conn, table); err != nil {
		return nil, err
	}
	return &Mapper[T]{conn: conn, opts: opts, table: table}, nil
}

// Save inserts obj if every PK column currently holds its zero value, else
// performs an upsert (INSERT ... ON CONFLICT(pk) DO UPDATE). After an
// insert through a single auto-increment integer PK, the generated rowid is
// written back into obj.
func (m *Mapper[T]) Save(obj *T) error {
	rv := reflect.ValueOf(obj).Elem()
	pk := m.table.PKColumns()
	insert := allDefault(rv, pk)

	if insert {
		return m.insert(rv, pk)
	}
	return m.upsert(rv, pk)
}

func allDefault(rv reflect.Value, pk []Column) bool {
	for _, c := range pk {
		if !rv.Field(c.FieldIndex).IsZero() {
			return false
		}
	}
	return true
}

func (m *Mapper[T]) insert(rv reflect.Value, pk []Column) error {
	cols := m.table.Columns
	names := make([]string, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	autoPK := singleAutoIncrementPK(pk)

	for _, c := range cols {
		if autoPK != nil && c.FieldIndex == autoPK.FieldIndex {
			continue // left for SQLite to generate
		}
		v, err := Bind(BindContext{Value: rv.Field(c.FieldIndex).Interface()}, m.opts)
		if err != nil {
			return newErr(KindBind, "column %s: %v", c.Name, err)
		}
		names = append(names, escapeIdent(c.Name))
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}

	sql := "INSERT INTO " + escapeIdent(m.table.Name) + " (" + strings.Join(names, ", ") +
		") VALUES (" + strings.Join(placeholders, ", ") + ")"
	if err := m.execCached(sql, args...); err != nil {
		return wrapStepErr(err, "inserting into %s: %v", m.table.Name, err)
	}
	if autoPK != nil {
		rv.Field(autoPK.FieldIndex).SetInt(m.conn.LastInsertId())
	}
	log.Debug().Str("table", m.table.Name).Msg("orm: inserted row")
	return nil
}

func singleAutoIncrementPK(pk []Column) *Column {
	if len(pk) == 1 && pk[0].AutoIncrement && pk[0].Affinity == AffInteger {
		return &pk[0]
	}
	return nil
}

func (m *Mapper[T]) upsert(rv reflect.Value, pk []Column) error {
	cols := m.table.Columns
	names := make([]string, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	updates := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	pkNames := make(map[int]bool, len(pk))
	for _, c := range pk {
		pkNames[c.FieldIndex] = true
	}

	for _, c := range cols {
		v, err := Bind(BindContext{Value: rv.Field(c.FieldIndex).Interface()}, m.opts)
		if err != nil {
			return newErr(KindBind, "column %s: %v", c.Name, err)
		}
		names = append(names, escapeIdent(c.Name))
		placeholders = append(placeholders, "?")
		args = append(args, v)
		if !pkNames[c.FieldIndex] {
			updates = append(updates, escapeIdent(c.Name)+" = excluded."+escapeIdent(c.Name))
		}
	}

	pkNamesEsc := make([]string, len(pk))
	for i, c := range pk {
		pkNamesEsc[i] = escapeIdent(c.Name)
	}

	sql := "INSERT INTO " + escapeIdent(m.table.Name) + " (" + strings.Join(names, ", ") +
		") VALUES (" + strings.Join(placeholders, ", ") + ") ON CONFLICT(" +
		strings.Join(pkNamesEsc, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ")
	if err := m.execCached(sql, args...); err != nil {
		return wrapStepErr(err, "upserting into %s: %v", m.table.Name, err)
	}
	log.Debug().Str("table", m.table.Name).Msg("orm: upserted row")
	return nil
}

// Load selects the row matching pkValues (in PK declaration order) and
// materializes it into a new *T, or returns ErrNotFound if no row matches.
func (m *Mapper[T]) Load(pkValues ...interface{}) (*T, error) {
	pk := m.table.PKColumns()
	if len(pk) != len(pkValues) {
		return nil, newErr(KindBind, "Load: table %s has %d PK column(s), got %d value(s)",
			m.table.Name, len(pk), len(pkValues))
	}
	where := make([]string, len(pk))
	args := make([]interface{}, len(pk))
	for i, c := range pk {
		where[i] = escapeIdent(c.Name) + " = ?"
		v, err := Bind(BindContext{Value: pkValues[i]}, m.opts)
		if err != nil {
			return nil, newErr(KindBind, "PK column %s: %v", c.Name, err)
		}
		args[i] = v
	}
	sql := "SELECT " + columnList(m.table) + " FROM " + escapeIdent(m.table.Name) +
		" WHERE " + strings.Join(where, " AND ")

	s, err := m.queryCached(sql, args...)
	if err == io.EOF {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStepErr(err, "loading from %s: %v", m.table.Name, err)
	}
	defer s.Reset()

	obj := new(T)
	if err := m.materialize(s, reflect.ValueOf(obj).Elem()); err != nil {
		return nil, err
	}
	log.Debug().Str("table", m.table.Name).Msg("orm: loaded row")
	return obj, nil
}

// RowIterator is returned by LoadAll and Query for lazy, single-pass
// iteration. Next advances to the next row, returning io.EOF when
// exhausted. The underlying statement comes from the connection's prepared
// statement cache, so Close resets it rather than finalizing it — the cache
// retains ownership and reuses it on the next call for the same SQL text.
// Natural exhaustion leaves the statement at its end; its next use from the
// cache resets it.
type RowIterator[T any] struct {
	stmt *sqlite3.Stmt
	m    *Mapper[T]
	done bool
}

// Next materializes the next row into a new *T. It returns io.EOF (and a
// nil *T) once rows are exhausted.
func (it *RowIterator[T]) Next() (*T, error) {
	if it.done {
		return nil, io.EOF
	}
	obj := new(T)
	if err := it.m.materialize(it.stmt, reflect.ValueOf(obj).Elem()); err != nil {
		return nil, err
	}
	if err := it.stmt.Next(); err != nil {
		it.done = true
	}
	return obj, nil
}

// Close resets the iterator's cached statement, abandoning any unread rows.
// Safe to call after io.EOF or more than once.
func (it *RowIterator[T]) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	it.stmt.Reset()
	return nil
}

// LoadAll returns a lazy iterator over every row of the mapped table.
func (m *Mapper[T]) LoadAll() (*RowIterator[T], error) {
	sql := "SELECT " + columnList(m.table) + " FROM " + escapeIdent(m.table.Name)
	s, err := m.queryCached(sql)
	if err == io.EOF {
		return &RowIterator[T]{m: m, done: true}, nil
	}
	if err != nil {
		return nil, wrapStepErr(err, "loading all from %s: %v", m.table.Name, err)
	}
	log.Debug().Str("table", m.table.Name).Msg("orm: loading all rows")
	return &RowIterator[T]{stmt: s, m: m}, nil
}

// Query runs a predicate-translated WHERE clause (see Where) and returns a
// lazy iterator over the matching rows.
func (m *Mapper[T]) Query(e Expr) (*RowIterator[T], error) {
	where, args, err := TranslateWhere(m.table, e, m.opts)
	if err != nil {
		return nil, err
	}
	sql := "SELECT " + columnList(m.table) + " FROM " + escapeIdent(m.table.Name)
	if where != "" {
		sql += " WHERE " + where
	}
	s, err := m.queryCached(sql, args...)
	if err == io.EOF {
		return &RowIterator[T]{m: m, done: true}, nil
	}
	if err != nil {
		return nil, wrapStepErr(err, "querying %s: %v", m.table.Name, err)
	}
	log.Debug().Str("table", m.table.Name).Str("where", where).Msg("orm: querying rows")
	return &RowIterator[T]{stmt: s, m: m}, nil
}

// Delete removes the row matching obj's PK and returns the number of rows
// affected (0 or 1 for a well-formed PK).
func (m *Mapper[T]) Delete(obj *T) (int, error) {
	rv := reflect.ValueOf(obj).Elem()
	pk := m.table.PKColumns()
	where := make([]string, len(pk))
	args := make([]interface{}, len(pk))
	for i, c := range pk {
		where[i] = escapeIdent(c.Name) + " = ?"
		v, err := Bind(BindContext{Value: rv.Field(c.FieldIndex).Interface()}, m.opts)
		if err != nil {
			return 0, newErr(KindBind, "PK column %s: %v", c.Name, err)
		}
		args[i] = v
	}
	sql := "DELETE FROM " + escapeIdent(m.table.Name) + " WHERE " + strings.Join(where, " AND ")
	if err := m.execCached(sql, args...); err != nil {
		return 0, wrapStepErr(err, "deleting from %s: %v", m.table.Name, err)
	}
	n := m.conn.RowsAffected()
	log.Debug().Str("table", m.table.Name).Int("rows", n).Msg("orm: deleted rows")
	return n, nil
}

// execCached runs sql (with positional args) through the connection's
// prepared statement cache instead of the one-shot Conn.Exec path, so the
// handful of statement shapes Save/Delete issue repeatedly are parsed once.
func (m *Mapper[T]) execCached(sql string, args ...interface{}) error {
	s, err := m.conn.Prepared(sql)
	if err != nil {
		return err
	}
	return s.Exec(args...)
}

// queryCached is execCached's counterpart for Load/LoadAll/Query, returning
// the cached statement positioned on its first row (or io.EOF if the query
// matched nothing, matching Conn.Query's contract).
func (m *Mapper[T]) queryCached(sql string, args ...interface{}) (*sqlite3.Stmt, error) {
	s, err := m.conn.Prepared(sql)
	if err != nil {
		return nil, err
	}
	if err := s.Query(args...); err != nil {
		return nil, err
	}
	return s, nil
}

func columnList(t *Table) string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = escapeIdent(c.Name)
	}
	return strings.Join(names, ", ")
}

// materialize reads one row from s and assigns each column into dst's
// matching field by case-insensitive name, via Extract. Columns present in
// the result but absent from the table descriptor are ignored; columns the
// descriptor expects but the result lacks leave their field untouched.
func (m *Mapper[T]) materialize(s *sqlite3.Stmt, dst reflect.Value) error {
	resultCols := s.Columns()
	for i, name := range resultCols {
		col, ok := m.table.ColumnByName(name)
		if !ok {
			continue
		}
		v, err := columnValue(s, i)
		if err != nil {
			return newErr(KindColumn, "column %s: %v", name, err)
		}
		field := dst.Field(col.FieldIndex)
		rv, err := Extract(v, field.Type(), m.opts)
		if err != nil {
			return newErr(KindColumn, "column %s: %v", name, err)
		}
		field.Set(rv)
	}
	return nil
}
