package orm

import (
	"io"
	"strings"

	"github.com/gosqliteorm/gosqliteorm/sqlite3"
)

// Synchronize reconciles table against the live schema of conn: issuing a
// CREATE TABLE if the table is absent, or ALTER TABLE ADD COLUMN for any
// column present in table but missing live, by case-insensitive name.
// It never drops or retypes a live column. Running it twice against an
// already-reconciled table issues no DDL (idempotence, §8).
func Synchronize(conn *sqlite3.Conn, table *Table) error {
	table.reconcileMu.Lock()
	defer table.reconcileMu.Unlock()

	live, err := liveColumns(conn, table.Name)
	if err != nil {
		return err
	}
	if live == nil {
		if err := createTable(conn, table); err != nil {
			return err
		}
		log.Info().Str("table", table.Name).Msg("orm: created table")
		table.reconciled = true
		return nil
	}

	for _, c := range table.Columns {
		if _, ok := live[strings.ToLower(c.Name)]; ok {
			continue
		}
		if err := addColumn(conn, table.Name, c); err != nil {
			return err
		}
		log.Info().Str("table", table.Name).Str("column", c.Name).Msg("orm: added column")
	}
	table.reconciled = true
	return nil
}

// liveColumns returns the set of column names (lowercased) currently
// present for tableName, or nil if the table does not exist.
func liveColumns(conn *sqlite3.Conn, tableName string) (map[string]bool, error) {
	exists, err := tableExists(conn, tableName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	info, err := conn.Query(`PRAGMA table_info(` + escapeIdent(tableName) + `)`)
	if err != nil {
		return nil, wrapNativeErr(KindSchemaIncompatible, err, "reading table_info(%s): %v", tableName, err)
	}
	defer info.Close()

	cols := map[string]bool{}
	for {
		var cid int
		var name, declType string
		var notNull, pk int
		var dflt interface{}
		if err := info.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, wrapNativeErr(KindSchemaIncompatible, err, "scanning table_info(%s): %v", tableName, err)
		}
		cols[strings.ToLower(name)] = true
		if err := info.Next(); err != nil {
			break
		}
	}
	return cols, nil
}

func tableExists(conn *sqlite3.Conn, tableName string) (bool, error) {
	s, err := conn.Query(`SELECT 1 FROM sqlite_master WHERE type='table' AND name=?`, tableName)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, wrapNativeErr(KindSchemaIncompatible, err, "checking for table %s: %v", tableName, err)
	}
	defer s.Close()
	return true, nil
}

func createTable(conn *sqlite3.Conn, table *Table) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if table.Schema != "" {
		b.WriteString(escapeIdent(table.Schema))
		b.WriteByte('.')
	}
	b.WriteString(escapeIdent(table.Name))
	b.WriteString(" (")

	pk := table.PKColumns()
	singleIntegerAutoPK := len(pk) == 1 && pk[0].AutoIncrement && pk[0].Affinity == AffInteger

	for i, c := range table.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(columnDDL(c, singleIntegerAutoPK))
	}
	if len(pk) > 0 && !singleIntegerAutoPK {
		b.WriteString(", PRIMARY KEY (")
		for i, c := range pk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(escapeIdent(c.Name))
		}
		b.WriteString(")")
	}
	b.WriteString(")")

	if err := conn.Exec(b.String()); err != nil {
		return wrapNativeErr(KindSchemaIncompatible, err, "creating table %s: %v", table.Name, err)
	}
	return nil
}

func columnDDL(c Column, singleIntegerAutoPK bool) string {
	var b strings.Builder
	b.WriteString(escapeIdent(c.Name))
	b.WriteByte(' ')
	b.WriteString(c.Affinity.affinityName())
	if c.PrimaryKey && singleIntegerAutoPK {
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	}
	if !c.Nullable && !(c.PrimaryKey && singleIntegerAutoPK) {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	if c.Collation != "" {
		b.WriteString(" COLLATE ")
		b.WriteString(c.Collation)
	}
	return b.String()
}

func addColumn(conn *sqlite3.Conn, tableName string, c Column) error {
	sql := "ALTER TABLE " + escapeIdent(tableName) + " ADD COLUMN " + columnDDL(c, false)
	if err := conn.Exec(sql); err != nil {
		return wrapNativeErr(KindSchemaIncompatible, err, "adding column %s.%s: %v", tableName, c.Name, err)
	}
	return nil
}
