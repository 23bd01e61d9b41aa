package orm_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosqliteorm/gosqliteorm/orm"
	"github.com/gosqliteorm/gosqliteorm/sqlite3"
)

type account struct {
	ID      int64 `orm:"pk,autoincrement"`
	Owner   string
	Balance float64
}

func openMemConn(t *testing.T) *sqlite3.Conn {
	t.Helper()
	conn, err := sqlite3.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSynchronizeCreatesTable(t *testing.T) {
	conn := openMemConn(t)
	table := orm.Register(reflect.TypeOf(account{}))

	require.NoError(t, orm.Synchronize(conn, table))

	s, err := conn.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table.Name)
	require.NoError(t, err)
	defer s.Close()
	var name string
	require.NoError(t, s.Scan(&name))
	assert.Equal(t, table.Name, name)
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	conn := openMemConn(t)
	table := orm.Register(reflect.TypeOf(account{}))

	require.NoError(t, orm.Synchronize(conn, table))
	require.NoError(t, conn.Exec(`INSERT INTO `+table.Name+` (Owner, Balance) VALUES ('a', 1.0)`))
	require.NoError(t, orm.Synchronize(conn, table))

	s, err := conn.Query(`SELECT COUNT(*) FROM ` + table.Name)
	require.NoError(t, err)
	defer s.Close()
	var n int
	require.NoError(t, s.Scan(&n))
	assert.Equal(t, 1, n, "re-running Synchronize must not touch existing rows")
}

// TestSynchronizeAddsColumnPreservingRows reconciles the same live table
// against two descriptors for a type that has grown an extra field, as
// Synchronize sees it across a process restart after a struct changes.
func TestSynchronizeAddsColumnPreservingRows(t *testing.T) {
	conn := openMemConn(t)

	v1 := &orm.Table{
		Name: "account_evolving",
		Columns: []orm.Column{
			{Name: "ID", Affinity: orm.AffInteger, PrimaryKey: true, PKOrdinal: 1, AutoIncrement: true, FieldIndex: 0},
			{Name: "Owner", Affinity: orm.AffText, FieldIndex: 1},
			{Name: "Balance", Affinity: orm.AffReal, FieldIndex: 2},
		},
	}
	require.NoError(t, orm.Synchronize(conn, v1))
	require.NoError(t, conn.Exec(`INSERT INTO account_evolving (Owner, Balance) VALUES ('a', 5.0)`))

	v2 := &orm.Table{
		Name: "account_evolving",
		Columns: append(append([]orm.Column{}, v1.Columns...),
			orm.Column{Name: "Note", Affinity: orm.AffText, Nullable: true, FieldIndex: 3}),
	}
	require.NoError(t, orm.Synchronize(conn, v2))

	s, err := conn.Query(`SELECT Owner, Balance, Note FROM account_evolving`)
	require.NoError(t, err)
	defer s.Close()
	var owner, note string
	var balance float64
	require.NoError(t, s.Scan(&owner, &balance, &note))
	assert.Equal(t, "a", owner)
	assert.Equal(t, 5.0, balance)
	assert.Equal(t, "", note, "added column must default to NULL/zero value for pre-existing rows")
}
