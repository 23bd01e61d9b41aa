package orm_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosqliteorm/gosqliteorm/orm"
)

type widget struct {
	ID       int64  `orm:"pk,autoincrement"`
	Name     string
	Quantity int
	Note     string `orm:"ignore"`
	internal string
}

type compositeKey struct {
	TenantID int64 `orm:"pk"`
	ItemID   int64 `orm:"pk"`
	Value    string
}

func TestRegisterIsIdempotent(t *testing.T) {
	typ := reflect.TypeOf(widget{})
	a := orm.Register(typ)
	b := orm.Register(typ)
	assert.Same(t, a, b, "Register must cache the reflected Table across calls")
}

func TestRegisterSkipsIgnoredAndUnexportedFields(t *testing.T) {
	table := orm.Register(reflect.TypeOf(widget{}))
	_, ok := table.ColumnByName("Note")
	assert.False(t, ok, "ignore tag must drop the column")
	_, ok = table.ColumnByName("internal")
	assert.False(t, ok, "unexported field must never become a column")
}

func TestRegisterMarksAutoIncrementPK(t *testing.T) {
	table := orm.Register(reflect.TypeOf(widget{}))
	pk := table.PKColumns()
	require.Len(t, pk, 1)
	assert.True(t, pk[0].AutoIncrement)
	assert.Equal(t, orm.AffInteger, pk[0].Affinity)
}

func TestRegisterCompositeKeyOrdinals(t *testing.T) {
	table := orm.Register(reflect.TypeOf(compositeKey{}))
	pk := table.PKColumns()
	require.Len(t, pk, 2)
	assert.Equal(t, 1, pk[0].PKOrdinal)
	assert.Equal(t, 2, pk[1].PKOrdinal)
}

func TestColumnByNameIsCaseInsensitive(t *testing.T) {
	table := orm.Register(reflect.TypeOf(widget{}))
	_, ok := table.ColumnByName("quantity")
	assert.True(t, ok)
	_, ok = table.ColumnByName("QUANTITY")
	assert.True(t, ok)
}

func TestRegisterTableNameHasNoSelfCollisionSuffix(t *testing.T) {
	table := orm.Register(reflect.TypeOf(widget{}))
	assert.Equal(t, "widget", table.Name, "a clean type name must not gain a Property suffix")
}
