package orm_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosqliteorm/gosqliteorm/orm"
)

type product struct {
	ID    int64 `orm:"pk,autoincrement"`
	SKU   string
	Price float64
}

type stock struct {
	WarehouseID int64 `orm:"pk"`
	ItemID      int64 `orm:"pk"`
	Count       int
}

func TestMapperSaveAssignsAutoIncrementPK(t *testing.T) {
	conn := openMemConn(t)
	m, err := orm.NewMapper[product](conn, orm.DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		p := &product{SKU: "sku", Price: 1.0}
		require.NoError(t, m.Save(p))
	}
	last := &product{SKU: "sku", Price: 1.0}
	require.NoError(t, m.Save(last))
	assert.EqualValues(t, 101, last.ID)
}

func TestMapperSaveLoadDelete(t *testing.T) {
	conn := openMemConn(t)
	m, err := orm.NewMapper[product](conn, orm.DefaultOptions())
	require.NoError(t, err)

	p := &product{SKU: "widget-1", Price: 9.99}
	require.NoError(t, m.Save(p))
	require.NotZero(t, p.ID)

	loaded, err := m.Load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "widget-1", loaded.SKU)
	assert.Equal(t, 9.99, loaded.Price)

	loaded.Price = 12.50
	require.NoError(t, m.Save(loaded))

	reloaded, err := m.Load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.50, reloaded.Price)

	n, err := m.Delete(reloaded)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.Load(p.ID)
	assert.ErrorIs(t, err, orm.ErrNotFound)
}

func TestMapperLoadMissingReturnsNotFound(t *testing.T) {
	conn := openMemConn(t)
	m, err := orm.NewMapper[product](conn, orm.DefaultOptions())
	require.NoError(t, err)

	_, err = m.Load(int64(999))
	assert.ErrorIs(t, err, orm.ErrNotFound)
}

func TestMapperCompositePrimaryKey(t *testing.T) {
	conn := openMemConn(t)
	m, err := orm.NewMapper[stock](conn, orm.DefaultOptions())
	require.NoError(t, err)

	s := &stock{WarehouseID: 1, ItemID: 42, Count: 10}
	require.NoError(t, m.Save(s))

	loaded, err := m.Load(int64(1), int64(42))
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Count)

	loaded.Count = 20
	require.NoError(t, m.Save(loaded))

	reloaded, err := m.Load(int64(1), int64(42))
	require.NoError(t, err)
	assert.Equal(t, 20, reloaded.Count, "Save on an existing composite PK must upsert, not duplicate")

	n, err := m.Delete(reloaded)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMapperLoadAll(t *testing.T) {
	conn := openMemConn(t)
	m, err := orm.NewMapper[product](conn, orm.DefaultOptions())
	require.NoError(t, err)

	for _, sku := range []string{"a", "b", "c"} {
		require.NoError(t, m.Save(&product{SKU: sku, Price: 1.0}))
	}

	it, err := m.LoadAll()
	require.NoError(t, err)
	var skus []string
	for {
		p, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		skus = append(skus, p.SKU)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, skus)
}

func TestMapperQueryWithPredicate(t *testing.T) {
	conn := openMemConn(t)
	m, err := orm.NewMapper[product](conn, orm.DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, m.Save(&product{SKU: "cheap", Price: 1.0}))
	require.NoError(t, m.Save(&product{SKU: "expensive", Price: 100.0}))

	expr := orm.Binary{
		Op: orm.OpGte,
		L:  orm.ColumnRef{Field: "Price"},
		R:  orm.Param{Value: 50.0},
	}
	it, err := m.Query(expr)
	require.NoError(t, err)

	p, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "expensive", p.SKU)

	_, err = it.Next()
	assert.Equal(t, io.EOF, err)
}
