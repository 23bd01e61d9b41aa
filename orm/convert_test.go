package orm_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosqliteorm/gosqliteorm/orm"
	"github.com/gosqliteorm/gosqliteorm/sqlite3"
)

// asValue mimics what component C hands component B after a native column
// read: the wire form Bind produced, re-tagged with its storage affinity.
func asValue(t *testing.T, native interface{}) orm.Value {
	t.Helper()
	switch v := native.(type) {
	case nil:
		return orm.Value{Affinity: orm.AffNull}
	case int64:
		return orm.Value{Affinity: orm.AffInteger, Int: v}
	case float64:
		return orm.Value{Affinity: orm.AffReal, Real: v}
	case string:
		return orm.Value{Affinity: orm.AffText, Text: v}
	case []byte:
		return orm.Value{Affinity: orm.AffBlob, Blob: v}
	case sqlite3.ZeroBlob:
		return orm.Value{Affinity: orm.AffBlob}
	default:
		t.Fatalf("asValue: unexpected native type %T", native)
		return orm.Value{}
	}
}

func bindExtract(t *testing.T, val interface{}, targetPtr interface{}, opts orm.ConnOptions) interface{} {
	t.Helper()
	native, err := orm.Bind(orm.BindContext{Value: val}, opts)
	require.NoError(t, err)

	target := reflect.TypeOf(targetPtr).Elem()
	rv, err := orm.Extract(asValue(t, native), target, opts)
	require.NoError(t, err)
	return rv.Interface()
}

func TestBindExtractRoundTripIntegers(t *testing.T) {
	opts := orm.DefaultOptions()
	assert.Equal(t, int32(-7), bindExtract(t, int32(-7), new(int32), opts))
	assert.Equal(t, uint64(1<<64-1), bindExtract(t, uint64(1<<64-1), new(uint64), opts))
	assert.Equal(t, true, bindExtract(t, true, new(bool), opts))
}

func TestBindExtractRoundTripGuid(t *testing.T) {
	opts := orm.DefaultOptions()
	g := uuid.New()

	got := bindExtract(t, g, new(orm.Guid), opts)
	assert.Equal(t, g, got)

	opts.GuidAsBlob = true
	got = bindExtract(t, g, new(orm.Guid), opts)
	assert.Equal(t, g, got)
}

func TestBindExtractRoundTripDecimal(t *testing.T) {
	opts := orm.DefaultOptions()
	d := decimal.RequireFromString("1234.5600")

	got := bindExtract(t, d, new(orm.Money), opts).(decimal.Decimal)
	assert.True(t, d.Equal(got), "expected %s; got %s", d, got)

	opts.DecimalAsBlob = true
	got = bindExtract(t, d, new(orm.Money), opts).(decimal.Decimal)
	assert.True(t, d.Equal(got), "expected %s; got %s", d, got)
}

func TestBindExtractRoundTripDateTime(t *testing.T) {
	tm := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	for _, format := range []orm.DateTimeFormat{
		orm.Iso8601SpaceMs, orm.UnixSeconds, orm.UnixMillis, orm.Ticks, orm.JulianDay, orm.OleAutomation,
	} {
		opts := orm.ConnOptions{DateTimeFormat: format}
		got := bindExtract(t, tm, new(time.Time), opts).(time.Time)
		assert.WithinDuration(t, tm, got, time.Second, "format %v round trip", format)
	}
}

func TestExtractNullProducesZeroValue(t *testing.T) {
	zero, err := orm.Extract(orm.Value{Affinity: orm.AffNull}, reflect.TypeOf(""), orm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "", zero.Interface())

	zero, err = orm.Extract(orm.Value{Affinity: orm.AffNull}, reflect.TypeOf(0), orm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Interface())
}

func TestAffinityName(t *testing.T) {
	assert.Equal(t, "NULL", orm.AffNull.String())
	assert.Equal(t, "INTEGER", orm.AffInteger.String())
	assert.Equal(t, "REAL", orm.AffReal.String())
	assert.Equal(t, "TEXT", orm.AffText.String())
	assert.Equal(t, "BLOB", orm.AffBlob.String())
}
