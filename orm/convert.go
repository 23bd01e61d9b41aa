package orm

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosqliteorm/gosqliteorm/sqlite3"
	"github.com/shopspring/decimal"
)

// Affinity is one of SQLite's five storage classes. Every value that
// crosses the conversion boundary is tagged with exactly one of these; host
// type identity never leaks past component B.
type Affinity int

const (
	AffNull Affinity = iota
	AffInteger
	AffReal
	AffText
	AffBlob
)

// Value is the affinity-tagged representation a column produces after a
// native read, before a BindType's Extract converts it back into a host
// type. Only the field matching Affinity is meaningful.
type Value struct {
	Affinity Affinity
	Int      int64
	Real     float64
	Text     string
	Blob     []byte
}

func nullValue() Value           { return Value{Affinity: AffNull} }
func intValue(v int64) Value     { return Value{Affinity: AffInteger, Int: v} }
func realValue(v float64) Value  { return Value{Affinity: AffReal, Real: v} }
func textValue(v string) Value   { return Value{Affinity: AffText, Text: v} }
func blobValue(v []byte) Value   { return Value{Affinity: AffBlob, Blob: v} }

// TimeSpan mirrors the source system's duration type so that registering a
// BindType for it reads naturally; it is simply time.Duration.
type TimeSpan = time.Duration

// Guid mirrors the source system's identifier type; it is simply uuid.UUID.
type Guid = uuid.UUID

// Money mirrors the source system's arbitrary-precision decimal type; it is
// simply decimal.Decimal.
type Money = decimal.Decimal

// BindContext is the immutable record passed through the conversion
// pipeline for a single bind call. It never escapes that call.
type BindContext struct {
	Value   interface{}
	Stmt    *sqlite3.Stmt
	Index   int // 1-based parameter index, matching sqlite3's convention
	Options ConnOptions
}

// BindType is a named conversion between a set of host Go types and an
// affinity-compatible native value. Bind receives a BindContext and returns
// a value in the set sqlite3.Stmt.bind already understands: nil, int64,
// float64, string, []byte, or sqlite3.ZeroBlob. Extract reverses the
// conversion given a column Value and the target field's reflect.Type.
type BindType struct {
	name    string
	types   []reflect.Type
	bind    func(BindContext) (interface{}, error)
	extract func(Value, reflect.Type, ConnOptions) (reflect.Value, error)
}

var (
	exactRegistry = map[reflect.Type]*BindType{}
	// baseChain holds BindTypes registered against an interface or a kind
	// family, consulted in registration order after an exact-type miss —
	// "first registered base type" per the lookup rule.
	baseChain []*BindType
)

func register(bt *BindType) {
	for _, t := range bt.types {
		exactRegistry[t] = bt
	}
}

func registerBase(bt *BindType) {
	baseChain = append(baseChain, bt)
}

func init() {
	registerPassthrough()
	registerWidening()
	registerGuid()
	registerDecimal()
	registerTimeSpan()
	registerDateTime()
}

// lookupBindType implements the exact → base-chain → object-fallback rule
// from the design notes.
func lookupBindType(t reflect.Type) *BindType {
	if bt, ok := exactRegistry[t]; ok {
		return bt
	}
	for _, bt := range baseChain {
		for _, candidate := range bt.types {
			if candidate.Kind() == reflect.Interface && t.Implements(candidate) {
				return bt
			}
		}
	}
	return nil
}

// Bind converts a host value into the native representation sqlite3 can
// accept, consulting the registry by exact type, then by widening rule,
// then falling back to a culture-invariant string form of the value.
func Bind(ctx BindContext, opts ConnOptions) (interface{}, error) {
	ctx.Options = opts
	if ctx.Value == nil {
		return nil, nil
	}
	if z, ok := ctx.Value.(sqlite3.ZeroBlob); ok {
		return z, nil
	}
	v := reflect.ValueOf(ctx.Value)
	t := v.Type()
	if bt := lookupBindType(t); bt != nil {
		return bt.bind(ctx)
	}
	if bt := widen(t); bt != nil {
		return bt.bind(ctx)
	}
	return objectFallbackBind(ctx)
}

// Extract converts a column Value back into a Go value assignable to
// target, using target's BindType if one is registered, else the widening
// rule, else the value's own affinity-native representation.
func Extract(v Value, target reflect.Type, opts ConnOptions) (reflect.Value, error) {
	if bt := lookupBindType(target); bt != nil {
		return bt.extract(v, target, opts)
	}
	if bt := widen(target); bt != nil {
		return bt.extract(v, target, opts)
	}
	return extractNative(v, target)
}

// widen implements the integer, float, string, bool, and []byte promotions
// from §4.B, selected by Kind rather than exact type since Go's named
// integer/float kinds are unbounded. Every integer kind is bound as int64
// (none is narrowed to a 32-bit value); UInt64 and Uint go through a bitwise
// reinterpretation, and Float32 is widened to float64.
func widen(t reflect.Type) *BindType {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int, reflect.Int32:
		return &intBind
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &intBind
	case reflect.Int64:
		return &int64Bind
	case reflect.Uint64, reflect.Uint:
		return &uint64Bind
	case reflect.Float32, reflect.Float64:
		return &floatBind
	case reflect.String:
		return &stringBind
	case reflect.Bool:
		return &boolBind
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &bytesBind
		}
	}
	return nil
}

var (
	intBind     BindType
	int64Bind   BindType
	uint64Bind  BindType
	floatBind   BindType
	stringBind  BindType
	boolBind    BindType
	bytesBind   BindType
)

// registerPassthrough builds the BindTypes for bool and the
// integer/float/string/[]byte families that widen() selects. Strings, floats,
// and non-empty []byte pass through unchanged; integers are bound as int64,
// bool as 0/1, and an empty []byte as sqlite3.ZeroBlob(0). sqlite3.ZeroBlob
// values themselves are passed through unchanged by Bind.
func registerPassthrough() {
	intBind = BindType{
		name: "int",
		bind: func(c BindContext) (interface{}, error) {
			return toInt64(c.Value), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			n, err := nativeInt64(v)
			if err != nil {
				return reflect.Value{}, err
			}
			rv := reflect.New(t).Elem()
			rv.SetInt(n)
			return rv, nil
		},
	}
	int64Bind = BindType{
		name: "int64",
		bind: func(c BindContext) (interface{}, error) { return toInt64(c.Value), nil },
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			n, err := nativeInt64(v)
			if err != nil {
				return reflect.Value{}, err
			}
			rv := reflect.New(t).Elem()
			rv.SetInt(n)
			return rv, nil
		},
	}
	// UInt64 → i64 via bitwise reinterpretation: SQL comparisons on such
	// columns are unsigned-unsafe for values with the high bit set, per the
	// open question in the design notes; the bit pattern is preserved.
	uint64Bind = BindType{
		name: "uint64",
		bind: func(c BindContext) (interface{}, error) {
			return int64(reflect.ValueOf(c.Value).Uint()), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			n, err := nativeInt64(v)
			if err != nil {
				return reflect.Value{}, err
			}
			rv := reflect.New(t).Elem()
			rv.SetUint(uint64(n))
			return rv, nil
		},
	}
	floatBind = BindType{
		name: "float",
		bind: func(c BindContext) (interface{}, error) {
			return reflect.ValueOf(c.Value).Float(), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			f, err := nativeFloat64(v)
			if err != nil {
				return reflect.Value{}, err
			}
			rv := reflect.New(t).Elem()
			rv.SetFloat(f)
			return rv, nil
		},
	}
	stringBind = BindType{
		name: "string",
		bind: func(c BindContext) (interface{}, error) {
			return reflect.ValueOf(c.Value).String(), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			s, err := nativeString(v)
			if err != nil {
				return reflect.Value{}, err
			}
			rv := reflect.New(t).Elem()
			rv.SetString(s)
			return rv, nil
		},
	}
	boolBind = BindType{
		name: "bool",
		bind: func(c BindContext) (interface{}, error) {
			if c.Value.(bool) {
				return int64(1), nil
			}
			return int64(0), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			n, err := nativeInt64(v)
			if err != nil {
				return reflect.Value{}, err
			}
			rv := reflect.New(t).Elem()
			rv.SetBool(n != 0)
			return rv, nil
		},
	}
	bytesBind = BindType{
		name: "bytes",
		bind: func(c BindContext) (interface{}, error) {
			b := reflect.ValueOf(c.Value).Bytes()
			if len(b) == 0 {
				return sqlite3.ZeroBlob(0), nil
			}
			return []byte(b), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			b := nativeBytes(v)
			rv := reflect.New(t).Elem()
			rv.SetBytes(b)
			return rv, nil
		},
	}
}

// registerWidening is a placeholder hook kept separate from
// registerPassthrough for readability; the widen() Kind switch above
// already covers Byte/SByte/Int16/UInt16/UInt32/UInt64/Float, so there is
// nothing additional to register here beyond what Kind-dispatch handles.
func registerWidening() {}

func registerGuid() {
	bt := &BindType{
		name:  "Guid",
		types: []reflect.Type{reflect.TypeOf(uuid.UUID{})},
		bind: func(c BindContext) (interface{}, error) {
			g := c.Value.(uuid.UUID)
			if c.Options.GuidAsBlob {
				b := g[:]
				return append([]byte(nil), b...), nil
			}
			return guidString(g, c.Options.GuidStringFormat), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			var g uuid.UUID
			var err error
			switch v.Affinity {
			case AffBlob:
				g, err = uuid.FromBytes(v.Blob)
			case AffText:
				g, err = uuid.Parse(v.Text)
			case AffNull:
				// zero Guid
			default:
				err = fmt.Errorf("cannot extract Guid from affinity %v", v.Affinity)
			}
			if err != nil {
				return reflect.Value{}, newErr(KindBindNotSupported, "Guid: %v", err)
			}
			return reflect.ValueOf(g), nil
		},
	}
	register(bt)
}

func guidString(g uuid.UUID, format string) string {
	switch strings.ToUpper(format) {
	case "N":
		return strings.ReplaceAll(g.String(), "-", "")
	case "B":
		return "{" + g.String() + "}"
	case "P":
		return "(" + g.String() + ")"
	default:
		return g.String()
	}
}

func registerDecimal() {
	bt := &BindType{
		name:  "Decimal",
		types: []reflect.Type{reflect.TypeOf(decimal.Decimal{})},
		bind: func(c BindContext) (interface{}, error) {
			d := c.Value.(decimal.Decimal)
			if c.Options.DecimalAsBlob {
				return decimalWireBytes(d), nil
			}
			return d.String(), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			var d decimal.Decimal
			var err error
			switch v.Affinity {
			case AffBlob:
				d, err = decimalFromWireBytes(v.Blob)
			case AffText:
				d, err = decimal.NewFromString(v.Text)
			case AffInteger:
				d = decimal.NewFromInt(v.Int)
			case AffReal:
				d = decimal.NewFromFloat(v.Real)
			case AffNull:
			default:
				err = fmt.Errorf("cannot extract Decimal from affinity %v", v.Affinity)
			}
			if err != nil {
				return reflect.Value{}, newErr(KindBindNotSupported, "Decimal: %v", err)
			}
			return reflect.ValueOf(d), nil
		},
	}
	register(bt)
}

// decimalWireBytes produces a fixed 16-byte on-wire form: a little-endian
// int64 unscaled coefficient followed by a little-endian int64 exponent.
// Values whose coefficient overflows int64 fall back to the string form
// transparently by returning that string's bytes instead (documented lossy
// path for extreme-precision values, matching the round-trip invariant's
// "modulo documented lossy conversions" clause).
func decimalWireBytes(d decimal.Decimal) []byte {
	coeff := d.Coefficient()
	if !coeff.IsInt64() {
		return []byte(d.String())
	}
	buf := make([]byte, 16)
	putInt64LE(buf[0:8], coeff.Int64())
	putInt64LE(buf[8:16], int64(d.Exponent()))
	return buf
}

func decimalFromWireBytes(b []byte) (decimal.Decimal, error) {
	if len(b) != 16 {
		return decimal.NewFromString(string(b))
	}
	coeff := getInt64LE(b[0:8])
	exp := getInt64LE(b[8:16])
	return decimal.New(coeff, int32(exp)), nil
}

func putInt64LE(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

func getInt64LE(b []byte) int64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return int64(u)
}

func registerTimeSpan() {
	bt := &BindType{
		name:  "TimeSpan",
		types: []reflect.Type{reflect.TypeOf(time.Duration(0))},
		bind: func(c BindContext) (interface{}, error) {
			d := c.Value.(time.Duration)
			if c.Options.TimeSpanAsTicks {
				return int64(d), nil
			}
			return d.String(), nil
		},
		extract: func(v Value, t reflect.Type, _ ConnOptions) (reflect.Value, error) {
			var d time.Duration
			var err error
			switch v.Affinity {
			case AffInteger:
				d = time.Duration(v.Int)
			case AffText:
				d, err = time.ParseDuration(v.Text)
			case AffNull:
			default:
				err = fmt.Errorf("cannot extract TimeSpan from affinity %v", v.Affinity)
			}
			if err != nil {
				return reflect.Value{}, newErr(KindBindNotSupported, "TimeSpan: %v", err)
			}
			return reflect.ValueOf(d), nil
		},
	}
	register(bt)
}

func registerDateTime() {
	bt := &BindType{
		name:  "DateTime",
		types: []reflect.Type{reflect.TypeOf(time.Time{})},
		bind: func(c BindContext) (interface{}, error) {
			return formatDateTime(c.Value.(time.Time), c.Options.DateTimeFormat), nil
		},
		extract: func(v Value, t reflect.Type, opts ConnOptions) (reflect.Value, error) {
			tm, err := parseDateTime(v, opts.DateTimeFormat)
			if err != nil {
				return reflect.Value{}, newErr(KindBindNotSupported, "DateTime: %v", err)
			}
			return reflect.ValueOf(tm), nil
		},
	}
	register(bt)
}

const (
	iso8601SpaceMsLayout = "2006-01-02 15:04:05.000"
	iso8601TLayout       = "2006-01-02T15:04:05.000"
)

// formatDateTime renders t per format, returning either a string (TEXT) or
// an int64/float64 (INTEGER/REAL) depending on the selected encoding.
func formatDateTime(t time.Time, format DateTimeFormat) interface{} {
	switch format {
	case Iso8601T:
		return t.Format(iso8601TLayout)
	case Rfc1123:
		return t.Format(time.RFC1123)
	case RoundTrip:
		return t.Format(time.RFC3339Nano)
	case Ticks:
		return t.UnixNano() / 100 // .NET-style 100ns ticks since Unix epoch
	case FileTime, FileTimeUtc:
		return (t.Unix()+11644473600)*10000000 + int64(t.Nanosecond())/100
	case OleAutomation:
		return oleAutomationDate(t)
	case JulianDay:
		return julianDay(t)
	case UnixSeconds:
		return t.Unix()
	case UnixMillis:
		return t.UnixMilli()
	default: // Iso8601SpaceMs
		return t.Format(iso8601SpaceMsLayout)
	}
}

func parseDateTime(v Value, format DateTimeFormat) (time.Time, error) {
	switch format {
	case Ticks:
		n, err := nativeInt64(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, n*100), nil
	case FileTime, FileTimeUtc:
		n, err := nativeInt64(v)
		if err != nil {
			return time.Time{}, err
		}
		secs := n/10000000 - 11644473600
		nanos := (n % 10000000) * 100
		return time.Unix(secs, nanos).UTC(), nil
	case OleAutomation:
		f, err := nativeFloat64(v)
		if err != nil {
			return time.Time{}, err
		}
		return fromOleAutomationDate(f), nil
	case JulianDay:
		f, err := nativeFloat64(v)
		if err != nil {
			return time.Time{}, err
		}
		return fromJulianDay(f), nil
	case UnixSeconds:
		n, err := nativeInt64(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(n, 0), nil
	case UnixMillis:
		n, err := nativeInt64(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(n), nil
	default:
		s, err := nativeString(v)
		if err != nil {
			return time.Time{}, err
		}
		for _, layout := range []string{iso8601SpaceMsLayout, iso8601TLayout, time.RFC3339Nano, time.RFC1123} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
	}
}

const oleEpochUnix = -2209161600 // 1899-12-30 00:00:00 UTC, in Unix seconds

func oleAutomationDate(t time.Time) float64 {
	return float64(t.Unix()-oleEpochUnix) / 86400
}

func fromOleAutomationDate(days float64) time.Time {
	return time.Unix(oleEpochUnix+int64(days*86400), 0).UTC()
}

const julianUnixEpoch = 2440587.5 // Julian day number of 1970-01-01 00:00 UTC

func julianDay(t time.Time) float64 {
	return julianUnixEpoch + float64(t.Unix())/86400
}

func fromJulianDay(jd float64) time.Time {
	return time.Unix(int64((jd-julianUnixEpoch)*86400), 0).UTC()
}

// objectFallbackBind implements the "culture-invariant string" fallback for
// any host type without a registered converter: fmt.Stringer is honored if
// present, otherwise fmt's default formatting is used.
func objectFallbackBind(ctx BindContext) (interface{}, error) {
	if s, ok := ctx.Value.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return fmt.Sprintf("%v", ctx.Value), nil
}

// extractNative assigns a column Value to a new value of type target when
// neither the registry nor widen() has a BindType for target. NULL yields
// target's zero value; INTEGER is stored with SetInt/SetUint/SetBool into an
// integer or bool target without a range check; REAL, TEXT, and BLOB are
// stored with SetFloat, SetString, and SetBytes.
func extractNative(v Value, target reflect.Type) (reflect.Value, error) {
	switch v.Affinity {
	case AffNull:
		return reflect.Zero(target), nil
	case AffInteger:
		rv := reflect.New(target).Elem()
		switch target.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv.SetInt(v.Int)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv.SetUint(uint64(v.Int))
		case reflect.Bool:
			rv.SetBool(v.Int != 0)
		default:
			return reflect.Value{}, newErr(KindColumn, "cannot assign INTEGER to %s", target)
		}
		return rv, nil
	case AffReal:
		rv := reflect.New(target).Elem()
		rv.SetFloat(v.Real)
		return rv, nil
	case AffText:
		rv := reflect.New(target).Elem()
		rv.SetString(v.Text)
		return rv, nil
	case AffBlob:
		rv := reflect.New(target).Elem()
		rv.SetBytes(v.Blob)
		return rv, nil
	default:
		return reflect.Value{}, newErr(KindColumn, "unknown affinity %v", v.Affinity)
	}
}

func toInt64(v interface{}) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	default:
		return 0
	}
}

func nativeInt64(v Value) (int64, error) {
	switch v.Affinity {
	case AffInteger:
		return v.Int, nil
	case AffReal:
		return int64(v.Real), nil
	case AffText:
		n, err := strconv.ParseInt(v.Text, 10, 64)
		return n, err
	case AffNull:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %v to int64", v.Affinity)
	}
}

func nativeFloat64(v Value) (float64, error) {
	switch v.Affinity {
	case AffReal:
		return v.Real, nil
	case AffInteger:
		return float64(v.Int), nil
	case AffText:
		return strconv.ParseFloat(v.Text, 64)
	case AffNull:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %v to float64", v.Affinity)
	}
}

func nativeString(v Value) (string, error) {
	switch v.Affinity {
	case AffText:
		return v.Text, nil
	case AffInteger:
		return strconv.FormatInt(v.Int, 10), nil
	case AffReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64), nil
	case AffBlob:
		return string(v.Blob), nil
	case AffNull:
		return "", nil
	default:
		return "", fmt.Errorf("cannot convert %v to string", v.Affinity)
	}
}

func nativeBytes(v Value) []byte {
	switch v.Affinity {
	case AffBlob:
		return v.Blob
	case AffText:
		return []byte(v.Text)
	default:
		return nil
	}
}

// affinityOf returns the default storage affinity for a host field type,
// per §4.E rule 5: integer kinds → INTEGER, floating kinds → REAL,
// date/time and text kinds → TEXT, blob/byte-sequence → BLOB, else TEXT.
func affinityOf(t reflect.Type) Affinity {
	switch t {
	case reflect.TypeOf(time.Time{}):
		return AffText
	case reflect.TypeOf(decimal.Decimal{}):
		return AffText
	case reflect.TypeOf(uuid.UUID{}):
		return AffText
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Bool:
		return AffInteger
	case reflect.Float32, reflect.Float64:
		return AffReal
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return AffBlob
		}
		return AffText
	default:
		return AffText
	}
}

// affinityName renders an Affinity as the SQLite type name used in DDL.
func (a Affinity) affinityName() string {
	switch a {
	case AffInteger:
		return "INTEGER"
	case AffReal:
		return "REAL"
	case AffBlob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (a Affinity) String() string {
	switch a {
	case AffNull:
		return "NULL"
	case AffInteger:
		return "INTEGER"
	case AffReal:
		return "REAL"
	case AffText:
		return "TEXT"
	case AffBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// columnValue reads the native column value at index i (0-based) out of a
// ready Stmt row, tagging it with its storage affinity the way component C
// hands values to component G and H's result decoding.
func columnValue(s *sqlite3.Stmt, i int) (Value, error) {
	types := s.DataTypes()
	if i >= len(types) {
		return Value{}, newErr(KindColumn, "column index %d out of range", i)
	}
	var dst interface{}
	switch types[i] {
	case sqlite3.NULL:
		return nullValue(), nil
	case sqlite3.INTEGER:
		var n int64
		dst = &n
		if err := s.Scan(columnArgs(i, len(types), dst)...); err != nil {
			return Value{}, err
		}
		return intValue(n), nil
	case sqlite3.FLOAT:
		var f float64
		dst = &f
		if err := s.Scan(columnArgs(i, len(types), dst)...); err != nil {
			return Value{}, err
		}
		return realValue(f), nil
	case sqlite3.TEXT:
		var str string
		dst = &str
		if err := s.Scan(columnArgs(i, len(types), dst)...); err != nil {
			return Value{}, err
		}
		return textValue(str), nil
	case sqlite3.BLOB:
		var b []byte
		dst = &b
		if err := s.Scan(columnArgs(i, len(types), dst)...); err != nil {
			return Value{}, err
		}
		return blobValue(b), nil
	default:
		return Value{}, newErr(KindColumn, "unknown native column type for index %d", i)
	}
}

// columnArgs builds a Scan argument list that targets only column i,
// leaving the others nil so Stmt.Scan skips them.
func columnArgs(i, n int, dst interface{}) []interface{} {
	args := make([]interface{}, n)
	args[i] = dst
	return args
}
