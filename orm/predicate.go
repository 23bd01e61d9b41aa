package orm

import (
	"fmt"
	"strings"
)

// Expr is the tagged variant a predicate tree is built from, in place of a
// virtual-dispatch visitor: Where/TranslateWhere pattern-matches on the
// concrete type rather than calling a Visit method.
type Expr interface {
	isExpr()
}

// UnaryOp identifies a unary node's operator.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
)

// Unary applies Op to X: Not (boolean negation) or Negate (arithmetic sign
// flip).
type Unary struct {
	Op UnaryOp
	X  Expr
}

// BinaryOp identifies a binary node's operator, covering arithmetic,
// comparison, and logical operators in one enumeration (the translator
// dispatches formatting by op, not by a second type).
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd // both eager (And) and short-circuit (AndAlso) translate identically in SQL
	OpOr  // both eager (Or) and short-circuit (OrElse) translate identically in SQL
	OpXor
)

// Binary applies Op to (L, R).
type Binary struct {
	Op   BinaryOp
	L, R Expr
}

// ColumnRef references a mapped field by its Go struct field name; Where
// resolves it to the table's escaped, sanitized SQL column name.
type ColumnRef struct {
	Field string
}

// Param is a closed-over host value, emitted as a positional SQL parameter —
// never inlined as a literal, satisfying the predicate parameter safety
// property. A nil Value is emitted as the SQL keyword NULL and adds no
// parameter.
type Param struct {
	Value interface{}
}

// CallMethod identifies one of the limited set of method calls the
// translator understands.
type CallMethod int

const (
	CallStartsWith CallMethod = iota
	CallEndsWith
	CallContainsString
	CallContainsSequence // Contains over a parameter slice → SQL IN (...)
	CallEquals
	CallToLower
	CallToUpper
	CallTrim
	CallLength
	CallSubstring
)

// Call represents a method invocation: Recv.Method(Args...), e.g.
// x.Name.StartsWith("A") is Call{Method: CallStartsWith, Recv: ColumnRef{"Name"}, Args: []Expr{Param{"A"}}}.
type Call struct {
	Method CallMethod
	Recv   Expr
	Args   []Expr
}

// Cond is `ifThen ... else ...`, translated to CASE WHEN c THEN t ELSE e END.
type Cond struct {
	If, Then, Else Expr
}

func (Unary) isExpr()  {}
func (Binary) isExpr() {}
func (ColumnRef) isExpr() {}
func (Param) isExpr()  {}
func (Call) isExpr()   {}
func (Cond) isExpr()   {}

// translator accumulates the parameter slice while walking an Expr tree
// once, left to right.
type translator struct {
	table *Table
	opts  ConnOptions
	args  []interface{}
}

// TranslateWhere walks e against table's column mapping, producing a
// parenthesized, precedence-correct SQL fragment (suitable after WHERE) and
// the positional parameter slice in left-to-right appearance order. A nil e
// translates to an empty fragment and no parameters (no WHERE clause).
func TranslateWhere(table *Table, e Expr, opts ConnOptions) (sql string, args []interface{}, err error) {
	if e == nil {
		return "", nil, nil
	}
	tr := &translator{table: table, opts: opts}
	frag, err := tr.walk(e)
	if err != nil {
		return "", nil, err
	}
	return frag, tr.args, nil
}

// Where is the same operation under the name the external-interfaces list
// uses; it forwards to TranslateWhere.
func Where(table *Table, e Expr, opts ConnOptions) (string, []interface{}, error) {
	return TranslateWhere(table, e, opts)
}

func (tr *translator) walk(e Expr) (string, error) {
	switch n := e.(type) {
	case Unary:
		return tr.walkUnary(n)
	case Binary:
		return tr.walkBinary(n)
	case ColumnRef:
		return tr.walkColumn(n)
	case Param:
		return tr.walkParam(n)
	case Call:
		return tr.walkCall(n)
	case Cond:
		return tr.walkCond(n)
	default:
		return "", newErr(KindUntranslatable, "%T", e)
	}
}

func (tr *translator) walkUnary(n Unary) (string, error) {
	x, err := tr.walk(n.X)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case OpNot:
		return "(NOT " + x + ")", nil
	case OpNegate:
		return "(-" + x + ")", nil
	default:
		return "", newErr(KindUntranslatable, "unary op %d", n.Op)
	}
}

var binaryOpSQL = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "=", OpNeq: "<>", OpLt: "<", OpLte: "<=", OpGt: ">", OpGte: ">=",
	OpAnd: "AND", OpOr: "OR", OpXor: "IS NOT", // XOR on booleans: a IS NOT b
}

func (tr *translator) walkBinary(n Binary) (string, error) {
	// null comparisons emit IS [NOT] NULL rather than = / <> against a bound
	// NULL parameter.
	if isNilParam(n.R) && (n.Op == OpEq || n.Op == OpNeq) {
		l, err := tr.walk(n.L)
		if err != nil {
			return "", err
		}
		if n.Op == OpEq {
			return "(" + l + " IS NULL)", nil
		}
		return "(" + l + " IS NOT NULL)", nil
	}
	if n.Op == OpEq {
		if col, ok := n.L.(ColumnRef); ok {
			if tc, found := tr.table.ColumnByName(col.Field); found && tc.Affinity == AffText &&
				!caseSensitiveDefault() {
				return tr.walkCaseInsensitiveEq(n)
			}
		}
	}
	l, err := tr.walk(n.L)
	if err != nil {
		return "", err
	}
	r, err := tr.walk(n.R)
	if err != nil {
		return "", err
	}
	op, ok := binaryOpSQL[n.Op]
	if !ok {
		return "", newErr(KindUntranslatable, "binary op %d", n.Op)
	}
	return "(" + l + " " + op + " " + r + ")", nil
}

// caseSensitiveDefault reports whether string equality defaults to binary
// comparison; this Go port always defaults to binary (SQLite's own
// default), with COLLATE NOCASE opted into explicitly via Call{CallEquals}
// rather than inferred automatically from ConnOptions, since ConnOptions
// carries no case-sensitivity flag in §3's table.
func caseSensitiveDefault() bool { return true }

func (tr *translator) walkCaseInsensitiveEq(n Binary) (string, error) {
	l, err := tr.walk(n.L)
	if err != nil {
		return "", err
	}
	r, err := tr.walk(n.R)
	if err != nil {
		return "", err
	}
	return "(" + l + " = " + r + " COLLATE NOCASE)", nil
}

func isNilParam(e Expr) bool {
	p, ok := e.(Param)
	return ok && p.Value == nil
}

func (tr *translator) walkColumn(n ColumnRef) (string, error) {
	col, ok := tr.table.ColumnByName(n.Field)
	if !ok {
		return "", newErr(KindUnknownColumn, "%s", n.Field)
	}
	return escapeIdent(col.Name), nil
}

func (tr *translator) walkParam(n Param) (string, error) {
	if n.Value == nil {
		return "NULL", nil
	}
	v, err := Bind(BindContext{Value: n.Value}, tr.opts)
	if err != nil {
		return "", newErr(KindBindNotSupported, "%v", err)
	}
	tr.args = append(tr.args, v)
	return "?", nil
}

func (tr *translator) walkCond(n Cond) (string, error) {
	cond, err := tr.walk(n.If)
	if err != nil {
		return "", err
	}
	then, err := tr.walk(n.Then)
	if err != nil {
		return "", err
	}
	els, err := tr.walk(n.Else)
	if err != nil {
		return "", err
	}
	return "(CASE WHEN " + cond + " THEN " + then + " ELSE " + els + " END)", nil
}

func (tr *translator) walkCall(n Call) (string, error) {
	recv, err := tr.walk(n.Recv)
	if err != nil {
		return "", err
	}
	switch n.Method {
	case CallStartsWith:
		return tr.likeCall(recv, n.Args, "", "%")
	case CallEndsWith:
		return tr.likeCall(recv, n.Args, "%", "")
	case CallContainsString:
		return tr.likeCall(recv, n.Args, "%", "%")
	case CallContainsSequence:
		return tr.walkIn(recv, n.Args)
	case CallEquals:
		if len(n.Args) != 1 {
			return "", newErr(KindUntranslatable, "Equals expects 1 argument, got %d", len(n.Args))
		}
		arg, err := tr.walk(n.Args[0])
		if err != nil {
			return "", err
		}
		return "(" + recv + " = " + arg + " COLLATE NOCASE)", nil
	case CallToLower:
		return "LOWER(" + recv + ")", nil
	case CallToUpper:
		return "UPPER(" + recv + ")", nil
	case CallTrim:
		return "TRIM(" + recv + ")", nil
	case CallLength:
		return "LENGTH(" + recv + ")", nil
	case CallSubstring:
		return tr.walkSubstring(recv, n.Args)
	default:
		return "", newErr(KindUntranslatable, "call method %d", n.Method)
	}
}

// likeCall builds `recv LIKE prefix || arg || suffix`, so that the bound
// argument stays a single positional parameter concatenated at query time —
// never string-formatted into the SQL text — per the parameter safety
// property.
func (tr *translator) likeCall(recv string, args []Expr, prefix, suffix string) (string, error) {
	if len(args) != 1 {
		return "", newErr(KindUntranslatable, "expected 1 argument, got %d", len(args))
	}
	arg, err := tr.walk(args[0])
	if err != nil {
		return "", err
	}
	expr := arg
	if prefix != "" {
		expr = "'" + prefix + "' || " + expr
	}
	if suffix != "" {
		expr = expr + " || '" + suffix + "'"
	}
	return "(" + recv + " LIKE " + expr + ")", nil
}

func (tr *translator) walkIn(recv string, args []Expr) (string, error) {
	if len(args) != 1 {
		return "", newErr(KindUntranslatable, "Contains expects 1 sequence argument, got %d", len(args))
	}
	p, ok := args[0].(Param)
	if !ok {
		return "", newErr(KindUntranslatable, "Contains argument must be a closed-over sequence")
	}
	items, err := toSlice(p.Value)
	if err != nil {
		return "", newErr(KindUntranslatable, "Contains: %v", err)
	}
	if len(items) == 0 {
		return "(0)", nil // empty IN-list is always false
	}
	placeholders := make([]string, len(items))
	for i, it := range items {
		v, err := Bind(BindContext{Value: it}, tr.opts)
		if err != nil {
			return "", newErr(KindBindNotSupported, "%v", err)
		}
		tr.args = append(tr.args, v)
		placeholders[i] = "?"
	}
	return "(" + recv + " IN (" + strings.Join(placeholders, ", ") + "))", nil
}

func (tr *translator) walkSubstring(recv string, args []Expr) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", newErr(KindUntranslatable, "Substring expects 1 or 2 arguments, got %d", len(args))
	}
	start, err := tr.walk(args[0])
	if err != nil {
		return "", err
	}
	// SQLite's SUBSTR is 1-based; the host API is conventionally 0-based.
	startExpr := "(" + start + " + 1)"
	if len(args) == 1 {
		return "SUBSTR(" + recv + ", " + startExpr + ")", nil
	}
	length, err := tr.walk(args[1])
	if err != nil {
		return "", err
	}
	return "SUBSTR(" + recv + ", " + startExpr + ", " + length + ")", nil
}

func toSlice(v interface{}) ([]interface{}, error) {
	switch s := v.(type) {
	case []interface{}:
		return s, nil
	case []int:
		out := make([]interface{}, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, nil
	case []int64:
		out := make([]interface{}, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sequence type %T", v)
	}
}
