// Package filter implements the record filter language used by the
// collections API: `field OP value` terms joined with && and ||, with
// parentheses for grouping.
//
// The same expression tree is built by clients (Eq, Like, And, Or) and
// parsed by the server (Parse), which compiles it to parameterised SQL over
// a whitelist of fields.
package filter

import (
	"strconv"
	"strings"
)

type Op string

const (
	OpEq       Op = "="
	OpNeq      Op = "!="
	OpLike     Op = "~"
	OpNotLike  Op = "!~"
	OpGt       Op = ">"
	OpGte      Op = ">="
	OpLt       Op = "<"
	OpLte      Op = "<="
	opAnd         = "&&"
	opOr          = "||"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
)

// Value is a literal on the right-hand side of a condition. Parsed numbers
// keep their source text in Str so large integer ids survive.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Null() Value            { return Value{Kind: KindNull} }

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		if v.Str != "" {
			return v.Str
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	default:
		return quote(v.Str)
	}
}

// Expr is a node of a filter expression.
type Expr interface {
	String() string
	compile(c *compiler) (string, error)
}

// Cond compares a field with a literal.
type Cond struct {
	Field string
	Op    Op
	Value Value
}

func (c Cond) String() string {
	return c.Field + " " + string(c.Op) + " " + c.Value.String()
}

// Logical joins expressions with && or ||.
type Logical struct {
	Op    string
	Exprs []Expr
}

func (l Logical) String() string {
	parts := make([]string, 0, len(l.Exprs))
	for _, e := range l.Exprs {
		s := e.String()
		if inner, ok := e.(Logical); ok && inner.Op != l.Op && len(inner.Exprs) > 1 {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "+l.Op+" ")
}

// Eq builds `field = "value"`. Non-string values are rendered literally.
func Eq(field string, value any) Expr {
	return Cond{Field: field, Op: OpEq, Value: valueOf(value)}
}

// Neq builds `field != value`.
func Neq(field string, value any) Expr {
	return Cond{Field: field, Op: OpNeq, Value: valueOf(value)}
}

// Like builds a case-insensitive contains match.
func Like(field, value string) Expr {
	return Cond{Field: field, Op: OpLike, Value: String(value)}
}

func And(exprs ...Expr) Expr { return join(opAnd, exprs) }
func Or(exprs ...Expr) Expr  { return join(opOr, exprs) }

func join(op string, exprs []Expr) Expr {
	var kept []Expr
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Logical{Op: op, Exprs: kept}
}

// Render returns the wire form of e, or "" for a nil expression.
func Render(e Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}

func valueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int64:
		// ids travel as strings on the wire
		return String(strconv.FormatInt(x, 10))
	case float64:
		return Number(x)
	default:
		return String("")
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
