package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownField = errors.New("unknown filter field")

// Fields maps public field names to SQL column expressions.
type Fields map[string]string

type compiler struct {
	fields Fields
	args   []any
}

// SQL compiles e into a WHERE fragment. A nil expression compiles to "".
func SQL(e Expr, fields Fields) (string, []any, error) {
	if e == nil {
		return "", nil, nil
	}
	c := &compiler{fields: fields}
	where, err := e.compile(c)
	if err != nil {
		return "", nil, err
	}
	return where, c.args, nil
}

func (c Cond) compile(cc *compiler) (string, error) {
	column, ok := cc.fields[c.Field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, c.Field)
	}

	if c.Value.Kind == KindNull {
		switch c.Op {
		case OpEq:
			return fmt.Sprintf("(%s IS NULL OR %s = '')", column, column), nil
		case OpNeq:
			return fmt.Sprintf("(%s IS NOT NULL AND %s != '')", column, column), nil
		default:
			return "", fmt.Errorf("%w: operator %s not allowed with null", ErrSyntax, c.Op)
		}
	}

	var arg any
	switch c.Value.Kind {
	case KindBool:
		if c.Value.Bool {
			arg = 1
		} else {
			arg = 0
		}
	case KindNumber:
		arg = c.Value.Num
		if n, err := strconv.ParseInt(c.Value.Str, 10, 64); err == nil {
			arg = n
		}
	default:
		arg = c.Value.Str
	}

	switch c.Op {
	case OpLike, OpNotLike:
		// fold is registered on the sqlite driver by internal/db.
		cc.args = append(cc.args, strings.ToLower(fmt.Sprint(arg)))
		cmp := "> 0"
		if c.Op == OpNotLike {
			cmp = "= 0"
		}
		return fmt.Sprintf("instr(fold(COALESCE(%s, '')), ?) %s", column, cmp), nil
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		cc.args = append(cc.args, arg)
		return fmt.Sprintf("%s %s ?", column, string(c.Op)), nil
	default:
		return "", fmt.Errorf("%w: unknown operator %s", ErrSyntax, c.Op)
	}
}

func (l Logical) compile(cc *compiler) (string, error) {
	joiner := " AND "
	if l.Op == opOr {
		joiner = " OR "
	}
	parts := make([]string, 0, len(l.Exprs))
	for _, e := range l.Exprs {
		part, err := e.compile(cc)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

// Sort compiles "-field,field" into an ORDER BY list.
func Sort(spec string, fields Fields) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", nil
	}
	var parts []string
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		dir := "ASC"
		switch raw[0] {
		case '-':
			dir = "DESC"
			raw = raw[1:]
		case '+':
			raw = raw[1:]
		}
		column, ok := fields[raw]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownField, raw)
		}
		parts = append(parts, column+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}
