package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"readr/internal/filter"
)

var itemFields = filter.Fields{
	"id":             "i.id",
	"feed_id":        "i.feed_id",
	"title":          "i.title",
	"description":    "i.summary",
	"content":        "i.content",
	"published_date": "i.published_at",
	"is_read":        "is_read",
}

func TestRender_Builder(t *testing.T) {
	expr := filter.And(
		filter.Eq("user_id", int64(42)),
		filter.Or(filter.Like("title", "go"), filter.Like("description", `say "hi"`)),
	)
	require.Equal(t, `user_id = "42" && (title ~ "go" || description ~ "say \"hi\"")`, filter.Render(expr))
	require.Equal(t, "", filter.Render(filter.And()))
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		`user_id="abc"`,
		`title~"q" || description~"q" || content~"q"`,
		`feed_id = "1" && (is_read = false || title != null)`,
		`published_date >= "2024-01-01" && score < -2.5`,
	}
	for _, input := range inputs {
		expr, err := filter.Parse(input)
		require.NoError(t, err, input)

		again, err := filter.Parse(filter.Render(expr))
		require.NoError(t, err, input)
		require.Equal(t, filter.Render(expr), filter.Render(again))
	}
}

func TestParse_Precedence(t *testing.T) {
	expr, err := filter.Parse(`a = 1 || b = 2 && c = 3`)
	require.NoError(t, err)
	or, ok := expr.(filter.Logical)
	require.True(t, ok)
	require.Equal(t, "||", or.Op)
	require.Len(t, or.Exprs, 2)
	_, ok = or.Exprs[1].(filter.Logical)
	require.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{`title ~`, `title "x"`, `(a = 1`, `a = 1 &`, `a = "open`, `= 1`} {
		_, err := filter.Parse(input)
		require.ErrorIs(t, err, filter.ErrSyntax, input)
	}
}

func TestParse_Empty(t *testing.T) {
	expr, err := filter.Parse("   ")
	require.NoError(t, err)
	require.Nil(t, expr)
}

func TestSQL_Compile(t *testing.T) {
	expr, err := filter.Parse(`feed_id = "7" && (title ~ "50% ÜBER" || is_read = true)`)
	require.NoError(t, err)

	where, args, err := filter.SQL(expr, itemFields)
	require.NoError(t, err)
	require.Equal(t, `(i.feed_id = ? AND (instr(fold(COALESCE(i.title, '')), ?) > 0 OR is_read = ?))`, where)
	require.Equal(t, []any{"7", "50% über", 1}, args)
}

func TestSQL_NotContains(t *testing.T) {
	expr, err := filter.Parse(`description !~ "Ann"`)
	require.NoError(t, err)

	where, args, err := filter.SQL(expr, itemFields)
	require.NoError(t, err)
	require.Equal(t, `instr(fold(COALESCE(i.summary, '')), ?) = 0`, where)
	require.Equal(t, []any{"ann"}, args)
}

func TestSQL_Null(t *testing.T) {
	expr, err := filter.Parse(`content = null`)
	require.NoError(t, err)
	where, args, err := filter.SQL(expr, itemFields)
	require.NoError(t, err)
	require.Equal(t, "(i.content IS NULL OR i.content = '')", where)
	require.Empty(t, args)
}

func TestSQL_UnknownField(t *testing.T) {
	expr, err := filter.Parse(`password_hash = "x"`)
	require.NoError(t, err)
	_, _, err = filter.SQL(expr, itemFields)
	require.ErrorIs(t, err, filter.ErrUnknownField)
}

func TestSort(t *testing.T) {
	order, err := filter.Sort("-published_date, title", itemFields)
	require.NoError(t, err)
	require.Equal(t, "i.published_at DESC, i.title ASC", order)

	_, err = filter.Sort("-secret", itemFields)
	require.ErrorIs(t, err, filter.ErrUnknownField)

	order, err = filter.Sort("", itemFields)
	require.NoError(t, err)
	require.Empty(t, order)
}

func TestSQL_LargeIntegerKeepsPrecision(t *testing.T) {
	expr, err := filter.Parse(`feed_id = 1790000000000000001 && id > 2.5`)
	require.NoError(t, err)
	where, args, err := filter.SQL(expr, itemFields)
	require.NoError(t, err)
	require.Equal(t, "(i.feed_id = ? AND i.id > ?)", where)
	require.Equal(t, []any{int64(1790000000000000001), 2.5}, args)
	require.Equal(t, `feed_id = 1790000000000000001 && id > 2.5`, filter.Render(expr))
}
