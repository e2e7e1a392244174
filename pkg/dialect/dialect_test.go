package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

func renderConst(s string) spi.RenderFunc {
	return func(spi.Renderer, *core.Node) string { return s }
}

func testRoot() *Dialect {
	return NewDialect("root").
		Token("SELECT", token.SELECT).
		Token("=", token.EQ).
		Token("<=", token.LE).
		Token(HexStringPrefix, token.HEX_STRING).
		Operators(ANSIOperators...).
		Clauses(StandardSelectClauses...).
		Function("DATE_TRUNC", Trunc(core.KindTimestampTrunc, true)).
		Render(core.KindDateDiff, renderConst("root-datediff")).
		Render(core.KindToChar, renderConst("root-tochar")).
		Build()
}

func TestTriggerKindString(t *testing.T) {
	tests := []struct {
		kind TriggerKind
		want string
	}{
		{TriggerPrefix, "prefix"},
		{TriggerInfix, "infix"},
		{TriggerFunction, "function"},
		{TriggerClause, "clause"},
		{TriggerKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, FunctionKey("dateadd"), FunctionKey("DATEADD"), "function names are case-insensitive")
	assert.NotEqual(t, PrefixKey(token.MINUS), InfixKey(token.MINUS))
	assert.Equal(t, "function(DATEADD)", FunctionKey("dateadd").String())
	assert.Equal(t, "infix(=)", InfixKey(token.EQ).String())
}

func TestBuild_RootTables(t *testing.T) {
	d := testRoot()

	tt, ok := d.LookupSpelling("select")
	require.True(t, ok, "keyword lookup is case-insensitive")
	assert.Equal(t, token.SELECT, tt)

	assert.Equal(t, 2, d.MaxSymbolLen(), "X' does not count as a symbol")
	assert.True(t, d.HexStrings())

	assert.Equal(t, spi.PrecedenceComparison, d.Precedence(token.EQ))
	assert.Equal(t, spi.PrecedenceNone, d.Precedence(token.SEMICOLON))
	assert.NotNil(t, d.FunctionHandler("date_trunc"))
	assert.Nil(t, d.FunctionHandler("DATEADD"))

	where, ok := d.ClauseRule(token.WHERE)
	require.True(t, ok)
	assert.Equal(t, core.ArgWhere, where.Slot)
	assert.False(t, d.IsClauseToken(token.QUALIFY))

	assert.Equal(t, []string{"root"}, d.Chain())
}

func TestExtend_InheritsAndOverrides(t *testing.T) {
	root := testRoot()
	child := Extend(root, "child").
		Identifiers("`", "`", "``", core.NormCaseInsensitive).
		Token("::", token.DCOLON).
		DeleteToken(HexStringPrefix).
		Clause(StandardQualify).
		DeleteParse(FunctionKey("DATE_TRUNC")).
		Render(core.KindDateDiff, renderConst("child-datediff")).
		DeleteRender(core.KindToChar).
		Build()

	assert.Same(t, root, child.Parent)
	assert.Equal(t, []string{"root", "child"}, child.Chain())
	assert.Equal(t, "`", child.Identifiers.Quote)

	// lexing
	assert.False(t, child.HexStrings())
	assert.True(t, root.HexStrings(), "parent untouched")
	_, ok := child.LookupSpelling("::")
	assert.True(t, ok)
	_, ok = root.LookupSpelling("::")
	assert.False(t, ok)

	// parsing
	assert.True(t, child.IsClauseToken(token.QUALIFY))
	assert.True(t, child.IsClauseToken(token.WHERE), "inherited")
	assert.Nil(t, child.FunctionHandler("DATE_TRUNC"))
	assert.NotNil(t, root.FunctionHandler("DATE_TRUNC"))

	// rendering
	fn, ok := child.RenderFunc(core.KindDateDiff)
	require.True(t, ok)
	assert.Equal(t, "child-datediff", fn(nil, nil))
	_, ok = child.RenderFunc(core.KindToChar)
	assert.False(t, ok, "deleted entry falls back to the built-in shape")
	fn, _ = root.RenderFunc(core.KindToChar)
	assert.Equal(t, "root-tochar", fn(nil, nil))

	lex, parse, render := child.Overrides()
	assert.Equal(t, LayerStats{Upserts: 1, Deletions: 1}, lex)
	assert.Equal(t, LayerStats{Upserts: 1, Deletions: 1}, parse)
	assert.Equal(t, LayerStats{Upserts: 1, Deletions: 1}, render)
}

func TestExtend_OnlyOverriddenEntryDiffers(t *testing.T) {
	root := testRoot()
	child := Extend(root, "child").
		Render(core.KindDateDiff, renderConst("child-datediff")).
		Build()

	assert.Equal(t, root.LexingTable().Len(), child.LexingTable().Len())
	assert.Equal(t, root.ParsingTable().Len(), child.ParsingTable().Len())
	for _, k := range root.RenderingTable().Keys() {
		if k == core.KindDateDiff {
			continue
		}
		want, _ := root.RenderFunc(k)
		got, ok := child.RenderFunc(k)
		require.True(t, ok)
		assert.Equal(t, want(nil, nil), got(nil, nil))
	}
}

func TestRegistry(t *testing.T) {
	d := NewDialect("Registry_Test").Build()
	Register(d)

	got, ok := Get("registry_test")
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Contains(t, List(), "registry_test")

	_, err := Lookup("")
	assert.ErrorIs(t, err, ErrDialectRequired)

	_, err = Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDialect))
	assert.Contains(t, err.Error(), "registry_test")

	assert.Panics(t, func() { MustGet("nope") })
	assert.Same(t, d, MustGet("REGISTRY_TEST"))
}

func TestFunctionBuilders(t *testing.T) {
	ts := core.Col("ts", "")

	t.Run("date delta with unit", func(t *testing.T) {
		n, err := DateDelta(core.KindDateAdd)([]*core.Node{core.Col("month", ""), core.Number("1"), ts})
		require.NoError(t, err)
		assert.Equal(t, "MONTH", n.Text(core.ArgUnit))
		assert.Same(t, ts, n.This())
		assert.Equal(t, "1", n.Expression().Text(core.ArgThis))
	})

	t.Run("date delta defaults to day", func(t *testing.T) {
		n, err := DateDelta(core.KindDateDiff)([]*core.Node{ts, core.Col("other", "")})
		require.NoError(t, err)
		assert.Equal(t, "DAY", n.Text(core.ArgUnit))
		assert.Same(t, ts, n.This())
	})

	t.Run("date delta arity", func(t *testing.T) {
		_, err := DateDelta(core.KindDateAdd)([]*core.Node{ts})
		assert.ErrorContains(t, err, "expects 2 to 3 arguments")
	})

	t.Run("interval delta", func(t *testing.T) {
		iv := core.New(core.KindInterval, core.Args{core.ArgThis: core.Number("3"), core.ArgUnit: core.Var("hour")})
		n, err := IntervalDelta(core.KindDatetimeAdd)([]*core.Node{ts, iv})
		require.NoError(t, err)
		assert.Equal(t, "HOUR", n.Text(core.ArgUnit))
		assert.Equal(t, "3", n.Expression().Text(core.ArgThis))
	})

	t.Run("trunc unit first", func(t *testing.T) {
		n, err := Trunc(core.KindTimestampTrunc, true)([]*core.Node{core.String("week"), ts})
		require.NoError(t, err)
		assert.Equal(t, "WEEK", n.Text(core.ArgUnit))
		assert.Same(t, ts, n.This())
	})

	t.Run("simple", func(t *testing.T) {
		_, err := Simple(core.KindToChar, core.ArgThis, core.ArgFormat)([]*core.Node{ts})
		assert.ErrorContains(t, err, "TO_CHAR expects 2 arguments, got 1")
	})
}
