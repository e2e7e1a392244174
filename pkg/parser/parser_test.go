package parser_test

import (
	"fmt"
	"testing"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/databricks"
	"github.com/leapstack-labs/sqldialect/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Expressions ----------

func TestParseExpr_Precedence(t *testing.T) {
	expr, err := parser.ParseExpr("1 + 2 * 3", ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindAdd, expr.Kind)
	assert.Equal(t, "1", expr.This().Name())
	assert.Equal(t, core.KindMul, expr.Expression().Kind)
}

func TestParseExpr_LeftAssociative(t *testing.T) {
	expr, err := parser.ParseExpr("a - b - c", ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindSub, expr.Kind)
	assert.Equal(t, core.KindSub, expr.This().Kind)
	assert.Equal(t, "c", expr.Expression().Name())
}

func TestParseExpr_Logical(t *testing.T) {
	expr, err := parser.ParseExpr("a AND NOT b OR c", ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindOr, expr.Kind)
	and := expr.This()
	require.Equal(t, core.KindAnd, and.Kind)
	assert.Equal(t, core.KindNot, and.Expression().Kind)

	expr, err = parser.ParseExpr("NOT a = b", ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindNot, expr.Kind)
	assert.Equal(t, core.KindEQ, expr.This().Kind)
}

func TestParseExpr_Forms(t *testing.T) {
	tests := []struct {
		sql  string
		kind core.Kind
	}{
		{"a IN (1, 2)", core.KindIn},
		{"a IN (SELECT b FROM t)", core.KindIn},
		{"a NOT IN (1)", core.KindNot},
		{"a BETWEEN 1 AND 2", core.KindBetween},
		{"a NOT BETWEEN 1 AND 2", core.KindNot},
		{"a IS NULL", core.KindIs},
		{"a IS NOT NULL", core.KindNot},
		{"a NOT LIKE 'x%'", core.KindNot},
		{"a || b", core.KindDPipe},
		{"-a", core.KindNeg},
		{"(a)", core.KindParen},
		{"(a, b)", core.KindTuple},
		{"(SELECT 1)", core.KindSubquery},
		{"CAST(a AS DECIMAL(10, 2))", core.KindCast},
		{"TRY_CAST(a AS INT)", core.KindTryCast},
		{"CASE WHEN a THEN 1 ELSE 2 END", core.KindCase},
		{"CASE a WHEN 1 THEN 'x' END", core.KindCase},
		{"INTERVAL 1 DAY", core.KindInterval},
		{"COUNT(DISTINCT a)", core.KindAnonymous},
		{"SUM(a) OVER (PARTITION BY b)", core.KindWindow},
		{"?", core.KindPlaceholder},
		{"TRUE", core.KindBoolean},
		{"NULL", core.KindNull},
		{"t.*", core.KindColumn},
		{"db.t.c", core.KindColumn},
		{"DATE_TRUNC('month', d)", core.KindTimestampTrunc},
		{"DATETIME_ADD(d, INTERVAL 1 DAY)", core.KindDatetimeAdd},
		{"DATETIME_DIFF(a, b, HOUR)", core.KindDatetimeDiff},
		{"TO_CHAR(d, 'yyyy')", core.KindToChar},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.sql, ansi.ANSI)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, expr.Kind)
		})
	}
}

func TestParseExpr_FunctionDetails(t *testing.T) {
	expr, err := parser.ParseExpr("my_func(a, 1)", ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindAnonymous, expr.Kind)
	assert.Equal(t, "MY_FUNC", expr.Name())
	assert.Len(t, expr.List(core.ArgExpressions), 2)

	expr, err = parser.ParseExpr("DATETIME_SUB(ts, INTERVAL 3 hour)", ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindDatetimeSub, expr.Kind)
	assert.Equal(t, "HOUR", expr.Text(core.ArgUnit))
	assert.Equal(t, "3", expr.Expression().Name())

	expr, err = parser.ParseExpr("db.t.c", ansi.ANSI)
	require.NoError(t, err)
	assert.Equal(t, "c", expr.Name())
	assert.Equal(t, "t", expr.Arg(core.ArgTable).Name())
	assert.Equal(t, "db", expr.Arg(core.ArgDB).Name())
}

func TestParseExpr_Arity(t *testing.T) {
	_, err := parser.ParseExpr("TO_CHAR(d)", ansi.ANSI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TO_CHAR expects 2 arguments, got 1")
}

func TestParseExpr_NoApplicableRule(t *testing.T) {
	_, err := parser.ParseExpr(")", ansi.ANSI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no applicable rule for ")"`)

	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pos.Line)
	assert.Equal(t, 1, pe.Pos.Column)
}

// ---------- SELECT ----------

func TestParseSelect(t *testing.T) {
	sql := `SELECT DISTINCT a, b AS x, c y
		FROM db.t AS t1
		LEFT OUTER JOIN u ON t1.id = u.id
		CROSS JOIN v
		WHERE a > 1
		GROUP BY a, b
		HAVING COUNT(*) > 1
		ORDER BY a DESC, b
		LIMIT 10`
	stmt, err := parser.ParseOne(sql, ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindSelect, stmt.Kind)

	assert.True(t, stmt.Has(core.ArgDistinct))
	items := stmt.List(core.ArgExpressions)
	require.Len(t, items, 3)
	assert.Equal(t, core.KindColumn, items[0].Kind)
	assert.Equal(t, "x", items[1].Arg(core.ArgAlias).Name())
	assert.Equal(t, "y", items[2].Arg(core.ArgAlias).Name())

	from := stmt.Arg(core.ArgFrom)
	assert.Equal(t, "t", from.Name())
	assert.Equal(t, "db", from.Arg(core.ArgDB).Name())
	assert.Equal(t, "t1", from.Arg(core.ArgAlias).Name())

	joins := stmt.List(core.ArgJoins)
	require.Len(t, joins, 2)
	assert.Equal(t, "LEFT", joins[0].Text(core.ArgSide))
	assert.True(t, joins[0].Has(core.ArgOn))
	assert.Equal(t, "CROSS", joins[1].Text(core.ArgSide))
	assert.False(t, joins[1].Has(core.ArgOn))

	assert.Equal(t, core.KindGT, stmt.Arg(core.ArgWhere).Kind)
	assert.Len(t, stmt.List(core.ArgGroup), 2)
	assert.True(t, stmt.Has(core.ArgHaving))
	order := stmt.List(core.ArgOrder)
	require.Len(t, order, 2)
	assert.True(t, order[0].Bool(core.ArgDesc))
	assert.False(t, order[1].Bool(core.ArgDesc))
	assert.Equal(t, "10", stmt.Arg(core.ArgLimit).Name())
}

func TestParseSelect_ClausesInAnyOrder(t *testing.T) {
	stmt, err := parser.ParseOne("SELECT a FROM t LIMIT 5 WHERE a = 1", ansi.ANSI)
	require.NoError(t, err)
	assert.True(t, stmt.Has(core.ArgWhere))
	assert.True(t, stmt.Has(core.ArgLimit))
}

func TestParseSelect_DuplicateClause(t *testing.T) {
	_, err := parser.Parse("SELECT a FROM t WHERE a = 1 WHERE b = 2", ansi.ANSI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate WHERE clause")
}

func TestParseSelect_DistinctOn(t *testing.T) {
	stmt, err := parser.ParseOne("SELECT DISTINCT ON (a, b) a, c FROM t", ansi.ANSI)
	require.NoError(t, err)
	on := stmt.Arg(core.ArgDistinct).Arg(core.ArgOn)
	require.NotNil(t, on)
	assert.Len(t, on.List(core.ArgExpressions), 2)
}

func TestParseSelect_Subquery(t *testing.T) {
	stmt, err := parser.ParseOne("SELECT s.a FROM (SELECT a FROM t) s", ansi.ANSI)
	require.NoError(t, err)
	from := stmt.Arg(core.ArgFrom)
	require.Equal(t, core.KindSubquery, from.Kind)
	assert.Equal(t, "s", from.Arg(core.ArgAlias).Name())
	assert.Equal(t, core.KindSelect, from.This().Kind)
}

func TestParse_MultipleStatements(t *testing.T) {
	stmts, err := parser.Parse("SELECT 1; SELECT 2;", ansi.ANSI)
	require.NoError(t, err)
	assert.Len(t, stmts, 2)

	stmts, err = parser.Parse("  ", ansi.ANSI)
	require.NoError(t, err)
	assert.Empty(t, stmts)

	_, err = parser.ParseOne("SELECT 1; SELECT 2", ansi.ANSI)
	require.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		message string
		line    int
	}{
		{"unsupported statement", "UPDATE t SET a = 1", "unsupported statement", 1},
		{"missing expression", "SELECT a FROM t\nWHERE", "no applicable rule for end of input", 2},
		{"missing paren", "SELECT (a FROM t", "expected )", 1},
		{"unterminated string", "SELECT 'abc", "unterminated string literal", 1},
		{"trailing garbage", "SELECT a FROM t t2 t3", "expected ';' or end of input", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.sql, ansi.ANSI)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), fmt.Sprintf("line %d,", tt.line))
		})
	}
}

func TestParse_RequiresDialect(t *testing.T) {
	_, err := parser.Parse("SELECT 1", nil)
	require.ErrorIs(t, err, dialect.ErrDialectRequired)
	_, err = parser.ParseExpr("1", nil)
	require.ErrorIs(t, err, dialect.ErrDialectRequired)
}

// ---------- CREATE ----------

func TestParseCreate(t *testing.T) {
	sql := `CREATE OR REPLACE TABLE IF NOT EXISTS db.events (
		id INT GENERATED BY DEFAULT AS IDENTITY (START WITH 10 INCREMENT BY -1) NOT NULL,
		name VARCHAR(100) DEFAULT 'x',
		code BIGINT PRIMARY KEY,
		seq SMALLINT GENERATED ALWAYS AS IDENTITY
	)`
	stmt, err := parser.ParseOne(sql, ansi.ANSI)
	require.NoError(t, err)
	require.Equal(t, core.KindCreate, stmt.Kind)
	assert.Equal(t, "TABLE", stmt.Text(core.ArgKind))
	assert.True(t, stmt.Bool(core.ArgReplace))
	assert.True(t, stmt.Bool(core.ArgExists))

	schema := stmt.This()
	require.Equal(t, core.KindSchema, schema.Kind)
	assert.Equal(t, "events", schema.This().Name())
	assert.Equal(t, "db", schema.This().Arg(core.ArgDB).Name())

	cols := schema.List(core.ArgExpressions)
	require.Len(t, cols, 4)

	id := cols[0]
	assert.Equal(t, "INT", id.Arg(core.ArgKind).Name())
	constraints := id.List(core.ArgConstraints)
	require.Len(t, constraints, 2)
	identity := constraints[0]
	require.Equal(t, core.KindGeneratedAsIdentityColumnConstraint, identity.Kind)
	assert.False(t, identity.Bool(core.ArgThis))
	assert.Equal(t, "10", identity.Arg(core.ArgStart).Name())
	assert.Equal(t, "-1", identity.Arg(core.ArgIncrement).Name())
	assert.Equal(t, core.KindNotNullColumnConstraint, constraints[1].Kind)

	name := cols[1]
	require.Len(t, name.Arg(core.ArgKind).List(core.ArgExpressions), 1)
	assert.Equal(t, core.KindDefaultColumnConstraint, name.List(core.ArgConstraints)[0].Kind)

	assert.Equal(t, core.KindPrimaryKeyColumnConstraint, cols[2].List(core.ArgConstraints)[0].Kind)
	assert.True(t, cols[3].List(core.ArgConstraints)[0].Bool(core.ArgThis))
}

func TestParseCreateAsSelect(t *testing.T) {
	stmt, err := parser.ParseOne("CREATE TABLE t AS SELECT a FROM u", ansi.ANSI)
	require.NoError(t, err)
	assert.Equal(t, core.KindTable, stmt.This().Kind)
	assert.Equal(t, core.KindSelect, stmt.Expression().Kind)
}

// ---------- MERGE ----------

func TestParseMerge(t *testing.T) {
	sql := `MERGE INTO target t USING source s ON t.id = s.id
		WHEN NOT MATCHED THEN INSERT (id, v) VALUES (s.id, s.v)
		WHEN MATCHED AND s.deleted THEN DELETE
		WHEN MATCHED THEN UPDATE SET v = s.v, updated = TRUE
		WHEN NOT MATCHED BY SOURCE AND t.old THEN DELETE
		WHEN NOT MATCHED BY TARGET AND s.v > 0 THEN INSERT *
		WHEN MATCHED AND s.full THEN UPDATE SET *`
	stmt, err := parser.ParseOne(sql, databricks.Databricks)
	require.NoError(t, err)
	require.Equal(t, core.KindMerge, stmt.Kind)
	assert.Equal(t, "target", stmt.This().Name())
	assert.Equal(t, "s", stmt.Arg(core.ArgUsing).Arg(core.ArgAlias).Name())

	whens := stmt.List(core.ArgExpressions)
	require.Len(t, whens, 6)

	type shape struct {
		matched   bool
		hasSource bool
		source    bool
		hasCond   bool
		action    core.Kind
	}
	want := []shape{
		{false, false, false, false, core.KindInsert},
		{true, false, false, true, core.KindDelete},
		{true, false, false, false, core.KindUpdate},
		{false, true, true, true, core.KindDelete},
		{false, true, false, true, core.KindInsert},
		{true, false, false, true, core.KindUpdate},
	}
	for i, w := range want {
		when := whens[i]
		_, hasSource := when.Value(core.ArgSource)
		assert.Equal(t, w.matched, when.Bool(core.ArgMatched), "clause %d matched", i)
		assert.Equal(t, w.hasSource, hasSource, "clause %d source present", i)
		assert.Equal(t, w.source, when.Bool(core.ArgSource), "clause %d source", i)
		assert.Equal(t, w.hasCond, when.Has(core.ArgCondition), "clause %d condition", i)
		assert.Equal(t, w.action, when.Arg(core.ArgThen).Kind, "clause %d action", i)
	}

	insert := whens[0].Arg(core.ArgThen)
	assert.Len(t, insert.This().List(core.ArgExpressions), 2)
	assert.Len(t, insert.Expression().List(core.ArgExpressions), 2)
	assert.Len(t, whens[2].Arg(core.ArgThen).List(core.ArgExpressions), 2)
	assert.True(t, whens[4].Arg(core.ArgThen).Bool(core.ArgStar))
	assert.True(t, whens[5].Arg(core.ArgThen).Bool(core.ArgStar))
}

func TestParseMerge_Errors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"no when", "MERGE INTO t USING s ON t.id = s.id"},
		{"bad by", "MERGE INTO t USING s ON a = b WHEN NOT MATCHED BY NOBODY THEN DELETE"},
		{"by after matched", "MERGE INTO t USING s ON a = b WHEN MATCHED BY SOURCE THEN DELETE"},
		{"by target after matched", "MERGE INTO t USING s ON a = b WHEN MATCHED BY TARGET THEN DELETE"},
		{"bad action", "MERGE INTO t USING s ON a = b WHEN MATCHED THEN SELECT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.sql, ansi.ANSI)
			require.Error(t, err)
		})
	}
}

func TestParser_Comments(t *testing.T) {
	p := parser.NewParser("-- header\nSELECT 1 /* one */", ansi.ANSI)
	assert.Same(t, ansi.ANSI, p.Dialect())
	stmts, err := parser.Parse("-- header\nSELECT 1 /* one */", ansi.ANSI)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
}

func TestParser_UnicodeIdentifiers(t *testing.T) {
	stmt, err := parser.ParseOne("SELECT café FROM t", ansi.ANSI)
	require.NoError(t, err)
	col := stmt.Find(core.KindColumn)
	require.NotNil(t, col)
	assert.Equal(t, "café", col.Name())
}
