package transpile_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leapstack-labs/sqldialect/internal/testutil"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/databricks"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/spark"
	"github.com/leapstack-labs/sqldialect/pkg/format"
	"github.com/leapstack-labs/sqldialect/pkg/parser"
	"github.com/leapstack-labs/sqldialect/pkg/transpile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranspiler(t *testing.T, opts ...transpile.Option) *transpile.Transpiler {
	t.Helper()
	opts = append([]transpile.Option{transpile.WithLogger(testutil.NewTestLogger(t))}, opts...)
	tr, err := transpile.New(opts...)
	require.NoError(t, err)
	return tr
}

func TestTranspile_ToDatabricks(t *testing.T) {
	tr := newTranspiler(t)
	tests := []struct {
		name     string
		sql      string
		read     *dialect.Dialect
		expected []string
	}{
		{
			name:     "spark date functions",
			sql:      "SELECT DATE_ADD(d, 1), DATEDIFF(e, s) FROM t",
			read:     spark.Spark,
			expected: []string{"SELECT DATEADD(DAY, 1, d), DATEDIFF(DAY, s, e) FROM t"},
		},
		{
			name:     "ansi datetime functions",
			sql:      "SELECT DATETIME_ADD(x, INTERVAL 2 HOUR), DATETIME_SUB(x, INTERVAL 1 DAY), DATETIME_DIFF(a, b, DAY) FROM t",
			read:     ansi.ANSI,
			expected: []string{"SELECT TIMESTAMPADD(HOUR, 2, x), TIMESTAMPADD(DAY, 1 * -1, x), TIMESTAMPDIFF(DAY, b, a) FROM t"},
		},
		{
			name: "several statements",
			sql:  "SELECT GET_JSON_OBJECT(j, '$.k') FROM t; SELECT TRY_CAST(a AS INT) FROM t",
			read: spark.Spark,
			expected: []string{
				"SELECT j:k FROM t",
				"SELECT TRY_CAST(a AS INT) FROM t",
			},
		},
		{
			name:     "hex literal",
			sql:      "SELECT X'0A'",
			read:     spark.Spark,
			expected: []string{"SELECT 10"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.Transpile(tt.sql, tt.read, databricks.Databricks)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestTranspile_Errors(t *testing.T) {
	tr := newTranspiler(t)

	_, err := tr.Transpile("SELECT 1", nil, ansi.ANSI)
	require.ErrorIs(t, err, dialect.ErrDialectRequired)

	_, err = tr.Transpile("SELECT a FROM t WHERE", spark.Spark, databricks.Databricks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse as spark")
	var pe *parser.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = tr.TranspileNamed("SELECT 1", "oracle", "ansi")
	require.ErrorIs(t, err, dialect.ErrUnknownDialect)
	assert.Contains(t, err.Error(), "read dialect")

	_, err = tr.TranspileNamed("SELECT 1", "ansi", "")
	require.ErrorIs(t, err, dialect.ErrDialectRequired)

	_, err = transpile.New(transpile.WithCacheSize(-1))
	require.Error(t, err)
}

func TestTranspile_UnsupportedLevel(t *testing.T) {
	sql := "SELECT DATEADD(hour, 1, d) FROM t"

	logger, logs := testutil.NewLogCapture(t)
	warn, err := transpile.New(transpile.WithLogger(logger))
	require.NoError(t, err)
	out, err := warn.TranspileNamed(sql, "databricks", "spark")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT DATE_ADD(d, 1) FROM t"}, out)
	assert.Equal(t, 1, logs.Count("unsupported construct"))

	raise := newTranspiler(t, transpile.WithFormatOptions(format.WithUnsupportedLevel(format.UnsupportedRaise)))
	_, err = raise.TranspileNamed(sql, "databricks", "spark")
	require.ErrorIs(t, err, format.ErrUnsupported)
}

func TestTranspile_Cache(t *testing.T) {
	logger, logs := testutil.NewLogCapture(t)
	tr, err := transpile.New(transpile.WithLogger(logger), transpile.WithCacheSize(2))
	require.NoError(t, err)

	first, err := tr.Transpile("SELECT DATE_ADD(d, 1) FROM t", spark.Spark, databricks.Databricks)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.CacheLen())

	// Callers may modify the result without affecting the cache.
	first[0] = "changed"
	second, err := tr.Transpile("SELECT DATE_ADD(d, 1) FROM t", spark.Spark, databricks.Databricks)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT DATEADD(DAY, 1, d) FROM t"}, second)
	assert.Equal(t, 1, logs.Count("transpile cache hit"))

	// The key includes both dialects.
	_, err = tr.Transpile("SELECT DATE_ADD(d, 1) FROM t", spark.Spark, spark.Spark)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.CacheLen())

	// The oldest entry is evicted.
	_, err = tr.Transpile("SELECT 1", ansi.ANSI, ansi.ANSI)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.CacheLen())

	// Failures are not cached.
	_, err = tr.Transpile("SELECT", ansi.ANSI, ansi.ANSI)
	require.Error(t, err)
	assert.Equal(t, 2, tr.CacheLen())
}

func TestTranspile_CacheReplaysWarnings(t *testing.T) {
	logger, logs := testutil.NewLogCapture(t)
	var hooked []string
	tr, err := transpile.New(transpile.WithLogger(logger),
		transpile.WithFormatOptions(format.WithWarningHook(func(d string) { hooked = append(hooked, d) })))
	require.NoError(t, err)

	sql := "MERGE INTO t USING s ON t.id = s.id " +
		"WHEN MATCHED THEN DELETE WHEN MATCHED THEN UPDATE SET *"
	first, err := tr.Transpile(sql, ansi.ANSI, databricks.Databricks)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Count("unsupported construct"))
	assert.Len(t, hooked, 1)

	second, err := tr.Transpile(sql, ansi.ANSI, databricks.Databricks)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, logs.Count("transpile cache hit"))
	assert.Equal(t, 2, logs.Count("unsupported construct"))
	assert.Equal(t, 2, logs.Count("several MATCHED clauses"))
}

func TestTranspile_Normalize(t *testing.T) {
	sql := `SELECT Straße, "Keep" FROM Orders`

	plain := newTranspiler(t)
	out, err := plain.Transpile(sql, ansi.ANSI, databricks.Databricks)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT Straße, `Keep` FROM Orders"}, out)

	normalized := newTranspiler(t, transpile.WithFormatOptions(format.WithNormalize(true)))
	out, err = normalized.Transpile(sql, ansi.ANSI, databricks.Databricks)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT strasse, `Keep` FROM orders"}, out)

	out, err = normalized.Transpile("SELECT ÉTÉ FROM T", spark.Spark, ansi.ANSI)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT été FROM t"}, out)
}

func TestTranspile_CacheDisabled(t *testing.T) {
	tr := newTranspiler(t, transpile.WithCacheSize(0))
	_, err := tr.Transpile("SELECT 1", ansi.ANSI, ansi.ANSI)
	require.NoError(t, err)
	assert.Zero(t, tr.CacheLen())
}

func TestTranspileAll(t *testing.T) {
	tr := newTranspiler(t, transpile.WithConcurrency(3))

	var inputs []transpile.Input
	for i := range 20 {
		inputs = append(inputs, transpile.Input{
			Name:  fmt.Sprintf("q%02d.sql", i),
			SQL:   fmt.Sprintf("SELECT DATE_ADD(d, %d) FROM t", i),
			Read:  spark.Spark,
			Write: databricks.Databricks,
		})
	}

	out, err := tr.TranspileAll(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, out, len(inputs))
	for i, o := range out {
		assert.Equal(t, inputs[i].Name, o.Name)
		assert.Equal(t, []string{fmt.Sprintf("SELECT DATEADD(DAY, %d, d) FROM t", i)}, o.Statements)
	}
}

func TestTranspileAll_Failure(t *testing.T) {
	tr := newTranspiler(t, transpile.WithConcurrency(1))
	inputs := []transpile.Input{
		{Name: "ok.sql", SQL: "SELECT 1", Read: ansi.ANSI, Write: spark.Spark},
		{Name: "bad.sql", SQL: "SELECT a FROM", Read: ansi.ANSI, Write: spark.Spark},
	}
	_, err := tr.TranspileAll(context.Background(), inputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.sql: parse as ansi")
}

func TestTranspileAll_Canceled(t *testing.T) {
	tr := newTranspiler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.TranspileAll(ctx, []transpile.Input{
		{Name: "a.sql", SQL: "SELECT 1", Read: ansi.ANSI, Write: ansi.ANSI},
	})
	require.ErrorIs(t, err, context.Canceled)
}
