package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldialect/internal/cli/config"
	"github.com/leapstack-labs/sqldialect/internal/testutil"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/databricks"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/spark"
	"github.com/leapstack-labs/sqldialect/pkg/format"
	"github.com/leapstack-labs/sqldialect/pkg/transpile"

	_ "github.com/leapstack-labs/sqldialect/pkg/dialects/ansi"
)

// execute runs cmd with cfg and a test logger in its context and returns
// stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func testConfig(read, write string) *config.Config {
	cfg := config.Default()
	cfg.Read = read
	cfg.Write = write
	return cfg
}

func TestTranspileCommand(t *testing.T) {
	tests := []struct {
		name     string
		read     string
		write    string
		sql      string
		expected string
	}{
		{
			name:     "spark to databricks",
			read:     "spark",
			write:    "databricks",
			sql:      "SELECT DATE_ADD(d, 1) FROM t",
			expected: "SELECT DATEADD(DAY, 1, d) FROM t;\n",
		},
		{
			name:     "databricks to ansi",
			read:     "databricks",
			write:    "ansi",
			sql:      "SELECT raw:a FROM t; SELECT 1",
			expected: "SELECT JSON_EXTRACT(raw, '$.a') FROM t;\nSELECT 1;\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewTranspileCommand(), testConfig(tt.read, tt.write), "-e", tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestTranspileCommand_Stdin(t *testing.T) {
	cmd := NewTranspileCommand()
	cmd.SetIn(strings.NewReader("SELECT X'0A'"))
	out, _, err := execute(t, cmd, testConfig("spark", "ansi"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 10;\n", out)
}

func TestTranspileCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT TRY_CAST(a AS INT) FROM t"), 0o644))

	cfg := testConfig("ansi", "spark")
	cfg.OutputFormat = "json"
	out, _, err := execute(t, NewTranspileCommand(), cfg, path)
	require.NoError(t, err)

	var got []outputRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []outputRecord{{Name: path, Statements: []string{"SELECT CAST(a AS INT) FROM t"}}}, got)
}

func TestTranspileCommand_Errors(t *testing.T) {
	t.Run("execute with files", func(t *testing.T) {
		_, _, err := execute(t, NewTranspileCommand(), testConfig("ansi", "spark"), "-e", "SELECT 1", "a.sql")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--execute cannot be combined")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, NewTranspileCommand(), testConfig("ansi", "spark"), filepath.Join(t.TempDir(), "nope.sql"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.sql")
	})

	t.Run("parse error names the input", func(t *testing.T) {
		_, _, err := execute(t, NewTranspileCommand(), testConfig("ansi", "spark"), "-e", "SELECT a FROM")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "<execute>: parse as ansi")
	})

	t.Run("raise on unsupported", func(t *testing.T) {
		cfg := testConfig("databricks", "spark")
		cfg.Unsupported = format.UnsupportedRaise
		_, _, err := execute(t, NewTranspileCommand(), cfg, "-e", "SELECT DATEADD(hour, 1, d) FROM t")
		require.ErrorIs(t, err, format.ErrUnsupported)
	})
}

func TestParseCommand(t *testing.T) {
	out, _, err := execute(t, NewParseCommand(), testConfig("databricks", "ansi"), "-e", "SELECT a FROM t")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: Select")
	assert.Contains(t, out, "kind: Column")
	assert.Contains(t, out, "kind: Table")

	_, _, err = execute(t, NewParseCommand(), testConfig("ansi", "ansi"), "-e", "SELECT (")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<execute>: parse error at line 1")
}

func TestDialectsCommand(t *testing.T) {
	out, _, err := execute(t, NewDialectsCommand(), testConfig("ansi", "ansi"))
	require.NoError(t, err)
	for _, want := range []string{"Dialect", "ansi > spark > databricks", "ansi > spark"} {
		assert.Contains(t, out, want)
	}

	cfg := testConfig("ansi", "ansi")
	cfg.OutputFormat = "json"
	out, _, err = execute(t, NewDialectsCommand(), cfg)
	require.NoError(t, err)

	var infos []dialectInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	byName := map[string]dialectInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	require.Contains(t, byName, "databricks")
	assert.Equal(t, "spark", byName["databricks"].Parent)
	assert.Empty(t, byName["ansi"].Parent)
	assert.Positive(t, byName["databricks"].Rendering.Upserts)
	assert.Positive(t, byName["ansi"].Lexing.Entries)
}

func TestREPLSession(t *testing.T) {
	tr, err := transpile.New(transpile.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	s := newREPLSession(tr, spark.Spark, databricks.Databricks, out, errOut)
	assert.Equal(t, "spark> ", s.prompt())

	// A statement may span lines.
	assert.False(t, s.handle("SELECT DATE_ADD(d, 1)"))
	assert.Equal(t, "    ...> ", s.prompt())
	assert.False(t, s.handle("FROM t;"))
	assert.Equal(t, "SELECT DATEADD(DAY, 1, d) FROM t;\n", out.String())
	assert.Equal(t, "spark> ", s.prompt())

	out.Reset()
	assert.False(t, s.handle(".swap"))
	assert.Equal(t, "databricks -> spark\n", out.String())
	assert.Equal(t, "databricks> ", s.prompt())

	assert.False(t, s.handle(".write ansi"))
	out.Reset()
	assert.False(t, s.handle("SELECT raw:a FROM t;"))
	assert.Equal(t, "SELECT JSON_EXTRACT(raw, '$.a') FROM t;\n", out.String())

	assert.False(t, s.handle(".read oracle"))
	assert.Contains(t, errOut.String(), "unknown dialect")

	errOut.Reset()
	assert.False(t, s.handle("SELECT a FROM;"))
	assert.Contains(t, errOut.String(), "Error: parse as databricks")

	assert.False(t, s.handle(".bogus"))
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")

	out.Reset()
	assert.False(t, s.handle(".dialects"))
	assert.Equal(t, "ansi, databricks, spark\n", out.String())

	assert.True(t, s.handle(".quit"))
}

func TestREPLSession_Reset(t *testing.T) {
	tr, err := transpile.New()
	require.NoError(t, err)
	s := newREPLSession(tr, spark.Spark, spark.Spark, new(bytes.Buffer), new(bytes.Buffer))

	s.handle("SELECT")
	s.reset()
	assert.Equal(t, "spark> ", s.prompt())
	// Dot commands are only recognized at the start of a statement.
	s.handle("SELECT a")
	assert.False(t, s.handle(".quit"))
}
