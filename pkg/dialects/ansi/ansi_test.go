package ansi_test

import (
	"testing"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestANSI_Tables(t *testing.T) {
	d := ansi.ANSI
	assert.Nil(t, d.Parent)
	assert.Equal(t, []string{"ansi"}, d.Chain())
	assert.False(t, d.HexStrings())

	for spelling, want := range map[string]token.TokenType{
		"select": token.SELECT,
		"Merge":  token.MERGE,
		"<>":     token.NE,
		"!=":     token.NE,
		"?":      token.PLACEHOLDER,
	} {
		got, ok := d.LookupSpelling(spelling)
		require.True(t, ok, spelling)
		assert.Equal(t, want, got, spelling)
	}
	_, ok := d.LookupSpelling("$")
	assert.False(t, ok)
	_, ok = d.LookupSpelling("::")
	assert.False(t, ok)

	for _, name := range []string{"DATE_TRUNC", "datetime_add", "TO_CHAR", "ROW_NUMBER"} {
		assert.NotNil(t, d.FunctionHandler(name), name)
	}
	assert.Nil(t, d.FunctionHandler("DATEADD"))

	_, _, rendering := d.Overrides()
	assert.Zero(t, rendering.Upserts)
	_, ok = d.RenderFunc(core.KindSelect)
	assert.False(t, ok)
}

func TestANSI_Registered(t *testing.T) {
	d, err := dialect.Lookup("ANSI")
	require.NoError(t, err)
	assert.Same(t, ansi.ANSI, d)
}
