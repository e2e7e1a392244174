// Package databricks provides the Databricks SQL dialect, an extension of
// Spark. It differs from Spark in the entries it upserts and deletes:
//
//   - lexing: no X'..' hex strings, $ starts a parameter, : and :: exist
//   - parsing: col:path JSON extraction, expr::type casts, QUALIFY, and
//     DATEADD/DATE_ADD/DATEDIFF with an optional leading unit
//   - rendering: unit-first date arithmetic, TIMESTAMPADD/TIMESTAMPDIFF,
//     DATE_TRUNC, col:path, DISTINCT ON elimination, BIGINT identity
//     columns and MERGE clause ordering
package databricks

import (
	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/spark"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
	"github.com/leapstack-labs/sqldialect/pkg/transforms"
)

func init() {
	dialect.Register(Databricks)
}

// Databricks is the Databricks SQL dialect.
var Databricks = dialect.Extend(spark.Spark, "databricks").
	// Lexing
	DeleteToken(dialect.HexStringPrefix).
	Token("$", token.PARAMETER).
	Token(":", token.COLON).
	Token("::", token.DCOLON).
	// Parsing
	Infix(token.COLON, spi.PrecedencePostfix, parseJSONExtract).
	Infix(token.DCOLON, spi.PrecedencePostfix, parseCastOperator).
	Clause(dialect.StandardQualify).
	Function("DATEADD", dialect.DateDelta(core.KindDateAdd)).
	Function("DATE_ADD", dialect.DateDelta(core.KindDateAdd)).
	Function("DATEDIFF", dialect.DateDelta(core.KindDateDiff)).
	// Rendering
	Render(core.KindDateAdd, renderDateDelta).
	Render(core.KindDateDiff, renderDateDelta).
	Render(core.KindDatetimeAdd, renderDatetimeAdd).
	Render(core.KindDatetimeSub, renderDatetimeSub).
	Render(core.KindDatetimeDiff, renderDatetimeDiff).
	Render(core.KindDatetimeTrunc, renderTimestampTrunc).
	Render(core.KindJSONExtract, renderJSONExtract).
	Render(core.KindSelect, transforms.Preprocess(transforms.EliminateDistinctOn)).
	Render(core.KindToChar, func(r spi.Renderer, n *core.Node) string {
		return r.FunctionFallback(n)
	}).
	DeleteRender(core.KindTryCast).
	Render(core.KindColumnDef, renderColumnDef).
	Render(core.KindGeneratedAsIdentityColumnConstraint, renderIdentity).
	Render(core.KindMerge, renderMerge).
	Build()
