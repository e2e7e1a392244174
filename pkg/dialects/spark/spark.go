// Package spark provides the Spark SQL dialect, an extension of ANSI.
package spark

import (
	"fmt"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

func init() {
	dialect.Register(Spark)
}

// Spark-specific tokens (registered dynamically)
var (
	// TokenRlike is regex match (RLIKE)
	TokenRlike = token.Register("RLIKE")
	// TokenRegexp is regex match (REGEXP alias)
	TokenRegexp = token.Register("REGEXP")
)

// NegatedOperators are the operators that may follow NOT in Spark.
var NegatedOperators = map[token.TokenType]spi.InfixHandler{
	token.LIKE:    dialect.BinaryInfix(core.KindLike, spi.PrecedenceComparison),
	token.ILIKE:   dialect.BinaryInfix(core.KindILike, spi.PrecedenceComparison),
	TokenRlike:    dialect.BinaryInfix(core.KindRegexpLike, spi.PrecedenceComparison),
	TokenRegexp:   dialect.BinaryInfix(core.KindRegexpLike, spi.PrecedenceComparison),
	token.IN:      dialect.ParseIn,
	token.BETWEEN: dialect.ParseBetween,
}

// --- Spark-specific Operators ---

var sparkOperators = []dialect.OperatorDef{
	{Token: token.ILIKE, Kind: core.KindILike, Precedence: spi.PrecedenceComparison},
	{Token: TokenRlike, Kind: core.KindRegexpLike, Precedence: spi.PrecedenceComparison},
	{Token: TokenRegexp, Kind: core.KindRegexpLike, Precedence: spi.PrecedenceComparison},
}

// Spark is the Spark SQL dialect.
var Spark = dialect.Extend(ansi.ANSI, "spark").
	Identifiers("`", "`", "``", core.NormCaseInsensitive).
	// Lexing
	Token(dialect.HexStringPrefix, token.HEX_STRING).
	Token("RLIKE", TokenRlike).
	Token("REGEXP", TokenRegexp).
	// Operators
	Operators(sparkOperators...).
	Infix(token.NOT, spi.PrecedenceComparison, dialect.NegatedInfix(NegatedOperators)).
	// Functions
	Function("DATE_ADD", dayDelta(core.KindDateAdd)).
	Function("DATEDIFF", dayDelta(core.KindDateDiff)).
	Function("DATE_FORMAT", dialect.Simple(core.KindToChar, core.ArgThis, core.ArgFormat)).
	Function("GET_JSON_OBJECT", dialect.Simple(core.KindJSONExtract, core.ArgThis, core.ArgExpression)).
	Function("RLIKE", dialect.Simple(core.KindRegexpLike, core.ArgThis, core.ArgExpression)).
	// Rendering
	Render(core.KindTryCast, renderTryCast).
	Render(core.KindToChar, func(r spi.Renderer, n *core.Node) string {
		return r.Func("DATE_FORMAT", n.This(), n.Arg(core.ArgFormat))
	}).
	Render(core.KindRegexpLike, func(r spi.Renderer, n *core.Node) string {
		return r.Binary(n, "RLIKE")
	}).
	Render(core.KindJSONExtract, func(r spi.Renderer, n *core.Node) string {
		return r.Func("GET_JSON_OBJECT", n.This(), n.Expression())
	}).
	Render(core.KindDateAdd, renderDayDelta("DATE_ADD")).
	Render(core.KindDateDiff, renderDayDelta("DATEDIFF")).
	Build()

// dayDelta parses the two-argument day arithmetic functions:
// DATE_ADD(start, days) and DATEDIFF(end, start).
func dayDelta(kind core.Kind) spi.FunctionHandler {
	build := dialect.DateDelta(kind)
	return func(args []*core.Node) (*core.Node, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", kind.FuncName(), len(args))
		}
		return build(args)
	}
}

// renderDayDelta renders DateAdd or DateDiff as a day-only function.
func renderDayDelta(name string) spi.RenderFunc {
	return func(r spi.Renderer, n *core.Node) string {
		if unit := n.Text(core.ArgUnit); unit != "" && unit != "DAY" {
			r.Unsupported(fmt.Sprintf("%s only counts days, got unit %s", name, unit))
		}
		return r.Func(name, n.This(), n.Expression())
	}
}

// renderTryCast renders TRY_CAST as CAST.
func renderTryCast(r spi.Renderer, n *core.Node) string {
	cast := core.New(core.KindCast, core.Args{core.ArgThis: n.This(), core.ArgTo: n.Arg(core.ArgTo)})
	return r.SQL(cast)
}
