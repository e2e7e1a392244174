// Package ansi provides the base ANSI SQL dialect: the root of the
// inheritance chain, with hand-authored lexing and parsing tables and no
// render overrides.
//
// Dialects like Spark extend ANSI and upsert or delete individual entries.
package ansi

import (
	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

func init() {
	dialect.Register(ANSI)
}

// Symbols maps every ANSI operator and punctuation spelling to its token.
var Symbols = map[string]token.TokenType{
	"+":  token.PLUS,
	"-":  token.MINUS,
	"*":  token.STAR,
	"/":  token.SLASH,
	"%":  token.PERCENT,
	"||": token.DPIPE,
	"=":  token.EQ,
	"<>": token.NE,
	"!=": token.NE,
	"<":  token.LT,
	">":  token.GT,
	"<=": token.LE,
	">=": token.GE,
	".":  token.DOT,
	",":  token.COMMA,
	"(":  token.LPAREN,
	")":  token.RPAREN,
	"[":  token.LBRACKET,
	"]":  token.RBRACKET,
	"{":  token.LBRACE,
	"}":  token.RBRACE,
	";":  token.SEMICOLON,
	"?":  token.PLACEHOLDER,
}

// Keywords maps every builtin keyword spelling to its token.
var Keywords = func() map[string]token.TokenType {
	m := make(map[string]token.TokenType)
	for t := token.ALL; t <= token.WITH; t++ {
		m[t.String()] = t
	}
	return m
}()

// ANSI is the base ANSI SQL dialect.
var ANSI = dialect.NewDialect("ansi").
	Identifiers(`"`, `"`, `""`, core.NormLowercase).
	// Lexing
	Tokens(Keywords).
	Tokens(Symbols).
	// Prefix operators
	Prefix(token.NOT, dialect.ParseNot).
	Prefix(token.MINUS, dialect.ParseNegation).
	Prefix(token.PARAMETER, dialect.ParseParameter).
	// Infix operators
	Operators(dialect.ANSIOperators...).
	Infix(token.IN, spi.PrecedenceComparison, dialect.ParseIn).
	Infix(token.BETWEEN, spi.PrecedenceComparison, dialect.ParseBetween).
	Infix(token.IS, spi.PrecedenceComparison, dialect.ParseIs).
	Infix(token.NOT, spi.PrecedenceComparison, dialect.NegatedInfix(map[token.TokenType]spi.InfixHandler{
		token.LIKE:    dialect.BinaryInfix(core.KindLike, spi.PrecedenceComparison),
		token.IN:      dialect.ParseIn,
		token.BETWEEN: dialect.ParseBetween,
	})).
	// SELECT clauses
	Clauses(dialect.StandardSelectClauses...).
	// Functions
	Function("DATE_TRUNC", dialect.Trunc(core.KindTimestampTrunc, true)).
	Function("DATETIME_TRUNC", dialect.Trunc(core.KindDatetimeTrunc, false)).
	Function("DATETIME_ADD", dialect.IntervalDelta(core.KindDatetimeAdd)).
	Function("DATETIME_SUB", dialect.IntervalDelta(core.KindDatetimeSub)).
	Function("DATETIME_DIFF", dialect.UnitLast(core.KindDatetimeDiff)).
	Function("TO_CHAR", dialect.Simple(core.KindToChar, core.ArgThis, core.ArgFormat)).
	Function("JSON_EXTRACT", dialect.Simple(core.KindJSONExtract, core.ArgThis, core.ArgExpression)).
	Function("REGEXP_LIKE", dialect.Simple(core.KindRegexpLike, core.ArgThis, core.ArgExpression)).
	Function("ROW_NUMBER", dialect.Simple(core.KindRowNumber)).
	Build()
