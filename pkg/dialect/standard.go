// Package dialect provides the Dialect Descriptor.
//
// This file contains pre-built ClauseDef and OperatorDef definitions - the
// "menu items" that dialects can compose from.
package dialect

import (
	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// ClauseDef bundles clause parsing logic with its storage destination.
type ClauseDef struct {
	Token   token.TokenType   // The trigger token for this clause (e.g., token.WHERE)
	Handler spi.ClauseHandler // Handler function to parse the clause
	Slot    string            // Select slot that receives the result
}

// OperatorDef binds an operator token to the binary kind it builds.
type OperatorDef struct {
	Token      token.TokenType
	Kind       core.Kind
	Precedence int
}

// --- Standard Clause Definitions ---

var (
	// StandardWhere is the standard WHERE clause definition.
	StandardWhere = ClauseDef{Token: token.WHERE, Handler: ParseWhere, Slot: core.ArgWhere}

	// StandardGroupBy is the standard GROUP BY clause definition.
	StandardGroupBy = ClauseDef{Token: token.GROUP, Handler: ParseGroupBy, Slot: core.ArgGroup}

	// StandardHaving is the standard HAVING clause definition.
	StandardHaving = ClauseDef{Token: token.HAVING, Handler: ParseHaving, Slot: core.ArgHaving}

	// StandardOrderBy is the standard ORDER BY clause definition.
	StandardOrderBy = ClauseDef{Token: token.ORDER, Handler: ParseOrderBy, Slot: core.ArgOrder}

	// StandardLimit is the standard LIMIT clause definition.
	StandardLimit = ClauseDef{Token: token.LIMIT, Handler: ParseLimit, Slot: core.ArgLimit}

	// StandardQualify is the QUALIFY clause definition (Databricks, etc.).
	StandardQualify = ClauseDef{Token: token.QUALIFY, Handler: ParseQualify, Slot: core.ArgQualify}
)

// StandardSelectClauses is the typical ANSI SELECT clause set.
var StandardSelectClauses = []ClauseDef{
	StandardWhere,
	StandardGroupBy,
	StandardHaving,
	StandardOrderBy,
	StandardLimit,
}

// ANSIOperators contains standard SQL binary operators with their precedence.
var ANSIOperators = []OperatorDef{
	// Logical operators (lowest precedence)
	{Token: token.OR, Kind: core.KindOr, Precedence: spi.PrecedenceOr},
	{Token: token.AND, Kind: core.KindAnd, Precedence: spi.PrecedenceAnd},

	// Comparison operators
	{Token: token.EQ, Kind: core.KindEQ, Precedence: spi.PrecedenceComparison},
	{Token: token.NE, Kind: core.KindNEQ, Precedence: spi.PrecedenceComparison},
	{Token: token.LT, Kind: core.KindLT, Precedence: spi.PrecedenceComparison},
	{Token: token.GT, Kind: core.KindGT, Precedence: spi.PrecedenceComparison},
	{Token: token.LE, Kind: core.KindLTE, Precedence: spi.PrecedenceComparison},
	{Token: token.GE, Kind: core.KindGTE, Precedence: spi.PrecedenceComparison},
	{Token: token.LIKE, Kind: core.KindLike, Precedence: spi.PrecedenceComparison},

	// Arithmetic operators
	{Token: token.PLUS, Kind: core.KindAdd, Precedence: spi.PrecedenceAddition},
	{Token: token.MINUS, Kind: core.KindSub, Precedence: spi.PrecedenceAddition},
	{Token: token.DPIPE, Kind: core.KindDPipe, Precedence: spi.PrecedenceAddition},

	// Multiplicative operators (highest precedence for binary ops)
	{Token: token.STAR, Kind: core.KindMul, Precedence: spi.PrecedenceMultiply},
	{Token: token.SLASH, Kind: core.KindDiv, Precedence: spi.PrecedenceMultiply},
	{Token: token.PERCENT, Kind: core.KindMod, Precedence: spi.PrecedenceMultiply},
}

// Clauses registers each clause definition.
func (b *Builder) Clauses(defs ...ClauseDef) *Builder {
	for _, def := range defs {
		b.Clause(def)
	}
	return b
}

// Operators registers each operator as a left-associative binary infix rule.
func (b *Builder) Operators(defs ...OperatorDef) *Builder {
	for _, def := range defs {
		b.Infix(def.Token, def.Precedence, BinaryInfix(def.Kind, def.Precedence))
	}
	return b
}
