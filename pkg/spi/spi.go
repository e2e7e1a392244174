// Package spi provides Service Provider Interface types for dialect
// parse and render handlers to interact with the parser and the printer
// without circular dependencies.
package spi

import (
	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// ParserOps exposes parser operations to dialect parse handlers.
// This interface allows dialect-specific code to interact with the parser
// without creating circular dependencies.
type ParserOps interface {
	// Token access
	Token() token.Token
	Peek() token.Token

	// Consumption
	Match(t token.TokenType) bool
	Expect(t token.TokenType) error
	NextToken()
	Check(t token.TokenType) bool

	// Soft keywords: words the lexing table does not reserve (MATCHED, SOURCE, ...)
	CheckWord(word string) bool
	MatchWord(word string) bool

	// Sub-parsers
	ParseExpression() (*core.Node, error)
	ParseExpressionPrec(minPrec int) (*core.Node, error)
	ParseExpressionList() ([]*core.Node, error)
	ParseOrderByList() ([]*core.Node, error)
	ParseIdentifier() (*core.Node, error)
	ParseDataType() (*core.Node, error)
	ParseQuery() (*core.Node, error)

	// Error handling
	AddError(msg string)
	Position() token.Position
}

// PrefixHandler parses an expression introduced by a token in prefix
// position. Called AFTER the token has been consumed.
type PrefixHandler func(p ParserOps) (*core.Node, error)

// InfixHandler parses a dialect-specific infix operator.
// Called AFTER the operator has been consumed.
// left is the already-parsed left operand.
type InfixHandler func(p ParserOps, left *core.Node) (*core.Node, error)

// FunctionHandler builds a node from the already-parsed arguments of a
// function call.
type FunctionHandler func(args []*core.Node) (*core.Node, error)

// ClauseHandler parses a SELECT clause.
// Called AFTER the clause keyword has been consumed.
// The result is a *core.Node or a []*core.Node and is stored in the
// clause rule's slot of the Select node.
type ClauseHandler func(p ParserOps) (any, error)

// Renderer exposes printer operations to dialect render handlers.
type Renderer interface {
	// SQL renders n, consulting the rendering table.
	SQL(n *core.Node) string
	// Default renders n's built-in shape, ignoring any table entry for n.Kind.
	// Children are still rendered through the table.
	Default(n *core.Node) string
	// Func renders NAME(arg, ...); nil arguments are skipped.
	Func(name string, args ...*core.Node) string
	// Binary renders "left op right".
	Binary(n *core.Node, op string) string
	// FunctionFallback renders n as KIND_NAME(args...) in slot order.
	FunctionFallback(n *core.Node) string
	// Merge renders a MERGE statement with the given action clauses in place
	// of n's own.
	Merge(n *core.Node, whens []*core.Node) string
	// Identifiers returns the target dialect's identifier config.
	Identifiers() core.IdentifierConfig

	// AddError records a render failure. The output is discarded.
	AddError(err error)
	// Unsupported reports a construct the target cannot represent faithfully.
	Unsupported(msg string)
}

// RenderFunc renders a node of the kind it is registered for.
type RenderFunc func(r Renderer, n *core.Node) string

// Precedence constants for operator precedence parsing.
const (
	PrecedenceNone       = 0
	PrecedenceOr         = 1
	PrecedenceAnd        = 2
	PrecedenceNot        = 3
	PrecedenceComparison = 4 // =, <>, <, >, <=, >=, LIKE, ILIKE, RLIKE, IN, BETWEEN, IS
	PrecedenceAddition   = 5 // +, -, ||
	PrecedenceMultiply   = 6 // *, /, %
	PrecedenceUnary      = 7 // -, +, NOT
	PrecedencePostfix    = 8 // ::, :, []
)
