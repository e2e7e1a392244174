// Package dialect provides the Dialect Descriptor.
//
// This file contains stateless handlers that form the "toolbox" of
// reusable parsing logic. These handlers are pure functions that accept
// spi.ParserOps and return core nodes.
package dialect

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// ---------- Standard Clause Handlers ----------
// These are stateless functions that can be composed into any dialect.
// The leading keyword has already been consumed when these are called.

// ParseWhere handles the standard WHERE clause.
func ParseWhere(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ParseGroupBy handles the standard GROUP BY clause.
func ParseGroupBy(p spi.ParserOps) (any, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	return p.ParseExpressionList()
}

// ParseHaving handles the standard HAVING clause.
func ParseHaving(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ParseOrderBy handles the standard ORDER BY clause.
func ParseOrderBy(p spi.ParserOps) (any, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	return p.ParseOrderByList()
}

// ParseLimit handles the standard LIMIT clause.
func ParseLimit(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ParseQualify handles the QUALIFY clause (Databricks, etc.).
func ParseQualify(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ---------- Operator Handlers ----------

// BinaryInfix returns an infix handler that builds a left-associative
// binary node of the given kind.
func BinaryInfix(kind core.Kind, precedence int) spi.InfixHandler {
	return func(p spi.ParserOps, left *core.Node) (*core.Node, error) {
		right, err := p.ParseExpressionPrec(precedence)
		if err != nil {
			return nil, err
		}
		return core.Binary(kind, left, right), nil
	}
}

// ParseNot handles prefix NOT.
func ParseNot(p spi.ParserOps) (*core.Node, error) {
	operand, err := p.ParseExpressionPrec(spi.PrecedenceNot)
	if err != nil {
		return nil, err
	}
	return core.New(core.KindNot, core.Args{core.ArgThis: operand}), nil
}

// ParseNegation handles prefix minus.
func ParseNegation(p spi.ParserOps) (*core.Node, error) {
	operand, err := p.ParseExpressionPrec(spi.PrecedenceUnary)
	if err != nil {
		return nil, err
	}
	return core.New(core.KindNeg, core.Args{core.ArgThis: operand}), nil
}

// ParseParameter handles a parameter marker: $name or ${name}.
func ParseParameter(p spi.ParserOps) (*core.Node, error) {
	wrapped := p.Match(token.LBRACE)
	name, err := p.ParseIdentifier()
	if err != nil {
		return nil, err
	}
	if wrapped {
		if err := p.Expect(token.RBRACE); err != nil {
			return nil, err
		}
	}
	return core.New(core.KindParameter, core.Args{core.ArgThis: name.Name(), core.ArgWrapped: wrapped}), nil
}

// ParseIn handles "x IN (list)" and "x IN (subquery)".
func ParseIn(p spi.ParserOps, left *core.Node) (*core.Node, error) {
	if err := p.Expect(token.LPAREN); err != nil {
		return nil, err
	}
	n := core.New(core.KindIn, core.Args{core.ArgThis: left})
	if p.Check(token.SELECT) {
		q, err := p.ParseQuery()
		if err != nil {
			return nil, err
		}
		n.Set(core.ArgQuery, q)
	} else {
		list, err := p.ParseExpressionList()
		if err != nil {
			return nil, err
		}
		n.Set(core.ArgExpressions, list)
	}
	if err := p.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	return n, nil
}

// ParseBetween handles "x BETWEEN low AND high".
func ParseBetween(p spi.ParserOps, left *core.Node) (*core.Node, error) {
	low, err := p.ParseExpressionPrec(spi.PrecedenceComparison)
	if err != nil {
		return nil, err
	}
	if err := p.Expect(token.AND); err != nil {
		return nil, err
	}
	high, err := p.ParseExpressionPrec(spi.PrecedenceComparison)
	if err != nil {
		return nil, err
	}
	return core.New(core.KindBetween, core.Args{core.ArgThis: left, core.ArgLow: low, core.ArgHigh: high}), nil
}

// ParseIs handles "x IS [NOT] y".
func ParseIs(p spi.ParserOps, left *core.Node) (*core.Node, error) {
	negate := p.Match(token.NOT)
	right, err := p.ParseExpressionPrec(spi.PrecedenceComparison)
	if err != nil {
		return nil, err
	}
	n := core.Binary(core.KindIs, left, right)
	if negate {
		n = core.New(core.KindNot, core.Args{core.ArgThis: n})
	}
	return n, nil
}

// NegatedInfix returns a handler for "x NOT op ..." that dispatches on the
// token after NOT and wraps the result in Not.
func NegatedInfix(ops map[token.TokenType]spi.InfixHandler) spi.InfixHandler {
	return func(p spi.ParserOps, left *core.Node) (*core.Node, error) {
		tok := p.Token()
		h, ok := ops[tok.Type]
		if !ok {
			return nil, fmt.Errorf("unexpected %s after NOT", tok.Type)
		}
		p.NextToken()
		inner, err := h(p, left)
		if err != nil {
			return nil, err
		}
		return core.New(core.KindNot, core.Args{core.ArgThis: inner}), nil
	}
}

// ---------- Function Builders ----------

// Unit converts a date part argument ('day', day or DAY) to an upper-case Var.
func Unit(n *core.Node) *core.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case core.KindLiteral, core.KindVar, core.KindIdentifier:
		return core.Var(strings.ToUpper(n.Text(core.ArgThis)))
	case core.KindColumn:
		if !n.Has(core.ArgTable) {
			return core.Var(strings.ToUpper(n.Name()))
		}
	}
	return n
}

// arg returns args[i] or nil.
func arg(args []*core.Node, i int) *core.Node {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// checkArity fails unless min <= len(args) <= max.
func checkArity(name string, args []*core.Node, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%s expects %d arguments, got %d", name, lo, len(args))
		}
		return fmt.Errorf("%s expects %d to %d arguments, got %d", name, lo, hi, len(args))
	}
	return nil
}

// Simple returns a function builder that maps positional arguments to the
// slots of kind, in order.
func Simple(kind core.Kind, slots ...string) spi.FunctionHandler {
	return func(args []*core.Node) (*core.Node, error) {
		if err := checkArity(kind.FuncName(), args, len(slots), len(slots)); err != nil {
			return nil, err
		}
		n := core.New(kind, nil)
		for i, slot := range slots {
			n.Set(slot, args[i])
		}
		return n, nil
	}
}

// IntervalDelta builds kind from (this, INTERVAL n unit), as in
// DATETIME_ADD(ts, INTERVAL 1 DAY). A plain second argument has no unit.
func IntervalDelta(kind core.Kind) spi.FunctionHandler {
	return func(args []*core.Node) (*core.Node, error) {
		if err := checkArity(kind.FuncName(), args, 2, 2); err != nil {
			return nil, err
		}
		n := core.New(kind, core.Args{core.ArgThis: args[0], core.ArgExpression: args[1]})
		if iv := args[1]; iv.Is(core.KindInterval) {
			n.Set(core.ArgExpression, iv.This())
			n.Set(core.ArgUnit, Unit(iv.Arg(core.ArgUnit)))
		}
		return n, nil
	}
}

// UnitLast builds kind from (this, expression, unit), as in
// DATETIME_DIFF(a, b, DAY).
func UnitLast(kind core.Kind) spi.FunctionHandler {
	return func(args []*core.Node) (*core.Node, error) {
		if err := checkArity(kind.FuncName(), args, 3, 3); err != nil {
			return nil, err
		}
		return core.New(kind, core.Args{
			core.ArgThis:       args[0],
			core.ArgExpression: args[1],
			core.ArgUnit:       Unit(args[2]),
		}), nil
	}
}

// Trunc builds a truncation node. unitFirst selects DATE_TRUNC(unit, x)
// over DATETIME_TRUNC(x, unit).
func Trunc(kind core.Kind, unitFirst bool) spi.FunctionHandler {
	return func(args []*core.Node) (*core.Node, error) {
		if err := checkArity(kind.FuncName(), args, 2, 2); err != nil {
			return nil, err
		}
		this, unit := args[1], args[0]
		if !unitFirst {
			this, unit = args[0], args[1]
		}
		return core.New(kind, core.Args{core.ArgThis: this, core.ArgUnit: Unit(unit)}), nil
	}
}

// DateDelta builds kind from DATEADD-style arguments: three arguments are
// (unit, expression, this); two are (this, expression) with unit DAY.
func DateDelta(kind core.Kind) spi.FunctionHandler {
	return func(args []*core.Node) (*core.Node, error) {
		if err := checkArity(kind.FuncName(), args, 2, 3); err != nil {
			return nil, err
		}
		if len(args) == 3 {
			return core.New(kind, core.Args{
				core.ArgThis:       args[2],
				core.ArgExpression: args[1],
				core.ArgUnit:       Unit(args[0]),
			}), nil
		}
		return core.New(kind, core.Args{
			core.ArgThis:       arg(args, 0),
			core.ArgExpression: arg(args, 1),
			core.ArgUnit:       core.Var("DAY"),
		}), nil
	}
}
