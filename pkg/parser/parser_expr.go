package parser

import (
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// Expression precedence parsing using a Pratt parser driven by the
// dialect's parsing table.
//
// Precedence levels (from spi package):
//
//	PrecedenceNone       = 0
//	PrecedenceOr         = 1
//	PrecedenceAnd        = 2
//	PrecedenceNot        = 3
//	PrecedenceComparison = 4  (=, <>, <, >, <=, >=, IS, IN, BETWEEN, LIKE, ILIKE, RLIKE)
//	PrecedenceAddition   = 5  (+, -, ||)
//	PrecedenceMultiply   = 6  (*, /, %)
//	PrecedenceUnary      = 7  (-, NOT)
//	PrecedencePostfix    = 8  (::, :)
//
// An operator only exists if the dialect has an infix rule for its token,
// so "a RLIKE b" parses in Spark and fails in ANSI.

// ParseExpression parses a full expression (implements spi.ParserOps).
func (p *Parser) ParseExpression() (*core.Node, error) {
	return p.ParseExpressionPrec(spi.PrecedenceNone)
}

// ParseExpressionPrec parses an expression whose infix operators all bind
// tighter than minPrec (implements spi.ParserOps).
func (p *Parser) ParseExpressionPrec(minPrec int) (*core.Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		rule, ok := p.dialect.InfixRule(p.token.Type)
		if !ok || rule.Precedence <= minPrec {
			return left, nil
		}
		p.NextToken()
		left, err = rule.Infix(p, left)
		if err != nil {
			return nil, p.wrap(err)
		}
	}
}

// ParseExpressionList parses comma-separated expressions (implements spi.ParserOps).
func (p *Parser) ParseExpressionList() ([]*core.Node, error) {
	var exprs []*core.Node
	for {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if !p.match(token.COMMA) {
			return exprs, nil
		}
	}
}

// ParseOrderByList parses "expr [ASC|DESC], ..." (implements spi.ParserOps).
func (p *Parser) ParseOrderByList() ([]*core.Node, error) {
	var items []*core.Node
	for {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		desc := false
		if p.match(token.DESC) {
			desc = true
		} else {
			p.match(token.ASC)
		}
		items = append(items, core.New(core.KindOrdered, core.Args{core.ArgThis: expr, core.ArgDesc: desc}))
		if !p.match(token.COMMA) {
			return items, nil
		}
	}
}

// ParseIdentifier parses a plain or quoted identifier (implements spi.ParserOps).
func (p *Parser) ParseIdentifier() (*core.Node, error) {
	tok := p.token
	if tok.Type != token.IDENT {
		return nil, p.errorf(ErrUnexpectedToken, describe(tok), "identifier")
	}
	p.NextToken()
	return identFrom(tok), nil
}

// parseName parses an identifier in a position where keywords cannot
// start anything else (JSON paths, data types, parameter names).
func (p *Parser) parseName() (*core.Node, error) {
	tok := p.token
	if tok.Type != token.IDENT && !isWordToken(tok) {
		return nil, p.errorf(ErrUnexpectedToken, describe(tok), "name")
	}
	p.NextToken()
	return identFrom(tok), nil
}

func identFrom(tok token.Token) *core.Node {
	if tok.Quoted {
		return core.QuotedIdent(tok.Literal)
	}
	return core.Ident(tok.Literal)
}

// ParseDataType parses "NAME [(n [, m])]" (implements spi.ParserOps).
func (p *Parser) ParseDataType() (*core.Node, error) {
	tok := p.token
	if !isWordToken(tok) {
		return nil, p.errorf(ErrUnexpectedToken, describe(tok), "data type")
	}
	p.NextToken()

	var params []*core.Node
	if p.match(token.LPAREN) {
		list, err := p.ParseExpressionList()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(token.RPAREN); err != nil {
			return nil, err
		}
		params = list
	}
	return core.DataType(tok.Literal, params...), nil
}

// ParseQuery parses a SELECT statement (implements spi.ParserOps).
func (p *Parser) ParseQuery() (*core.Node, error) {
	return p.parseSelect()
}

// parsePrefix consults the prefix rules first, then the generic primary.
func (p *Parser) parsePrefix() (*core.Node, error) {
	if h := p.dialect.PrefixHandler(p.token.Type); h != nil {
		p.NextToken()
		n, err := h(p)
		return n, p.wrap(err)
	}
	return p.parsePrimary()
}

// parsePrimary parses literals, column references, function calls,
// parenthesized expressions and the special forms.
//
//	primary → NUMBER | STRING | HEX_STRING | NULL | TRUE | FALSE | '?' | '*'
//	        | '(' select ')' | '(' expr_list ')'
//	        | CASE ... END | CAST '(' expr AS type ')' | TRY_CAST '(' ... ')'
//	        | INTERVAL expr unit
//	        | name '(' [DISTINCT] args ')' [OVER window]
//	        | column
func (p *Parser) parsePrimary() (*core.Node, error) {
	tok := p.token

	switch tok.Type {
	case token.NUMBER:
		p.NextToken()
		return core.Number(tok.Literal), nil
	case token.STRING:
		p.NextToken()
		return core.String(tok.Literal), nil
	case token.HEX_STRING:
		p.NextToken()
		return core.New(core.KindHexString, core.Args{core.ArgThis: tok.Literal}), nil
	case token.NULL:
		p.NextToken()
		return core.Null(), nil
	case token.TRUE, token.FALSE:
		p.NextToken()
		return core.Bool(tok.Type == token.TRUE), nil
	case token.PLACEHOLDER:
		p.NextToken()
		return core.New(core.KindPlaceholder, nil), nil
	case token.STAR:
		p.NextToken()
		return core.Star(), nil
	case token.LPAREN:
		return p.parseParen()
	case token.CASE:
		return p.parseCase()
	case token.CAST:
		p.NextToken()
		return p.parseCast(core.KindCast)
	case token.INTERVAL:
		return p.parseInterval()
	}

	if isWordToken(tok) && p.peek.Type == token.LPAREN {
		if strings.EqualFold(tok.Literal, "TRY_CAST") {
			p.NextToken()
			return p.parseCast(core.KindTryCast)
		}
		return p.parseFunction()
	}
	if tok.Type == token.IDENT {
		return p.parseColumn()
	}
	return nil, p.errorf(ErrNoApplicableRule, describe(tok))
}

// parseParen parses a subquery, a parenthesized expression or a tuple.
func (p *Parser) parseParen() (*core.Node, error) {
	p.NextToken() // consume (

	if p.check(token.SELECT) {
		q, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(token.RPAREN); err != nil {
			return nil, err
		}
		return core.New(core.KindSubquery, core.Args{core.ArgThis: q}), nil
	}

	exprs, err := p.ParseExpressionList()
	if err != nil {
		return nil, err
	}
	if err := p.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	if len(exprs) == 1 {
		return core.New(core.KindParen, core.Args{core.ArgThis: exprs[0]}), nil
	}
	return core.New(core.KindTuple, core.Args{core.ArgExpressions: exprs}), nil
}

// parseColumn parses "[db.][table.]column" or "table.*".
func (p *Parser) parseColumn() (*core.Node, error) {
	parts := []*core.Node{identFrom(p.token)}
	p.NextToken()

	for p.check(token.DOT) {
		p.NextToken()
		if p.check(token.STAR) {
			p.NextToken()
			return core.New(core.KindColumn, core.Args{core.ArgThis: core.Star(), core.ArgTable: parts[len(parts)-1]}), nil
		}
		part, err := p.parseName()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	n := core.New(core.KindColumn, core.Args{core.ArgThis: parts[len(parts)-1]})
	if len(parts) > 1 {
		n.Set(core.ArgTable, parts[len(parts)-2])
	}
	if len(parts) > 2 {
		n.Set(core.ArgDB, parts[len(parts)-3])
	}
	return n, nil
}

// parseFunction parses a call and resolves it through the function rules.
// Names without a rule become Anonymous nodes.
func (p *Parser) parseFunction() (*core.Node, error) {
	name := p.token.Literal
	p.NextToken() // name
	p.NextToken() // (

	distinct := p.match(token.DISTINCT)
	var args []*core.Node
	if !p.check(token.RPAREN) {
		list, err := p.ParseExpressionList()
		if err != nil {
			return nil, err
		}
		args = list
	}
	if err := p.Expect(token.RPAREN); err != nil {
		return nil, err
	}

	var fn *core.Node
	if h := p.dialect.FunctionHandler(name); h != nil && !distinct {
		n, err := h(args)
		if err != nil {
			return nil, p.errorf("%s", err.Error())
		}
		fn = n
	} else {
		fn = core.New(core.KindAnonymous, core.Args{
			core.ArgThis:        strings.ToUpper(name),
			core.ArgExpressions: args,
			core.ArgDistinct:    distinct,
		})
	}

	if p.match(token.OVER) {
		return p.parseWindow(fn)
	}
	return fn, nil
}

// parseWindow parses "(PARTITION BY ... ORDER BY ...)" after OVER.
func (p *Parser) parseWindow(fn *core.Node) (*core.Node, error) {
	if err := p.Expect(token.LPAREN); err != nil {
		return nil, err
	}
	w := core.New(core.KindWindow, core.Args{core.ArgThis: fn})

	if p.match(token.PARTITION) {
		if err := p.Expect(token.BY); err != nil {
			return nil, err
		}
		list, err := p.ParseExpressionList()
		if err != nil {
			return nil, err
		}
		w.Set(core.ArgPartitionBy, list)
	}
	if p.match(token.ORDER) {
		if err := p.Expect(token.BY); err != nil {
			return nil, err
		}
		list, err := p.ParseOrderByList()
		if err != nil {
			return nil, err
		}
		w.Set(core.ArgOrder, list)
	}
	if err := p.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	return w, nil
}

// parseCase parses both the simple and the searched CASE form.
func (p *Parser) parseCase() (*core.Node, error) {
	p.NextToken() // CASE

	n := core.New(core.KindCase, nil)
	if !p.check(token.WHEN) {
		operand, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		n.Set(core.ArgThis, operand)
	}

	var ifs []*core.Node
	for p.match(token.WHEN) {
		cond, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(token.THEN); err != nil {
			return nil, err
		}
		result, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		ifs = append(ifs, core.New(core.KindIf, core.Args{core.ArgThis: cond, core.ArgTrue: result}))
	}
	if len(ifs) == 0 {
		return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "WHEN")
	}
	n.Set(core.ArgIfs, ifs)

	if p.match(token.ELSE) {
		def, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		n.Set(core.ArgDefault, def)
	}
	if err := p.Expect(token.END); err != nil {
		return nil, err
	}
	return n, nil
}

// parseCast parses "(expr AS type)" after CAST or TRY_CAST.
func (p *Parser) parseCast(kind core.Kind) (*core.Node, error) {
	if err := p.Expect(token.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.Expect(token.AS); err != nil {
		return nil, err
	}
	to, err := p.ParseDataType()
	if err != nil {
		return nil, err
	}
	if err := p.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	return core.New(kind, core.Args{core.ArgThis: expr, core.ArgTo: to}), nil
}

// parseInterval parses "INTERVAL value [unit]".
func (p *Parser) parseInterval() (*core.Node, error) {
	p.NextToken() // INTERVAL

	value, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	n := core.New(core.KindInterval, core.Args{core.ArgThis: value})
	if p.token.Type == token.IDENT && !p.token.Quoted {
		n.Set(core.ArgUnit, core.Var(strings.ToUpper(p.token.Literal)))
		p.NextToken()
	}
	return n, nil
}
