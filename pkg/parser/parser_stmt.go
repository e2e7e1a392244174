package parser

import (
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// ---------- SELECT ----------

// parseSelect parses a SELECT statement.
//
//	select → SELECT [DISTINCT [ON '(' expr_list ')'] | ALL] select_item (',' select_item)*
//	         [FROM table_ref join*] clause*
//
// Clauses are whatever the dialect's clause rules accept, in any order,
// each at most once.
func (p *Parser) parseSelect() (*core.Node, error) {
	if err := p.Expect(token.SELECT); err != nil {
		return nil, err
	}
	sel := core.New(core.KindSelect, nil)

	if p.match(token.DISTINCT) {
		distinct := core.New(core.KindDistinct, nil)
		if p.match(token.ON) {
			if err := p.Expect(token.LPAREN); err != nil {
				return nil, err
			}
			on, err := p.ParseExpressionList()
			if err != nil {
				return nil, err
			}
			if err := p.Expect(token.RPAREN); err != nil {
				return nil, err
			}
			distinct.Set(core.ArgOn, core.New(core.KindTuple, core.Args{core.ArgExpressions: on}))
		}
		sel.Set(core.ArgDistinct, distinct)
	} else {
		p.match(token.ALL)
	}

	var items []*core.Node
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	sel.Set(core.ArgExpressions, items)

	if p.match(token.FROM) {
		from, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		sel.Set(core.ArgFrom, from)

		var joins []*core.Node
		for p.isJoinStart() {
			join, err := p.parseJoin()
			if err != nil {
				return nil, err
			}
			joins = append(joins, join)
		}
		sel.Set(core.ArgJoins, joins)
	}

	for {
		rule, ok := p.dialect.ClauseRule(p.token.Type)
		if !ok {
			return sel, nil
		}
		if sel.Has(rule.Slot) {
			return nil, p.errorf(ErrDuplicateClause, strings.ToUpper(p.token.Literal))
		}
		p.NextToken()
		result, err := rule.Clause(p)
		if err != nil {
			return nil, p.wrap(err)
		}
		sel.Set(rule.Slot, result)
	}
}

// parseSelectItem parses "expr [[AS] alias]".
func (p *Parser) parseSelectItem() (*core.Node, error) {
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return p.parseAlias(expr)
}

// parseAlias wraps n in an Alias when an alias follows. Without AS only a
// plain identifier is taken, so clause keywords are never swallowed.
func (p *Parser) parseAlias(n *core.Node) (*core.Node, error) {
	if p.match(token.AS) {
		alias, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		return core.New(core.KindAlias, core.Args{core.ArgThis: n, core.ArgAlias: alias}), nil
	}
	if p.check(token.IDENT) {
		alias, _ := p.ParseIdentifier()
		return core.New(core.KindAlias, core.Args{core.ArgThis: n, core.ArgAlias: alias}), nil
	}
	return n, nil
}

// parseTableRef parses "[db.]table [[AS] alias]" or "(select) [[AS] alias]".
func (p *Parser) parseTableRef() (*core.Node, error) {
	if p.check(token.LPAREN) && p.peek.Type == token.SELECT {
		p.NextToken()
		q, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(token.RPAREN); err != nil {
			return nil, err
		}
		sub := core.New(core.KindSubquery, core.Args{core.ArgThis: q})
		if alias := p.parseTableAlias(); alias != nil {
			sub.Set(core.ArgAlias, alias)
		}
		return sub, nil
	}

	name, err := p.ParseIdentifier()
	if err != nil {
		return nil, err
	}
	table := core.New(core.KindTable, core.Args{core.ArgThis: name})
	if p.match(token.DOT) {
		inner, err := p.parseName()
		if err != nil {
			return nil, err
		}
		table.Set(core.ArgDB, name)
		table.Set(core.ArgThis, inner)
	}
	if alias := p.parseTableAlias(); alias != nil {
		table.Set(core.ArgAlias, alias)
	}
	return table, nil
}

// parseTableAlias parses an optional "[AS] alias" after a table reference.
func (p *Parser) parseTableAlias() *core.Node {
	if p.match(token.AS) {
		alias, err := p.ParseIdentifier()
		if err != nil {
			p.record(err)
			return nil
		}
		return alias
	}
	if p.check(token.IDENT) {
		alias, _ := p.ParseIdentifier()
		return alias
	}
	return nil
}

// isJoinStart returns true if the current token begins a join.
func (p *Parser) isJoinStart() bool {
	switch p.token.Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS:
		return true
	}
	return false
}

// parseJoin parses "[INNER | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS] JOIN table_ref [ON expr]".
func (p *Parser) parseJoin() (*core.Node, error) {
	side := ""
	switch p.token.Type {
	case token.INNER, token.CROSS:
		side = strings.ToUpper(p.token.Literal)
		p.NextToken()
	case token.LEFT, token.RIGHT, token.FULL:
		side = strings.ToUpper(p.token.Literal)
		p.NextToken()
		p.match(token.OUTER)
	}
	if err := p.Expect(token.JOIN); err != nil {
		return nil, err
	}

	table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	join := core.New(core.KindJoin, core.Args{core.ArgThis: table, core.ArgSide: side})
	if p.match(token.ON) {
		on, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		join.Set(core.ArgOn, on)
	}
	return join, nil
}

// ---------- CREATE ----------

// parseCreate parses a CREATE TABLE statement.
//
//	create → CREATE [OR REPLACE] TABLE [IF NOT EXISTS] table
//	         ( '(' column_def (',' column_def)* ')' | AS select )
func (p *Parser) parseCreate() (*core.Node, error) {
	p.NextToken() // CREATE
	create := core.New(core.KindCreate, core.Args{core.ArgKind: "TABLE"})

	if p.match(token.OR) {
		if err := p.expectWord("REPLACE"); err != nil {
			return nil, err
		}
		create.Set(core.ArgReplace, true)
	}
	if err := p.Expect(token.TABLE); err != nil {
		return nil, err
	}
	if p.checkWord("IF") && p.peek.Type == token.NOT {
		p.NextToken()
		p.NextToken()
		if err := p.Expect(token.EXISTS); err != nil {
			return nil, err
		}
		create.Set(core.ArgExists, true)
	}

	name, err := p.ParseIdentifier()
	if err != nil {
		return nil, err
	}
	table := core.New(core.KindTable, core.Args{core.ArgThis: name})
	if p.match(token.DOT) {
		inner, err := p.parseName()
		if err != nil {
			return nil, err
		}
		table.Set(core.ArgDB, name)
		table.Set(core.ArgThis, inner)
	}

	if p.match(token.AS) {
		q, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		create.Set(core.ArgThis, table)
		create.Set(core.ArgExpression, q)
		return create, nil
	}

	if err := p.Expect(token.LPAREN); err != nil {
		return nil, err
	}
	var cols []*core.Node
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if !p.match(token.COMMA) {
			break
		}
	}
	if err := p.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	create.Set(core.ArgThis, core.New(core.KindSchema, core.Args{core.ArgThis: table, core.ArgExpressions: cols}))
	return create, nil
}

// parseColumnDef parses "name type constraint*".
func (p *Parser) parseColumnDef() (*core.Node, error) {
	name, err := p.ParseIdentifier()
	if err != nil {
		return nil, err
	}
	kind, err := p.ParseDataType()
	if err != nil {
		return nil, err
	}
	col := core.New(core.KindColumnDef, core.Args{core.ArgThis: name, core.ArgKind: kind})

	var constraints []*core.Node
	for {
		c, err := p.parseColumnConstraint()
		if err != nil {
			return nil, err
		}
		if c == nil {
			break
		}
		constraints = append(constraints, c)
	}
	col.Set(core.ArgConstraints, constraints)
	return col, nil
}

// parseColumnConstraint parses one column constraint, or returns nil when
// none follows.
//
//	constraint → NOT NULL | PRIMARY KEY | DEFAULT expr
//	           | GENERATED (ALWAYS | BY DEFAULT) AS IDENTITY
//	             ['(' [START WITH n] [INCREMENT BY n] ')']
func (p *Parser) parseColumnConstraint() (*core.Node, error) {
	switch {
	case p.check(token.NOT):
		p.NextToken()
		if err := p.Expect(token.NULL); err != nil {
			return nil, err
		}
		return core.New(core.KindNotNullColumnConstraint, nil), nil

	case p.checkWord("PRIMARY"):
		p.NextToken()
		if err := p.expectWord("KEY"); err != nil {
			return nil, err
		}
		return core.New(core.KindPrimaryKeyColumnConstraint, nil), nil

	case p.checkWord("DEFAULT"):
		p.NextToken()
		expr, err := p.ParseExpressionPrec(0)
		if err != nil {
			return nil, err
		}
		return core.New(core.KindDefaultColumnConstraint, core.Args{core.ArgThis: expr}), nil

	case p.checkWord("GENERATED"):
		p.NextToken()
		return p.parseIdentity()
	}
	return nil, nil
}

// parseIdentity parses the rest of a GENERATED ... AS IDENTITY constraint.
// ArgThis is true for ALWAYS and false for BY DEFAULT.
func (p *Parser) parseIdentity() (*core.Node, error) {
	always := true
	switch {
	case p.MatchWord("ALWAYS"):
	case p.match(token.BY):
		if err := p.expectWord("DEFAULT"); err != nil {
			return nil, err
		}
		always = false
	default:
		return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "ALWAYS or BY DEFAULT")
	}
	if err := p.Expect(token.AS); err != nil {
		return nil, err
	}
	if err := p.expectWord("IDENTITY"); err != nil {
		return nil, err
	}

	c := core.New(core.KindGeneratedAsIdentityColumnConstraint, core.Args{core.ArgThis: always})
	if !p.match(token.LPAREN) {
		return c, nil
	}
	for !p.check(token.RPAREN) {
		switch {
		case p.MatchWord("START"):
			if err := p.Expect(token.WITH); err != nil {
				return nil, err
			}
			n, err := p.parseSignedNumber()
			if err != nil {
				return nil, err
			}
			c.Set(core.ArgStart, n)
		case p.MatchWord("INCREMENT"):
			if err := p.Expect(token.BY); err != nil {
				return nil, err
			}
			n, err := p.parseSignedNumber()
			if err != nil {
				return nil, err
			}
			c.Set(core.ArgIncrement, n)
		default:
			return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "START WITH or INCREMENT BY")
		}
	}
	p.NextToken() // )
	return c, nil
}

// parseSignedNumber parses "[-]NUMBER" into a numeric literal.
func (p *Parser) parseSignedNumber() (*core.Node, error) {
	sign := ""
	if p.match(token.MINUS) {
		sign = "-"
	}
	if !p.check(token.NUMBER) {
		return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "number")
	}
	n := core.Number(sign + p.token.Literal)
	p.NextToken()
	return n, nil
}

// ---------- MERGE ----------

// parseMerge parses a MERGE statement.
//
//	merge → MERGE INTO table_ref USING table_ref ON expr when+
//	when  → WHEN [NOT] MATCHED [BY (TARGET | SOURCE)] [AND expr] THEN action
func (p *Parser) parseMerge() (*core.Node, error) {
	p.NextToken() // MERGE
	if err := p.Expect(token.INTO); err != nil {
		return nil, err
	}
	target, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	if err := p.Expect(token.USING); err != nil {
		return nil, err
	}
	source, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	if err := p.Expect(token.ON); err != nil {
		return nil, err
	}
	on, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	var whens []*core.Node
	for p.check(token.WHEN) {
		when, err := p.parseWhen()
		if err != nil {
			return nil, err
		}
		whens = append(whens, when)
	}
	if len(whens) == 0 {
		return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "WHEN")
	}

	return core.New(core.KindMerge, core.Args{
		core.ArgThis:        target,
		core.ArgUsing:       source,
		core.ArgOn:          on,
		core.ArgExpressions: whens,
	}), nil
}

// parseWhen parses one MERGE action clause. The source flag is only set
// when NOT MATCHED BY TARGET or NOT MATCHED BY SOURCE is written.
func (p *Parser) parseWhen() (*core.Node, error) {
	p.NextToken() // WHEN

	matched := !p.match(token.NOT)
	if err := p.expectWord("MATCHED"); err != nil {
		return nil, err
	}
	when := core.New(core.KindWhen, core.Args{core.ArgMatched: matched})

	if !matched && p.match(token.BY) {
		switch {
		case p.MatchWord("SOURCE"):
			when.Set(core.ArgSource, true)
		case p.MatchWord("TARGET"):
			when.Set(core.ArgSource, false)
		default:
			return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "TARGET or SOURCE")
		}
	}

	if p.match(token.AND) {
		cond, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		when.Set(core.ArgCondition, cond)
	}
	if err := p.Expect(token.THEN); err != nil {
		return nil, err
	}

	action, err := p.parseMergeAction()
	if err != nil {
		return nil, err
	}
	when.Set(core.ArgThen, action)
	return when, nil
}

// parseMergeAction parses the action after THEN.
//
//	action → UPDATE SET ('*' | column '=' expr (',' column '=' expr)*)
//	       | DELETE
//	       | INSERT ('*' | ['(' columns ')'] VALUES '(' exprs ')')
func (p *Parser) parseMergeAction() (*core.Node, error) {
	switch {
	case p.match(token.UPDATE):
		if err := p.Expect(token.SET); err != nil {
			return nil, err
		}
		if p.match(token.STAR) {
			return core.New(core.KindUpdate, core.Args{core.ArgStar: true}), nil
		}
		var sets []*core.Node
		for {
			col, err := p.parseColumn()
			if err != nil {
				return nil, err
			}
			if err := p.Expect(token.EQ); err != nil {
				return nil, err
			}
			val, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			sets = append(sets, core.Binary(core.KindEQ, col, val))
			if !p.match(token.COMMA) {
				break
			}
		}
		return core.New(core.KindUpdate, core.Args{core.ArgExpressions: sets}), nil

	case p.match(token.DELETE):
		return core.New(core.KindDelete, nil), nil

	case p.match(token.INSERT):
		if p.match(token.STAR) {
			return core.New(core.KindInsert, core.Args{core.ArgStar: true}), nil
		}
		insert := core.New(core.KindInsert, nil)
		if p.match(token.LPAREN) {
			var cols []*core.Node
			for {
				col, err := p.ParseIdentifier()
				if err != nil {
					return nil, err
				}
				cols = append(cols, col)
				if !p.match(token.COMMA) {
					break
				}
			}
			if err := p.Expect(token.RPAREN); err != nil {
				return nil, err
			}
			insert.Set(core.ArgThis, core.New(core.KindTuple, core.Args{core.ArgExpressions: cols}))
		}
		if err := p.Expect(token.VALUES); err != nil {
			return nil, err
		}
		if err := p.Expect(token.LPAREN); err != nil {
			return nil, err
		}
		vals, err := p.ParseExpressionList()
		if err != nil {
			return nil, err
		}
		if err := p.Expect(token.RPAREN); err != nil {
			return nil, err
		}
		insert.Set(core.ArgExpression, core.New(core.KindTuple, core.Args{core.ArgExpressions: vals}))
		return insert, nil
	}
	return nil, p.errorf(ErrUnexpectedToken, describe(p.token), "UPDATE, DELETE or INSERT")
}
