// Package parser provides table-driven SQL parsing.
//
// # Usage
//
//	stmts, err := parser.Parse("SELECT a, b FROM t", d)
//	if err != nil {
//	    // handle error
//	}
//
// The parser requires a dialect. Use the dialect registry to get one by
// name:
//
//	d, err := dialect.Lookup("databricks")
//	stmts, err := parser.Parse(sql, d)
//
// # Grammar Overview
//
//	script        → statement (';' statement)* [';']
//	statement     → select | create | merge
//	select        → SELECT [DISTINCT [ON (expr_list)]] select_list
//	                [FROM table_ref join*] clause*
//	create        → CREATE [OR REPLACE] TABLE [IF NOT EXISTS] name (column_def, ...)
//	merge         → MERGE INTO table USING table ON expr when+
//
// Every token the lexer produces comes from the dialect's lexing table;
// operators, functions and SELECT clauses come from its parsing table.
// See each file for detailed grammar rules for that section.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// Parser parses SQL into core nodes.
type Parser struct {
	lexer   *Lexer
	token   token.Token // current token
	peek    token.Token // lookahead token
	errors  []error
	dialect *dialect.Dialect // required
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string, d *dialect.Dialect) *Parser {
	p := &Parser{
		lexer:   NewLexer(sql, d),
		dialect: d,
	}
	// Read two tokens to initialize current and peek
	p.NextToken()
	p.NextToken()
	return p
}

// Parse parses every statement in sql using dialect d.
func Parse(sql string, d *dialect.Dialect) ([]*core.Node, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := NewParser(sql, d)
	stmts := p.parseScript()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return stmts, nil
}

// ParseOne parses sql, which must hold exactly one statement.
func ParseOne(sql string, d *dialect.Dialect) (*core.Node, error) {
	stmts, err := Parse(sql, d)
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("expected one statement, got %d", len(stmts))
	}
	return stmts[0], nil
}

// ParseExpr parses a standalone expression.
func ParseExpr(sql string, d *dialect.Dialect) (*core.Node, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := NewParser(sql, d)
	expr, err := p.ParseExpression()
	p.record(err)
	if err == nil && !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "end of input"))
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() *dialect.Dialect {
	return p.dialect
}

// Err returns the first lexical or parse error, if any. Lexical errors
// come first because they usually cause the parse errors.
func (p *Parser) Err() error {
	if len(p.lexer.Errors) > 0 {
		return p.lexer.Errors[0]
	}
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return nil
}

// Errors returns every error collected so far.
func (p *Parser) Errors() []error {
	out := make([]error, 0, len(p.lexer.Errors)+len(p.errors))
	for _, e := range p.lexer.Errors {
		out = append(out, e)
	}
	return append(out, p.errors...)
}

// parseScript parses statements separated by semicolons.
func (p *Parser) parseScript() []*core.Node {
	var stmts []*core.Node
	for {
		for p.match(token.SEMICOLON) {
		}
		if p.check(token.EOF) {
			return stmts
		}
		stmt, err := p.parseStatement()
		if err != nil {
			p.record(err)
			return stmts
		}
		stmts = append(stmts, stmt)
		if !p.check(token.SEMICOLON) && !p.check(token.EOF) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "';' or end of input"))
			return stmts
		}
	}
}

// parseStatement dispatches on the leading keyword.
func (p *Parser) parseStatement() (*core.Node, error) {
	switch p.token.Type {
	case token.SELECT:
		return p.parseSelect()
	case token.CREATE:
		return p.parseCreate()
	case token.MERGE:
		return p.parseMerge()
	}
	return nil, p.errorf(ErrUnsupportedStatement, describe(p.token))
}

// ---------- Token Helpers ----------

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.NextToken()
		return true
	}
	return false
}

// checkWord reports whether the current token is the given word. Soft
// keywords are matched by spelling whatever kind the lexing table gave them.
func (p *Parser) checkWord(word string) bool {
	return isWordToken(p.token) && strings.EqualFold(p.token.Literal, word)
}

// isWordToken reports whether tok was lexed from an unquoted word.
func isWordToken(tok token.Token) bool {
	if tok.Quoted || tok.Literal == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(tok.Literal)
	return r == '_' || isLetter(r)
}

// errorf creates a ParseError at the current token.
func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Pos: p.token.Pos, Message: fmt.Sprintf(format, args...)}
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// record stores err, positioning it at the current token unless it
// already carries a position.
func (p *Parser) record(err error) {
	if err == nil {
		return
	}
	var pe *ParseError
	var le *LexError
	if errors.As(err, &pe) || errors.As(err, &le) {
		p.errors = append(p.errors, err)
		return
	}
	p.addError(err.Error())
}

// wrap turns a handler error into a positioned error.
func (p *Parser) wrap(err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	var le *LexError
	if errors.As(err, &pe) || errors.As(err, &le) {
		return err
	}
	return p.errorf("%s", err.Error())
}

// ---------- spi.ParserOps Implementation ----------
// These methods implement the spi.ParserOps interface for dialect handlers.

// Token returns the current token (implements spi.ParserOps).
func (p *Parser) Token() token.Token {
	return p.token
}

// Peek returns the lookahead token (implements spi.ParserOps).
func (p *Parser) Peek() token.Token {
	return p.peek
}

// NextToken advances to the next token (implements spi.ParserOps).
func (p *Parser) NextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// Match consumes the current token if it matches (implements spi.ParserOps).
func (p *Parser) Match(t token.TokenType) bool {
	return p.match(t)
}

// Check returns true if the current token matches (implements spi.ParserOps).
func (p *Parser) Check(t token.TokenType) bool {
	return p.check(t)
}

// Expect consumes the current token or returns a positioned error
// (implements spi.ParserOps).
func (p *Parser) Expect(t token.TokenType) error {
	if p.match(t) {
		return nil
	}
	return p.errorf(ErrUnexpectedToken, describe(p.token), t)
}

// CheckWord reports whether the current token is a soft keyword
// (implements spi.ParserOps).
func (p *Parser) CheckWord(word string) bool {
	return p.checkWord(word)
}

// MatchWord consumes a soft keyword (implements spi.ParserOps).
func (p *Parser) MatchWord(word string) bool {
	if p.checkWord(word) {
		p.NextToken()
		return true
	}
	return false
}

// expectWord consumes a soft keyword or returns a positioned error.
func (p *Parser) expectWord(word string) error {
	if p.MatchWord(word) {
		return nil
	}
	return p.errorf(ErrUnexpectedToken, describe(p.token), word)
}

// AddError records an error at the current position (implements spi.ParserOps).
func (p *Parser) AddError(msg string) {
	p.addError(msg)
}

// Position returns the current token position (implements spi.ParserOps).
func (p *Parser) Position() token.Position {
	return p.token.Pos
}
