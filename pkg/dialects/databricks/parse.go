package databricks

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// parseJSONExtract parses the path after "col:" into a JSONExtract node
// whose expression is the path as a '$.a.b[0]' string.
//
//	path    → segment ('.' key | '[' index ']')*
//	segment → key | '[' index ']'
//	index   → NUMBER | STRING | '*'
func parseJSONExtract(p spi.ParserOps, left *core.Node) (*core.Node, error) {
	var path strings.Builder
	path.WriteString("$")

	if p.Check(token.LBRACKET) {
		if err := parsePathIndex(p, &path); err != nil {
			return nil, err
		}
	} else if err := parsePathKey(p, &path); err != nil {
		return nil, err
	}

	for {
		switch {
		case p.Match(token.DOT):
			if err := parsePathKey(p, &path); err != nil {
				return nil, err
			}
		case p.Check(token.LBRACKET):
			if err := parsePathIndex(p, &path); err != nil {
				return nil, err
			}
		default:
			return core.Binary(core.KindJSONExtract, left, core.String(path.String())), nil
		}
	}
}

// parsePathKey appends ".key". Keys may be any word, including keywords.
func parsePathKey(p spi.ParserOps, path *strings.Builder) error {
	tok := p.Token()
	if tok.Quoted {
		p.NextToken()
		path.WriteString(bracketKey(tok.Literal))
		return nil
	}
	if !isWord(tok.Literal) {
		return fmt.Errorf("expected JSON path key, got %q", tok.Literal)
	}
	p.NextToken()
	path.WriteString("." + tok.Literal)
	return nil
}

// parsePathIndex appends "[n]", "['key']" or "[*]".
func parsePathIndex(p spi.ParserOps, path *strings.Builder) error {
	p.NextToken() // [
	tok := p.Token()
	switch tok.Type {
	case token.NUMBER:
		path.WriteString("[" + tok.Literal + "]")
	case token.STRING:
		path.WriteString(bracketKey(tok.Literal))
	case token.STAR:
		path.WriteString("[*]")
	default:
		return fmt.Errorf("expected JSON path index, got %q", tok.Literal)
	}
	p.NextToken()
	return p.Expect(token.RBRACKET)
}

// bracketKey renders a key as ['key'], doubling embedded quotes.
func bracketKey(key string) string {
	return "['" + strings.ReplaceAll(key, "'", "''") + "']"
}

// isWord reports whether s lexes as a single unquoted word, so it can
// follow ':' or '.' in a path without brackets.
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// parseCastOperator parses "expr::type".
func parseCastOperator(p spi.ParserOps, left *core.Node) (*core.Node, error) {
	to, err := p.ParseDataType()
	if err != nil {
		return nil, err
	}
	return core.New(core.KindCast, core.Args{core.ArgThis: left, core.ArgTo: to}), nil
}
