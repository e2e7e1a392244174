package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// Lexer tokenizes SQL input. Which words are keywords and which symbols
// exist is decided by the dialect's lexing table.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	dialect *dialect.Dialect

	// Errors collected during lexing (unterminated literals)
	Errors []*LexError
}

// NewLexer creates a new dialect-aware Lexer for the given input.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		col:     0,
		dialect: d,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	switch {
	case l.ch == '\n':
		l.line++
		l.col = 0
	case !utf8.RuneStart(l.ch):
		// continuation bytes share the column of their rune
	default:
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentRune decodes the rune starting at the current position.
func (l *Lexer) currentRune() (rune, int) {
	if l.atEOF() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

// advance moves past n bytes.
func (l *Lexer) advance(n int) {
	for range n {
		l.readChar()
	}
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

func (l *Lexer) addError(pos token.Position, msg string) {
	l.Errors = append(l.Errors, &LexError{Pos: pos, Message: msg})
}

// atEOF reports whether the whole input has been consumed. A NUL byte
// inside the input is not EOF.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	r, width := l.currentRune()

	switch {
	case (l.ch == 'X' || l.ch == 'x') && l.peekChar() == '\'' && l.dialect.HexStrings():
		l.readChar() // skip X
		lit, ok := l.readQuoted('\'')
		if !ok {
			l.addError(pos, ErrUnterminatedString)
		}
		return token.Token{Type: token.HEX_STRING, Literal: lit, Pos: pos}

	case isLetter(r) || r == '_':
		word := l.readIdentifier()
		tt, ok := l.dialect.LookupSpelling(word)
		if !ok {
			tt = token.IDENT
		}
		return token.Token{Type: tt, Literal: word, Pos: pos}

	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}

	case l.ch == '\'':
		lit, ok := l.readQuoted('\'')
		if !ok {
			l.addError(pos, ErrUnterminatedString)
		}
		return token.Token{Type: token.STRING, Literal: lit, Pos: pos}

	case l.isQuoteStart():
		lit, ok := l.readQuoted(l.dialect.Identifiers.QuoteEnd[0])
		if !ok {
			l.addError(pos, ErrUnterminatedIdent)
		}
		return token.Token{Type: token.IDENT, Literal: lit, Pos: pos, Quoted: true}
	}

	if tok, ok := l.matchSymbol(pos); ok {
		return tok
	}

	lit := l.input[l.pos : l.pos+width]
	l.advance(width)
	return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos}
}

// isQuoteStart reports whether the current char opens a quoted identifier.
func (l *Lexer) isQuoteStart() bool {
	q := l.dialect.Identifiers.Quote
	return q != "" && l.dialect.Identifiers.QuoteEnd != "" && l.ch == q[0]
}

// matchSymbol returns the longest symbol spelling in the lexing table that
// matches at the current position (e.g., "::" before ":").
func (l *Lexer) matchSymbol(pos token.Position) (token.Token, bool) {
	remaining := l.input[l.pos:]
	for n := min(l.dialect.MaxSymbolLen(), len(remaining)); n > 0; n-- {
		symbol := remaining[:n]
		tt, ok := l.dialect.LookupSpelling(symbol)
		if !ok {
			continue
		}
		l.advance(n)
		return token.Token{Type: tt, Literal: symbol, Pos: pos}, true
	}
	return token.Token{}, false
}

// skipWhitespaceAndComments skips whitespace, line comments and block
// comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		switch {
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// skipBlockComment skips a /* ... */ comment.
func (l *Lexer) skipBlockComment() {
	startPos := l.currentPos()
	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			return
		}
		l.readChar()
	}
	l.addError(startPos, ErrUnterminatedComment)
}

// readQuoted reads a literal delimited by the current char and closer.
// A doubled closer is an escape: 'it''s' -> it's. Returns false when the
// input ends before the closer.
func (l *Lexer) readQuoted(closer byte) (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for !l.atEOF() {
		if l.ch == closer {
			if l.peekChar() == closer {
				result.WriteByte(closer)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String(), true
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return result.String(), false
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for {
		r, width := l.currentRune()
		if !isLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance(width)
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent part (e.g., 1e10, 1E-5)
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if r is a Unicode letter.
func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

// isDigit returns true if ch is an ASCII digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with EOF. The first
// lexical error, if any, is returned alongside the tokens.
func Tokenize(input string, d *dialect.Dialect) ([]token.Token, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	l := NewLexer(input, d)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if len(l.Errors) > 0 {
		return tokens, l.Errors[0]
	}
	return tokens, nil
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case token.STRING:
		return fmt.Sprintf("string '%s'", tok.Literal)
	case token.ILLEGAL:
		return fmt.Sprintf(ErrIllegalCharacter, tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}
