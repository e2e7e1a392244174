// Package dialect provides the Dialect Descriptor: the lexing, parsing and
// rendering tables of a SQL dialect, built by overriding a parent dialect.
//
// This package contains the public contract for dialect definitions used by
// the parser and the printer. Concrete dialect implementations are
// registered from pkg/dialects/*/ packages.
package dialect

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/override"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// HexStringPrefix is the lexing table spelling that enables X'..' hex
// string literals.
const HexStringPrefix = "X'"

// TriggerKind says in which syntactic position a parse rule fires.
type TriggerKind uint8

// Trigger kinds.
const (
	TriggerPrefix TriggerKind = iota + 1
	TriggerInfix
	TriggerFunction
	TriggerClause
)

// String returns the trigger kind name.
func (k TriggerKind) String() string {
	switch k {
	case TriggerPrefix:
		return "prefix"
	case TriggerInfix:
		return "infix"
	case TriggerFunction:
		return "function"
	case TriggerClause:
		return "clause"
	default:
		return "unknown"
	}
}

// ParseKey identifies a parsing table entry: a token in prefix, infix or
// clause position, or an upper-cased function name.
type ParseKey struct {
	Trigger TriggerKind
	Token   token.TokenType
	Name    string
}

// PrefixKey keys a rule for t in prefix position.
func PrefixKey(t token.TokenType) ParseKey { return ParseKey{Trigger: TriggerPrefix, Token: t} }

// InfixKey keys a rule for t in infix position.
func InfixKey(t token.TokenType) ParseKey { return ParseKey{Trigger: TriggerInfix, Token: t} }

// ClauseKey keys a rule for the SELECT clause introduced by t.
func ClauseKey(t token.TokenType) ParseKey { return ParseKey{Trigger: TriggerClause, Token: t} }

// FunctionKey keys a rule for a function call by name.
func FunctionKey(name string) ParseKey {
	return ParseKey{Trigger: TriggerFunction, Name: strings.ToUpper(name)}
}

// String returns a readable form, e.g. "infix(=)" or "function(DATEADD)".
func (k ParseKey) String() string {
	if k.Trigger == TriggerFunction {
		return fmt.Sprintf("function(%s)", k.Name)
	}
	return fmt.Sprintf("%s(%s)", k.Trigger, k.Token)
}

// ParseRule is a parsing table value. Exactly one handler is set, matching
// the key's trigger kind.
type ParseRule struct {
	Precedence int                 // infix binding power
	Prefix     spi.PrefixHandler   // TriggerPrefix
	Infix      spi.InfixHandler    // TriggerInfix
	Function   spi.FunctionHandler // TriggerFunction
	Clause     spi.ClauseHandler   // TriggerClause
	Slot       string              // Select slot that receives a clause result
}

// LayerStats counts the overrides a dialect declared for one table.
type LayerStats struct {
	Upserts   int
	Deletions int
}

// Dialect represents a SQL dialect: its identifier rules plus three
// override tables. A Dialect is immutable once built.
type Dialect struct {
	Name        string
	Parent      *Dialect
	Identifiers core.IdentifierConfig

	lexing    *override.Table[string, token.TokenType]
	parsing   *override.Table[ParseKey, ParseRule]
	rendering *override.Table[core.Kind, spi.RenderFunc]

	maxSymbolLen int

	lexStats, parseStats, renderStats LayerStats
}

// ---------- Lexing ----------

// LookupSpelling returns the token kind for a keyword (case-insensitive) or
// symbol spelling.
func (d *Dialect) LookupSpelling(spelling string) (token.TokenType, bool) {
	return d.lexing.Lookup(strings.ToUpper(spelling))
}

// MaxSymbolLen is the length of the longest non-word spelling in the
// lexing table.
func (d *Dialect) MaxSymbolLen() int {
	return d.maxSymbolLen
}

// HexStrings reports whether X'..' literals are recognized.
func (d *Dialect) HexStrings() bool {
	return d.lexing.Has(HexStringPrefix)
}

// LexingTable returns the effective lexing table.
func (d *Dialect) LexingTable() *override.Table[string, token.TokenType] {
	return d.lexing
}

// ---------- Parsing ----------

// Rule returns the parsing table entry for key.
func (d *Dialect) Rule(key ParseKey) (ParseRule, bool) {
	return d.parsing.Lookup(key)
}

// PrefixHandler returns the prefix handler for t, or nil.
func (d *Dialect) PrefixHandler(t token.TokenType) spi.PrefixHandler {
	r, _ := d.Rule(PrefixKey(t))
	return r.Prefix
}

// InfixRule returns the infix rule for t.
func (d *Dialect) InfixRule(t token.TokenType) (ParseRule, bool) {
	r, ok := d.Rule(InfixKey(t))
	if !ok || r.Infix == nil {
		return ParseRule{}, false
	}
	return r, true
}

// Precedence returns the infix binding power of t.
// Returns 0 (PrecedenceNone) if t is not an infix operator in this dialect.
func (d *Dialect) Precedence(t token.TokenType) int {
	if r, ok := d.InfixRule(t); ok {
		return r.Precedence
	}
	return spi.PrecedenceNone
}

// FunctionHandler returns the handler for the named function, or nil.
func (d *Dialect) FunctionHandler(name string) spi.FunctionHandler {
	r, _ := d.Rule(FunctionKey(name))
	return r.Function
}

// ClauseRule returns the SELECT clause rule introduced by t.
func (d *Dialect) ClauseRule(t token.TokenType) (ParseRule, bool) {
	r, ok := d.Rule(ClauseKey(t))
	if !ok || r.Clause == nil {
		return ParseRule{}, false
	}
	return r, true
}

// IsClauseToken returns true if this dialect supports the given clause token.
func (d *Dialect) IsClauseToken(t token.TokenType) bool {
	_, ok := d.ClauseRule(t)
	return ok
}

// ParsingTable returns the effective parsing table.
func (d *Dialect) ParsingTable() *override.Table[ParseKey, ParseRule] {
	return d.parsing
}

// ---------- Rendering ----------

// RenderFunc returns the rendering table entry for kind.
func (d *Dialect) RenderFunc(kind core.Kind) (spi.RenderFunc, bool) {
	return d.rendering.Lookup(kind)
}

// RenderingTable returns the effective rendering table.
func (d *Dialect) RenderingTable() *override.Table[core.Kind, spi.RenderFunc] {
	return d.rendering
}

// ---------- Inspection ----------

// Chain returns the dialect names from the root to d.
func (d *Dialect) Chain() []string {
	var chain []string
	for cur := d; cur != nil; cur = cur.Parent {
		chain = append([]string{cur.Name}, chain...)
	}
	return chain
}

// Overrides returns how many upserts and deletions d declared on each
// table, in lexing, parsing, rendering order.
func (d *Dialect) Overrides() (lexing, parsing, rendering LayerStats) {
	return d.lexStats, d.parseStats, d.renderStats
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	return d.Identifiers.QuoteIdentifier(name)
}

// NormalizeName applies the dialect's normalization to an unquoted name.
func (d *Dialect) NormalizeName(name string) string {
	return d.Identifiers.NormalizeName(name)
}

// ---------- Builder ----------

// Builder provides a fluent API for constructing dialects. Every method
// records an override; nothing touches the parent until Build, and Build
// never mutates it.
type Builder struct {
	name        string
	parent      *Dialect
	identifiers core.IdentifierConfig

	lex    override.Layer[string, token.TokenType]
	parse  override.Layer[ParseKey, ParseRule]
	render override.Layer[core.Kind, spi.RenderFunc]
}

// NewDialect creates a builder for a root dialect with empty tables.
func NewDialect(name string) *Builder {
	return &Builder{
		name: name,
		identifiers: core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormLowercase,
		},
	}
}

// Extend creates a builder for a dialect that inherits parent's tables and
// identifier rules.
func Extend(parent *Dialect, name string) *Builder {
	b := NewDialect(name)
	if parent != nil {
		b.parent = parent
		b.identifiers = parent.Identifiers
	}
	return b
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// Token maps a keyword or symbol spelling to a token kind.
func (b *Builder) Token(spelling string, t token.TokenType) *Builder {
	b.lex.Upserts = append(b.lex.Upserts, override.Entry[string, token.TokenType]{Key: strings.ToUpper(spelling), Value: t})
	return b
}

// Tokens maps several spellings at once.
func (b *Builder) Tokens(t map[string]token.TokenType) *Builder {
	for spelling, tt := range t {
		b.Token(spelling, tt)
	}
	return b
}

// DeleteToken removes a spelling inherited from the parent.
func (b *Builder) DeleteToken(spellings ...string) *Builder {
	for _, s := range spellings {
		b.lex.Deletions = append(b.lex.Deletions, strings.ToUpper(s))
	}
	return b
}

func (b *Builder) rule(key ParseKey, rule ParseRule) *Builder {
	b.parse.Upserts = append(b.parse.Upserts, override.Entry[ParseKey, ParseRule]{Key: key, Value: rule})
	return b
}

// Prefix registers a handler for t in prefix position.
func (b *Builder) Prefix(t token.TokenType, h spi.PrefixHandler) *Builder {
	return b.rule(PrefixKey(t), ParseRule{Prefix: h})
}

// Infix registers an infix operator with its precedence.
func (b *Builder) Infix(t token.TokenType, precedence int, h spi.InfixHandler) *Builder {
	return b.rule(InfixKey(t), ParseRule{Precedence: precedence, Infix: h})
}

// Function registers a builder for calls to the named function.
func (b *Builder) Function(name string, h spi.FunctionHandler) *Builder {
	return b.rule(FunctionKey(name), ParseRule{Function: h})
}

// Clause registers a SELECT clause. The handler result is stored in slot.
func (b *Builder) Clause(def ClauseDef) *Builder {
	return b.rule(ClauseKey(def.Token), ParseRule{Clause: def.Handler, Slot: def.Slot})
}

// DeleteParse removes inherited parsing rules.
func (b *Builder) DeleteParse(keys ...ParseKey) *Builder {
	b.parse.Deletions = append(b.parse.Deletions, keys...)
	return b
}

// Render registers the rendering of kind.
func (b *Builder) Render(kind core.Kind, fn spi.RenderFunc) *Builder {
	b.render.Upserts = append(b.render.Upserts, override.Entry[core.Kind, spi.RenderFunc]{Key: kind, Value: fn})
	return b
}

// DeleteRender removes inherited renderings, restoring the printer's
// built-in shape for those kinds.
func (b *Builder) DeleteRender(kinds ...core.Kind) *Builder {
	b.render.Deletions = append(b.render.Deletions, kinds...)
	return b
}

// Build returns the constructed dialect. The parent's tables are copied,
// the recorded upserts applied in order, then the deletions.
func (b *Builder) Build() *Dialect {
	d := &Dialect{
		Name:        b.name,
		Parent:      b.parent,
		Identifiers: b.identifiers,
		lexStats:    LayerStats{Upserts: len(b.lex.Upserts), Deletions: len(b.lex.Deletions)},
		parseStats:  LayerStats{Upserts: len(b.parse.Upserts), Deletions: len(b.parse.Deletions)},
		renderStats: LayerStats{Upserts: len(b.render.Upserts), Deletions: len(b.render.Deletions)},
	}
	if p := b.parent; p != nil {
		d.lexing = b.lex.Apply(p.lexing)
		d.parsing = b.parse.Apply(p.parsing)
		d.rendering = b.render.Apply(p.rendering)
	} else {
		d.lexing = b.lex.Apply(nil)
		d.parsing = b.parse.Apply(nil)
		d.rendering = b.render.Apply(nil)
	}

	for spelling := range d.lexing.All() {
		if isWordSpelling(spelling) || spelling == HexStringPrefix {
			continue
		}
		d.maxSymbolLen = max(d.maxSymbolLen, len(spelling))
	}
	return d
}

// isWordSpelling reports whether s is lexed as a word rather than a symbol.
func isWordSpelling(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
