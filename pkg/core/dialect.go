package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase.
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
	// NormCaseInsensitive normalizes to lowercase for comparison (Spark, Databricks).
	NormCaseInsensitive
)

// String returns the strategy name.
func (s NormalizationStrategy) String() string {
	switch s {
	case NormLowercase:
		return "lowercase"
	case NormUppercase:
		return "uppercase"
	case NormCaseSensitive:
		return "case_sensitive"
	case NormCaseInsensitive:
		return "case_insensitive"
	default:
		return "unknown"
	}
}

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: " or `
	QuoteEnd      string                // End quote character (usually same as Quote)
	Escape        string                // Escape sequence for QuoteEnd inside a name: "" or ``
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// QuoteIdentifier quotes name with the configured quote characters,
// escaping any embedded end quote.
func (c IdentifierConfig) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, c.QuoteEnd, c.Escape)
	return c.Quote + escaped + c.QuoteEnd
}

// NormalizeName applies the normalization strategy to an unquoted name.
// Case-insensitive dialects fold the name, so "Straße" and "STRASSE" compare
// equal. Casers are stateful, so each call builds its own.
func (c IdentifierConfig) NormalizeName(name string) string {
	switch c.Normalization {
	case NormUppercase:
		return cases.Upper(language.Und).String(name)
	case NormCaseSensitive:
		return name
	case NormCaseInsensitive:
		return cases.Fold().String(name)
	default:
		return cases.Lower(language.Und).String(name)
	}
}
