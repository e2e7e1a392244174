package format

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
)

// ErrUnsupported is wrapped by render errors raised for constructs the
// target dialect cannot express.
var ErrUnsupported = errors.New("unsupported by target dialect")

// UnsupportedLevel controls what Renderer.Unsupported does.
type UnsupportedLevel int

const (
	// UnsupportedWarn logs a warning and keeps the output.
	UnsupportedWarn UnsupportedLevel = iota
	// UnsupportedIgnore drops the report.
	UnsupportedIgnore
	// UnsupportedRaise fails the render with ErrUnsupported.
	UnsupportedRaise
)

// String returns the level name.
func (l UnsupportedLevel) String() string {
	switch l {
	case UnsupportedIgnore:
		return "ignore"
	case UnsupportedRaise:
		return "raise"
	default:
		return "warn"
	}
}

// ParseUnsupportedLevel parses "ignore", "warn" or "raise".
func ParseUnsupportedLevel(s string) (UnsupportedLevel, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return UnsupportedIgnore, nil
	case "", "warn":
		return UnsupportedWarn, nil
	case "raise":
		return UnsupportedRaise, nil
	}
	return UnsupportedWarn, fmt.Errorf("invalid unsupported level %q (want ignore, warn or raise)", s)
}

// Option configures a Printer.
type Option func(*Printer)

// WithLogger sets the logger used for unsupported-construct warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Printer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithUnsupportedLevel sets how unsupported constructs are reported.
func WithUnsupportedLevel(level UnsupportedLevel) Option {
	return func(p *Printer) {
		p.level = level
	}
}

// WithNormalize makes unquoted identifiers render in the target dialect's
// normalized case: lowercase for ANSI, case-folded for Spark.
func WithNormalize(normalize bool) Option {
	return func(p *Printer) {
		p.normalize = normalize
	}
}

// WithWarningHook calls fn with the detail of every unsupported construct
// reported at UnsupportedWarn, after it is logged. Hooks from several
// options are all called, in order.
func WithWarningHook(fn func(detail string)) Option {
	return func(p *Printer) {
		prev := p.onWarn
		p.onWarn = func(detail string) {
			if prev != nil {
				prev(detail)
			}
			fn(detail)
		}
	}
}

// SQL renders a single node for dialect d.
func SQL(n *core.Node, d *dialect.Dialect, opts ...Option) (string, error) {
	if d == nil {
		return "", dialect.ErrDialectRequired
	}
	p := NewPrinter(d, opts...)
	out := p.SQL(n)
	if err := p.Err(); err != nil {
		return "", fmt.Errorf("render %s for %s: %w", n.Kind, d.Name, err)
	}
	return out, nil
}

// Statements renders each statement for dialect d.
func Statements(stmts []*core.Node, d *dialect.Dialect, opts ...Option) ([]string, error) {
	out := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		s, err := SQL(stmt, d, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
