// Package format renders core nodes back to SQL text for a target dialect.
//
// Every node goes through the same dispatch: the dialect's rendering table
// entry for the node's kind if there is one, else the built-in shape for
// the kind, else a plain KIND_NAME(arg, ...) call built from the kind's
// argument slots.
package format

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
)

// Printer renders nodes for one target dialect. It implements spi.Renderer.
// A Printer is not safe for concurrent use; create one per call.
type Printer struct {
	dialect *dialect.Dialect
	logger  *slog.Logger
	level   UnsupportedLevel
	errs    []error

	normalize bool
	onWarn    func(detail string)
}

// NewPrinter creates a printer for dialect d.
func NewPrinter(d *dialect.Dialect, opts ...Option) *Printer {
	p := &Printer{
		dialect: d,
		logger:  slog.New(slog.DiscardHandler),
		level:   UnsupportedWarn,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dialect returns the target dialect.
func (p *Printer) Dialect() *dialect.Dialect {
	return p.dialect
}

// Err returns every error recorded while rendering, joined.
func (p *Printer) Err() error {
	return errors.Join(p.errs...)
}

// SQL renders n, consulting the rendering table first.
func (p *Printer) SQL(n *core.Node) string {
	if n == nil {
		return ""
	}
	if fn, ok := p.dialect.RenderFunc(n.Kind); ok {
		return fn(p, n)
	}
	return p.Default(n)
}

// Default renders the built-in shape of n's kind.
func (p *Printer) Default(n *core.Node) string {
	if n == nil {
		return ""
	}
	if s, ok := p.statementShape(n); ok {
		return s
	}
	if s, ok := p.expressionShape(n); ok {
		return s
	}
	return p.FunctionFallback(n)
}

// Func renders NAME(arg, ...). Nil arguments are skipped.
func (p *Printer) Func(name string, args ...*core.Node) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a != nil {
			parts = append(parts, p.SQL(a))
		}
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// Binary renders "left op right".
func (p *Printer) Binary(n *core.Node, op string) string {
	return p.SQL(n.This()) + " " + op + " " + p.SQL(n.Expression())
}

// FunctionFallback renders n as KIND_NAME(args) with the node-valued slots
// in the kind's declared order.
func (p *Printer) FunctionFallback(n *core.Node) string {
	var args []*core.Node
	for _, slot := range n.Kind.ArgNames() {
		v, ok := n.Value(slot)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case *core.Node:
			args = append(args, val)
		case []*core.Node:
			args = append(args, val...)
		}
	}
	return p.Func(n.Kind.FuncName(), args...)
}

// Identifiers returns the target dialect's identifier config.
func (p *Printer) Identifiers() core.IdentifierConfig {
	return p.dialect.Identifiers
}

// AddError records a render failure.
func (p *Printer) AddError(err error) {
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

// Unsupported reports a construct the target dialect cannot represent
// faithfully, according to the printer's UnsupportedLevel.
func (p *Printer) Unsupported(msg string) {
	switch p.level {
	case UnsupportedIgnore:
	case UnsupportedRaise:
		p.AddError(fmt.Errorf("%w: %s", ErrUnsupported, msg))
	default:
		p.logger.Warn("unsupported construct", "dialect", p.dialect.Name, "detail", msg)
		if p.onWarn != nil {
			p.onWarn(msg)
		}
	}
}

// join renders each node and joins the results with sep.
func (p *Printer) join(nodes []*core.Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = p.SQL(n)
	}
	return strings.Join(parts, sep)
}

// list renders nodes separated by commas.
func (p *Printer) list(nodes []*core.Node) string {
	return p.join(nodes, ", ")
}
