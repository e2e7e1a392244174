package core

import (
	"slices"
	"sort"
)

// Argument slot names.
const (
	ArgThis        = "this"
	ArgExpression  = "expression"
	ArgExpressions = "expressions"
	ArgAlias       = "alias"
	ArgTable       = "table"
	ArgDB          = "db"
	ArgQuoted      = "quoted"
	ArgIsString    = "is_string"
	ArgWrapped     = "wrapped"
	ArgUnit        = "unit"
	ArgFormat      = "format"
	ArgKind        = "kind"
	ArgTo          = "to"
	ArgDistinct    = "distinct"
	ArgFrom        = "from"
	ArgJoins       = "joins"
	ArgWhere       = "where"
	ArgGroup       = "group"
	ArgHaving      = "having"
	ArgQualify     = "qualify"
	ArgOrder       = "order"
	ArgLimit       = "limit"
	ArgOn          = "on"
	ArgSide        = "side"
	ArgDesc        = "desc"
	ArgPartitionBy = "partition_by"
	ArgReplace     = "replace"
	ArgExists      = "exists"
	ArgConstraints = "constraints"
	ArgStart       = "start"
	ArgIncrement   = "increment"
	ArgUsing       = "using"
	ArgMatched     = "matched"
	ArgSource      = "source"
	ArgCondition   = "condition"
	ArgThen        = "then"
	ArgStar        = "star"
	ArgQuery       = "query"
	ArgLow         = "low"
	ArgHigh        = "high"
	ArgIfs         = "ifs"
	ArgTrue        = "true"
	ArgDefault     = "default"
)

// Args is the argument map passed to New.
// Values are *Node, []*Node, string or bool.
type Args map[string]any

// Node is a tagged AST node: a Kind plus named argument slots.
//
// Nodes produced by the parser are shared by every pass that reads the
// tree. Code that needs a modified node must Copy it first and only call
// Set on the copy.
type Node struct {
	Kind Kind
	args map[string]any
}

// New creates a node of the given kind. Nil values are dropped.
func New(kind Kind, args Args) *Node {
	n := &Node{Kind: kind, args: make(map[string]any, len(args))}
	for k, v := range args {
		n.Set(k, v)
	}
	return n
}

// Set binds slot name to v and returns n. A nil value (including a typed
// nil *Node) clears the slot.
func (n *Node) Set(name string, v any) *Node {
	if n.args == nil {
		n.args = make(map[string]any)
	}
	switch val := v.(type) {
	case nil:
		delete(n.args, name)
	case *Node:
		if val == nil {
			delete(n.args, name)
		} else {
			n.args[name] = val
		}
	case []*Node:
		if val == nil {
			delete(n.args, name)
		} else {
			n.args[name] = val
		}
	default:
		n.args[name] = v
	}
	return n
}

// Value returns the raw value stored in a slot.
func (n *Node) Value(name string) (any, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n.args[name]
	return v, ok
}

// Has reports whether slot name holds a node, a non-empty list, a
// non-empty string or true.
func (n *Node) Has(name string) bool {
	v, ok := n.Value(name)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case *Node:
		return val != nil
	case []*Node:
		return len(val) > 0
	case string:
		return val != ""
	case bool:
		return val
	}
	return true
}

// Arg returns the child node in slot name, or nil.
func (n *Node) Arg(name string) *Node {
	v, _ := n.Value(name)
	child, _ := v.(*Node)
	return child
}

// This is shorthand for Arg(ArgThis).
func (n *Node) This() *Node { return n.Arg(ArgThis) }

// Expression is shorthand for Arg(ArgExpression).
func (n *Node) Expression() *Node { return n.Arg(ArgExpression) }

// List returns the child list in slot name. The returned slice is shared
// with the node and must not be modified.
func (n *Node) List(name string) []*Node {
	v, _ := n.Value(name)
	list, _ := v.([]*Node)
	return list
}

// Bool returns the boolean in slot name (false if absent).
func (n *Node) Bool(name string) bool {
	v, _ := n.Value(name)
	b, _ := v.(bool)
	return b
}

// Text returns the text of slot name. A string slot is returned as is; a
// child Identifier, Var, Literal or Column yields its name.
func (n *Node) Text(name string) string {
	v, ok := n.Value(name)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case *Node:
		return val.Name()
	}
	return ""
}

// Name returns the name carried by leaf-like nodes: identifiers, vars,
// literals, columns, tables and anonymous functions. Other nodes return "".
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindIdentifier, KindVar, KindLiteral, KindAnonymous, KindParameter, KindDataType:
		return n.Text(ArgThis)
	case KindColumn, KindTable:
		return n.This().Name()
	}
	return ""
}

// Is reports whether n is non-nil and of one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	return n != nil && slices.Contains(kinds, n.Kind)
}

// Slots returns the names of the slots that are set: first those declared
// for the kind, in declaration order, then any others sorted by name.
func (n *Node) Slots() []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.args))
	declared := n.Kind.ArgNames()
	for _, name := range declared {
		if _, ok := n.args[name]; ok {
			out = append(out, name)
		}
	}
	var extra []string
	for name := range n.args {
		if !slices.Contains(declared, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Children returns the direct child nodes in slot order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, name := range n.Slots() {
		switch val := n.args[name].(type) {
		case *Node:
			out = append(out, val)
		case []*Node:
			out = append(out, val...)
		}
	}
	return out
}

// Copy returns a deep copy of n. Strings and bools are values; every child
// node and every list is duplicated.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, args: make(map[string]any, len(n.args))}
	for name, v := range n.args {
		switch val := v.(type) {
		case *Node:
			c.args[name] = val.Copy()
		case []*Node:
			list := make([]*Node, len(val))
			for i, child := range val {
				list[i] = child.Copy()
			}
			c.args[name] = list
		default:
			c.args[name] = v
		}
	}
	return c
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}

// Find returns the first node of the given kind in pre-order, including n
// itself, or nil.
func (n *Node) Find(kind Kind) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if found != nil {
			return false
		}
		if x.Kind == kind {
			found = x
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node of the given kind in pre-order.
func (n *Node) FindAll(kind Kind) []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if x.Kind == kind {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Equal reports deep structural equality.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || len(n.args) != len(other.args) {
		return false
	}
	for name, v := range n.args {
		ov, ok := other.args[name]
		if !ok {
			return false
		}
		switch val := v.(type) {
		case *Node:
			on, ok := ov.(*Node)
			if !ok || !val.Equal(on) {
				return false
			}
		case []*Node:
			ol, ok := ov.([]*Node)
			if !ok || len(ol) != len(val) {
				return false
			}
			for i := range val {
				if !val[i].Equal(ol[i]) {
					return false
				}
			}
		default:
			if v != ov {
				return false
			}
		}
	}
	return true
}

// MarshalYAML renders the node as an ordered mapping for debugging dumps.
func (n *Node) MarshalYAML() (any, error) {
	out := map[string]any{"kind": n.Kind.String()}
	for _, name := range n.Slots() {
		out[name] = n.args[name]
	}
	return out, nil
}
