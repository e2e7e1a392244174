package transforms

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
)

// Transform rewrites a node. It receives a private copy and may modify it
// in place or return a different node.
type Transform func(n *core.Node) (*core.Node, error)

// Preprocess returns a render function that copies the node, runs each
// transform on the copy and renders the result. A result of the same kind
// is rendered with its default shape; anything else goes through the
// rendering table.
func Preprocess(fns ...Transform) spi.RenderFunc {
	return func(r spi.Renderer, n *core.Node) string {
		out := n.Copy()
		for _, fn := range fns {
			next, err := fn(out)
			if err != nil {
				r.AddError(fmt.Errorf("transform %s: %w", n.Kind, err))
				return ""
			}
			out = next
		}
		if out.Kind == n.Kind {
			return r.Default(out)
		}
		return r.SQL(out)
	}
}

// EliminateDistinctOn rewrites SELECT DISTINCT ON (keys) ... into a
// ROW_NUMBER() filter over a subquery:
//
//	SELECT DISTINCT ON (a) a, b FROM t ORDER BY c
//	=>
//	SELECT a, b FROM (SELECT a, b, ROW_NUMBER() OVER (PARTITION BY a ORDER BY c) AS _row_number FROM t) AS _t WHERE _row_number = 1
//
// Without ORDER BY the window is ordered by the keys. Other nodes are
// returned unchanged.
func EliminateDistinctOn(n *core.Node) (*core.Node, error) {
	if !n.Is(core.KindSelect) {
		return n, nil
	}
	distinct := n.Arg(core.ArgDistinct)
	on := distinct.Arg(core.ArgOn)
	if on == nil {
		return n, nil
	}
	keys := on.List(core.ArgExpressions)
	if len(keys) == 0 {
		keys = []*core.Node{on.This()}
	}

	taken := make(map[string]bool)
	for _, item := range n.List(core.ArgExpressions) {
		if name := outputName(item); name != "" {
			taken[name] = true
		}
	}
	rowNumber := newName(taken, "_row_number")

	var inner, outer []*core.Node
	for _, item := range n.List(core.ArgExpressions) {
		if item.Is(core.KindStar) || (item.Is(core.KindColumn) && item.This().Is(core.KindStar)) {
			inner = append(inner, item)
			outer = append(outer, core.Star())
			continue
		}
		name := outputName(item)
		if name == "" {
			name = newName(taken, "_col")
			item = core.New(core.KindAlias, core.Args{core.ArgThis: item, core.ArgAlias: core.Ident(name)})
		}
		inner = append(inner, item)
		outer = append(outer, core.Col(name, ""))
	}

	order := n.List(core.ArgOrder)
	if len(order) == 0 {
		for _, k := range keys {
			order = append(order, core.New(core.KindOrdered, core.Args{core.ArgThis: k.Copy(), core.ArgDesc: false}))
		}
	}
	window := core.New(core.KindWindow, core.Args{
		core.ArgThis:        core.New(core.KindRowNumber, nil),
		core.ArgPartitionBy: keys,
		core.ArgOrder:       order,
	})
	inner = append(inner, core.New(core.KindAlias, core.Args{core.ArgThis: window, core.ArgAlias: core.Ident(rowNumber)}))

	n.Set(core.ArgDistinct, nil)
	n.Set(core.ArgOrder, nil)
	n.Set(core.ArgExpressions, inner)

	return core.New(core.KindSelect, core.Args{
		core.ArgExpressions: outer,
		core.ArgFrom:        core.New(core.KindSubquery, core.Args{core.ArgThis: n, core.ArgAlias: core.Ident("_t")}),
		core.ArgWhere:       core.Binary(core.KindEQ, core.Col(rowNumber, ""), core.Number("1")),
	}), nil
}

// outputName returns the column name a select item produces, or "".
func outputName(item *core.Node) string {
	switch item.Kind {
	case core.KindAlias:
		return item.Arg(core.ArgAlias).Name()
	case core.KindColumn:
		if item.This().Is(core.KindStar) {
			return ""
		}
		return item.Name()
	}
	return ""
}

// newName returns base, or base_2, base_3, ... if taken, and marks it taken.
func newName(taken map[string]bool, base string) string {
	name := base
	for i := 2; taken[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}
