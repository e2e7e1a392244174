package databricks

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/spi"
	"github.com/leapstack-labs/sqldialect/pkg/transforms"
)

// unit returns the node's unit as a bare word, or nil.
func unit(n *core.Node) *core.Node {
	if u := n.Text(core.ArgUnit); u != "" {
		return core.Var(u)
	}
	return nil
}

// renderDateDelta renders DATEADD(unit, expression, this) or
// DATEDIFF(unit, expression, this).
func renderDateDelta(r spi.Renderer, n *core.Node) string {
	name := "DATEADD"
	if n.Is(core.KindDateDiff) {
		name = "DATEDIFF"
	}
	u := unit(n)
	if u == nil {
		u = core.Var("DAY")
	}
	return r.Func(name, u, n.Expression(), n.This())
}

func renderDatetimeAdd(r spi.Renderer, n *core.Node) string {
	return r.Func("TIMESTAMPADD", unit(n), n.Expression(), n.This())
}

// renderDatetimeSub renders subtraction as TIMESTAMPADD of the negated
// amount.
func renderDatetimeSub(r spi.Renderer, n *core.Node) string {
	negated := core.Binary(core.KindMul, n.Expression().Copy(), core.Number("-1"))
	return r.Func("TIMESTAMPADD", unit(n), negated, n.This())
}

func renderDatetimeDiff(r spi.Renderer, n *core.Node) string {
	return r.Func("TIMESTAMPDIFF", unit(n), n.Expression(), n.This())
}

// renderTimestampTrunc renders DATE_TRUNC('unit', this), defaulting to 'day'.
func renderTimestampTrunc(r spi.Renderer, n *core.Node) string {
	u := n.Text(core.ArgUnit)
	if u == "" {
		u = "day"
	}
	return r.Func("DATE_TRUNC", core.String(u), n.This())
}

// renderJSONExtract renders col:path. Paths that are not '$'-rooted string
// literals fall back to GET_JSON_OBJECT.
func renderJSONExtract(r spi.Renderer, n *core.Node) string {
	path := n.Expression()
	var segs []pathSegment
	ok := path.IsString()
	if ok {
		segs, ok = splitJSONPath(path.Text(core.ArgThis))
	}
	if !ok {
		return r.Func("GET_JSON_OBJECT", n.This(), path)
	}

	var b strings.Builder
	b.WriteString(r.SQL(n.This()))
	b.WriteString(":")
	for i, seg := range segs {
		switch {
		case seg.index != "":
			b.WriteString("[" + seg.index + "]")
		case seg.bracketed || !isWord(seg.key):
			b.WriteString(bracketKey(seg.key))
		default:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(seg.key)
		}
	}
	return b.String()
}

// pathSegment is one step of a JSON path: a key, or an index ("0", "*").
type pathSegment struct {
	key       string
	index     string
	bracketed bool
}

// splitJSONPath splits a path such as $.a['b c'][0] into segments. It
// reports false for anything that is not a '$'-rooted path with at least
// one segment.
func splitJSONPath(path string) ([]pathSegment, bool) {
	rest, ok := strings.CutPrefix(path, "$")
	if !ok {
		return nil, false
	}
	var segs []pathSegment
	for rest != "" {
		switch {
		case rest[0] == '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			if end == 0 {
				return nil, false
			}
			segs = append(segs, pathSegment{key: rest[:end]})
			rest = rest[end:]

		case strings.HasPrefix(rest, "['"):
			key, n, ok := readBracketKey(rest[2:])
			if !ok {
				return nil, false
			}
			segs = append(segs, pathSegment{key: key, bracketed: true})
			rest = rest[2+n:]

		case rest[0] == '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			index := rest[1:end]
			if index != "*" && !isIndex(index) {
				return nil, false
			}
			segs = append(segs, pathSegment{index: index})
			rest = rest[end+1:]

		default:
			return nil, false
		}
	}
	return segs, len(segs) > 0
}

// readBracketKey reads a quoted key up to and including its closing "']",
// where '' stands for a quote. It returns the key and the bytes consumed.
func readBracketKey(s string) (string, int, bool) {
	var key strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\'' {
			key.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			key.WriteByte('\'')
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == ']' {
			return key.String(), i + 2, true
		}
		return "", 0, false
	}
	return "", 0, false
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// renderColumnDef renders an identity column with an integer type as BIGINT,
// the only type Databricks accepts for identity columns.
func renderColumnDef(r spi.Renderer, n *core.Node) string {
	if n.Find(core.KindGeneratedAsIdentityColumnConstraint) != nil && n.Arg(core.ArgKind).IsIntegerType() {
		n = n.Copy()
		n.Set(core.ArgKind, core.DataType("BIGINT"))
	}
	return r.Default(n)
}

// renderIdentity always renders GENERATED ALWAYS AS IDENTITY.
func renderIdentity(r spi.Renderer, n *core.Node) string {
	n = n.Copy()
	n.Set(core.ArgThis, true)
	return r.Default(n)
}

// renderMerge orders the action clauses as Databricks requires: MATCHED,
// then NOT MATCHED [BY TARGET], then NOT MATCHED BY SOURCE, with the
// conditioned clauses of each group first.
func renderMerge(r spi.Renderer, n *core.Node) string {
	buckets, err := transforms.BucketMergeClauses(n.List(core.ArgExpressions))
	if err != nil {
		r.AddError(err)
		return ""
	}
	for _, g := range buckets.Unconditioned() {
		r.Unsupported(fmt.Sprintf("MERGE has several %s clauses without a condition; only the last may omit it", g.Group()))
	}
	return r.Merge(n, buckets.Ordered())
}
