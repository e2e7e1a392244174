package format

import (
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
)

// statementShape renders statements and their structural parts.
func (p *Printer) statementShape(n *core.Node) (string, bool) {
	switch n.Kind {
	case core.KindSelect:
		return p.selectSQL(n), true
	case core.KindDistinct:
		if on := n.Arg(core.ArgOn); on != nil {
			return "DISTINCT ON " + p.SQL(on), true
		}
		return "DISTINCT", true
	case core.KindTable:
		return p.tableSQL(n), true
	case core.KindSubquery:
		return "(" + p.SQL(n.This()) + ")" + p.aliasSuffix(n), true
	case core.KindJoin:
		return p.joinSQL(n), true
	case core.KindOrdered:
		if n.Bool(core.ArgDesc) {
			return p.SQL(n.This()) + " DESC", true
		}
		return p.SQL(n.This()), true
	case core.KindWindow:
		return p.windowSQL(n), true

	case core.KindCreate:
		return p.createSQL(n), true
	case core.KindSchema:
		return p.SQL(n.This()) + " (" + p.list(n.List(core.ArgExpressions)) + ")", true
	case core.KindColumnDef:
		return p.columnDefSQL(n), true
	case core.KindDataType:
		if params := n.List(core.ArgExpressions); len(params) > 0 {
			return n.Text(core.ArgThis) + "(" + p.list(params) + ")", true
		}
		return n.Text(core.ArgThis), true
	case core.KindNotNullColumnConstraint:
		return "NOT NULL", true
	case core.KindPrimaryKeyColumnConstraint:
		return "PRIMARY KEY", true
	case core.KindDefaultColumnConstraint:
		return "DEFAULT " + p.SQL(n.This()), true
	case core.KindGeneratedAsIdentityColumnConstraint:
		return p.identitySQL(n), true

	case core.KindMerge:
		return p.Merge(n, n.List(core.ArgExpressions)), true
	case core.KindWhen:
		return p.whenSQL(n), true
	case core.KindUpdate:
		if n.Bool(core.ArgStar) {
			return "UPDATE SET *", true
		}
		return "UPDATE SET " + p.list(n.List(core.ArgExpressions)), true
	case core.KindInsert:
		return p.insertSQL(n), true
	case core.KindDelete:
		return "DELETE", true
	}
	return "", false
}

// ---------- SELECT ----------

func (p *Printer) selectSQL(n *core.Node) string {
	var b strings.Builder
	b.WriteString("SELECT")
	if d := n.Arg(core.ArgDistinct); d != nil {
		b.WriteString(" " + p.SQL(d))
	}
	b.WriteString(" " + p.list(n.List(core.ArgExpressions)))

	if from := n.Arg(core.ArgFrom); from != nil {
		b.WriteString(" FROM " + p.SQL(from))
	}
	for _, j := range n.List(core.ArgJoins) {
		b.WriteString(" " + p.SQL(j))
	}
	if w := n.Arg(core.ArgWhere); w != nil {
		b.WriteString(" WHERE " + p.SQL(w))
	}
	if g := n.List(core.ArgGroup); len(g) > 0 {
		b.WriteString(" GROUP BY " + p.list(g))
	}
	if h := n.Arg(core.ArgHaving); h != nil {
		b.WriteString(" HAVING " + p.SQL(h))
	}
	if q := n.Arg(core.ArgQualify); q != nil {
		b.WriteString(" QUALIFY " + p.SQL(q))
	}
	if o := n.List(core.ArgOrder); len(o) > 0 {
		b.WriteString(" ORDER BY " + p.list(o))
	}
	if l := n.Arg(core.ArgLimit); l != nil {
		b.WriteString(" LIMIT " + p.SQL(l))
	}
	return b.String()
}

func (p *Printer) tableSQL(n *core.Node) string {
	name := p.SQL(n.This())
	if db := n.Arg(core.ArgDB); db != nil {
		name = p.SQL(db) + "." + name
	}
	return name + p.aliasSuffix(n)
}

func (p *Printer) aliasSuffix(n *core.Node) string {
	if alias := n.Arg(core.ArgAlias); alias != nil {
		return " AS " + p.SQL(alias)
	}
	return ""
}

func (p *Printer) joinSQL(n *core.Node) string {
	s := "JOIN " + p.SQL(n.This())
	if side := n.Text(core.ArgSide); side != "" {
		s = side + " " + s
	}
	if on := n.Arg(core.ArgOn); on != nil {
		s += " ON " + p.SQL(on)
	}
	return s
}

func (p *Printer) windowSQL(n *core.Node) string {
	var spec []string
	if parts := n.List(core.ArgPartitionBy); len(parts) > 0 {
		spec = append(spec, "PARTITION BY "+p.list(parts))
	}
	if order := n.List(core.ArgOrder); len(order) > 0 {
		spec = append(spec, "ORDER BY "+p.list(order))
	}
	return p.SQL(n.This()) + " OVER (" + strings.Join(spec, " ") + ")"
}

// ---------- CREATE ----------

func (p *Printer) createSQL(n *core.Node) string {
	var b strings.Builder
	b.WriteString("CREATE")
	if n.Bool(core.ArgReplace) {
		b.WriteString(" OR REPLACE")
	}
	kind := n.Text(core.ArgKind)
	if kind == "" {
		kind = "TABLE"
	}
	b.WriteString(" " + kind)
	if n.Bool(core.ArgExists) {
		b.WriteString(" IF NOT EXISTS")
	}
	b.WriteString(" " + p.SQL(n.This()))
	if q := n.Expression(); q != nil {
		b.WriteString(" AS " + p.SQL(q))
	}
	return b.String()
}

func (p *Printer) columnDefSQL(n *core.Node) string {
	parts := []string{p.SQL(n.This())}
	if kind := n.Arg(core.ArgKind); kind != nil {
		parts = append(parts, p.SQL(kind))
	}
	for _, c := range n.List(core.ArgConstraints) {
		parts = append(parts, p.SQL(c))
	}
	return strings.Join(parts, " ")
}

// identitySQL renders GENERATED {ALWAYS | BY DEFAULT} AS IDENTITY with
// optional sequence options.
func (p *Printer) identitySQL(n *core.Node) string {
	mode := "BY DEFAULT"
	if n.Bool(core.ArgThis) {
		mode = "ALWAYS"
	}
	var opts []string
	if start := n.Arg(core.ArgStart); start != nil {
		opts = append(opts, "START WITH "+p.SQL(start))
	}
	if inc := n.Arg(core.ArgIncrement); inc != nil {
		opts = append(opts, "INCREMENT BY "+p.SQL(inc))
	}
	s := "GENERATED " + mode + " AS IDENTITY"
	if len(opts) > 0 {
		s += " (" + strings.Join(opts, " ") + ")"
	}
	return s
}

// ---------- MERGE ----------

// Merge renders a MERGE statement using whens as its action clauses.
func (p *Printer) Merge(n *core.Node, whens []*core.Node) string {
	var b strings.Builder
	b.WriteString("MERGE INTO " + p.SQL(n.This()))
	b.WriteString(" USING " + p.SQL(n.Arg(core.ArgUsing)))
	b.WriteString(" ON " + p.SQL(n.Arg(core.ArgOn)))
	for _, w := range whens {
		b.WriteString(" " + p.SQL(w))
	}
	return b.String()
}

func (p *Printer) whenSQL(n *core.Node) string {
	var b strings.Builder
	b.WriteString("WHEN ")
	if !n.Bool(core.ArgMatched) {
		b.WriteString("NOT ")
	}
	b.WriteString("MATCHED")
	if src, ok := n.Value(core.ArgSource); ok {
		if src == true {
			b.WriteString(" BY SOURCE")
		} else {
			b.WriteString(" BY TARGET")
		}
	}
	if cond := n.Arg(core.ArgCondition); cond != nil {
		b.WriteString(" AND " + p.SQL(cond))
	}
	b.WriteString(" THEN " + p.SQL(n.Arg(core.ArgThen)))
	return b.String()
}

func (p *Printer) insertSQL(n *core.Node) string {
	if n.Bool(core.ArgStar) {
		return "INSERT *"
	}
	s := "INSERT"
	if cols := n.This(); cols != nil {
		s += " " + p.SQL(cols)
	}
	return s + " VALUES " + p.SQL(n.Expression())
}
