package format

import (
	"math/big"
	"strings"
	"unicode"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/token"
)

// binaryOps maps binary kinds to their infix spelling. Kinds missing here
// (RegexpLike, JSONExtract) render as function calls by default.
var binaryOps = map[core.Kind]string{
	core.KindAnd:   "AND",
	core.KindOr:    "OR",
	core.KindEQ:    "=",
	core.KindNEQ:   "<>",
	core.KindGT:    ">",
	core.KindGTE:   ">=",
	core.KindLT:    "<",
	core.KindLTE:   "<=",
	core.KindAdd:   "+",
	core.KindSub:   "-",
	core.KindMul:   "*",
	core.KindDiv:   "/",
	core.KindMod:   "%",
	core.KindDPipe: "||",
	core.KindLike:  "LIKE",
	core.KindILike: "ILIKE",
	core.KindIs:    "IS",
}

// expressionShape renders expressions.
func (p *Printer) expressionShape(n *core.Node) (string, bool) {
	if op, ok := binaryOps[n.Kind]; ok {
		return p.Binary(n, op), true
	}

	switch n.Kind {
	case core.KindIdentifier:
		return p.identifierSQL(n), true
	case core.KindColumn:
		return p.columnSQL(n), true
	case core.KindStar:
		return "*", true
	case core.KindLiteral:
		if n.Bool(core.ArgIsString) {
			return quoteString(n.Text(core.ArgThis)), true
		}
		return n.Text(core.ArgThis), true
	case core.KindNull:
		return "NULL", true
	case core.KindBoolean:
		if n.Bool(core.ArgThis) {
			return "TRUE", true
		}
		return "FALSE", true
	case core.KindHexString:
		return p.hexSQL(n), true
	case core.KindParameter:
		return p.parameterSQL(n), true
	case core.KindPlaceholder:
		return "?", true
	case core.KindVar:
		return n.Text(core.ArgThis), true

	case core.KindAlias:
		return p.SQL(n.This()) + " AS " + p.SQL(n.Arg(core.ArgAlias)), true
	case core.KindParen:
		return "(" + p.SQL(n.This()) + ")", true
	case core.KindTuple:
		return "(" + p.list(n.List(core.ArgExpressions)) + ")", true

	case core.KindRegexpLike:
		return p.Func("REGEXP_LIKE", n.This(), n.Expression()), true
	case core.KindJSONExtract:
		return p.Func("JSON_EXTRACT", n.This(), n.Expression()), true

	case core.KindNot:
		if inner := n.This(); inner.Is(core.KindIs) {
			return p.SQL(inner.This()) + " IS NOT " + p.SQL(inner.Expression()), true
		}
		return "NOT " + p.SQL(n.This()), true
	case core.KindNeg:
		return "-" + p.SQL(n.This()), true
	case core.KindIn:
		if q := n.Arg(core.ArgQuery); q != nil {
			return p.SQL(n.This()) + " IN (" + p.SQL(q) + ")", true
		}
		return p.SQL(n.This()) + " IN (" + p.list(n.List(core.ArgExpressions)) + ")", true
	case core.KindBetween:
		return p.SQL(n.This()) + " BETWEEN " + p.SQL(n.Arg(core.ArgLow)) + " AND " + p.SQL(n.Arg(core.ArgHigh)), true
	case core.KindCase:
		return p.caseSQL(n), true
	case core.KindCast:
		return "CAST(" + p.SQL(n.This()) + " AS " + p.SQL(n.Arg(core.ArgTo)) + ")", true
	case core.KindTryCast:
		return "TRY_CAST(" + p.SQL(n.This()) + " AS " + p.SQL(n.Arg(core.ArgTo)) + ")", true
	case core.KindInterval:
		if unit := n.Arg(core.ArgUnit); unit != nil {
			return "INTERVAL " + p.SQL(n.This()) + " " + p.SQL(unit), true
		}
		return "INTERVAL " + p.SQL(n.This()), true

	case core.KindAnonymous:
		args := p.list(n.List(core.ArgExpressions))
		if n.Bool(core.ArgDistinct) {
			args = "DISTINCT " + args
		}
		return n.Text(core.ArgThis) + "(" + args + ")", true
	case core.KindRowNumber:
		return "ROW_NUMBER()", true
	case core.KindDatetimeAdd, core.KindDatetimeSub:
		return p.Func(n.Kind.FuncName(), n.This(), intervalOf(n)), true
	case core.KindTimestampTrunc:
		return p.Func("DATE_TRUNC", core.String(n.Text(core.ArgUnit)), n.This()), true
	}
	return "", false
}

// intervalOf rebuilds INTERVAL expression unit from a date arithmetic node.
func intervalOf(n *core.Node) *core.Node {
	return core.New(core.KindInterval, core.Args{
		core.ArgThis: n.Expression(),
		core.ArgUnit: n.Arg(core.ArgUnit),
	})
}

func (p *Printer) caseSQL(n *core.Node) string {
	var b strings.Builder
	b.WriteString("CASE")
	if operand := n.This(); operand != nil {
		b.WriteString(" " + p.SQL(operand))
	}
	for _, branch := range n.List(core.ArgIfs) {
		b.WriteString(" WHEN " + p.SQL(branch.This()) + " THEN " + p.SQL(branch.Arg(core.ArgTrue)))
	}
	if def := n.Arg(core.ArgDefault); def != nil {
		b.WriteString(" ELSE " + p.SQL(def))
	}
	b.WriteString(" END")
	return b.String()
}

func (p *Printer) columnSQL(n *core.Node) string {
	var parts []string
	if db := n.Arg(core.ArgDB); db != nil {
		parts = append(parts, p.SQL(db))
	}
	if table := n.Arg(core.ArgTable); table != nil {
		parts = append(parts, p.SQL(table))
	}
	parts = append(parts, p.SQL(n.This()))
	return strings.Join(parts, ".")
}

// identifierSQL quotes an identifier when it was quoted in the source, is
// not a plain word, or is reserved in the target dialect. With normalize
// set, unquoted names are normalized first.
func (p *Printer) identifierSQL(n *core.Node) string {
	name := n.Text(core.ArgThis)
	quoted := n.Bool(core.ArgQuoted)
	if p.normalize && !quoted {
		name = p.dialect.NormalizeName(name)
	}
	if quoted || !isPlainWord(name) || p.reserved(name) {
		return p.dialect.QuoteIdentifier(name)
	}
	return name
}

func (p *Printer) reserved(name string) bool {
	t, ok := p.dialect.LookupSpelling(name)
	return ok && token.IsKeyword(t)
}

// isPlainWord reports whether s lexes back as one unquoted word.
func isPlainWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// hexSQL renders X'..' when the target lexes hex strings, else the
// equivalent integer.
func (p *Printer) hexSQL(n *core.Node) string {
	digits := n.Text(core.ArgThis)
	if p.dialect.HexStrings() {
		return "X'" + digits + "'"
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		p.Unsupported("hex string X'" + digits + "' is not a valid integer")
		return "X'" + digits + "'"
	}
	return v.String()
}

func (p *Printer) parameterSQL(n *core.Node) string {
	if t, ok := p.dialect.LookupSpelling("$"); !ok || t != token.PARAMETER {
		p.Unsupported("parameter markers are not supported by " + p.dialect.Name)
	}
	if n.Bool(core.ArgWrapped) {
		return "${" + n.Text(core.ArgThis) + "}"
	}
	return "$" + n.Text(core.ArgThis)
}

// quoteString renders a single-quoted string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
