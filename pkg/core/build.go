package core

import "strings"

// Ident creates an unquoted identifier.
func Ident(name string) *Node {
	return New(KindIdentifier, Args{ArgThis: name})
}

// QuotedIdent creates a quoted identifier.
func QuotedIdent(name string) *Node {
	return New(KindIdentifier, Args{ArgThis: name, ArgQuoted: true})
}

// Col creates a column reference, optionally qualified by table.
func Col(name, table string) *Node {
	n := New(KindColumn, Args{ArgThis: Ident(name)})
	if table != "" {
		n.Set(ArgTable, Ident(table))
	}
	return n
}

// Number creates a numeric literal.
func Number(text string) *Node {
	return New(KindLiteral, Args{ArgThis: text, ArgIsString: false})
}

// String creates a string literal. text is the unescaped value.
func String(text string) *Node {
	return New(KindLiteral, Args{ArgThis: text, ArgIsString: true})
}

// Var creates a bare word, e.g. a date part such as DAY.
func Var(name string) *Node {
	return New(KindVar, Args{ArgThis: name})
}

// Star creates *.
func Star() *Node {
	return New(KindStar, nil)
}

// Null creates NULL.
func Null() *Node {
	return New(KindNull, nil)
}

// Bool creates TRUE or FALSE.
func Bool(v bool) *Node {
	return New(KindBoolean, Args{ArgThis: v})
}

// TableRef creates a table reference, optionally qualified by db.
func TableRef(name, db string) *Node {
	n := New(KindTable, Args{ArgThis: Ident(name)})
	if db != "" {
		n.Set(ArgDB, Ident(db))
	}
	return n
}

// Binary creates a binary operator node.
func Binary(kind Kind, left, right *Node) *Node {
	return New(kind, Args{ArgThis: left, ArgExpression: right})
}

// DataType creates a data type, e.g. DataType("DECIMAL", Number("10")).
func DataType(name string, params ...*Node) *Node {
	n := New(KindDataType, Args{ArgThis: strings.ToUpper(name)})
	if len(params) > 0 {
		n.Set(ArgExpressions, params)
	}
	return n
}

// IsString reports whether n is a string literal.
func (n *Node) IsString() bool {
	return n.Is(KindLiteral) && n.Bool(ArgIsString)
}

// IsNumber reports whether n is a numeric literal.
func (n *Node) IsNumber() bool {
	return n.Is(KindLiteral) && !n.Bool(ArgIsString)
}

var integerTypes = map[string]bool{
	"TINYINT":  true,
	"SMALLINT": true,
	"INT":      true,
	"INTEGER":  true,
	"BIGINT":   true,
	"BYTE":     true,
	"SHORT":    true,
	"LONG":     true,
}

// IsIntegerType reports whether n is an integer DataType.
func (n *Node) IsIntegerType() bool {
	return n.Is(KindDataType) && integerTypes[strings.ToUpper(n.Text(ArgThis))]
}
