package core

import "fmt"

// Kind identifies the shape of an AST node. The set is closed: dialects
// attach behavior to kinds through their rendering tables, they do not add
// kinds.
type Kind int

// Node kinds. Binary operators keep their operands in "this" and
// "expression".
const (
	KindInvalid Kind = iota

	// Statements
	KindSelect
	KindCreate
	KindMerge

	// Query parts
	KindDistinct
	KindTable
	KindSubquery
	KindJoin
	KindOrdered
	KindWindow

	// DDL
	KindSchema
	KindColumnDef
	KindDataType
	KindNotNullColumnConstraint
	KindPrimaryKeyColumnConstraint
	KindDefaultColumnConstraint
	KindGeneratedAsIdentityColumnConstraint

	// MERGE
	KindWhen
	KindUpdate
	KindInsert
	KindDelete

	// Leaves
	KindIdentifier
	KindColumn
	KindStar
	KindLiteral
	KindNull
	KindBoolean
	KindHexString
	KindParameter
	KindPlaceholder
	KindVar

	// Wrappers
	KindAlias
	KindParen
	KindTuple

	// Binary operators
	KindAnd
	KindOr
	KindEQ
	KindNEQ
	KindGT
	KindGTE
	KindLT
	KindLTE
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMod
	KindDPipe
	KindLike
	KindILike
	KindRegexpLike
	KindIs
	KindJSONExtract

	// Unary operators
	KindNot
	KindNeg

	// Predicates and special forms
	KindIn
	KindBetween
	KindCase
	KindIf
	KindCast
	KindTryCast
	KindInterval

	// Functions
	KindAnonymous
	KindRowNumber
	KindDateAdd
	KindDateDiff
	KindDatetimeAdd
	KindDatetimeSub
	KindDatetimeDiff
	KindDatetimeTrunc
	KindTimestampTrunc
	KindToChar

	kindCount
)

// kindInfo describes a kind: its display name, the function name used when
// the kind is rendered in function-call style, and its argument slots in
// rendering order.
type kindInfo struct {
	name     string
	funcName string
	args     []string
}

var binaryArgs = []string{ArgThis, ArgExpression}

var kinds = [kindCount]kindInfo{
	KindInvalid: {"Invalid", "INVALID", nil},

	KindSelect: {"Select", "SELECT", []string{ArgDistinct, ArgExpressions, ArgFrom, ArgJoins, ArgWhere, ArgGroup, ArgHaving, ArgQualify, ArgOrder, ArgLimit}},
	KindCreate: {"Create", "CREATE", []string{ArgKind, ArgThis, ArgReplace, ArgExists, ArgExpression}},
	KindMerge:  {"Merge", "MERGE", []string{ArgThis, ArgUsing, ArgOn, ArgExpressions}},

	KindDistinct: {"Distinct", "DISTINCT", []string{ArgOn}},
	KindTable:    {"Table", "TABLE", []string{ArgThis, ArgDB, ArgAlias}},
	KindSubquery: {"Subquery", "SUBQUERY", []string{ArgThis, ArgAlias}},
	KindJoin:     {"Join", "JOIN", []string{ArgThis, ArgSide, ArgOn}},
	KindOrdered:  {"Ordered", "ORDERED", []string{ArgThis, ArgDesc}},
	KindWindow:   {"Window", "WINDOW", []string{ArgThis, ArgPartitionBy, ArgOrder}},

	KindSchema:                              {"Schema", "SCHEMA", []string{ArgThis, ArgExpressions}},
	KindColumnDef:                           {"ColumnDef", "COLUMN_DEF", []string{ArgThis, ArgKind, ArgConstraints}},
	KindDataType:                            {"DataType", "DATA_TYPE", []string{ArgThis, ArgExpressions}},
	KindNotNullColumnConstraint:             {"NotNullColumnConstraint", "NOT_NULL", nil},
	KindPrimaryKeyColumnConstraint:          {"PrimaryKeyColumnConstraint", "PRIMARY_KEY", nil},
	KindDefaultColumnConstraint:             {"DefaultColumnConstraint", "DEFAULT", []string{ArgThis}},
	KindGeneratedAsIdentityColumnConstraint: {"GeneratedAsIdentityColumnConstraint", "GENERATED_AS_IDENTITY", []string{ArgThis, ArgStart, ArgIncrement}},

	KindWhen:   {"When", "WHEN", []string{ArgMatched, ArgSource, ArgCondition, ArgThen}},
	KindUpdate: {"Update", "UPDATE", []string{ArgExpressions, ArgStar}},
	KindInsert: {"Insert", "INSERT", []string{ArgThis, ArgExpression, ArgStar}},
	KindDelete: {"Delete", "DELETE", nil},

	KindIdentifier:  {"Identifier", "IDENTIFIER", []string{ArgThis, ArgQuoted}},
	KindColumn:      {"Column", "COLUMN", []string{ArgThis, ArgTable, ArgDB}},
	KindStar:        {"Star", "STAR", nil},
	KindLiteral:     {"Literal", "LITERAL", []string{ArgThis, ArgIsString}},
	KindNull:        {"Null", "NULL", nil},
	KindBoolean:     {"Boolean", "BOOLEAN", []string{ArgThis}},
	KindHexString:   {"HexString", "HEX_STRING", []string{ArgThis}},
	KindParameter:   {"Parameter", "PARAMETER", []string{ArgThis, ArgWrapped}},
	KindPlaceholder: {"Placeholder", "PLACEHOLDER", nil},
	KindVar:         {"Var", "VAR", []string{ArgThis}},

	KindAlias: {"Alias", "ALIAS", []string{ArgThis, ArgAlias}},
	KindParen: {"Paren", "PAREN", []string{ArgThis}},
	KindTuple: {"Tuple", "TUPLE", []string{ArgExpressions}},

	KindAnd:         {"And", "AND", binaryArgs},
	KindOr:          {"Or", "OR", binaryArgs},
	KindEQ:          {"EQ", "EQ", binaryArgs},
	KindNEQ:         {"NEQ", "NEQ", binaryArgs},
	KindGT:          {"GT", "GT", binaryArgs},
	KindGTE:         {"GTE", "GTE", binaryArgs},
	KindLT:          {"LT", "LT", binaryArgs},
	KindLTE:         {"LTE", "LTE", binaryArgs},
	KindAdd:         {"Add", "ADD", binaryArgs},
	KindSub:         {"Sub", "SUB", binaryArgs},
	KindMul:         {"Mul", "MUL", binaryArgs},
	KindDiv:         {"Div", "DIV", binaryArgs},
	KindMod:         {"Mod", "MOD", binaryArgs},
	KindDPipe:       {"DPipe", "CONCAT", binaryArgs},
	KindLike:        {"Like", "LIKE", binaryArgs},
	KindILike:       {"ILike", "ILIKE", binaryArgs},
	KindRegexpLike:  {"RegexpLike", "REGEXP_LIKE", binaryArgs},
	KindIs:          {"Is", "IS", binaryArgs},
	KindJSONExtract: {"JSONExtract", "JSON_EXTRACT", binaryArgs},

	KindNot: {"Not", "NOT", []string{ArgThis}},
	KindNeg: {"Neg", "NEG", []string{ArgThis}},

	KindIn:       {"In", "IN", []string{ArgThis, ArgExpressions, ArgQuery}},
	KindBetween:  {"Between", "BETWEEN", []string{ArgThis, ArgLow, ArgHigh}},
	KindCase:     {"Case", "CASE", []string{ArgThis, ArgIfs, ArgDefault}},
	KindIf:       {"If", "IF", []string{ArgThis, ArgTrue}},
	KindCast:     {"Cast", "CAST", []string{ArgThis, ArgTo}},
	KindTryCast:  {"TryCast", "TRY_CAST", []string{ArgThis, ArgTo}},
	KindInterval: {"Interval", "INTERVAL", []string{ArgThis, ArgUnit}},

	KindAnonymous:      {"Anonymous", "ANONYMOUS", []string{ArgThis, ArgExpressions, ArgDistinct}},
	KindRowNumber:      {"RowNumber", "ROW_NUMBER", nil},
	KindDateAdd:        {"DateAdd", "DATE_ADD", []string{ArgThis, ArgExpression, ArgUnit}},
	KindDateDiff:       {"DateDiff", "DATE_DIFF", []string{ArgThis, ArgExpression, ArgUnit}},
	KindDatetimeAdd:    {"DatetimeAdd", "DATETIME_ADD", []string{ArgThis, ArgExpression, ArgUnit}},
	KindDatetimeSub:    {"DatetimeSub", "DATETIME_SUB", []string{ArgThis, ArgExpression, ArgUnit}},
	KindDatetimeDiff:   {"DatetimeDiff", "DATETIME_DIFF", []string{ArgThis, ArgExpression, ArgUnit}},
	KindDatetimeTrunc:  {"DatetimeTrunc", "DATETIME_TRUNC", []string{ArgThis, ArgUnit}},
	KindTimestampTrunc: {"TimestampTrunc", "TIMESTAMP_TRUNC", []string{ArgThis, ArgUnit}},
	KindToChar:         {"ToChar", "TO_CHAR", []string{ArgThis, ArgFormat}},
}

// String returns the kind's name, e.g. "DatetimeAdd".
func (k Kind) String() string {
	if k.Valid() {
		return kinds[k].name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FuncName returns the upper-case function name used when the kind is
// rendered as a plain function call, e.g. "DATETIME_ADD".
func (k Kind) FuncName() string {
	if k.Valid() {
		return kinds[k].funcName
	}
	return "UNKNOWN"
}

// ArgNames returns the kind's argument slots in rendering order.
// The returned slice must not be modified.
func (k Kind) ArgNames() []string {
	if k.Valid() {
		return kinds[k].args
	}
	return nil
}

// Valid reports whether k is a known kind other than KindInvalid.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsBinary reports whether k is a binary operator kind.
func (k Kind) IsBinary() bool {
	return k >= KindAnd && k <= KindJSONExtract
}

// AllKinds returns every valid kind in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, 0, int(kindCount)-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// KindByName looks up a kind by its String() name.
func KindByName(name string) (Kind, bool) {
	for k := KindInvalid + 1; k < kindCount; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return KindInvalid, false
}
