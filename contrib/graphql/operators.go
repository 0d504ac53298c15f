package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/neogql/compiler/gen"
)

// Op is a set of value filter operators.
//
// Example:
//
//	graphql.OpEQ | graphql.OpIn
type Op uint16

// Value filter operators.
const (
	// OpEQ generates the equality filter (title_EQ, title: {eq}).
	OpEQ Op = 1 << iota
	// OpIn generates the membership filter (title_IN, title: {in}).
	OpIn
	// OpContains generates the substring filter (title_CONTAINS).
	OpContains
	// OpStartsWith generates the prefix filter (title_STARTS_WITH).
	OpStartsWith
	// OpEndsWith generates the suffix filter (title_ENDS_WITH).
	OpEndsWith
	// OpLT generates the less-than filter (released_LT).
	OpLT
	// OpLTE generates the less-than-or-equal filter (released_LTE).
	OpLTE
	// OpGT generates the greater-than filter (released_GT).
	OpGT
	// OpGTE generates the greater-than-or-equal filter (released_GTE).
	OpGTE
	// OpIncludes generates the list element filter (tags_INCLUDES).
	OpIncludes
)

// Operator sets.
const (
	OpsNone      Op = 0
	OpsEquality     = OpEQ | OpIn
	OpsSubstring    = OpContains | OpStartsWith | OpEndsWith
	OpsString       = OpsEquality | OpsSubstring
	OpsOrdered      = OpsEquality | OpLT | OpLTE | OpGT | OpGTE
	OpsList         = OpEQ | OpIncludes
)

// Has reports whether flag is in the set.
func (op Op) Has(flag Op) bool { return op&flag != 0 }

// operator describes how an Op is spelled in the generated schema.
type operator struct {
	op      Op
	legacy  string // suffix of the legacy member: title_STARTS_WITH
	generic string // member of the generic filter input: {startsWith}
}

// operators is ordered as the members are emitted.
var operators = []operator{
	{OpEQ, "EQ", "eq"},
	{OpIn, "IN", "in"},
	{OpContains, "CONTAINS", "contains"},
	{OpStartsWith, "STARTS_WITH", "startsWith"},
	{OpEndsWith, "ENDS_WITH", "endsWith"},
	{OpLT, "LT", "lt"},
	{OpLTE, "LTE", "lte"},
	{OpGT, "GT", "gt"},
	{OpGTE, "GTE", "gte"},
	{OpIncludes, "INCLUDES", "includes"},
}

// FieldOps returns the value operators of a scalar or enum field.
func FieldOps(f *gen.Field) Op {
	if f.IsList() {
		return OpsList
	}
	return scalarOps(f.ScalarName())
}

func scalarOps(name string) Op {
	switch name {
	case "ID", "String":
		return OpsString
	case "Int", "Float", "BigInt", "Date", "DateTime", "LocalDateTime", "Time", "Duration":
		return OpsOrdered
	case "Boolean":
		return OpEQ
	default:
		// Enums and custom scalars.
		return OpsEquality
	}
}

// operand returns the argument type of op applied to a value of the named
// type. list reports whether the filtered field is a list.
func operand(op Op, name string, list bool) *ast.Type {
	switch {
	case op == OpIn, op == OpEQ && list:
		return ast.ListType(ast.NonNullNamedType(name, nil), nil)
	default:
		return ast.NamedType(name, nil)
	}
}

// aggregation is an aggregating function applied to the values of a field
// over the related nodes or edges.
type aggregation struct {
	generic string // member of the generic aggregation input: averageLength
	legacy  string // infix of the legacy member: title_AVERAGE_LENGTH_EQUAL
	result  string // scalar type of the computed value
}

// comparator is a comparison of an aggregated value. The generic form is a
// member of the filters of the result scalar.
type comparator struct {
	legacy  string // title_AVERAGE_LENGTH_EQUAL
	generic string // title: {averageLength: {eq}}
}

var aggregationComparators = []comparator{
	{"EQUAL", "eq"},
	{"GT", "gt"},
	{"GTE", "gte"},
	{"LT", "lt"},
	{"LTE", "lte"},
}

// fieldAggregations returns the aggregating functions supported by a field,
// or nil if the field cannot be aggregated.
func fieldAggregations(f *gen.Field) []aggregation {
	if f.IsRelationship() || f.IsList() {
		return nil
	}
	return scalarAggregations(f.ScalarName())
}

func scalarAggregations(name string) []aggregation {
	switch name {
	case "String":
		return []aggregation{
			{"averageLength", "AVERAGE_LENGTH", "Float"},
			{"longestLength", "LONGEST_LENGTH", "Int"},
			{"shortestLength", "SHORTEST_LENGTH", "Int"},
		}
	case "Int":
		return []aggregation{
			{"average", "AVERAGE", "Float"},
			{"max", "MAX", "Int"},
			{"min", "MIN", "Int"},
			{"sum", "SUM", "Int"},
		}
	case "Float", "BigInt":
		return []aggregation{
			{"average", "AVERAGE", name},
			{"max", "MAX", name},
			{"min", "MIN", name},
			{"sum", "SUM", name},
		}
	case "DateTime", "LocalDateTime", "Time", "Duration":
		return []aggregation{
			{"max", "MAX", name},
			{"min", "MIN", name},
		}
	default:
		return nil
	}
}

// selection returns the members of the aggregate selection output of a
// scalar: {longest shortest} for strings, {max min average sum} for
// numbers, {max min} for temporal types. Nil means the scalar is not
// selectable.
func selection(name string) []*ast.FieldDefinition {
	field := func(n, t string) *ast.FieldDefinition {
		return &ast.FieldDefinition{Name: n, Type: ast.NamedType(t, nil)}
	}
	switch name {
	case "String", "ID":
		return []*ast.FieldDefinition{field("longest", name), field("shortest", name)}
	case "Int":
		return []*ast.FieldDefinition{field("average", "Float"), field("max", name), field("min", name), field("sum", name)}
	case "Float", "BigInt":
		return []*ast.FieldDefinition{field("average", name), field("max", name), field("min", name), field("sum", name)}
	case "DateTime", "LocalDateTime", "Time", "Duration":
		return []*ast.FieldDefinition{field("max", name), field("min", name)}
	default:
		return nil
	}
}

// countOps are the comparisons of the relationship count filters.
var countOps = []Op{OpEQ, OpLT, OpLTE, OpGT, OpGTE}
