package schema

import "github.com/vektah/gqlparser/v2/ast"

// Directive names.
const (
	FilterableDirective             = "filterable"
	RelationshipDirective           = "relationship"
	DeclareRelationshipDirective    = "declareRelationship"
	RelationshipPropertiesDirective = "relationshipProperties"
)

// Argument names and values of the directives above.
const (
	ByValueArg     = "byValue"
	ByAggregateArg = "byAggregate"
	TypeArg        = "type"
	DirectionArg   = "direction"
	PropertiesArg  = "properties"

	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// Temporal and numeric scalars declared by the prelude on top of the
// GraphQL built-ins.
var Scalars = []string{"BigInt", "Date", "DateTime", "Duration", "LocalDateTime", "Time"}

// Prelude declares the directives and scalars available to user SDL.
var Prelude = &ast.Source{
	Name:    "neogql/prelude.graphql",
	BuiltIn: true,
	Input: `directive @filterable(byValue: Boolean = true, byAggregate: Boolean = false) on FIELD_DEFINITION

directive @relationship(type: String!, direction: RelationshipDirection!, properties: String) on FIELD_DEFINITION

directive @declareRelationship on FIELD_DEFINITION

directive @relationshipProperties on OBJECT

enum RelationshipDirection {
  IN
  OUT
}

scalar BigInt
scalar Date
scalar DateTime
scalar Duration
scalar LocalDateTime
scalar Time
`,
}

// IsPreludeScalar reports whether name is a scalar declared by the prelude.
func IsPreludeScalar(name string) bool {
	for _, s := range Scalars {
		if s == name {
			return true
		}
	}
	return false
}
