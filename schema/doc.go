// Package schema defines the directive surface understood by neogql and the
// annotation contract used to carry directive usages from the loader to the
// generator.
//
// # Directives
//
// Type definitions are written in GraphQL SDL. The directives below are
// declared by [Prelude], which the loader prepends to every schema:
//
//	type Actor {
//	    name: String!
//	    born: Int @filterable(byValue: false, byAggregate: true)
//	    movies: [Movie!]! @relationship(type: "ACTED_IN", direction: OUT, properties: "ActedIn")
//	}
//
//	type ActedIn @relationshipProperties {
//	    role: String @filterable(byAggregate: true)
//	}
//
// # Annotations
//
// Every directive usage found on a type or field is recorded as a
// [Directive] annotation keyed by the directive name. Annotations that
// implement [Merger] are merged when the same name is attached twice:
//
//	graphql.Filterable(graphql.ByValue(false))  // contrib/graphql annotation
//	&schema.Directive{Directive: "filterable", Args: map[string]any{"byValue": false}}
//
// Both forms decode to the same value in the generator.
package schema
