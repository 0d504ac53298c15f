package graphql

import (
	"strings"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/neogql/compiler/gen"
)

// =============================================================================
// Type Names
// =============================================================================

// TypeNames holds the names generated for a node or interface type.
type TypeNames struct {
	Where              string
	SubscriptionWhere  string
	AggregateSelection string
	// Query fields: movies, moviesConnection, moviesAggregate.
	List       string
	Connection string
	Aggregate  string
	// ConnectionType and EdgeType are the Relay types of the connection
	// query: MoviesConnection, MovieEdge.
	ConnectionType string
	EdgeType       string
	// Event types and subscription fields: movieCreated, MovieCreatedEvent.
	Created, Updated, Deleted                string
	CreatedEvent, UpdatedEvent, DeletedEvent string
}

func typeNames(name string) *TypeNames {
	plural := inflect.Pluralize(lowerFirst(name))
	single := lowerFirst(name)
	return &TypeNames{
		Where:              name + "Where",
		SubscriptionWhere:  name + "SubscriptionWhere",
		AggregateSelection: name + "AggregateSelection",
		List:               plural,
		Connection:         plural + "Connection",
		Aggregate:          plural + "Aggregate",
		ConnectionType:     upperFirst(plural) + "Connection",
		EdgeType:           name + "Edge",
		Created:            single + "Created",
		Updated:            single + "Updated",
		Deleted:            single + "Deleted",
		CreatedEvent:       name + "CreatedEvent",
		UpdatedEvent:       name + "UpdatedEvent",
		DeletedEvent:       name + "DeletedEvent",
	}
}

// =============================================================================
// Relationship Names
// =============================================================================

// RelationshipNames holds the names generated for a relationship field,
// e.g. Actor.movies.
type RelationshipNames struct {
	// Field members: movies, moviesConnection, moviesAggregate.
	Field      string
	Connection string
	Aggregate  string
	// Filter inputs.
	ConnectionWhere           string // ActorMoviesConnectionWhere
	ConnectionFilters         string // ActorMoviesConnectionFilters
	AggregateInput            string // ActorMoviesAggregateInput
	NodeAggregationWhereInput string // ActorMoviesNodeAggregationWhereInput
	EdgeAggregationWhereInput string // ActorMoviesEdgeAggregationWhereInput
	// Output types.
	ConnectionType         string // ActorMoviesConnection
	RelationshipType       string // ActorMoviesRelationship
	AggregationSelection   string // ActorMovieMoviesAggregationSelection
	NodeAggregateSelection string // ActorMovieMoviesNodeAggregateSelection
	EdgeAggregateSelection string // ActorMovieMoviesEdgeAggregateSelection
}

func relationshipNames(f *gen.Field) *RelationshipNames {
	prefix := f.Owner.Name + upperFirst(f.Name)
	selection := f.Owner.Name + f.Type.Name + upperFirst(f.Name)
	return &RelationshipNames{
		Field:                     f.Name,
		Connection:                f.Name + "Connection",
		Aggregate:                 f.Name + "Aggregate",
		ConnectionWhere:           prefix + "ConnectionWhere",
		ConnectionFilters:         prefix + "ConnectionFilters",
		AggregateInput:            prefix + "AggregateInput",
		NodeAggregationWhereInput: prefix + "NodeAggregationWhereInput",
		EdgeAggregationWhereInput: prefix + "EdgeAggregationWhereInput",
		ConnectionType:            prefix + "Connection",
		RelationshipType:          prefix + "Relationship",
		AggregationSelection:      selection + "AggregationSelection",
		NodeAggregateSelection:    selection + "NodeAggregateSelection",
		EdgeAggregateSelection:    selection + "EdgeAggregateSelection",
	}
}

// memberConnectionWhere returns the connection where input of one member of
// a union target: ActorSearchMovieConnectionWhere.
func (n *RelationshipNames) memberConnectionWhere(member string) string {
	return strings.TrimSuffix(n.ConnectionWhere, "ConnectionWhere") + member + "ConnectionWhere"
}

// =============================================================================
// Scalar Filter Names
// =============================================================================

// filtersName returns the generic value filter input of a scalar field.
func filtersName(f *gen.Field) string {
	name := f.ScalarName()
	switch {
	case f.IsList():
		return name + "ListFilters"
	case f.IsEnum():
		return name + "EnumScalarFilters"
	default:
		return name + "ScalarFilters"
	}
}

// aggregationFiltersName returns the generic aggregation filter input of a
// scalar: StringScalarAggregationFilters.
func aggregationFiltersName(scalar string) string {
	return scalar + "ScalarAggregationFilters"
}

// scalarAggregateSelectionName returns the aggregate selection output of a
// scalar: StringAggregateSelection.
func scalarAggregateSelectionName(scalar string) string {
	return scalar + "AggregateSelection"
}

// relationshipFiltersName returns the quantifier input over nodes of the
// target type: MovieRelationshipFilters.
func relationshipFiltersName(target string) string {
	return target + "RelationshipFilters"
}

// =============================================================================
// Case Helpers
// =============================================================================

// upperFirst upper-cases the first rune only, so "actedIn" becomes "ActedIn".
func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[n:]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Lower(language.Und).String(string(r)) + s[n:]
}

// goName converts a generated member name to an exported Go identifier:
// title_STARTS_WITH becomes TitleStartsWith.
func goName(s string) string {
	if s == "AND" || s == "OR" || s == "NOT" {
		return cases.Title(language.Und).String(s)
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i > 0 && strings.ToUpper(p) == p {
			p = cases.Title(language.Und).String(p)
		}
		b.WriteString(upperFirst(p))
	}
	return b.String()
}
