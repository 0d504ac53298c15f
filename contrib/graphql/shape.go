package graphql

import (
	"fmt"
	"slices"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// ShapeKind is the role of a generated type.
type ShapeKind uint8

// Shape kinds.
const (
	_ ShapeKind = iota
	// Where filters the nodes of a type: MovieWhere.
	Where
	// ConnectionWhere filters the edges of a relationship: ActorMoviesConnectionWhere.
	ConnectionWhere
	// ConnectionFilters quantifies over the edges of a relationship: ActorMoviesConnectionFilters.
	ConnectionFilters
	// AggregateInput filters by aggregates of a relationship: ActorMoviesAggregateInput.
	AggregateInput
	// NodeAggregationWhereInput aggregates the fields of related nodes.
	NodeAggregationWhereInput
	// EdgeAggregationWhereInput aggregates the fields of relationship properties.
	EdgeAggregationWhereInput
	// RelationshipFilters quantifies over related nodes: MovieRelationshipFilters.
	RelationshipFilters
	// SubscriptionWhere filters change events of a type: MovieSubscriptionWhere.
	SubscriptionWhere
	// ScalarFilters holds the operators of one scalar: StringScalarFilters.
	ScalarFilters
	// AggregateSelection is an output type selecting aggregates.
	AggregateSelection
)

var shapeKindNames = [...]string{
	Where:                     "Where",
	ConnectionWhere:           "ConnectionWhere",
	ConnectionFilters:         "ConnectionFilters",
	AggregateInput:            "AggregateInput",
	NodeAggregationWhereInput: "NodeAggregationWhereInput",
	EdgeAggregationWhereInput: "EdgeAggregationWhereInput",
	RelationshipFilters:       "RelationshipFilters",
	SubscriptionWhere:         "SubscriptionWhere",
	ScalarFilters:             "ScalarFilters",
	AggregateSelection:        "AggregateSelection",
}

// String returns the kind name.
func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) && shapeKindNames[k] != "" {
		return shapeKindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", k)
}

// ShapeKey identifies a generated type by what it was generated for.
// Owner is the type the generated type belongs to, Field the relationship
// it was generated for, if any, and Member the union member or scalar
// variant it specializes.
type ShapeKey struct {
	Owner  string
	Field  string
	Member string
	Kind   ShapeKind
}

// Member is a field of a generated type.
type Member struct {
	Name string
	Type *ast.Type
	// Deprecated holds the deprecation reason of legacy members.
	Deprecated string
	// Logical marks the AND, OR and NOT combinators. They do not keep a
	// type alive on their own.
	Logical bool
}

// GeneratedType is a named type the schema assembler instantiates.
type GeneratedType struct {
	Name    string
	Key     ShapeKey
	Members []*Member
	// Output marks object types. All other generated types are inputs.
	Output bool
	// Pinned types are referenced from outside the shape, by query or
	// field arguments, and are kept even when they have no members.
	Pinned bool
}

// Member returns the member with the given name, or nil.
func (t *GeneratedType) Member(name string) *Member {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// MemberNames returns the sorted member names.
func (t *GeneratedType) MemberNames() []string {
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = m.Name
	}
	sort.Strings(names)
	return names
}

// conditional returns the number of non-logical members.
func (t *GeneratedType) conditional() int {
	n := 0
	for _, m := range t.Members {
		if !m.Logical {
			n++
		}
	}
	return n
}

// root reports whether the type is kept without being referenced by
// another generated type.
func (t *GeneratedType) root() bool {
	return t.Pinned || t.Key.Kind == SubscriptionWhere
}

// Shape is the set of generated types of a schema. It is not modified once
// Prune returns.
type Shape struct {
	types map[string]*GeneratedType
	keys  map[ShapeKey]*GeneratedType
}

func newShape() *Shape {
	return &Shape{
		types: make(map[string]*GeneratedType),
		keys:  make(map[ShapeKey]*GeneratedType),
	}
}

// Type returns the generated type with the given name, or nil.
func (s *Shape) Type(name string) *GeneratedType {
	return s.types[name]
}

// Lookup returns the generated type with the given key.
func (s *Shape) Lookup(key ShapeKey) (*GeneratedType, bool) {
	t, ok := s.keys[key]
	return t, ok
}

// Has reports whether a type with the given name was generated.
func (s *Shape) Has(name string) bool {
	_, ok := s.types[name]
	return ok
}

// HasMember reports whether the named type was generated with the member.
func (s *Shape) HasMember(typ, member string) bool {
	t := s.types[typ]
	return t != nil && t.Member(member) != nil
}

// Names returns the sorted names of the generated types.
func (s *Shape) Names() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Types returns the generated types sorted by name.
func (s *Shape) Types() []*GeneratedType {
	types := make([]*GeneratedType, 0, len(s.types))
	for _, name := range s.Names() {
		types = append(types, s.types[name])
	}
	return types
}

// Inputs returns the generated input types sorted by name.
func (s *Shape) Inputs() []*GeneratedType {
	return slices.DeleteFunc(s.Types(), func(t *GeneratedType) bool { return t.Output })
}

// Len returns the number of generated types.
func (s *Shape) Len() int {
	return len(s.types)
}

func (s *Shape) add(t *GeneratedType) {
	s.types[t.Name] = t
	s.keys[t.Key] = t
}

func (s *Shape) remove(t *GeneratedType) {
	delete(s.types, t.Name)
	delete(s.keys, t.Key)
}
