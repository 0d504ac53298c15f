package gen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/multierr"

	"github.com/syssam/neogql"
	"github.com/syssam/neogql/compiler/load"
	"github.com/syssam/neogql/schema"
)

// Kind of a graph type.
type Kind uint8

// Kinds of graph types.
const (
	_ Kind = iota
	KindNode
	KindInterface
	KindUnion
	KindProperties
	KindEnum
	KindScalar
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindInterface:
		return "interface"
	case KindUnion:
		return "union"
	case KindProperties:
		return "properties"
	case KindEnum:
		return "enum"
	case KindScalar:
		return "scalar"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Built-in GraphQL scalars.
var builtinScalars = map[string]bool{"ID": true, "String": true, "Int": true, "Float": true, "Boolean": true}

// The following types and their exported methods are used by the
// extensions to generate the assets.
type (
	// Graph holds the resolved type graph of a schema.
	Graph struct {
		*Config
		// Nodes are the concrete object types.
		Nodes []*Type
		// Interfaces are the interface types. Their fields are shared by
		// the implementing nodes.
		Interfaces []*Type
		// Unions are the union types.
		Unions []*Type
		// Properties are the relationship properties types.
		Properties []*Type
		// Enums are the enum types.
		Enums []*Type
		// Scalars are the user declared custom scalars.
		Scalars []*Type
		types   map[string]*Type
	}

	// Type represents one named type of the graph.
	Type struct {
		def *load.Type
		// Name holds the GraphQL type name.
		Name string
		// Kind of the type.
		Kind Kind
		// Description of the type, if any.
		Description string
		// Fields holds the fields of node, interface and properties types.
		Fields []*Field
		fields map[string]*Field
		// Interfaces implemented by a node.
		Interfaces []*Type
		// Implementations of an interface.
		Implementations []*Type
		// Members of a union.
		Members []*Type
		// Values of an enum.
		Values []string
		// Annotations that were defined for the type in the schema.
		// The mapping is from the Annotation.Name() to a JSON decoded object.
		Annotations Annotations
	}

	// Field holds the information of a type field.
	Field struct {
		def *load.Field
		// Name is the GraphQL field name.
		Name string
		// Type holds the type reference of the field.
		Type *TypeRef
		// Owner holds the type declaring the field.
		Owner *Type
		// Target is the declared named type, or nil for built-in scalars.
		Target *Type
		// Relationship is set for fields annotated with @relationship.
		Relationship *Relationship
		// Description of the field, if any.
		Description string
		// Deprecated and DeprecatedReason mirror @deprecated on the field.
		Deprecated       bool
		DeprecatedReason string
		// Annotations that were defined for the field in the schema.
		// The mapping is from the Annotation.Name() to a JSON decoded object.
		Annotations Annotations
	}

	// TypeRef is a reference to a named type, optionally wrapped in a list.
	TypeRef struct {
		Name        string
		List        bool
		NonNull     bool
		ElemNonNull bool
	}

	// Relationship holds the graph-database relationship of a field.
	Relationship struct {
		// Type is the relationship type label, e.g. ACTED_IN.
		Type string
		// Direction is either IN or OUT.
		Direction string
		// Properties is the relationship properties type, if any.
		Properties *Type
	}

	// Annotations maps annotation names to their loaded values.
	Annotations map[string]any
)

// relationshipArgs is the decoded form of the @relationship annotation.
type relationshipArgs struct {
	Type       string `json:"type"`
	Direction  string `json:"direction"`
	Properties string `json:"properties,omitempty"`
}

// NewGraph resolves the loaded schema into a type graph. All resolution
// errors are collected and returned together.
func NewGraph(c *Config, s *load.Schema) (*Graph, error) {
	if c == nil {
		c = &Config{}
	}
	g := &Graph{Config: c, types: make(map[string]*Type)}
	var errs error
	for _, lt := range s.Types {
		t, err := newType(lt)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, ok := g.types[t.Name]; ok || builtinScalars[t.Name] || schema.IsPreludeScalar(t.Name) {
			errs = multierr.Append(errs, NewSchemaError(t.Name, "", "type is declared more than once", nil))
			continue
		}
		g.types[t.Name] = t
		g.add(t)
	}
	if errs != nil {
		return nil, errs
	}
	for _, lt := range s.Types {
		errs = multierr.Append(errs, g.resolveType(g.types[lt.Name]))
	}
	for _, t := range g.FieldOwners() {
		for _, f := range t.Fields {
			errs = multierr.Append(errs, g.resolveField(f))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return g, nil
}

func newType(lt *load.Type) (*Type, error) {
	t := &Type{
		def:         lt,
		Name:        lt.Name,
		Description: lt.Description,
		Values:      lt.Values,
		fields:      make(map[string]*Field),
		Annotations: Annotations(lt.Annotations),
	}
	switch lt.Kind {
	case load.KindNode:
		t.Kind = KindNode
	case load.KindInterface:
		t.Kind = KindInterface
	case load.KindUnion:
		t.Kind = KindUnion
	case load.KindProperties:
		t.Kind = KindProperties
	case load.KindEnum:
		t.Kind = KindEnum
	case load.KindScalar:
		t.Kind = KindScalar
	default:
		return nil, NewSchemaError(lt.Name, "", fmt.Sprintf("unknown type kind %q", lt.Kind), nil)
	}
	for _, lf := range lt.Fields {
		if _, ok := t.fields[lf.Name]; ok {
			return nil, NewSchemaError(lt.Name, lf.Name, "field is declared more than once", nil)
		}
		f := &Field{
			def:              lf,
			Name:             lf.Name,
			Owner:            t,
			Description:      lf.Description,
			Deprecated:       lf.Deprecated,
			DeprecatedReason: lf.DeprecatedReason,
			Annotations:      Annotations(lf.Annotations),
			Type: &TypeRef{
				Name:        lf.Type,
				List:        lf.List,
				NonNull:     lf.NonNull,
				ElemNonNull: lf.ElemNonNull,
			},
		}
		t.Fields = append(t.Fields, f)
		t.fields[f.Name] = f
	}
	return t, nil
}

func (g *Graph) add(t *Type) {
	switch t.Kind {
	case KindNode:
		g.Nodes = append(g.Nodes, t)
	case KindInterface:
		g.Interfaces = append(g.Interfaces, t)
	case KindUnion:
		g.Unions = append(g.Unions, t)
	case KindProperties:
		g.Properties = append(g.Properties, t)
	case KindEnum:
		g.Enums = append(g.Enums, t)
	case KindScalar:
		g.Scalars = append(g.Scalars, t)
	}
}

// resolveType links interfaces and union members.
func (g *Graph) resolveType(t *Type) error {
	var errs error
	if t.def == nil {
		return nil
	}
	for _, name := range t.def.Interfaces {
		it, ok := g.types[name]
		if !ok || it.Kind != KindInterface {
			errs = multierr.Append(errs, NewSchemaError(t.Name, "", "implements an unknown interface", neogql.NewUnresolvedTypeError(name, t.Name)))
			continue
		}
		t.Interfaces = append(t.Interfaces, it)
		it.Implementations = append(it.Implementations, t)
	}
	for _, name := range t.def.Members {
		mt, ok := g.types[name]
		if !ok {
			errs = multierr.Append(errs, NewSchemaError(t.Name, "", "unknown union member", neogql.NewUnresolvedTypeError(name, t.Name)))
			continue
		}
		if mt.Kind != KindNode {
			errs = multierr.Append(errs, NewValidationError(t.Name, "", name, fmt.Sprintf("union member %s must be a node type, got %s", name, mt.Kind)))
			continue
		}
		t.Members = append(t.Members, mt)
	}
	return errs
}

// resolveField resolves the field target and relationship.
func (g *Graph) resolveField(f *Field) error {
	owner := f.Owner.Name
	if !builtinScalars[f.Type.Name] && !schema.IsPreludeScalar(f.Type.Name) {
		t, ok := g.types[f.Type.Name]
		if !ok {
			return NewSchemaError(owner, f.Name, "", neogql.NewUnresolvedTypeError(f.Type.Name, owner+"."+f.Name))
		}
		if t.Kind == KindProperties {
			return NewValidationError(owner, f.Name, t.Name, "relationship properties types cannot be used as field types")
		}
		f.Target = t
	}
	if _, ok := f.Annotations[schema.DeclareRelationshipDirective]; ok {
		return NewRelationshipError(owner, f.Type.Name, f.Name, "@declareRelationship is not supported; declare relationships on the implementing nodes", nil)
	}
	var args relationshipArgs
	ok, err := f.Annotations.Decode(schema.RelationshipDirective, &args)
	if err != nil {
		return NewRelationshipError(owner, f.Type.Name, f.Name, "decode annotation", err)
	}
	if !ok {
		if f.Target != nil && f.Target.IsObject() {
			return NewValidationError(owner, f.Name, f.Type.Name, fmt.Sprintf("field of %s type %s must declare @relationship", f.Target.Kind, f.Type.Name))
		}
		return nil
	}
	switch {
	case f.Owner.Kind == KindInterface:
		return NewRelationshipError(owner, f.Type.Name, f.Name, "relationships on interfaces are not supported", nil)
	case f.Owner.Kind == KindProperties:
		return NewRelationshipError(owner, f.Type.Name, f.Name, "relationship properties cannot declare relationships", nil)
	case f.Target == nil || !f.Target.IsObject():
		return NewRelationshipError(owner, f.Type.Name, f.Name, "target must be a node, interface or union", nil)
	case strings.TrimSpace(args.Type) == "":
		return NewRelationshipError(owner, f.Type.Name, f.Name, "missing relationship type", nil)
	case args.Direction != schema.DirectionIn && args.Direction != schema.DirectionOut:
		return NewRelationshipError(owner, f.Type.Name, f.Name, fmt.Sprintf("invalid direction %q", args.Direction), nil)
	}
	rel := &Relationship{Type: args.Type, Direction: args.Direction}
	if args.Properties != "" {
		p, ok := g.types[args.Properties]
		switch {
		case !ok:
			return NewRelationshipError(owner, f.Type.Name, f.Name, "", neogql.NewUnresolvedTypeError(args.Properties, owner+"."+f.Name))
		case p.Kind != KindProperties:
			return NewValidationError(owner, f.Name, args.Properties, fmt.Sprintf("properties type %s must be declared with @relationshipProperties", args.Properties))
		}
		rel.Properties = p
	}
	f.Relationship = rel
	return nil
}

// Type returns the type with the given name, or nil.
func (g *Graph) Type(name string) *Type {
	return g.types[name]
}

// FieldOwners returns the types holding fields: nodes, interfaces and
// relationship properties.
func (g *Graph) FieldOwners() []*Type {
	owners := make([]*Type, 0, len(g.Nodes)+len(g.Interfaces)+len(g.Properties))
	owners = append(owners, g.Nodes...)
	owners = append(owners, g.Interfaces...)
	return append(owners, g.Properties...)
}

// Relationships returns all relationship fields of the graph.
func (g *Graph) Relationships() []*Field {
	var fields []*Field
	for _, t := range g.Nodes {
		for _, f := range t.Fields {
			if f.IsRelationship() {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// Field returns the field with the given name, or nil.
func (t *Type) Field(name string) *Field {
	return t.fields[name]
}

// IsObject reports whether values of the type are graph nodes: a node, an
// interface or a union.
func (t *Type) IsObject() bool {
	return t.Kind == KindNode || t.Kind == KindInterface || t.Kind == KindUnion
}

// IsAbstract reports whether the type is an interface or a union.
func (t *Type) IsAbstract() bool {
	return t.Kind == KindInterface || t.Kind == KindUnion
}

// Pos returns the source position of the type, if known.
func (t *Type) Pos() string {
	if t.def == nil {
		return ""
	}
	return t.def.Pos
}

// IsRelationship reports whether the field carries relationship semantics.
func (f *Field) IsRelationship() bool {
	return f.Relationship != nil
}

// IsList reports whether the field is a list.
func (f *Field) IsList() bool {
	return f.Type.List
}

// IsEnum reports whether the field holds enum values.
func (f *Field) IsEnum() bool {
	return f.Target != nil && f.Target.Kind == KindEnum
}

// ScalarName returns the name of the scalar or enum held by the field, or
// an empty string for relationships.
func (f *Field) ScalarName() string {
	if f.IsRelationship() {
		return ""
	}
	return f.Type.Name
}

// String returns the "Type.field" form of the field.
func (f *Field) String() string {
	if f.Owner == nil {
		return f.Name
	}
	return f.Owner.Name + "." + f.Name
}

// AST returns the gqlparser type of the reference.
func (r *TypeRef) AST() *ast.Type {
	if !r.List {
		return &ast.Type{NamedType: r.Name, NonNull: r.NonNull}
	}
	return &ast.Type{
		Elem:    &ast.Type{NamedType: r.Name, NonNull: r.ElemNonNull},
		NonNull: r.NonNull,
	}
}

// String returns the SDL form of the reference.
func (r *TypeRef) String() string {
	return r.AST().String()
}

// Decode decodes the named annotation into v using its JSON form, so both
// loaded directive usages and typed annotations decode the same way.
// It reports false if the annotation is absent.
func (a Annotations) Decode(name string, v any) (bool, error) {
	raw, ok := a[name]
	if !ok || raw == nil {
		return false, nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return true, err
	}
	return true, json.Unmarshal(buf, v)
}
