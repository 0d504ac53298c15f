package graphql

import (
	"slices"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"go.uber.org/multierr"

	"github.com/syssam/neogql/compiler/gen"
	"github.com/syssam/neogql/schema"
)

// Root and shared output type names.
const (
	QueryType        = "Query"
	SubscriptionType = "Subscription"
	PageInfoType     = "PageInfo"
	EventTypeEnum    = "EventType"
)

// AssembleOptions configure Assemble.
type AssembleOptions struct {
	// Subscriptions generates the change event subscriptions of nodes.
	Subscriptions bool
}

// Assemble materializes the declared types of g and the generated types of
// s into a schema document. Definitions are sorted by name, and so are the
// members of generated types.
func Assemble(g *gen.Graph, s *Shape, opts AssembleOptions) (*ast.SchemaDocument, error) {
	if len(g.Nodes)+len(g.Interfaces) == 0 {
		return nil, gen.NewSchemaError("", "", "schema declares no node or interface types", gen.ErrInvalidSchema)
	}
	a := &assembler{g: g, s: s, defs: make(map[string]*ast.Definition)}
	for _, t := range g.Enums {
		def := &ast.Definition{Kind: ast.Enum, Name: t.Name, Description: t.Description}
		for _, v := range t.Values {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: v})
		}
		a.add(def)
	}
	for _, t := range g.Scalars {
		a.add(&ast.Definition{Kind: ast.Scalar, Name: t.Name, Description: t.Description})
	}
	for _, t := range g.Interfaces {
		a.add(a.object(t, ast.Interface))
	}
	for _, t := range g.Nodes {
		a.add(a.object(t, ast.Object))
	}
	for _, t := range g.Properties {
		a.add(a.object(t, ast.Object))
	}
	for _, t := range g.Unions {
		def := &ast.Definition{Kind: ast.Union, Name: t.Name, Description: t.Description}
		for _, m := range t.Members {
			def.Types = append(def.Types, m.Name)
		}
		a.add(def)
	}
	a.query()
	if opts.Subscriptions {
		a.subscription()
	}
	for _, t := range s.Types() {
		a.add(generated(t))
	}
	a.add(pageInfo())
	a.preludeScalars()
	if a.errs != nil {
		return nil, a.errs
	}
	doc := &ast.SchemaDocument{}
	for _, def := range a.defs {
		doc.Definitions = append(doc.Definitions, def)
	}
	sort.Slice(doc.Definitions, func(i, j int) bool {
		return doc.Definitions[i].Name < doc.Definitions[j].Name
	})
	return doc, nil
}

// Print formats the schema document as SDL.
func Print(doc *ast.SchemaDocument) string {
	var b strings.Builder
	formatter.NewFormatter(&b).FormatSchemaDocument(doc)
	return b.String()
}

type assembler struct {
	g    *gen.Graph
	s    *Shape
	defs map[string]*ast.Definition
	errs error
}

func (a *assembler) add(def *ast.Definition) {
	if _, ok := a.defs[def.Name]; ok {
		a.errs = multierr.Append(a.errs, gen.NewSchemaError(def.Name, "", "generated type collides with another type", gen.ErrInvalidSchema))
		return
	}
	a.defs[def.Name] = def
}

// object converts a declared type. Relationship fields get their filter
// arguments and their connection and aggregate fields.
func (a *assembler) object(t *gen.Type, kind ast.DefinitionKind) *ast.Definition {
	def := &ast.Definition{Kind: kind, Name: t.Name, Description: t.Description}
	for _, i := range t.Interfaces {
		def.Interfaces = append(def.Interfaces, i.Name)
	}
	for _, f := range t.Fields {
		fd := &ast.FieldDefinition{Name: f.Name, Description: f.Description, Type: f.Type.AST()}
		if f.Deprecated {
			fd.Directives = deprecated(f.DeprecatedReason)
		}
		def.Fields = append(def.Fields, fd)
		if !f.IsRelationship() {
			continue
		}
		where := typeNames(f.Target.Name).Where
		n := relationshipNames(f)
		fd.Arguments = ast.ArgumentDefinitionList{
			argument("where", ast.NamedType(where, nil)),
			argument("limit", ast.NamedType("Int", nil)),
			argument("offset", ast.NamedType("Int", nil)),
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: n.Connection,
			Arguments: ast.ArgumentDefinitionList{
				argument("where", ast.NamedType(n.ConnectionWhere, nil)),
				argument("first", ast.NamedType("Int", nil)),
				argument("after", ast.NamedType("String", nil)),
			},
			Type: ast.NonNullNamedType(n.ConnectionType, nil),
		})
		if a.s.Has(n.AggregationSelection) {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name:      n.Aggregate,
				Arguments: ast.ArgumentDefinitionList{argument("where", ast.NamedType(where, nil))},
				Type:      ast.NamedType(n.AggregationSelection, nil),
			})
		}
		a.add(connection(n.ConnectionType, n.RelationshipType))
		rel := &ast.Definition{
			Kind: ast.Object,
			Name: n.RelationshipType,
			Fields: ast.FieldList{
				{Name: "cursor", Type: ast.NonNullNamedType("String", nil)},
				{Name: "node", Type: ast.NonNullNamedType(f.Target.Name, nil)},
			},
		}
		if p := f.Relationship.Properties; p != nil {
			rel.Fields = append(rel.Fields, &ast.FieldDefinition{Name: "properties", Type: ast.NamedType(p.Name, nil)})
		}
		a.add(rel)
	}
	return def
}

// query generates the root query: a list, a connection and an aggregate
// field per node and interface, and a list field per union.
func (a *assembler) query() {
	q := &ast.Definition{Kind: ast.Object, Name: QueryType}
	for _, t := range slices.Concat(a.g.Nodes, a.g.Interfaces) {
		names := typeNames(t.Name)
		where := argument("where", ast.NamedType(names.Where, nil))
		q.Fields = append(q.Fields,
			&ast.FieldDefinition{
				Name: names.List,
				Arguments: ast.ArgumentDefinitionList{
					where,
					argument("limit", ast.NamedType("Int", nil)),
					argument("offset", ast.NamedType("Int", nil)),
				},
				Type: ast.NonNullListType(ast.NonNullNamedType(t.Name, nil), nil),
			},
			&ast.FieldDefinition{
				Name: names.Connection,
				Arguments: ast.ArgumentDefinitionList{
					where,
					argument("first", ast.NamedType("Int", nil)),
					argument("after", ast.NamedType("String", nil)),
				},
				Type: ast.NonNullNamedType(names.ConnectionType, nil),
			},
			&ast.FieldDefinition{
				Name:      names.Aggregate,
				Arguments: ast.ArgumentDefinitionList{where},
				Type:      ast.NonNullNamedType(names.AggregateSelection, nil),
			},
		)
		a.add(connection(names.ConnectionType, names.EdgeType))
		a.add(&ast.Definition{
			Kind: ast.Object,
			Name: names.EdgeType,
			Fields: ast.FieldList{
				{Name: "cursor", Type: ast.NonNullNamedType("String", nil)},
				{Name: "node", Type: ast.NonNullNamedType(t.Name, nil)},
			},
		})
	}
	for _, t := range a.g.Unions {
		names := typeNames(t.Name)
		q.Fields = append(q.Fields, &ast.FieldDefinition{
			Name: names.List,
			Arguments: ast.ArgumentDefinitionList{
				argument("where", ast.NamedType(names.Where, nil)),
				argument("limit", ast.NamedType("Int", nil)),
				argument("offset", ast.NamedType("Int", nil)),
			},
			Type: ast.NonNullListType(ast.NonNullNamedType(t.Name, nil), nil),
		})
	}
	sortFields(q.Fields)
	a.add(q)
}

// subscription generates the change event subscriptions of nodes. The where
// argument is dropped when the node has no SubscriptionWhere input.
func (a *assembler) subscription() {
	if len(a.g.Nodes) == 0 {
		return
	}
	sub := &ast.Definition{Kind: ast.Object, Name: SubscriptionType}
	for _, t := range a.g.Nodes {
		names := typeNames(t.Name)
		var args ast.ArgumentDefinitionList
		if a.s.Has(names.SubscriptionWhere) {
			args = ast.ArgumentDefinitionList{argument("where", ast.NamedType(names.SubscriptionWhere, nil))}
		}
		for _, ev := range []struct{ field, event, payload string }{
			{names.Created, names.CreatedEvent, "created" + t.Name},
			{names.Updated, names.UpdatedEvent, "updated" + t.Name},
			{names.Deleted, names.DeletedEvent, "deleted" + t.Name},
		} {
			sub.Fields = append(sub.Fields, &ast.FieldDefinition{
				Name:      ev.field,
				Arguments: args,
				Type:      ast.NonNullNamedType(ev.event, nil),
			})
			a.add(&ast.Definition{
				Kind: ast.Object,
				Name: ev.event,
				Fields: ast.FieldList{
					{Name: "event", Type: ast.NonNullNamedType(EventTypeEnum, nil)},
					{Name: "timestamp", Type: ast.NonNullNamedType("Float", nil)},
					{Name: ev.payload, Type: ast.NonNullNamedType(t.Name, nil)},
				},
			})
		}
	}
	sortFields(sub.Fields)
	a.add(sub)
	a.add(&ast.Definition{
		Kind: ast.Enum,
		Name: EventTypeEnum,
		EnumValues: ast.EnumValueList{
			{Name: "CREATE"},
			{Name: "UPDATE"},
			{Name: "DELETE"},
		},
	})
}

// preludeScalars declares the prelude scalars the document refers to.
func (a *assembler) preludeScalars() {
	used := make(map[string]bool)
	mark := func(t *ast.Type) {
		if name := namedType(t); schema.IsPreludeScalar(name) {
			used[name] = true
		}
	}
	for _, def := range a.defs {
		for _, f := range def.Fields {
			mark(f.Type)
			for _, arg := range f.Arguments {
				mark(arg.Type)
			}
		}
	}
	for _, name := range schema.Scalars {
		if used[name] {
			a.add(&ast.Definition{Kind: ast.Scalar, Name: name})
		}
	}
}

// generated converts a generated type.
func generated(t *GeneratedType) *ast.Definition {
	def := &ast.Definition{Kind: ast.InputObject, Name: t.Name}
	if t.Output {
		def.Kind = ast.Object
	}
	for _, m := range t.Members {
		fd := &ast.FieldDefinition{Name: m.Name, Type: m.Type}
		if m.Deprecated != "" {
			fd.Directives = deprecated(m.Deprecated)
		}
		def.Fields = append(def.Fields, fd)
	}
	sortFields(def.Fields)
	return def
}

func connection(name, edge string) *ast.Definition {
	return &ast.Definition{
		Kind: ast.Object,
		Name: name,
		Fields: ast.FieldList{
			{Name: "edges", Type: ast.NonNullListType(ast.NonNullNamedType(edge, nil), nil)},
			{Name: "totalCount", Type: ast.NonNullNamedType("Int", nil)},
			{Name: "pageInfo", Type: ast.NonNullNamedType(PageInfoType, nil)},
		},
	}
}

func pageInfo() *ast.Definition {
	return &ast.Definition{
		Kind: ast.Object,
		Name: PageInfoType,
		Fields: ast.FieldList{
			{Name: "hasNextPage", Type: ast.NonNullNamedType("Boolean", nil)},
			{Name: "hasPreviousPage", Type: ast.NonNullNamedType("Boolean", nil)},
			{Name: "startCursor", Type: ast.NamedType("String", nil)},
			{Name: "endCursor", Type: ast.NamedType("String", nil)},
		},
	}
}

func argument(name string, t *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: t}
}

func deprecated(reason string) ast.DirectiveList {
	d := &ast.Directive{Name: "deprecated"}
	if reason != "" {
		d.Arguments = ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: reason},
		}}
	}
	return ast.DirectiveList{d}
}

func sortFields(fields ast.FieldList) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
}
