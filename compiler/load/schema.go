package load

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/multierr"

	"github.com/syssam/neogql"
	"github.com/syssam/neogql/schema"
)

// Kind classifies a loaded type definition.
type Kind string

// Kinds of loaded types.
const (
	KindNode       Kind = "node"
	KindInterface  Kind = "interface"
	KindUnion      Kind = "union"
	KindProperties Kind = "properties"
	KindEnum       Kind = "enum"
	KindScalar     Kind = "scalar"
)

// Schema represents the user type definitions loaded from SDL sources.
type Schema struct {
	Types []*Type `json:"types,omitempty"`
}

// Type represents an object, interface, union, enum or scalar definition.
type Type struct {
	Name        string         `json:"name,omitempty"`
	Kind        Kind           `json:"kind,omitempty"`
	Pos         string         `json:"-"`
	Description string         `json:"description,omitempty"`
	Fields      []*Field       `json:"fields,omitempty"`
	Interfaces  []string       `json:"interfaces,omitempty"`
	Members     []string       `json:"members,omitempty"`
	Values      []string       `json:"values,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

// Field represents a field of an object or interface definition.
type Field struct {
	Name             string         `json:"name,omitempty"`
	Type             string         `json:"type,omitempty"`
	List             bool           `json:"list,omitempty"`
	NonNull          bool           `json:"non_null,omitempty"`
	ElemNonNull      bool           `json:"elem_non_null,omitempty"`
	Pos              string         `json:"-"`
	Description      string         `json:"description,omitempty"`
	Deprecated       bool           `json:"deprecated,omitempty"`
	DeprecatedReason string         `json:"deprecated_reason,omitempty"`
	Annotations      map[string]any `json:"annotations,omitempty"`
}

// Reserved root operation types are generated and cannot be declared.
var rootTypes = map[string]bool{"Query": true, "Mutation": true, "Subscription": true}

// Type returns the type with the given name, or nil.
func (s *Schema) Type(name string) *Type {
	for _, t := range s.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Parse loads the given SDL sources. The schema prelude is prepended, so
// the sources may use the neogql directives and scalars directly.
func Parse(sources ...*ast.Source) (*Schema, error) {
	if len(sources) == 0 {
		return nil, errors.New("load: no schema sources")
	}
	as, err := gqlparser.LoadSchema(append([]*ast.Source{schema.Prelude}, sources...)...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return FromAST(as)
}

// ParseFiles loads SDL files matching the given paths or glob patterns.
func ParseFiles(patterns ...string) (*Schema, error) {
	var sources []*ast.Source
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("load: pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("load: no files match %q", p)
		}
		for _, m := range matches {
			buf, err := os.ReadFile(m)
			if err != nil {
				return nil, fmt.Errorf("load: %w", err)
			}
			sources = append(sources, &ast.Source{Name: m, Input: string(buf)})
		}
	}
	return Parse(sources...)
}

// FromAST converts a validated gqlparser schema into loaded types.
// Built-in definitions, including the prelude, are skipped.
func FromAST(as *ast.Schema) (*Schema, error) {
	names := make([]string, 0, len(as.Types))
	for name, def := range as.Types {
		if !def.BuiltIn {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var (
		errs error
		s    = &Schema{}
	)
	for _, name := range names {
		t, err := newType(as.Types[name])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		s.Types = append(s.Types, t)
	}
	if errs != nil {
		return nil, errs
	}
	return s, nil
}

func newType(def *ast.Definition) (*Type, error) {
	if rootTypes[def.Name] {
		return nil, fmt.Errorf("load: %s: root operation types are generated and cannot be declared", def.Name)
	}
	t := &Type{
		Name:        def.Name,
		Pos:         pos(def.Position),
		Description: def.Description,
		Interfaces:  def.Interfaces,
		Annotations: make(map[string]any),
	}
	switch def.Kind {
	case ast.Object:
		t.Kind = KindNode
		if def.Directives.ForName(schema.RelationshipPropertiesDirective) != nil {
			t.Kind = KindProperties
		}
	case ast.Interface:
		t.Kind = KindInterface
	case ast.Union:
		t.Kind = KindUnion
		t.Members = def.Types
	case ast.Enum:
		t.Kind = KindEnum
		for _, v := range def.EnumValues {
			t.Values = append(t.Values, v.Name)
		}
	case ast.Scalar:
		t.Kind = KindScalar
	default:
		return nil, fmt.Errorf("load: %s: %s definitions are generated and cannot be declared", def.Name, strings.ToLower(string(def.Kind)))
	}
	var errs error
	for _, d := range def.Directives {
		if err := t.addDirective(d, def.Name); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		f, err := newField(def.Name, fd)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		t.Fields = append(t.Fields, f)
	}
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

func newField(owner string, fd *ast.FieldDefinition) (*Field, error) {
	f := &Field{
		Name:        fd.Name,
		NonNull:     fd.Type.NonNull,
		Pos:         pos(fd.Position),
		Description: fd.Description,
		Annotations: make(map[string]any),
	}
	switch elem := fd.Type.Elem; {
	case elem == nil:
		f.Type = fd.Type.NamedType
	case elem.Elem != nil:
		return nil, fmt.Errorf("load: %s.%s: nested list types are not supported", owner, fd.Name)
	default:
		f.Type = elem.NamedType
		f.List = true
		f.ElemNonNull = elem.NonNull
	}
	var errs error
	for _, d := range fd.Directives {
		if d.Name == "deprecated" {
			f.Deprecated = true
			if a := d.Arguments.ForName("reason"); a != nil && a.Value != nil {
				f.DeprecatedReason = a.Value.Raw
			}
			continue
		}
		errs = multierr.Append(errs, f.addDirective(d, owner+"."+fd.Name))
	}
	if errs != nil {
		return nil, errs
	}
	return f, nil
}

func (t *Type) addDirective(d *ast.Directive, at string) error {
	an, err := directive(d, at)
	if err != nil {
		return err
	}
	addAnnotation(t.Annotations, an)
	return nil
}

func (f *Field) addDirective(d *ast.Directive, at string) error {
	an, err := directive(d, at)
	if err != nil {
		return err
	}
	addAnnotation(f.Annotations, an)
	return nil
}

// directive converts a directive usage into an annotation, checking the
// argument literals of the neogql directives.
func directive(d *ast.Directive, at string) (*schema.Directive, error) {
	an := &schema.Directive{Directive: d.Name, Args: make(map[string]any, len(d.Arguments))}
	var errs error
	for _, a := range d.Arguments {
		if err := checkArgument(d.Name, a, at); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		v, err := a.Value.Value(nil)
		if err != nil {
			errs = multierr.Append(errs, neogql.NewDirectiveError(d.Name, a.Name, at, err.Error()))
			continue
		}
		an.Args[a.Name] = v
	}
	if d.Name == schema.RelationshipDirective {
		for _, name := range []string{schema.TypeArg, schema.DirectionArg} {
			if _, ok := an.Args[name]; !ok && d.Arguments.ForName(name) == nil {
				errs = multierr.Append(errs, neogql.NewDirectiveError(d.Name, name, at, "argument is required"))
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	return an, nil
}

func checkArgument(name string, a *ast.Argument, at string) error {
	if a.Value == nil {
		return neogql.NewDirectiveError(name, a.Name, at, "missing value")
	}
	kind := a.Value.Kind
	switch {
	case name == schema.FilterableDirective && kind != ast.BooleanValue:
		return neogql.NewDirectiveError(name, a.Name, at, fmt.Sprintf("expected Boolean literal, got %s", a.Value.Raw))
	case name == schema.RelationshipDirective && a.Name == schema.DirectionArg:
		if kind != ast.EnumValue || (a.Value.Raw != schema.DirectionIn && a.Value.Raw != schema.DirectionOut) {
			return neogql.NewDirectiveError(name, a.Name, at, fmt.Sprintf("expected IN or OUT, got %s", a.Value.Raw))
		}
	case name == schema.RelationshipDirective && kind != ast.StringValue:
		return neogql.NewDirectiveError(name, a.Name, at, fmt.Sprintf("expected String literal, got %s", a.Value.Raw))
	case name == schema.RelationshipDirective && a.Name == schema.TypeArg && strings.TrimSpace(a.Value.Raw) == "":
		return neogql.NewDirectiveError(name, a.Name, at, "relationship type cannot be empty")
	}
	return nil
}

func addAnnotation(annotations map[string]any, an schema.Annotation) {
	curr, ok := annotations[an.Name()]
	if !ok {
		annotations[an.Name()] = an
		return
	}
	if m, ok := curr.(schema.Merger); ok {
		annotations[an.Name()] = m.Merge(an)
	}
}

func pos(p *ast.Position) string {
	if p == nil || p.Src == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", p.Src.Name, p.Line)
}
