package graphql

import (
	"github.com/dave/jennifer/jen"
	"github.com/vektah/gqlparser/v2/ast"
)

// Models renders the generated input types of s as Go structs, one per
// input, with JSON tags matching the GraphQL member names.
func Models(s *Shape, pkg, header string) *jen.File {
	f := jen.NewFile(pkg)
	if header != "" {
		f.HeaderComment(header)
	}
	for _, t := range s.Inputs() {
		var fields []jen.Code
		used := make(map[string]bool, len(t.Members))
		for _, name := range t.MemberNames() {
			m := t.Member(name)
			id := goName(m.Name)
			for used[id] {
				id += "_"
			}
			used[id] = true
			if m.Deprecated != "" {
				fields = append(fields, jen.Comment("Deprecated: "+m.Deprecated))
			}
			fields = append(fields, jen.Id(id).Add(goType(s, m.Type)).Tag(map[string]string{"json": m.Name + ",omitempty"}))
		}
		f.Commentf("%s is the %s filter input.", t.Name, t.Key.Kind)
		f.Type().Id(t.Name).Struct(fields...)
	}
	return f
}

// goType returns the Go type of an input member. Lists become slices,
// everything else a pointer so an absent member stays distinguishable.
func goType(s *Shape, t *ast.Type) *jen.Statement {
	if t.Elem != nil {
		return jen.Index().Add(goNamed(s, t.Elem.NamedType))
	}
	return jen.Op("*").Add(goNamed(s, t.NamedType))
}

func goNamed(s *Shape, name string) *jen.Statement {
	if s.Has(name) {
		return jen.Id(name)
	}
	switch name {
	case "Int":
		return jen.Int()
	case "Float":
		return jen.Float64()
	case "Boolean":
		return jen.Bool()
	case "BigInt":
		return jen.Int64()
	default:
		// ID, String, temporal scalars, enums and custom scalars travel as
		// strings.
		return jen.String()
	}
}
