package graphql

import (
	"fmt"

	"github.com/syssam/neogql"
	"github.com/syssam/neogql/compiler/gen"
)

// FieldKind classifies a field for filter generation.
type FieldKind uint8

// Field kinds.
const (
	_ FieldKind = iota
	// ScalarField holds a scalar, enum or list of them.
	ScalarField
	// ConcreteRelationship is a relationship to a single node type.
	ConcreteRelationship
	// AbstractRelationship is a relationship to an interface or a union.
	AbstractRelationship
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case ScalarField:
		return "scalar"
	case ConcreteRelationship:
		return "concrete-relationship"
	case AbstractRelationship:
		return "abstract-relationship"
	default:
		return fmt.Sprintf("FieldKind(%d)", k)
	}
}

// IsRelationship reports whether the kind is a relationship kind.
func (k FieldKind) IsRelationship() bool {
	return k == ConcreteRelationship || k == AbstractRelationship
}

// Classify returns the kind of f. A relationship whose target is not a
// node, an interface or a union cannot be classified.
func Classify(f *gen.Field) (FieldKind, error) {
	switch {
	case f == nil:
		return 0, gen.NewSchemaError("", "", "nil field", neogql.ErrUnknownFieldKind)
	case f.Owner == nil:
		return 0, gen.NewSchemaError("", f.Name, "field has no owner type", neogql.ErrUnknownFieldKind)
	case !f.IsRelationship():
		return ScalarField, nil
	case f.Target == nil:
		return 0, gen.NewSchemaError(f.Owner.Name, f.Name, "relationship has no target type", neogql.ErrUnknownFieldKind)
	}
	switch f.Target.Kind {
	case gen.KindNode:
		return ConcreteRelationship, nil
	case gen.KindInterface, gen.KindUnion:
		return AbstractRelationship, nil
	default:
		return 0, gen.NewSchemaError(f.Owner.Name, f.Name, fmt.Sprintf("relationship target %s is a %s", f.Target.Name, f.Target.Kind), neogql.ErrUnknownFieldKind)
	}
}
