package graphql

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/syssam/neogql"
	"github.com/syssam/neogql/compiler/gen"
)

// Visibility tells which filter families are generated for a field.
type Visibility struct {
	// Value enables value filters: operator inputs on scalars, and
	// relationship and connection quantifiers on relationships.
	Value bool
	// Aggregate enables aggregation filters. Always false for relationships
	// to interfaces and unions.
	Aggregate bool
}

// Resolve returns the visibility of a field of the given kind. Aggregation
// over an abstract target is unsupported, so it is dropped silently no matter
// what the directive asked for.
func Resolve(kind FieldKind, v DirectiveValues) Visibility {
	vis := Visibility{Value: v.ByValue, Aggregate: v.ByAggregate}
	if kind == AbstractRelationship {
		vis.Aggregate = false
	}
	return vis
}

// Decision is the resolved visibility of one field.
type Decision struct {
	Field      *gen.Field
	Kind       FieldKind
	Directive  DirectiveValues
	Visibility Visibility
}

// Decisions holds the decision of every field of a graph, keyed by owner
// type and field name. It is not modified after Decide returns and is safe
// for concurrent reads.
type Decisions struct {
	owners map[string]map[string]*Decision
}

// Lookup returns the decision of owner.field.
func (d *Decisions) Lookup(owner, field string) (*Decision, bool) {
	dec, ok := d.owners[owner][field]
	return dec, ok
}

// Owner returns the decisions of the fields of the owner type, in field
// declaration order when t is known to the graph.
func (d *Decisions) Owner(t *gen.Type) []*Decision {
	fields := d.owners[t.Name]
	decs := make([]*Decision, 0, len(fields))
	for _, f := range t.Fields {
		if dec, ok := fields[f.Name]; ok {
			decs = append(decs, dec)
		}
	}
	return decs
}

// Len returns the number of decided fields.
func (d *Decisions) Len() int {
	n := 0
	for _, fields := range d.owners {
		n += len(fields)
	}
	return n
}

// Decide resolves the visibility of every field of every node, interface
// and relationship properties type. Classification errors are collected and
// returned as a single configuration error.
func Decide(g *gen.Graph, defaults DirectiveValues, logger *zap.Logger) (*Decisions, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Decisions{owners: make(map[string]map[string]*Decision)}
	var errs error
	for _, t := range g.FieldOwners() {
		fields := make(map[string]*Decision, len(t.Fields))
		for _, f := range t.Fields {
			kind, err := Classify(f)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			v, err := ReadDirective(f, defaults)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			dec := &Decision{Field: f, Kind: kind, Directive: v, Visibility: Resolve(kind, v)}
			fields[f.Name] = dec
			logger.Debug("field visibility resolved",
				zap.String("type", t.Name),
				zap.String("field", f.Name),
				zap.Stringer("kind", kind),
				zap.Bool("value", dec.Visibility.Value),
				zap.Bool("aggregate", dec.Visibility.Aggregate),
			)
		}
		d.owners[t.Name] = fields
	}
	if errs != nil {
		return nil, neogql.NewConfigurationError("field visibility", errs)
	}
	return d, nil
}
