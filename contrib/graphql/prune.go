package graphql

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/neogql"
	"github.com/syssam/neogql/compiler/gen"
	"github.com/syssam/neogql/schema"
)

// PruneOptions configure Prune.
type PruneOptions struct {
	// Subscriptions generates the SubscriptionWhere inputs of nodes.
	Subscriptions bool
	// ExcludeDeprecated drops every legacy member. The generic members
	// alone then decide whether a container survives.
	ExcludeDeprecated bool
	// Workers bounds the owner types processed in parallel. Zero means no
	// limit.
	Workers int
	Logger  *zap.Logger
}

// Prune computes the generated types of g from the field decisions.
//
// Every owner type is expanded independently from the decisions, which are
// read only. The fragments are then merged and containers left without
// conditional members are removed together with the members referring to
// them, until nothing changes. Types no longer reachable from a query or
// field argument are dropped last.
func Prune(ctx context.Context, g *gen.Graph, d *Decisions, opts PruneOptions) (*Shape, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	owners := make([]*gen.Type, 0, len(g.Nodes)+len(g.Interfaces)+len(g.Unions)+len(g.Properties))
	owners = append(owners, g.Nodes...)
	owners = append(owners, g.Interfaces...)
	owners = append(owners, g.Unions...)
	owners = append(owners, g.Properties...)

	fragments := make([][]*GeneratedType, len(owners))
	grp, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		grp.SetLimit(opts.Workers)
	}
	for i, t := range owners {
		grp.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			b := &builder{d: d, opts: opts, seen: make(map[string]bool)}
			if err := b.owner(t); err != nil {
				return err
			}
			fragments[i] = b.types
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	s := newShape()
	for _, frag := range fragments {
		for _, t := range frag {
			prev := s.Type(t.Name)
			switch {
			case prev == nil:
				s.add(t)
			case prev.Key != t.Key:
				return nil, neogql.NewConfigurationError("generated types",
					fmt.Errorf("type %s is generated for both %+v and %+v", t.Name, prev.Key, t.Key))
			}
		}
	}
	cascade(s, logger)
	if err := validate(g, s); err != nil {
		return nil, err
	}
	logger.Debug("generated types pruned", zap.Int("types", s.Len()))
	return s, nil
}

// cascade removes the containers without conditional members and the
// members referring to them until a fixpoint, then drops the types not
// reachable from a root.
func cascade(s *Shape, logger *zap.Logger) {
	for {
		removed := make(map[string]bool)
		for _, t := range s.Types() {
			if !t.Pinned && t.conditional() == 0 {
				removed[t.Name] = true
				s.remove(t)
				logger.Debug("empty type removed", zap.String("type", t.Name), zap.Stringer("kind", t.Key.Kind))
			}
		}
		if len(removed) == 0 {
			break
		}
		for _, t := range s.Types() {
			t.Members = slices.DeleteFunc(t.Members, func(m *Member) bool {
				return removed[namedType(m.Type)]
			})
		}
	}
	reached := make(map[string]bool)
	var visit func(string)
	visit = func(name string) {
		t := s.Type(name)
		if t == nil || reached[name] {
			return
		}
		reached[name] = true
		for _, m := range t.Members {
			visit(namedType(m.Type))
		}
	}
	for _, t := range s.Types() {
		if t.root() {
			visit(t.Name)
		}
	}
	for _, t := range s.Types() {
		if !reached[t.Name] {
			s.remove(t)
			logger.Debug("unreferenced type removed", zap.String("type", t.Name), zap.Stringer("kind", t.Key.Kind))
		}
	}
}

// validate reports members whose type is neither generated nor declared.
func validate(g *gen.Graph, s *Shape) error {
	var errs error
	for _, t := range s.Types() {
		for _, m := range t.Members {
			name := namedType(m.Type)
			if s.Has(name) || g.Type(name) != nil || isBuiltinScalar(name) || schema.IsPreludeScalar(name) {
				continue
			}
			errs = multierr.Append(errs, neogql.NewUnresolvedTypeError(name, t.Name+"."+m.Name))
		}
	}
	return neogql.NewConfigurationError("generated types", errs)
}

// builder expands the generated types of one owner type. It only reads the
// decisions, so builders run in parallel.
type builder struct {
	d     *Decisions
	opts  PruneOptions
	types []*GeneratedType
	seen  map[string]bool
}

func (b *builder) owner(t *gen.Type) error {
	names := typeNames(t.Name)
	switch t.Kind {
	case gen.KindNode:
		b.where(t, Where, names.Where).Pinned = true
		if b.opts.Subscriptions {
			b.where(t, SubscriptionWhere, names.SubscriptionWhere)
		}
		b.aggregateSelection(t, names.AggregateSelection)
		for _, dec := range b.d.Owner(t) {
			if dec.Kind.IsRelationship() {
				b.relationship(dec)
			}
		}
	case gen.KindInterface:
		b.where(t, Where, names.Where).Pinned = true
		b.aggregateSelection(t, names.AggregateSelection)
	case gen.KindUnion:
		w := b.input(names.Where, ShapeKey{Owner: t.Name, Kind: Where}, false)
		w.Pinned = true
		for _, m := range t.Members {
			b.member(w, &Member{Name: m.Name, Type: ast.NamedType(typeNames(m.Name).Where, nil)})
		}
	case gen.KindProperties:
		b.where(t, Where, names.Where)
	default:
		return gen.NewSchemaError(t.Name, "", fmt.Sprintf("no filters for %s types", t.Kind), neogql.ErrUnknownFieldKind)
	}
	return nil
}

// input starts a generated input type. Combinable inputs get the AND, OR
// and NOT members.
func (b *builder) input(name string, key ShapeKey, combinable bool) *GeneratedType {
	t := &GeneratedType{Name: name, Key: key}
	if combinable {
		t.Members = []*Member{
			{Name: "AND", Type: ast.ListType(ast.NonNullNamedType(name, nil), nil), Logical: true},
			{Name: "OR", Type: ast.ListType(ast.NonNullNamedType(name, nil), nil), Logical: true},
			{Name: "NOT", Type: ast.NamedType(name, nil), Logical: true},
		}
	}
	b.seen[name] = true
	b.types = append(b.types, t)
	return t
}

func (b *builder) output(name string, key ShapeKey) *GeneratedType {
	t := &GeneratedType{Name: name, Key: key, Output: true}
	b.seen[name] = true
	b.types = append(b.types, t)
	return t
}

func (b *builder) member(t *GeneratedType, m *Member) {
	if m.Deprecated != "" && b.opts.ExcludeDeprecated {
		return
	}
	t.Members = append(t.Members, m)
}

// where builds the Where or SubscriptionWhere input of t. Subscription
// filters cover scalar fields only.
func (b *builder) where(t *gen.Type, kind ShapeKind, name string) *GeneratedType {
	w := b.input(name, ShapeKey{Owner: t.Name, Kind: kind}, true)
	for _, dec := range b.d.Owner(t) {
		switch {
		case dec.Kind == ScalarField:
			if dec.Visibility.Value {
				b.valueFilters(w, dec.Field)
			}
		case kind == Where:
			b.relationshipFilters(w, dec)
		}
	}
	return w
}

// valueFilters adds the generic and legacy value filters of a scalar field.
func (b *builder) valueFilters(w *GeneratedType, f *gen.Field) {
	ops, scalar, list := FieldOps(f), f.ScalarName(), f.IsList()
	b.member(w, &Member{Name: f.Name, Type: ast.NamedType(b.filters(filtersName(f), scalar, ops, list), nil)})
	for _, o := range operators {
		if !ops.Has(o.op) {
			continue
		}
		b.member(w, &Member{
			Name:       f.Name + "_" + o.legacy,
			Type:       operand(o.op, scalar, list),
			Deprecated: deprecation(f.Name, o.generic),
		})
	}
}

// filters returns the name of a shared operator input, generating it on
// first use.
func (b *builder) filters(name, scalar string, ops Op, list bool) string {
	if b.seen[name] {
		return name
	}
	key := ShapeKey{Owner: scalar, Kind: ScalarFilters}
	if list {
		key.Member = "list"
	}
	t := b.input(name, key, false)
	for _, o := range operators {
		if ops.Has(o.op) {
			b.member(t, &Member{Name: o.generic, Type: operand(o.op, scalar, list)})
		}
	}
	return name
}

// quantifier is a relationship quantifier: r_SOME, r: {some}.
type quantifier struct {
	legacy  string
	generic string
}

var quantifiers = []quantifier{
	{"ALL", "all"},
	{"NONE", "none"},
	{"SINGLE", "single"},
	{"SOME", "some"},
}

// relationshipFilters adds the members of a relationship field to the Where
// input of its owner.
func (b *builder) relationshipFilters(w *GeneratedType, dec *Decision) {
	f := dec.Field
	n := relationshipNames(f)
	if dec.Visibility.Value {
		b.member(w, &Member{Name: f.Name, Type: ast.NamedType(b.relationshipQuantifiers(f.Target), nil)})
		for _, q := range quantifiers {
			b.member(w, &Member{
				Name:       f.Name + "_" + q.legacy,
				Type:       ast.NamedType(typeNames(f.Target.Name).Where, nil),
				Deprecated: deprecation(f.Name, q.generic),
			})
		}
		for _, q := range quantifiers {
			b.member(w, &Member{
				Name:       n.Connection + "_" + q.legacy,
				Type:       ast.NamedType(n.ConnectionWhere, nil),
				Deprecated: deprecation(n.Connection, q.generic),
			})
		}
	}
	// Kept or dropped with the connection filters.
	b.member(w, &Member{Name: n.Connection, Type: ast.NamedType(n.ConnectionFilters, nil)})
	if dec.Visibility.Aggregate {
		b.member(w, &Member{
			Name:       n.Aggregate,
			Type:       ast.NamedType(n.AggregateInput, nil),
			Deprecated: deprecation(n.Connection, "aggregate"),
		})
	}
}

// relationshipQuantifiers returns the quantifier input over nodes of the
// target type, generating it on first use.
func (b *builder) relationshipQuantifiers(target *gen.Type) string {
	name := relationshipFiltersName(target.Name)
	if b.seen[name] {
		return name
	}
	t := b.input(name, ShapeKey{Owner: target.Name, Kind: RelationshipFilters}, false)
	for _, q := range quantifiers {
		b.member(t, &Member{Name: q.generic, Type: ast.NamedType(typeNames(target.Name).Where, nil)})
	}
	return name
}

// relationship generates the connection and aggregation types of a
// relationship field.
func (b *builder) relationship(dec *Decision) {
	f := dec.Field
	n := relationshipNames(f)
	owner := f.Owner.Name
	b.connectionWhere(f, n)

	cf := b.input(n.ConnectionFilters, ShapeKey{Owner: owner, Field: f.Name, Kind: ConnectionFilters}, false)
	if dec.Visibility.Value {
		for _, q := range quantifiers {
			b.member(cf, &Member{Name: q.generic, Type: ast.NamedType(n.ConnectionWhere, nil)})
		}
	}
	if dec.Visibility.Aggregate {
		b.member(cf, &Member{Name: "aggregate", Type: ast.NamedType(n.AggregateInput, nil)})
		b.aggregateInput(f, n)
	}
	if dec.Kind == ConcreteRelationship {
		b.aggregationSelection(f, n)
	}
}

// connectionWhere generates the argument of the connection field. Union
// targets get one input per member.
func (b *builder) connectionWhere(f *gen.Field, n *RelationshipNames) {
	key := ShapeKey{Owner: f.Owner.Name, Field: f.Name, Kind: ConnectionWhere}
	edge := func(t *GeneratedType) {
		if p := f.Relationship.Properties; p != nil {
			b.member(t, &Member{Name: "edge", Type: ast.NamedType(typeNames(p.Name).Where, nil)})
		}
	}
	if f.Target.Kind != gen.KindUnion {
		cw := b.input(n.ConnectionWhere, key, true)
		cw.Pinned = true
		b.member(cw, &Member{Name: "node", Type: ast.NamedType(typeNames(f.Target.Name).Where, nil)})
		edge(cw)
		return
	}
	cw := b.input(n.ConnectionWhere, key, false)
	cw.Pinned = true
	for _, m := range f.Target.Members {
		mkey := key
		mkey.Member = m.Name
		mw := b.input(n.memberConnectionWhere(m.Name), mkey, true)
		b.member(mw, &Member{Name: "node", Type: ast.NamedType(typeNames(m.Name).Where, nil)})
		edge(mw)
		b.member(cw, &Member{Name: m.Name, Type: ast.NamedType(mw.Name, nil)})
	}
}

// aggregateInput generates the aggregation filters of a relationship to a
// node type.
func (b *builder) aggregateInput(f *gen.Field, n *RelationshipNames) {
	owner := f.Owner.Name
	ai := b.input(n.AggregateInput, ShapeKey{Owner: owner, Field: f.Name, Kind: AggregateInput}, true)
	b.member(ai, &Member{Name: "count", Type: ast.NamedType(b.filters("IntScalarFilters", "Int", OpsOrdered, false), nil)})
	for _, op := range countOps {
		o := operatorOf(op)
		b.member(ai, &Member{Name: "count_" + o.legacy, Type: ast.NamedType("Int", nil), Deprecated: deprecation("count", o.generic)})
	}
	nw := b.aggregationWhere(n.NodeAggregationWhereInput, ShapeKey{Owner: owner, Field: f.Name, Kind: NodeAggregationWhereInput}, f.Target)
	b.member(ai, &Member{Name: "node", Type: ast.NamedType(nw, nil)})
	if p := f.Relationship.Properties; p != nil {
		ew := b.aggregationWhere(n.EdgeAggregationWhereInput, ShapeKey{Owner: owner, Field: f.Name, Kind: EdgeAggregationWhereInput}, p)
		b.member(ai, &Member{Name: "edge", Type: ast.NamedType(ew, nil)})
	}
}

// aggregationWhere generates the aggregation filters over the fields of src,
// the target node or the relationship properties.
func (b *builder) aggregationWhere(name string, key ShapeKey, src *gen.Type) string {
	w := b.input(name, key, true)
	for _, dec := range b.d.Owner(src) {
		if dec.Kind != ScalarField || !dec.Visibility.Aggregate {
			continue
		}
		f := dec.Field
		aggs := fieldAggregations(f)
		if len(aggs) == 0 {
			continue
		}
		b.member(w, &Member{Name: f.Name, Type: ast.NamedType(b.aggregationFilters(f.ScalarName(), aggs), nil)})
		for _, a := range aggs {
			for _, c := range aggregationComparators {
				b.member(w, &Member{
					Name:       f.Name + "_" + a.legacy + "_" + c.legacy,
					Type:       ast.NamedType(a.result, nil),
					Deprecated: deprecation(f.Name, a.generic, c.generic),
				})
			}
		}
	}
	return name
}

func (b *builder) aggregationFilters(scalar string, aggs []aggregation) string {
	name := aggregationFiltersName(scalar)
	if b.seen[name] {
		return name
	}
	t := b.input(name, ShapeKey{Owner: scalar, Member: "aggregation", Kind: ScalarFilters}, false)
	for _, a := range aggs {
		filters := b.filters(a.result+"ScalarFilters", a.result, scalarOps(a.result), false)
		b.member(t, &Member{Name: a.generic, Type: ast.NamedType(filters, nil)})
	}
	return name
}

// aggregateSelection generates the output of the aggregate query of t.
func (b *builder) aggregateSelection(t *gen.Type, name string) {
	sel := b.output(name, ShapeKey{Owner: t.Name, Kind: AggregateSelection})
	sel.Pinned = true
	b.member(sel, &Member{Name: "count", Type: ast.NonNullNamedType("Int", nil)})
	b.selectFields(sel, t)
}

// aggregationSelection generates the output of the aggregate field of a
// relationship to a node type.
func (b *builder) aggregationSelection(f *gen.Field, n *RelationshipNames) {
	key := ShapeKey{Owner: f.Owner.Name, Field: f.Name, Kind: AggregateSelection}
	sel := b.output(n.AggregationSelection, key)
	sel.Pinned = true
	b.member(sel, &Member{Name: "count", Type: ast.NonNullNamedType("Int", nil)})

	key.Member = "node"
	node := b.output(n.NodeAggregateSelection, key)
	b.selectFields(node, f.Target)
	b.member(sel, &Member{Name: "node", Type: ast.NamedType(node.Name, nil)})
	if p := f.Relationship.Properties; p != nil {
		key.Member = "edge"
		edge := b.output(n.EdgeAggregateSelection, key)
		b.selectFields(edge, p)
		b.member(sel, &Member{Name: "edge", Type: ast.NamedType(edge.Name, nil)})
	}
}

// selectFields adds a member per selectable scalar field of src.
func (b *builder) selectFields(sel *GeneratedType, src *gen.Type) {
	for _, f := range src.Fields {
		if f.IsRelationship() || f.IsList() {
			continue
		}
		scalar := f.ScalarName()
		fields := selection(scalar)
		if fields == nil {
			continue
		}
		name := scalarAggregateSelectionName(scalar)
		if !b.seen[name] {
			out := b.output(name, ShapeKey{Owner: scalar, Kind: AggregateSelection})
			for _, fd := range fields {
				b.member(out, &Member{Name: fd.Name, Type: fd.Type})
			}
		}
		b.member(sel, &Member{Name: f.Name, Type: ast.NonNullNamedType(name, nil)})
	}
}

// operatorOf returns the spelling of op.
func operatorOf(op Op) operator {
	for _, o := range operators {
		if o.op == op {
			return o
		}
	}
	return operator{op: op}
}

// deprecation returns the deprecation reason of a legacy member replaced by
// the generic filter at path: deprecation("title", "eq") reads
// `... title: { eq: ... }`.
func deprecation(path ...string) string {
	var b strings.Builder
	b.WriteString("Please use the relevant generic filter ")
	for i, p := range path {
		b.WriteString(p)
		b.WriteString(": ")
		if i < len(path)-1 {
			b.WriteString("{ ")
		}
	}
	b.WriteString("...")
	for range len(path) - 1 {
		b.WriteString(" }")
	}
	return b.String()
}

// namedType returns the innermost named type of t.
func namedType(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

func isBuiltinScalar(name string) bool {
	switch name {
	case "ID", "String", "Int", "Float", "Boolean":
		return true
	}
	return false
}
