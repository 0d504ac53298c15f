package graphql

import (
	"github.com/syssam/neogql"
	"github.com/syssam/neogql/compiler/gen"
	"github.com/syssam/neogql/schema"
)

// AnnotationName is the name of the filterable annotation. It matches the
// @filterable directive, so directive usages loaded from SDL and annotations
// built in Go decode the same way.
const AnnotationName = schema.FilterableDirective

// FilterableAnnotation is the @filterable usage of a field. A nil argument
// was omitted and takes its default.
//
// Can be used with functional constructors or struct literals:
//
//	graphql.Filterable(graphql.ByValue(false), graphql.ByAggregate(true))
//	graphql.FilterableAnnotation{ByAggregate: &yes}
type FilterableAnnotation struct {
	ByValue     *bool `json:"byValue,omitempty"`
	ByAggregate *bool `json:"byAggregate,omitempty"`
}

// Name implements schema.Annotation.
func (FilterableAnnotation) Name() string {
	return AnnotationName
}

// Merge implements schema.Merger. Arguments set on other take precedence.
func (a FilterableAnnotation) Merge(other schema.Annotation) schema.Annotation {
	o, ok := other.(FilterableAnnotation)
	if !ok {
		return a
	}
	if o.ByValue != nil {
		a.ByValue = o.ByValue
	}
	if o.ByAggregate != nil {
		a.ByAggregate = o.ByAggregate
	}
	return a
}

var (
	_ schema.Annotation = (*FilterableAnnotation)(nil)
	_ schema.Merger     = FilterableAnnotation{}
)

// FilterableOption sets an argument of a FilterableAnnotation.
type FilterableOption func(*FilterableAnnotation)

// ByValue sets the byValue argument.
func ByValue(enabled bool) FilterableOption {
	return func(a *FilterableAnnotation) { a.ByValue = &enabled }
}

// ByAggregate sets the byAggregate argument.
func ByAggregate(enabled bool) FilterableOption {
	return func(a *FilterableAnnotation) { a.ByAggregate = &enabled }
}

// Filterable returns a filterable annotation with the given arguments.
// With no options it is equivalent to a bare @filterable.
//
// Example:
//
//	// Drop value filters, keep aggregation filters
//	field.Annotations[graphql.AnnotationName] = graphql.Filterable(
//	    graphql.ByValue(false),
//	    graphql.ByAggregate(true),
//	)
func Filterable(opts ...FilterableOption) FilterableAnnotation {
	var a FilterableAnnotation
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// DirectiveValues are the effective @filterable arguments of a field.
type DirectiveValues struct {
	ByValue     bool
	ByAggregate bool
}

// DefaultDirectiveValues are the directive defaults: value filters on,
// aggregation filters off.
var DefaultDirectiveValues = DirectiveValues{ByValue: true, ByAggregate: false}

// apply fills the omitted arguments from defaults.
func (a FilterableAnnotation) apply(defaults DirectiveValues) DirectiveValues {
	v := defaults
	if a.ByValue != nil {
		v.ByValue = *a.ByValue
	}
	if a.ByAggregate != nil {
		v.ByAggregate = *a.ByAggregate
	}
	return v
}

// ReadDirective returns the effective @filterable arguments of f. A field
// without the directive behaves as a bare @filterable, so both take the
// defaults. The only error is an annotation that does not decode.
func ReadDirective(f *gen.Field, defaults DirectiveValues) (DirectiveValues, error) {
	var a FilterableAnnotation
	if _, err := f.Annotations.Decode(AnnotationName, &a); err != nil {
		return DirectiveValues{}, neogql.NewDirectiveError(AnnotationName, "", f.String(), err.Error())
	}
	return a.apply(defaults), nil
}
