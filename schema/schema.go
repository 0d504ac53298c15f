package schema

import (
	"encoding/json"
	"maps"
)

// Annotation is used to attach arbitrary metadata to loaded types and
// fields. The name is the key under which it is stored.
type Annotation interface {
	Name() string
}

// Merger is implemented by annotations that can be merged with another
// annotation of the same name.
type Merger interface {
	Annotation
	Merge(Annotation) Annotation
}

// Directive is a directive usage captured from SDL.
type Directive struct {
	Directive string
	Args      map[string]any
}

// Name returns the directive name.
func (d *Directive) Name() string {
	return d.Directive
}

// Merge merges the arguments of another usage of the same directive.
// Arguments of the other usage take precedence.
func (d *Directive) Merge(other Annotation) Annotation {
	o, ok := other.(*Directive)
	if !ok || o.Directive != d.Directive {
		return d
	}
	args := make(map[string]any, len(d.Args)+len(o.Args))
	maps.Copy(args, d.Args)
	maps.Copy(args, o.Args)
	return &Directive{Directive: d.Directive, Args: args}
}

// MarshalJSON encodes the directive arguments only, so a Directive decodes
// into the typed annotation registered under the same name.
func (d *Directive) MarshalJSON() ([]byte, error) {
	if d.Args == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Args)
}

// Arg returns the named argument and whether it was set.
func (d *Directive) Arg(name string) (any, bool) {
	v, ok := d.Args[name]
	return v, ok
}

var (
	_ Annotation = (*Directive)(nil)
	_ Merger     = (*Directive)(nil)
)
