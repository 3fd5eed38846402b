package gobind

import "reflect"

// TypeDescriptor is the introspection view of a type T: its constructor
// parameters, its properties and the construction function. Descriptors are
// produced by Describe (struct tags), the dsl package (explicit builders) or
// the dynamic package (schema files).
type TypeDescriptor[T any] struct {
	// Type is the declared type; zero means reflect.TypeFor[T]().
	Type reflect.Type
	// Name is used in diagnostics; zero means Type.String().
	Name string
	// Qualifier is a whole-type qualifier. Qualified requests are not handled
	// by the binder.
	Qualifier string
	// Params lists constructor parameters in declaration order.
	Params []ParamDesc
	// Properties lists properties in declaration order.
	Properties []PropertyDesc[T]
	// Construct builds an instance from the argument record. Defaults of
	// parameters absent from the input are already applied.
	Construct func(args *Args) (T, error)
}

// ParamDesc describes one constructor parameter.
type ParamDesc struct {
	Name       string
	Type       reflect.Type
	HasDefault bool
	// Default produces the value used when the parameter is absent. nil
	// with HasDefault means the zero value of Type.
	Default   func() any
	Qualifier string
	JSONName  string
}

// PropertyDesc describes one property of T.
type PropertyDesc[T any] struct {
	Name      string
	Type      reflect.Type
	Settable  bool
	Qualifier string
	JSONName  string
	Excluded  bool
	Get       func(v *T) any
	Set       func(v *T, val any) error
}

func (d *TypeDescriptor[T]) typ() reflect.Type {
	if d.Type != nil {
		return d.Type
	}
	return reflect.TypeFor[T]()
}

func (d *TypeDescriptor[T]) name() string {
	if d.Name != "" {
		return d.Name
	}
	return d.typ().String()
}

// Args is the mutable construction record handed to a descriptor's Construct
// function: one slot per constructor parameter. Slots the input did not supply
// hold the parameter default.
type Args struct {
	params   []ParamDesc
	byName   map[string]int
	values   []any
	supplied []bool
}

func newArgs(params []ParamDesc, byName map[string]int) *Args {
	return &Args{
		params:   params,
		byName:   byName,
		values:   make([]any, len(params)),
		supplied: make([]bool, len(params)),
	}
}

func (a *Args) supply(i int, v any) {
	a.values[i] = v
	a.supplied[i] = true
}

// applyDefaults fills every unsupplied slot that has a default and returns
// the indexes that were defaulted.
func (a *Args) applyDefaults() []int {
	var defaulted []int
	for i, p := range a.params {
		if a.supplied[i] || !p.HasDefault {
			continue
		}
		switch {
		case p.Default != nil:
			a.values[i] = p.Default()
		case p.Type != nil:
			a.values[i] = reflect.Zero(p.Type).Interface()
		}
		defaulted = append(defaulted, i)
	}
	return defaulted
}

// Len returns the number of constructor parameters.
func (a *Args) Len() int { return len(a.params) }

// Has reports whether the input supplied the named parameter.
func (a *Args) Has(name string) bool {
	i, ok := a.byName[name]
	return ok && a.supplied[i]
}

// HasAt reports whether the input supplied the parameter at index i.
func (a *Args) HasAt(i int) bool { return i >= 0 && i < len(a.supplied) && a.supplied[i] }

// Value returns the named parameter value (supplied or default).
func (a *Args) Value(name string) any {
	i, ok := a.byName[name]
	if !ok {
		return nil
	}
	return a.values[i]
}

// At returns the parameter value at index i.
func (a *Args) At(i int) any {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

// LookupArg returns the named parameter as V. ok is false when the parameter
// does not exist or holds a value of another type (including nil).
func LookupArg[V any](a *Args, name string) (V, bool) {
	v, ok := a.Value(name).(V)
	return v, ok
}

// ArgOf returns the named parameter as V, or the zero V.
func ArgOf[V any](a *Args, name string) V {
	v, _ := LookupArg[V](a, name)
	return v
}
