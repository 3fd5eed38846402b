package dsl

import (
	"reflect"

	gobind "github.com/reoring/gobind"
)

// Type returns a builder for the descriptor of T.
func Type[T any]() *TypeBuilder[T] { return &TypeBuilder[T]{} }

// TypeBuilder assembles a gobind.TypeDescriptor[T] from explicit parameter and
// property declarations.
type TypeBuilder[T any] struct {
	name      string
	qualifier string
	construct func(*gobind.Args) (T, error)
	params    []*ParamStep
	props     []*PropStep[T]
}

// Name sets the diagnostic type name.
func (tb *TypeBuilder[T]) Name(name string) *TypeBuilder[T] {
	tb.name = name
	return tb
}

// Qualifier sets a whole-type qualifier; qualified types are not bound.
func (tb *TypeBuilder[T]) Qualifier(q string) *TypeBuilder[T] {
	tb.qualifier = q
	return tb
}

// Constructor declares the construct function and its parameters in order.
func (tb *TypeBuilder[T]) Constructor(fn func(*gobind.Args) (T, error), params ...*ParamStep) *TypeBuilder[T] {
	tb.construct = fn
	tb.params = params
	return tb
}

// Prop appends properties in declaration order.
func (tb *TypeBuilder[T]) Prop(props ...*PropStep[T]) *TypeBuilder[T] {
	tb.props = append(tb.props, props...)
	return tb
}

// Descriptor returns the assembled descriptor.
func (tb *TypeBuilder[T]) Descriptor() gobind.TypeDescriptor[T] {
	desc := gobind.TypeDescriptor[T]{
		Type:      reflect.TypeFor[T](),
		Name:      tb.name,
		Qualifier: tb.qualifier,
		Construct: tb.construct,
	}
	for _, p := range tb.params {
		desc.Params = append(desc.Params, p.desc)
	}
	for _, p := range tb.props {
		desc.Properties = append(desc.Properties, p.desc)
	}
	return desc
}

// Bind resolves the descriptor against reg.
func (tb *TypeBuilder[T]) Bind(reg gobind.Registry) (*gobind.TypeBinding[T], error) {
	return gobind.Build(tb.Descriptor(), reg)
}

// MustBind is like Bind but panics on error.
func (tb *TypeBuilder[T]) MustBind(reg gobind.Registry) *gobind.TypeBinding[T] {
	b, err := tb.Bind(reg)
	if err != nil {
		panic(err)
	}
	return b
}
