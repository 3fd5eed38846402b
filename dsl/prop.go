package dsl

import (
	"fmt"
	"reflect"

	gobind "github.com/reoring/gobind"
)

// PropStep declares one property of T.
type PropStep[T any] struct{ desc gobind.PropertyDesc[T] }

// Field declares a settable property backed by a struct field. The property
// name is the field's tag key (see gobind.ResolveStructKey):
//
//	dsl.Field(func(p *Point) *int { return &p.X })
func Field[T, V any](sel func(*T) *V) *PropStep[T] {
	tok := gobind.FieldOf(sel)
	return &PropStep[T]{desc: gobind.PropertyDesc[T]{
		Name:     tok.Key(),
		Type:     reflect.TypeFor[V](),
		Settable: true,
		Get:      func(v *T) any { return *sel(v) },
		Set: func(v *T, val any) error {
			x, err := convert[V](val)
			if err != nil {
				return err
			}
			*sel(v) = x
			return nil
		},
	}}
}

// Getter declares a read-only property. It must match a constructor
// parameter to be bound.
func Getter[T, V any](name string, get func(*T) V) *PropStep[T] {
	return &PropStep[T]{desc: gobind.PropertyDesc[T]{
		Name: name,
		Type: reflect.TypeFor[V](),
		Get:  func(v *T) any { return get(v) },
	}}
}

// Accessor declares a property with explicit getter and setter.
func Accessor[T, V any](name string, get func(*T) V, set func(*T, V)) *PropStep[T] {
	return &PropStep[T]{desc: gobind.PropertyDesc[T]{
		Name:     name,
		Type:     reflect.TypeFor[V](),
		Settable: true,
		Get:      func(v *T) any { return get(v) },
		Set: func(v *T, val any) error {
			x, err := convert[V](val)
			if err != nil {
				return err
			}
			set(v, x)
			return nil
		},
	}}
}

// Name overrides the declared property name used to match parameters.
func (p *PropStep[T]) Name(name string) *PropStep[T] {
	p.desc.Name = name
	return p
}

// JSON overrides the wire name.
func (p *PropStep[T]) JSON(name string) *PropStep[T] {
	p.desc.JSONName = name
	return p
}

// Qualifier sets the codec qualifier tag.
func (p *PropStep[T]) Qualifier(q string) *PropStep[T] {
	p.desc.Qualifier = q
	return p
}

// ReadOnly makes the property non-assignable after construction.
func (p *PropStep[T]) ReadOnly() *PropStep[T] {
	p.desc.Settable = false
	p.desc.Set = nil
	return p
}

// Transient excludes the property from the wire form.
func (p *PropStep[T]) Transient() *PropStep[T] {
	p.desc.Excluded = true
	return p
}

func convert[V any](val any) (V, error) {
	if val == nil {
		var zero V
		return zero, nil
	}
	x, ok := val.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("cannot assign %T to %s", val, reflect.TypeFor[V]())
	}
	return x, nil
}
