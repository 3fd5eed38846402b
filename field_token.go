package gobind

import "reflect"

// FieldToken identifies a top-level struct field of T. Obtain it via FieldOf
// to keep compile-time linkage to the struct field.
type FieldToken[T any] struct {
	key   string
	field string
	typ   reflect.Type
}

// Key returns the wire name resolved from the field's tags.
func (t FieldToken[T]) Key() string { return t.key }

// Field returns the declared Go field name.
func (t FieldToken[T]) Field() string { return t.field }

// Type returns the declared field type.
func (t FieldToken[T]) Type() reflect.Type { return t.typ }

// FieldOf builds a FieldToken for a top-level field of T. The selector must
// return the address of a top-level field, e.g.:
//
//	FieldOf[Account](func(a *Account) *string { return &a.ID })
func FieldOf[T any, F any](selector func(*T) *F) FieldToken[T] {
	if selector == nil {
		panic("gobind.FieldOf: selector must not be nil")
	}
	var zero T
	fp := reflect.ValueOf(selector(&zero)).Pointer()

	rv := reflect.ValueOf(&zero).Elem()
	if rv.Kind() != reflect.Struct {
		panic("gobind.FieldOf: T must be a struct type")
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)
		if !sf.IsExported() || fv.Addr().Pointer() != fp || sf.Type != reflect.TypeFor[F]() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "" || name == "-" {
			name = sf.Name
		}
		return FieldToken[T]{key: name, field: sf.Name, typ: sf.Type}
	}
	panic("gobind.FieldOf: selector must return address of a top-level field of T")
}

// Seen reports whether the field was present in the decoded input.
func (dm Decoded[T]) Seen(field FieldToken[T]) bool {
	return dm.Presence.Has(field.key, PresenceSeen)
}

// WasNull reports whether the field was explicitly null in the decoded input.
func (dm Decoded[T]) WasNull(field FieldToken[T]) bool {
	return dm.Presence.Has(field.key, PresenceWasNull)
}

// DefaultApplied reports whether the field took its parameter default.
func (dm Decoded[T]) DefaultApplied(field FieldToken[T]) bool {
	return dm.Presence.Has(field.key, PresenceDefaultApplied)
}
