package gobind

import (
	"context"
	"fmt"
	"reflect"

	js "github.com/reoring/gobind/jsonschema"
)

// Defaulter is implemented by struct types (pointer receiver) that provide
// initial values. Describe uses it for the defaults of optional parameters.
type Defaulter interface {
	Defaults()
}

// structField is one exported struct field as seen by the tag reader.
type structField struct {
	index []int
	typ   reflect.Type
	decl  string
	tag   fieldTag
}

func (f structField) param() bool { return f.tag.required || f.tag.optional }

func structFields(t reflect.Type) ([]structField, error) {
	if t.Kind() != reflect.Struct {
		return nil, &BuildError{Code: CodeUnrepresentableField, Type: t.String(), Message: "not a struct type"}
	}
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		out = append(out, structField{index: sf.Index, typ: sf.Type, decl: sf.Name, tag: parseFieldTag(sf)})
	}
	return out, nil
}

// describeValue builds the runtime descriptor of struct type t. Instances are
// addressable reflect.Values of t.
func describeValue(t reflect.Type) (TypeDescriptor[reflect.Value], error) {
	fields, err := structFields(t)
	if err != nil {
		return TypeDescriptor[reflect.Value]{}, err
	}
	desc := TypeDescriptor[reflect.Value]{Type: t, Name: t.String()}
	var params []structField
	for _, f := range fields {
		idx := f.index
		pd := PropertyDesc[reflect.Value]{
			Name:      f.decl,
			Type:      f.typ,
			JSONName:  f.tag.name,
			Qualifier: f.tag.qualifier,
			Excluded:  f.tag.skip,
			Settable:  !f.tag.readOnly,
			Get:       func(v *reflect.Value) any { return v.FieldByIndex(idx).Interface() },
		}
		if pd.Settable {
			pd.Set = func(v *reflect.Value, val any) error { return assignValue(v.FieldByIndex(idx), val) }
		}
		desc.Properties = append(desc.Properties, pd)
		if f.param() && !f.tag.skip {
			desc.Params = append(desc.Params, ParamDesc{
				Name:       f.decl,
				Type:       f.typ,
				HasDefault: f.tag.optional,
				Default:    fieldDefault(t, idx),
			})
			params = append(params, f)
		}
	}
	desc.Construct = func(args *Args) (reflect.Value, error) {
		v := newDefaulted(t)
		for i, f := range params {
			if err := assignValue(v.FieldByIndex(f.index), args.At(i)); err != nil {
				return reflect.Value{}, fmt.Errorf("%s: %w", f.decl, err)
			}
		}
		return v, nil
	}
	return desc, nil
}

// newDefaulted returns an addressable zero t with Defaults applied.
func newDefaulted(t reflect.Type) reflect.Value {
	p := reflect.New(t)
	if d, ok := p.Interface().(Defaulter); ok {
		d.Defaults()
	}
	return p.Elem()
}

// fieldDefault returns the default producer of one field, or nil (zero value)
// when t has no Defaults method.
func fieldDefault(t reflect.Type, idx []int) func() any {
	if !reflect.PointerTo(t).Implements(reflect.TypeFor[Defaulter]()) {
		return nil
	}
	return func() any { return newDefaulted(t).FieldByIndex(idx).Interface() }
}

// Describe reads the exported fields of struct type T:
//
//	bind:"name=wire,required"   constructor parameter without default
//	bind:"optional"             constructor parameter, default from Defaults()
//	bind:"readonly"             not assignable after construction
//	bind:"qualifier=uppercase"  codec qualifier tag
//	bind:"-" / json:"-"         excluded
//
// Fields without required/optional are settable-only properties.
func Describe[T any]() (TypeDescriptor[T], error) {
	vd, err := describeValue(reflect.TypeFor[T]())
	if err != nil {
		return TypeDescriptor[T]{}, err
	}
	desc := TypeDescriptor[T]{Type: vd.Type, Name: vd.Name, Params: vd.Params}
	for _, p := range vd.Properties {
		pd := PropertyDesc[T]{
			Name:      p.Name,
			Type:      p.Type,
			Settable:  p.Settable,
			Qualifier: p.Qualifier,
			JSONName:  p.JSONName,
			Excluded:  p.Excluded,
			Get: func(v *T) any {
				rv := reflect.ValueOf(v).Elem()
				return p.Get(&rv)
			},
		}
		if p.Set != nil {
			pd.Set = func(v *T, val any) error {
				rv := reflect.ValueOf(v).Elem()
				return p.Set(&rv, val)
			}
		}
		desc.Properties = append(desc.Properties, pd)
	}
	desc.Construct = func(args *Args) (T, error) {
		rv, err := vd.Construct(args)
		if err != nil {
			var zero T
			return zero, err
		}
		return rv.Interface().(T), nil
	}
	return desc, nil
}

// Bind describes T from its struct tags and resolves it against reg.
func Bind[T any](reg Registry) (*TypeBinding[T], error) {
	desc, err := Describe[T]()
	if err != nil {
		return nil, err
	}
	return Build(desc, reg)
}

// StructCodec resolves struct type t, known only at run time, into a Codec.
// Registries use it for nested struct fields.
func StructCodec(t reflect.Type, reg Registry) (Codec, error) {
	desc, err := describeValue(t)
	if err != nil {
		return nil, err
	}
	b, err := Build(desc, reg)
	if err != nil {
		return nil, err
	}
	return valueCodec{b}, nil
}

// valueCodec adapts a reflect.Value binding to plain values of its type.
type valueCodec struct{ b *TypeBinding[reflect.Value] }

func (c valueCodec) DecodeValue(ctx context.Context, r *Reader) (any, error) {
	v, err := c.b.decode(ctx, r, nil)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (c valueCodec) EncodeValue(ctx context.Context, w Sink, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != c.b.typ {
		return fmt.Errorf("gobind: %s cannot encode %T", c.b.name, v)
	}
	// Getters read through FieldByIndex, which needs no addressability.
	return c.b.encode(ctx, &rv, w, nil)
}

// Fields exposes the binding table.
func (c valueCodec) Fields() []FieldBinding { return c.b.Fields() }

func (c valueCodec) JSONSchema() (*js.Schema, error) { return c.b.JSONSchema() }
