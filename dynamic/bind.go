package dynamic

import (
	"context"
	"fmt"
	"reflect"

	j "github.com/goccy/go-json"

	gobind "github.com/reoring/gobind"
)

// Descriptor builds the type descriptor of s. Field defaults are checked
// against the codec of their field, so reg must be the registry the
// descriptor will be bound with.
func (s *Schema) Descriptor(reg gobind.Registry) (gobind.TypeDescriptor[Record], error) {
	desc := gobind.TypeDescriptor[Record]{
		Type:      reflect.TypeFor[Record](),
		Name:      s.Name,
		Qualifier: s.Qualifier,
	}
	var paramField []int
	initial := map[int]func() any{}
	for i := range s.Fields {
		f := &s.Fields[i]
		var def func() any
		if f.Default != nil {
			var err error
			if def, err = s.literal(reg, i); err != nil {
				return desc, err
			}
		}
		if f.Param {
			paramField = append(paramField, i)
			desc.Params = append(desc.Params, gobind.ParamDesc{
				Name:       f.Name,
				Type:       s.types[i],
				HasDefault: def != nil || f.Optional,
				Default:    def,
				Qualifier:  f.Qualifier,
				JSONName:   f.JSON,
			})
		} else if def != nil {
			initial[i] = def
		}
		desc.Properties = append(desc.Properties, gobind.PropertyDesc[Record]{
			Name:      f.Name,
			Type:      s.types[i],
			Settable:  f.settable(),
			Qualifier: f.Qualifier,
			JSONName:  f.JSON,
			Excluded:  f.Transient,
			Get:       func(r *Record) any { return r.values[i] },
			Set:       func(r *Record, v any) error { return r.setAt(i, v) },
		})
	}
	desc.Construct = func(args *gobind.Args) (Record, error) {
		r := s.New()
		for i, def := range initial {
			r.values[i] = def()
		}
		for p, fi := range paramField {
			if err := r.setAt(fi, args.At(p)); err != nil {
				return Record{}, err
			}
		}
		return r, nil
	}
	return desc, nil
}

// Bind resolves the schema into a binding against reg.
func (s *Schema) Bind(reg gobind.Registry) (*gobind.TypeBinding[Record], error) {
	desc, err := s.Descriptor(reg)
	if err != nil {
		return nil, err
	}
	return gobind.Build(desc, reg)
}

// literal renders the default of field i as JSON and decodes it with the
// field codec. The returned func decodes afresh on every call so records
// never share mutable defaults.
func (s *Schema) literal(reg gobind.Registry, i int) (func() any, error) {
	f := &s.Fields[i]
	raw, err := j.Marshal(f.Default)
	if err != nil {
		return nil, fmt.Errorf("%w: default of %q: %w", ErrInvalidSchema, f.Name, err)
	}
	c, err := reg.Codec(s.types[i], f.Qualifier)
	if err != nil {
		return nil, fmt.Errorf("%w: default of %q: %w", ErrInvalidSchema, f.Name, err)
	}
	decode := func() (any, error) {
		r := gobind.NewReader(gobind.JSONBytes(raw))
		v, err := c.DecodeValue(context.Background(), r)
		if err != nil {
			return nil, err
		}
		return v, r.End()
	}
	if _, err := decode(); err != nil {
		return nil, fmt.Errorf("%w: default of %q: %w", ErrInvalidSchema, f.Name, err)
	}
	return func() any {
		v, err := decode()
		if err != nil {
			panic(fmt.Sprintf("dynamic: default of %q no longer decodes: %v", f.Name, err))
		}
		return v
	}, nil
}
