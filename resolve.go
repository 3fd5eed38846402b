package gobind

import (
	"reflect"

	js "github.com/reoring/gobind/jsonschema"
)

// FieldBinding is the resolved view of one wire field.
type FieldBinding struct {
	JSONName     string
	DeclaredName string
	Codec        Codec
	// ConstructorSupplied fields are passed to the construct function;
	// ConstructorIndex is their parameter position, -1 otherwise.
	ConstructorSupplied bool
	ConstructorIndex    int
	Settable            bool
	// Optional is set when the matching constructor parameter has a default.
	Optional bool
	Index    int
}

// TypeBinding is the immutable codec of one object type, produced by Build.
// It is safe for concurrent use and itself implements Codec so resolved types
// nest inside each other.
type TypeBinding[T any] struct {
	name      string
	typ       reflect.Type
	fields    []FieldBinding
	props     []PropertyDesc[T] // parallel to fields
	params    []ParamDesc
	paramIdx  map[string]int
	sel       selector
	construct func(*Args) (T, error)
}

// Build resolves desc into a TypeBinding. It returns ErrNotApplicable for
// platform types and qualified requests, and a *BuildError when the
// descriptor cannot be bound.
func Build[T any](desc TypeDescriptor[T], reg Registry) (*TypeBinding[T], error) {
	typ := desc.typ()
	if desc.Qualifier != "" || reg.IsPlatformType(typ) {
		return nil, ErrNotApplicable
	}
	name := desc.name()
	fail := func(code, field, msg string, cause error) error {
		return &BuildError{Code: code, Type: name, Field: field, Message: msg, Cause: cause}
	}

	construct := desc.Construct
	if construct == nil {
		if len(desc.Params) > 0 {
			return nil, fail(CodeUnrepresentableField, desc.Params[0].Name, "constructor parameters declared without a construct function", nil)
		}
		construct = func(*Args) (T, error) {
			var zero T
			return zero, nil
		}
	}

	paramIdx := make(map[string]int, len(desc.Params))
	for i, p := range desc.Params {
		paramIdx[p.Name] = i
	}

	type pending struct {
		fb   FieldBinding
		prop PropertyDesc[T]
	}
	byParam := make([]*pending, len(desc.Params))
	var settableOnly []pending

	for _, p := range desc.Properties {
		if p.Excluded {
			continue
		}
		pi, matched := paramIdx[p.Name]
		var param *ParamDesc
		if matched {
			param = &desc.Params[pi]
		}
		settable := p.Settable && p.Set != nil
		if !matched && !settable {
			return nil, fail(CodeUnrepresentableField, p.Name, "property "+p.Name+" is neither a constructor parameter nor settable", nil)
		}
		if p.Get == nil {
			return nil, fail(CodeUnrepresentableField, p.Name, "property "+p.Name+" has no getter", nil)
		}
		jsonName, qualifier, ft := p.JSONName, p.Qualifier, p.Type
		if param != nil {
			if jsonName == "" {
				jsonName = param.JSONName
			}
			if qualifier == "" {
				qualifier = param.Qualifier
			}
			if ft == nil {
				ft = param.Type
			}
		}
		if jsonName == "" {
			jsonName = p.Name
		}
		if ft == nil {
			return nil, fail(CodeNoCodec, p.Name, "property "+p.Name+" has no declared type", nil)
		}
		c, err := reg.Codec(ft, qualifier)
		if err != nil {
			return nil, fail(CodeNoCodec, p.Name, "no codec for "+p.Name+" ("+ft.String()+")", err)
		}
		pd := pending{
			fb: FieldBinding{
				JSONName:         jsonName,
				DeclaredName:     p.Name,
				Codec:            c,
				ConstructorIndex: -1,
				Settable:         settable,
			},
			prop: p,
		}
		if !matched {
			settableOnly = append(settableOnly, pd)
			continue
		}
		if byParam[pi] != nil {
			return nil, fail(CodeDuplicateJSONName, p.Name, "parameter "+p.Name+" is bound by more than one property", nil)
		}
		pd.fb.ConstructorSupplied = true
		pd.fb.ConstructorIndex = pi
		pd.fb.Optional = param.HasDefault
		byParam[pi] = &pd
	}

	for i, p := range desc.Params {
		if byParam[i] == nil && !p.HasDefault {
			return nil, fail(CodeNoBindingForRequiredParameter, p.Name, "no property for required constructor parameter "+p.Name, nil)
		}
	}

	b := &TypeBinding[T]{
		name:      name,
		typ:       typ,
		params:    desc.Params,
		paramIdx:  paramIdx,
		sel:       make(selector, len(desc.Properties)),
		construct: construct,
	}
	add := func(pd pending) error {
		if _, dup := b.sel[pd.fb.JSONName]; dup {
			return fail(CodeDuplicateJSONName, pd.fb.DeclaredName, "json name "+pd.fb.JSONName+" is used by more than one field", nil)
		}
		pd.fb.Index = len(b.fields)
		b.sel[pd.fb.JSONName] = pd.fb.Index
		b.fields = append(b.fields, pd.fb)
		b.props = append(b.props, pd.prop)
		return nil
	}
	for _, pd := range byParam {
		if pd == nil {
			continue
		}
		if err := add(*pd); err != nil {
			return nil, err
		}
	}
	for _, pd := range settableOnly {
		if err := add(pd); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Name returns the diagnostic type name.
func (b *TypeBinding[T]) Name() string { return b.name }

// Type returns the bound type.
func (b *TypeBinding[T]) Type() reflect.Type { return b.typ }

// Fields returns a copy of the binding table in wire order.
func (b *TypeBinding[T]) Fields() []FieldBinding {
	out := make([]FieldBinding, len(b.fields))
	copy(out, b.fields)
	return out
}

// Select returns the binding index for a JSON name, or NoMatch.
func (b *TypeBinding[T]) Select(name string) int { return b.sel.Select(name) }

// SchemaProvider is implemented by codecs that can describe their wire form.
type SchemaProvider interface {
	JSONSchema() (*js.Schema, error)
}

// JSONSchema projects the binding into a JSON Schema object. Fields are
// required when they bind a constructor parameter without a default; unknown
// properties are allowed since decoding skips them.
func (b *TypeBinding[T]) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, len(b.fields)),
		AdditionalProperties: true,
	}
	for _, fb := range b.fields {
		fs := &js.Schema{}
		if sp, ok := fb.Codec.(SchemaProvider); ok {
			var err error
			if fs, err = sp.JSONSchema(); err != nil {
				return nil, err
			}
		}
		s.Properties[fb.JSONName] = fs
		if fb.ConstructorSupplied && !fb.Optional {
			s.Required = append(s.Required, fb.JSONName)
		}
	}
	return s, nil
}
