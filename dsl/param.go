package dsl

import (
	"reflect"

	gobind "github.com/reoring/gobind"
)

// ParamStep declares one constructor parameter.
type ParamStep struct{ desc gobind.ParamDesc }

// Param declares a constructor parameter of type V. Without Default it is
// required.
func Param[V any](name string) *ParamStep {
	return &ParamStep{desc: gobind.ParamDesc{Name: name, Type: reflect.TypeFor[V]()}}
}

// Default makes the parameter optional with the given value. Slice and map
// defaults are copied per decode; values reachable through pointers are
// shared, so use DefaultFunc for those.
func (p *ParamStep) Default(v any) *ParamStep {
	p.desc.HasDefault = true
	p.desc.Default = func() any { return cloneDefault(v) }
	return p
}

func cloneDefault(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		c := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(c, rv)
		return c.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		c := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for it := rv.MapRange(); it.Next(); {
			c.SetMapIndex(it.Key(), it.Value())
		}
		return c.Interface()
	}
	return v
}

// DefaultFunc makes the parameter optional; fn runs once per decode that
// needs the default.
func (p *ParamStep) DefaultFunc(fn func() any) *ParamStep {
	p.desc.HasDefault = true
	p.desc.Default = fn
	return p
}

// Optional makes the parameter optional with the zero value as default.
func (p *ParamStep) Optional() *ParamStep {
	p.desc.HasDefault = true
	p.desc.Default = nil
	return p
}

// Qualifier sets the codec qualifier used when the matching property has none.
func (p *ParamStep) Qualifier(q string) *ParamStep {
	p.desc.Qualifier = q
	return p
}

// JSON sets the wire name used when the matching property has none.
func (p *ParamStep) JSON(name string) *ParamStep {
	p.desc.JSONName = name
	return p
}
