package dynamic

import (
	"fmt"
	"reflect"
)

// Record is an instance of a schema-described type. Values are stored in
// field order. Copies of a Record share storage.
type Record struct {
	schema *Schema
	values []any
}

// New returns a record holding the zero value of every field.
func (s *Schema) New() Record {
	r := Record{schema: s, values: make([]any, len(s.Fields))}
	for i, t := range s.types {
		r.values[i] = reflect.Zero(t).Interface()
	}
	return r
}

// Schema returns the record's schema.
func (r Record) Schema() *Schema { return r.schema }

// Get returns the named field value.
func (r Record) Get(name string) (any, bool) {
	if r.schema == nil {
		return nil, false
	}
	i, ok := r.schema.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Set stores v in the named field. v must be assignable to the field type;
// nil stores the zero value.
func (r Record) Set(name string, v any) error {
	if r.schema == nil {
		return fmt.Errorf("dynamic: set %q on a record without schema", name)
	}
	i, ok := r.schema.index[name]
	if !ok {
		return fmt.Errorf("dynamic: %s has no field %q", r.schema.Name, name)
	}
	return r.setAt(i, v)
}

func (r Record) setAt(i int, v any) error {
	t := r.schema.types[i]
	if v == nil {
		r.values[i] = reflect.Zero(t).Interface()
		return nil
	}
	if vt := reflect.TypeOf(v); !vt.AssignableTo(t) {
		return fmt.Errorf("dynamic: field %q is %s, got %s", r.schema.Fields[i].Name, t, vt)
	}
	r.values[i] = v
	return nil
}

// Map returns the field values keyed by field name.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, v := range r.values {
		m[r.schema.Fields[i].Name] = v
	}
	return m
}
