// Package dynamic binds record types described by schema files instead of Go
// structs. A Schema lists fields with a type expression and the constructor
// and property roles each field plays; Bind turns it into a
// gobind.TypeBinding[Record] that decodes and encodes like any compiled type.
package dynamic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	j "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema wraps every schema validation failure.
var ErrInvalidSchema = errors.New("dynamic: invalid schema")

// Schema describes one record type.
type Schema struct {
	Name      string  `yaml:"name" json:"name"`
	Qualifier string  `yaml:"qualifier" json:"qualifier"`
	Fields    []Field `yaml:"fields" json:"fields"`

	types []reflect.Type
	index map[string]int
}

// Field describes one record field. Param makes it a constructor parameter;
// a non-nil Default or Optional makes that parameter optional. Settable
// defaults to true.
type Field struct {
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"`
	Param     bool   `yaml:"param" json:"param"`
	Optional  bool   `yaml:"optional" json:"optional"`
	Default   any    `yaml:"default" json:"default"`
	JSON      string `yaml:"json" json:"json"`
	Qualifier string `yaml:"qualifier" json:"qualifier"`
	Settable  *bool  `yaml:"settable" json:"settable"`
	Transient bool   `yaml:"transient" json:"transient"`
}

func (f *Field) settable() bool { return f.Settable == nil || *f.Settable }

// ParseYAML reads a schema from YAML.
func ParseYAML(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("dynamic: parse yaml schema: %w", err)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseJSONC reads a schema from JSON, allowing comments and trailing commas.
func ParseJSONC(data []byte) (*Schema, error) {
	var s Schema
	dec := j.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("dynamic: parse json schema: %w", err)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a schema file. Files ending in .json or .jsonc are parsed as
// JSONC, everything else as YAML.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return ParseJSONC(data)
	}
	return ParseYAML(data)
}

func (s *Schema) init() error {
	if s.Name == "" {
		s.Name = "Record"
	}
	s.types = make([]reflect.Type, len(s.Fields))
	s.index = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return fmt.Errorf("%w: field %q declared twice", ErrInvalidSchema, f.Name)
		}
		t, err := ParseType(f.Type)
		if err != nil {
			return fmt.Errorf("%w: field %q: %w", ErrInvalidSchema, f.Name, err)
		}
		s.types[i] = t
		s.index[f.Name] = i
	}
	return nil
}

// FieldType returns the Go type of the named field.
func (s *Schema) FieldType(name string) (reflect.Type, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.types[i], true
}

var scalarTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"number":  reflect.TypeFor[json.Number](),
	"time":    reflect.TypeFor[time.Time](),
	"bytes":   reflect.TypeFor[[]byte](),
	"any":     reflect.TypeFor[any](),
}

// ParseType maps a field type expression to a Go type. Expressions are a
// scalar name optionally prefixed by "*" (nullable), "[]" (list) or
// "map[string]" (string-keyed map), e.g. "[]*int" or "map[string][]time".
func ParseType(expr string) (reflect.Type, error) {
	switch {
	case strings.HasPrefix(expr, "*"):
		elem, err := ParseType(expr[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(expr, "[]"):
		elem, err := ParseType(expr[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(expr, "map[string]"):
		elem, err := ParseType(expr[len("map[string]"):])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(reflect.TypeFor[string](), elem), nil
	}
	if t, ok := scalarTypes[expr]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", expr)
}
