package dynamic_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync/atomic"
	"testing"

	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
	"github.com/reoring/gobind/dynamic"
)

const accountYAML = `
name: Account
fields:
  - name: id
    type: string
    param: true
    json: account_id
  - name: limit
    type: int
    param: true
    default: 100
  - name: code
    type: string
    qualifier: uppercase
  - name: tags
    type: "[]string"
    default: [a]
  - name: note
    type: "*string"
  - name: secret
    type: string
    transient: true
`

func bindYAML(t *testing.T, src string) *gobind.TypeBinding[dynamic.Record] {
	t.Helper()
	s, err := dynamic.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := s.Bind(codec.New())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return b
}

func TestRecord_DecodeEncode(t *testing.T) {
	b := bindYAML(t, accountYAML)
	ctx := context.Background()

	r, err := gobind.Unmarshal(ctx, b, []byte(`{"code":"AB","account_id":"x","note":null,"secret":"s"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for name, want := range map[string]any{"id": "x", "limit": 100, "code": "ab", "secret": ""} {
		if got, _ := r.Get(name); got != want {
			t.Errorf("%s = %#v, want %#v", name, got, want)
		}
	}
	if note, _ := r.Get("note"); note.(*string) != nil {
		t.Errorf("note = %v, want nil", note)
	}

	out, err := gobind.Marshal(ctx, b, r)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"account_id":"x","limit":100,"code":"AB","tags":["a"],"note":null}`
	if string(out) != want {
		t.Fatalf("encoded %s, want %s", out, want)
	}
}

func TestRecord_DefaultsAreNotShared(t *testing.T) {
	b := bindYAML(t, accountYAML)
	ctx := context.Background()
	first, err := gobind.Unmarshal(ctx, b, []byte(`{"account_id":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	tags, _ := first.Get("tags")
	tags.([]string)[0] = "changed"

	second, err := gobind.Unmarshal(ctx, b, []byte(`{"account_id":"2"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := second.Get("tags"); !slices.Equal(got.([]string), []string{"a"}) {
		t.Fatalf("default leaked between records: %v", got)
	}
}

func TestRecord_MissingRequired(t *testing.T) {
	b := bindYAML(t, accountYAML)
	_, err := gobind.Unmarshal(context.Background(), b, []byte(`{"limit":1}`))
	if !gobind.HasCode(err, gobind.CodeMissingRequiredValue) {
		t.Fatalf("expected missing required value, got %v", err)
	}
}

func TestRecord_Set(t *testing.T) {
	s, err := dynamic.ParseYAML([]byte(accountYAML))
	if err != nil {
		t.Fatal(err)
	}
	r := s.New()
	if err := r.Set("limit", 5); err != nil {
		t.Fatal(err)
	}
	if err := r.Set("limit", "five"); err == nil {
		t.Fatal("expected type error")
	}
	if err := r.Set("nope", 1); err == nil {
		t.Fatal("expected unknown field error")
	}
	if err := r.Set("note", nil); err != nil {
		t.Fatal(err)
	}
	if m := r.Map(); m["limit"] != 5 || len(m) != len(s.Fields) {
		t.Fatalf("unexpected map %v", m)
	}
}

func TestParseJSONC_PreservesLargeDefaults(t *testing.T) {
	s, err := dynamic.ParseJSONC([]byte(`{
		// integer defaults beyond float64 precision must survive
		"name": "Point",
		"fields": [
			{"name": "x", "type": "int64", "param": true},
			{"name": "y", "type": "int64", "param": true, "default": 9007199254740993},
		],
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := s.Bind(codec.New())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	r, err := gobind.Unmarshal(context.Background(), b, []byte(`{"x":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if y, _ := r.Get("y"); y != int64(9007199254740993) {
		t.Fatalf("y = %v", y)
	}
}

func TestSchema_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown type":   "fields: [{name: a, type: complex}]",
		"duplicate name": "fields: [{name: a, type: int}, {name: a, type: string}]",
		"missing name":   "fields: [{type: int}]",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := dynamic.ParseYAML([]byte(src)); !errors.Is(err, dynamic.ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}

	s, err := dynamic.ParseYAML([]byte("fields: [{name: a, type: int, param: true, default: x}]"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Bind(codec.New()); !errors.Is(err, dynamic.ErrInvalidSchema) {
		t.Fatalf("expected bad default to be rejected, got %v", err)
	}
}

func TestSchema_QualifiedIsNotApplicable(t *testing.T) {
	s, err := dynamic.ParseYAML([]byte("name: Q\nqualifier: special\nfields: [{name: a, type: int}]"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Bind(codec.New()); !errors.Is(err, gobind.ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable, got %v", err)
	}
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.yaml":  "name: A\nfields: [{name: v, type: bool}]\n",
		"b.jsonc": "{\"name\": \"B\", /* c */ \"fields\": [{\"name\": \"v\", \"type\": \"bool\"}]}",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		s, err := dynamic.Load(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if typ, ok := s.FieldType("v"); !ok || typ.Kind().String() != "bool" {
			t.Fatalf("%s: field type %v", name, typ)
		}
	}
}

func TestParseType(t *testing.T) {
	for expr, want := range map[string]string{
		"int":                "int",
		"*string":            "*string",
		"[]*int":             "[]*int",
		"map[string][]bytes": "map[string][][]uint8",
		"time":               "time.Time",
		"number":             "json.Number",
		"any":                "interface {}",
	} {
		typ, err := dynamic.ParseType(expr)
		if err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
		if typ.String() != want {
			t.Errorf("%s => %s, want %s", expr, typ, want)
		}
	}
}

// driftingRegistry hands out int codecs that stop decoding after their first
// use, as a registry reconfigured after bind time would.
type driftingRegistry struct {
	*codec.Registry
	calls atomic.Int32
}

func (r *driftingRegistry) Codec(t reflect.Type, q string) (gobind.Codec, error) {
	c, err := r.Registry.Codec(t, q)
	if err != nil || t != reflect.TypeFor[int]() {
		return c, err
	}
	return driftingCodec{Codec: c, calls: &r.calls}, nil
}

type driftingCodec struct {
	gobind.Codec
	calls *atomic.Int32
}

func (c driftingCodec) DecodeValue(ctx context.Context, r *gobind.Reader) (any, error) {
	if c.calls.Add(1) > 1 {
		return nil, errors.New("codec drifted")
	}
	return c.Codec.DecodeValue(ctx, r)
}

func TestRecord_DefaultThatStopsDecodingPanics(t *testing.T) {
	s, err := dynamic.ParseYAML([]byte(`
name: Quota
fields:
  - name: id
    type: string
    param: true
  - name: limit
    type: int
    param: true
    default: 100
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := s.Bind(&driftingRegistry{Registry: codec.New()})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic instead of a silent nil default")
		}
	}()
	_, _ = gobind.Unmarshal(context.Background(), b, []byte(`{"id":"x"}`))
}
