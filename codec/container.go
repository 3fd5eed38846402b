package codec

import (
	"cmp"
	"context"
	"encoding/base64"
	"reflect"
	"slices"

	gobind "github.com/reoring/gobind"
	js "github.com/reoring/gobind/jsonschema"
)

// readNull consumes a null token when one is next.
func readNull(r *gobind.Reader) (bool, error) {
	tok, err := r.Peek()
	if err != nil {
		return false, err
	}
	if tok.Kind != gobind.TokenNull {
		return false, nil
	}
	_, err = r.Next()
	return true, err
}

// elemError keeps element Issues and wraps other element errors at the
// reader's path.
func elemError(r *gobind.Reader, err error) error {
	if _, ok := gobind.AsIssues(err); ok {
		return err
	}
	return gobind.IssueAt(r, gobind.CodeParseError, err.Error(), err)
}

// set stores v (possibly nil) into dst.
func set(dst reflect.Value, v any) {
	if v == nil {
		dst.SetZero()
		return
	}
	dst.Set(reflect.ValueOf(v))
}

// ---- pointer ----

// pointerCodec makes its element nullable: null decodes to a nil pointer and
// a nil pointer encodes as null.
type pointerCodec struct {
	t    reflect.Type
	elem gobind.Codec
}

func (c pointerCodec) DecodeValue(ctx context.Context, r *gobind.Reader) (any, error) {
	if isNull, err := readNull(r); err != nil || isNull {
		return reflect.Zero(c.t).Interface(), err
	}
	v, err := c.elem.DecodeValue(ctx, r)
	if err != nil {
		return nil, err
	}
	p := reflect.New(c.t.Elem())
	set(p.Elem(), v)
	return p.Interface(), nil
}

func (c pointerCodec) EncodeValue(ctx context.Context, w gobind.Sink, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return w.Null()
	}
	if rv.Type() != c.t {
		return mismatch(c.t.String(), v)
	}
	return c.elem.EncodeValue(ctx, w, rv.Elem().Interface())
}

func (c pointerCodec) JSONSchema() (*js.Schema, error) { return schemaOf(c.elem) }

// ---- slice ----

type sliceCodec struct {
	t    reflect.Type
	elem gobind.Codec
}

func (c sliceCodec) DecodeValue(ctx context.Context, r *gobind.Reader) (any, error) {
	if isNull, err := readNull(r); err != nil || isNull {
		return reflect.Zero(c.t).Interface(), err
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.MakeSlice(c.t, 0, 4)
	for {
		ok, err := r.NextElement()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		v, err := c.elem.DecodeValue(ctx, r)
		if err != nil {
			return nil, elemError(r, err)
		}
		out = reflect.Append(out, reflect.Zero(c.t.Elem()))
		set(out.Index(out.Len()-1), v)
	}
	return out.Interface(), nil
}

func (c sliceCodec) EncodeValue(ctx context.Context, w gobind.Sink, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != c.t {
		return mismatch(c.t.String(), v)
	}
	if rv.IsNil() {
		return w.Null()
	}
	if err := w.BeginArray(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := c.elem.EncodeValue(ctx, w, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return w.EndArray()
}

func (c sliceCodec) JSONSchema() (*js.Schema, error) {
	items, err := schemaOf(c.elem)
	if err != nil {
		return nil, err
	}
	return &js.Schema{Type: "array", Items: items}, nil
}

// ---- map[string]V ----

// mapCodec reads objects into string-keyed maps. A repeated key keeps the
// last value. Encoding sorts keys.
type mapCodec struct {
	t    reflect.Type
	elem gobind.Codec
}

func (c mapCodec) DecodeValue(ctx context.Context, r *gobind.Reader) (any, error) {
	if isNull, err := readNull(r); err != nil || isNull {
		return reflect.Zero(c.t).Interface(), err
	}
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	out := reflect.MakeMap(c.t)
	for {
		name, ok, err := r.NextName()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		v, err := c.elem.DecodeValue(ctx, r)
		if err != nil {
			return nil, elemError(r, err)
		}
		ev := reflect.New(c.t.Elem()).Elem()
		set(ev, v)
		out.SetMapIndex(reflect.ValueOf(name).Convert(c.t.Key()), ev)
	}
	return out.Interface(), nil
}

func (c mapCodec) EncodeValue(ctx context.Context, w gobind.Sink, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != c.t {
		return mismatch(c.t.String(), v)
	}
	if rv.IsNil() {
		return w.Null()
	}
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, k := range keys {
		if err := w.Name(k.String()); err != nil {
			return err
		}
		if err := c.elem.EncodeValue(ctx, w, rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func (c mapCodec) JSONSchema() (*js.Schema, error) {
	elem, err := schemaOf(c.elem)
	if err != nil {
		return nil, err
	}
	return &js.Schema{Type: "object", AdditionalProperties: elem}, nil
}

// ---- []byte ----

// bytesCodec carries byte slices as standard base64 strings.
type bytesCodec struct{ t reflect.Type }

func (c bytesCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	if isNull, err := readNull(r); err != nil || isNull {
		return reflect.Zero(c.t).Interface(), err
	}
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, gobind.IssueAt(r, gobind.CodeInvalidFormat, "invalid base64", err)
	}
	return reflect.ValueOf(b).Convert(c.t).Interface(), nil
}

func (c bytesCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
		return mismatch("[]byte", v)
	}
	if rv.IsNil() {
		return w.Null()
	}
	return w.String(base64.StdEncoding.EncodeToString(rv.Bytes()))
}

func (bytesCodec) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "byte"}, nil
}
