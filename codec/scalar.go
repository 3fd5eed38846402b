package codec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	gobind "github.com/reoring/gobind"
	js "github.com/reoring/gobind/jsonschema"
)

// QualifierUppercase names the built-in qualifier that writes strings in
// upper case and reads them back in lower case.
const QualifierUppercase = "uppercase"

var (
	typeTime   = reflect.TypeFor[time.Time]()
	typeNumber = reflect.TypeFor[json.Number]()
)

// builtin returns the codec for scalar kinds and well-known types, or nil.
func builtin(t reflect.Type) gobind.Codec {
	switch t {
	case typeTime:
		return TimeRFC3339()
	case typeNumber:
		return numberCodec{}
	}
	switch t.Kind() {
	case reflect.String:
		return stringCodec{t}
	case reflect.Bool:
		return boolCodec{t}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intCodec{t}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintCodec{t}
	case reflect.Float32, reflect.Float64:
		return floatCodec{t}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return bytesCodec{t}
		}
	}
	return nil
}

// as converts v to t when t is a named variant of v's type.
func as(t reflect.Type, v any) any {
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return v
	}
	return rv.Convert(t).Interface()
}

func kindOf(v any) reflect.Kind {
	if v == nil {
		return reflect.Invalid
	}
	return reflect.TypeOf(v).Kind()
}

func mismatch(want string, v any) error {
	return fmt.Errorf("expected %s value but got %T", want, v)
}

func schemaOf(c gobind.Codec) (*js.Schema, error) {
	if sp, ok := c.(gobind.SchemaProvider); ok {
		return sp.JSONSchema()
	}
	return &js.Schema{}, nil
}

// ---- string ----

type stringCodec struct{ t reflect.Type }

func (c stringCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	return as(c.t, s), nil
}

func (c stringCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	if kindOf(v) != reflect.String {
		return mismatch("string", v)
	}
	return w.String(reflect.ValueOf(v).String())
}

func (stringCodec) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "string"}, nil }

func readString(r *gobind.Reader) (string, error) {
	tok, err := r.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind != gobind.TokenString {
		return "", r.Unexpected(gobind.TokenString, tok)
	}
	return tok.String, nil
}

// ---- bool ----

type boolCodec struct{ t reflect.Type }

func (c boolCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	tok, err := r.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != gobind.TokenBool {
		return nil, r.Unexpected(gobind.TokenBool, tok)
	}
	return as(c.t, tok.Bool), nil
}

func (c boolCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	if kindOf(v) != reflect.Bool {
		return mismatch("bool", v)
	}
	return w.Bool(reflect.ValueOf(v).Bool())
}

func (boolCodec) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil }

// ---- numbers ----

func readNumber(r *gobind.Reader) (string, error) {
	tok, err := r.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind != gobind.TokenNumber {
		return "", r.Unexpected(gobind.TokenNumber, tok)
	}
	return tok.Number, nil
}

// numberIssue classifies a strconv failure.
func numberIssue(r *gobind.Reader, lit string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return gobind.IssueAt(r, gobind.CodeOverflow, lit, err)
	}
	return gobind.IssueAt(r, gobind.CodeInvalidFormat, lit, err)
}

// integral accepts literals such as 1.0 or 1e3 that denote whole numbers.
func integral(lit string) (float64, bool) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.Trunc(f) != f || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type intCodec struct{ t reflect.Type }

func (c intCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	lit, err := readNumber(r)
	if err != nil {
		return nil, err
	}
	bits := c.t.Bits()
	n, err := strconv.ParseInt(lit, 10, bits)
	if errors.Is(err, strconv.ErrSyntax) {
		f, ok := integral(lit)
		if !ok {
			return nil, numberIssue(r, lit, err)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 || reflect.Zero(c.t).OverflowInt(int64(f)) {
			return nil, numberIssue(r, lit, strconv.ErrRange)
		}
		n, err = int64(f), nil
	}
	if err != nil {
		return nil, numberIssue(r, lit, err)
	}
	return reflect.ValueOf(n).Convert(c.t).Interface(), nil
}

func (c intCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	switch kindOf(v) {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.Number(strconv.FormatInt(reflect.ValueOf(v).Int(), 10))
	}
	return mismatch("integer", v)
}

func (intCodec) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil }

type uintCodec struct{ t reflect.Type }

func (c uintCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	lit, err := readNumber(r)
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseUint(lit, 10, c.t.Bits())
	if errors.Is(err, strconv.ErrSyntax) {
		f, ok := integral(lit)
		if !ok || f < 0 {
			return nil, numberIssue(r, lit, err)
		}
		if f >= math.MaxUint64 || reflect.Zero(c.t).OverflowUint(uint64(f)) {
			return nil, numberIssue(r, lit, strconv.ErrRange)
		}
		n, err = uint64(f), nil
	}
	if err != nil {
		return nil, numberIssue(r, lit, err)
	}
	return reflect.ValueOf(n).Convert(c.t).Interface(), nil
}

func (c uintCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	switch kindOf(v) {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.Number(strconv.FormatUint(reflect.ValueOf(v).Uint(), 10))
	}
	return mismatch("unsigned integer", v)
}

func (uintCodec) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil }

type floatCodec struct{ t reflect.Type }

func (c floatCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	lit, err := readNumber(r)
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(lit, c.t.Bits())
	if err != nil {
		return nil, numberIssue(r, lit, err)
	}
	return reflect.ValueOf(f).Convert(c.t).Interface(), nil
}

func (c floatCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	switch kindOf(v) {
	case reflect.Float32, reflect.Float64:
		f := reflect.ValueOf(v).Float()
		if err := checkFinite(f); err != nil {
			return err
		}
		return w.Number(formatFloat(f, reflect.TypeOf(v).Bits()))
	}
	return mismatch("float", v)
}

func (floatCodec) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "number"}, nil }

var errNonFinite = errors.New("NaN and Inf have no JSON form")

func formatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errNonFinite
	}
	return nil
}

// numberCodec keeps the literal text of a JSON number.
type numberCodec struct{}

func (numberCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	lit, err := readNumber(r)
	if err != nil {
		return nil, err
	}
	return json.Number(lit), nil
}

func (numberCodec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	n, ok := v.(json.Number)
	if !ok {
		return mismatch("json.Number", v)
	}
	if _, err := n.Float64(); err != nil {
		return fmt.Errorf("invalid number literal %q", string(n))
	}
	return w.Number(string(n))
}

func (numberCodec) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "number"}, nil }

// ---- qualifiers ----

// uppercase wraps string-kinded codecs.
func uppercase(t reflect.Type, base gobind.Codec) (gobind.Codec, error) {
	if t.Kind() != reflect.String {
		return nil, fmt.Errorf("codec: qualifier %q needs a string type, got %s", QualifierUppercase, t)
	}
	return uppercaseCodec{t: t, base: base}, nil
}

type uppercaseCodec struct {
	t    reflect.Type
	base gobind.Codec
}

func (c uppercaseCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	return as(c.t, strings.ToLower(s)), nil
}

func (c uppercaseCodec) EncodeValue(ctx context.Context, w gobind.Sink, v any) error {
	if kindOf(v) != reflect.String {
		return mismatch("string", v)
	}
	return c.base.EncodeValue(ctx, w, as(c.t, strings.ToUpper(reflect.ValueOf(v).String())))
}

func (c uppercaseCodec) JSONSchema() (*js.Schema, error) { return schemaOf(c.base) }
