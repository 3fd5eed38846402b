package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	gobind "github.com/reoring/gobind"
)

// Identity returns the codec for untyped values: decoding yields the JSON
// tree unchanged (map[string]any, []any, string, bool, nil and numbers per
// the source NumberMode), encoding writes such a tree back. Values of other
// types are encoded through reg; reg may be nil.
func Identity(reg gobind.Registry) gobind.Codec { return identityCodec{reg: reg} }

type identityCodec struct{ reg gobind.Registry }

func (identityCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	return r.ReadAny()
}

func (c identityCodec) EncodeValue(ctx context.Context, w gobind.Sink, v any) error {
	switch t := v.(type) {
	case nil:
		return w.Null()
	case string:
		return w.String(t)
	case bool:
		return w.Bool(t)
	case json.Number:
		return w.Number(string(t))
	case float64:
		if err := checkFinite(t); err != nil {
			return err
		}
		return w.Number(formatFloat(t, 64))
	case int:
		return w.Number(strconv.Itoa(t))
	case int64:
		return w.Number(strconv.FormatInt(t, 10))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if err := w.BeginObject(); err != nil {
			return err
		}
		for _, k := range keys {
			if err := w.Name(k); err != nil {
				return err
			}
			if err := c.EncodeValue(ctx, w, t[k]); err != nil {
				return err
			}
		}
		return w.EndObject()
	case []any:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, e := range t {
			if err := c.EncodeValue(ctx, w, e); err != nil {
				return err
			}
		}
		return w.EndArray()
	}
	if c.reg == nil {
		return fmt.Errorf("codec: untyped value of type %T is not supported", v)
	}
	inner, err := c.reg.Codec(reflect.TypeOf(v), "")
	if err != nil {
		return err
	}
	return inner.EncodeValue(ctx, w, v)
}
