package gobind

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Encode writes v to w as a JSON object with fields in binding order.
func (b *TypeBinding[T]) Encode(ctx context.Context, v T, w Sink, opts ...EncodeOpt) error {
	if lastEncodeOpt(opts).OmitNulls {
		ctx = WithOmitNulls(ctx, true)
	}
	return b.encode(ctx, &v, w, nil)
}

// EncodePreserving writes only the fields seen in the decoded input. Fields
// that took a default are left out.
func (b *TypeBinding[T]) EncodePreserving(ctx context.Context, db Decoded[T], w Sink, opts ...EncodeOpt) error {
	if lastEncodeOpt(opts).OmitNulls {
		ctx = WithOmitNulls(ctx, true)
	}
	v := db.Value
	return b.encode(ctx, &v, w, func(fb *FieldBinding) bool {
		return db.Presence.Has(fb.JSONName, PresenceSeen)
	})
}

// EncodeValue implements Codec. It accepts T or *T; a nil *T is written as
// null.
func (b *TypeBinding[T]) EncodeValue(ctx context.Context, w Sink, v any) error {
	switch t := v.(type) {
	case T:
		return b.encode(ctx, &t, w, nil)
	case *T:
		if t == nil {
			return w.Null()
		}
		return b.encode(ctx, t, w, nil)
	default:
		return fmt.Errorf("gobind: %s cannot encode %T", b.name, v)
	}
}

func (b *TypeBinding[T]) encode(ctx context.Context, v *T, w Sink, keep func(*FieldBinding) bool) error {
	omitNulls := IsOmitNulls(ctx)
	if err := w.BeginObject(); err != nil {
		return err
	}
	for i := range b.fields {
		fb := &b.fields[i]
		if keep != nil && !keep(fb) {
			continue
		}
		val := b.props[i].Get(v)
		if omitNulls && isNil(val) {
			continue
		}
		if err := w.Name(fb.JSONName); err != nil {
			return err
		}
		if err := fb.Codec.EncodeValue(ctx, w, val); err != nil {
			return prefixIssues(fb.JSONName, err)
		}
	}
	return w.EndObject()
}

// prefixIssues relocates nested encode issues under name. Plain errors become
// invalid_type issues at $.name.
func prefixIssues(name string, err error) error {
	iss, ok := AsIssues(err)
	if !ok {
		it := newIssue(CodeInvalidType, childPath("$", name), name)
		it.Hint = err.Error()
		it.Message += ": " + it.Hint
		it.Cause = err
		return Issues{it}
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		moved := childPath("$", name) + strings.TrimPrefix(it.Path, "$")
		it.Message = strings.Replace(it.Message, it.Path, moved, 1)
		it.Path = moved
		out[i] = it
	}
	return out
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
