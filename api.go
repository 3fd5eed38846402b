package gobind

import (
	"bytes"
	"context"
	"errors"
	"reflect"
)

// Codec reads and writes one value of a declared type. Codecs are resolved
// once per (type, qualifier) and shared, so implementations must be stateless
// or safe for concurrent use.
type Codec interface {
	// DecodeValue reads exactly one value from r.
	DecodeValue(ctx context.Context, r *Reader) (any, error)
	// EncodeValue writes v to w as exactly one value.
	EncodeValue(ctx context.Context, w Sink, v any) error
}

// Registry supplies codecs for field types. The codec package provides the
// default implementation.
type Registry interface {
	// Codec returns the codec for t under the given qualifier tag ("" for
	// none).
	Codec(t reflect.Type, qualifier string) (Codec, error)
	// IsPlatformType reports whether t belongs to the runtime or standard
	// library and must not be bound field by field.
	IsPlatformType(t reflect.Type) bool
}

// EncodeMode exposes canonical vs preserving output intent at call sites.
type EncodeMode int

const (
	EncodeCanonical EncodeMode = iota
	EncodePreserve
)

// ErrEncodePreserveRequiresPresence indicates EncodePreserve was requested
// with a Decoded value that carries no presence metadata.
var ErrEncodePreserveRequiresPresence = errors.New("gobind: encode preserve requires presence; decode with DecodeWithMeta")

// EncodeWithDecoded encodes db.Value using the given mode. EncodePreserve
// writes only the fields seen in the decoded input.
func EncodeWithDecoded[T any](ctx context.Context, b *TypeBinding[T], db Decoded[T], w Sink, mode EncodeMode, opts ...EncodeOpt) error {
	if mode == EncodePreserve {
		if db.Presence == nil {
			return ErrEncodePreserveRequiresPresence
		}
		return b.EncodePreserving(ctx, db, w, opts...)
	}
	return b.Encode(ctx, db.Value, w, opts...)
}

// Unmarshal decodes JSON data into T through b.
func Unmarshal[T any](ctx context.Context, b *TypeBinding[T], data []byte, opts ...DecodeOpt) (T, error) {
	return b.Decode(ctx, JSONBytes(data), opts...)
}

// Marshal encodes v as compact JSON through b.
func Marshal[T any](ctx context.Context, b *TypeBinding[T], v T, opts ...EncodeOpt) ([]byte, error) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	if err := b.Encode(ctx, v, w, opts...); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
