package gobind

import "context"

// DecodeOpt bundles decoding options. The last value passed to a decode call
// wins.
type DecodeOpt struct {
	MaxDepth int   // Maximum container nesting; 0 disables the check.
	MaxBytes int64 // Maximum consumed input bytes; 0 disables the check.
	// FailFast stops at the first missing required value instead of
	// reporting every missing one.
	FailFast bool
}

// EncodeOpt bundles encoding options.
type EncodeOpt struct {
	// OmitNulls skips fields whose current value is nil.
	OmitNulls bool
}

func lastDecodeOpt(opts []DecodeOpt) DecodeOpt {
	if len(opts) == 0 {
		return DecodeOpt{}
	}
	return opts[len(opts)-1]
}

func lastEncodeOpt(opts []EncodeOpt) EncodeOpt {
	if len(opts) == 0 {
		return EncodeOpt{}
	}
	return opts[len(opts)-1]
}

// ---- Per-call options propagated to nested codecs ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyOmitNulls
)

// WithFailFast returns a child context that marks fail-fast decoding.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current decode should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	b, _ := ctx.Value(_ctxKeyFailFast).(bool)
	return b
}

// WithOmitNulls returns a child context that makes object encoders skip
// nil-valued fields.
func WithOmitNulls(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyOmitNulls, enabled)
}

// IsOmitNulls reports whether nil-valued fields are skipped on encode.
func IsOmitNulls(ctx context.Context) bool {
	b, _ := ctx.Value(_ctxKeyOmitNulls).(bool)
	return b
}
