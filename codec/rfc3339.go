package codec

import (
	"context"
	"time"

	gobind "github.com/reoring/gobind"
	js "github.com/reoring/gobind/jsonschema"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and
// time.Time. Output is normalized to UTC.
func TimeRFC3339() gobind.Codec { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, gobind.IssueAt(r, gobind.CodeInvalidFormat, "invalid RFC3339 time", err)
	}
	return t, nil
}

func (rfc3339Codec) EncodeValue(_ context.Context, w gobind.Sink, v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return mismatch("time.Time", v)
	}
	return w.String(formatRFC3339Canonical(t))
}

func (rfc3339Codec) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "date-time"}, nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
