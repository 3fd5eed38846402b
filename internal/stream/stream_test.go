package stream_test

import (
	"errors"
	"io"
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	eng "github.com/reoring/gobind/internal/engine"
	str "github.com/reoring/gobind/internal/stream"
)

type sliceSource struct {
	toks []eng.Token
	i    int
}

func (s *sliceSource) NextToken() (eng.Token, error) {
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

func kinds(toks []eng.Token) string {
	var parts []string
	for _, t := range toks {
		switch t.Kind {
		case eng.KindKey, eng.KindString:
			parts = append(parts, t.Kind.String()+":"+t.String)
		case eng.KindNumber:
			parts = append(parts, "NUMBER:"+t.Number)
		default:
			parts = append(parts, t.Kind.String())
		}
	}
	return strings.Join(parts, " ")
}

func TestPreloadedSource_StopsAtSubtreeEnd(t *testing.T) {
	inner := &sliceSource{toks: []eng.Token{
		{Kind: eng.KindKey, String: "a"},
		{Kind: eng.KindBeginArray},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindEndObject},
		{Kind: eng.KindNumber, Number: "1"},
	}}
	p := str.NewPreloadedSource(inner, eng.Token{Kind: eng.KindBeginObject})
	if err := p.Drain(); err != nil {
		t.Fatalf("drain: %v", err)
	}
	next, err := inner.NextToken()
	if err != nil || next.Kind != eng.KindNumber {
		t.Fatalf("subtree consumed too much: %v %v", next, err)
	}

	short := str.NewPreloadedSource(&sliceSource{}, eng.Token{Kind: eng.KindBeginArray})
	if err := short.Drain(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestValueTokens(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"sorted keys", map[string]any{"b": uint64(2), "a": int64(-1)}, "BEGIN_OBJECT NAME:a NUMBER:-1 NAME:b NUMBER:2 END_OBJECT"},
		{"scalar keys", map[any]any{uint64(10): "x", true: nil}, "BEGIN_OBJECT NAME:10 STRING:x NAME:true NULL END_OBJECT"},
		{"array", []any{1.5, false, "s"}, "BEGIN_ARRAY NUMBER:1.5 BOOLEAN STRING:s END_ARRAY"},
		{"bytes", []byte("hi"), "STRING:aGk="},
		{"time", when, "STRING:2024-01-02T02:04:05Z"},
		{"big", new(big.Int).Lsh(big.NewInt(1), 70), "NUMBER:1180591620717411303424"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := str.ValueTokens(nil, tc.in)
			if err != nil {
				t.Fatalf("ValueTokens: %v", err)
			}
			if got := kinds(toks); got != tc.want {
				t.Fatalf("got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestValueTokens_Rejects(t *testing.T) {
	for name, in := range map[string]any{
		"nan":           math.NaN(),
		"inf":           math.Inf(-1),
		"unsupported":   struct{}{},
		"colliding key": map[any]any{int64(1): "a", "1": "b"},
	} {
		if _, err := str.ValueTokens(nil, in); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTreeBuilder(t *testing.T) {
	var b str.TreeBuilder
	for i, err := range []error{
		b.BeginObject(), b.Name("k"), b.BeginArray(), b.Number("1"), b.String("s"), b.EndArray(),
		b.Name("n"), b.Null(), b.EndObject(),
	} {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	root, err := b.Root()
	if err != nil {
		t.Fatal(err)
	}
	if root.Kind != str.NodeObject || len(root.Keys) != 2 || root.Keys[1] != "n" {
		t.Fatalf("unexpected root %+v", root)
	}
	if arr := root.Children[0]; arr.Kind != str.NodeArray || len(arr.Children) != 2 || arr.Children[1].Text != "s" {
		t.Fatalf("unexpected array %+v", arr)
	}
	if _, err := b.Root(); !errors.Is(err, str.ErrSinkState) {
		t.Fatalf("second Root: got %v", err)
	}
	if err := b.EndArray(); !errors.Is(err, str.ErrSinkState) {
		t.Fatalf("unbalanced end: got %v", err)
	}
}
