package cbor_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
	cborsrc "github.com/reoring/gobind/source/cbor"
)

func render(t *testing.T, src gobind.Source) string {
	t.Helper()
	var parts []string
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return strings.Join(parts, " ")
		}
		if err != nil {
			t.Fatalf("token error: %v", err)
		}
		switch tok.Kind {
		case gobind.TokenBeginObject:
			parts = append(parts, "{")
		case gobind.TokenEndObject:
			parts = append(parts, "}")
		case gobind.TokenBeginArray:
			parts = append(parts, "[")
		case gobind.TokenEndArray:
			parts = append(parts, "]")
		case gobind.TokenKey:
			parts = append(parts, "k:"+tok.String)
		case gobind.TokenString:
			parts = append(parts, "s:"+tok.String)
		case gobind.TokenNumber:
			parts = append(parts, "n:"+tok.Number)
		case gobind.TokenBool:
			if tok.Bool {
				parts = append(parts, "b:true")
			} else {
				parts = append(parts, "b:false")
			}
		case gobind.TokenNull:
			parts = append(parts, "null")
		}
	}
}

func TestCBOR_Tokens(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{
		"b": 1,
		"a": "x",
		"c": []any{true, nil, -2, 2.5},
		"d": []byte{1, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "{ k:a s:x k:b n:1 k:c [ b:true null n:-2 n:2.5 ] k:d s:AQI= }"
	if got := render(t, cborsrc.NewBytes(data)); got != want {
		t.Fatalf("tokens:\n got %s\nwant %s", got, want)
	}
}

func TestCBOR_DuplicateMapKeyRejected(t *testing.T) {
	// {"a": 1, "a": 2}
	data := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	if _, err := cborsrc.NewBytes(data).NextToken(); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

type Point struct {
	X int `json:"x" bind:"required"`
	Y int `json:"y" bind:"required"`
}

func TestCBOR_DecodesBinding(t *testing.T) {
	b, err := gobind.Bind[Point](codec.New())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	data, err := cbor.Marshal(map[string]int{"y": 2, "x": -1})
	if err != nil {
		t.Fatal(err)
	}
	p, err := b.Decode(context.Background(), cborsrc.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p != (Point{X: -1, Y: 2}) {
		t.Fatalf("got %+v", p)
	}

	trailing := append(append([]byte{}, data...), 0x01)
	_, err = b.Decode(context.Background(), cborsrc.NewBytes(trailing))
	if iss, ok := gobind.AsIssues(err); !ok || iss[0].Code != gobind.CodeUnexpectedToken {
		t.Fatalf("expected trailing data issue, got %v", err)
	}
}
