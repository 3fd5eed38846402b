package gobind_test

import (
	"context"
	"strings"
	"testing"

	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
)

type Item struct {
	ID string `json:"id" bind:"required"`
}

type Order struct {
	Items []Item `json:"items" bind:"required"`
}

func bindOrder(t *testing.T) *gobind.TypeBinding[Order] {
	t.Helper()
	b, err := gobind.Bind[Order](codec.New())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return b
}

func TestStreamDecode_NestedArray_Success(t *testing.T) {
	r := strings.NewReader(`{"items":[{"id":"a"},{"id":"b","extra":{}}]}`)
	o, err := bindOrder(t).Decode(context.Background(), gobind.JSONReader(r))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.Items) != 2 || o.Items[1].ID != "b" {
		t.Fatalf("got %+v", o)
	}
}

func TestStreamDecode_NestedArray_ErrorPaths(t *testing.T) {
	cases := []struct {
		in   string
		code string
		path string
	}{
		{`{"items":[{"id":"ok"},{"id":1}]}`, gobind.CodeUnexpectedToken, "$.items[1].id"},
		{`{"items":[{"id":"ok"},{}]}`, gobind.CodeMissingRequiredValue, "$.items[1]"},
		{`{"items":[{"id":"a","id":"b"}]}`, gobind.CodeDuplicateValue, "$.items[0].id"},
		{`{"items":{}}`, gobind.CodeUnexpectedToken, "$.items"},
	}
	b := bindOrder(t)
	for _, tc := range cases {
		_, err := b.Decode(context.Background(), gobind.JSONReader(strings.NewReader(tc.in)))
		iss, ok := gobind.AsIssues(err)
		if !ok || len(iss) == 0 {
			t.Fatalf("%s: expected Issues, got: %v", tc.in, err)
		}
		if iss[0].Code != tc.code || iss[0].Path != tc.path {
			t.Fatalf("%s: got %s at %s, want %s at %s", tc.in, iss[0].Code, iss[0].Path, tc.code, tc.path)
		}
	}
}
