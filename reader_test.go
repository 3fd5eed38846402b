package gobind_test

import (
	"testing"

	gobind "github.com/reoring/gobind"
)

func TestReader_PathTracking(t *testing.T) {
	r := gobind.NewReader(gobind.JSONBytes([]byte(`{"a":[1,{"b":true}],"c":null}`)))
	mustOK := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if r.Path() != "$" {
		t.Fatalf("root path = %s", r.Path())
	}
	mustOK(r.BeginObject())
	name, ok, err := r.NextName()
	if err != nil || !ok || name != "a" || r.Path() != "$.a" {
		t.Fatalf("name=%q ok=%v err=%v path=%s", name, ok, err, r.Path())
	}
	mustOK(r.BeginArray())
	ok, err = r.NextElement()
	if err != nil || !ok || r.Path() != "$.a[0]" {
		t.Fatalf("ok=%v err=%v path=%s", ok, err, r.Path())
	}
	mustOK(r.Skip())
	ok, err = r.NextElement()
	if err != nil || !ok || r.Path() != "$.a[1]" {
		t.Fatalf("ok=%v err=%v path=%s", ok, err, r.Path())
	}
	mustOK(r.BeginObject())
	if _, _, err := r.NextName(); err != nil || r.Path() != "$.a[1].b" {
		t.Fatalf("err=%v path=%s", err, r.Path())
	}
	mustOK(r.Skip())
	if _, ok, err := r.NextName(); ok || err != nil {
		t.Fatalf("expected end of object, ok=%v err=%v", ok, err)
	}
	if ok, err := r.NextElement(); ok || err != nil {
		t.Fatalf("expected end of array, ok=%v err=%v", ok, err)
	}
	if name, _, _ := r.NextName(); name != "c" || r.Path() != "$.c" {
		t.Fatalf("name=%q path=%s", name, r.Path())
	}
	v, err := r.ReadAny()
	if err != nil || v != nil {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if _, ok, err := r.NextName(); ok || err != nil {
		t.Fatalf("expected end of object, ok=%v err=%v", ok, err)
	}
	mustOK(r.End())
}

func TestReader_SkipRejectsStructuralTokens(t *testing.T) {
	r := gobind.NewReader(gobind.JSONBytes([]byte(`{}`)))
	if err := r.BeginObject(); err != nil {
		t.Fatalf("begin err: %v", err)
	}
	if err := r.Skip(); !gobind.HasCode(err, gobind.CodeUnexpectedToken) {
		t.Fatalf("expected unexpected_token, got %v", err)
	}
}

func TestReader_ReadAnyNumberModes(t *testing.T) {
	src := gobind.TokensSource([]gobind.Token{
		{Kind: gobind.TokenBeginArray},
		{Kind: gobind.TokenNumber, Number: "1.5"},
		{Kind: gobind.TokenEndArray},
	}, gobind.NumberFloat64)
	v, err := gobind.NewReader(src).ReadAny()
	if err != nil {
		t.Fatalf("read err: %v", err)
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 1 || arr[0] != 1.5 {
		t.Fatalf("unexpected value %#v", v)
	}
}
