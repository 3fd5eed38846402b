package gobind_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	gobind "github.com/reoring/gobind"
)

func TestEncodeWithMode_Canonical(t *testing.T) {
	ctx := context.Background()
	b := bindAccount(t)
	var sb strings.Builder
	w := gobind.NewJSONWriter(&sb)
	db := gobind.Decoded[Account]{Value: Account{ID: "a", Limit: 2}}
	if err := gobind.EncodeWithDecoded(ctx, b, db, w, gobind.EncodeCanonical, gobind.EncodeOpt{OmitNulls: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := `{"id":"a","limit":2,"code":""}`; sb.String() != want {
		t.Fatalf("want %s, got %s", want, sb.String())
	}
}

func TestEncodeWithMode_PreserveRequiresPresence(t *testing.T) {
	b := bindAccount(t)
	w := gobind.NewJSONWriter(&strings.Builder{})
	err := gobind.EncodeWithDecoded(context.Background(), b, gobind.Decoded[Account]{}, w, gobind.EncodePreserve)
	if !errors.Is(err, gobind.ErrEncodePreserveRequiresPresence) {
		t.Fatalf("expected ErrEncodePreserveRequiresPresence, got: %v", err)
	}
}
