package codec_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
)

type Node struct {
	Value    int     `json:"value"`
	Next     *Node   `json:"next"`
	Children []*Node `json:"children"`
}

type Broken struct {
	C chan int `json:"c"`
}

func TestRegistry_CachesResolvedCodec(t *testing.T) {
	r := codec.New()
	a := mustCodec[[]string](t, r, "")
	b := mustCodec[[]string](t, r, "")
	if a != b {
		t.Fatalf("expected cached codec to be reused")
	}
}

func TestRegistry_QualifierResolvedAtMostOnce(t *testing.T) {
	var calls atomic.Int32
	r := codec.New(codec.WithQualifier("trim", func(t reflect.Type, base gobind.Codec) (gobind.Codec, error) {
		calls.Add(1)
		return base, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Codec(reflect.TypeFor[string](), "trim"); err != nil {
				t.Errorf("codec err: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Fatalf("qualifier factory ran %d times, want 1", n)
	}
}

func TestRegistry_RecursiveType(t *testing.T) {
	r := codec.New()
	c := mustCodec[Node](t, r, "")
	in := `{"value":1,"next":{"value":2,"next":null,"children":null},"children":[{"value":3,"next":null,"children":[]}]}`
	got, err := decodeJSON(t, c, in)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	n := got.(Node)
	if n.Value != 1 || n.Next == nil || n.Next.Value != 2 || len(n.Children) != 1 || n.Children[0].Value != 3 {
		t.Fatalf("unexpected node: %+v", n)
	}
	if out := encodeJSON(t, c, n); out != in {
		t.Fatalf("roundtrip mismatch:\n got %s\nwant %s", out, in)
	}
}

func TestRegistry_FailureIsNotCachedAndIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := codec.New(codec.WithLogger(zap.New(core)))

	for i := 0; i < 2; i++ {
		_, err := r.Codec(reflect.TypeFor[Broken](), "")
		if !errors.Is(err, gobind.ErrNoCodec) {
			t.Fatalf("attempt %d: expected ErrNoCodec, got %v", i, err)
		}
	}
	if n := logs.FilterMessage("codec resolution failed").Len(); n != 2 {
		t.Fatalf("expected 2 failure logs, got %d", n)
	}
}

func TestRegistry_UnknownQualifier(t *testing.T) {
	_, err := codec.New().Codec(reflect.TypeFor[string](), "nope")
	if !errors.Is(err, codec.ErrUnknownQualifier) {
		t.Fatalf("expected ErrUnknownQualifier, got %v", err)
	}
}

type constCodec struct{ s string }

func (c constCodec) DecodeValue(_ context.Context, r *gobind.Reader) (any, error) {
	if err := r.Skip(); err != nil {
		return nil, err
	}
	return c.s, nil
}

func (c constCodec) EncodeValue(_ context.Context, w gobind.Sink, _ any) error {
	return w.String(c.s)
}

func TestRegister_OverridesBuiltin(t *testing.T) {
	r := codec.New()
	codec.Register[string](r, "", constCodec{"fixed"})
	c := mustCodec[string](t, r, "")
	got, err := decodeJSON(t, c, `{"ignored":[1,2]}`)
	if err != nil || got != "fixed" {
		t.Fatalf("got %v err=%v", got, err)
	}
}

func TestRegistry_PlatformTypes(t *testing.T) {
	r := codec.New()
	if !r.IsPlatformType(reflect.TypeFor[*int]()) {
		t.Fatalf("int should be a platform type")
	}
	if r.IsPlatformType(reflect.TypeFor[Node]()) {
		t.Fatalf("Node should not be a platform type")
	}
	if !r.IsPlatformType(reflect.TypeFor[time.Time]()) {
		t.Fatalf("time.Time should be a platform type")
	}
	anon := reflect.TypeFor[struct {
		N int `json:"n"`
	}]()
	if r.IsPlatformType(anon) {
		t.Fatalf("anonymous struct should not be a platform type")
	}
	c, err := r.Codec(anon, "")
	if err != nil {
		t.Fatalf("anonymous struct codec: %v", err)
	}
	got, err := decodeJSON(t, c, `{"n":4}`)
	if err != nil || got != (struct {
		N int `json:"n"`
	}{N: 4}) {
		t.Fatalf("got %#v err=%v", got, err)
	}
}
