package gobind_test

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
)

type Owner struct {
	Name string `json:"name" bind:"required"`
}

type Account struct {
	ID     string         `bind:"name=id,required"`
	Limit  int            `json:"limit" bind:"optional"`
	Nick   *string        `json:"nick"`
	Tags   []string       `json:"tags"`
	Meta   map[string]any `json:"meta"`
	Owner  *Owner         `json:"owner"`
	Secret string         `json:"-"`
	Code   string         `bind:"name=code,qualifier=uppercase"`
}

func (a *Account) Defaults() { a.Limit = 100 }

type Point struct {
	X int `json:"x" bind:"required"`
	Y int `json:"y" bind:"required"`
}

func bindAccount(t *testing.T) *gobind.TypeBinding[Account] {
	t.Helper()
	b, err := gobind.Bind[Account](codec.New())
	if err != nil {
		t.Fatalf("bind err: %v", err)
	}
	return b
}

func TestBind_FieldOrder(t *testing.T) {
	b := bindAccount(t)
	var names []string
	for i, f := range b.Fields() {
		if f.Index != i {
			t.Fatalf("field %s has index %d, want %d", f.JSONName, f.Index, i)
		}
		names = append(names, f.JSONName)
	}
	want := []string{"id", "limit", "nick", "tags", "meta", "owner", "code"}
	if !slices.Equal(names, want) {
		t.Fatalf("field order = %v, want %v", names, want)
	}
	if b.Select("limit") != 1 || b.Select("Secret") != gobind.NoMatch || b.Select("nope") != gobind.NoMatch {
		t.Fatalf("unexpected selector results")
	}
	f := b.Fields()[1]
	if !f.ConstructorSupplied || !f.Optional || f.ConstructorIndex != 1 || f.DeclaredName != "Limit" {
		t.Fatalf("unexpected limit binding: %+v", f)
	}
}

func TestBind_Roundtrip(t *testing.T) {
	ctx := context.Background()
	b := bindAccount(t)
	in := `{"id":"a1","limit":5,"nick":"n","tags":["x","y"],"meta":{"k":1,"z":[true,null]},"owner":{"name":"o"},"code":"ABC"}`

	v, err := gobind.Unmarshal(ctx, b, []byte(in))
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if v.ID != "a1" || v.Limit != 5 || v.Nick == nil || *v.Nick != "n" || v.Owner == nil || v.Owner.Name != "o" || v.Code != "abc" {
		t.Fatalf("unexpected value: %+v", v)
	}
	out, err := gobind.Marshal(ctx, b, v)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(out) != in {
		t.Fatalf("roundtrip mismatch:\n got %s\nwant %s", out, in)
	}
	again, err := gobind.Marshal(ctx, b, v)
	if err != nil || string(again) != string(out) {
		t.Fatalf("encoding is not deterministic: %s vs %s", again, out)
	}
}

func TestBind_DefaultsAndAbsence(t *testing.T) {
	ctx := context.Background()
	b := bindAccount(t)
	v, err := gobind.Unmarshal(ctx, b, []byte(`{"id":"x"}`))
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if v.Limit != 100 || v.Nick != nil || v.Tags != nil || v.Owner != nil {
		t.Fatalf("unexpected value: %+v", v)
	}
	out, err := gobind.Marshal(ctx, b, v)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(out) != `{"id":"x","limit":100,"nick":null,"tags":null,"meta":null,"owner":null,"code":""}` {
		t.Fatalf("marshal = %s", out)
	}
	out, err = gobind.Marshal(ctx, b, v, gobind.EncodeOpt{OmitNulls: true})
	if err != nil || string(out) != `{"id":"x","limit":100,"code":""}` {
		t.Fatalf("marshal omit nulls = %s err=%v", out, err)
	}
}

func TestBind_UnknownKeysAreSkipped(t *testing.T) {
	b := bindAccount(t)
	in := `{"zzz":{"deep":[1,{"a":[]},"s"]},"id":"x","Secret":"s","other":null,"limit":2}`
	v, err := gobind.Unmarshal(context.Background(), b, []byte(in))
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if v.ID != "x" || v.Limit != 2 || v.Secret != "" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestBind_DecodeErrors(t *testing.T) {
	b := bindAccount(t)
	cases := []struct {
		name string
		in   string
		code string
		path string
		key  string
	}{
		{"duplicate", `{"id":"x","limit":1,"limit":1}`, gobind.CodeDuplicateValue, "$.limit", "limit"},
		{"missing required", `{"limit":1}`, gobind.CodeMissingRequiredValue, "$", "id"},
		{"null for non-nullable", `{"id":null}`, gobind.CodeUnexpectedToken, "$.id", ""},
		{"nested missing", `{"id":"x","owner":{}}`, gobind.CodeMissingRequiredValue, "$.owner", "name"},
		{"nested type", `{"id":"x","owner":{"name":5}}`, gobind.CodeUnexpectedToken, "$.owner.name", ""},
		{"array element", `{"id":"x","tags":["a",1]}`, gobind.CodeUnexpectedToken, "$.tags[1]", ""},
		{"not an object", `[1]`, gobind.CodeUnexpectedToken, "$", ""},
		{"trailing data", `{"id":"x"} {"id":"y"}`, gobind.CodeUnexpectedToken, "$", ""},
		{"truncated input", `{"id":"x"`, gobind.CodeUnexpectedToken, "$.id", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gobind.Unmarshal(context.Background(), b, []byte(tc.in))
			iss, ok := gobind.AsIssues(err)
			if !ok || len(iss) == 0 {
				t.Fatalf("expected issues, got %v", err)
			}
			it := iss[0]
			if it.Code != tc.code || it.Path != tc.path || it.Key != tc.key {
				t.Fatalf("got %+v, want code=%s path=%s key=%s", it, tc.code, tc.path, tc.key)
			}
		})
	}
}

func TestBind_MissingRequiredCollectsAllUnlessFailFast(t *testing.T) {
	ctx := context.Background()
	b, err := gobind.Bind[Point](codec.New())
	if err != nil {
		t.Fatalf("bind err: %v", err)
	}
	_, err = gobind.Unmarshal(ctx, b, []byte(`{}`))
	iss, _ := gobind.AsIssues(err)
	if len(iss) != 2 || iss[0].Key != "x" || iss[1].Key != "y" {
		t.Fatalf("expected x and y missing, got %v", err)
	}
	_, err = gobind.Unmarshal(ctx, b, []byte(`{}`), gobind.DecodeOpt{FailFast: true})
	iss, _ = gobind.AsIssues(err)
	if len(iss) != 1 || iss[0].Key != "x" {
		t.Fatalf("expected only x missing, got %v", err)
	}
}

func TestBind_MaxDepth(t *testing.T) {
	b := bindAccount(t)
	in := []byte(`{"id":"x","zzz":{"a":{"b":1}}}`)
	if _, err := gobind.Unmarshal(context.Background(), b, in, gobind.DecodeOpt{MaxDepth: 2}); !gobind.HasCode(err, gobind.CodeParseError) {
		t.Fatalf("expected parse_error, got %v", err)
	}
	if _, err := gobind.Unmarshal(context.Background(), b, in, gobind.DecodeOpt{MaxDepth: 3}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestBind_Presence(t *testing.T) {
	ctx := context.Background()
	b := bindAccount(t)
	dm, err := b.DecodeWithMeta(ctx, gobind.JSONBytes([]byte(`{"id":"x","nick":null,"code":"Q"}`)))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	pm := dm.Presence
	if pm["id"] != gobind.PresenceSeen {
		t.Fatalf("id presence = %b", pm["id"])
	}
	if !pm.Has("nick", gobind.PresenceSeen|gobind.PresenceWasNull) {
		t.Fatalf("nick presence = %b", pm["nick"])
	}
	if pm["limit"] != gobind.PresenceDefaultApplied {
		t.Fatalf("limit presence = %b", pm["limit"])
	}
	if _, ok := pm["tags"]; ok {
		t.Fatalf("tags should be absent from presence")
	}
	limit := gobind.FieldOf(func(a *Account) *int { return &a.Limit })
	if !dm.DefaultApplied(limit) || dm.Seen(limit) {
		t.Fatalf("unexpected field token lookups")
	}

	dm.Value.Limit = 7
	var sb strings.Builder
	w := gobind.NewJSONWriter(&sb)
	if err := gobind.EncodeWithDecoded(ctx, b, dm, w, gobind.EncodePreserve); err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush err: %v", err)
	}
	if sb.String() != `{"id":"x","nick":null,"code":"Q"}` {
		t.Fatalf("preserving output = %s", sb.String())
	}

	if err := gobind.EncodeWithDecoded(ctx, b, gobind.Decoded[Account]{}, w, gobind.EncodePreserve); !errors.Is(err, gobind.ErrEncodePreserveRequiresPresence) {
		t.Fatalf("expected ErrEncodePreserveRequiresPresence, got %v", err)
	}
}

func TestBind_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	b := bindAccount(t)
	in := []byte(`{"id":"a","limit":1,"nick":null,"tags":["t"],"meta":null,"owner":{"name":"o"},"code":"C"}`)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				v, err := gobind.Unmarshal(ctx, b, in)
				if err != nil {
					t.Errorf("unmarshal err: %v", err)
					return
				}
				out, err := gobind.Marshal(ctx, b, v)
				if err != nil || string(out) != string(in) {
					t.Errorf("roundtrip mismatch: %s err=%v", out, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestBind_JSONSchema(t *testing.T) {
	b := bindAccount(t)
	s, err := b.JSONSchema()
	if err != nil {
		t.Fatalf("schema err: %v", err)
	}
	if s.Type != "object" || !reflect.DeepEqual(s.Required, []string{"id"}) {
		t.Fatalf("unexpected schema: %+v", s)
	}
	if s.Properties["limit"].Type != "integer" || s.Properties["tags"].Type != "array" || s.Properties["tags"].Items.Type != "string" {
		t.Fatalf("unexpected property schemas: %+v", s.Properties)
	}
	owner := s.Properties["owner"]
	if owner.Type != "object" || !reflect.DeepEqual(owner.Required, []string{"name"}) {
		t.Fatalf("unexpected owner schema: %+v", owner)
	}
}

func TestBind_NotApplicableAndErrors(t *testing.T) {
	if _, err := gobind.Bind[int](codec.New()); err == nil {
		t.Fatalf("expected error for non-struct type")
	}
	type readOnlyLoose struct {
		A int `bind:"readonly"`
	}
	if _, err := gobind.Bind[readOnlyLoose](codec.New()); err == nil {
		t.Fatalf("expected unrepresentable field error")
	}
}
