package stream

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"time"

	eng "github.com/reoring/gobind/internal/engine"
)

// NodeKind identifies the shape of a buffered Node.
type NodeKind int

const (
	NodeObject NodeKind = iota
	NodeArray
	NodeString
	NodeNumber
	NodeBool
	NodeNull
)

// Node is one value of a buffered document. Objects keep their keys in
// insertion order, parallel to Children.
type Node struct {
	Kind     NodeKind
	Text     string // string value or number literal
	Bool     bool
	Keys     []string
	Children []*Node
}

// ErrSinkState reports a sink call that does not fit the current position.
var ErrSinkState = errors.New("stream: sink call out of sequence")

// TreeBuilder collects sink calls into a Node tree. Formats that need
// container lengths up front (MessagePack) or a document model (YAML) embed it
// and serialize the tree on Flush.
type TreeBuilder struct {
	root    *Node
	stack   []*Node
	pending string
	named   bool
}

func (b *TreeBuilder) add(n *Node) error {
	if len(b.stack) == 0 {
		if b.root != nil {
			return ErrSinkState
		}
		b.root = n
	} else {
		top := b.stack[len(b.stack)-1]
		if top.Kind == NodeObject {
			if !b.named {
				return ErrSinkState
			}
			top.Keys = append(top.Keys, b.pending)
			b.named = false
		}
		top.Children = append(top.Children, n)
	}
	if n.Kind == NodeObject || n.Kind == NodeArray {
		b.stack = append(b.stack, n)
	}
	return nil
}

func (b *TreeBuilder) end(k NodeKind) error {
	n := len(b.stack)
	if n == 0 || b.stack[n-1].Kind != k || b.named {
		return ErrSinkState
	}
	b.stack = b.stack[:n-1]
	return nil
}

func (b *TreeBuilder) BeginObject() error { return b.add(&Node{Kind: NodeObject}) }
func (b *TreeBuilder) EndObject() error   { return b.end(NodeObject) }
func (b *TreeBuilder) BeginArray() error  { return b.add(&Node{Kind: NodeArray}) }
func (b *TreeBuilder) EndArray() error    { return b.end(NodeArray) }

func (b *TreeBuilder) Name(name string) error {
	n := len(b.stack)
	if n == 0 || b.stack[n-1].Kind != NodeObject || b.named {
		return ErrSinkState
	}
	b.pending, b.named = name, true
	return nil
}

func (b *TreeBuilder) String(s string) error {
	return b.add(&Node{Kind: NodeString, Text: s})
}
func (b *TreeBuilder) Number(n string) error {
	return b.add(&Node{Kind: NodeNumber, Text: n})
}
func (b *TreeBuilder) Bool(v bool) error { return b.add(&Node{Kind: NodeBool, Bool: v}) }
func (b *TreeBuilder) Null() error       { return b.add(&Node{Kind: NodeNull}) }

// Root returns the completed document and resets the builder.
func (b *TreeBuilder) Root() (*Node, error) {
	if b.root == nil || len(b.stack) > 0 {
		return nil, ErrSinkState
	}
	n := b.root
	b.root = nil
	return n, nil
}

// ValueTokens flattens a decoded value into a token sequence. It accepts the
// shapes produced by generic decoders: maps with string or scalar keys, slices,
// strings, booleans, nil, the Go numeric kinds, json.Number, big integers,
// byte strings (emitted as base64 strings) and times (emitted as RFC 3339).
// Map keys are emitted in sorted order since the source order is lost.
func ValueTokens(dst []eng.Token, v any) ([]eng.Token, error) {
	switch x := v.(type) {
	case nil:
		return append(dst, eng.Token{Kind: eng.KindNull, Offset: -1}), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		return objectTokens(dst, keys, func(k string) any { return x[k] })
	case map[any]any:
		byName := make(map[string]any, len(x))
		for k, e := range x {
			name, err := keyString(k)
			if err != nil {
				return nil, err
			}
			if _, dup := byName[name]; dup {
				return nil, fmt.Errorf("stream: duplicate map key %q", name)
			}
			byName[name] = e
		}
		return ValueTokens(dst, byName)
	case []any:
		dst = append(dst, eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		for _, e := range x {
			var err error
			if dst, err = ValueTokens(dst, e); err != nil {
				return nil, err
			}
		}
		return append(dst, eng.Token{Kind: eng.KindEndArray, Offset: -1}), nil
	case string:
		return append(dst, eng.Token{Kind: eng.KindString, String: x, Offset: -1}), nil
	case []byte:
		return append(dst, eng.Token{Kind: eng.KindString, String: base64.StdEncoding.EncodeToString(x), Offset: -1}), nil
	case time.Time:
		return append(dst, eng.Token{Kind: eng.KindString, String: x.UTC().Format(time.RFC3339Nano), Offset: -1}), nil
	case bool:
		return append(dst, eng.Token{Kind: eng.KindBool, Bool: x, Offset: -1}), nil
	}
	lit, err := numberLiteral(v)
	if err != nil {
		return nil, err
	}
	return append(dst, eng.Token{Kind: eng.KindNumber, Number: lit, Offset: -1}), nil
}

func objectTokens(dst []eng.Token, keys []string, get func(string) any) ([]eng.Token, error) {
	slices.Sort(keys)
	dst = append(dst, eng.Token{Kind: eng.KindBeginObject, Offset: -1})
	for _, k := range keys {
		dst = append(dst, eng.Token{Kind: eng.KindKey, String: k, Offset: -1})
		var err error
		if dst, err = ValueTokens(dst, get(k)); err != nil {
			return nil, err
		}
	}
	return append(dst, eng.Token{Kind: eng.KindEndObject, Offset: -1}), nil
}

func keyString(k any) (string, error) {
	switch x := k.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	if lit, err := numberLiteral(k); err == nil {
		return lit, nil
	}
	return "", fmt.Errorf("stream: unsupported map key type %T", k)
}

func numberLiteral(v any) (string, error) {
	switch x := v.(type) {
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return FloatLiteral(float64(x), 32)
	case float64:
		return FloatLiteral(x, 64)
	case json.Number:
		return string(x), nil
	case big.Int:
		return x.String(), nil
	case *big.Int:
		return x.String(), nil
	}
	return "", fmt.Errorf("stream: unsupported value type %T", v)
}

// FloatLiteral formats f as a JSON number; NaN and infinities have none.
func FloatLiteral(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("stream: %v has no JSON representation", f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}
