// Package yaml turns a YAML document into a gobind token source. Mapping key
// order is kept, aliases are expanded, and scalars are typed by their resolved
// tag, so any YAML document that has a JSON equivalent decodes like that JSON.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	gobind "github.com/reoring/gobind"
	str "github.com/reoring/gobind/internal/stream"
)

// MaxAliasDepth bounds alias chains; deeper chains are treated as malicious.
const MaxAliasDepth = 32

// MaxTokens bounds the expanded document so alias fan-out cannot blow up memory.
const MaxTokens = 1 << 22

var (
	// ErrAliasDepth is returned when alias expansion nests beyond MaxAliasDepth.
	ErrAliasDepth = errors.New("yaml: alias expansion too deep")
	// ErrTooLarge is returned when the expanded document exceeds MaxTokens.
	ErrTooLarge = errors.New("yaml: document too large after alias expansion")
)

// NewReader returns a Source reading the first YAML document from r. The
// document is parsed on the first NextToken call.
func NewReader(r io.Reader) gobind.Source { return &source{r: r} }

// NewBytes returns a Source over a YAML document held in memory.
func NewBytes(b []byte) gobind.Source { return NewReader(bytes.NewReader(b)) }

type source struct {
	r      io.Reader
	inner  gobind.Source
	err    error
	loaded bool
}

func (s *source) NextToken() (gobind.Token, error) {
	if !s.loaded {
		s.loaded = true
		s.inner, s.err = load(s.r)
	}
	if s.err != nil {
		return gobind.Token{}, s.err
	}
	return s.inner.NextToken()
}

func (s *source) NumberMode() gobind.NumberMode { return gobind.NumberJSONNumber }
func (s *source) Location() int64               { return -1 }

func load(r io.Reader) (gobind.Source, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	node := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, io.EOF
		}
		node = doc.Content[0]
	}
	var b builder
	if err := b.value(node, 0); err != nil {
		return nil, err
	}
	return gobind.TokensSource(b.tokens, gobind.NumberJSONNumber), nil
}

type builder struct{ tokens []gobind.Token }

func (b *builder) emit(t gobind.Token) {
	t.Offset = -1
	b.tokens = append(b.tokens, t)
}

func (b *builder) value(n *yaml.Node, aliases int) error {
	if len(b.tokens) > MaxTokens {
		return ErrTooLarge
	}
	switch n.Kind {
	case yaml.AliasNode:
		if aliases >= MaxAliasDepth {
			return ErrAliasDepth
		}
		return b.value(n.Alias, aliases+1)
	case yaml.MappingNode:
		b.emit(gobind.Token{Kind: gobind.TokenBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			for k.Kind == yaml.AliasNode {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("yaml: line %d: mapping key must be a scalar", k.Line)
			}
			b.emit(gobind.Token{Kind: gobind.TokenKey, String: k.Value})
			if err := b.value(n.Content[i+1], aliases); err != nil {
				return err
			}
		}
		b.emit(gobind.Token{Kind: gobind.TokenEndObject})
		return nil
	case yaml.SequenceNode:
		b.emit(gobind.Token{Kind: gobind.TokenBeginArray})
		for _, c := range n.Content {
			if err := b.value(c, aliases); err != nil {
				return err
			}
		}
		b.emit(gobind.Token{Kind: gobind.TokenEndArray})
		return nil
	case yaml.ScalarNode:
		return b.scalar(n)
	}
	return fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
}

func (b *builder) scalar(n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		b.emit(gobind.Token{Kind: gobind.TokenNull})
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return err
		}
		b.emit(gobind.Token{Kind: gobind.TokenBool, Bool: v})
	case "!!int":
		lit, err := intLiteral(n)
		if err != nil {
			return err
		}
		b.emit(gobind.Token{Kind: gobind.TokenNumber, Number: lit})
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		lit, err := str.FloatLiteral(f, 64)
		if err != nil {
			return fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		b.emit(gobind.Token{Kind: gobind.TokenNumber, Number: lit})
	default:
		// !!str, !!binary, !!timestamp and custom tags keep their text.
		b.emit(gobind.Token{Kind: gobind.TokenString, String: n.Value})
	}
	return nil
}

func intLiteral(n *yaml.Node) (string, error) {
	var i int64
	if err := n.Decode(&i); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	var u uint64
	if err := n.Decode(&u); err != nil {
		return "", err
	}
	return strconv.FormatUint(u, 10), nil
}
