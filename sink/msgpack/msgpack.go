// Package msgpack provides a gobind Sink that writes MessagePack. Map and
// array headers need element counts, so the value is buffered until Flush.
package msgpack

import (
	"fmt"
	"io"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	gobind "github.com/reoring/gobind"
	str "github.com/reoring/gobind/internal/stream"
)

// Writer is a gobind.Sink producing one MessagePack value.
type Writer struct {
	str.TreeBuilder
	enc *msgpack.Encoder
}

var _ gobind.Sink = (*Writer)(nil)

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer { return &Writer{enc: msgpack.NewEncoder(w)} }

// Flush encodes the completed value. It fails if a container is still open.
func (m *Writer) Flush() error {
	root, err := m.Root()
	if err != nil {
		return err
	}
	return m.encode(root)
}

func (m *Writer) encode(n *str.Node) error {
	switch n.Kind {
	case str.NodeObject:
		if err := m.enc.EncodeMapLen(len(n.Keys)); err != nil {
			return err
		}
		for i, k := range n.Keys {
			if err := m.enc.EncodeString(k); err != nil {
				return err
			}
			if err := m.encode(n.Children[i]); err != nil {
				return err
			}
		}
		return nil
	case str.NodeArray:
		if err := m.enc.EncodeArrayLen(len(n.Children)); err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := m.encode(c); err != nil {
				return err
			}
		}
		return nil
	case str.NodeString:
		return m.enc.EncodeString(n.Text)
	case str.NodeNumber:
		return m.number(n.Text)
	case str.NodeBool:
		return m.enc.EncodeBool(n.Bool)
	}
	return m.enc.EncodeNil()
}

func (m *Writer) number(lit string) error {
	if str.IsIntegerLiteral(lit) {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return m.enc.EncodeInt(i)
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return m.enc.EncodeUint(u)
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return fmt.Errorf("msgpack: invalid number %q: %w", lit, err)
	}
	return m.enc.EncodeFloat64(f)
}
