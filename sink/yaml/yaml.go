// Package yaml provides a gobind Sink that renders YAML. The document is
// buffered and written on Flush, with object keys in encoding order.
package yaml

import (
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	gobind "github.com/reoring/gobind"
	str "github.com/reoring/gobind/internal/stream"
)

// Writer is a gobind.Sink producing a single YAML document.
type Writer struct {
	str.TreeBuilder
	w      io.Writer
	indent int
}

var _ gobind.Sink = (*Writer)(nil)

// NewWriter returns a Writer on w using two-space indentation.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w, indent: 2} }

// Flush writes the completed document. It fails if a container is still open.
func (y *Writer) Flush() error {
	root, err := y.Root()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(y.indent)
	if err := enc.Encode(toNode(root)); err != nil {
		return err
	}
	return enc.Close()
}

func toNode(n *str.Node) *yaml.Node {
	switch n.Kind {
	case str.NodeObject:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, k := range n.Keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toNode(n.Children[i]))
		}
		return out
	case str.NodeArray:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, c := range n.Children {
			out.Content = append(out.Content, toNode(c))
		}
		return out
	case str.NodeString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Text}
	case str.NodeNumber:
		tag := "!!float"
		if str.IsIntegerLiteral(n.Text) {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.Text}
	case str.NodeBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(n.Bool)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
