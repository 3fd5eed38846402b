package stream

import (
	"io"

	eng "github.com/reoring/gobind/internal/engine"
)

// PreloadedSource is a subtree source that first returns a preloaded token
// (typically the first token of a value) and then continues to stream the
// remaining tokens for the same subtree from the underlying source. It stops
// after the subtree end is reached, returning io.EOF afterwards.
type PreloadedSource struct {
	inner       eng.TokenSource
	first       eng.Token
	depth       int
	done        bool
	firstServed bool
}

// NewPreloadedSource constructs a subtree source that will return the provided
// first token before consuming further tokens from inner. The subtree boundary
// is determined by matching container begin/end pairs starting from the first
// token.
func NewPreloadedSource(inner eng.TokenSource, first eng.Token) *PreloadedSource {
	return &PreloadedSource{inner: inner, first: first}
}

func (p *PreloadedSource) NextToken() (eng.Token, error) {
	if p.done {
		return eng.Token{}, io.EOF
	}
	if !p.firstServed {
		p.firstServed = true
		switch p.first.Kind {
		case eng.KindBeginObject, eng.KindBeginArray:
			p.depth++
		default:
			// primitives: single-token subtree
			p.done = true
		}
		return p.first, nil
	}

	tok, err := p.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	switch tok.Kind {
	case eng.KindBeginObject, eng.KindBeginArray:
		p.depth++
	case eng.KindEndObject, eng.KindEndArray:
		p.depth--
		if p.depth <= 0 {
			p.done = true
		}
	}
	return tok, nil
}

func (p *PreloadedSource) Location() int64 { return p.inner.Location() }

// Drain consumes the remainder of the subtree. An io.EOF from inner before the
// subtree closes is reported as io.ErrUnexpectedEOF.
func (p *PreloadedSource) Drain() error {
	for {
		_, err := p.NextToken()
		if err == io.EOF {
			if p.done {
				return nil
			}
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
}
