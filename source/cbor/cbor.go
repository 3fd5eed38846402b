// Package cbor adapts CBOR input (RFC 8949) into a gobind token source.
//
// The document is decoded into a generic value tree first, so map key order is
// not preserved: keys are replayed sorted. Byte strings surface as base64
// strings and tagged times as RFC 3339 strings, matching what the built-in
// []byte and time.Time codecs accept.
package cbor

import (
	"bytes"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	gobind "github.com/reoring/gobind"
	eng "github.com/reoring/gobind/internal/engine"
	str "github.com/reoring/gobind/internal/stream"
)

// decMode decodes untyped maps as map[string]any and rejects duplicate keys,
// which the binding layer would otherwise report as duplicate values.
var decMode cbor.DecMode

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 256,
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

// NewReader returns a Source over the first CBOR data item in r. Decoding
// happens on the first NextToken call.
func NewReader(r io.Reader) gobind.Source {
	return &source{dec: decMode.NewDecoder(r)}
}

// NewBytes returns a Source over an in-memory CBOR data item.
func NewBytes(b []byte) gobind.Source { return NewReader(bytes.NewReader(b)) }

type source struct {
	dec    *cbor.Decoder
	tokens []eng.Token
	idx    int
	err    error
	loaded bool
}

func (s *source) load() {
	s.loaded = true
	var v any
	if err := s.dec.Decode(&v); err != nil {
		s.err = err
		return
	}
	s.tokens, s.err = str.ValueTokens(nil, v)
}

func (s *source) NextToken() (gobind.Token, error) {
	if !s.loaded {
		s.load()
	}
	if s.err != nil {
		return gobind.Token{}, s.err
	}
	if s.idx >= len(s.tokens) {
		// Anything after the first item is trailing data.
		var v any
		if err := s.dec.Decode(&v); err != nil {
			return gobind.Token{}, err
		}
		more, err := str.ValueTokens(s.tokens[:0], v)
		if err != nil {
			return gobind.Token{}, err
		}
		s.tokens, s.idx = more, 0
	}
	t := s.tokens[s.idx]
	s.idx++
	return gobind.Token(t), nil
}

func (s *source) NumberMode() gobind.NumberMode { return gobind.NumberJSONNumber }

func (s *source) Location() int64 { return int64(s.dec.NumBytesRead()) }
