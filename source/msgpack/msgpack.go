// Package msgpack streams MessagePack input as gobind tokens. Map and array
// headers carry their lengths, so containers are walked in place without
// buffering and key order is kept.
package msgpack

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	gobind "github.com/reoring/gobind"
	str "github.com/reoring/gobind/internal/stream"
)

type frame struct {
	object    bool
	remaining int
	wantKey   bool
}

type source struct {
	dec   *msgpack.Decoder
	cr    *countingReader
	stack []frame
}

// NewReader returns a Source reading MessagePack values from r.
func NewReader(r io.Reader) gobind.Source {
	cr := &countingReader{r: r}
	return &source{dec: msgpack.NewDecoder(cr), cr: cr}
}

// NewBytes returns a Source over an in-memory MessagePack value.
func NewBytes(b []byte) gobind.Source { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (gobind.Token, error) {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.remaining == 0 && (!top.object || top.wantKey) {
			s.stack = s.stack[:n-1]
			if top.object {
				return s.token(gobind.TokenEndObject), nil
			}
			return s.token(gobind.TokenEndArray), nil
		}
		if top.object && top.wantKey {
			top.wantKey = false
			key, err := s.key()
			if err != nil {
				return gobind.Token{}, err
			}
			t := s.token(gobind.TokenKey)
			t.String = key
			return t, nil
		}
		top.remaining--
		if top.object {
			top.wantKey = true
		}
	}
	return s.value()
}

func (s *source) key() (string, error) {
	c, err := s.dec.PeekCode()
	if err != nil {
		return "", unexpectedEOF(err)
	}
	if msgpcode.IsString(c) {
		return s.dec.DecodeString()
	}
	v, err := s.dec.DecodeInterfaceLoose()
	if err != nil {
		return "", err
	}
	switch k := v.(type) {
	case int64:
		return strconv.FormatInt(k, 10), nil
	case uint64:
		return strconv.FormatUint(k, 10), nil
	case bool:
		return strconv.FormatBool(k), nil
	case []byte:
		return string(k), nil
	}
	return "", fmt.Errorf("msgpack: unsupported map key type %T", v)
}

func (s *source) value() (gobind.Token, error) {
	c, err := s.dec.PeekCode()
	if err != nil {
		if len(s.stack) > 0 {
			return gobind.Token{}, unexpectedEOF(err)
		}
		return gobind.Token{}, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := s.dec.DecodeMapLen()
		if err != nil {
			return gobind.Token{}, err
		}
		s.stack = append(s.stack, frame{object: true, remaining: n, wantKey: true})
		return s.token(gobind.TokenBeginObject), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := s.dec.DecodeArrayLen()
		if err != nil {
			return gobind.Token{}, err
		}
		s.stack = append(s.stack, frame{remaining: n})
		return s.token(gobind.TokenBeginArray), nil
	}
	v, err := s.dec.DecodeInterfaceLoose()
	if err != nil {
		return gobind.Token{}, unexpectedEOF(err)
	}
	return s.scalar(v)
}

func (s *source) scalar(v any) (gobind.Token, error) {
	switch x := v.(type) {
	case nil:
		return s.token(gobind.TokenNull), nil
	case bool:
		t := s.token(gobind.TokenBool)
		t.Bool = x
		return t, nil
	case string:
		t := s.token(gobind.TokenString)
		t.String = x
		return t, nil
	case []byte:
		t := s.token(gobind.TokenString)
		t.String = base64.StdEncoding.EncodeToString(x)
		return t, nil
	case time.Time:
		t := s.token(gobind.TokenString)
		t.String = x.UTC().Format(time.RFC3339Nano)
		return t, nil
	case int64:
		t := s.token(gobind.TokenNumber)
		t.Number = strconv.FormatInt(x, 10)
		return t, nil
	case uint64:
		t := s.token(gobind.TokenNumber)
		t.Number = strconv.FormatUint(x, 10)
		return t, nil
	case float32:
		return s.float(float64(x), 32)
	case float64:
		return s.float(x, 64)
	}
	return gobind.Token{}, fmt.Errorf("msgpack: unsupported value type %T", v)
}

func (s *source) float(f float64, bits int) (gobind.Token, error) {
	lit, err := str.FloatLiteral(f, bits)
	if err != nil {
		return gobind.Token{}, err
	}
	t := s.token(gobind.TokenNumber)
	t.Number = lit
	return t, nil
}

func (s *source) token(k gobind.TokenKind) gobind.Token {
	return gobind.Token{Kind: k, Offset: s.cr.n}
}

func (s *source) NumberMode() gobind.NumberMode { return gobind.NumberJSONNumber }
func (s *source) Location() int64               { return s.cr.n }

// unexpectedEOF marks input that ends inside a container.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// countingReader tracks bytes handed to the decoder. The decoder buffers, so
// the count is an upper bound on the consumed offset.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
