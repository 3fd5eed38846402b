package gobind

import (
	"io"
	"sync"

	eng "github.com/reoring/gobind/internal/engine"
	jsonsrc "github.com/reoring/gobind/source/json"
)

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; codecs decide how to interpret it.
	Bool   bool
	Offset int64
}

// NumberMode dictates how numbers are materialized when a codec decodes into
// an untyped value.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // float64 (with potential precision loss).
	NumberJSONNumber                   // Preserve json.Number.
)

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	NumberMode() NumberMode
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is based on encoding/json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default encoding/json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) Source {
	return SourceFromEngine(jsonsrc.NewReader(r), NumberJSONNumber)
}
func (defaultJSONDriver) NewBytes(b []byte) Source {
	return SourceFromEngine(jsonsrc.NewBytes(b), NumberJSONNumber)
}
func (defaultJSONDriver) Name() string { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// SourceFromEngine wraps an engine.TokenSource as a gobind.Source.
func SourceFromEngine(inner eng.TokenSource, mode NumberMode) Source {
	return &engineSourceAdapter{inner: inner, numMode: mode}
}

// EngineTokenSource exposes the engine.TokenSource view of a Source.
func EngineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return &tokenSourceAdapter{inner: s}
}

// TokensSource replays a fixed token slice. Drivers whose underlying decoder
// materializes a whole document (YAML nodes, CBOR) emit through it.
func TokensSource(tokens []Token, mode NumberMode) Source {
	return &sliceSource{tokens: tokens, mode: mode}
}

type sliceSource struct {
	tokens []Token
	idx    int
	mode   NumberMode
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.idx >= len(s.tokens) {
		return Token{}, io.EOF
	}
	t := s.tokens[s.idx]
	s.idx++
	return t, nil
}
func (s *sliceSource) NumberMode() NumberMode { return s.mode }
func (s *sliceSource) Location() int64        { return -1 }

func enforce(s Source, opt DecodeOpt) Source {
	eo := eng.EnforceOptions{MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes}
	if !eo.Enabled() {
		return s
	}
	return SourceFromEngine(eng.WrapWithEnforcement(EngineTokenSource(s), eo), s.NumberMode())
}

type engineSourceAdapter struct {
	inner   eng.TokenSource
	numMode NumberMode
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token(t), nil
}
func (s *engineSourceAdapter) NumberMode() NumberMode { return s.numMode }
func (s *engineSourceAdapter) Location() int64        { return s.inner.Location() }

type tokenSourceAdapter struct{ inner Source }

func (a *tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token(t), nil
}

func (a *tokenSourceAdapter) Location() int64 { return a.inner.Location() }
