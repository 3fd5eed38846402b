package gobind

import (
	"errors"
	"io"
	"strconv"
	"strings"

	eng "github.com/reoring/gobind/internal/engine"
	str "github.com/reoring/gobind/internal/stream"
)

// Reader pulls tokens from a Source with one token of lookahead and tracks the
// JSON path of the value being read. Codecs receive a Reader; every error it
// returns is an Issues value carrying the current path.
type Reader struct {
	src    Source
	peeked bool
	next   Token
	stack  []pathSeg
}

type pathSeg struct {
	array bool
	name  string
	named bool
	index int
}

// NewReader wraps src.
func NewReader(src Source) *Reader { return &Reader{src: src} }

// NumberMode reports the number mode of the underlying source.
func (r *Reader) NumberMode() NumberMode { return r.src.NumberMode() }

// Peek returns the next token without consuming it.
func (r *Reader) Peek() (Token, error) {
	if r.peeked {
		return r.next, nil
	}
	tok, err := r.src.NextToken()
	if err != nil {
		return Token{}, r.sourceError(err)
	}
	r.next = tok
	r.peeked = true
	return tok, nil
}

// Next consumes and returns the next token.
func (r *Reader) Next() (Token, error) {
	tok, err := r.Peek()
	if err != nil {
		return Token{}, err
	}
	r.peeked = false
	return tok, nil
}

// Path renders the current location, e.g. "$", "$.a" or "$.items[2]".
func (r *Reader) Path() string {
	if len(r.stack) == 0 {
		return "$"
	}
	b := strings.Builder{}
	b.WriteByte('$')
	for _, s := range r.stack {
		switch {
		case s.array && s.index >= 0:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case !s.array && s.named:
			b.WriteByte('.')
			b.WriteString(s.name)
		}
	}
	return b.String()
}

// BeginObject consumes an object start token.
func (r *Reader) BeginObject() error {
	tok, err := r.Next()
	if err != nil {
		return err
	}
	if tok.Kind != TokenBeginObject {
		return r.Unexpected(TokenBeginObject, tok)
	}
	r.stack = append(r.stack, pathSeg{})
	return nil
}

// NextName reads the next key of the current object. ok is false once the
// object end has been consumed.
func (r *Reader) NextName() (name string, ok bool, err error) {
	tok, err := r.Next()
	if err != nil {
		return "", false, err
	}
	switch tok.Kind {
	case TokenKey:
		if n := len(r.stack); n > 0 {
			r.stack[n-1].name = tok.String
			r.stack[n-1].named = true
		}
		return tok.String, true, nil
	case TokenEndObject:
		r.pop()
		return "", false, nil
	default:
		return "", false, r.Unexpected(TokenKey, tok)
	}
}

// BeginArray consumes an array start token.
func (r *Reader) BeginArray() error {
	tok, err := r.Next()
	if err != nil {
		return err
	}
	if tok.Kind != TokenBeginArray {
		return r.Unexpected(TokenBeginArray, tok)
	}
	r.stack = append(r.stack, pathSeg{array: true, index: -1})
	return nil
}

// NextElement advances to the next array element. ok is false once the array
// end has been consumed.
func (r *Reader) NextElement() (ok bool, err error) {
	tok, err := r.Peek()
	if err != nil {
		return false, err
	}
	if tok.Kind == TokenEndArray {
		r.peeked = false
		r.pop()
		return false, nil
	}
	if n := len(r.stack); n > 0 {
		r.stack[n-1].index++
	}
	return true, nil
}

func (r *Reader) pop() {
	if n := len(r.stack); n > 0 {
		r.stack = r.stack[:n-1]
	}
}

// Skip consumes one complete value, however deeply nested, without decoding it.
func (r *Reader) Skip() error {
	tok, err := r.Next()
	if err != nil {
		return err
	}
	switch tok.Kind {
	case TokenKey, TokenEndObject, TokenEndArray:
		return r.unexpected("expected a value but was "+tok.Kind.String(), tok)
	}
	if err := str.NewPreloadedSource(readerTokens{r}, eng.Token(tok)).Drain(); err != nil {
		return r.sourceError(err)
	}
	return nil
}

// End verifies that the source holds no further tokens.
func (r *Reader) End() error {
	if r.peeked {
		return r.unexpected("expected end of input but was "+r.next.Kind.String(), r.next)
	}
	tok, err := r.src.NextToken()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return r.sourceError(err)
	}
	return r.unexpected("expected end of input but was "+tok.Kind.String(), tok)
}

// ReadAny decodes one value into an untyped tree (map[string]any, []any,
// string, bool, nil and numbers according to NumberMode).
func (r *Reader) ReadAny() (any, error) {
	tok, err := r.Next()
	if err != nil {
		return nil, err
	}
	conv := eng.JSONNumber
	if r.NumberMode() == NumberFloat64 {
		conv = eng.Float64
	}
	v, err := eng.DecodeAny(str.NewPreloadedSource(readerTokens{r}, eng.Token(tok)), conv)
	if err != nil {
		return nil, r.sourceError(err)
	}
	return v, nil
}

// Unexpected builds the issue for a token of the wrong kind.
func (r *Reader) Unexpected(want TokenKind, got Token) error {
	return r.unexpected("expected "+want.String()+" but was "+got.Kind.String(), got)
}

func (r *Reader) unexpected(hint string, got Token) error {
	it := newIssue(CodeUnexpectedToken, r.Path(), "")
	it.Hint = hint
	it.Message += ": " + hint
	it.Offset = got.Offset
	return Issues{it}
}

func (r *Reader) sourceError(err error) error {
	if _, ok := AsIssues(err); ok {
		return err
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		it := newIssue(ie.Code, r.Path(), "")
		it.Hint = ie.Message
		it.Message += ": " + ie.Message
		it.Offset = r.src.Location()
		return Issues{it}
	}
	code, hint := CodeParseError, err.Error()
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, eng.ErrMalformed) {
		code, hint = CodeUnexpectedToken, "unexpected end of input"
		if errors.Is(err, eng.ErrMalformed) {
			hint = "malformed input"
		}
	}
	it := newIssue(code, r.Path(), "")
	it.Hint = hint
	it.Message += ": " + hint
	it.Cause = err
	it.Offset = r.src.Location()
	return Issues{it}
}

// readerTokens exposes the Reader as an engine token source so internal
// helpers can drain or materialize subtrees.
type readerTokens struct{ r *Reader }

func (a readerTokens) NextToken() (eng.Token, error) {
	t, err := a.r.Next()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token(t), nil
}

func (a readerTokens) Location() int64 { return a.r.src.Location() }
