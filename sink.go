package gobind

import (
	"bufio"
	"errors"
	"io"

	j "github.com/goccy/go-json"
)

// Sink receives the token stream produced by encoders. Implementations exist
// for JSON (JSONWriter) and for YAML, CBOR and MessagePack under sink/.
type Sink interface {
	BeginObject() error
	EndObject() error
	BeginArray() error
	EndArray() error
	Name(name string) error
	String(s string) error
	Number(n string) error // n is a JSON number literal.
	Bool(b bool) error
	Null() error
}

var errSinkState = errors.New("gobind: sink call out of sequence")

// JSONWriter is a Sink writing compact JSON.
type JSONWriter struct {
	w     *bufio.Writer
	stack []jsonFrame
}

type jsonFrame struct {
	object    bool
	count     int
	afterName bool
}

// NewJSONWriter returns a JSONWriter on w. Call Flush when done.
func NewJSONWriter(w io.Writer) *JSONWriter { return &JSONWriter{w: bufio.NewWriter(w)} }

// Flush writes buffered output to the underlying writer.
func (jw *JSONWriter) Flush() error { return jw.w.Flush() }

func (jw *JSONWriter) beforeValue() error {
	n := len(jw.stack)
	if n == 0 {
		return nil
	}
	top := &jw.stack[n-1]
	if top.object {
		if !top.afterName {
			return errSinkState
		}
		top.afterName = false
		return nil
	}
	if top.count > 0 {
		if err := jw.w.WriteByte(','); err != nil {
			return err
		}
	}
	top.count++
	return nil
}

func (jw *JSONWriter) open(object bool, b byte) error {
	if err := jw.beforeValue(); err != nil {
		return err
	}
	jw.stack = append(jw.stack, jsonFrame{object: object})
	return jw.w.WriteByte(b)
}

func (jw *JSONWriter) close(object bool, b byte) error {
	n := len(jw.stack)
	if n == 0 || jw.stack[n-1].object != object || jw.stack[n-1].afterName {
		return errSinkState
	}
	jw.stack = jw.stack[:n-1]
	return jw.w.WriteByte(b)
}

func (jw *JSONWriter) BeginObject() error { return jw.open(true, '{') }
func (jw *JSONWriter) EndObject() error   { return jw.close(true, '}') }
func (jw *JSONWriter) BeginArray() error  { return jw.open(false, '[') }
func (jw *JSONWriter) EndArray() error    { return jw.close(false, ']') }

func (jw *JSONWriter) Name(name string) error {
	n := len(jw.stack)
	if n == 0 || !jw.stack[n-1].object || jw.stack[n-1].afterName {
		return errSinkState
	}
	top := &jw.stack[n-1]
	if top.count > 0 {
		if err := jw.w.WriteByte(','); err != nil {
			return err
		}
	}
	top.count++
	top.afterName = true
	if err := jw.quoted(name); err != nil {
		return err
	}
	return jw.w.WriteByte(':')
}

func (jw *JSONWriter) String(s string) error {
	if err := jw.beforeValue(); err != nil {
		return err
	}
	return jw.quoted(s)
}

func (jw *JSONWriter) Number(n string) error {
	if err := jw.beforeValue(); err != nil {
		return err
	}
	_, err := jw.w.WriteString(n)
	return err
}

func (jw *JSONWriter) Bool(b bool) error {
	if err := jw.beforeValue(); err != nil {
		return err
	}
	lit := "false"
	if b {
		lit = "true"
	}
	_, err := jw.w.WriteString(lit)
	return err
}

func (jw *JSONWriter) Null() error {
	if err := jw.beforeValue(); err != nil {
		return err
	}
	_, err := jw.w.WriteString("null")
	return err
}

func (jw *JSONWriter) quoted(s string) error {
	b, err := j.MarshalWithOption(s, j.DisableHTMLEscape())
	if err != nil {
		return err
	}
	_, err = jw.w.Write(b)
	return err
}
