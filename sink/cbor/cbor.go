// Package cbor provides a streaming gobind Sink that writes CBOR. Objects and
// arrays are emitted as indefinite-length items, so nothing is buffered beyond
// the output writer.
package cbor

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	gobind "github.com/reoring/gobind"
	str "github.com/reoring/gobind/internal/stream"
)

var encMode cbor.EncMode

func init() {
	eo := cbor.PreferredUnsortedEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	var err error
	encMode, err = eo.EncMode()
	if err != nil {
		panic("cbor: encoder initialization failed: " + err.Error())
	}
}

type frame struct {
	object bool
	named  bool
}

// Writer is a gobind.Sink producing CBOR. Call Flush when done.
type Writer struct {
	buf   *bufio.Writer
	enc   *cbor.Encoder
	stack []frame
	done  bool
}

var _ gobind.Sink = (*Writer)(nil)

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	return &Writer{buf: buf, enc: encMode.NewEncoder(buf)}
}

// Flush writes buffered output. It fails if a container is still open.
func (c *Writer) Flush() error {
	if len(c.stack) > 0 {
		return str.ErrSinkState
	}
	return c.buf.Flush()
}

func (c *Writer) beforeValue() error {
	n := len(c.stack)
	if n == 0 {
		if c.done {
			return str.ErrSinkState
		}
		c.done = true
		return nil
	}
	if top := &c.stack[n-1]; top.object {
		if !top.named {
			return str.ErrSinkState
		}
		top.named = false
	}
	return nil
}

func (c *Writer) BeginObject() error {
	if err := c.beforeValue(); err != nil {
		return err
	}
	c.stack = append(c.stack, frame{object: true})
	return c.enc.StartIndefiniteMap()
}

func (c *Writer) EndObject() error { return c.end(true) }

func (c *Writer) BeginArray() error {
	if err := c.beforeValue(); err != nil {
		return err
	}
	c.stack = append(c.stack, frame{})
	return c.enc.StartIndefiniteArray()
}

func (c *Writer) EndArray() error { return c.end(false) }

func (c *Writer) end(object bool) error {
	n := len(c.stack)
	if n == 0 || c.stack[n-1].object != object || c.stack[n-1].named {
		return str.ErrSinkState
	}
	c.stack = c.stack[:n-1]
	return c.enc.EndIndefinite()
}

func (c *Writer) Name(name string) error {
	n := len(c.stack)
	if n == 0 || !c.stack[n-1].object || c.stack[n-1].named {
		return str.ErrSinkState
	}
	c.stack[n-1].named = true
	return c.enc.Encode(name)
}

func (c *Writer) String(s string) error { return c.scalar(s) }
func (c *Writer) Bool(b bool) error     { return c.scalar(b) }
func (c *Writer) Null() error           { return c.scalar(nil) }

// Number writes integers as CBOR integers (bignums past 64 bits) and
// everything else as a float.
func (c *Writer) Number(n string) error {
	if str.IsIntegerLiteral(n) {
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return c.scalar(i)
		}
		if u, err := strconv.ParseUint(n, 10, 64); err == nil {
			return c.scalar(u)
		}
		if b, ok := new(big.Int).SetString(n, 10); ok {
			return c.scalar(b)
		}
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return fmt.Errorf("cbor: invalid number %q: %w", n, err)
	}
	return c.scalar(f)
}

func (c *Writer) scalar(v any) error {
	if err := c.beforeValue(); err != nil {
		return err
	}
	return c.enc.Encode(v)
}
