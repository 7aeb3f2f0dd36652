// Package codectest provides a minimal STDF record reader for tests.
//
// The converter never decodes STDF; this package exists so tests can verify
// the byte stream the encoder produced.
package codectest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
)

// ErrTruncated is returned when a record or field runs past the end of the data
var ErrTruncated = errors.New("truncated stdf data")

// RawRecord is one record split out of a stream
type RawRecord struct {
	Length  uint16
	Type    uint8
	Subtype uint8
	Payload []byte
}

// Is reports whether the record has the given type and subtype
func (r RawRecord) Is(typ, sub uint8) bool {
	return r.Type == typ && r.Subtype == sub
}

// Split cuts a byte stream into records, checking every REC_LEN against the data
func Split(data []byte) ([]RawRecord, error) {
	var records []RawRecord
	for offset := 0; offset < len(data); {
		if len(data)-offset < codec.HeaderSize {
			return nil, fmt.Errorf("%w: header at offset %d", ErrTruncated, offset)
		}
		n := int(binary.LittleEndian.Uint16(data[offset:]))
		end := offset + codec.HeaderSize + n
		if end > len(data) {
			return nil, fmt.Errorf("%w: record at offset %d declares %d bytes", ErrTruncated, offset, n)
		}
		records = append(records, RawRecord{
			Length:  uint16(n),
			Type:    data[offset+2],
			Subtype: data[offset+3],
			Payload: data[offset+codec.HeaderSize : end],
		})
		offset = end
	}
	return records, nil
}

// Cursor reads fields sequentially from a payload. The first failure sticks;
// later reads return zero values and Err reports it.
type Cursor struct {
	buf []byte
	pos int
	err error
}

// NewCursor creates a cursor over payload
func NewCursor(payload []byte) *Cursor {
	return &Cursor{buf: payload}
}

// Err returns the first read failure
func (c *Cursor) Err() error { return c.err }

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Done reports whether the payload has been fully consumed
func (c *Cursor) Done() bool { return c.pos >= len(c.buf) }

func (c *Cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if c.Remaining() < n {
		c.err = fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, n, c.pos, c.Remaining())
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *Cursor) U1() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *Cursor) U2() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *Cursor) U4() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (c *Cursor) I1() int8 { return int8(c.U1()) }
func (c *Cursor) I2() int16 { return int16(c.U2()) }
func (c *Cursor) I4() int32 { return int32(c.U4()) }
func (c *Cursor) B1() uint8 { return c.U1() }
func (c *Cursor) C1() byte { return c.U1() }

func (c *Cursor) R4() float32 { return math.Float32frombits(c.U4()) }

func (c *Cursor) R8() float64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (c *Cursor) Cn() string { return string(c.Bn()) }

func (c *Cursor) Bn() []byte {
	n := int(c.U1())
	b := c.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Value decodes a scalar field of type t. Array types need a count; use Array.
func (c *Cursor) Value(t codec.FieldType) codec.Value {
	switch t {
	case codec.TypeU1:
		return codec.U1(c.U1())
	case codec.TypeU2:
		return codec.U2(c.U2())
	case codec.TypeU4:
		return codec.U4(c.U4())
	case codec.TypeI1:
		return codec.I1(c.I1())
	case codec.TypeI2:
		return codec.I2(c.I2())
	case codec.TypeI4:
		return codec.I4(c.I4())
	case codec.TypeR4:
		return codec.R4(c.R4())
	case codec.TypeR8:
		return codec.R8(c.R8())
	case codec.TypeB1:
		return codec.B1(c.B1())
	case codec.TypeC1:
		return codec.C1(c.C1())
	case codec.TypeCn:
		return codec.Cn(c.Cn())
	case codec.TypeBn:
		return codec.Bn(c.Bn())
	}
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s", codec.ErrUnknownType, t)
	}
	return codec.Absent(t)
}

// Array decodes n elements of array type t
func (c *Cursor) Array(t codec.FieldType, n int) codec.Value {
	switch t {
	case codec.TypeKxU1:
		v := make([]uint8, n)
		for i := range v {
			v[i] = c.U1()
		}
		return codec.KxU1(v)
	case codec.TypeKxU2:
		v := make([]uint16, n)
		for i := range v {
			v[i] = c.U2()
		}
		return codec.KxU2(v)
	case codec.TypeKxU4:
		v := make([]uint32, n)
		for i := range v {
			v[i] = c.U4()
		}
		return codec.KxU4(v)
	case codec.TypeKxR4:
		v := make([]float32, n)
		for i := range v {
			v[i] = c.R4()
		}
		return codec.KxR4(v)
	case codec.TypeKxCn:
		v := make([]string, n)
		for i := range v {
			v[i] = c.Cn()
		}
		return codec.KxCn(v)
	}
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s is not an array type", codec.ErrUnknownType, t)
	}
	return codec.Absent(t)
}

// ReadAll splits data and fails on the first malformed record
func ReadAll(r io.Reader) ([]RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Split(data)
}
