package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FieldType identifies an STDF v4 data type
type FieldType uint8

const (
	TypeU1 FieldType = iota + 1 // 1-byte unsigned integer
	TypeU2                      // 2-byte unsigned integer
	TypeU4                      // 4-byte unsigned integer
	TypeI1                      // 1-byte signed integer
	TypeI2                      // 2-byte signed integer
	TypeI4                      // 4-byte signed integer
	TypeR4                      // 4-byte IEEE-754 float
	TypeR8                      // 8-byte IEEE-754 float
	TypeB1                      // 1-byte bit field
	TypeC1                      // single character
	TypeCn                      // length-prefixed character string
	TypeBn                      // length-prefixed byte string
	TypeKxU1                    // array of U1
	TypeKxU2                    // array of U2
	TypeKxU4                    // array of U4
	TypeKxR4                    // array of R4
	TypeKxCn                    // array of Cn
)

// MaxShortLength is the largest length a 1-byte length prefix can describe
const MaxShortLength = 255

var typeNames = map[FieldType]string{
	TypeU1:   "U1",
	TypeU2:   "U2",
	TypeU4:   "U4",
	TypeI1:   "I1",
	TypeI2:   "I2",
	TypeI4:   "I4",
	TypeR4:   "R4",
	TypeR8:   "R8",
	TypeB1:   "B1",
	TypeC1:   "C1",
	TypeCn:   "Cn",
	TypeBn:   "Bn",
	TypeKxU1: "kxU1",
	TypeKxU2: "kxU2",
	TypeKxU4: "kxU4",
	TypeKxR4: "kxR4",
	TypeKxCn: "kxCn",
}

func (t FieldType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

// IsArray reports whether t is a homogeneous array type
func (t FieldType) IsArray() bool {
	return t >= TypeKxU1 && t <= TypeKxCn
}

// Elem returns the element type of an array type, or t itself for scalars
func (t FieldType) Elem() FieldType {
	switch t {
	case TypeKxU1:
		return TypeU1
	case TypeKxU2:
		return TypeU2
	case TypeKxU4:
		return TypeU4
	case TypeKxR4:
		return TypeR4
	case TypeKxCn:
		return TypeCn
	}
	return t
}

// MaxSize returns the largest encoded width of a scalar field.
// Arrays have no fixed bound and report -1.
func (t FieldType) MaxSize() int {
	switch t {
	case TypeU1, TypeI1, TypeB1, TypeC1:
		return 1
	case TypeU2, TypeI2:
		return 2
	case TypeU4, TypeI4, TypeR4:
		return 4
	case TypeR8:
		return 8
	case TypeCn, TypeBn:
		return 1 + MaxShortLength
	}
	return -1
}

// Value is a single typed field value. The zero Value is invalid; use the
// constructors below or Absent.
type Value struct {
	typ     FieldType
	present bool
	u       uint64
	i       int64
	f       float64
	s       string
	b       []byte
	elems   []Value
}

// Absent returns a missing value of type t
func Absent(t FieldType) Value { return Value{typ: t} }

// Missing returns the present value STDF readers treat as "no data" for t
func Missing(t FieldType) Value {
	switch t {
	case TypeC1:
		return C1(' ')
	case TypeCn:
		return Cn("")
	case TypeBn:
		return Bn(nil)
	}
	// zero numerics and empty arrays
	return Value{typ: t, present: true}
}

func U1(v uint8) Value { return Value{typ: TypeU1, present: true, u: uint64(v)} }
func U2(v uint16) Value { return Value{typ: TypeU2, present: true, u: uint64(v)} }
func U4(v uint32) Value { return Value{typ: TypeU4, present: true, u: uint64(v)} }
func I1(v int8) Value { return Value{typ: TypeI1, present: true, i: int64(v)} }
func I2(v int16) Value { return Value{typ: TypeI2, present: true, i: int64(v)} }
func I4(v int32) Value { return Value{typ: TypeI4, present: true, i: int64(v)} }
func R4(v float32) Value { return Value{typ: TypeR4, present: true, f: float64(v)} }
func R8(v float64) Value { return Value{typ: TypeR8, present: true, f: v} }
func B1(v uint8) Value { return Value{typ: TypeB1, present: true, u: uint64(v)} }
func C1(v byte) Value { return Value{typ: TypeC1, present: true, u: uint64(v)} }
func Cn(v string) Value { return Value{typ: TypeCn, present: true, s: v} }
func Bn(v []byte) Value { return Value{typ: TypeBn, present: true, b: v} }

func KxU1(v []uint8) Value {
	elems := make([]Value, len(v))
	for i, e := range v {
		elems[i] = U1(e)
	}
	return Value{typ: TypeKxU1, present: true, elems: elems}
}

func KxU2(v []uint16) Value {
	elems := make([]Value, len(v))
	for i, e := range v {
		elems[i] = U2(e)
	}
	return Value{typ: TypeKxU2, present: true, elems: elems}
}

func KxU4(v []uint32) Value {
	elems := make([]Value, len(v))
	for i, e := range v {
		elems[i] = U4(e)
	}
	return Value{typ: TypeKxU4, present: true, elems: elems}
}

func KxR4(v []float32) Value {
	elems := make([]Value, len(v))
	for i, e := range v {
		elems[i] = R4(e)
	}
	return Value{typ: TypeKxR4, present: true, elems: elems}
}

func KxCn(v []string) Value {
	elems := make([]Value, len(v))
	for i, e := range v {
		elems[i] = Cn(e)
	}
	return Value{typ: TypeKxCn, present: true, elems: elems}
}

// Type returns the STDF type of the value
func (v Value) Type() FieldType { return v.typ }

// Present reports whether the value carries data
func (v Value) Present() bool { return v.present }

func (v Value) Uint() uint64 { return v.u }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string { return v.s }
func (v Value) Bytes() []byte { return v.b }
func (v Value) Elems() []Value { return v.elems }
func (v Value) Char() byte { return byte(v.u) }
func (v Value) Len() int { return len(v.elems) }
func (v Value) String() string { return fmt.Sprintf("%s(%s)", v.typ, v.describe()) }

func (v Value) describe() string {
	if !v.present {
		return "absent"
	}
	switch v.typ {
	case TypeU1, TypeU2, TypeU4, TypeB1:
		return fmt.Sprintf("%d", v.u)
	case TypeI1, TypeI2, TypeI4:
		return fmt.Sprintf("%d", v.i)
	case TypeR4, TypeR8:
		return fmt.Sprintf("%g", v.f)
	case TypeC1:
		return fmt.Sprintf("%q", byte(v.u))
	case TypeCn:
		return fmt.Sprintf("%q", v.s)
	case TypeBn:
		return fmt.Sprintf("%x", v.b)
	}
	return fmt.Sprintf("%d elems", len(v.elems))
}

// AppendValue appends the little-endian encoding of v to dst.
// Absent values encode as the type's missing value.
func AppendValue(dst []byte, v Value) ([]byte, error) {
	if !v.present {
		return appendMissing(dst, v.typ)
	}

	switch v.typ {
	case TypeU1, TypeB1, TypeC1:
		return append(dst, byte(v.u)), nil
	case TypeU2:
		return binary.LittleEndian.AppendUint16(dst, uint16(v.u)), nil
	case TypeU4:
		return binary.LittleEndian.AppendUint32(dst, uint32(v.u)), nil
	case TypeI1:
		return append(dst, byte(int8(v.i))), nil
	case TypeI2:
		return binary.LittleEndian.AppendUint16(dst, uint16(int16(v.i))), nil
	case TypeI4:
		return binary.LittleEndian.AppendUint32(dst, uint32(int32(v.i))), nil
	case TypeR4:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v.f))), nil
	case TypeR8:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v.f)), nil
	case TypeCn:
		if len(v.s) > MaxShortLength {
			return dst, fmt.Errorf("%w: %s length %d exceeds %d", ErrFieldWidthOverflow, v.typ, len(v.s), MaxShortLength)
		}
		dst = append(dst, byte(len(v.s)))
		return append(dst, v.s...), nil
	case TypeBn:
		if len(v.b) > MaxShortLength {
			return dst, fmt.Errorf("%w: %s length %d exceeds %d", ErrFieldWidthOverflow, v.typ, len(v.b), MaxShortLength)
		}
		dst = append(dst, byte(len(v.b)))
		return append(dst, v.b...), nil
	}

	if v.typ.IsArray() {
		var err error
		for i, e := range v.elems {
			if e.typ != v.typ.Elem() {
				return dst, fmt.Errorf("%w: element %d is %s, want %s", ErrTypeMismatch, i, e.typ, v.typ.Elem())
			}
			if dst, err = AppendValue(dst, e); err != nil {
				return dst, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return dst, nil
	}

	return dst, fmt.Errorf("%w: %s", ErrUnknownType, v.typ)
}

func appendMissing(dst []byte, t FieldType) ([]byte, error) {
	switch t {
	case TypeC1:
		return append(dst, ' '), nil
	case TypeCn, TypeBn:
		return append(dst, 0), nil
	}
	if t.IsArray() {
		return dst, nil
	}
	size := t.MaxSize()
	if size < 0 {
		return dst, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	for i := 0; i < size; i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}
