package codec

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the size of the record header: REC_LEN(2) + REC_TYP(1) + REC_SUB(1)
	HeaderSize = 4
	// MaxPayload is the largest payload REC_LEN can describe
	MaxPayload = 0xFFFF
)

// Record is an abstract STDF record: a type/subtype pair and its ordered fields
type Record struct {
	Type    uint8   // REC_TYP
	Subtype uint8   // REC_SUB
	Fields  []Value // ordered field values
}

// RecordCodec handles serialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record into its binary form
// Format: [REC_LEN(2)][REC_TYP(1)][REC_SUB(1)][payload]
//
// The trailing run of absent fields is omitted from the payload. Nothing is
// returned on failure, so callers never see a partial record.
func (c *RecordCodec) Encode(r Record) ([]byte, error) {
	fields := r.Fields[:r.presentLen()]

	buf := make([]byte, HeaderSize, HeaderSize+estimatePayload(fields))
	var err error
	for i, v := range fields {
		if buf, err = AppendValue(buf, v); err != nil {
			return nil, &FieldError{Type: r.Type, Subtype: r.Subtype, Index: i, Err: err}
		}
	}

	payload := len(buf) - HeaderSize
	if payload > MaxPayload {
		return nil, &FieldError{
			Type:    r.Type,
			Subtype: r.Subtype,
			Index:   -1,
			Err:     fmt.Errorf("%w: payload %d bytes exceeds %d", ErrFieldWidthOverflow, payload, MaxPayload),
		}
	}

	binary.LittleEndian.PutUint16(buf[0:], uint16(payload))
	buf[2] = r.Type
	buf[3] = r.Subtype

	return buf, nil
}

// presentLen returns the number of fields up to and including the last present one
func (r Record) presentLen() int {
	n := len(r.Fields)
	for n > 0 && !r.Fields[n-1].Present() {
		n--
	}
	return n
}

func estimatePayload(fields []Value) int {
	size := 0
	for _, v := range fields {
		switch v.typ {
		case TypeCn:
			size += 1 + len(v.s)
		case TypeBn:
			size += 1 + len(v.b)
		default:
			if n := v.typ.MaxSize(); n > 0 {
				size += n
			}
		}
	}
	return size
}
