package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldWidthOverflow is returned when a value does not fit its field width
	ErrFieldWidthOverflow = errors.New("field width overflow")
	// ErrTypeMismatch is returned when an array element has the wrong type
	ErrTypeMismatch = errors.New("field type mismatch")
	// ErrUnknownType is returned for values without a valid STDF type
	ErrUnknownType = errors.New("unknown field type")
)

// FieldError locates an encoding failure inside a record
type FieldError struct {
	Type    uint8 // record type code
	Subtype uint8 // record subtype code
	Index   int   // field position, -1 for record-level failures
	Err     error
}

func (e *FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("record %d/%d: %v", e.Type, e.Subtype, e.Err)
	}
	return fmt.Sprintf("record %d/%d field %d: %v", e.Type, e.Subtype, e.Index, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
