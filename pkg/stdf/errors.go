package stdf

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRecord is returned for a record type outside the catalogue
	ErrUnknownRecord = errors.New("record type not in catalogue")
	// ErrLayout is returned when a record's values do not match its spec length
	ErrLayout = errors.New("record layout mismatch")
	// ErrTypeMismatch is returned when a value's type differs from its field spec
	ErrTypeMismatch = errors.New("field type mismatch")
	// ErrMissingField is returned when a mandatory field is absent
	ErrMissingField = errors.New("mandatory field absent")
	// ErrUnencodableText is returned for text outside ISO-8859-1
	ErrUnencodableText = errors.New("text not representable in ISO-8859-1")
	// ErrInvalidValue is returned when a value cannot be converted to a field type
	ErrInvalidValue = errors.New("invalid field value")
)

// FieldError names the record and field a failure belongs to
type FieldError struct {
	Record string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Record, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
