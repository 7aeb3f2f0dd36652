package stdf

import (
	"errors"
	"fmt"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
)

// Abstract checks a typed record against its spec and returns the codec form.
//
// Text is converted to ISO-8859-1. In the optional tail, a trailing run of
// empty text, empty byte strings and absent values becomes absent so the
// encoder omits it; any absent value still followed by a present one is
// replaced with the type's missing value.
func Abstract(rec Record) (codec.Record, error) {
	spec := rec.Spec()
	if known, ok := Lookup(spec.Type, spec.Subtype); !ok || known != spec {
		return codec.Record{}, &FieldError{
			Record: spec.Name,
			Err:    fmt.Errorf("%w: %d/%d", ErrUnknownRecord, spec.Type, spec.Subtype),
		}
	}
	values := rec.Values()
	if len(values) != len(spec.Fields) {
		return codec.Record{}, &FieldError{
			Record: spec.Name,
			Err:    fmt.Errorf("%w: %d values for %d fields", ErrLayout, len(values), len(spec.Fields)),
		}
	}

	fields := make([]codec.Value, len(values))
	for i, v := range values {
		f := spec.Fields[i]
		if v.Type() != f.Type {
			return codec.Record{}, &FieldError{
				Record: spec.Name,
				Field:  f.Name,
				Err:    fmt.Errorf("%w: got %s, want %s", ErrTypeMismatch, v.Type(), f.Type),
			}
		}
		if !v.Present() && i < spec.OptionalFrom {
			return codec.Record{}, &FieldError{Record: spec.Name, Field: f.Name, Err: ErrMissingField}
		}
		if v.Present() && v.Type() == codec.TypeCn {
			text, err := EncodeText(v.Str())
			if err != nil {
				return codec.Record{}, &FieldError{Record: spec.Name, Field: f.Name, Err: err}
			}
			v = codec.Cn(text)
		}
		fields[i] = v
	}

	last := len(fields)
	for last > spec.OptionalFrom && isEmpty(fields[last-1]) {
		last--
	}
	for i := range fields {
		switch {
		case i >= last:
			fields[i] = codec.Absent(fields[i].Type())
		case !fields[i].Present():
			fields[i] = codec.Missing(fields[i].Type())
		}
	}

	return codec.Record{Type: spec.Type, Subtype: spec.Subtype, Fields: fields}, nil
}

func isEmpty(v codec.Value) bool {
	if !v.Present() {
		return true
	}
	switch v.Type() {
	case codec.TypeCn:
		return v.Str() == ""
	case codec.TypeBn:
		return len(v.Bytes()) == 0
	}
	return false
}

// Encoder turns typed records into STDF bytes
type Encoder struct {
	codec *codec.RecordCodec
}

// NewEncoder creates an encoder backed by a record codec
func NewEncoder() *Encoder {
	return &Encoder{codec: codec.NewRecordCodec()}
}

// Encode serializes one record. Errors name the offending field.
func (e *Encoder) Encode(rec Record) ([]byte, error) {
	abstract, err := Abstract(rec)
	if err != nil {
		return nil, err
	}

	data, err := e.codec.Encode(abstract)
	if err != nil {
		spec := rec.Spec()
		var fieldErr *codec.FieldError
		if errors.As(err, &fieldErr) && fieldErr.Index >= 0 && fieldErr.Index < len(spec.Fields) {
			return nil, &FieldError{Record: spec.Name, Field: spec.Fields[fieldErr.Index].Name, Err: err}
		}
		return nil, &FieldError{Record: spec.Name, Err: err}
	}
	return data, nil
}
