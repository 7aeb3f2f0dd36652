package table

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when the header block is incomplete or invalid
	ErrMalformedHeader = errors.New("malformed header")
	// ErrNoDeviceRows is returned when no device rows follow the header
	ErrNoDeviceRows = errors.New("no device rows")
	// ErrDuplicateTestNumber is returned when two columns share a test number
	ErrDuplicateTestNumber = errors.New("duplicate test number")
)

// ParseError locates a parse failure in the source text
type ParseError struct {
	Row    int // one-based source row, 0 when unknown
	Column int // one-based column, 0 when not column specific
	Name   string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Column > 0 && e.Name != "":
		return fmt.Sprintf("row %d, column %d (%s): %v", e.Row, e.Column, e.Name, e.Err)
	case e.Row > 0 && e.Column > 0:
		return fmt.Sprintf("row %d, column %d: %v", e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
