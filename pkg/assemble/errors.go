package assemble

import (
	"errors"
	"fmt"
)

var (
	// ErrNumericParse is returned when a cell that must be numeric is not
	ErrNumericParse = errors.New("numeric parse error")
	// ErrInvalidOverride is returned when a MIR override cannot be converted
	// to its field type
	ErrInvalidOverride = errors.New("invalid MIR override")
)

// CellError locates a bad device cell
type CellError struct {
	Row    int    // one-based source row
	Column int    // one-based source column, 0 when the column is not in the table
	Name   string // column header
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("row %d, column %d (%s): %q: %v", e.Row, e.Column, e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: %q: %v", e.Row, e.Name, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
