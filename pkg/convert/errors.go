package convert

import (
	"errors"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/stdf"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/table"
)

// IsInputError reports whether err was caused by the content of the input or
// its configuration rather than by I/O
func IsInputError(err error) bool {
	var (
		parseErr  *table.ParseError
		cellErr   *assemble.CellError
		fieldErr  *stdf.FieldError
		recordErr *codec.FieldError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &cellErr),
		errors.As(err, &fieldErr), errors.As(err, &recordErr):
		return true
	case errors.Is(err, table.ErrNoDeviceRows), errors.Is(err, assemble.ErrInvalidOverride):
		return true
	}
	return false
}
