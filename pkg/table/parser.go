package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrSyntax is returned when the input is not valid comma-separated text
var ErrSyntax = errors.New("invalid csv")

const (
	rowNames = iota
	rowNumbers
	rowLowLimits
	rowHighLimits
	rowUnits
)

type row struct {
	line  int
	cells []string
}

func (r row) blank() bool {
	for _, c := range r.cells {
		if c != "" {
			return false
		}
	}
	return true
}

func (r row) cell(idx int) string {
	if idx >= len(r.cells) {
		return ""
	}
	return r.cells[idx]
}

// Parse reads the whole table from r
func Parse(r io.Reader) (*Table, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) < HeaderRows {
		return nil, &ParseError{
			Err: fmt.Errorf("%w: need %d header rows, found %d", ErrMalformedHeader, HeaderRows, len(rows)),
		}
	}

	width := 0
	for _, r := range rows[:HeaderRows] {
		width = max(width, len(r.cells))
	}
	header := make([]string, width)
	for idx := range header {
		header[idx] = rows[rowNames].cell(idx)
	}
	t := &Table{Headers: header}
	var metaIdx []int
	seenNumbers := make(map[uint32]int)
	seenMeta := make(map[string]bool)

	for idx, title := range header {
		number, ok, err := parseTestNumber(rows[rowNumbers], idx, title)
		if err != nil {
			return nil, err
		}
		if !ok {
			if title != "" {
				metaIdx = append(metaIdx, idx)
				if !seenMeta[title] {
					seenMeta[title] = true
					t.MetadataColumns = append(t.MetadataColumns, title)
				}
			}
			continue
		}

		if prev, dup := seenNumbers[number]; dup {
			return nil, &ParseError{
				Row:    rows[rowNumbers].line,
				Column: idx + 1,
				Name:   title,
				Err:    fmt.Errorf("%w: %d already used by column %d", ErrDuplicateTestNumber, number, prev+1),
			}
		}
		seenNumbers[number] = idx

		low, err := parseLimit(rows[rowLowLimits], idx, title)
		if err != nil {
			return nil, err
		}
		high, err := parseLimit(rows[rowHighLimits], idx, title)
		if err != nil {
			return nil, err
		}

		name := title
		if name == "" {
			name = fmt.Sprintf("TEST_%d", number)
		}
		t.Tests = append(t.Tests, TestDefinition{
			Index:     len(t.Tests),
			Column:    idx,
			Name:      name,
			Number:    number,
			LowLimit:  low,
			HighLimit: high,
			Unit:      clean(rows[rowUnits].cell(idx)),
		})
	}

	for _, r := range rows[HeaderRows:] {
		if r.blank() {
			continue
		}
		d := Device{
			Index:        len(t.Devices),
			Line:         r.line,
			metadata:     make(map[string]string, len(metaIdx)),
			Measurements: make([]Cell, len(t.Tests)),
		}
		for _, idx := range metaIdx {
			d.metadata[header[idx]] = clean(r.cell(idx))
		}
		for i, def := range t.Tests {
			raw := r.cell(def.Column)
			d.Measurements[i] = Cell{Raw: raw, Present: !isBlank(raw)}
		}
		t.Devices = append(t.Devices, d)
	}

	if len(t.Devices) == 0 {
		return nil, &ParseError{Err: ErrNoDeviceRows}
	}
	return t, nil
}

// readRows returns the trimmed rows of the input. Empty lines never reach
// the caller; rows of empty cells do.
func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1

	var rows []row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Row: csvErr.Line, Column: csvErr.Column, Err: fmt.Errorf("%w: %v", ErrSyntax, csvErr.Err)}
			}
			return nil, fmt.Errorf("failed to read table: %w", err)
		}

		line, _ := cr.FieldPos(0)
		for i, c := range record {
			record[i] = strings.TrimSpace(c)
		}
		rows = append(rows, row{line: line, cells: record})
	}
	return rows, nil
}

// parseTestNumber classifies a column. ok is false for metadata columns.
func parseTestNumber(r row, idx int, title string) (uint32, bool, error) {
	raw := r.cell(idx)
	if isBlank(raw) {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, nil
	}
	if math.IsInf(f, 0) || f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, false, &ParseError{
			Row:    r.line,
			Column: idx + 1,
			Name:   title,
			Err:    fmt.Errorf("%w: test number %q must be a non-negative integer", ErrMalformedHeader, raw),
		}
	}
	return uint32(f), true, nil
}

func parseLimit(r row, idx int, title string) (*float64, error) {
	raw := r.cell(idx)
	if isBlank(raw) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return nil, &ParseError{
			Row:    r.line,
			Column: idx + 1,
			Name:   title,
			Err:    fmt.Errorf("%w: limit %q is not a number", ErrMalformedHeader, raw),
		}
	}
	return &f, nil
}

// isBlank treats empty and NA cells as missing
func isBlank(s string) bool {
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "na", "nan":
		return true
	}
	return false
}

func clean(s string) string {
	if isBlank(s) {
		return ""
	}
	return s
}
