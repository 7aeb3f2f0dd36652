// Package table parses the five-row-header CSV layout into test definitions
// and device rows.
//
// Header rows, in order: column names, test numbers, low limits, high limits,
// units. A column whose test number cell is numeric is a measurement column;
// every other column is metadata. Each row after the header is one device.
package table

// HeaderRows is the number of rows in the header block
const HeaderRows = 5

// TestDefinition describes one measurement column
type TestDefinition struct {
	Index     int    // position among measurement columns
	Column    int    // zero-based source column
	Name      string // display name, TEST_<n> when the header is blank
	Number    uint32 // test number, unique within a table
	LowLimit  *float64
	HighLimit *float64
	Unit      string
}

// HasLimits reports whether both limits are configured
func (d *TestDefinition) HasLimits() bool {
	return d.LowLimit != nil && d.HighLimit != nil
}

// Cell is one measurement cell. Present is false for blank and NA cells.
type Cell struct {
	Raw     string
	Present bool
}

// Device is one tested unit
type Device struct {
	Index        int // zero-based device ordinal
	Line         int // one-based source row
	metadata     map[string]string
	Measurements []Cell // one per TestDefinition, same order
}

// Value returns a metadata cell; missing columns read as blank
func (d *Device) Value(column string) string {
	return d.metadata[column]
}

// Lookup returns a metadata cell and whether the cell is non-blank
func (d *Device) Lookup(column string) (string, bool) {
	v := d.metadata[column]
	return v, v != ""
}

// First returns the first non-blank value among columns
func (d *Device) First(columns ...string) (string, bool) {
	for _, c := range columns {
		if v, ok := d.Lookup(c); ok {
			return v, true
		}
	}
	return "", false
}

// Table is the parsed layout
type Table struct {
	Headers         []string
	MetadataColumns []string // named non-measurement columns in source order
	Tests           []TestDefinition
	Devices         []Device
}

// IsMetadata reports whether name is a metadata column
func (t *Table) IsMetadata(name string) bool {
	for _, c := range t.MetadataColumns {
		if c == name {
			return true
		}
	}
	return false
}
