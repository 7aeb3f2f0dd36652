// Package assemble maps a parsed table onto the ordered STDF record sequence.
//
// The output order is fixed: FAR, the generated ATR followed by one ATR per
// extra log entry, MIR, then PIR, PTR... and PRR for every device, and a
// closing MRR. Assembly performs no I/O and reads no clock; the generation
// timestamp comes from RunConfig.
package assemble

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/stdf"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/table"
)

// Lot is the assembled record sequence with the counts derived while building it
type Lot struct {
	Records      []stdf.Record
	Parts        int
	Good         int
	Measurements int
	Passed       bool

	// UnmappedOverrides lists override keys that name no MIR field, sorted
	UnmappedOverrides []string
}

// Disposition returns the MRR DISP_COD for the lot
func (l *Lot) Disposition() byte {
	if l.Passed {
		return 'P'
	}
	return 'F'
}

// Assemble builds the records for t. It fails without partial output on the
// first bad cell or override.
func Assemble(t *table.Table, cfg RunConfig) (*Lot, error) {
	if t == nil || len(t.Devices) == 0 {
		return nil, table.ErrNoDeviceRows
	}

	a := &assembler{table: t, cfg: cfg}
	return a.run()
}

type assembler struct {
	table *table.Table
	cfg   RunConfig
	lot   Lot
}

func (a *assembler) emit(r stdf.Record) {
	a.lot.Records = append(a.lot.Records, r)
}

func (a *assembler) run() (*Lot, error) {
	times := make([]uint32, len(a.table.Devices))
	for i := range a.table.Devices {
		times[i] = deviceTime(&a.table.Devices[i], a.cfg.GeneratedAt)
	}
	start, finish := span(times)

	a.emit(stdf.NewFAR())
	a.emit(&stdf.ATR{
		ModTime: a.cfg.GeneratedAt,
		CmdLine: fmt.Sprintf("csv2stdf %s input=%s", a.cfg.sourceLabel(), a.cfg.inputName()),
	})
	for _, entry := range a.cfg.ExtraLogEntries {
		a.emit(&stdf.ATR{ModTime: a.cfg.GeneratedAt, CmdLine: entry})
	}

	mir, err := a.buildMIR(start)
	if err != nil {
		return nil, err
	}
	a.emit(mir)

	a.lot.Passed = true
	for i := range a.table.Devices {
		passed, err := a.device(&a.table.Devices[i])
		if err != nil {
			return nil, err
		}
		a.lot.Parts++
		if passed {
			a.lot.Good++
		} else {
			a.lot.Passed = false
		}
	}

	a.emit(&stdf.MRR{
		FinishTime:  finish,
		Disposition: a.lot.Disposition(),
		UserDesc:    fmt.Sprintf("CSV to STDF conversion complete: %d parts, %d good", a.lot.Parts, a.lot.Good),
	})
	return &a.lot, nil
}

// buildMIR applies, lowest precedence first: defaults and aliased columns,
// columns named after a MIR field, then overrides.
func (a *assembler) buildMIR(start uint32) (*stdf.MIR, error) {
	first := &a.table.Devices[0]
	mir := &stdf.MIR{
		SetupTime:  start,
		StartTime:  start,
		StationNum: 1,
	}

	for _, src := range mirSources {
		v, ok := first.First(src.columns...)
		if !ok {
			v = src.value
		}
		if v == "" {
			continue
		}
		if _, err := mir.Set(src.field, v); err != nil {
			return nil, a.cellError(first, src.columns, v, err)
		}
	}

	for _, f := range stdf.MIRSpec.Fields {
		v, ok := first.Lookup(f.Name)
		if !ok {
			continue
		}
		if _, err := mir.Set(f.Name, v); err != nil {
			return nil, a.cellError(first, []string{f.Name}, v, err)
		}
	}

	keys := make([]string, 0, len(a.cfg.MIROverrides))
	for k := range a.cfg.MIROverrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		known, err := mir.Set(k, a.cfg.MIROverrides[k])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOverride, err)
		}
		if !known {
			a.lot.UnmappedOverrides = append(a.lot.UnmappedOverrides, k)
		}
	}
	return mir, nil
}

// device emits PIR, the populated PTRs and PRR for d and reports whether it passed
func (a *assembler) device(d *table.Device) (bool, error) {
	head, err := a.metaUint(d, headColumns, uint64(a.cfg.HeadNumber), math.MaxUint8)
	if err != nil {
		return false, err
	}
	site, err := a.metaUint(d, siteColumns, uint64(a.cfg.SiteNumber), math.MaxUint8)
	if err != nil {
		return false, err
	}

	a.emit(&stdf.PIR{HeadNum: uint8(head), SiteNum: uint8(site)})

	passed := true
	executed := 0
	alarm := d.Value(alarmColumn)
	for i := range a.table.Tests {
		def := &a.table.Tests[i]
		cell := d.Measurements[i]
		if !cell.Present {
			continue
		}

		result, err := strconv.ParseFloat(cell.Raw, 64)
		if err != nil {
			return false, &CellError{Row: d.Line, Column: def.Column + 1, Name: def.Name, Value: cell.Raw, Err: ErrNumericParse}
		}

		ptr := newPTR(def, result)
		ptr.HeadNum = uint8(head)
		ptr.SiteNum = uint8(site)
		ptr.AlarmID = alarm
		a.emit(ptr)

		executed++
		if ptr.Failed() {
			passed = false
		}
	}
	if executed > math.MaxUint16 {
		return false, fmt.Errorf("row %d: %d measurements exceed NUM_TEST", d.Line, executed)
	}
	a.lot.Measurements += executed

	prr, err := a.buildPRR(d, passed)
	if err != nil {
		return false, err
	}
	prr.HeadNum = uint8(head)
	prr.SiteNum = uint8(site)
	prr.NumTests = uint16(executed)
	a.emit(prr)

	return passed, nil
}

// newPTR builds the result record for one measurement. Without both limits
// the measurement passes. Pass/fail compares the encoded R4 values so the
// flag agrees with RESULT, LO_LIMIT and HI_LIMIT as a reader sees them.
func newPTR(def *table.TestDefinition, result float64) *stdf.PTR {
	ptr := &stdf.PTR{
		TestNum:  def.Number,
		Result:   float32(result),
		TestText: def.Name,
		OptFlags: stdf.OptReserved | stdf.OptNoLowSpec | stdf.OptNoHighSpec,
		Units:    def.Unit,
	}
	if def.LowLimit != nil {
		ptr.LoLimit = float32(*def.LowLimit)
	} else {
		ptr.OptFlags |= stdf.OptNoLowLimit
	}
	if def.HighLimit != nil {
		ptr.HiLimit = float32(*def.HighLimit)
	} else {
		ptr.OptFlags |= stdf.OptNoHighLimit
	}

	if def.HasLimits() && (ptr.Result < ptr.LoLimit || ptr.Result > ptr.HiLimit) {
		ptr.TestFlags |= stdf.TestFlagFailed
	}
	return ptr
}

func (a *assembler) buildPRR(d *table.Device, passed bool) (*stdf.PRR, error) {
	bin := uint64(passBin)
	prr := &stdf.PRR{}
	if !passed {
		bin = failBin
		prr.PartFlags |= stdf.PartFlagFailed
	}

	hard, err := a.metaUint(d, hardBinColumns, bin, math.MaxUint16)
	if err != nil {
		return nil, err
	}
	soft, err := a.metaUint(d, softBinColumns, bin, math.MaxUint16)
	if err != nil {
		return nil, err
	}
	x, err := a.metaCoord(d, xCoordColumns)
	if err != nil {
		return nil, err
	}
	y, err := a.metaCoord(d, yCoordColumns)
	if err != nil {
		return nil, err
	}
	elapsed, err := a.testTime(d)
	if err != nil {
		return nil, err
	}

	prr.HardBin = uint16(hard)
	prr.SoftBin = uint16(soft)
	prr.XCoord = x
	prr.YCoord = y
	prr.TestTime = elapsed
	prr.PartText = d.Value(partTextColumn)
	if id, ok := d.First(partIDColumns...); ok {
		prr.PartID = id
	} else {
		prr.PartID = strconv.Itoa(d.Index + 1)
	}
	return prr, nil
}

// metaUint reads an integral metadata cell in [0, max], or def when every
// column is blank
func (a *assembler) metaUint(d *table.Device, columns []string, def uint64, max float64) (uint64, error) {
	raw, col, ok := first(d, columns)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f > max || f != math.Trunc(f) {
		return 0, a.cellError(d, []string{col}, raw, ErrNumericParse)
	}
	return uint64(f), nil
}

func (a *assembler) metaCoord(d *table.Device, columns []string) (int16, error) {
	raw, col, ok := first(d, columns)
	if !ok {
		return stdf.MissingCoord, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < math.MinInt16 || f > math.MaxInt16 || f != math.Trunc(f) {
		return 0, a.cellError(d, []string{col}, raw, ErrNumericParse)
	}
	return int16(f), nil
}

// testTime keeps the integral part of the Test Time cell
func (a *assembler) testTime(d *table.Device) (uint32, error) {
	raw, col, ok := first(d, testTimeColumns)
	if !ok {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f >= math.MaxUint32+1 {
		return 0, a.cellError(d, []string{col}, raw, ErrNumericParse)
	}
	return uint32(f), nil
}

// cellError reports a failure against the first of columns present in the table
func (a *assembler) cellError(d *table.Device, columns []string, value string, err error) error {
	name := ""
	if len(columns) > 0 {
		name = columns[0]
	}
	for _, c := range columns {
		if a.table.IsMetadata(c) {
			name = c
			break
		}
	}
	col := 0
	for _, c := range columns {
		if v, ok := d.Lookup(c); ok && v == value {
			name = c
			break
		}
	}
	for i, h := range a.table.Headers {
		if h == name {
			col = i + 1
			break
		}
	}
	return &CellError{Row: d.Line, Column: col, Name: name, Value: value, Err: err}
}

func first(d *table.Device, columns []string) (string, string, bool) {
	for _, c := range columns {
		if v, ok := d.Lookup(c); ok {
			return v, c, true
		}
	}
	return "", "", false
}

// deviceTime parses the DATE column, falling back to the generation time
func deviceTime(d *table.Device, fallback uint32) uint32 {
	raw, ok := d.Lookup(dateColumn)
	if !ok {
		return fallback
	}
	for _, layout := range dateLayouts {
		ts, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			continue
		}
		if sec := ts.Unix(); sec >= 0 && sec <= math.MaxUint32 {
			return uint32(sec)
		}
	}
	return fallback
}

func span(times []uint32) (uint32, uint32) {
	lo, hi := times[0], times[0]
	for _, t := range times[1:] {
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	return lo, hi
}
