package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec/codectest"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/metrics"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/stdf"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/storage"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/table"
)

const minimalCSV = "VDD\n1\n0\n100\nV\n50\n"

func fixedConfig() assemble.RunConfig {
	cfg := assemble.DefaultRunConfig()
	cfg.GeneratedAt = 1700000000
	cfg.InputName = "minimal.csv"
	return cfg
}

type memoryHistory struct {
	mu      sync.Mutex
	entries map[ksuid.KSUID]*storage.Entry
}

func (h *memoryHistory) Put(id ksuid.KSUID, e *storage.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries == nil {
		h.entries = make(map[ksuid.KSUID]*storage.Entry)
	}
	h.entries[id] = e
	return nil
}

func TestConvert_Golden(t *testing.T) {
	var buf bytes.Buffer
	res, err := New().Convert(strings.NewReader(minimalCSV), &buf, fixedConfig())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "minimal", buf.Bytes())

	assert.Equal(t, 7, res.Records)
	assert.Equal(t, int64(buf.Len()), res.Bytes)
	assert.Equal(t, "P", res.Disposition())
}

func TestConvert_MinimalRecordSequence(t *testing.T) {
	var buf bytes.Buffer
	_, err := New().Convert(strings.NewReader(minimalCSV), &buf, fixedConfig())
	require.NoError(t, err)

	records, err := codectest.Split(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 7)

	want := []*stdf.RecordSpec{stdf.FARSpec, stdf.ATRSpec, stdf.MIRSpec, stdf.PIRSpec, stdf.PTRSpec, stdf.PRRSpec, stdf.MRRSpec}
	for i, spec := range want {
		assert.True(t, records[i].Is(spec.Type, spec.Subtype), "record %d should be %s", i, spec.Name)
		assert.Less(t, int(records[i].Length), spec.MaxPayload()+1)
	}

	ptr := codectest.NewCursor(records[4].Payload)
	assert.Equal(t, uint32(1), ptr.U4())
	ptr.U1()
	ptr.U1()
	assert.Equal(t, uint8(0), ptr.B1(), "TEST_FLG pass")
	ptr.B1()
	assert.Equal(t, float32(50), ptr.R4())
	require.NoError(t, ptr.Err())

	prr := codectest.NewCursor(records[5].Payload)
	prr.U1()
	prr.U1()
	assert.Equal(t, uint8(0), prr.B1(), "PART_FLG pass")

	mrr := codectest.NewCursor(records[6].Payload)
	assert.Equal(t, uint32(1700000000), mrr.U4())
	assert.Equal(t, byte('P'), mrr.C1())
}

func TestConvert_Deterministic(t *testing.T) {
	input := "LOT_ID,T1,T2\n,1,2\n,0,0\n,10,10\n,V,V\nL,5,12\nL,,3\n"
	c := New()

	var first, second bytes.Buffer
	_, err := c.Convert(strings.NewReader(input), &first, fixedConfig())
	require.NoError(t, err)
	_, err = c.Convert(strings.NewReader(input), &second, fixedConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestConvert_PTRCountsFollowCells(t *testing.T) {
	input := "ID,T1,T2,T3\n,1,2,3\n,,,\n,,,\n,,,\nA,1,2,3\nB,,2,\nC,,,\n"
	var buf bytes.Buffer
	res, err := New().Convert(strings.NewReader(input), &buf, fixedConfig())
	require.NoError(t, err)

	records, err := codectest.Split(buf.Bytes())
	require.NoError(t, err)

	var perDevice []int
	for _, r := range records {
		switch {
		case r.Is(stdf.PIRSpec.Type, stdf.PIRSpec.Subtype):
			perDevice = append(perDevice, 0)
		case r.Is(stdf.PTRSpec.Type, stdf.PTRSpec.Subtype):
			perDevice[len(perDevice)-1]++
		}
	}
	assert.Equal(t, []int{3, 1, 0}, perDevice)
	assert.Equal(t, 3, res.Devices)
	assert.Equal(t, 4, res.Measurements)
}

func TestConvert_FailsBeforeWriting(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{name: "malformed header", input: "A\n1\n", want: table.ErrMalformedHeader},
		{name: "no devices", input: "T\n1\n0\n1\nV\n", want: table.ErrNoDeviceRows},
		{name: "duplicate test number", input: "A,B\n1,1\n,\n,\n,\n1,2\n", want: table.ErrDuplicateTestNumber},
		{name: "numeric parse", input: "T\n1\n0\n1\nV\nbad\n", want: assemble.ErrNumericParse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			res, err := New().Convert(strings.NewReader(tc.input), &buf, fixedConfig())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsInputError(err))
			assert.Zero(t, buf.Len(), "no bytes reach the sink")
		})
	}
}

func TestConvert_FieldWidthOverflow(t *testing.T) {
	input := "LOT_ID,T\n,1\n,\n,\n,\n" + strings.Repeat("L", 300) + ",1\n"

	var buf bytes.Buffer
	_, err := New().Convert(strings.NewReader(input), &buf, fixedConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrFieldWidthOverflow)
	assert.Contains(t, err.Error(), "MIR.LOT_ID")
	assert.True(t, IsInputError(err))

	records, splitErr := codectest.Split(buf.Bytes())
	require.NoError(t, splitErr, "only whole records are written")
	assert.Len(t, records, 2, "FAR and ATR precede the failing MIR")
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "minimal.csv")
	require.NoError(t, os.WriteFile(in, []byte(minimalCSV), 0600))
	out := filepath.Join(dir, "out", "minimal.stdf")

	cfg := fixedConfig()
	cfg.InputName = ""
	res, err := New().ConvertFile(in, out, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	golden, err := os.ReadFile(filepath.Join("testdata", "minimal.golden"))
	require.NoError(t, err)
	assert.Equal(t, golden, data, "input name comes from the file")

	assert.Equal(t, in, res.Input)
	assert.Equal(t, out, res.Output)
	assert.Equal(t, int64(len(data)), res.Bytes)
}

func TestConvertFile_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(in, []byte("LOT_ID,T\n,1\n,\n,\n,\n"+strings.Repeat("x", 256)+",1\n"), 0600))
	out := filepath.Join(dir, "bad.stdf")

	_, err := New().ConvertFile(in, out, fixedConfig())
	require.Error(t, err)

	assert.NoFileExists(t, out)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp output removed")
}

func TestConvertFile_MissingInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.stdf")

	_, err := New().ConvertFile(filepath.Join(t.TempDir(), "missing.csv"), out, fixedConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, IsInputError(err))
	assert.NoFileExists(t, out)
}

func TestConverter_Observability(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()
	h := &memoryHistory{}
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(10 * time.Millisecond)
		return tick
	}
	c := New(WithLogger(zap.New(core)), WithMetrics(m), WithHistory(h), WithClock(clock))

	cfg := fixedConfig()
	cfg.MIROverrides = map[string]any{"NOT_A_FIELD": "x"}
	res, err := c.Convert(strings.NewReader(minimalCSV), &bytes.Buffer{}, cfg)
	require.NoError(t, err)
	_, err = c.Convert(strings.NewReader("A\n"), &bytes.Buffer{}, cfg)
	require.Error(t, err)

	assert.Equal(t, 10*time.Millisecond, res.Duration)
	assert.Equal(t, []string{"NOT_A_FIELD"}, res.UnmappedOverrides)

	assert.Equal(t, 1, logs.FilterMessage("Conversion complete").Len())
	assert.Equal(t, 1, logs.FilterMessage("Conversion failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Ignoring MIR overrides with unknown field names").Len())

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	series := 0
	for _, f := range families {
		if f.GetName() == "csv2stdf_conversions_total" {
			series = len(f.GetMetric())
		}
	}
	assert.Equal(t, 2, series, "one success and one error series")

	require.Len(t, h.entries, 2)
	entry := h.entries[res.ID]
	require.NotNil(t, entry)
	assert.Equal(t, "success", entry.Status)
	assert.Equal(t, "P", entry.Disposition)
	assert.Equal(t, 7, entry.Records)
	for id, e := range h.entries {
		if id != res.ID {
			assert.Equal(t, "error", e.Status)
			assert.Contains(t, e.Error, "malformed header")
		}
	}
}

func TestConvert_DefaultTimestamp(t *testing.T) {
	now := time.Unix(1712345678, 0)
	c := New(WithClock(func() time.Time { return now }))

	cfg := fixedConfig()
	cfg.GeneratedAt = 0
	var out bytes.Buffer
	_, err := c.Convert(strings.NewReader(minimalCSV), &out, cfg)
	require.NoError(t, err)

	records, err := codectest.Split(out.Bytes())
	require.NoError(t, err)
	require.True(t, records[1].Is(0, 20), "second record is the ATR")
	assert.Equal(t, uint32(1712345678), codectest.NewCursor(records[1].Payload).U4())
}

func TestConvertFile_LogsRecordOffsets(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "minimal.csv")
	require.NoError(t, os.WriteFile(in, []byte(minimalCSV), 0600))

	core, logs := observer.New(zap.DebugLevel)
	cfg := fixedConfig()
	cfg.InputName = ""
	res, err := New(WithLogger(zap.New(core))).ConvertFile(in, filepath.Join(dir, "minimal.stdf"), cfg)
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("Writing output").Len())
	wrote := logs.FilterMessage("Wrote record").All()
	require.Len(t, wrote, res.Records)

	var next int64
	for _, e := range wrote {
		fields := e.ContextMap()
		assert.Equal(t, next, fields["offset"], fields["record"])
		next += fields["bytes"].(int64)
	}
	assert.Equal(t, res.Bytes, next)
	assert.Equal(t, "FAR", wrote[0].ContextMap()["record"])
	assert.Equal(t, int64(6), wrote[1].ContextMap()["offset"], "ATR follows the 6-byte FAR")
}

func TestConvert_NAMetadataCells(t *testing.T) {
	input := "X_CID,Y_CID,Hard Bin,LOT_ID,V\n,,,,1\n,,,,0\n,,,,20\n,,,,V\nNA,nan,NA,nan,5\n"

	var buf bytes.Buffer
	res, err := New().Convert(strings.NewReader(input), &buf, fixedConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Good)

	records, err := codectest.Split(buf.Bytes())
	require.NoError(t, err)
	for _, r := range records {
		if r.Is(stdf.PRRSpec.Type, stdf.PRRSpec.Subtype) {
			c := codectest.NewCursor(r.Payload)
			c.U1()
			c.U1()
			c.B1()
			c.U2()
			assert.Equal(t, uint16(1), c.U2(), "HARD_BIN default")
			c.U2()
			assert.Equal(t, stdf.MissingCoord, c.I2())
			assert.Equal(t, stdf.MissingCoord, c.I2())
			require.NoError(t, c.Err())
		}
	}
}
