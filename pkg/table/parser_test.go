package table

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `LOT_ID,X_CID,VDD,IDDQ,Leakage
,,100,200,7
,,0.9,,-1
,,1.1,5,1
,,V,mA,uA
LOT1,3,1.0,4.2,0
LOT1,4,,4.8,na
`

func TestParse_ClassifiesColumns(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"LOT_ID", "X_CID"}, tbl.MetadataColumns)
	assert.True(t, tbl.IsMetadata("X_CID"))
	assert.False(t, tbl.IsMetadata("VDD"))
	require.Len(t, tbl.Tests, 3)

	vdd := tbl.Tests[0]
	assert.Equal(t, 0, vdd.Index)
	assert.Equal(t, 2, vdd.Column)
	assert.Equal(t, "VDD", vdd.Name)
	assert.Equal(t, uint32(100), vdd.Number)
	require.NotNil(t, vdd.LowLimit)
	require.NotNil(t, vdd.HighLimit)
	assert.Equal(t, 0.9, *vdd.LowLimit)
	assert.Equal(t, 1.1, *vdd.HighLimit)
	assert.Equal(t, "V", vdd.Unit)
	assert.True(t, vdd.HasLimits())

	iddq := tbl.Tests[1]
	assert.Nil(t, iddq.LowLimit)
	assert.Equal(t, 5.0, *iddq.HighLimit)
	assert.False(t, iddq.HasLimits())

	leak := tbl.Tests[2]
	assert.Equal(t, uint32(7), leak.Number)
	assert.Equal(t, -1.0, *leak.LowLimit)
}

func TestParse_Devices(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, tbl.Devices, 2)

	first := tbl.Devices[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 6, first.Line)
	assert.Equal(t, "LOT1", first.Value("LOT_ID"))
	assert.Equal(t, "3", first.Value("X_CID"))
	assert.Equal(t, []Cell{{"1.0", true}, {"4.2", true}, {"0", true}}, first.Measurements)

	second := tbl.Devices[1]
	assert.Equal(t, Cell{Raw: "", Present: false}, second.Measurements[0])
	assert.True(t, second.Measurements[1].Present)
	assert.False(t, second.Measurements[2].Present, "NA is not a measurement")
}

func TestParse_PreservesColumnOrder(t *testing.T) {
	input := "B,A,C\n30,10,20\n,,\n,,\n,,\n1,2,3\n"

	tbl, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tbl.Tests, 3)

	var numbers []uint32
	for i, def := range tbl.Tests {
		assert.Equal(t, i, def.Index)
		numbers = append(numbers, def.Number)
	}
	assert.Equal(t, []uint32{30, 10, 20}, numbers)
}

func TestParse_DefaultsAndCleanup(t *testing.T) {
	input := "\ufeff Part , ,\n x ,5.0, 12 \n,na,\n,,\n,,ohm\n\n , , \nP1, 3 ,7\n"

	tbl, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Part"}, tbl.MetadataColumns, "BOM and whitespace stripped")
	require.Len(t, tbl.Tests, 2)
	assert.Equal(t, "TEST_5", tbl.Tests[0].Name)
	assert.Equal(t, uint32(5), tbl.Tests[0].Number)
	assert.Nil(t, tbl.Tests[0].LowLimit)
	assert.Equal(t, "TEST_12", tbl.Tests[1].Name)
	assert.Equal(t, "ohm", tbl.Tests[1].Unit)

	require.Len(t, tbl.Devices, 1, "blank rows are skipped")
	assert.Equal(t, "P1", tbl.Devices[0].Value("Part"))
	assert.Equal(t, "3", tbl.Devices[0].Measurements[0].Raw)
}

func TestParse_RaggedRows(t *testing.T) {
	input := "ID,T1,T2\n,1,2\n\n,0,0\n,9,9\n,V\nD1,5\nD2,5,6,extra\n"

	tbl, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tbl.Devices, 2)

	assert.False(t, tbl.Devices[0].Measurements[1].Present)
	assert.Equal(t, "", tbl.Tests[1].Unit)
	assert.Equal(t, "6", tbl.Devices[1].Measurements[1].Raw)
}

func TestParse_RaggedHeader(t *testing.T) {
	input := `LOT_ID,Vdd
x,1,2
,0,0
,5,5
,V,A,extra
L1,3,4
`

	tbl, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, tbl.Tests, 2, "columns past the names row still classify")
	assert.Equal(t, "Vdd", tbl.Tests[0].Name)
	assert.Equal(t, "TEST_2", tbl.Tests[1].Name)
	assert.Equal(t, 2, tbl.Tests[1].Column)
	assert.Equal(t, "A", tbl.Tests[1].Unit)
	assert.Equal(t, []string{"LOT_ID"}, tbl.MetadataColumns)
	assert.Len(t, tbl.Headers, 4)

	require.Len(t, tbl.Devices, 1)
	assert.Equal(t, Cell{Raw: "4", Present: true}, tbl.Devices[0].Measurements[1])
}

func TestParse_NAMetadataIsBlank(t *testing.T) {
	input := `LOT_ID,X_CID,Hard Bin,V
,,,1
,,,
,,,
,,,
nan,NA,Na,2
`

	tbl, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	d := tbl.Devices[0]

	for _, col := range []string{"LOT_ID", "X_CID", "Hard Bin"} {
		v, ok := d.Lookup(col)
		assert.False(t, ok, col)
		assert.Equal(t, "", v, col)
	}
}

func TestDevice_Lookup(t *testing.T) {
	tbl, err := Parse(strings.NewReader("A,B,T\n,,1\n,,\n,,\n,,\n,b,2\n"))
	require.NoError(t, err)
	d := tbl.Devices[0]

	_, ok := d.Lookup("A")
	assert.False(t, ok)
	v, ok := d.First("A", "B")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, "", d.Value("missing"))
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    error
		contain string
	}{
		{
			name:    "too few header rows",
			input:   "A,B\n1,2\n,\n,\n",
			want:    ErrMalformedHeader,
			contain: "found 4",
		},
		{
			name:  "empty input",
			input: "",
			want:  ErrMalformedHeader,
		},
		{
			name:  "header only",
			input: "A,T\n,1\n,0\n,1\n,V\n",
			want:  ErrNoDeviceRows,
		},
		{
			name:    "duplicate test number",
			input:   "T1,T2\n4,4.0\n,\n,\n,\nx,y\n",
			want:    ErrDuplicateTestNumber,
			contain: "row 2, column 2 (T2)",
		},
		{
			name:    "negative test number",
			input:   "T1\n-3\n,\n,\n,\nx\n",
			want:    ErrMalformedHeader,
			contain: "non-negative",
		},
		{
			name:    "fractional test number",
			input:   "T1\n1.5\n,\n,\n,\n1\n",
			want:    ErrMalformedHeader,
			contain: "column 1 (T1)",
		},
		{
			name:    "non numeric limit",
			input:   "T1\n1\nlow\n2\nV\n1\n",
			want:    ErrMalformedHeader,
			contain: "row 3",
		},
		{
			name:  "broken quoting",
			input: "A,\"B\n1,2\n",
			want:  ErrSyntax,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := Parse(strings.NewReader(tc.input))
			assert.Nil(t, tbl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			if tc.contain != "" {
				assert.Contains(t, err.Error(), tc.contain)
			}

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}
