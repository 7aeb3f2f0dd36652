// Package stdf holds the STDF v4 record catalogue used by the converter and
// the typed records built from it.
//
// Each record type has a static RecordSpec: its REC_TYP/REC_SUB codes, the
// ordered field list, and the index where the optional tail begins. Typed
// records (FAR, ATR, MIR, PIR, PTR, PRR, MRR) produce their values in that
// order and Abstract checks them against the record layout before encoding.
package stdf

import "github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"

// FieldSpec names one field of a record layout
type FieldSpec struct {
	Name string
	Type codec.FieldType
}

// RecordSpec is the fixed layout of one STDF record type
type RecordSpec struct {
	Name    string
	Type    uint8
	Subtype uint8
	Fields  []FieldSpec
	// OptionalFrom is the index of the first field that may be omitted.
	// Fields before it are always written.
	OptionalFrom int
}

// MaxPayload returns the largest payload this layout can produce
func (s *RecordSpec) MaxPayload() int {
	size := 0
	for _, f := range s.Fields {
		size += f.Type.MaxSize()
	}
	return size
}

// Index returns the position of the named field, or -1
func (s *RecordSpec) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func cn(names ...string) []FieldSpec {
	fields := make([]FieldSpec, len(names))
	for i, n := range names {
		fields[i] = FieldSpec{Name: n, Type: codec.TypeCn}
	}
	return fields
}

func concat(parts ...[]FieldSpec) []FieldSpec {
	var out []FieldSpec
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var (
	// FARSpec is the File Attributes Record
	FARSpec = &RecordSpec{
		Name: "FAR", Type: 0, Subtype: 10,
		Fields: []FieldSpec{
			{"CPU_TYPE", codec.TypeU1},
			{"STDF_VER", codec.TypeU1},
		},
		OptionalFrom: 2,
	}

	// ATRSpec is the Audit Trail Record
	ATRSpec = &RecordSpec{
		Name: "ATR", Type: 0, Subtype: 20,
		Fields: []FieldSpec{
			{"MOD_TIM", codec.TypeU4},
			{"CMD_LINE", codec.TypeCn},
		},
		OptionalFrom: 2,
	}

	// MIRSpec is the Master Information Record
	MIRSpec = &RecordSpec{
		Name: "MIR", Type: 1, Subtype: 10,
		Fields: concat(
			[]FieldSpec{
				{"SETUP_T", codec.TypeU4},
				{"START_T", codec.TypeU4},
				{"STAT_NUM", codec.TypeU1},
				{"MODE_COD", codec.TypeC1},
				{"RTST_COD", codec.TypeC1},
				{"PROT_COD", codec.TypeC1},
				{"BURN_TIM", codec.TypeU2},
				{"CMOD_COD", codec.TypeC1},
			},
			cn("LOT_ID", "PART_TYP", "NODE_NAM", "TSTR_TYP", "JOB_NAM"),
			cn(mirOptionalText[:]...),
		),
		OptionalFrom: 13,
	}

	// PIRSpec is the Part Information Record
	PIRSpec = &RecordSpec{
		Name: "PIR", Type: 5, Subtype: 10,
		Fields: []FieldSpec{
			{"HEAD_NUM", codec.TypeU1},
			{"SITE_NUM", codec.TypeU1},
		},
		OptionalFrom: 2,
	}

	// PTRSpec is the Parametric Test Record
	PTRSpec = &RecordSpec{
		Name: "PTR", Type: 15, Subtype: 10,
		Fields: []FieldSpec{
			{"TEST_NUM", codec.TypeU4},
			{"HEAD_NUM", codec.TypeU1},
			{"SITE_NUM", codec.TypeU1},
			{"TEST_FLG", codec.TypeB1},
			{"PARM_FLG", codec.TypeB1},
			{"RESULT", codec.TypeR4},
			{"TEST_TXT", codec.TypeCn},
			{"ALARM_ID", codec.TypeCn},
			{"OPT_FLAG", codec.TypeB1},
			{"RES_SCAL", codec.TypeI1},
			{"LLM_SCAL", codec.TypeI1},
			{"HLM_SCAL", codec.TypeI1},
			{"LO_LIMIT", codec.TypeR4},
			{"HI_LIMIT", codec.TypeR4},
			{"UNITS", codec.TypeCn},
			{"C_RESFMT", codec.TypeCn},
			{"C_LLMFMT", codec.TypeCn},
			{"C_HLMFMT", codec.TypeCn},
			{"LO_SPEC", codec.TypeR4},
			{"HI_SPEC", codec.TypeR4},
		},
		OptionalFrom: 6,
	}

	// PRRSpec is the Part Results Record
	PRRSpec = &RecordSpec{
		Name: "PRR", Type: 5, Subtype: 20,
		Fields: []FieldSpec{
			{"HEAD_NUM", codec.TypeU1},
			{"SITE_NUM", codec.TypeU1},
			{"PART_FLG", codec.TypeB1},
			{"NUM_TEST", codec.TypeU2},
			{"HARD_BIN", codec.TypeU2},
			{"SOFT_BIN", codec.TypeU2},
			{"X_COORD", codec.TypeI2},
			{"Y_COORD", codec.TypeI2},
			{"TEST_T", codec.TypeU4},
			{"PART_ID", codec.TypeCn},
			{"PART_TXT", codec.TypeCn},
			{"PART_FIX", codec.TypeBn},
		},
		OptionalFrom: 6,
	}

	// MRRSpec is the Master Results Record
	MRRSpec = &RecordSpec{
		Name: "MRR", Type: 1, Subtype: 20,
		Fields: []FieldSpec{
			{"FINISH_T", codec.TypeU4},
			{"DISP_COD", codec.TypeC1},
			{"USR_DESC", codec.TypeCn},
			{"EXC_DESC", codec.TypeCn},
		},
		OptionalFrom: 1,
	}
)

// Catalogue lists every record type the converter emits
var Catalogue = []*RecordSpec{FARSpec, ATRSpec, MIRSpec, PIRSpec, PTRSpec, PRRSpec, MRRSpec}

// Lookup finds a RecordSpec by type and subtype
func Lookup(typ, sub uint8) (*RecordSpec, bool) {
	for _, s := range Catalogue {
		if s.Type == typ && s.Subtype == sub {
			return s, true
		}
	}
	return nil, false
}
