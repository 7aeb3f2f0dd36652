package stdf

import (
	"fmt"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"
)

// MIR is the Master Information Record
type MIR struct {
	SetupTime      uint32
	StartTime      uint32
	StationNum     uint8
	ModeCode       byte
	RetestCode     byte
	ProtectionCode byte
	BurnTime       uint16
	CmdModeCode    byte

	LotID      string
	PartType   string
	NodeName   string
	TesterType string
	JobName    string

	JobRev         string
	SublotID       string
	OperatorName   string
	ExecType       string
	ExecVersion    string
	TestCode       string
	TestTemp       string
	UserText       string
	AuxFile        string
	PackageType    string
	FamilyID       string
	DateCode       string
	FacilityID     string
	FloorID        string
	ProcessID      string
	OperationFreq  string
	SpecName       string
	SpecVersion    string
	FlowID         string
	SetupID        string
	DesignRev      string
	EngineeringID  string
	ROMCode        string
	SerialNum      string
	SupervisorName string
}

// mirOptionalText names the Cn fields after JOB_NAM, in layout order
var mirOptionalText = [...]string{
	"JOB_REV", "SBLOT_ID", "OPER_NAM", "EXEC_TYP", "EXEC_VER", "TEST_COD", "TST_TEMP",
	"USER_TXT", "AUX_FILE", "PKG_TYP", "FAMLY_ID", "DATE_COD", "FACIL_ID", "FLOOR_ID",
	"PROC_ID", "OPER_FRQ", "SPEC_NAM", "SPEC_VER", "FLOW_ID", "SETUP_ID", "DSGN_REV",
	"ENG_ID", "ROM_COD", "SERL_NUM", "SUPR_NAM",
}

// text returns pointers to every Cn field in layout order
func (r *MIR) text() []*string {
	return []*string{
		&r.LotID, &r.PartType, &r.NodeName, &r.TesterType, &r.JobName,
		&r.JobRev, &r.SublotID, &r.OperatorName, &r.ExecType, &r.ExecVersion,
		&r.TestCode, &r.TestTemp, &r.UserText, &r.AuxFile, &r.PackageType,
		&r.FamilyID, &r.DateCode, &r.FacilityID, &r.FloorID, &r.ProcessID,
		&r.OperationFreq, &r.SpecName, &r.SpecVersion, &r.FlowID, &r.SetupID,
		&r.DesignRev, &r.EngineeringID, &r.ROMCode, &r.SerialNum, &r.SupervisorName,
	}
}

// firstTextField is the MIRSpec index of LOT_ID
const firstTextField = 8

func (r *MIR) Spec() *RecordSpec { return MIRSpec }

func (r *MIR) Values() []codec.Value {
	values := []codec.Value{
		codec.U4(r.SetupTime),
		codec.U4(r.StartTime),
		codec.U1(r.StationNum),
		codec.C1(orSpace(r.ModeCode)),
		codec.C1(orSpace(r.RetestCode)),
		codec.C1(orSpace(r.ProtectionCode)),
		codec.U2(r.BurnTime),
		codec.C1(orSpace(r.CmdModeCode)),
	}
	for _, s := range r.text() {
		values = append(values, codec.Cn(*s))
	}
	return values
}

// Set assigns a field by its STDF name, converting v to the field type.
// It reports false for names the MIR layout does not define.
func (r *MIR) Set(name string, v any) (bool, error) {
	var err error
	switch name {
	case "SETUP_T":
		err = setUint(&r.SetupTime, v)
	case "START_T":
		err = setUint(&r.StartTime, v)
	case "STAT_NUM":
		err = setUint(&r.StationNum, v)
	case "BURN_TIM":
		err = setUint(&r.BurnTime, v)
	case "MODE_COD":
		r.ModeCode, err = toChar(v)
	case "RTST_COD":
		r.RetestCode, err = toChar(v)
	case "PROT_COD":
		r.ProtectionCode, err = toChar(v)
	case "CMOD_COD":
		r.CmdModeCode, err = toChar(v)
	default:
		i := MIRSpec.Index(name)
		if i < firstTextField {
			return false, nil
		}
		*r.text()[i-firstTextField], err = toText(v)
	}
	if err != nil {
		return true, &FieldError{Record: MIRSpec.Name, Field: name, Err: err}
	}
	return true, nil
}

func orSpace(c byte) byte {
	if c == 0 {
		return ' '
	}
	return c
}

func setUint[T uint8 | uint16 | uint32](dst *T, v any) error {
	var zero T
	n, err := toUint(v, uint64(^zero))
	if err != nil {
		return err
	}
	*dst = T(n)
	return nil
}

func (r *MIR) String() string {
	return fmt.Sprintf("MIR{lot=%q part=%q job=%q}", r.LotID, r.PartType, r.JobName)
}
