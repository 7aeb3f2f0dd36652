package stdf

import "github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/codec"

// Record is a typed STDF record that knows its layout
type Record interface {
	Spec() *RecordSpec
	// Values returns one value per field of Spec, in order
	Values() []codec.Value
}

// PTR test flag bits
const (
	TestFlagFailed = 0x80
)

// PTR optional data flag bits
const (
	OptReserved    = 0x02 // must always be set
	OptNoLowSpec   = 0x04
	OptNoHighSpec  = 0x08
	OptNoLowLimit  = 0x40
	OptNoHighLimit = 0x80
)

// PRR part flag bits
const (
	PartFlagFailed = 0x08
)

// MissingCoord is the STDF value for an unknown wafer coordinate
const MissingCoord int16 = -32768

// FAR is the File Attributes Record
type FAR struct {
	CPUType uint8
	Version uint8
}

// NewFAR returns the attributes of a little-endian STDF v4 file
func NewFAR() *FAR {
	return &FAR{CPUType: 2, Version: 4}
}

func (r *FAR) Spec() *RecordSpec { return FARSpec }

func (r *FAR) Values() []codec.Value {
	return []codec.Value{codec.U1(r.CPUType), codec.U1(r.Version)}
}

// ATR is the Audit Trail Record
type ATR struct {
	ModTime uint32
	CmdLine string
}

func (r *ATR) Spec() *RecordSpec { return ATRSpec }

func (r *ATR) Values() []codec.Value {
	return []codec.Value{codec.U4(r.ModTime), codec.Cn(r.CmdLine)}
}

// PIR is the Part Information Record
type PIR struct {
	HeadNum uint8
	SiteNum uint8
}

func (r *PIR) Spec() *RecordSpec { return PIRSpec }

func (r *PIR) Values() []codec.Value {
	return []codec.Value{codec.U1(r.HeadNum), codec.U1(r.SiteNum)}
}

// PTR is the Parametric Test Record. Spec limits and format strings are
// never written.
type PTR struct {
	TestNum      uint32
	HeadNum      uint8
	SiteNum      uint8
	TestFlags    uint8
	ParmFlags    uint8
	Result       float32
	TestText     string
	AlarmID      string
	OptFlags     uint8
	ResScale     int8
	LoLimitScale int8
	HiLimitScale int8
	LoLimit      float32
	HiLimit      float32
	Units        string
}

// Failed reports whether TEST_FLG marks the test as failed
func (r *PTR) Failed() bool { return r.TestFlags&TestFlagFailed != 0 }

func (r *PTR) Spec() *RecordSpec { return PTRSpec }

func (r *PTR) Values() []codec.Value {
	return []codec.Value{
		codec.U4(r.TestNum),
		codec.U1(r.HeadNum),
		codec.U1(r.SiteNum),
		codec.B1(r.TestFlags),
		codec.B1(r.ParmFlags),
		codec.R4(r.Result),
		codec.Cn(r.TestText),
		codec.Cn(r.AlarmID),
		codec.B1(r.OptFlags),
		codec.I1(r.ResScale),
		codec.I1(r.LoLimitScale),
		codec.I1(r.HiLimitScale),
		codec.R4(r.LoLimit),
		codec.R4(r.HiLimit),
		codec.Cn(r.Units),
		codec.Absent(codec.TypeCn),
		codec.Absent(codec.TypeCn),
		codec.Absent(codec.TypeCn),
		codec.Absent(codec.TypeR4),
		codec.Absent(codec.TypeR4),
	}
}

// PRR is the Part Results Record
type PRR struct {
	HeadNum   uint8
	SiteNum   uint8
	PartFlags uint8
	NumTests  uint16
	HardBin   uint16
	SoftBin   uint16
	XCoord    int16
	YCoord    int16
	TestTime  uint32
	PartID    string
	PartText  string
	PartFix   []byte
}

// Failed reports whether PART_FLG marks the part as failed
func (r *PRR) Failed() bool { return r.PartFlags&PartFlagFailed != 0 }

func (r *PRR) Spec() *RecordSpec { return PRRSpec }

func (r *PRR) Values() []codec.Value {
	return []codec.Value{
		codec.U1(r.HeadNum),
		codec.U1(r.SiteNum),
		codec.B1(r.PartFlags),
		codec.U2(r.NumTests),
		codec.U2(r.HardBin),
		codec.U2(r.SoftBin),
		codec.I2(r.XCoord),
		codec.I2(r.YCoord),
		codec.U4(r.TestTime),
		codec.Cn(r.PartID),
		codec.Cn(r.PartText),
		codec.Bn(r.PartFix),
	}
}

// MRR is the Master Results Record
type MRR struct {
	FinishTime  uint32
	Disposition byte
	UserDesc    string
	ExcDesc     string
}

func (r *MRR) Spec() *RecordSpec { return MRRSpec }

func (r *MRR) Values() []codec.Value {
	disp := codec.Absent(codec.TypeC1)
	if r.Disposition != 0 {
		disp = codec.C1(r.Disposition)
	}
	return []codec.Value{
		codec.U4(r.FinishTime),
		disp,
		codec.Cn(r.UserDesc),
		codec.Cn(r.ExcDesc),
	}
}
