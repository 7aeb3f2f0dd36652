package assemble

// mirSource maps one MIR field to the metadata columns that feed it. The
// first non-blank column wins; value is used when none is set.
type mirSource struct {
	field   string
	columns []string
	value   string
}

// mirSources is applied to the first device row, in order
var mirSources = []mirSource{
	{field: "MODE_COD", columns: []string{"TEST_MODE"}, value: "P"},
	{field: "LOT_ID", columns: []string{"LOT_ID"}, value: "UNKNOWN"},
	{field: "PART_TYP", columns: []string{"PRODUCT_PART"}},
	{field: "NODE_NAM", columns: []string{"Test_Location"}},
	{field: "TSTR_TYP", columns: []string{"TESTER_TYPE", "TESTER"}},
	{field: "JOB_NAM", columns: []string{"TEST_PROGRAM", "Test_Name"}},
	{field: "JOB_REV", columns: []string{"REVISION"}},
	{field: "OPER_NAM", columns: []string{"SFIS_State"}},
	{field: "EXEC_TYP", columns: []string{"Model"}},
	{field: "EXEC_VER", columns: []string{"TESTER"}},
	{field: "TEST_COD", columns: []string{"Test_Name"}},
	{field: "TST_TEMP", columns: []string{"Station"}},
	{field: "USER_TXT", value: "Generated via csv2stdf"},
	{field: "PKG_TYP", columns: []string{"Package_Type"}},
	{field: "FAMLY_ID", columns: []string{"PRODUCT_PART"}},
	{field: "DATE_COD", columns: []string{"DATE"}},
	{field: "FACIL_ID", columns: []string{"Test_Location"}},
	{field: "FLOOR_ID", columns: []string{"Station"}},
	{field: "PROC_ID", columns: []string{"TEST_PROGRAM"}},
	{field: "OPER_FRQ", columns: []string{"TEST_MODE"}},
	{field: "FLOW_ID", columns: []string{"Test_Type"}},
	{field: "SETUP_ID", columns: []string{"Test_Location"}},
	{field: "SERL_NUM", columns: []string{"TESTER"}},
}

// Device metadata columns read by the assembler
var (
	headColumns     = []string{"HEAD_NUM"}
	siteColumns     = []string{"SITE_NUM"}
	hardBinColumns  = []string{"HARD_BIN", "Hard Bin"}
	softBinColumns  = []string{"SOFT_BIN", "Soft Bin", "Error Code"}
	xCoordColumns   = []string{"X_COORD", "X_CID"}
	yCoordColumns   = []string{"Y_COORD", "Y_CID"}
	testTimeColumns = []string{"Test Time"}
	partIDColumns   = []string{"PART_ID", "DMC_string", "IC_serial_CID", "IC_DEVICE_ID_CID", "product_id_CID", "Test_CID"}
)

const (
	alarmColumn    = "Error Code"
	partTextColumn = "PRODUCT_PART"
	dateColumn     = "DATE"
)

// dateLayouts are the accepted DATE formats, interpreted as UTC
var dateLayouts = []string{"20060102_150405", "2006-01-02 15:04:05"}

const (
	passBin = 1
	failBin = 255
)
