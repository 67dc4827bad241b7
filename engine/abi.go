package engine

import "github.com/tetratelabs/wazero/api"

// Guest exports.
const (
	ExportMemory = "memory"
	ExportAlloc  = "fastsheet_alloc"
	ExportDecode = "fastsheet_decode"
	ExportInit   = "_initialize"
)

// HostModule is the import module the guest writes its result through.
const HostModule = "fastsheet"

// Host imports.
const (
	FuncSetWidth     = "set_width"
	FuncSetHeight    = "set_height"
	FuncBeginRow     = "begin_row"
	FuncPushEmpty    = "push_empty"
	FuncPushString   = "push_string"
	FuncPushNumber   = "push_number"
	FuncPushBool     = "push_bool"
	FuncPushDatetime = "push_datetime"
	FuncReportError  = "report_error"
)

// Status is the result code returned by fastsheet_decode.
type Status uint32

const (
	StatusOK            Status = 0
	StatusFileNotFound  Status = 1
	StatusSheetNotFound Status = 2
	StatusDecodeError   Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFileNotFound:
		return "file not found"
	case StatusSheetNotFound:
		return "sheet not found"
	case StatusDecodeError:
		return "decode error"
	default:
		return "unknown status"
	}
}

// GuestRoot is where the directory holding the decoded file is mounted.
const GuestRoot = "/work"

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f64 = api.ValueTypeF64
)

// signature is a core function type.
type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

var guestExports = map[string]signature{
	ExportAlloc:  {params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
	ExportDecode: {params: []api.ValueType{i32, i32, i32, i32, i32}, results: []api.ValueType{i32}},
}

func (s signature) matches(def api.FunctionDefinition) bool {
	return equalTypes(s.params, def.ParamTypes()) && equalTypes(s.results, def.ResultTypes())
}

func equalTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
