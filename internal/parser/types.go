package parser

import "time"

// SheetKind Sheet 类型
type SheetKind string

const (
	SheetKindCost     SheetKind = "cost"     // 造价清单
	SheetKindLabor    SheetKind = "labor"    // 人工数据
	SheetKindMaterial SheetKind = "material" // 材料数据
	SheetKindMachine  SheetKind = "machine"  // 机械数据
	SheetKindUnknown  SheetKind = "unknown"
)

// 造价清单字段
const (
	FieldSeq         = "seq"
	FieldCode        = "code"
	FieldDescription = "description"
	FieldUnit        = "unit"
	FieldQuantity    = "quantity"
	FieldMarketPrice = "market_price"
	FieldTotal       = "total"
)

// 人材机因子字段
const (
	FieldName          = "name"
	FieldSpecification = "specification"
	FieldCarbonFactor  = "carbon_factor"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string         `json:"sheetName"`
	Kind       SheetKind      `json:"kind"`
	Confidence float64        `json:"confidence"` // 置信度 0-1
	HeaderRow  int            `json:"headerRow"`  // 表头所在行（0 起）
	Columns    map[string]int `json:"columns"`    // 字段 -> 列索引
	Headers    []string       `json:"headers"`
}

// ParseResult 解析结果
type ParseResult struct {
	SheetName    string        `json:"sheetName"`
	Kind         SheetKind     `json:"kind"`
	Status       string        `json:"status"` // imported/skipped/error
	ImportedRows int           `json:"importedRows"`
	SkippedRows  int           `json:"skippedRows"`
	Errors       []string      `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// ImportReport 导入报告
type ImportReport struct {
	RunID          string        `json:"runId"`
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	ErrorSheets    int           `json:"errorSheets"`
	ImportedRows   int           `json:"importedRows"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
