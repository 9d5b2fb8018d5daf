package model

import "time"

// Sheet 已导入的造价工作表
type Sheet struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProjectType string `json:"projectType,omitempty"` // 工程类型，由表名解析
	RoadType    string `json:"roadType,omitempty"`    // 道路类型，由表名解析
	ItemCount   int    `json:"itemCount"`
}

// SheetMeta Sheet 元信息（导入追溯）
type SheetMeta struct {
	ID           int64     `json:"id"`
	SheetName    string    `json:"sheetName"`
	SheetKind    string    `json:"sheetKind"` // cost/labor/material/machine
	HeaderRow    int       `json:"headerRow"`
	TotalRows    int       `json:"totalRows"`
	ImportedRows int       `json:"importedRows"`
	ColumnsJSON  string    `json:"columnsJson"`
	Status       string    `json:"status"` // imported/skipped/error
	ErrorMessage string    `json:"errorMessage"`
	ImportLogID  *int64    `json:"importLogId"`
	SourceFile   string    `json:"sourceFile"`
	CreatedAt    time.Time `json:"createdAt"`
}
