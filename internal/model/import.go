package model

import "time"

// ImportKind 导入文件类型
type ImportKind string

const (
	ImportKindCosts   ImportKind = "costs"   // 造价清单
	ImportKindFactors ImportKind = "factors" // 人材机数据库
)

// ImportLog 导入日志
type ImportLog struct {
	ID             int64      `json:"id"`
	RunID          string     `json:"runId"`
	Kind           ImportKind `json:"kind"`
	Filename       string     `json:"filename"`
	FileSize       int64      `json:"fileSize"`
	TotalSheets    int        `json:"totalSheets"`
	ImportedSheets int        `json:"importedSheets"`
	SkippedSheets  int        `json:"skippedSheets"`
	ImportedRows   int        `json:"importedRows"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"errorMessage"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}
