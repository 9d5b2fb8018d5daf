package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// FactorKind 人材机因子表类型
type FactorKind string

const (
	FactorLabor    FactorKind = "labor"    // 人工
	FactorMaterial FactorKind = "material" // 材料
	FactorMachine  FactorKind = "machine"  // 机械
)

// FactorKinds 固定顺序：人工、材料、机械
var FactorKinds = []FactorKind{FactorLabor, FactorMaterial, FactorMachine}

// TableName 对应的数据库表名
func (k FactorKind) TableName() string {
	return string(k)
}

// SheetName 人材机数据库中对应的工作表名
func (k FactorKind) SheetName() string {
	switch k {
	case FactorLabor:
		return "人工数据"
	case FactorMaterial:
		return "材料数据"
	case FactorMachine:
		return "机械数据"
	}
	return ""
}

// Label 中文名称
func (k FactorKind) Label() string {
	switch k {
	case FactorLabor:
		return "人工"
	case FactorMaterial:
		return "材料"
	case FactorMachine:
		return "机械"
	}
	return string(k)
}

// ErrUnknownFactorKind 未知的因子表类型
var ErrUnknownFactorKind = errors.New("unknown factor kind")

// ParseFactorKind 解析因子表类型
func ParseFactorKind(s string) (FactorKind, error) {
	for _, k := range FactorKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFactorKind, s)
}

// FactorEntry 人材机碳排放因子条目
type FactorEntry struct {
	Code          string          `json:"code" validate:"required"`
	Name          string          `json:"name"`
	Specification string          `json:"specification"`
	Unit          string          `json:"unit"`
	Factor        decimal.Decimal `json:"factor"`
	RowNo         int             `json:"rowNo" validate:"gte=0"`
}

// FactorTable 编码到碳排放因子的映射（单张参考表）
type FactorTable map[string]decimal.Decimal

// NewFactorTable 由条目构造映射，重复编码以后者为准
func NewFactorTable(entries []FactorEntry) FactorTable {
	t := make(FactorTable, len(entries))
	for _, e := range entries {
		t[e.Code] = e.Factor
	}
	return t
}

// Lookup 查找因子，未匹配时返回 0
func (t FactorTable) Lookup(code string) decimal.Decimal {
	if f, ok := t[code]; ok {
		return f
	}
	return decimal.Zero
}
