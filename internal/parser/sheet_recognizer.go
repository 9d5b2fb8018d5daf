package parser

import (
	"strings"
)

// maxHeaderScan 表头最多出现在前若干行
const maxHeaderScan = 30

// SheetRecognizer Sheet 类型识别器
type SheetRecognizer struct {
	costMapper   *FieldMapper
	factorMapper *FieldMapper
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{
		costMapper:   NewFieldMapper(CostFields),
		factorMapper: NewFieldMapper(FactorFields),
	}
}

// KindBySheetName 人材机数据库中的固定工作表名
func KindBySheetName(sheetName string) SheetKind {
	switch strings.TrimSpace(sheetName) {
	case "人工数据":
		return SheetKindLabor
	case "材料数据":
		return SheetKindMaterial
	case "机械数据":
		return SheetKindMachine
	}
	return SheetKindUnknown
}

// Recognize 识别 Sheet 类型并定位表头行
// 人材机工作表按名称识别，其余按造价清单表头识别
func (r *SheetRecognizer) Recognize(sheetName string, rows [][]string) SheetRecognitionResult {
	kind := KindBySheetName(sheetName)
	mapper := r.costMapper
	if kind == SheetKindUnknown {
		kind = SheetKindCost
	} else {
		mapper = r.factorMapper
	}

	best := 0
	limit := len(rows)
	if limit > maxHeaderScan {
		limit = maxHeaderScan
	}

	for idx := 0; idx < limit; idx++ {
		mapping := mapper.Map(rows[idx])
		if len(mapping) > best {
			best = len(mapping)
		}
		if len(mapper.Missing(mapping)) == 0 {
			return SheetRecognitionResult{
				SheetName:  sheetName,
				Kind:       kind,
				Confidence: 1,
				HeaderRow:  idx,
				Columns:    mapping,
				Headers:    rows[idx],
			}
		}
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		Kind:       SheetKindUnknown,
		Confidence: float64(best) / float64(mapper.RequiredCount()),
		HeaderRow:  -1,
	}
}
