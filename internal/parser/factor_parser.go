package parser

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"carbonref/internal/model"
)

// DefaultCarbonFactor 因子单元格为空或无法解析时的取值
var DefaultCarbonFactor = decimal.NewFromInt(1)

// FactorParser 人材机数据库解析器
type FactorParser struct {
	file       *excelize.File
	recognizer *SheetRecognizer
}

// NewFactorParser 创建人材机解析器
func NewFactorParser(file *excelize.File) *FactorParser {
	return &FactorParser{
		file:       file,
		recognizer: NewSheetRecognizer(),
	}
}

// ParseSheet 解析单张人材机 Sheet
func (p *FactorParser) ParseSheet(sheetName string) ([]model.FactorEntry, SheetRecognitionResult, error) {
	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, SheetRecognitionResult{SheetName: sheetName, Kind: SheetKindUnknown}, fmt.Errorf("failed to read sheet: %w", err)
	}

	rec := p.recognizer.Recognize(sheetName, rows)
	switch rec.Kind {
	case SheetKindLabor, SheetKindMaterial, SheetKindMachine:
	default:
		return nil, rec, fmt.Errorf("%w: sheet %q", ErrHeaderNotFound, sheetName)
	}

	return ParseFactorRows(rows, rec), rec, nil
}

// ParseFactorRows 解析表头之后的数据行；编码为空的行被跳过
func ParseFactorRows(rows [][]string, rec SheetRecognitionResult) []model.FactorEntry {
	var entries []model.FactorEntry
	for rowIdx := rec.HeaderRow + 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		code := CellAt(row, rec.Columns[FieldCode])
		if code == "" {
			continue
		}

		factor, err := decimal.NewFromString(CellAt(row, rec.Columns[FieldCarbonFactor]))
		if err != nil {
			factor = DefaultCarbonFactor
		}

		entries = append(entries, model.FactorEntry{
			Code:          code,
			Name:          CellAt(row, rec.Columns[FieldName]),
			Specification: CellAt(row, rec.Columns[FieldSpecification]),
			Unit:          CellAt(row, rec.Columns[FieldUnit]),
			Factor:        factor,
			RowNo:         rowIdx + 1,
		})
	}
	return entries
}

// FactorKindOf Sheet 类型对应的因子表
func FactorKindOf(kind SheetKind) (model.FactorKind, bool) {
	switch kind {
	case SheetKindLabor:
		return model.FactorLabor, true
	case SheetKindMaterial:
		return model.FactorMaterial, true
	case SheetKindMachine:
		return model.FactorMachine, true
	}
	return "", false
}
