package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"carbonref/internal/model"
)

// ErrHeaderNotFound 未找到包含全部必填列的表头行
var ErrHeaderNotFound = errors.New("header row not found")

// CostParser 造价清单解析器
type CostParser struct {
	file       *excelize.File
	recognizer *SheetRecognizer
}

// NewCostParser 创建造价清单解析器
func NewCostParser(file *excelize.File) *CostParser {
	return &CostParser{
		file:       file,
		recognizer: NewSheetRecognizer(),
	}
}

// ParseSheet 解析造价清单 Sheet
func (p *CostParser) ParseSheet(sheetName string) ([]model.CostItem, SheetRecognitionResult, error) {
	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, SheetRecognitionResult{SheetName: sheetName, Kind: SheetKindUnknown}, fmt.Errorf("failed to read sheet: %w", err)
	}

	rec := p.recognizer.Recognize(sheetName, rows)
	if rec.Kind != SheetKindCost {
		return nil, rec, fmt.Errorf("%w: sheet %q", ErrHeaderNotFound, sheetName)
	}

	return ParseCostRows(rows, rec), rec, nil
}

// ParseCostRows 解析表头之后的数据行；必填列全部为空的行被跳过
func ParseCostRows(rows [][]string, rec SheetRecognitionResult) []model.CostItem {
	var items []model.CostItem
	for rowIdx := rec.HeaderRow + 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		cell := func(field string) string {
			return CellAt(row, rec.Columns[field])
		}

		item := model.CostItem{
			Seq:         cell(FieldSeq),
			Description: cell(FieldDescription),
			Unit:        cell(FieldUnit),
			Quantity:    cell(FieldQuantity),
			MarketPrice: cell(FieldMarketPrice),
			Total:       cell(FieldTotal),
			RowNo:       rowIdx + 1,
		}
		code := cell(FieldCode)
		if code != "" {
			item.Code = model.StrPtr(code)
		}

		if code == "" && strings.Join([]string{
			item.Seq, item.Description, item.Unit, item.Quantity, item.MarketPrice, item.Total,
		}, "") == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
