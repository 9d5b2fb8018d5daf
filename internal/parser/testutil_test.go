package parser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// sheetData 保持工作表插入顺序
type sheetData struct {
	name string
	rows [][]string
}

func newWorkbook(t *testing.T, sheets ...sheetData) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			t.Fatalf("new sheet %s: %v", sh.name, err)
		}
		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sh.name, cell, &values); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	return f
}

var costHeader = []string{"序号", "编码", "名称及规格", "单位", "数量", "市场价", "合计"}

var factorHeader = []string{"编码", "名称", "规格型号", "单位", "单位碳排放因子"}
