package importer

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"carbonref/internal/store"
)

type sheetData struct {
	name string
	rows [][]string
}

var costHeader = []string{"序号", "编码", "名称及规格", "单位", "数量", "市场价", "合计"}

var factorHeader = []string{"编码", "名称", "规格型号", "单位", "单位碳排放因子"}

// writeWorkbook 在临时目录生成 xlsx 文件并返回路径
func writeWorkbook(t *testing.T, filename string, sheets ...sheetData) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			t.Fatalf("new sheet %s: %v", sh.name, err)
		}
		for r, row := range sh.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sh.name, cell, &values); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), filename)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, _ := newTestStoreAt(t)
	return st
}

// newTestStoreAt 同 newTestStore，并返回数据库文件路径
func newTestStoreAt(t *testing.T) (*store.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "carbonref.db")
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func newTestCoordinator(st *store.Store) *Coordinator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewCoordinator(st, log)
}
