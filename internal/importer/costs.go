package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"carbonref/internal/parser"
)

// importCosts 导入造价清单工作簿，每个可识别的 Sheet 对应一张工作表
func (c *Coordinator) importCosts(ctx *ImportContext, sheetList []string) error {
	costParser := parser.NewCostParser(ctx.File)

	for _, sheetName := range sheetList {
		c.processCostSheet(ctx, costParser, sheetName)
	}

	if ctx.Report.ImportedSheets == 0 {
		return fmt.Errorf("%w: 未找到有效的造价清单", ErrNothingImported)
	}

	if ctx.Opts.UpdateCurrentSheet && ctx.FirstSheetID > 0 {
		if err := c.store.SetCurrentSheetID(ctx.FirstSheetID); err != nil {
			c.sendProgress(ctx, ProgressEvent{
				Type:    "warning",
				Message: fmt.Sprintf("更新当前工作表失败: %v", err),
			})
		}
	}
	return nil
}

// processCostSheet 处理单个造价清单 Sheet
func (c *Coordinator) processCostSheet(ctx *ImportContext, costParser *parser.CostParser, sheetName string) {
	sheetStartTime := time.Now()

	c.sendProgress(ctx, ProgressEvent{
		Type:    "sheet_start",
		Message: fmt.Sprintf("正在解析 Sheet: %s", sheetName),
		Data: map[string]string{
			"sheet_name": sheetName,
		},
	})

	items, rec, err := costParser.ParseSheet(sheetName)
	if err != nil {
		status := "error"
		if errors.Is(err, parser.ErrHeaderNotFound) {
			status = "skipped"
		}
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			Kind:      rec.Kind,
			Status:    status,
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStartTime),
		}, rec, 0)
		c.sendProgress(ctx, ProgressEvent{
			Type:    "warning",
			Message: fmt.Sprintf("跳过 Sheet \"%s\": 未找到造价清单表头 (置信度: %.2f)", sheetName, rec.Confidence),
		})
		return
	}

	sheetID, created, err := c.store.EnsureSheet(sheetName)
	if err != nil {
		c.failSheet(ctx, sheetName, rec, len(items), sheetStartTime, err)
		return
	}

	if !created && ctx.Opts.ClearExisting {
		err = c.store.ReplaceCostItems(sheetID, items)
	} else {
		err = c.store.BatchInsertCostItems(sheetID, items)
	}
	if err != nil {
		c.failSheet(ctx, sheetName, rec, len(items), sheetStartTime, fmt.Errorf("写入清单失败: %w", err))
		return
	}

	if ctx.FirstSheetID == 0 {
		ctx.FirstSheetID = sheetID
	}

	c.recordSheetResult(ctx, parser.ParseResult{
		SheetName:    sheetName,
		Kind:         parser.SheetKindCost,
		Status:       "imported",
		ImportedRows: len(items),
		Duration:     time.Since(sheetStartTime),
	}, rec, len(items))

	c.log.WithFields(logrus.Fields{
		"run_id":   ctx.RunID,
		"sheet":    sheetName,
		"sheet_id": sheetID,
		"rows":     len(items),
	}).Debug("cost sheet imported")

	c.sendProgress(ctx, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 导入成功: %d 行", sheetName, len(items)),
		Data: map[string]interface{}{
			"sheet_name":    sheetName,
			"sheet_id":      sheetID,
			"imported_rows": len(items),
		},
	})
}

func (c *Coordinator) failSheet(ctx *ImportContext, sheetName string, rec parser.SheetRecognitionResult, rows int, start time.Time, err error) {
	c.recordSheetResult(ctx, parser.ParseResult{
		SheetName:   sheetName,
		Kind:        rec.Kind,
		Status:      "error",
		SkippedRows: rows,
		Errors:      []string{err.Error()},
		Duration:    time.Since(start),
	}, rec, rows)
	c.sendProgress(ctx, ProgressEvent{
		Type:    "warning",
		Message: fmt.Sprintf("Sheet \"%s\" 导入失败: %v", sheetName, err),
	})
}
