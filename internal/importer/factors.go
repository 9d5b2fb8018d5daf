package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"carbonref/internal/model"
	"carbonref/internal/parser"
)

// importFactors 导入人材机数据库：三张因子表在同一事务中整体替换
// 任一表校验失败则不写入任何数据
func (c *Coordinator) importFactors(ctx *ImportContext, sheetList []string) error {
	present := make(map[string]bool, len(sheetList))
	for _, name := range sheetList {
		present[name] = true
	}

	factorParser := parser.NewFactorParser(ctx.File)
	tables := make(map[model.FactorKind][]model.FactorEntry, len(model.FactorKinds))
	results := make(map[model.FactorKind]parser.ParseResult, len(model.FactorKinds))
	recs := make(map[model.FactorKind]parser.SheetRecognitionResult, len(model.FactorKinds))

	for _, kind := range model.FactorKinds {
		sheetName := kind.SheetName()
		start := time.Now()

		if !present[sheetName] {
			c.recordSheetResult(ctx, parser.ParseResult{
				SheetName: sheetName,
				Kind:      parser.SheetKindUnknown,
				Status:    "skipped",
				Errors:    []string{"工作簿中不存在该 Sheet"},
			}, parser.SheetRecognitionResult{HeaderRow: -1}, 0)
			c.sendProgress(ctx, ProgressEvent{
				Type:    "warning",
				Message: fmt.Sprintf("未找到 Sheet: %s", sheetName),
			})
			continue
		}

		c.sendProgress(ctx, ProgressEvent{
			Type:    "sheet_start",
			Message: fmt.Sprintf("正在解析 Sheet: %s", sheetName),
			Data: map[string]string{
				"sheet_name": sheetName,
			},
		})

		entries, rec, err := factorParser.ParseSheet(sheetName)
		if err != nil {
			c.recordSheetResult(ctx, parser.ParseResult{
				SheetName: sheetName,
				Kind:      rec.Kind,
				Status:    "skipped",
				Errors:    []string{err.Error()},
				Duration:  time.Since(start),
			}, rec, 0)
			c.sendProgress(ctx, ProgressEvent{
				Type:    "warning",
				Message: fmt.Sprintf("跳过 Sheet \"%s\": %v", sheetName, err),
			})
			continue
		}

		if k, ok := parser.FactorKindOf(rec.Kind); !ok || k != kind {
			return fmt.Errorf("%w: Sheet \"%s\" 识别为 %s", ErrInvalidFactor, sheetName, rec.Kind)
		}

		if err := ValidateFactorEntries(c.validate, kind, entries); err != nil {
			c.recordSheetResult(ctx, parser.ParseResult{
				SheetName: sheetName,
				Kind:      rec.Kind,
				Status:    "error",
				Errors:    []string{err.Error()},
				Duration:  time.Since(start),
			}, rec, len(entries))
			return err
		}

		tables[kind] = entries
		recs[kind] = rec
		results[kind] = parser.ParseResult{
			SheetName:    sheetName,
			Kind:         rec.Kind,
			Status:       "imported",
			ImportedRows: len(entries),
			Duration:     time.Since(start),
		}
	}

	if len(tables) == 0 {
		return fmt.Errorf("%w: 未找到有效的人材机数据", ErrNothingImported)
	}

	if err := c.store.ReplaceFactors(tables); err != nil {
		return fmt.Errorf("写入人材机数据失败: %w", err)
	}

	for _, kind := range model.FactorKinds {
		res, ok := results[kind]
		if !ok {
			continue
		}
		c.recordSheetResult(ctx, res, recs[kind], res.ImportedRows)
		c.sendProgress(ctx, ProgressEvent{
			Type:    "sheet_done",
			Message: fmt.Sprintf("%s导入成功: %d 条", kind.Label(), res.ImportedRows),
			Data: map[string]interface{}{
				"sheet_name":    res.SheetName,
				"kind":          kind,
				"imported_rows": res.ImportedRows,
			},
		})
	}
	return nil
}

// ValidateFactorEntries 校验因子条目并拒绝重复编码
func ValidateFactorEntries(validate *validator.Validate, kind model.FactorKind, entries []model.FactorEntry) error {
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if err := validate.Struct(e); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return fmt.Errorf("%w: %s 第 %d 行字段 %s 校验失败 (%s)", ErrInvalidFactor, kind.Label(), e.RowNo, verrs[0].Field(), verrs[0].Tag())
			}
			return fmt.Errorf("%w: %v", ErrInvalidFactor, err)
		}
		if first, dup := seen[e.Code]; dup {
			return fmt.Errorf("%w: %s 编码 %q 重复 (第 %d 行与第 %d 行)", ErrDuplicateCode, kind.Label(), e.Code, first, e.RowNo)
		}
		seen[e.Code] = e.RowNo
	}
	return nil
}
