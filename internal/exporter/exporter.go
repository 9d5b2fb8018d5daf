package exporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"carbonref/internal/model"
)

const (
	SummarySheet = "汇总"
	DetailSheet  = "明细"
)

var summaryHeaders = []string{
	"工作表", "工程类型", "道路类型", "工程量合计",
	"人工碳排放", "材料碳排放", "机械碳排放", "碳排放合计", "碳排放指标",
}

var detailHeaders = []string{
	"序号", "编码", "名称及规格", "单位", "数量",
	"人工因子", "材料因子", "机械因子",
	"人工碳排放", "材料碳排放", "机械碳排放", "碳排放合计", "碳排放指标",
}

// ReportSource 工作表碳排放报告来源
type ReportSource interface {
	Report(ctx context.Context, sheetID int64) (*model.SheetReport, error)
}

// Exporter 碳排放报告导出器
type Exporter struct {
	reports ReportSource
}

// NewExporter 创建导出器
func NewExporter(reports ReportSource) *Exporter {
	return &Exporter{reports: reports}
}

// ExportOptions 导出选项
type ExportOptions struct {
	SheetID  int64
	Progress ProgressFunc
}

// Export 计算报告并生成工作簿
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*excelize.File, *model.SheetReport, error) {
	reportProgress(opts.Progress, 5, "计算碳排放")
	report, err := e.reports.Report(ctx, opts.SheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("计算碳排放失败: %w", err)
	}

	f, err := WriteReport(report, opts.Progress)
	if err != nil {
		return nil, nil, err
	}
	return f, report, nil
}

// WriteReport 将报告写入新工作簿：汇总 + 明细
func WriteReport(report *model.SheetReport, progress ProgressFunc) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(DetailSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2EFDA"}},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("创建样式失败: %w", err)
	}

	reportProgress(progress, 20, "写入汇总")
	if err := writeSummary(f, report, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 30, "写入明细")
	if err := writeDetail(f, report, headerStyle, progress); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "导出完成")
	return f, nil
}

func writeSummary(f *excelize.File, r *model.SheetReport, headerStyle int) error {
	if err := writeRow(f, SummarySheet, 1, toRow(summaryHeaders)); err != nil {
		return err
	}
	if err := styleHeader(f, SummarySheet, len(summaryHeaders), headerStyle); err != nil {
		return err
	}

	row := []interface{}{
		r.SheetName,
		r.ProjectType,
		r.RoadType,
		num(r.TotalQuantity, 4),
		num(r.LaborEmission, 4),
		num(r.MaterialEmission, 4),
		num(r.MachineEmission, 4),
		num(r.TotalEmission, 4),
		num(r.CarbonIndex, 2),
	}
	if err := writeRow(f, SummarySheet, 2, row); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", lastCol(len(summaryHeaders)), 16)
}

func writeDetail(f *excelize.File, r *model.SheetReport, headerStyle int, progress ProgressFunc) error {
	if err := writeRow(f, DetailSheet, 1, toRow(detailHeaders)); err != nil {
		return err
	}
	if err := styleHeader(f, DetailSheet, len(detailHeaders), headerStyle); err != nil {
		return err
	}

	total := len(r.Items)
	for i, it := range r.Items {
		row := []interface{}{
			it.Seq,
			it.Code,
			it.Description,
			it.Unit,
			it.Quantity,
			num(it.LaborFactor, 4),
			num(it.MaterialFactor, 4),
			num(it.MachineFactor, 4),
			num(it.LaborEmission, 4),
			num(it.MaterialEmission, 4),
			num(it.MachineEmission, 4),
			num(it.TotalEmission, 4),
			num(it.CarbonIndex, 2),
		}
		if err := writeRow(f, DetailSheet, i+2, row); err != nil {
			return err
		}
		if total > 0 && (i+1)%200 == 0 {
			reportProgress(progress, 30+(i+1)*65/total, fmt.Sprintf("写入明细 %d/%d", i+1, total))
		}
	}

	if err := f.SetColWidth(DetailSheet, "C", "C", 36); err != nil {
		return err
	}
	return f.SetColWidth(DetailSheet, "F", lastCol(len(detailHeaders)), 14)
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("写入 %s 第 %d 行失败: %w", sheet, rowNo, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	return f.SetCellStyle(sheet, "A1", lastCol(cols)+"1", style)
}

func lastCol(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func toRow(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func num(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}

// BuildFilename 导出文件名：<工作表>_碳排放_<日期>.xlsx
func BuildFilename(report *model.SheetReport, now time.Time) string {
	name := strings.TrimSpace(report.SheetName)
	if name == "" {
		name = fmt.Sprintf("sheet%d", report.SheetID)
	}
	name = strings.NewReplacer("/", "_", "\\", "_", " ", "").Replace(name)
	return fmt.Sprintf("%s_碳排放_%s.xlsx", name, now.Format("20060102"))
}
