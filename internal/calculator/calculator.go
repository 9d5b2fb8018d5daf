package calculator

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"carbonref/internal/model"
	"carbonref/internal/parser"
	"carbonref/internal/service/emission"
)

// SheetLookup 工作表元信息查询
type SheetLookup interface {
	GetSheet(ctx context.Context, id int64) (*model.Sheet, error)
}

// Calculator 碳排放量计算器
type Calculator struct {
	resolver *emission.Resolver
	sheets   SheetLookup
}

// NewCalculator 创建计算器
func NewCalculator(resolver *emission.Resolver, sheets SheetLookup) *Calculator {
	return &Calculator{
		resolver: resolver,
		sheets:   sheets,
	}
}

// Report 计算工作表的碳排放明细与汇总
func (c *Calculator) Report(ctx context.Context, sheetID int64) (*model.SheetReport, error) {
	sheet, err := c.sheets.GetSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	items, err := c.resolver.ResolveItems(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i] = Breakdown(items[i])
	}

	report := Summarize(items)
	report.SheetID = sheet.ID
	report.SheetName = sheet.Name
	report.ProjectType, report.RoadType, _ = parser.ParseSheetName(sheet.Name)
	return report, nil
}

// Breakdown 计算单项排放量：因子 × 数量；碳排放指数 = 小计 / 数量
func Breakdown(e model.ItemEmission) model.ItemEmission {
	qty := ParseQuantity(e.Quantity)

	e.LaborEmission = e.LaborFactor.Mul(qty)
	e.MaterialEmission = e.MaterialFactor.Mul(qty)
	e.MachineEmission = e.MachineFactor.Mul(qty)
	e.TotalEmission = e.LaborEmission.Add(e.MaterialEmission).Add(e.MachineEmission)
	e.CarbonIndex = safeDiv(e.TotalEmission, qty)
	return e
}

// Summarize 汇总各项排放量
func Summarize(items []model.ItemEmission) *model.SheetReport {
	r := &model.SheetReport{
		Items:            items,
		TotalQuantity:    decimal.Zero,
		LaborEmission:    decimal.Zero,
		MaterialEmission: decimal.Zero,
		MachineEmission:  decimal.Zero,
	}
	if r.Items == nil {
		r.Items = []model.ItemEmission{}
	}

	for _, it := range items {
		r.TotalQuantity = r.TotalQuantity.Add(ParseQuantity(it.Quantity))
		r.LaborEmission = r.LaborEmission.Add(it.LaborEmission)
		r.MaterialEmission = r.MaterialEmission.Add(it.MaterialEmission)
		r.MachineEmission = r.MachineEmission.Add(it.MachineEmission)
	}
	r.TotalEmission = r.LaborEmission.Add(r.MaterialEmission).Add(r.MachineEmission)
	r.CarbonIndex = safeDiv(r.TotalEmission, r.TotalQuantity)
	return r
}

// ParseQuantity 解析数量文本，无法解析时为 0
func ParseQuantity(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	return a.Div(b)
}

// FormatEmission 排放量保留 4 位小数
func FormatEmission(v decimal.Decimal) string {
	return v.StringFixed(4)
}

// FormatIndex 碳排放指数保留 2 位小数
func FormatIndex(v decimal.Decimal) string {
	return v.StringFixed(2)
}
