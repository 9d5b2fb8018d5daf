package model

import "github.com/shopspring/decimal"

// Snapshot 一次解算所需的只读数据快照
type Snapshot struct {
	SheetID  int64
	Items    []CostItem // 按 ID 升序
	Labor    FactorTable
	Material FactorTable
	Machine  FactorTable
}

// SetTable 按类型设置参考表
func (s *Snapshot) SetTable(kind FactorKind, t FactorTable) {
	switch kind {
	case FactorLabor:
		s.Labor = t
	case FactorMaterial:
		s.Material = t
	case FactorMachine:
		s.Machine = t
	}
}

// EmissionRecord 单条清单项的碳排放因子解算结果
type EmissionRecord struct {
	Description    string          `json:"description"`
	LaborFactor    decimal.Decimal `json:"laborFactor"`
	MaterialFactor decimal.Decimal `json:"materialFactor"`
	MachineFactor  decimal.Decimal `json:"machineFactor"`
}

// Key 去重键：名称 + 三个因子
func (r EmissionRecord) Key() string {
	return r.Description + "\x00" +
		r.LaborFactor.String() + "\x00" +
		r.MaterialFactor.String() + "\x00" +
		r.MachineFactor.String()
}

// ItemEmission 清单项碳排放明细（含数量与排放量）
type ItemEmission struct {
	ItemID         int64           `json:"itemId"`
	Seq            string          `json:"seq"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	Unit           string          `json:"unit"`
	Quantity       string          `json:"quantity"`
	LaborFactor    decimal.Decimal `json:"laborFactor"`
	MaterialFactor decimal.Decimal `json:"materialFactor"`
	MachineFactor  decimal.Decimal `json:"machineFactor"`

	LaborEmission    decimal.Decimal `json:"laborEmission"`
	MaterialEmission decimal.Decimal `json:"materialEmission"`
	MachineEmission  decimal.Decimal `json:"machineEmission"`
	TotalEmission    decimal.Decimal `json:"totalEmission"`
	CarbonIndex      decimal.Decimal `json:"carbonIndex"` // 单位数量碳排放
}

// Key 去重键：序号、编码、名称、单位、数量及三个因子
func (e ItemEmission) Key() string {
	return e.Seq + "\x00" + e.Code + "\x00" + e.Description + "\x00" +
		e.Unit + "\x00" + e.Quantity + "\x00" +
		e.LaborFactor.String() + "\x00" +
		e.MaterialFactor.String() + "\x00" +
		e.MachineFactor.String()
}

// SheetReport 工作表碳排放汇总
type SheetReport struct {
	SheetID          int64           `json:"sheetId"`
	SheetName        string          `json:"sheetName"`
	ProjectType      string          `json:"projectType"` // 工程类型
	RoadType         string          `json:"roadType"`    // 道路类型
	Items            []ItemEmission  `json:"items"`
	TotalQuantity    decimal.Decimal `json:"totalQuantity"`
	LaborEmission    decimal.Decimal `json:"laborEmission"`
	MaterialEmission decimal.Decimal `json:"materialEmission"`
	MachineEmission  decimal.Decimal `json:"machineEmission"`
	TotalEmission    decimal.Decimal `json:"totalEmission"`
	CarbonIndex      decimal.Decimal `json:"carbonIndex"`
}
