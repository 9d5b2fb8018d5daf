package model

// CostItem 造价清单条目（对应导入表格中的一行）
type CostItem struct {
	ID          int64   `json:"id"`
	SheetID     int64   `json:"sheetId"`
	Seq         string  `json:"seq"`         // 序号
	Code        *string `json:"code"`        // 编码，可为空
	Description string  `json:"description"` // 名称及规格
	Unit        string  `json:"unit"`        // 单位
	Quantity    string  `json:"quantity"`    // 数量（原始文本）
	MarketPrice string  `json:"marketPrice"` // 市场价
	Total       string  `json:"total"`       // 合计
	RowNo       int     `json:"rowNo"`       // 源表行号
}

// CodeValue 返回编码（空指针视为空串）
func (c *CostItem) CodeValue() string {
	if c.Code == nil {
		return ""
	}
	return *c.Code
}

// HasCode 编码非 NULL 且非空串才参与碳排放因子匹配，与 SQL 条件 code != '' 一致
func (c *CostItem) HasCode() bool {
	return c.CodeValue() != ""
}

// StrPtr 便于构造可空编码
func StrPtr(s string) *string {
	return &s
}
