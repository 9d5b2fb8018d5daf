package parser

import "regexp"

// FieldSpec 表头字段定义
type FieldSpec struct {
	Field    string
	Pattern  string // 匹配规范化后的列名
	Label    string
	Required bool
}

// CostFields 造价清单表头：序号、编码、名称及规格、单位、数量、市场价、合计
var CostFields = []FieldSpec{
	{Field: FieldSeq, Pattern: `^序号$`, Label: "序号", Required: true},
	{Field: FieldCode, Pattern: `^(项目)?编码$`, Label: "编码", Required: true},
	{Field: FieldDescription, Pattern: `^名称及规格$|^名称规格$`, Label: "名称及规格", Required: true},
	{Field: FieldUnit, Pattern: `^单位$`, Label: "单位", Required: true},
	{Field: FieldQuantity, Pattern: `^数量$|^工程量$`, Label: "数量", Required: true},
	{Field: FieldMarketPrice, Pattern: `^市场价`, Label: "市场价", Required: true},
	{Field: FieldTotal, Pattern: `^合计`, Label: "合计", Required: true},
}

// FactorFields 人材机数据库表头：编码、名称、规格型号、单位、单位碳排放因子
var FactorFields = []FieldSpec{
	{Field: FieldCode, Pattern: `^编码$`, Label: "编码", Required: true},
	{Field: FieldName, Pattern: `^名称$`, Label: "名称", Required: true},
	{Field: FieldSpecification, Pattern: `^规格(型号)?$`, Label: "规格型号", Required: true},
	{Field: FieldUnit, Pattern: `^单位$`, Label: "单位", Required: true},
	{Field: FieldCarbonFactor, Pattern: `碳排放因子`, Label: "单位碳排放因子", Required: true},
}

// FieldMapper 字段映射器
type FieldMapper struct {
	specs    []FieldSpec
	patterns []*regexp.Regexp
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper(specs []FieldSpec) *FieldMapper {
	m := &FieldMapper{specs: specs}
	for _, s := range specs {
		m.patterns = append(m.patterns, regexp.MustCompile(s.Pattern))
	}
	return m
}

// Map 将表头映射为 字段 -> 列索引；每列最多归属一个字段，同一字段取第一列
func (m *FieldMapper) Map(headers []string) map[string]int {
	mapping := make(map[string]int, len(m.specs))
	used := make(map[int]bool, len(headers))

	for i, spec := range m.specs {
		for idx, h := range headers {
			if used[idx] {
				continue
			}
			col := NormalizeColumnName(h)
			if col == "" {
				continue
			}
			if m.patterns[i].MatchString(col) {
				mapping[spec.Field] = idx
				used[idx] = true
				break
			}
		}
	}
	return mapping
}

// Missing 返回未映射到的必填字段名称
func (m *FieldMapper) Missing(mapping map[string]int) []string {
	var missing []string
	for _, spec := range m.specs {
		if !spec.Required {
			continue
		}
		if _, ok := mapping[spec.Field]; !ok {
			missing = append(missing, spec.Label)
		}
	}
	return missing
}

// RequiredCount 必填字段数量
func (m *FieldMapper) RequiredCount() int {
	n := 0
	for _, spec := range m.specs {
		if spec.Required {
			n++
		}
	}
	return n
}
