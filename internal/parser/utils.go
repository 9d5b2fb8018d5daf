package parser

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名，去除空格和特殊字符
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", "")
	return whitespaceRe.ReplaceAllString(name, "")
}

// ParseSheetName 从工作表名称中解析工程类型和道路类型
// 格式: "工程类型 道路类型..."，第一个空白分隔的词为工程类型，其余拼接为道路类型
func ParseSheetName(sheetName string) (projectType, roadType string, ok bool) {
	fields := strings.Fields(sheetName)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], ""), true
}

// CellAt 安全读取单元格并去除首尾空白
func CellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
