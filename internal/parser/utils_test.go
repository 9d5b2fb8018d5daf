package parser

import "testing"

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: " 编码 ", want: "编码"},
		{in: "名称及\n规格", want: "名称及规格"},
		{in: "单位碳排放\t因子", want: "单位碳排放因子"},
		{in: "市 场  价", want: "市场价"},
	}
	for _, tc := range cases {
		if got := NormalizeColumnName(tc.in); got != tc.want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseSheetName(t *testing.T) {
	t.Parallel()

	project, road, ok := ParseSheetName("道路工程 主干路 62 m2")
	if !ok {
		t.Fatalf("expected ok")
	}
	if project != "道路工程" || road != "主干路62m2" {
		t.Fatalf("unexpected parse: %q %q", project, road)
	}

	project, road, ok = ParseSheetName("  交通工程   次干路59cm  ")
	if !ok || project != "交通工程" || road != "次干路59cm" {
		t.Fatalf("unexpected parse: %q %q %v", project, road, ok)
	}
}

func TestParseSheetName_SingleToken(t *testing.T) {
	t.Parallel()

	if _, _, ok := ParseSheetName("汇总"); ok {
		t.Fatalf("single token should not parse")
	}
	if _, _, ok := ParseSheetName("   "); ok {
		t.Fatalf("blank should not parse")
	}
}

func TestCellAt(t *testing.T) {
	t.Parallel()

	row := []string{" a ", "b"}
	if CellAt(row, 0) != "a" || CellAt(row, 1) != "b" || CellAt(row, 2) != "" || CellAt(row, -1) != "" {
		t.Fatalf("unexpected CellAt results")
	}
}
