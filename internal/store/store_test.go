package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"carbonref/internal/model"
	"carbonref/internal/service/emission"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "data", "carbonref.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedSheet 写入一个工作表及其清单条目
func seedSheet(t *testing.T, st *Store, name string, items ...model.CostItem) int64 {
	t.Helper()

	id, _, err := st.EnsureSheet(name)
	if err != nil {
		t.Fatalf("ensure sheet: %v", err)
	}
	if err := st.BatchInsertCostItems(id, items); err != nil {
		t.Fatalf("insert items: %v", err)
	}
	return id
}

func TestEnsureSheet(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	id1, created, err := st.EnsureSheet("道路工程 主干路")
	if err != nil || !created {
		t.Fatalf("first ensure: id=%d created=%v err=%v", id1, created, err)
	}
	id2, created, err := st.EnsureSheet("道路工程 主干路")
	if err != nil || created || id2 != id1 {
		t.Fatalf("second ensure: id=%d created=%v err=%v", id2, created, err)
	}

	if _, err := st.GetSheet(context.Background(), 999); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("want ErrSheetNotFound, got %v", err)
	}
}

func TestCostItemsRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	id := seedSheet(t, st, "s1",
		model.CostItem{Seq: "1", Code: model.StrPtr("A1"), Description: "混凝土", Quantity: "10", RowNo: 3},
		model.CostItem{Seq: "2", Code: nil, Description: "说明", RowNo: 4},
	)

	items, err := st.ListCostItems(context.Background(), id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID >= items[1].ID {
		t.Fatalf("ids not ascending: %d, %d", items[0].ID, items[1].ID)
	}
	if items[0].CodeValue() != "A1" || items[0].RowNo != 3 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Code != nil {
		t.Fatalf("NULL code should scan as nil: %+v", items[1])
	}

	if err := st.ReplaceCostItems(id, nil); err != nil {
		t.Fatalf("replace with nothing: %v", err)
	}
	items, _ = st.ListCostItems(context.Background(), id)
	if len(items) != 0 {
		t.Fatalf("items should be cleared, got %d", len(items))
	}
}

func TestReplaceCostItems_RollbackKeepsPreviousItems(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	id := seedSheet(t, st, "s1", model.CostItem{Seq: "1", Code: model.StrPtr("A1"), Description: "混凝土"})

	if _, err := st.db.Exec(`
		CREATE TRIGGER reject_boom BEFORE INSERT ON cost_items
		WHEN NEW.description = 'boom'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END
	`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := st.ReplaceCostItems(id, []model.CostItem{
		{Seq: "1", Code: model.StrPtr("B2"), Description: "钢筋"},
		{Seq: "2", Code: model.StrPtr("C3"), Description: "boom"},
	})
	if err == nil {
		t.Fatalf("expected insert failure")
	}

	items, err := st.ListCostItems(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Description != "混凝土" {
		t.Fatalf("previous items should survive: %+v", items)
	}

	if err := st.ReplaceCostItems(id, []model.CostItem{{Seq: "1", Code: model.StrPtr("B2"), Description: "钢筋"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	items, _ = st.ListCostItems(ctx, id)
	if len(items) != 1 || items[0].Description != "钢筋" {
		t.Fatalf("items should be replaced: %+v", items)
	}
}

func TestReplaceFactors_RollbackOnDuplicate(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.ReplaceFactorTable(model.FactorLabor, []model.FactorEntry{{Code: "L1", Factor: d("2")}}); err != nil {
		t.Fatalf("seed labor: %v", err)
	}

	err := st.ReplaceFactors(map[model.FactorKind][]model.FactorEntry{
		model.FactorLabor:   {{Code: "L2", Factor: d("1")}},
		model.FactorMachine: {{Code: "J1", Factor: d("1")}, {Code: "J1", Factor: d("2")}},
	})
	if err == nil {
		t.Fatalf("expected primary key violation")
	}

	labor, err := st.ListFactors(ctx, model.FactorLabor)
	if err != nil {
		t.Fatalf("list labor: %v", err)
	}
	if len(labor) != 1 || labor[0].Code != "L1" || !labor[0].Factor.Equal(d("2")) {
		t.Fatalf("labor should be unchanged: %+v", labor)
	}
	if n, _ := st.CountFactors(ctx, model.FactorMachine); n != 0 {
		t.Fatalf("machine = %d, want 0", n)
	}
}

func TestFactorsRoundTripExactly(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	precise := d("0.12345678901234567890123")
	sheet := seedSheet(t, st, "s1",
		model.CostItem{Code: model.StrPtr("P1"), Description: "Precise"},
		model.CostItem{Code: model.StrPtr("P2"), Description: "Precise"},
	)
	if err := st.ReplaceFactors(map[model.FactorKind][]model.FactorEntry{
		model.FactorMaterial: {
			{Code: "P1", Factor: precise},
			{Code: "P2", Factor: d("0.12345678901234567890124")},
		},
	}); err != nil {
		t.Fatalf("replace factors: %v", err)
	}

	entries, err := st.ListFactors(ctx, model.FactorMaterial)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || !entries[0].Factor.Equal(precise) {
		t.Fatalf("factor not preserved: %+v", entries)
	}

	viaSQL, err := st.QueryEmissionRecords(ctx, sheet)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	snap, err := st.Snapshot(ctx, sheet)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	viaSnapshot := emission.ResolveSnapshot(snap)

	// 两个因子仅在第 23 位小数不同，不应被合并
	if len(viaSQL) != 2 || len(viaSnapshot) != 2 {
		t.Fatalf("want 2 records, sql=%+v snapshot=%+v", viaSQL, viaSnapshot)
	}
	for i := range viaSQL {
		if viaSQL[i].Key() != viaSnapshot[i].Key() {
			t.Fatalf("record %d differs: sql=%+v snapshot=%+v", i, viaSQL[i], viaSnapshot[i])
		}
	}
}

func TestQueryEmissionRecords_ConcreteExample(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	sheet := seedSheet(t, st, "s1",
		model.CostItem{Code: model.StrPtr("A1"), Description: "Concrete"},
		model.CostItem{Code: model.StrPtr(""), Description: "Note"},
	)
	if err := st.ReplaceFactors(map[model.FactorKind][]model.FactorEntry{
		model.FactorLabor:    {{Code: "A1", Factor: d("1.2")}},
		model.FactorMaterial: {{Code: "A1", Factor: d("3.4")}},
	}); err != nil {
		t.Fatalf("replace factors: %v", err)
	}

	got, err := st.QueryEmissionRecords(ctx, sheet)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(got), got)
	}
	r := got[0]
	if r.Description != "Concrete" || !r.LaborFactor.Equal(d("1.2")) || !r.MaterialFactor.Equal(d("3.4")) || !r.MachineFactor.IsZero() {
		t.Fatalf("unexpected record: %+v", r)
	}

	empty, err := st.QueryEmissionRecords(ctx, 999)
	if err != nil {
		t.Fatalf("query unknown sheet: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", empty)
	}
}

// SQL 解算与快照解算必须一致
func TestQueryEmissionRecords_MatchesSnapshotResolution(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	sheet := seedSheet(t, st, "s1",
		model.CostItem{Code: model.StrPtr("C"), Description: "Gravel"},
		model.CostItem{Code: model.StrPtr("A"), Description: "Sand"},
		model.CostItem{Code: model.StrPtr("B"), Description: "Sand"},
		model.CostItem{Code: nil, Description: "Heading"},
		model.CostItem{Code: model.StrPtr("  "), Description: "Blank"},
		model.CostItem{Code: model.StrPtr("C"), Description: "Cement"},
		model.CostItem{Code: model.StrPtr("Z"), Description: "Unmatched"},
		model.CostItem{Code: model.StrPtr("A"), Description: "Sand"},
		model.CostItem{Code: model.StrPtr("\t"), Description: "Tab"},
		model.CostItem{Code: model.StrPtr(""), Description: "Empty"},
	)
	seedSheet(t, st, "s2", model.CostItem{Code: model.StrPtr("A"), Description: "Other sheet"})

	if err := st.ReplaceFactors(map[model.FactorKind][]model.FactorEntry{
		model.FactorLabor:    {{Code: "A", Factor: d("1")}, {Code: "B", Factor: d("1")}, {Code: "C", Factor: d("2")}},
		model.FactorMaterial: {{Code: "C", Factor: d("0.5")}},
		model.FactorMachine:  {{Code: "B", Factor: d("0.25")}},
	}); err != nil {
		t.Fatalf("replace factors: %v", err)
	}

	viaSQL, err := st.QueryEmissionRecords(ctx, sheet)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	snap, err := st.Snapshot(ctx, sheet)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	viaSnapshot := emission.ResolveSnapshot(snap)

	if len(viaSQL) != len(viaSnapshot) {
		t.Fatalf("len mismatch: sql=%d snapshot=%d\nsql=%+v\nsnap=%+v", len(viaSQL), len(viaSnapshot), viaSQL, viaSnapshot)
	}
	for i := range viaSQL {
		if viaSQL[i].Key() != viaSnapshot[i].Key() {
			t.Fatalf("record %d differs: sql=%+v snapshot=%+v", i, viaSQL[i], viaSnapshot[i])
		}
	}

	// 仅 NULL 与空串被排除，空白编码按未匹配处理
	want := []string{"Gravel", "Sand", "Sand", "Blank", "Cement", "Unmatched", "Tab"}
	if len(viaSQL) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(viaSQL), len(want), viaSQL)
	}
	for i, w := range want {
		if viaSQL[i].Description != w {
			t.Fatalf("record %d = %q, want %q", i, viaSQL[i].Description, w)
		}
	}
}

func TestCurrentSheetConfig(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	if _, err := st.GetCurrentSheetID(); err == nil {
		t.Fatalf("expected error when unset")
	}
	if err := st.SetCurrentSheetID(7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.SetCurrentSheetID(8); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	id, err := st.GetCurrentSheetID()
	if err != nil || id != 8 {
		t.Fatalf("current = %d, err = %v", id, err)
	}
}

func TestStatsAndImportLogs(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	seedSheet(t, st, "s1", model.CostItem{Code: model.StrPtr("A")}, model.CostItem{Code: model.StrPtr("B")})
	if err := st.ReplaceFactorTable(model.FactorMaterial, []model.FactorEntry{{Code: "A", Factor: d("1")}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	stats, err := st.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Sheets != 1 || stats.CostItems != 2 || stats.Factors[model.FactorMaterial] != 1 || stats.Factors[model.FactorLabor] != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	logID, err := st.CreateImportLog("run-1", model.ImportKindCosts, "a.xlsx", 1024)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	if err := st.UpdateImportLog(logID, 2, 1, 1, 2, "completed", ""); err != nil {
		t.Fatalf("update log: %v", err)
	}
	if err := st.InsertSheetMeta(model.SheetMeta{SheetName: "s1", SheetKind: "cost", Status: "imported", ImportLogID: &logID, ColumnsJSON: BuildColumnsJSON(nil)}); err != nil {
		t.Fatalf("insert meta: %v", err)
	}

	logs, err := st.ListImportLogs(ctx, 0)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	l := logs[0]
	if l.RunID != "run-1" || l.Kind != model.ImportKindCosts || l.ImportedRows != 2 || l.Status != "completed" || l.CompletedAt == nil {
		t.Fatalf("unexpected log: %+v", l)
	}
}
