package v1

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"carbonref/internal/model"
	"carbonref/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	store  *store.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "carbonref.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	NewHandler(st, t.TempDir(), log).RegisterRoutes(r.Group("/api"))
	return &testEnv{store: st, router: r}
}

// seedConcrete 写入示例数据：sheet 1 → {Concrete, 1.2, 3.4, 0}
func (e *testEnv) seedConcrete(t *testing.T) int64 {
	t.Helper()

	id, _, err := e.store.EnsureSheet("道路工程 主干路")
	if err != nil {
		t.Fatalf("ensure sheet: %v", err)
	}
	if err := e.store.BatchInsertCostItems(id, []model.CostItem{
		{Seq: "1", Code: model.StrPtr("A1"), Description: "Concrete", Unit: "m3", Quantity: "2"},
		{Seq: "2", Code: model.StrPtr(""), Description: "Note"},
	}); err != nil {
		t.Fatalf("insert items: %v", err)
	}
	if err := e.store.ReplaceFactors(map[model.FactorKind][]model.FactorEntry{
		model.FactorLabor:    {{Code: "A1", Factor: decimal.RequireFromString("1.2")}},
		model.FactorMaterial: {{Code: "A1", Factor: decimal.RequireFromString("3.4")}},
	}); err != nil {
		t.Fatalf("replace factors: %v", err)
	}
	return id
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestGetEmissions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.seedConcrete(t)

	w := env.do(http.MethodGet, "/api/sheets/"+itoa(id)+"/emissions", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []model.EmissionRecord `json:"items"`
	}
	decode(t, w, &resp)
	if len(resp.Items) != 1 {
		t.Fatalf("items = %+v", resp.Items)
	}
	r := resp.Items[0]
	if r.Description != "Concrete" || !r.LaborFactor.Equal(decimal.RequireFromString("1.2")) ||
		!r.MaterialFactor.Equal(decimal.RequireFromString("3.4")) || !r.MachineFactor.IsZero() {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestListItems(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.seedConcrete(t)

	w := env.do(http.MethodGet, "/api/sheets/"+itoa(id)+"/items", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []model.CostItem `json:"items"`
	}
	decode(t, w, &resp)
	if len(resp.Items) != 2 || resp.Items[0].Description != "Concrete" || resp.Items[1].Description != "Note" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}

func TestGetEmissions_UnknownSheetIsEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/sheets/42/emissions", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Fatalf("want empty items array, got %s", w.Body.String())
	}
}

func TestInvalidSheetID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/api/sheets/abc/emissions", "/api/sheets/0/report"} {
		if w := env.do(http.MethodGet, path, nil, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.seedConcrete(t)

	w := env.do(http.MethodGet, "/api/sheets/"+itoa(id)+"/report", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var report model.SheetReport
	decode(t, w, &report)
	if report.ProjectType != "道路工程" || report.RoadType != "主干路" {
		t.Fatalf("unexpected types: %+v", report)
	}
	if !report.TotalEmission.Equal(decimal.RequireFromString("9.2")) {
		t.Fatalf("total = %s", report.TotalEmission)
	}

	if w := env.do(http.MethodGet, "/api/sheets/99/report", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing sheet: status = %d", w.Code)
	}
}

func TestStatusAndSheets(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var status StatusResponse
	decode(t, env.do(http.MethodGet, "/api/status", nil, ""), &status)
	if status.Initialized {
		t.Fatalf("empty store should not be initialized")
	}

	id := env.seedConcrete(t)
	decode(t, env.do(http.MethodGet, "/api/status", nil, ""), &status)
	if !status.Initialized || status.Sheets != 1 || status.Factors[model.FactorMaterial] != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}

	var sheets struct {
		Items []model.Sheet `json:"items"`
	}
	decode(t, env.do(http.MethodGet, "/api/sheets", nil, ""), &sheets)
	if len(sheets.Items) != 1 || sheets.Items[0].ItemCount != 2 || sheets.Items[0].RoadType != "主干路" {
		t.Fatalf("unexpected sheets: %+v", sheets.Items)
	}

	if w := env.do(http.MethodGet, "/api/sheets/current", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("current before select: status = %d", w.Code)
	}
	if w := env.do(http.MethodPost, "/api/sheets/"+itoa(id)+"/select", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("select: status = %d", w.Code)
	}
	var current model.Sheet
	decode(t, env.do(http.MethodGet, "/api/sheets/current", nil, ""), &current)
	if current.ID != id {
		t.Fatalf("current = %+v", current)
	}
}

func TestListFactors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedConcrete(t)

	w := env.do(http.MethodGet, "/api/factors/labor", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"code":"A1"`) {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := env.do(http.MethodGet, "/api/factors/steel", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: status = %d", w.Code)
	}
}

func TestImportFactorsSSE(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	f := excelize.NewFile()
	_ = f.SetSheetName("Sheet1", "机械数据")
	_ = f.SetSheetRow("机械数据", "A1", &[]interface{}{"编码", "名称", "规格型号", "单位", "单位碳排放因子"})
	_ = f.SetSheetRow("机械数据", "A2", &[]interface{}{"J1", "挖掘机", "", "台班", "5.5"})
	var xlsx bytes.Buffer
	if err := f.Write(&xlsx); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "人材机.xlsx")
	_, _ = part.Write(xlsx.Bytes())
	_ = mw.Close()

	w := env.do(http.MethodPost, "/api/import/factors", &body, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var last map[string]any
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		last = map[string]any{}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last); err != nil {
			t.Fatalf("bad event %q: %v", line, err)
		}
	}
	if last == nil || last["type"] != "done" {
		t.Fatalf("last event = %v", last)
	}

	entries, err := env.store.ListFactors(context.Background(), model.FactorMachine)
	if err != nil {
		t.Fatalf("list machine: %v", err)
	}
	if len(entries) != 1 || !entries[0].Factor.Equal(decimal.RequireFromString("5.5")) {
		t.Fatalf("unexpected machine table: %+v", entries)
	}
}

func TestImport_MissingFile(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("clearExisting", "true")
	_ = mw.Close()

	if w := env.do(http.MethodPost, "/api/import/costs", &body, mw.FormDataContentType()); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestExportDownload(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.seedConcrete(t)

	w := env.do(http.MethodGet, "/api/sheets/"+itoa(id)+"/export", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content-type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("明细")
	if err != nil || len(rows) != 2 {
		t.Fatalf("detail rows = %v, err = %v", rows, err)
	}
}

func TestExportStreamAndDownload(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.seedConcrete(t)

	w := env.do(http.MethodPost, "/api/sheets/"+itoa(id)+"/export/stream", nil, "")
	var url string
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for sc.Scan() {
		line := strings.TrimPrefix(sc.Text(), "data: ")
		var evt exportProgressEvent
		if json.Unmarshal([]byte(line), &evt) != nil || evt.Type != "done" {
			continue
		}
		if m, ok := evt.Data.(map[string]any); ok {
			url, _ = m["downloadUrl"].(string)
		}
	}
	if url == "" {
		t.Fatalf("missing download url in %s", w.Body.String())
	}

	if w := env.do(http.MethodGet, url, nil, ""); w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	// 一次性令牌
	if w := env.do(http.MethodGet, url, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("second download status = %d", w.Code)
	}
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	got := contentDisposition("主干路_碳排放_20260301.xlsx")
	want := "attachment; filename=\"carbon-report.xlsx\"; filename*=UTF-8''%E4%B8%BB%E5%B9%B2%E8%B7%AF_%E7%A2%B3%E6%8E%92%E6%94%BE_20260301.xlsx"
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
