package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carbonref/internal/model"
	"carbonref/internal/parser"
)

// withTypes 由表名解析工程类型与道路类型
func withTypes(sh model.Sheet) model.Sheet {
	sh.ProjectType, sh.RoadType, _ = parser.ParseSheetName(sh.Name)
	return sh
}

// ListSheets 工作表列表
// GET /api/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	sheets, err := h.store.ListSheets(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]model.Sheet, 0, len(sheets))
	for _, sh := range sheets {
		items = append(items, withTypes(sh))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetCurrentSheet 当前选中的工作表
// GET /api/sheets/current
func (h *Handler) GetCurrentSheet(c *gin.Context) {
	id, err := h.store.GetCurrentSheetID()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚未选择工作表"})
		return
	}
	sh, err := h.store.GetSheet(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withTypes(*sh))
}

// SelectSheet 设置当前工作表
// POST /api/sheets/:id/select
func (h *Handler) SelectSheet(c *gin.Context) {
	id, err := parseSheetID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	sh, err := h.store.GetSheet(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.SetCurrentSheetID(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withTypes(*sh))
}

// ListItems 工作表清单条目，按导入顺序
// GET /api/sheets/:id/items
func (h *Handler) ListItems(c *gin.Context) {
	id, err := parseSheetID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, err := h.store.ListCostItems(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if items == nil {
		items = []model.CostItem{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sheetId": id,
		"items":   items,
	})
}

// GetEmissions 工作表碳排放因子解算结果
// GET /api/sheets/:id/emissions
func (h *Handler) GetEmissions(c *gin.Context) {
	id, err := parseSheetID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.resolver.Resolve(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sheetId": id,
		"items":   records,
	})
}

// GetReport 工作表碳排放明细与汇总
// GET /api/sheets/:id/report
func (h *Handler) GetReport(c *gin.Context) {
	id, err := parseSheetID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	report, err := h.calc.Report(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListFactors 因子表内容
// GET /api/factors/:kind
func (h *Handler) ListFactors(c *gin.Context) {
	kind, err := model.ParseFactorKind(c.Param("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	entries, err := h.store.ListFactors(c.Request.Context(), kind)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []model.FactorEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":  kind,
		"label": kind.Label(),
		"items": entries,
	})
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}
