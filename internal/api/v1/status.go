package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbonref/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool                     `json:"initialized"` // 已导入清单与至少一张因子表
	Sheets         int                      `json:"sheets"`
	CostItems      int                      `json:"costItems"`
	Factors        map[model.FactorKind]int `json:"factors"`
	CurrentSheetID int64                    `json:"currentSheetId"`
	LastImportTime string                   `json:"lastImportTime"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.store.GetStats(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := StatusResponse{
		Sheets:    stats.Sheets,
		CostItems: stats.CostItems,
		Factors:   stats.Factors,
	}

	factorCount := 0
	for _, n := range stats.Factors {
		factorCount += n
	}
	resp.Initialized = stats.CostItems > 0 && factorCount > 0

	if id, err := h.store.GetCurrentSheetID(); err == nil {
		resp.CurrentSheetID = id
	}

	if logs, err := h.store.ListImportLogs(ctx, 1); err == nil && len(logs) > 0 {
		resp.LastImportTime = logs[0].StartedAt.Format("2006-01-02 15:04:05")
	}

	c.JSON(http.StatusOK, resp)
}

// ListImports 最近的导入记录
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	limit := 20
	if v, ok := c.GetQuery("limit"); ok {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}

	logs, err := h.store.ListImportLogs(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if logs == nil {
		logs = []model.ImportLog{}
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
