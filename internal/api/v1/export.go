package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbonref/internal/exporter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Export 直接下载工作表碳排放报告
// GET /api/sheets/:id/export
func (h *Handler) Export(c *gin.Context) {
	id, err := parseSheetID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	file, report, err := exporter.NewExporter(h.calc).Export(c.Request.Context(), exporter.ExportOptions{SheetID: id})
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", contentDisposition(exporter.BuildFilename(report, time.Now())))
	c.Header("Content-Type", xlsxContentType)
	if err := file.Write(c.Writer); err != nil {
		h.log.WithError(err).WithField("sheet_id", id).Error("write export failed")
	}
}

// ExportStream 导出 Excel（SSE 进度 + 完成后提供下载地址）
// POST /api/sheets/:id/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	id, err := parseSheetID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event exportProgressEvent) {
		event.Timestamp = time.Now()
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(exportProgressEvent{
		Type:    "start",
		Message: "开始导出",
		Data:    map[string]any{"sheetId": id},
	})

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{
			Type:    "progress",
			Message: p.Stage,
			Data:    map[string]any{"percent": p.Percent},
		})
	}

	file, report, err := exporter.NewExporter(h.calc).Export(c.Request.Context(), exporter.ExportOptions{
		SheetID:  id,
		Progress: progressFn,
	})
	if err != nil {
		send(exportProgressEvent{
			Type:    "error",
			Message: "导出失败: " + err.Error(),
			Data:    map[string]any{},
		})
		return
	}
	defer file.Close()

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("carbonref_export_%s.xlsx", uuid.NewString()))
	if err := file.SaveAs(tempPath); err != nil {
		send(exportProgressEvent{
			Type:    "error",
			Message: "写入导出文件失败: " + err.Error(),
			Data:    map[string]any{},
		})
		_ = os.Remove(tempPath)
		return
	}

	token := h.downloads.put(tempPath, exporter.BuildFilename(report, time.Now()), 10*time.Minute)
	send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": "/api/export/download/" + token,
		},
	})
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.filename))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}

// contentDisposition ASCII 兜底文件名 + RFC 5987 UTF-8 文件名
func contentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=\"carbon-report.xlsx\"; filename*=UTF-8''%s", url.PathEscape(filename))
}
