package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbonref/internal/importer"
	"carbonref/internal/model"
)

// ImportCosts 导入造价清单 (SSE 流式响应)
// POST /api/import/costs
func (h *Handler) ImportCosts(c *gin.Context) {
	h.handleImport(c, model.ImportKindCosts)
}

// ImportFactors 导入人材机数据库 (SSE 流式响应)
// POST /api/import/factors
func (h *Handler) ImportFactors(c *gin.Context) {
	h.handleImport(c, model.ImportKindFactors)
}

func (h *Handler) handleImport(c *gin.Context, kind model.ImportKind) {
	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	// 保存到上传目录
	dir := h.uploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	tempFilePath := filepath.Join(dir, fmt.Sprintf("carbonref_import_%s%s", uuid.NewString(), filepath.Ext(uploadedFile.Filename)))
	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	defer os.Remove(tempFilePath)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.importer.Import(importer.ImportOptions{
		FilePath:           tempFilePath,
		OriginalFilename:   uploadedFile.Filename,
		Kind:               kind,
		ClearExisting:      c.DefaultPostForm("clearExisting", "true") == "true",
		UpdateCurrentSheet: c.DefaultPostForm("updateCurrentSheet", "true") == "true",
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
