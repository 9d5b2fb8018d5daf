package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"carbonref/internal/calculator"
	"carbonref/internal/importer"
	"carbonref/internal/service/emission"
	"carbonref/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store     *store.Store
	resolver  *emission.Resolver
	calc      *calculator.Calculator
	importer  *importer.Coordinator
	downloads *exportDownloadStore
	uploadDir string
	log       logrus.FieldLogger
}

// NewHandler 创建 V1 API 处理器；uploadDir 为空时使用系统临时目录
func NewHandler(st *store.Store, uploadDir string, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	resolver := emission.NewResolver(st, log)
	return &Handler{
		store:     st,
		resolver:  resolver,
		calc:      calculator.NewCalculator(resolver, st),
		importer:  importer.NewCoordinator(st, log),
		downloads: newExportDownloadStore(),
		uploadDir: uploadDir,
		log:       log,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/imports", h.ListImports)

	// 工作表
	router.GET("/sheets", h.ListSheets)
	router.GET("/sheets/current", h.GetCurrentSheet)
	router.POST("/sheets/:id/select", h.SelectSheet)
	router.GET("/sheets/:id/items", h.ListItems)

	// 碳排放解算
	router.GET("/sheets/:id/emissions", h.GetEmissions)
	router.GET("/sheets/:id/report", h.GetReport)

	// 人材机因子
	router.GET("/factors/:kind", h.ListFactors)

	// 数据导入
	router.POST("/import/costs", h.ImportCosts)
	router.POST("/import/factors", h.ImportFactors)

	// 数据导出
	router.GET("/sheets/:id/export", h.Export)
	router.POST("/sheets/:id/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
}
