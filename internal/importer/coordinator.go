package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"carbonref/internal/model"
	"carbonref/internal/parser"
	"carbonref/internal/store"
)

var (
	// ErrDuplicateCode 因子表中存在重复编码
	ErrDuplicateCode = errors.New("duplicate factor code")
	// ErrInvalidFactor 因子条目校验失败
	ErrInvalidFactor = errors.New("invalid factor entry")
	// ErrNothingImported 工作簿中没有可导入的 Sheet
	ErrNothingImported = errors.New("no importable sheet found")
)

// Coordinator 导入协调器
type Coordinator struct {
	store    *store.Store
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(store *store.Store, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		store:    store,
		validate: validator.New(),
		log:      log,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath           string
	OriginalFilename   string
	Kind               model.ImportKind
	ClearExisting      bool // 同名工作表已存在时先清空其清单
	UpdateCurrentSheet bool // 导入后将第一张工作表设为当前工作表
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	RunID     string      `json:"runId"`
	Type      string      `json:"type"`    // start/info/sheet_start/sheet_done/warning/error/done
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// ImportContext 导入上下文
type ImportContext struct {
	RunID        string
	Opts         ImportOptions
	File         *excelize.File
	StartTime    time.Time
	Report       *parser.ImportReport
	ProgressChan chan ProgressEvent
	ImportLogID  int64
	FirstSheetID int64
}

// Import 异步执行导入，返回进度通道；通道在导入结束后关闭
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		_, _ = c.run(opts, progressChan)
	}()

	return progressChan
}

// ImportSync 同步执行导入，丢弃进度事件
func (c *Coordinator) ImportSync(opts ImportOptions) (*parser.ImportReport, error) {
	progressChan := make(chan ProgressEvent, 100)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range progressChan {
		}
	}()

	report, err := c.run(opts, progressChan)
	close(progressChan)
	<-drained
	return report, err
}

// run 执行导入逻辑
func (c *Coordinator) run(opts ImportOptions, progressChan chan ProgressEvent) (*parser.ImportReport, error) {
	runID := uuid.New().String()
	filename := opts.OriginalFilename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	ctx := &ImportContext{
		RunID:        runID,
		Opts:         opts,
		StartTime:    time.Now(),
		ProgressChan: progressChan,
		Report: &parser.ImportReport{
			RunID:    runID,
			Filename: filename,
			Sheets:   []parser.ParseResult{},
		},
	}
	log := c.log.WithFields(logrus.Fields{
		"run_id": runID,
		"kind":   opts.Kind,
		"file":   filename,
	})

	c.sendProgress(ctx, ProgressEvent{
		Type:    "start",
		Message: "开始导入 Excel 文件",
		Data: map[string]string{
			"filename": filename,
			"kind":     string(opts.Kind),
		},
	})

	var fileSize int64
	if fi, err := os.Stat(opts.FilePath); err == nil {
		fileSize = fi.Size()
	}
	logID, err := c.store.CreateImportLog(runID, opts.Kind, filename, fileSize)
	if err != nil {
		log.WithError(err).Warn("failed to create import log")
	}
	ctx.ImportLogID = logID

	err = c.importFile(ctx)
	ctx.Report.Duration = time.Since(ctx.StartTime)
	c.finishImportLog(ctx, err)

	if err != nil {
		log.WithError(err).Error("import failed")
		c.sendFinal(ctx, ProgressEvent{
			Type:    "error",
			Message: fmt.Sprintf("导入失败: %v", err),
			Data:    ctx.Report,
		})
		return ctx.Report, err
	}

	log.WithFields(logrus.Fields{
		"imported_sheets": ctx.Report.ImportedSheets,
		"imported_rows":   ctx.Report.ImportedRows,
		"duration":        ctx.Report.Duration,
	}).Info("import finished")

	c.sendFinal(ctx, ProgressEvent{
		Type:    "done",
		Message: "导入完成",
		Data:    ctx.Report,
	})
	return ctx.Report, nil
}

func (c *Coordinator) importFile(ctx *ImportContext) error {
	file, err := excelize.OpenFile(ctx.Opts.FilePath)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()
	ctx.File = file

	sheetList := file.GetSheetList()
	ctx.Report.TotalSheets = len(sheetList)

	c.sendProgress(ctx, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("发现 %d 个 Sheet", len(sheetList)),
		Data: map[string]interface{}{
			"total_sheets": len(sheetList),
		},
	})

	switch ctx.Opts.Kind {
	case model.ImportKindCosts:
		return c.importCosts(ctx, sheetList)
	case model.ImportKindFactors:
		return c.importFactors(ctx, sheetList)
	default:
		return fmt.Errorf("unsupported import kind: %q", ctx.Opts.Kind)
	}
}

// finishImportLog 完成导入日志
func (c *Coordinator) finishImportLog(ctx *ImportContext, importErr error) {
	if ctx.ImportLogID == 0 {
		return
	}
	status, msg := "completed", ""
	if importErr != nil {
		status, msg = "failed", importErr.Error()
	}
	r := ctx.Report
	if err := c.store.UpdateImportLog(ctx.ImportLogID, r.TotalSheets, r.ImportedSheets, r.SkippedSheets, r.ImportedRows, status, msg); err != nil {
		c.log.WithError(err).WithField("run_id", ctx.RunID).Warn("failed to update import log")
	}
}

// recordSheetResult 记录 Sheet 处理结果并写入 sheets_meta
func (c *Coordinator) recordSheetResult(ctx *ImportContext, result parser.ParseResult, rec parser.SheetRecognitionResult, totalRows int) {
	ctx.Report.Sheets = append(ctx.Report.Sheets, result)

	switch result.Status {
	case "imported":
		ctx.Report.ImportedSheets++
		ctx.Report.ImportedRows += result.ImportedRows
	case "skipped":
		ctx.Report.SkippedSheets++
	case "error":
		ctx.Report.ErrorSheets++
	}

	meta := model.SheetMeta{
		SheetName:    result.SheetName,
		SheetKind:    string(result.Kind),
		HeaderRow:    rec.HeaderRow,
		TotalRows:    totalRows,
		ImportedRows: result.ImportedRows,
		ColumnsJSON:  store.BuildColumnsJSON(rec.Headers),
		Status:       result.Status,
		SourceFile:   ctx.Report.Filename,
	}
	if len(result.Errors) > 0 {
		meta.ErrorMessage = result.Errors[0]
	}
	if ctx.ImportLogID > 0 {
		id := ctx.ImportLogID
		meta.ImportLogID = &id
	}
	if err := c.store.InsertSheetMeta(meta); err != nil {
		c.log.WithError(err).WithField("sheet", result.SheetName).Warn("failed to record sheet meta")
	}
}

// sendProgress 发送进度事件，通道已满时丢弃
func (c *Coordinator) sendProgress(ctx *ImportContext, event ProgressEvent) {
	event.RunID = ctx.RunID
	event.Timestamp = time.Now()
	select {
	case ctx.ProgressChan <- event:
	default:
	}
}

// sendFinal 发送终止事件（done/error），阻塞直至被接收
func (c *Coordinator) sendFinal(ctx *ImportContext, event ProgressEvent) {
	event.RunID = ctx.RunID
	event.Timestamp = time.Now()
	ctx.ProgressChan <- event
}
