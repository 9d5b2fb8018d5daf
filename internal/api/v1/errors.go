package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carbonref/internal/importer"
	"carbonref/internal/logging"
	"carbonref/internal/model"
	"carbonref/internal/service/emission"
	"carbonref/internal/store"
)

var errInvalidID = errors.New("无效的工作表 ID")

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidID),
		errors.Is(err, model.ErrUnknownFactorKind),
		errors.Is(err, importer.ErrDuplicateCode),
		errors.Is(err, importer.ErrInvalidFactor),
		errors.Is(err, importer.ErrNothingImported):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrSheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, emission.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.LogError(h.log, "api", c.FullPath(), c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseSheetID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
