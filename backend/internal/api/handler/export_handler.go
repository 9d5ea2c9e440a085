package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shiftflow/backend/internal/service"
	"shiftflow/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCalendar 导出轮班日历为 Excel
// GET /api/v1/rotation-patterns/:id/export?start_date=&end_date=
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	patternID := c.Param("id")
	if patternID == "" {
		response.BadRequest(c, response.CodeValidation, "模式ID不能为空")
		return
	}
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		response.BadRequest(c, response.CodeValidation, "start_date 与 end_date 不能为空")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), tenantID, patternID, startDate, endDate)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, response.CodePatternNotFound, "轮班模式不存在")
	case errors.Is(err, service.ErrExportNoHistory):
		response.NotFound(c, response.CodeHistoryNotFound, "该区间暂无轮班历史")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, response.CodeInvalidDateRange, "日期区间无效")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
