package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shiftflow/backend/internal/dto"
	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/service"
	"shiftflow/backend/pkg/response"
)

// RotationHistoryHandler 轮班历史模块 HTTP 处理器
type RotationHistoryHandler struct {
	historySvc service.RotationHistoryService
	feedSvc    service.CalendarFeedService
}

// NewRotationHistoryHandler 创建 RotationHistoryHandler
func NewRotationHistoryHandler(historySvc service.RotationHistoryService, feedSvc service.CalendarFeedService) *RotationHistoryHandler {
	return &RotationHistoryHandler{historySvc: historySvc, feedSvc: feedSvc}
}

// ListHistory 查询轮班历史（管理员视角，可按模式/员工/状态过滤）
// GET /api/v1/rotation-history
func (h *RotationHistoryHandler) ListHistory(c *gin.Context) {
	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	list, total, err := h.historySvc.List(c.Request.Context(), &req, tenantID)
	if err != nil {
		h.handleHistoryError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListMyHistory 查询本人的轮班历史
// GET /api/v1/rotation-history/my
func (h *RotationHistoryHandler) ListMyHistory(c *gin.Context) {
	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.historySvc.ListMy(c.Request.Context(), &req, tenantID, userID)
	if err != nil {
		h.handleHistoryError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MyCalendarFeed 本人排班的 iCalendar 订阅源
// GET /api/v1/rotation-history/my/calendar.ics?start_date=&end_date=
func (h *RotationHistoryHandler) MyCalendarFeed(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 缺省区间：当前月前后各一个月
	now := time.Now()
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 1, 0)
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(model.DateLayout, s)
		if err != nil {
			response.BadRequest(c, response.CodeInvalidDateRange, "start_date 格式无效")
			return
		}
		start = t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(model.DateLayout, s)
		if err != nil {
			response.BadRequest(c, response.CodeInvalidDateRange, "end_date 格式无效")
			return
		}
		end = t
	}
	if end.Before(start) {
		response.BadRequest(c, response.CodeInvalidDateRange, "日期区间无效")
		return
	}

	feed, err := h.feedSvc.PersonalFeed(c.Request.Context(), tenantID, userID, start, end)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=my-shifts.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// ConfirmHistory 确认班次（本人或管理员）
// POST /api/v1/rotation-history/:id/confirm
func (h *RotationHistoryHandler) ConfirmHistory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "历史记录ID不能为空")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.historySvc.Confirm(c.Request.Context(), id, tenantID, callerID, role)
	if err != nil {
		h.handleHistoryError(c, err)
		return
	}

	response.OK(c, result)
}

// ModifyHistory 手工修改班次（管理员，需理由）
// POST /api/v1/rotation-history/:id/modify
func (h *RotationHistoryHandler) ModifyHistory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "历史记录ID不能为空")
		return
	}

	var req dto.ModifyHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeReasonRequired, "参数校验失败：需给出班次与修改理由")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.historySvc.Modify(c.Request.Context(), id, &req, tenantID, callerID)
	if err != nil {
		h.handleHistoryError(c, err)
		return
	}

	response.OK(c, result)
}

// CancelHistory 取消班次（管理员，需理由）
// POST /api/v1/rotation-history/:id/cancel
func (h *RotationHistoryHandler) CancelHistory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "历史记录ID不能为空")
		return
	}

	var req dto.CancelHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeReasonRequired, "参数校验失败：需给出取消理由")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.historySvc.Cancel(c.Request.Context(), id, &req, tenantID, callerID)
	if err != nil {
		h.handleHistoryError(c, err)
		return
	}

	response.OK(c, result)
}

// handleHistoryError 统一处理轮班历史模块业务错误
func (h *RotationHistoryHandler) handleHistoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHistoryNotFound):
		response.NotFound(c, response.CodeHistoryNotFound, "轮班历史记录不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, response.CodeInvalidTransition, "当前状态不允许该操作")
	case errors.Is(err, service.ErrNotOwnShift):
		response.Forbidden(c, "只能确认自己的班次")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, response.CodeInvalidDateRange, "日期区间无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/rotation_history_handler.go
