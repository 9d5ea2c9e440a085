package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftflow/backend/internal/dto"
	"shiftflow/backend/internal/service"
	"shiftflow/backend/pkg/response"
)

// RotationPatternHandler 轮班模式模块 HTTP 处理器
type RotationPatternHandler struct {
	patternSvc service.RotationPatternService
}

// NewRotationPatternHandler 创建 RotationPatternHandler
func NewRotationPatternHandler(patternSvc service.RotationPatternService) *RotationPatternHandler {
	return &RotationPatternHandler{patternSvc: patternSvc}
}

// CreatePattern 创建轮班模式
// POST /api/v1/rotation-patterns
func (h *RotationPatternHandler) CreatePattern(c *gin.Context) {
	var req dto.CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
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

	pattern, err := h.patternSvc.Create(c.Request.Context(), &req, tenantID, callerID)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.Created(c, pattern)
}

// ListPatterns 获取轮班模式列表
// GET /api/v1/rotation-patterns
func (h *RotationPatternHandler) ListPatterns(c *gin.Context) {
	var req dto.ListPatternsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	patterns, total, err := h.patternSvc.List(c.Request.Context(), tenantID, &req)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OKPage(c, patterns, total, req.GetPage(), req.GetPageSize())
}

// GetPattern 获取轮班模式详情
// GET /api/v1/rotation-patterns/:id
func (h *RotationPatternHandler) GetPattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "模式ID不能为空")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	pattern, err := h.patternSvc.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OK(c, pattern)
}

// UpdatePattern 更新轮班模式
// PUT /api/v1/rotation-patterns/:id
func (h *RotationPatternHandler) UpdatePattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "模式ID不能为空")
		return
	}

	var req dto.UpdatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
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

	pattern, err := h.patternSvc.Update(c.Request.Context(), tenantID, id, &req, callerID)
	if err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OK(c, pattern)
}

// DeletePattern 删除轮班模式（软删除）
// DELETE /api/v1/rotation-patterns/:id
func (h *RotationPatternHandler) DeletePattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "模式ID不能为空")
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

	if err := h.patternSvc.Delete(c.Request.Context(), tenantID, id, callerID); err != nil {
		h.handlePatternError(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// handlePatternError 统一处理轮班模式模块业务错误
func (h *RotationPatternHandler) handlePatternError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, response.CodePatternNotFound, "轮班模式不存在")
	case errors.Is(err, service.ErrUnsupportedPatternType):
		response.BadRequest(c, response.CodeUnsupportedPattern, "不支持的模式类型")
	case errors.Is(err, service.ErrInvalidCycleLength):
		response.BadRequest(c, response.CodeInvalidCycleLength, "周期长度与配置不符")
	case errors.Is(err, service.ErrInvalidWeekIndex):
		response.BadRequest(c, response.CodeInvalidWeekIndex, "周次索引超出周期范围或重复")
	case errors.Is(err, service.ErrEmptyCustomPattern):
		response.BadRequest(c, response.CodeEmptyCustomPattern, "自定义模板不能为空")
	case errors.Is(err, service.ErrInvalidPatternConfig):
		response.BadRequest(c, response.CodeValidation, "模式配置无效")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, response.CodeInvalidDateRange, "日期区间无效")
	case errors.Is(err, service.ErrTeamNotFound):
		response.BadRequest(c, response.CodeValidation, "团队不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/rotation_pattern_handler.go
