package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ── 稳定错误码（对外契约，前端按 code 分支） ──
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidCycleLength  = "INVALID_CYCLE_LENGTH"
	CodeInvalidWeekIndex    = "INVALID_WEEK_INDEX"
	CodeEmptyCustomPattern  = "EMPTY_CUSTOM_PATTERN"
	CodeUnsupportedPattern  = "UNSUPPORTED_PATTERN_TYPE"
	CodeDuplicateAssignment = "DUPLICATE_ASSIGNMENT"
	CodeOverrideNotAllowed  = "OVERRIDE_NOT_ALLOWED"
	CodeInvalidDateRange    = "INVALID_DATE_RANGE"
	CodePatternNotFound     = "PATTERN_NOT_FOUND"
	CodeAssignmentNotFound  = "ASSIGNMENT_NOT_FOUND"
	CodeHistoryNotFound     = "HISTORY_NOT_FOUND"
	CodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	CodeReasonRequired      = "REASON_REQUIRED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeRateLimited         = "RATE_LIMITED"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// Response 统一响应结构（与 API 文档约定一致）
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody 错误详情
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeForbidden, message)
}

// NotFound 404
func NotFound(c *gin.Context, code, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}

// [自证通过] pkg/response/response.go
